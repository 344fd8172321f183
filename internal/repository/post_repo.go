package repository

import (
	"campcircle/internal/model"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Metric 帖子上的计数指标
type Metric string

const (
	MetricThumb   Metric = "thumb"
	MetricFavour  Metric = "favour"
	MetricComment Metric = "comment"
	MetricView    Metric = "view"
)

var postMetricColumns = map[Metric]string{
	MetricThumb:   "thumb_num",
	MetricFavour:  "favour_num",
	MetricComment: "comment_num",
	MetricView:    "view_num",
}

type PostRepo interface {
	WithTx(tx *gorm.DB) PostRepo

	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, postID uint64) (*model.Post, error)

	// AdjustCounter 以单条条件 UPDATE 调整计数，delta 为负时带下界保护，
	// 计数不会被减到 0 以下。返回是否真的改动了行。
	AdjustCounter(ctx context.Context, postID uint64, metric Metric, delta int64) (bool, error)
	GetCounter(ctx context.Context, postID uint64, metric Metric) (int64, error)

	ListRecentPosts(ctx context.Context, since time.Time, limit, offset int) ([]*model.Post, error)
	UpdateHotScore(ctx context.Context, postID uint64, score float64, at time.Time) error
	ListHotPosts(ctx context.Context, limit, offset int) ([]*model.Post, error)
	ExpireTopPosts(ctx context.Context, now time.Time) (int64, error)
}

type postRepoImpl struct {
	db *gorm.DB
}

func NewPostRepo(db *gorm.DB) PostRepo {
	return &postRepoImpl{db: db}
}

func (s *postRepoImpl) WithTx(tx *gorm.DB) PostRepo {
	return &postRepoImpl{db: tx}
}

func (s *postRepoImpl) CreatePost(ctx context.Context, post *model.Post) error {
	return s.db.WithContext(ctx).Create(post).Error
}

// GetPost 获取未软删的帖子，不存在时返回 nil
func (s *postRepoImpl) GetPost(ctx context.Context, postID uint64) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", postID, false).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (s *postRepoImpl) AdjustCounter(ctx context.Context, postID uint64, metric Metric, delta int64) (bool, error) {
	column, ok := postMetricColumns[metric]
	if !ok {
		return false, fmt.Errorf("unknown post metric: %s", metric)
	}

	query := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND is_deleted = ?", postID, false)
	if delta < 0 {
		query = query.Where(column+" >= ?", -delta)
	}

	result := query.UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetCounter 读冗余计数列。帖子不存在或已软删时返回 gorm.ErrRecordNotFound，
// 和计数恰好为 0 区分开，调用方不会把查无此帖缓存成 0。
func (s *postRepoImpl) GetCounter(ctx context.Context, postID uint64, metric Metric) (int64, error) {
	column, ok := postMetricColumns[metric]
	if !ok {
		return 0, fmt.Errorf("unknown post metric: %s", metric)
	}

	var count int64
	result := s.db.WithContext(ctx).Model(&model.Post{}).
		Select(column).
		Where("id = ? AND is_deleted = ?", postID, false).
		Scan(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return count, nil
}

// ListRecentPosts 分页获取窗口内已发布的帖子，最新的排在最前，
// 任务被打断时优先保证新帖的分数是新鲜的
func (s *postRepoImpl) ListRecentPosts(ctx context.Context, since time.Time, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("created_at >= ? AND status = ? AND is_deleted = ?", since, model.PostStatusPublished, false).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

func (s *postRepoImpl) UpdateHotScore(ctx context.Context, postID uint64, score float64, at time.Time) error {
	return s.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", postID).
		UpdateColumns(map[string]interface{}{
			"hot_score":            score,
			"last_hot_update_time": at,
		}).Error
}

// ListHotPosts 置顶优先，其余按热度分数倒序
func (s *postRepoImpl) ListHotPosts(ctx context.Context, limit, offset int) ([]*model.Post, error) {
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("status = ? AND is_deleted = ? AND is_public = ?", model.PostStatusPublished, false, true).
		Order("is_top DESC, hot_score DESC, created_at DESC").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	return posts, err
}

// ExpireTopPosts 批量取消已过期的置顶，单条条件 UPDATE，返回影响行数
func (s *postRepoImpl) ExpireTopPosts(ctx context.Context, now time.Time) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.Post{}).
		Where("is_top = ? AND top_expire_time < ?", true, now).
		UpdateColumns(map[string]interface{}{
			"is_top":          false,
			"top_expire_time": nil,
		})
	return result.RowsAffected, result.Error
}
