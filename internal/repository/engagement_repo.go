package repository

import (
	"campcircle/internal/model"
	"context"

	"gorm.io/gorm"
)

// EngagementRepo 点赞/收藏边表的读写。Create 依赖复合主键的唯一约束
// 拒绝重复插入，Delete 返回实际删除的行数，调用方据此识别并发竞争。
type EngagementRepo interface {
	WithTx(tx *gorm.DB) EngagementRepo

	CreateThumb(ctx context.Context, thumb *model.Thumb) error
	DeleteThumb(ctx context.Context, userID, postID uint64) (int64, error)
	ThumbExists(ctx context.Context, userID, postID uint64) (bool, error)

	CreateFavour(ctx context.Context, favour *model.Favour) error
	DeleteFavour(ctx context.Context, userID, postID uint64) (int64, error)
	FavourExists(ctx context.Context, userID, postID uint64) (bool, error)

	GetThumbedPostIDs(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
	GetFavouredPostIDs(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
}

type engagementRepoImpl struct {
	db *gorm.DB
}

func NewEngagementRepo(db *gorm.DB) EngagementRepo {
	return &engagementRepoImpl{db: db}
}

func (s *engagementRepoImpl) WithTx(tx *gorm.DB) EngagementRepo {
	return &engagementRepoImpl{db: tx}
}

func (s *engagementRepoImpl) CreateThumb(ctx context.Context, thumb *model.Thumb) error {
	return s.db.WithContext(ctx).Create(thumb).Error
}

func (s *engagementRepoImpl) DeleteThumb(ctx context.Context, userID, postID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Thumb{})
	return result.RowsAffected, result.Error
}

func (s *engagementRepoImpl) ThumbExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Thumb{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (s *engagementRepoImpl) CreateFavour(ctx context.Context, favour *model.Favour) error {
	return s.db.WithContext(ctx).Create(favour).Error
}

func (s *engagementRepoImpl) DeleteFavour(ctx context.Context, userID, postID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&model.Favour{})
	return result.RowsAffected, result.Error
}

func (s *engagementRepoImpl) FavourExists(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Favour{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

// GetThumbedPostIDs 分页获取用户点赞过的帖子 ID，最近的在前
func (s *engagementRepoImpl) GetThumbedPostIDs(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var postIDs []uint64
	err := s.db.WithContext(ctx).Model(&model.Thumb{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}

// GetFavouredPostIDs 分页获取用户收藏过的帖子 ID，最近的在前
func (s *engagementRepoImpl) GetFavouredPostIDs(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	var postIDs []uint64
	err := s.db.WithContext(ctx).Model(&model.Favour{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Pluck("post_id", &postIDs).Error
	return postIDs, err
}
