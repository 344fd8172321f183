package repository

import (
	"campcircle/internal/model"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// UserMetric 用户上的关注计数指标
type UserMetric string

const (
	MetricFans      UserMetric = "fans"      // 粉丝数
	MetricFollowing UserMetric = "following" // 关注数
)

var userMetricColumns = map[UserMetric]string{
	MetricFans:      "fans_num",
	MetricFollowing: "follow_num",
}

type UserRepo interface {
	WithTx(tx *gorm.DB) UserRepo

	GetUser(ctx context.Context, userID uint64) (*model.User, error)

	// AdjustCounter 同帖子计数一样的单条条件 UPDATE，带零下界
	AdjustCounter(ctx context.Context, userID uint64, metric UserMetric, delta int64) (bool, error)
	GetCounter(ctx context.Context, userID uint64, metric UserMetric) (int64, error)
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepoImpl{db: db}
}

func (s *userRepoImpl) WithTx(tx *gorm.DB) UserRepo {
	return &userRepoImpl{db: tx}
}

// GetUser 获取未注销的用户，不存在时返回 nil
func (s *userRepoImpl) GetUser(ctx context.Context, userID uint64) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND is_deleted = ?", userID, false).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (s *userRepoImpl) AdjustCounter(ctx context.Context, userID uint64, metric UserMetric, delta int64) (bool, error) {
	column, ok := userMetricColumns[metric]
	if !ok {
		return false, fmt.Errorf("unknown user metric: %s", metric)
	}

	query := s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND is_deleted = ?", userID, false)
	if delta < 0 {
		query = query.Where(column+" >= ?", -delta)
	}

	result := query.UpdateColumn(column, gorm.Expr(column+" + ?", delta))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetCounter 读关注计数列，用户不存在或已注销时返回 gorm.ErrRecordNotFound
func (s *userRepoImpl) GetCounter(ctx context.Context, userID uint64, metric UserMetric) (int64, error) {
	column, ok := userMetricColumns[metric]
	if !ok {
		return 0, fmt.Errorf("unknown user metric: %s", metric)
	}

	var count int64
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Select(column).
		Where("id = ? AND is_deleted = ?", userID, false).
		Scan(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}
	return count, nil
}
