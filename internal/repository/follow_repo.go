package repository

import (
	"campcircle/internal/model"
	"context"

	"gorm.io/gorm"
)

type FollowRepo interface {
	WithTx(tx *gorm.DB) FollowRepo

	CreateFollow(ctx context.Context, follow *model.Follow) error
	DeleteFollow(ctx context.Context, followerID, followingID uint64) (int64, error)
	FollowExists(ctx context.Context, followerID, followingID uint64) (bool, error)

	GetFans(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error)
	GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error)
}

type followRepoImpl struct {
	db *gorm.DB
}

func NewFollowRepo(db *gorm.DB) FollowRepo {
	return &followRepoImpl{db: db}
}

func (s *followRepoImpl) WithTx(tx *gorm.DB) FollowRepo {
	return &followRepoImpl{db: tx}
}

func (s *followRepoImpl) CreateFollow(ctx context.Context, follow *model.Follow) error {
	return s.db.WithContext(ctx).Create(follow).Error
}

func (s *followRepoImpl) DeleteFollow(ctx context.Context, followerID, followingID uint64) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&model.Follow{})
	return result.RowsAffected, result.Error
}

func (s *followRepoImpl) FollowExists(ctx context.Context, followerID, followingID uint64) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error
	return count > 0, err
}

// GetFans 获取用户的粉丝列表
func (s *followRepoImpl) GetFans(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := s.db.WithContext(ctx).
		Where("following_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&follows).Error
	return follows, err
}

// GetFollowing 获取用户的关注列表
func (s *followRepoImpl) GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]*model.Follow, error) {
	var follows []*model.Follow
	err := s.db.WithContext(ctx).
		Where("follower_id = ?", userID).
		Order("created_at desc").
		Limit(limit).Offset(offset).
		Find(&follows).Error
	return follows, err
}
