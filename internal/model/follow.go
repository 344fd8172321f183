package model

import "time"

// Follow 关注边记录：follower 关注 following。
type Follow struct {
	FollowerID  uint64    `gorm:"primaryKey" json:"followerId"`
	FollowingID uint64    `gorm:"primaryKey;index:idx_following_id" json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Follow) TableName() string {
	return "follows"
}
