package model

import (
	"time"
)

// Thumb 点赞边记录，(user_id, post_id) 复合主键保证同一用户对同一帖子至多一条。
type Thumb struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_thumb_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Thumb) TableName() string {
	return "thumbs"
}
