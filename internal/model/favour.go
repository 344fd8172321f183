package model

import (
	"time"
)

// Favour 收藏边记录，约束同 Thumb。
type Favour struct {
	UserID    uint64    `gorm:"primaryKey" json:"userId"`
	PostID    uint64    `gorm:"primaryKey;index:idx_favour_post_id" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Favour) TableName() string {
	return "favours"
}
