package model

import (
	"time"
)

const (
	PostStatusPending   int8 = 0
	PostStatusPublished int8 = 1
	PostStatusRejected  int8 = 2
	PostStatusManual    int8 = 3
)

// Post 帖子实体。四个互动计数是冗余列，只允许通过条件自增/自减语句修改，
// 建表时默认 0，不存在 NULL 计数。
type Post struct {
	ID                uint64     `gorm:"primaryKey" json:"id"`
	UserID            uint64     `gorm:"not null;index:idx_user_id" json:"user_id"`
	Content           string     `gorm:"not null" json:"content"`
	ThumbNum          int64      `gorm:"not null;default:0" json:"thumb_num"`
	FavourNum         int64      `gorm:"not null;default:0" json:"favour_num"`
	CommentNum        int64      `gorm:"not null;default:0" json:"comment_num"`
	ViewNum           int64      `gorm:"not null;default:0" json:"view_num"`
	IsPublic          bool       `gorm:"type:tinyint(1);not null;default:1" json:"is_public"`
	IsTop             bool       `gorm:"type:tinyint(1);not null;default:0" json:"is_top"`
	TopExpireTime     *time.Time `json:"top_expire_time"`
	HotScore          float64    `gorm:"not null;default:0;index:idx_hot_score" json:"hot_score"`
	LastHotUpdateTime *time.Time `json:"last_hot_update_time"`
	Status            int8       `gorm:"not null;default:0" json:"status"`
	IsDeleted         bool       `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt         time.Time  `gorm:"index:idx_created_at" json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}
