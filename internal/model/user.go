package model

import "time"

// User 用户实体（这里只保留互动核心关心的列，账号资料由用户子系统维护）。
// FollowNum 是他关注了多少人，FansNum 是多少人关注他。
type User struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Nickname  string    `gorm:"type:varchar(64)" json:"nickname"`
	FollowNum int64     `gorm:"not null;default:0" json:"follow_num"`
	FansNum   int64     `gorm:"not null;default:0" json:"fans_num"`
	IsDeleted bool      `gorm:"type:tinyint(1);not null;default:0" json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
