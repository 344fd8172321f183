package dto

// UserIDListDTO 用户 ID 分页列表
type UserIDListDTO struct {
	List []uint64 `json:"list"`
}

// IsFollowingDTO 是否已关注
type IsFollowingDTO struct {
	IsFollowing bool `json:"is_following"`
}
