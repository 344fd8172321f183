package dto

// HotPostDTO 热榜条目
type HotPostDTO struct {
	ID         uint64  `json:"id"`
	UserID     uint64  `json:"user_id"`
	Content    string  `json:"content"`
	ThumbNum   int64   `json:"thumb_num"`
	FavourNum  int64   `json:"favour_num"`
	CommentNum int64   `json:"comment_num"`
	ViewNum    int64   `json:"view_num"`
	IsTop      bool    `json:"is_top"`
	HotScore   float64 `json:"hot_score"`
	CreatedAt  string  `json:"created_at"`
}

// HotPostListDTO 热榜分页结果
type HotPostListDTO struct {
	List    []*HotPostDTO `json:"list"`
	HasMore bool          `json:"has_more"`
}

// PostCountsDTO 帖子四项计数
type PostCountsDTO struct {
	ThumbNum   int64 `json:"thumb_num"`
	FavourNum  int64 `json:"favour_num"`
	CommentNum int64 `json:"comment_num"`
	ViewNum    int64 `json:"view_num"`
}

// PostEngagementDTO 帖子详情页的全量互动状态
type PostEngagementDTO struct {
	ThumbNum   int64 `json:"thumb_num"`
	FavourNum  int64 `json:"favour_num"`
	CommentNum int64 `json:"comment_num"`
	ViewNum    int64 `json:"view_num"`
	IsThumbed  bool  `json:"is_thumbed"`
	IsFavoured bool  `json:"is_favoured"`
}

// PostIDListDTO 帖子 ID 分页列表
type PostIDListDTO struct {
	List []uint64 `json:"list"`
}
