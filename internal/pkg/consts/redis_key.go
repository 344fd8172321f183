package consts

const (
	PostThumbCountKey   = "post:thumb:count:"
	PostFavourCountKey  = "post:favour:count:"
	PostCommentCountKey = "post:comment:count:"
	PostViewCountKey    = "post:view:count:"
	UserFansCountKey    = "user:fans:count:"
	UserFollowCountKey  = "user:follow:count:"
)
