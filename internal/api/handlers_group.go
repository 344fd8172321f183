package api

import "campcircle/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	PostActionHandler *handler.PostActionHandler
	UserFollowHandler *handler.UserFollowHandler
	AdminJobHandler   *handler.AdminJobHandler
}
