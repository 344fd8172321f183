package service

import (
	"errors"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	InternalServerError = 500
)

var (
	ErrParamInvalid   = errors.New("参数错误")
	ErrPostNotFound   = errors.New("帖子不存在")
	ErrUserNotFound   = errors.New("用户不存在")
	ErrFollowSelf     = errors.New("不能关注自己")
	ErrPostNoAccess   = errors.New("该帖子不公开，无法互动")
	ErrEngageConflict = errors.New("操作冲突，请稍后重试")
	UnauthorizedError = errors.New("权限不足")
	UnExpectedError   = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:   BadRequest,
	ErrPostNotFound:   NotFound,
	ErrUserNotFound:   NotFound,
	ErrFollowSelf:     BadRequest,
	ErrPostNoAccess:   Forbidden,
	ErrEngageConflict: Conflict,
	UnauthorizedError: Unauthorized,
	UnExpectedError:   InternalServerError,
}
