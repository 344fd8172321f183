package handler

import (
	"campcircle/internal/api/dto"
	"campcircle/internal/pkg/response"
	"campcircle/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserFollowHandler struct {
	engagementSvc service.EngagementService
	querySvc      service.PostQueryService
}

func NewUserFollowHandler(engagementSvc service.EngagementService, querySvc service.PostQueryService) *UserFollowHandler {
	return &UserFollowHandler{
		engagementSvc: engagementSvc,
		querySvc:      querySvc,
	}
}

// Follow 关注/取消关注，来回切换
func (s *UserFollowHandler) Follow(c *gin.Context) {
	userID := c.GetUint64("user_id")
	followingID, err := strconv.ParseUint(c.Param("following_id"), 10, 64)
	if err != nil || followingID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	result, err := s.engagementSvc.Toggle(c.Request.Context(), userID, followingID, service.KindFollow)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetSomeoneIsFollowing 当前用户是否关注了某人
func (s *UserFollowHandler) GetSomeoneIsFollowing(c *gin.Context) {
	userID := c.GetUint64("user_id")
	followingID, err := strconv.ParseUint(c.Param("following_id"), 10, 64)
	if err != nil || followingID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	isFollowing, err := s.engagementSvc.IsFollowing(c.Request.Context(), userID, followingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.IsFollowingDTO{IsFollowing: isFollowing})
}

// GetUserFansCount 粉丝数，走旁路缓存
func (s *UserFollowHandler) GetUserFansCount(c *gin.Context) {
	userID := s.targetUser(c)
	if userID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	count, err := s.querySvc.GetUserFansCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}

// GetUserFollowingCount 关注数，走旁路缓存
func (s *UserFollowHandler) GetUserFollowingCount(c *gin.Context) {
	userID := s.targetUser(c)
	if userID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	count, err := s.querySvc.GetUserFollowingCount(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, map[string]int64{"count": count})
}

// GetUserFans 粉丝列表
func (s *UserFollowHandler) GetUserFans(c *gin.Context) {
	userID := c.GetUint64("user_id")
	limit, offset := getPagination(c)

	fans, err := s.engagementSvc.GetFans(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UserIDListDTO{List: fans})
}

// GetUserFollowings 关注列表
func (s *UserFollowHandler) GetUserFollowings(c *gin.Context) {
	userID := c.GetUint64("user_id")
	limit, offset := getPagination(c)

	followings, err := s.engagementSvc.GetFollowing(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.UserIDListDTO{List: followings})
}

// targetUser 优先取 user_id 查询参数，缺省时查当前登录用户
func (s *UserFollowHandler) targetUser(c *gin.Context) uint64 {
	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return 0
		}
		return userID
	}
	return c.GetUint64("user_id")
}
