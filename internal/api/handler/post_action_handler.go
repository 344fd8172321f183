package handler

import (
	"campcircle/internal/api/dto"
	"campcircle/internal/pkg/response"
	"campcircle/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type PostActionHandler struct {
	engagementSvc service.EngagementService
	querySvc      service.PostQueryService
}

func NewPostActionHandler(engagementSvc service.EngagementService, querySvc service.PostQueryService) *PostActionHandler {
	return &PostActionHandler{
		engagementSvc: engagementSvc,
		querySvc:      querySvc,
	}
}

// ThumbPost 点赞/取消点赞，同一个接口来回切换
func (s *PostActionHandler) ThumbPost(c *gin.Context) {
	s.toggle(c, service.KindThumb)
}

// FavourPost 收藏/取消收藏
func (s *PostActionHandler) FavourPost(c *gin.Context) {
	s.toggle(c, service.KindFavour)
}

func (s *PostActionHandler) toggle(c *gin.Context, kind service.ToggleKind) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	userID := c.GetUint64("user_id")

	result, err := s.engagementSvc.Toggle(c.Request.Context(), userID, postID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetPostEngagement 获取帖子详情页的全量互动状态并上报浏览
func (s *PostActionHandler) GetPostEngagement(c *gin.Context) {
	userID := c.GetUint64("user_id")
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	ctx := c.Request.Context()
	state := &dto.PostEngagementDTO{}
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		state.ThumbNum, _ = s.querySvc.GetPostThumbCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		state.FavourNum, _ = s.querySvc.GetPostFavourCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		state.CommentNum, _ = s.querySvc.GetPostCommentCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		state.ViewNum, _ = s.querySvc.GetPostViewCount(gCtx, postID)
		return nil
	})
	g.Go(func() error {
		if userID > 0 {
			state.IsThumbed, _ = s.engagementSvc.IsThumbed(gCtx, userID, postID)
		}
		return nil
	})
	g.Go(func() error {
		if userID > 0 {
			state.IsFavoured, _ = s.engagementSvc.IsFavoured(gCtx, userID, postID)
		}
		return nil
	})

	_ = g.Wait()

	go func() {
		_ = s.engagementSvc.RecordView(c.Request.Context(), postID)
	}()

	response.Success(c, state)
}

// GetPostCounts 获取帖子四项计数
func (s *PostActionHandler) GetPostCounts(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	counts, err := s.querySvc.GetPostCounts(c.Request.Context(), postID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, counts)
}

// RecordComment 评论子系统落库后回调，评论数 +1
func (s *PostActionHandler) RecordComment(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.engagementSvc.RecordComment(c.Request.Context(), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// RemoveComment 评论删除后回调，评论数 -1
func (s *PostActionHandler) RemoveComment(c *gin.Context) {
	postID, err := strconv.ParseUint(c.Param("post_id"), 10, 64)
	if err != nil || postID == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}

	if err := s.engagementSvc.RemoveComment(c.Request.Context(), postID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// GetUserThumbed 当前用户点赞过的帖子
func (s *PostActionHandler) GetUserThumbed(c *gin.Context) {
	userID := c.GetUint64("user_id")
	limit, offset := getPagination(c)

	ids, err := s.engagementSvc.GetThumbedPosts(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PostIDListDTO{List: ids})
}

// GetUserFavoured 当前用户收藏过的帖子
func (s *PostActionHandler) GetUserFavoured(c *gin.Context) {
	userID := c.GetUint64("user_id")
	limit, offset := getPagination(c)

	ids, err := s.engagementSvc.GetFavouredPosts(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.PostIDListDTO{List: ids})
}

// GetHotPosts 置顶优先、热度倒序的帖子列表
func (s *PostActionHandler) GetHotPosts(c *gin.Context) {
	page, pageSize := getPageQuery(c)

	list, err := s.querySvc.GetHotPosts(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, list)
}
