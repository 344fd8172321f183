package service

import (
	"campcircle/internal/api/dto"
	"campcircle/internal/pkg/cache"
	"campcircle/internal/pkg/consts"
	"campcircle/internal/repository"
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// PostQueryService 计数与热榜的读路径。所有计数走旁路缓存，
// 未命中时回源到帖子/用户行上的冗余列。
type PostQueryService interface {
	GetPostThumbCount(ctx context.Context, postID uint64) (int64, error)
	GetPostFavourCount(ctx context.Context, postID uint64) (int64, error)
	GetPostCommentCount(ctx context.Context, postID uint64) (int64, error)
	GetPostViewCount(ctx context.Context, postID uint64) (int64, error)
	GetPostCounts(ctx context.Context, postID uint64) (*dto.PostCountsDTO, error)

	GetUserFansCount(ctx context.Context, userID uint64) (int64, error)
	GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error)

	GetHotPosts(ctx context.Context, page, pageSize int) (*dto.HotPostListDTO, error)
}

type postQueryServiceImpl struct {
	postRepo     repository.PostRepo
	userRepo     repository.UserRepo
	counterCache *cache.CounterCache
}

func NewPostQueryService(
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	counterCache *cache.CounterCache,
) PostQueryService {
	return &postQueryServiceImpl{
		postRepo:     postRepo,
		userRepo:     userRepo,
		counterCache: counterCache,
	}
}

func (s *postQueryServiceImpl) GetPostThumbCount(ctx context.Context, postID uint64) (int64, error) {
	return s.getPostCount(ctx, postID, repository.MetricThumb, consts.PostThumbCountKey)
}

func (s *postQueryServiceImpl) GetPostFavourCount(ctx context.Context, postID uint64) (int64, error) {
	return s.getPostCount(ctx, postID, repository.MetricFavour, consts.PostFavourCountKey)
}

func (s *postQueryServiceImpl) GetPostCommentCount(ctx context.Context, postID uint64) (int64, error) {
	return s.getPostCount(ctx, postID, repository.MetricComment, consts.PostCommentCountKey)
}

func (s *postQueryServiceImpl) GetPostViewCount(ctx context.Context, postID uint64) (int64, error) {
	return s.getPostCount(ctx, postID, repository.MetricView, consts.PostViewCountKey)
}

func (s *postQueryServiceImpl) GetPostCounts(ctx context.Context, postID uint64) (*dto.PostCountsDTO, error) {
	counts := &dto.PostCountsDTO{}
	var err error
	if counts.ThumbNum, err = s.GetPostThumbCount(ctx, postID); err != nil {
		return nil, err
	}
	if counts.FavourNum, err = s.GetPostFavourCount(ctx, postID); err != nil {
		return nil, err
	}
	if counts.CommentNum, err = s.GetPostCommentCount(ctx, postID); err != nil {
		return nil, err
	}
	if counts.ViewNum, err = s.GetPostViewCount(ctx, postID); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s *postQueryServiceImpl) GetUserFansCount(ctx context.Context, userID uint64) (int64, error) {
	return s.getUserCount(ctx, userID, repository.MetricFans, consts.UserFansCountKey)
}

func (s *postQueryServiceImpl) GetUserFollowingCount(ctx context.Context, userID uint64) (int64, error) {
	return s.getUserCount(ctx, userID, repository.MetricFollowing, consts.UserFollowCountKey)
}

// GetHotPosts 置顶优先、热度倒序的分页列表，多取一条判断还有没有下一页
func (s *postQueryServiceImpl) GetHotPosts(ctx context.Context, page, pageSize int) (*dto.HotPostListDTO, error) {
	posts, err := s.postRepo.ListHotPosts(ctx, pageSize+1, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}

	hasMore := len(posts) > pageSize
	if hasMore {
		posts = posts[:pageSize]
	}

	list := make([]*dto.HotPostDTO, 0, len(posts))
	for _, post := range posts {
		item := &dto.HotPostDTO{}
		_ = copier.Copy(item, post)
		item.CreatedAt = post.CreatedAt.Format(time.DateTime)
		list = append(list, item)
	}
	return &dto.HotPostListDTO{List: list, HasMore: hasMore}, nil
}

// getPostCount 回源查无此帖时不写缓存，已删帖子不会以缓存的 0 续命
func (s *postQueryServiceImpl) getPostCount(ctx context.Context, postID uint64, metric repository.Metric, keyPrefix string) (int64, error) {
	key := keyPrefix + strconv.FormatUint(postID, 10)
	return s.counterCache.GetOrCompute(ctx, key, func(ctx context.Context) (int64, error) {
		count, err := s.postRepo.GetCounter(ctx, postID, metric)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrPostNotFound
		}
		return count, err
	})
}

func (s *postQueryServiceImpl) getUserCount(ctx context.Context, userID uint64, metric repository.UserMetric, keyPrefix string) (int64, error) {
	key := keyPrefix + strconv.FormatUint(userID, 10)
	return s.counterCache.GetOrCompute(ctx, key, func(ctx context.Context) (int64, error) {
		count, err := s.userRepo.GetCounter(ctx, userID, metric)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return count, err
	})
}
