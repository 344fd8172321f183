package service

import (
	"campcircle/internal/model"
	"campcircle/internal/pkg/cache"
	"campcircle/internal/pkg/consts"
	"campcircle/internal/pkg/kafka"
	"campcircle/internal/pkg/keylock"
	"campcircle/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ToggleKind 互动种类
type ToggleKind string

const (
	KindThumb  ToggleKind = "thumb"
	KindFavour ToggleKind = "favour"
	KindFollow ToggleKind = "follow"
)

// ToggleState 切换后到达的状态
type ToggleState string

const (
	StateOn  ToggleState = "on"
	StateOff ToggleState = "off"
)

// ToggleResult Delta 是计数的实际净变化。正常翻转是 +1/-1；
// 计数已经在下界上时减法被拦下，Delta 为 0。
type ToggleResult struct {
	State ToggleState `json:"state"`
	Delta int64       `json:"delta"`
}

// EngagementService 互动切换引擎：赞/收藏/关注都是以边记录存在与否为
// 准的开关，边和计数在同一个事务里变化。
type EngagementService interface {
	Toggle(ctx context.Context, actorID, targetID uint64, kind ToggleKind) (*ToggleResult, error)

	IsThumbed(ctx context.Context, userID, postID uint64) (bool, error)
	IsFavoured(ctx context.Context, userID, postID uint64) (bool, error)
	IsFollowing(ctx context.Context, userID, targetID uint64) (bool, error)

	RecordView(ctx context.Context, postID uint64) error
	RecordComment(ctx context.Context, postID uint64) error
	RemoveComment(ctx context.Context, postID uint64) error

	GetThumbedPosts(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
	GetFavouredPosts(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
	GetFans(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
	GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error)
}

type engagementServiceImpl struct {
	db             *gorm.DB
	postRepo       repository.PostRepo
	userRepo       repository.UserRepo
	engagementRepo repository.EngagementRepo
	followRepo     repository.FollowRepo
	counterCache   *cache.CounterCache
	notifier       kafka.Notifier
	locks          *keylock.KeyedMutex
}

func NewEngagementService(
	db *gorm.DB,
	postRepo repository.PostRepo,
	userRepo repository.UserRepo,
	engagementRepo repository.EngagementRepo,
	followRepo repository.FollowRepo,
	counterCache *cache.CounterCache,
	notifier kafka.Notifier,
) EngagementService {
	return &engagementServiceImpl{
		db:             db,
		postRepo:       postRepo,
		userRepo:       userRepo,
		engagementRepo: engagementRepo,
		followRepo:     followRepo,
		counterCache:   counterCache,
		notifier:       notifier,
		locks:          keylock.New(0),
	}
}

// Toggle 同一个 actor 的切换串行执行，避免两个并发请求同时看到"没有边"
// 而重复插入；不同 actor 之间不加锁，靠唯一约束和条件减法保证正确。
// 输掉唯一约束竞争时重读一次状态再重试，还是冲突才报给调用方。
func (s *engagementServiceImpl) Toggle(ctx context.Context, actorID, targetID uint64, kind ToggleKind) (*ToggleResult, error) {
	var ownerID uint64

	switch kind {
	case KindThumb, KindFavour:
		post, err := s.postRepo.GetPost(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if post == nil {
			return nil, ErrPostNotFound
		}
		// 不公开的帖子只有作者自己能互动
		if !post.IsPublic && post.UserID != actorID {
			return nil, ErrPostNoAccess
		}
		ownerID = post.UserID
	case KindFollow:
		if actorID == targetID {
			return nil, ErrFollowSelf
		}
		user, err := s.userRepo.GetUser(ctx, targetID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		ownerID = targetID
	default:
		return nil, ErrParamInvalid
	}

	lockKey := string(kind) + ":" + strconv.FormatUint(actorID, 10)
	s.locks.Lock(lockKey)
	defer s.locks.Unlock(lockKey)

	result, err := s.toggleOnce(ctx, actorID, targetID, kind)
	if errors.Is(err, ErrEngageConflict) {
		result, err = s.toggleOnce(ctx, actorID, targetID, kind)
	}
	if err != nil {
		return nil, err
	}

	s.afterToggle(ctx, actorID, targetID, ownerID, kind, result)
	return result, nil
}

func (s *engagementServiceImpl) toggleOnce(ctx context.Context, actorID, targetID uint64, kind ToggleKind) (*ToggleResult, error) {
	var result *ToggleResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if kind == KindFollow {
			result, err = s.toggleFollowTx(ctx, tx, actorID, targetID)
		} else {
			result, err = s.togglePostEdgeTx(ctx, tx, actorID, targetID, kind)
		}
		return err
	})
	if err != nil {
		if isDuplicateError(err) || isDeadlockError(err) {
			return nil, ErrEngageConflict
		}
		return nil, err
	}
	return result, nil
}

func (s *engagementServiceImpl) togglePostEdgeTx(ctx context.Context, tx *gorm.DB, actorID, postID uint64, kind ToggleKind) (*ToggleResult, error) {
	edges := s.engagementRepo.WithTx(tx)
	posts := s.postRepo.WithTx(tx)

	metric := repository.MetricThumb
	if kind == KindFavour {
		metric = repository.MetricFavour
	}

	var exists bool
	var err error
	if kind == KindFavour {
		exists, err = edges.FavourExists(ctx, actorID, postID)
	} else {
		exists, err = edges.ThumbExists(ctx, actorID, postID)
	}
	if err != nil {
		return nil, err
	}

	if exists {
		var removed int64
		if kind == KindFavour {
			removed, err = edges.DeleteFavour(ctx, actorID, postID)
		} else {
			removed, err = edges.DeleteThumb(ctx, actorID, postID)
		}
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			// 边在读和删之间被并发删掉了
			return nil, ErrEngageConflict
		}

		applied, err := posts.AdjustCounter(ctx, postID, metric, -1)
		if err != nil {
			return nil, err
		}
		delta := int64(0)
		if applied {
			delta = -1
		}
		return &ToggleResult{State: StateOff, Delta: delta}, nil
	}

	now := time.Now()
	if kind == KindFavour {
		err = edges.CreateFavour(ctx, &model.Favour{UserID: actorID, PostID: postID, CreatedAt: now})
	} else {
		err = edges.CreateThumb(ctx, &model.Thumb{UserID: actorID, PostID: postID, CreatedAt: now})
	}
	if err != nil {
		return nil, err
	}

	applied, err := posts.AdjustCounter(ctx, postID, metric, 1)
	if err != nil {
		return nil, err
	}
	if !applied {
		// 帖子在校验后被删了，回滚整个切换
		return nil, ErrPostNotFound
	}
	return &ToggleResult{State: StateOn, Delta: 1}, nil
}

func (s *engagementServiceImpl) toggleFollowTx(ctx context.Context, tx *gorm.DB, actorID, targetID uint64) (*ToggleResult, error) {
	follows := s.followRepo.WithTx(tx)
	users := s.userRepo.WithTx(tx)

	exists, err := follows.FollowExists(ctx, actorID, targetID)
	if err != nil {
		return nil, err
	}

	if exists {
		removed, err := follows.DeleteFollow(ctx, actorID, targetID)
		if err != nil {
			return nil, err
		}
		if removed == 0 {
			return nil, ErrEngageConflict
		}

		applied, err := users.AdjustCounter(ctx, targetID, repository.MetricFans, -1)
		if err != nil {
			return nil, err
		}
		if _, err = users.AdjustCounter(ctx, actorID, repository.MetricFollowing, -1); err != nil {
			return nil, err
		}
		delta := int64(0)
		if applied {
			delta = -1
		}
		return &ToggleResult{State: StateOff, Delta: delta}, nil
	}

	err = follows.CreateFollow(ctx, &model.Follow{FollowerID: actorID, FollowingID: targetID, CreatedAt: time.Now()})
	if err != nil {
		return nil, err
	}

	applied, err := users.AdjustCounter(ctx, targetID, repository.MetricFans, 1)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, ErrUserNotFound
	}
	if _, err = users.AdjustCounter(ctx, actorID, repository.MetricFollowing, 1); err != nil {
		return nil, err
	}
	return &ToggleResult{State: StateOn, Delta: 1}, nil
}

// afterToggle 事务提交后的副作用：失效相关计数缓存、发互动事件。
// 都是尽力而为，失败不影响已经提交的切换。
func (s *engagementServiceImpl) afterToggle(ctx context.Context, actorID, targetID, ownerID uint64, kind ToggleKind, result *ToggleResult) {
	switch kind {
	case KindThumb:
		s.counterCache.AsyncInvalidate(consts.PostThumbCountKey + strconv.FormatUint(targetID, 10))
	case KindFavour:
		s.counterCache.AsyncInvalidate(consts.PostFavourCountKey + strconv.FormatUint(targetID, 10))
	case KindFollow:
		s.counterCache.AsyncInvalidate(
			consts.UserFansCountKey+strconv.FormatUint(targetID, 10),
			consts.UserFollowCountKey+strconv.FormatUint(actorID, 10),
		)
	}

	s.notifier.Dispatch(ctx, &kafka.EngagementEvent{
		Kind:          string(kind),
		State:         string(result.State),
		ActorID:       actorID,
		TargetID:      targetID,
		TargetOwnerID: ownerID,
		OccurredAt:    time.Now(),
	})
}

func (s *engagementServiceImpl) IsThumbed(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.engagementRepo.ThumbExists(ctx, userID, postID)
}

func (s *engagementServiceImpl) IsFavoured(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.engagementRepo.FavourExists(ctx, userID, postID)
}

func (s *engagementServiceImpl) IsFollowing(ctx context.Context, userID, targetID uint64) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.followRepo.FollowExists(ctx, userID, targetID)
}

// RecordView 浏览不是开关，只是单向计数
func (s *engagementServiceImpl) RecordView(ctx context.Context, postID uint64) error {
	return s.adjustPostCounter(ctx, postID, repository.MetricView, 1, consts.PostViewCountKey)
}

// RecordComment 评论子系统落库成功后调用，评论数 +1
func (s *engagementServiceImpl) RecordComment(ctx context.Context, postID uint64) error {
	return s.adjustPostCounter(ctx, postID, repository.MetricComment, 1, consts.PostCommentCountKey)
}

// RemoveComment 评论被删除后调用，评论数 -1，下界为 0
func (s *engagementServiceImpl) RemoveComment(ctx context.Context, postID uint64) error {
	return s.adjustPostCounter(ctx, postID, repository.MetricComment, -1, consts.PostCommentCountKey)
}

func (s *engagementServiceImpl) adjustPostCounter(ctx context.Context, postID uint64, metric repository.Metric, delta int64, keyPrefix string) error {
	applied, err := s.postRepo.AdjustCounter(ctx, postID, metric, delta)
	if err != nil {
		return err
	}
	if !applied && delta > 0 {
		return ErrPostNotFound
	}
	if !applied {
		log.InfoContext(ctx, "counter decrement hit floor", "post_id", postID, "metric", metric)
	}

	s.counterCache.AsyncInvalidate(keyPrefix + strconv.FormatUint(postID, 10))
	return nil
}

func (s *engagementServiceImpl) GetThumbedPosts(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	return s.engagementRepo.GetThumbedPostIDs(ctx, userID, limit, offset)
}

func (s *engagementServiceImpl) GetFavouredPosts(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	return s.engagementRepo.GetFavouredPostIDs(ctx, userID, limit, offset)
}

// GetFans 粉丝的用户 ID 列表，最近关注的在前
func (s *engagementServiceImpl) GetFans(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	follows, err := s.followRepo.GetFans(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowerID)
	}
	return ids, nil
}

// GetFollowing 关注的用户 ID 列表，最近关注的在前
func (s *engagementServiceImpl) GetFollowing(ctx context.Context, userID uint64, limit, offset int) ([]uint64, error) {
	follows, err := s.followRepo.GetFollowing(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(follows))
	for _, f := range follows {
		ids = append(ids, f.FollowingID)
	}
	return ids, nil
}

func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

// isDeadlockError 互相关注的两个用户并发切换时，两边以相反顺序更新对方的
// 用户行，InnoDB 可能选一个事务当死锁牺牲品（错误号 1213）。牺牲品已经
// 回滚干净，按可重试冲突处理，让上层重读状态后再来一次。
func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1213
}
