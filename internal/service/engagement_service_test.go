package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	mysqldrv "github.com/go-sql-driver/mysql"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campcircle/internal/api/config"
	"campcircle/internal/model"
	"campcircle/internal/pkg/cache"
	"campcircle/internal/pkg/kafka"
	"campcircle/internal/repository"
)

// captureNotifier 把事件攒在内存里，替代真正的 Kafka 生产者
type captureNotifier struct {
	mu     sync.Mutex
	events []*kafka.EngagementEvent
}

func (n *captureNotifier) Dispatch(ctx context.Context, event *kafka.EngagementEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) snapshot() []*kafka.EngagementEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*kafka.EngagementEvent(nil), n.events...)
}

type engagementFixture struct {
	db       *gorm.DB
	svc      EngagementService
	postRepo repository.PostRepo
	userRepo repository.UserRepo
	notifier *captureNotifier
}

func setupEngagement(t *testing.T) *engagementFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.Post{}, &model.User{}, &model.Thumb{}, &model.Favour{}, &model.Follow{},
	))

	mr := miniredis.RunT(t)
	rdb := redisv9.NewClient(&redisv9.Options{Addr: mr.Addr()})
	counterCache := cache.NewCounterCache(rdb, config.CacheConfig{})

	postRepo := repository.NewPostRepo(db)
	userRepo := repository.NewUserRepo(db)
	engagementRepo := repository.NewEngagementRepo(db)
	followRepo := repository.NewFollowRepo(db)
	notifier := &captureNotifier{}

	svc := NewEngagementService(db, postRepo, userRepo, engagementRepo, followRepo, counterCache, notifier)

	return &engagementFixture{
		db:       db,
		svc:      svc,
		postRepo: postRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

func (f *engagementFixture) seedUser(t *testing.T, id uint64) {
	require.NoError(t, f.db.Create(&model.User{ID: id, Nickname: "u"}).Error)
}

func (f *engagementFixture) seedPost(t *testing.T, id, ownerID uint64, public bool) {
	require.NoError(t, f.db.Create(&model.Post{
		ID: id, UserID: ownerID, Content: "p", IsPublic: public,
		Status: model.PostStatusPublished,
	}).Error)
}

func TestToggle_ThumbOnThenOff(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedPost(t, 100, 1, true)

	result, err := f.svc.Toggle(ctx, 1, 100, KindThumb)
	require.NoError(t, err)
	require.Equal(t, StateOn, result.State)
	require.EqualValues(t, 1, result.Delta)

	count, err := f.postRepo.GetCounter(ctx, 100, repository.MetricThumb)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	thumbed, err := f.svc.IsThumbed(ctx, 1, 100)
	require.NoError(t, err)
	require.True(t, thumbed)

	result, err = f.svc.Toggle(ctx, 1, 100, KindThumb)
	require.NoError(t, err)
	require.Equal(t, StateOff, result.State)
	require.EqualValues(t, -1, result.Delta)

	count, err = f.postRepo.GetCounter(ctx, 100, repository.MetricThumb)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	thumbed, err = f.svc.IsThumbed(ctx, 1, 100)
	require.NoError(t, err)
	require.False(t, thumbed)

	events := f.notifier.snapshot()
	require.Len(t, events, 2)
	require.Equal(t, "thumb", events[0].Kind)
	require.Equal(t, "on", events[0].State)
	require.Equal(t, "off", events[1].State)
	require.EqualValues(t, 1, events[0].TargetOwnerID)
}

func TestToggle_FavourCrossActors(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedUser(t, 2)
	f.seedPost(t, 100, 1, true)

	_, err := f.svc.Toggle(ctx, 1, 100, KindFavour)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, 2, 100, KindFavour)
	require.NoError(t, err)

	count, err := f.postRepo.GetCounter(ctx, 100, repository.MetricFavour)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	// 其中一人取消，另一人的收藏不受影响
	_, err = f.svc.Toggle(ctx, 1, 100, KindFavour)
	require.NoError(t, err)

	count, err = f.postRepo.GetCounter(ctx, 100, repository.MetricFavour)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	favoured, err := f.svc.IsFavoured(ctx, 2, 100)
	require.NoError(t, err)
	require.True(t, favoured)
}

func TestToggle_PostNotFound(t *testing.T) {
	f := setupEngagement(t)
	f.seedUser(t, 1)

	_, err := f.svc.Toggle(context.Background(), 1, 404, KindThumb)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestToggle_PrivatePost(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedUser(t, 2)
	f.seedPost(t, 100, 1, false)

	// 别人不能碰不公开的帖子
	_, err := f.svc.Toggle(ctx, 2, 100, KindThumb)
	require.ErrorIs(t, err, ErrPostNoAccess)

	// 作者自己可以
	result, err := f.svc.Toggle(ctx, 1, 100, KindThumb)
	require.NoError(t, err)
	require.Equal(t, StateOn, result.State)
}

func TestToggle_FollowOnThenOff(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedUser(t, 2)

	result, err := f.svc.Toggle(ctx, 1, 2, KindFollow)
	require.NoError(t, err)
	require.Equal(t, StateOn, result.State)

	fans, err := f.userRepo.GetCounter(ctx, 2, repository.MetricFans)
	require.NoError(t, err)
	require.EqualValues(t, 1, fans)

	following, err := f.userRepo.GetCounter(ctx, 1, repository.MetricFollowing)
	require.NoError(t, err)
	require.EqualValues(t, 1, following)

	isFollowing, err := f.svc.IsFollowing(ctx, 1, 2)
	require.NoError(t, err)
	require.True(t, isFollowing)

	result, err = f.svc.Toggle(ctx, 1, 2, KindFollow)
	require.NoError(t, err)
	require.Equal(t, StateOff, result.State)

	fans, err = f.userRepo.GetCounter(ctx, 2, repository.MetricFans)
	require.NoError(t, err)
	require.EqualValues(t, 0, fans)

	following, err = f.userRepo.GetCounter(ctx, 1, repository.MetricFollowing)
	require.NoError(t, err)
	require.EqualValues(t, 0, following)
}

func TestToggle_FollowSelf(t *testing.T) {
	f := setupEngagement(t)
	f.seedUser(t, 1)

	_, err := f.svc.Toggle(context.Background(), 1, 1, KindFollow)
	require.ErrorIs(t, err, ErrFollowSelf)
}

func TestToggle_FollowUnknownUser(t *testing.T) {
	f := setupEngagement(t)
	f.seedUser(t, 1)

	_, err := f.svc.Toggle(context.Background(), 1, 999, KindFollow)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestToggle_SameActorSerialized(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedPost(t, 100, 1, true)

	// 同一个 actor 的偶数次并发切换最终收敛到关闭态，计数归零
	const rounds = 10
	errs := make(chan error, rounds)
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Toggle(ctx, 1, 100, KindThumb)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := f.postRepo.GetCounter(ctx, 100, repository.MetricThumb)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	thumbed, err := f.svc.IsThumbed(ctx, 1, 100)
	require.NoError(t, err)
	require.False(t, thumbed)
}

func TestTxConflictClassification(t *testing.T) {
	require.True(t, isDuplicateError(gorm.ErrDuplicatedKey))
	require.True(t, isDuplicateError(&mysqldrv.MySQLError{Number: 1062}))
	require.False(t, isDuplicateError(errors.New("boom")))

	// 死锁牺牲品（1213）和唯一键冲突一样走重试路径
	require.True(t, isDeadlockError(&mysqldrv.MySQLError{Number: 1213}))
	require.True(t, isDeadlockError(fmt.Errorf("tx: %w", &mysqldrv.MySQLError{Number: 1213})))
	require.False(t, isDeadlockError(&mysqldrv.MySQLError{Number: 1062}))
	require.False(t, isDeadlockError(nil))
}

func TestRecordViewAndComments(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedPost(t, 100, 1, true)

	require.NoError(t, f.svc.RecordView(ctx, 100))
	require.NoError(t, f.svc.RecordView(ctx, 100))

	views, err := f.postRepo.GetCounter(ctx, 100, repository.MetricView)
	require.NoError(t, err)
	require.EqualValues(t, 2, views)

	require.NoError(t, f.svc.RecordComment(ctx, 100))
	require.NoError(t, f.svc.RemoveComment(ctx, 100))
	// 评论数已经是 0，再删一次也不会变成负数
	require.NoError(t, f.svc.RemoveComment(ctx, 100))

	comments, err := f.postRepo.GetCounter(ctx, 100, repository.MetricComment)
	require.NoError(t, err)
	require.EqualValues(t, 0, comments)
}

func TestRecordView_UnknownPost(t *testing.T) {
	f := setupEngagement(t)

	err := f.svc.RecordView(context.Background(), 404)
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestListAccessors(t *testing.T) {
	f := setupEngagement(t)
	ctx := context.Background()
	f.seedUser(t, 1)
	f.seedUser(t, 2)
	f.seedUser(t, 3)
	f.seedPost(t, 100, 2, true)
	f.seedPost(t, 101, 2, true)

	_, err := f.svc.Toggle(ctx, 1, 100, KindThumb)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, 1, 101, KindFavour)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, 1, 2, KindFollow)
	require.NoError(t, err)
	_, err = f.svc.Toggle(ctx, 3, 2, KindFollow)
	require.NoError(t, err)

	thumbed, err := f.svc.GetThumbedPosts(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{100}, thumbed)

	favoured, err := f.svc.GetFavouredPosts(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{101}, favoured)

	fans, err := f.svc.GetFans(ctx, 2, 10, 0)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{1, 3}, fans)

	following, err := f.svc.GetFollowing(ctx, 1, 10, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{2}, following)
}
