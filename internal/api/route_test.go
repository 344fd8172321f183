package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"campcircle/internal/api/config"
	"campcircle/internal/api/handler"
	"campcircle/internal/job"
	"campcircle/internal/model"
	"campcircle/internal/pkg/cache"
	"campcircle/internal/pkg/kafka"
	"campcircle/internal/repository"
	"campcircle/internal/service"
)

type noopNotifier struct{}

func (noopNotifier) Dispatch(ctx context.Context, event *kafka.EngagementEvent) {}

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

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

	engagementSvc := service.NewEngagementService(
		db, postRepo, userRepo, engagementRepo, followRepo, counterCache, noopNotifier{})
	querySvc := service.NewPostQueryService(postRepo, userRepo, counterCache)
	hotScoreJob := job.NewHotScoreJob(postRepo, config.HotScoreConfig{})

	router := SetupRouter(&HandlersGroup{
		PostActionHandler: handler.NewPostActionHandler(engagementSvc, querySvc),
		UserFollowHandler: handler.NewUserFollowHandler(engagementSvc, querySvc),
		AdminJobHandler:   handler.NewAdminJobHandler(hotScoreJob),
	})
	return router, db
}

func doRequest(t *testing.T, router *gin.Engine, method, path string, userID string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestRouter_Ping(t *testing.T) {
	router, _ := setupTestRouter(t)

	status, body := doRequest(t, router, http.MethodGet, "/api/ping", "")
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "pong", body["Message"])
}

func TestRouter_ThumbToggleFlow(t *testing.T) {
	router, db := setupTestRouter(t)
	require.NoError(t, db.Create(&model.User{ID: 1, Nickname: "u"}).Error)
	require.NoError(t, db.Create(&model.Post{
		ID: 100, UserID: 1, Content: "p", IsPublic: true, Status: model.PostStatusPublished,
	}).Error)

	_, body := doRequest(t, router, http.MethodPost, "/api/post/action/thumbs/100", "1")
	require.EqualValues(t, 200, body["code"])
	data := body["data"].(map[string]interface{})
	require.Equal(t, "on", data["state"])
	require.EqualValues(t, 1, data["delta"])

	_, body = doRequest(t, router, http.MethodGet, "/api/post/action/counts/100", "")
	counts := body["data"].(map[string]interface{})
	require.EqualValues(t, 1, counts["thumb_num"])

	_, body = doRequest(t, router, http.MethodPost, "/api/post/action/thumbs/100", "1")
	data = body["data"].(map[string]interface{})
	require.Equal(t, "off", data["state"])
}

func TestRouter_ToggleRequiresIdentity(t *testing.T) {
	router, _ := setupTestRouter(t)

	_, body := doRequest(t, router, http.MethodPost, "/api/post/action/thumbs/100", "")
	require.EqualValues(t, 401, body["code"])
}

func TestRouter_ToggleUnknownPost(t *testing.T) {
	router, db := setupTestRouter(t)
	require.NoError(t, db.Create(&model.User{ID: 1, Nickname: "u"}).Error)

	_, body := doRequest(t, router, http.MethodPost, "/api/post/action/thumbs/404", "1")
	require.EqualValues(t, 404, body["code"])
}

func TestRouter_FollowFlow(t *testing.T) {
	router, db := setupTestRouter(t)
	require.NoError(t, db.Create(&model.User{ID: 1, Nickname: "a"}).Error)
	require.NoError(t, db.Create(&model.User{ID: 2, Nickname: "b"}).Error)

	_, body := doRequest(t, router, http.MethodPost, "/api/user-relation/follow/2", "1")
	require.EqualValues(t, 200, body["code"])

	_, body = doRequest(t, router, http.MethodGet, "/api/user-relation/isfollow/2", "1")
	data := body["data"].(map[string]interface{})
	require.Equal(t, true, data["is_following"])

	_, body = doRequest(t, router, http.MethodGet, "/api/user-relation/followers/count?user_id=2", "1")
	data = body["data"].(map[string]interface{})
	require.EqualValues(t, 1, data["count"])

	// 关注自己被拒
	_, body = doRequest(t, router, http.MethodPost, "/api/user-relation/follow/1", "1")
	require.EqualValues(t, 400, body["code"])
}

func TestRouter_AdminHotScoreTrigger(t *testing.T) {
	router, db := setupTestRouter(t)
	require.NoError(t, db.Create(&model.Post{
		ID: 1, UserID: 1, Content: "p", IsPublic: true,
		Status: model.PostStatusPublished, ThumbNum: 2,
	}).Error)

	_, body := doRequest(t, router, http.MethodPost, "/api/admin/jobs/hot-score/run", "9")
	require.EqualValues(t, 200, body["code"])
	data := body["data"].(map[string]interface{})
	require.EqualValues(t, 1, data["processed"])
}
