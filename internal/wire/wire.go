package wire

import (
	"campcircle/internal/api"
	"campcircle/internal/api/config"
	"campcircle/internal/api/handler"
	"campcircle/internal/job"
	"campcircle/internal/pkg/cache"
	"campcircle/internal/pkg/cron"
	"campcircle/internal/pkg/kafka"
	"campcircle/internal/pkg/redis"
	"campcircle/internal/repository"
	"campcircle/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router   *gin.Engine
	DB       *gorm.DB
	CronMgr  *cron.Manager
	Producer *kafka.EngagementProducer
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	postRepo := repository.NewPostRepo(db)
	userRepo := repository.NewUserRepo(db)
	engagementRepo := repository.NewEngagementRepo(db)
	followRepo := repository.NewFollowRepo(db)

	counterCache := cache.NewCounterCache(redis.GetRdbClient(), cfg.Cache)

	producer, err := kafka.NewEngagementProducer(cfg.Kafka)
	if err != nil {
		return nil, err
	}

	engagementService := service.NewEngagementService(
		db, postRepo, userRepo, engagementRepo, followRepo, counterCache, producer)
	postQueryService := service.NewPostQueryService(postRepo, userRepo, counterCache)

	hotScoreJob := job.NewHotScoreJob(postRepo, cfg.HotScore)
	topExpireJob := job.NewTopExpireJob(postRepo)

	handlers := &api.HandlersGroup{
		PostActionHandler: handler.NewPostActionHandler(engagementService, postQueryService),
		UserFollowHandler: handler.NewUserFollowHandler(engagementService, postQueryService),
		AdminJobHandler:   handler.NewAdminJobHandler(hotScoreJob),
	}

	router := api.SetupRouter(handlers)

	cronMgr := cron.NewCronManager(hotScoreJob, topExpireJob, cfg)

	return &ApplicationContainer{
		Router:   router,
		DB:       db,
		CronMgr:  cronMgr,
		Producer: producer,
	}, nil
}
