package job

import (
	"campcircle/internal/pkg/logger"
	"campcircle/internal/repository"
	"context"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// TopExpireJob 定期清理已到期的置顶。和热度任务各跑各的，两边写的是
// 同一张表上不相交的列，都是单语句 UPDATE，互相覆盖不掉。
type TopExpireJob struct {
	postRepo repository.PostRepo
	now      func() time.Time
}

func NewTopExpireJob(postRepo repository.PostRepo) *TopExpireJob {
	return &TopExpireJob{
		postRepo: postRepo,
		now:      time.Now,
	}
}

// Run 实现 cron.Job
func (j *TopExpireJob) Run() {
	traceID := "job-top-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	expired, err := j.postRepo.ExpireTopPosts(ctx, j.now())
	if err != nil {
		log.ErrorContext(ctx, "expire top posts failed", "err", err)
		return
	}
	if expired > 0 {
		log.InfoContext(ctx, "expired top posts", "count", expired)
	}
}
