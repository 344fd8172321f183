package job

import (
	"campcircle/internal/api/config"
	"campcircle/internal/model"
	"campcircle/internal/pkg/logger"
	"campcircle/internal/repository"
	"context"
	log "log/slog"
	"math"
	"time"

	"github.com/google/uuid"
)

// HotScoreReport 单次运行的汇总
type HotScoreReport struct {
	Processed int
	Elapsed   time.Duration
}

// HotScoreJob 周期性重算窗口内帖子的热度分数。
// 分数是计数和年龄的纯函数，重复跑只会算出同样的值；
// 一次运行失败不留中间状态，下一轮从窗口头部重来即可自愈。
type HotScoreJob struct {
	postRepo repository.PostRepo
	cfg      config.HotScoreConfig
	now      func() time.Time
}

func NewHotScoreJob(postRepo repository.PostRepo, cfg config.HotScoreConfig) *HotScoreJob {
	return &HotScoreJob{
		postRepo: postRepo,
		cfg:      cfg.WithDefaults(),
		now:      time.Now,
	}
}

// Run 实现 cron.Job
func (j *HotScoreJob) Run() {
	traceID := "job-hot-" + uuid.NewString()
	ctx := context.WithValue(context.Background(), logger.TraceIDKey, traceID)

	report, err := j.RunBatch(ctx)
	if err != nil {
		log.ErrorContext(ctx, "hot score run aborted",
			"processed", report.Processed,
			"elapsed", report.Elapsed,
			"err", err)
		return
	}
	log.InfoContext(ctx, "hot score run finished",
		"processed", report.Processed,
		"elapsed", report.Elapsed)
}

// RunBatch 从窗口头部开始按批扫描，直到一批不满为止。
// 单行写回失败跳过该行接着算，整批查询失败终止本次运行。
// 手动触发和定时触发走的是同一条路径。
func (j *HotScoreJob) RunBatch(ctx context.Context) (*HotScoreReport, error) {
	start := j.now()
	since := start.AddDate(0, 0, -j.cfg.WindowDays)
	report := &HotScoreReport{}

	offset := 0
	for {
		posts, err := j.postRepo.ListRecentPosts(ctx, since, j.cfg.BatchSize, offset)
		if err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		for _, post := range posts {
			score := j.Score(post, start)
			if err := j.postRepo.UpdateHotScore(ctx, post.ID, score, start); err != nil {
				log.ErrorContext(ctx, "update hot score failed, skipping row", "post_id", post.ID, "err", err)
				continue
			}
			report.Processed++
		}

		if len(posts) < j.cfg.BatchSize {
			break
		}
		offset += j.cfg.BatchSize
	}

	report.Elapsed = time.Since(start)
	return report, nil
}

// Score 热度公式：
//
//	score = (w1·赞 + w2·收藏 + w3·评论 + w4·浏览) / sqrt(年龄小时 + 偏移)
//
// 分母偏移保证刚发布的帖子不会除出一个爆炸值。结果保留 4 位小数。
func (j *HotScoreJob) Score(post *model.Post, now time.Time) float64 {
	ageHours := now.Sub(post.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	numerator := j.cfg.WeightThumb*float64(post.ThumbNum) +
		j.cfg.WeightFavour*float64(post.FavourNum) +
		j.cfg.WeightComment*float64(post.CommentNum) +
		j.cfg.WeightView*float64(post.ViewNum)

	score := numerator / math.Sqrt(ageHours+j.cfg.AgeOffset)
	return math.Round(score*10000) / 10000
}
