package handler

import (
	"campcircle/internal/api/dto"
	"campcircle/internal/job"
	"campcircle/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminJobHandler struct {
	hotScoreJob *job.HotScoreJob
}

func NewAdminJobHandler(hotScoreJob *job.HotScoreJob) *AdminJobHandler {
	return &AdminJobHandler{hotScoreJob: hotScoreJob}
}

// TriggerHotScore 手动触发一轮热度重算，和定时触发走同一条路径
func (s *AdminJobHandler) TriggerHotScore(c *gin.Context) {
	report, err := s.hotScoreJob.RunBatch(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.HotScoreReportDTO{
		Processed: report.Processed,
		ElapsedMs: report.Elapsed.Milliseconds(),
	})
}
