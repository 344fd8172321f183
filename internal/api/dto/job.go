package dto

// HotScoreReportDTO 热度任务单次运行的结果
type HotScoreReportDTO struct {
	Processed int   `json:"processed"`
	ElapsedMs int64 `json:"elapsed_ms"`
}
