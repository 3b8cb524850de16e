package dto

// ── 历史报表模块 DTO ──

// ReportRangeRequest 报表范围请求（日历键闭区间）
type ReportRangeRequest struct {
	DateFrom string `form:"date_from" binding:"required"`
	DateTo   string `form:"date_to"   binding:"required"`
}

// WorkerReportResponse 按员工汇总的历史报表
//
// AverageCompletionPercentage 沿用班次级（多员工）完成度的平均值，
// 不是按该员工单独折算的指标——已知的近似处理，前端照此口径展示。
type WorkerReportResponse struct {
	WorkerID                    string  `json:"worker_id"`
	WorkerName                  string  `json:"worker_name"`
	DateFrom                    string  `json:"date_from"`
	DateTo                      string  `json:"date_to"`
	ShiftCount                  int     `json:"shift_count"`
	RequiredCalls               int     `json:"required_calls"`
	CompletedCalls              int     `json:"completed_calls"` // 有实际执行时间的点名
	AnsweredCalls               int     `json:"answered_calls"`
	PhotosReceived              int     `json:"photos_received"`
	DaysOnRest                  int     `json:"days_on_rest"`
	NonConformities             int     `json:"non_conformities"`
	AverageCompletionPercentage float64 `json:"average_completion_percentage"`
}

// UnitReportResponse 按单位汇总的历史报表
type UnitReportResponse struct {
	UnitID                      string  `json:"unit_id"`
	UnitName                    string  `json:"unit_name"`
	DateFrom                    string  `json:"date_from"`
	DateTo                      string  `json:"date_to"`
	ShiftCount                  int     `json:"shift_count"`
	DistinctWorkers             int     `json:"distinct_workers"`
	RequiredCalls               int     `json:"required_calls"`
	AnsweredCalls               int     `json:"answered_calls"`
	PhotosReceived              int     `json:"photos_received"`
	CameraReviewsDone           int     `json:"camera_reviews_done"`
	CameraReviewsWithScreenshot int     `json:"camera_reviews_with_screenshot"`
	NonConformities             int     `json:"non_conformities"`
	AverageCompletionPercentage float64 `json:"average_completion_percentage"`
}
