package handler

import "github.com/AlvaritoMP/OpsFlow-sub000/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	Unit       *UnitHandler
	Resource   *ResourceHandler
	Shift      *ShiftHandler
	Checkpoint *CheckpointHandler
	Alert      *AlertHandler
	Report     *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		Unit:       NewUnitHandler(svc.Unit),
		Resource:   NewResourceHandler(svc.Resource),
		Shift:      NewShiftHandler(svc.Shift, svc.Calendar),
		Checkpoint: NewCheckpointHandler(svc.Checkpoint),
		Alert:      NewAlertHandler(svc.Alert),
		Report:     NewReportHandler(svc.Report),
	}
}
