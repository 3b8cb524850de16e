package service

import (
	"go.uber.org/zap"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/jwt"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/redis"
)

// Service 业务服务聚合
type Service struct {
	Auth       AuthService
	Unit       UnitService
	Resource   ResourceService
	Shift      ShiftService
	Checkpoint CheckpointService
	Alert      AlertService
	Report     ReportService
	Calendar   CalendarService
}

// NewService 按依赖顺序组装全部业务服务。
// rdb 允许为 nil：报表退化为直查，登出退化为客户端弃用 token。
func NewService(cfg *config.Config, repo *repository.Repository, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) (*Service, error) {
	// 日历时区只解析一次，全部服务共用同一基准
	loc, err := cfg.Supervision.Location()
	if err != nil {
		return nil, err
	}
	calc := NewCompletionCalculator(repo, loc, logger)

	resourceSvc := NewResourceService(cfg, repo, logger)
	alertSvc := NewAlertService(cfg, repo, loc, logger)

	return &Service{
		Auth:       NewAuthService(repo, jwtMgr, rdb, logger),
		Unit:       NewUnitService(repo, logger),
		Resource:   resourceSvc,
		Shift:      NewShiftService(cfg, repo, resourceSvc, calc, loc, logger),
		Checkpoint: NewCheckpointService(cfg, repo, alertSvc, calc, logger),
		Alert:      alertSvc,
		Report:     NewReportService(cfg, repo, rdb, logger),
		Calendar:   NewCalendarService(cfg, repo, loc, logger),
	}, nil
}
