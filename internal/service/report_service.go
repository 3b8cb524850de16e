package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/redis"
)

// ── 报表模块业务错误 ──

var (
	ErrReportNoData       = errors.New("指定范围内没有班次数据")
	ErrReportRangeInvalid = errors.New("报表日期范围无效")
)

// ReportService 历史聚合报表接口
//
// 范围为日历键闭区间；零命中返回 ErrReportNoData 而不是空报表，
// 调用方必须能区分"没有活动"和"查无此人/单位"。
type ReportService interface {
	ByWorker(ctx context.Context, workerID string, req *dto.ReportRangeRequest) (*dto.WorkerReportResponse, error)
	ByUnit(ctx context.Context, unitID string, req *dto.ReportRangeRequest) (*dto.UnitReportResponse, error)
}

type reportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例；rdb 可为 nil（降级为不缓存）
func NewReportService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) ReportService {
	return &reportService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

func validateRange(req *dto.ReportRangeRequest) error {
	if !dateutil.ValidKey(req.DateFrom) || !dateutil.ValidKey(req.DateTo) {
		return ErrReportRangeInvalid
	}
	if req.DateFrom > req.DateTo {
		return ErrReportRangeInvalid
	}
	return nil
}

// ────────────────────── 按员工 ──────────────────────

func (s *reportService) ByWorker(ctx context.Context, workerID string, req *dto.ReportRangeRequest) (*dto.WorkerReportResponse, error) {
	if err := validateRange(req); err != nil {
		return nil, err
	}

	worker, err := s.repo.Resource.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	cacheKey := fmt.Sprintf("worker:%s:%s:%s", workerID, req.DateFrom, req.DateTo)
	var cached dto.WorkerReportResponse
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	shifts, err := s.repo.Shift.ListRange(ctx, req.DateFrom, req.DateTo, "")
	if err != nil {
		s.logger.Error("查询班次范围失败", zap.Error(err))
		return nil, err
	}

	report := &dto.WorkerReportResponse{
		WorkerID:   workerID,
		WorkerName: worker.FullName,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
	}
	var pctSum int
	for i := range shifts {
		shift := &shifts[i]
		involved := false
		restDay := false
		for j := range shift.Calls {
			call := &shift.Calls[j]
			if call.WorkerID != workerID {
				continue
			}
			involved = true
			report.RequiredCalls++
			if call.ActualTime != nil {
				report.CompletedCalls++
			}
			if call.Answered {
				report.AnsweredCalls++
			}
			if call.PhotoReceived {
				report.PhotosReceived++
			}
			if call.OnRest {
				restDay = true
			}
			if call.NonConformity {
				report.NonConformities++
			}
		}
		if involved {
			report.ShiftCount++
			pctSum += shift.CompletionPct
		}
		if restDay {
			report.DaysOnRest++
		}
	}

	if report.ShiftCount == 0 {
		return nil, ErrReportNoData
	}
	report.AverageCompletionPercentage = round1(float64(pctSum) / float64(report.ShiftCount))

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

// ────────────────────── 按单位 ──────────────────────

func (s *reportService) ByUnit(ctx context.Context, unitID string, req *dto.ReportRangeRequest) (*dto.UnitReportResponse, error) {
	if err := validateRange(req); err != nil {
		return nil, err
	}

	unit, err := s.repo.Unit.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单位失败", zap.Error(err))
		return nil, err
	}

	cacheKey := fmt.Sprintf("unit:%s:%s:%s", unitID, req.DateFrom, req.DateTo)
	var cached dto.UnitReportResponse
	if s.fromCache(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	shifts, err := s.repo.Shift.ListRange(ctx, req.DateFrom, req.DateTo, unitID)
	if err != nil {
		s.logger.Error("查询班次范围失败", zap.Error(err))
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, ErrReportNoData
	}

	report := &dto.UnitReportResponse{
		UnitID:     unitID,
		UnitName:   unit.Name,
		DateFrom:   req.DateFrom,
		DateTo:     req.DateTo,
		ShiftCount: len(shifts),
	}
	workers := make(map[string]struct{})
	var pctSum int
	for i := range shifts {
		shift := &shifts[i]
		pctSum += shift.CompletionPct
		for j := range shift.Calls {
			call := &shift.Calls[j]
			workers[call.WorkerID] = struct{}{}
			report.RequiredCalls++
			if call.Answered {
				report.AnsweredCalls++
			}
			if call.PhotoReceived {
				report.PhotosReceived++
			}
			if call.NonConformity {
				report.NonConformities++
			}
		}
		for j := range shift.CameraReviews {
			review := &shift.CameraReviews[j]
			report.CameraReviewsDone++
			if review.ScreenshotURL != "" {
				report.CameraReviewsWithScreenshot++
			}
			if review.NonConformity {
				report.NonConformities++
			}
		}
	}
	report.DistinctWorkers = len(workers)
	report.AverageCompletionPercentage = round1(float64(pctSum) / float64(len(shifts)))

	s.toCache(ctx, cacheKey, report)
	return report, nil
}

// ────────────────────── 缓存 ──────────────────────

// fromCache 缓存命中时反序列化到 out；任何缓存故障都静默降级为直查
func (s *reportService) fromCache(ctx context.Context, key string, out interface{}) bool {
	if s.rdb == nil {
		return false
	}
	payload, err := s.rdb.GetReport(ctx, key)
	if err != nil {
		s.logger.Warn("读取报表缓存失败", zap.String("key", key), zap.Error(err))
		return false
	}
	if payload == "" {
		return false
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		s.logger.Warn("报表缓存反序列化失败", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *reportService) toCache(ctx context.Context, key string, report interface{}) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return
	}
	ttl := time.Duration(s.cfg.Supervision.ReportCacheTTL) * time.Second
	if err := s.rdb.SetReport(ctx, key, string(payload), ttl); err != nil {
		s.logger.Warn("写入报表缓存失败", zap.String("key", key), zap.Error(err))
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
