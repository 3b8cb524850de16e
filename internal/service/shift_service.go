package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
)

// ── 班次模块业务错误 ──

var (
	ErrShiftNotFound      = errors.New("班次不存在")
	ErrShiftDuplicate     = errors.New("该日期该单位该监督员已存在班次")
	ErrShiftDateInvalid   = errors.New("班次日期格式无效")
	ErrShiftTimeInvalid   = errors.New("班次时间格式无效")
	ErrSupervisorNotFound = errors.New("监督员不存在")
)

// DuplicateShiftError 重复班次冲突，携带既有班次 id 供调用方跳转。
// errors.Is(err, ErrShiftDuplicate) 成立。
type DuplicateShiftError struct {
	ExistingID string
}

func (e *DuplicateShiftError) Error() string {
	return fmt.Sprintf("该日期该单位该监督员已存在班次 (id=%s)", e.ExistingID)
}

func (e *DuplicateShiftError) Is(target error) bool { return target == ErrShiftDuplicate }

// NightWorkerDirectory 夜班员工目录（人员模块提供）
type NightWorkerDirectory interface {
	ListNightWorkers(ctx context.Context, unitID string) ([]dto.NightWorkerResponse, error)
}

// ShiftService 班次业务接口
type ShiftService interface {
	// Create 创建班次并为每名夜班员工物化三次点名
	Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ShiftDetailResponse, error)
	List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error)
	// Cancel 显式取消班次；之后完成度重算不再改写状态
	Cancel(ctx context.Context, id string, callerID string) error
	// Delete 删除班次并级联其点名、摄像头复查与告警；不可恢复
	Delete(ctx context.Context, id string, callerID string) error
}

type shiftService struct {
	cfg       *config.Config
	repo      *repository.Repository
	directory NightWorkerDirectory
	calc      *CompletionCalculator
	loc       *time.Location
	logger    *zap.Logger
}

// NewShiftService 创建 ShiftService 实例
func NewShiftService(
	cfg *config.Config,
	repo *repository.Repository,
	directory NightWorkerDirectory,
	calc *CompletionCalculator,
	loc *time.Location,
	logger *zap.Logger,
) ShiftService {
	return &shiftService{cfg: cfg, repo: repo, directory: directory, calc: calc, loc: loc, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *shiftService) Create(ctx context.Context, req *dto.CreateShiftRequest, callerID string) (*dto.ShiftDetailResponse, error) {
	if !dateutil.ValidKey(req.Date) {
		return nil, ErrShiftDateInvalid
	}
	if !dateutil.ValidClock(req.ShiftStart) || !dateutil.ValidClock(req.ShiftEnd) {
		return nil, ErrShiftTimeInvalid
	}

	supervisorID := req.SupervisorID
	if supervisorID == "" {
		supervisorID = callerID
	}

	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单位失败", zap.Error(err))
		return nil, err
	}
	if _, err := s.repo.User.GetByID(ctx, supervisorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSupervisorNotFound
		}
		s.logger.Error("查询监督员失败", zap.Error(err))
		return nil, err
	}

	// 应用层预检：同 (日期, 单位, 监督员) 已有未删除班次则报冲突，
	// 把既有班次 id 带回去，由调用方决定跳转或放弃
	if existing, err := s.repo.Shift.FindActive(ctx, req.Date, req.UnitID, supervisorID); err == nil {
		return nil, &DuplicateShiftError{ExistingID: existing.ShiftID}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询既有班次失败", zap.Error(err))
		return nil, err
	}

	workers, err := s.directory.ListNightWorkers(ctx, req.UnitID)
	if err != nil {
		s.logger.Error("查询夜班员工失败", zap.String("unit_id", req.UnitID), zap.Error(err))
		return nil, err
	}

	resting := make(map[string]bool, len(req.RestWorkerIDs))
	for _, id := range req.RestWorkerIDs {
		resting[id] = true
	}

	shift := &model.Shift{
		DateKey:       req.Date,
		UnitID:        req.UnitID,
		SupervisorID:  supervisorID,
		ShiftStart:    req.ShiftStart,
		ShiftEnd:      req.ShiftEnd,
		Status:        model.ShiftStatusEnCurso,
		CompletionPct: 0,
		Notes:         req.Notes,
	}
	shift.CreatedBy = &callerID
	shift.UpdatedBy = &callerID

	calls := s.materializeCalls(workers, resting, callerID)

	if err := s.repo.Shift.CreateWithCalls(ctx, shift, calls); err != nil {
		// 预检与插入之间被并发请求抢先：唯一索引兜底，反查既有班次返回同样的冲突
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, ferr := s.repo.Shift.FindActive(ctx, req.Date, req.UnitID, supervisorID); ferr == nil {
				return nil, &DuplicateShiftError{ExistingID: existing.ShiftID}
			}
			return nil, ErrShiftDuplicate
		}
		s.logger.Error("创建班次失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("班次已创建",
		zap.String("shift_id", shift.ShiftID),
		zap.String("date", shift.DateKey),
		zap.String("unit_id", shift.UnitID),
		zap.Int("calls", len(calls)),
	)

	return s.GetByID(ctx, shift.ShiftID)
}

// materializeCalls 为每名未休息的夜班员工生成三次点名
func (s *shiftService) materializeCalls(workers []dto.NightWorkerResponse, resting map[string]bool, callerID string) []model.Call {
	callTimes := s.cfg.Supervision.CallTimes
	calls := make([]model.Call, 0, len(workers)*model.CallsPerWorker)
	for _, w := range workers {
		if resting[w.ID] {
			continue
		}
		for n := 1; n <= model.CallsPerWorker; n++ {
			call := model.Call{
				WorkerID:      w.ID,
				WorkerName:    w.Name,
				WorkerPhone:   w.Phone,
				CallNumber:    n,
				ScheduledTime: callTimes[n-1],
			}
			call.CreatedBy = &callerID
			call.UpdatedBy = &callerID
			calls = append(calls, call)
		}
	}
	return calls
}

// ────────────────────── GetByID ──────────────────────

func (s *shiftService) GetByID(ctx context.Context, id string) (*dto.ShiftDetailResponse, error) {
	shift, err := s.repo.Shift.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	alerts, err := s.repo.Alert.ListByShift(ctx, id, false)
	if err != nil {
		s.logger.Error("查询班次告警失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toShiftDetailResponse(shift, alerts), nil
}

// ────────────────────── List ──────────────────────

func (s *shiftService) List(ctx context.Context, req *dto.ShiftListRequest) ([]dto.ShiftResponse, int64, error) {
	if !dateutil.ValidKey(req.DateFrom) || !dateutil.ValidKey(req.DateTo) {
		return nil, 0, ErrShiftDateInvalid
	}

	filter := repository.ShiftFilter{
		DateFrom:     req.DateFrom,
		DateTo:       req.DateTo,
		UnitID:       req.UnitID,
		SupervisorID: req.SupervisorID,
		Status:       req.Status,
	}

	shifts, total, err := s.repo.Shift.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出班次失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		result = append(result, *toShiftResponse(&shifts[i]))
	}
	return result, total, nil
}

// ────────────────────── Cancel ──────────────────────

func (s *shiftService) Cancel(ctx context.Context, id string, callerID string) error {
	shift, err := s.repo.Shift.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if shift.Status == model.ShiftStatusCancelada {
		return nil
	}

	shift.Status = model.ShiftStatusCancelada
	shift.UpdatedBy = &callerID
	if err := s.repo.Shift.Update(ctx, shift); err != nil {
		s.logger.Error("取消班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("班次已取消", zap.String("shift_id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *shiftService) Delete(ctx context.Context, id string, callerID string) error {
	if err := s.repo.Shift.Delete(ctx, id, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShiftNotFound
		}
		s.logger.Error("删除班次失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("班次已删除（含点名、复查与告警）", zap.String("shift_id", id), zap.String("by", callerID))
	return nil
}

// ────────────────────── 响应转换 ──────────────────────

func toShiftResponse(shift *model.Shift) *dto.ShiftResponse {
	resp := &dto.ShiftResponse{
		ID:                   shift.ShiftID,
		Date:                 shift.DateKey,
		UnitID:               shift.UnitID,
		SupervisorID:         shift.SupervisorID,
		ShiftStart:           shift.ShiftStart,
		ShiftEnd:             shift.ShiftEnd,
		Status:               shift.Status,
		CompletionPercentage: shift.CompletionPct,
		Notes:                shift.Notes,
		CreatedAt:            shift.CreatedAt.Format(time.RFC3339),
	}
	if shift.Unit != nil {
		resp.UnitName = shift.Unit.Name
	}
	if shift.Supervisor != nil {
		resp.SupervisorName = shift.Supervisor.Name
	}
	return resp
}

func toShiftDetailResponse(shift *model.Shift, alerts []model.Alert) *dto.ShiftDetailResponse {
	detail := &dto.ShiftDetailResponse{
		ShiftResponse: *toShiftResponse(shift),
		Calls:         make([]dto.CallResponse, 0, len(shift.Calls)),
		CameraReviews: make([]dto.CameraReviewResponse, 0, len(shift.CameraReviews)),
		Alerts:        make([]dto.AlertResponse, 0, len(alerts)),
	}
	for i := range shift.Calls {
		detail.Calls = append(detail.Calls, *toCallResponse(&shift.Calls[i]))
	}
	for i := range shift.CameraReviews {
		detail.CameraReviews = append(detail.CameraReviews, *toCameraReviewResponse(&shift.CameraReviews[i]))
	}
	for i := range alerts {
		detail.Alerts = append(detail.Alerts, *toAlertResponse(&alerts[i]))
	}
	return detail
}
