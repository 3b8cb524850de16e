package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
)

// ── 检查点模块业务错误 ──

var (
	ErrCallNotFound            = errors.New("点名记录不存在")
	ErrCallDuplicate           = errors.New("该班次该员工的该次点名已存在")
	ErrCallTimeInvalid         = errors.New("点名计划时间格式无效")
	ErrReviewNumberInvalid     = errors.New("摄像头复查槽位编号必须为 1-3")
	ErrReviewNotesRequired     = errors.New("摄像头复查完成后必须填写备注")
	ErrNonConformityDescEmpty  = errors.New("标记不符合项时必须填写描述")
	ErrWorkerNotFound          = errors.New("员工不存在")
)

// DuplicateCallError 重复点名冲突，携带既有记录 id 供调用方改为编辑。
// errors.Is(err, ErrCallDuplicate) 成立。
type DuplicateCallError struct {
	ExistingID string
}

func (e *DuplicateCallError) Error() string {
	return fmt.Sprintf("该班次该员工的该次点名已存在 (id=%s)", e.ExistingID)
}

func (e *DuplicateCallError) Is(target error) bool { return target == ErrCallDuplicate }

// CheckpointService 检查点（点名 / 摄像头复查）业务接口
//
// 每次成功写入后按写入的单条检查点驱动告警推导，再重算班次完成度；
// 写入失败则两者都不动。摄像头复查没有删除路径，只能通过 upsert 修正。
type CheckpointService interface {
	// CreateCall 计划外加点；(班次, 员工, 次序) 冲突时返回 DuplicateCallError
	CreateCall(ctx context.Context, shiftID string, req *dto.CreateCallRequest, callerID string) (*dto.CallResponse, error)
	// UpdateCall 回填点名结果（patch 语义）
	UpdateCall(ctx context.Context, callID string, req *dto.UpdateCallRequest, callerID string) (*dto.CallResponse, error)
	DeleteCall(ctx context.Context, callID string, callerID string) error
	// UpsertCameraReview 按 (班次, 槽位号) 写入复查结果：首写创建，复写就地更新
	UpsertCameraReview(ctx context.Context, shiftID string, reviewNumber int, req *dto.UpsertCameraReviewRequest, callerID string) (*dto.CameraReviewResponse, error)
}

type checkpointService struct {
	cfg    *config.Config
	repo   *repository.Repository
	alerts AlertService
	calc   *CompletionCalculator
	logger *zap.Logger
}

// NewCheckpointService 创建 CheckpointService 实例
func NewCheckpointService(
	cfg *config.Config,
	repo *repository.Repository,
	alerts AlertService,
	calc *CompletionCalculator,
	logger *zap.Logger,
) CheckpointService {
	return &checkpointService{cfg: cfg, repo: repo, alerts: alerts, calc: calc, logger: logger}
}

// ────────────────────── CreateCall ──────────────────────

func (s *checkpointService) CreateCall(ctx context.Context, shiftID string, req *dto.CreateCallRequest, callerID string) (*dto.CallResponse, error) {
	if !dateutil.ValidClock(req.ScheduledTime) {
		return nil, ErrCallTimeInvalid
	}

	if _, err := s.repo.Shift.GetByID(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}

	worker, err := s.repo.Resource.GetByID(ctx, req.WorkerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, err
	}

	// 预检重复槽位；并发写入由唯一索引兜底
	if existing, err := s.repo.Call.FindBySlot(ctx, shiftID, req.WorkerID, req.CallNumber); err == nil {
		return nil, &DuplicateCallError{ExistingID: existing.CallID}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询既有点名失败", zap.Error(err))
		return nil, err
	}

	call := &model.Call{
		ShiftID:       shiftID,
		WorkerID:      worker.ResourceID,
		WorkerName:    worker.FullName,
		WorkerPhone:   worker.Phone,
		CallNumber:    req.CallNumber,
		ScheduledTime: req.ScheduledTime,
		OnRest:        req.OnRest,
		Notes:         req.Notes,
	}
	call.CreatedBy = &callerID
	call.UpdatedBy = &callerID

	if err := s.repo.Call.Create(ctx, call); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, ferr := s.repo.Call.FindBySlot(ctx, shiftID, req.WorkerID, req.CallNumber); ferr == nil {
				return nil, &DuplicateCallError{ExistingID: existing.CallID}
			}
			return nil, ErrCallDuplicate
		}
		s.logger.Error("创建点名失败", zap.Error(err))
		return nil, err
	}

	// 新增点名改变必查项数量，完成度需要重算；结果回填前不触发告警推导
	if _, err := s.calc.Recompute(ctx, shiftID); err != nil {
		s.logger.Error("重算完成度失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	return toCallResponse(call), nil
}

// ────────────────────── UpdateCall ──────────────────────

func (s *checkpointService) UpdateCall(ctx context.Context, callID string, req *dto.UpdateCallRequest, callerID string) (*dto.CallResponse, error) {
	call, err := s.repo.Call.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallNotFound
		}
		s.logger.Error("查询点名失败", zap.String("id", callID), zap.Error(err))
		return nil, err
	}

	if req.ActualTime != nil {
		call.ActualTime = req.ActualTime
	}
	if req.Answered != nil {
		call.Answered = *req.Answered
	}
	if req.PhotoReceived != nil {
		call.PhotoReceived = *req.PhotoReceived
	}
	if req.PhotoURL != nil {
		call.PhotoURL = *req.PhotoURL
	}
	if req.OnRest != nil {
		call.OnRest = *req.OnRest
	}
	if req.Notes != nil {
		call.Notes = *req.Notes
	}
	if req.NonConformity != nil {
		call.NonConformity = *req.NonConformity
	}
	if req.NonConformityDescription != nil {
		call.NonConformityDesc = *req.NonConformityDescription
	}
	if call.NonConformity && call.NonConformityDesc == "" {
		return nil, ErrNonConformityDescEmpty
	}
	call.UpdatedBy = &callerID

	if err := s.repo.Call.Update(ctx, call); err != nil {
		s.logger.Error("更新点名失败", zap.String("id", callID), zap.Error(err))
		return nil, err
	}

	if err := s.alerts.EvaluateCall(ctx, call, callerID); err != nil {
		s.logger.Error("点名告警推导失败", zap.String("call_id", callID), zap.Error(err))
		return nil, err
	}
	if _, err := s.calc.Recompute(ctx, call.ShiftID); err != nil {
		s.logger.Error("重算完成度失败", zap.String("shift_id", call.ShiftID), zap.Error(err))
		return nil, err
	}

	return toCallResponse(call), nil
}

// ────────────────────── DeleteCall ──────────────────────

func (s *checkpointService) DeleteCall(ctx context.Context, callID string, callerID string) error {
	call, err := s.repo.Call.GetByID(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallNotFound
		}
		s.logger.Error("查询点名失败", zap.String("id", callID), zap.Error(err))
		return err
	}

	if err := s.repo.Call.Delete(ctx, callID, callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCallNotFound
		}
		s.logger.Error("删除点名失败", zap.String("id", callID), zap.Error(err))
		return err
	}

	// 挂在该点名上的未解决告警随之关闭，避免指向已删除记录
	if err := s.alerts.ResolveOpenForEntity(ctx, call.ShiftID, callID, callerID); err != nil {
		s.logger.Error("关闭关联告警失败", zap.String("call_id", callID), zap.Error(err))
		return err
	}
	if _, err := s.calc.Recompute(ctx, call.ShiftID); err != nil {
		s.logger.Error("重算完成度失败", zap.String("shift_id", call.ShiftID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── UpsertCameraReview ──────────────────────

func (s *checkpointService) UpsertCameraReview(ctx context.Context, shiftID string, reviewNumber int, req *dto.UpsertCameraReviewRequest, callerID string) (*dto.CameraReviewResponse, error) {
	if reviewNumber < 1 || reviewNumber > model.ReviewSlots {
		return nil, ErrReviewNumberInvalid
	}

	if _, err := s.repo.Shift.GetByID(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}

	review, err := s.repo.CameraReview.FindBySlot(ctx, shiftID, reviewNumber)
	switch {
	case err == nil:
		// 槽位已存在：就地更新，避免同一夜出现重复槽位
		applyReviewPatch(review, req)
		if review.NonConformity && review.NonConformityDesc == "" {
			return nil, ErrNonConformityDescEmpty
		}
		if review.ScreenshotURL != "" && review.Notes == "" {
			return nil, ErrReviewNotesRequired
		}
		review.UpdatedBy = &callerID
		if uerr := s.repo.CameraReview.Update(ctx, review); uerr != nil {
			s.logger.Error("更新摄像头复查失败", zap.String("id", review.ReviewID), zap.Error(uerr))
			return nil, uerr
		}

	case errors.Is(err, gorm.ErrRecordNotFound):
		// 槽位惰性创建：首次记录数据时才落库
		review = &model.CameraReview{
			ShiftID:       shiftID,
			ReviewNumber:  reviewNumber,
			ScheduledTime: s.cfg.Supervision.ReviewTimes[reviewNumber-1],
		}
		applyReviewPatch(review, req)
		if review.NonConformity && review.NonConformityDesc == "" {
			return nil, ErrNonConformityDescEmpty
		}
		if review.ScreenshotURL != "" && review.Notes == "" {
			return nil, ErrReviewNotesRequired
		}
		review.CreatedBy = &callerID
		review.UpdatedBy = &callerID
		if cerr := s.repo.CameraReview.Create(ctx, review); cerr != nil {
			if errors.Is(cerr, gorm.ErrDuplicatedKey) {
				// 并发首写撞车：唯一索引兜底，重读槽位并重试一次更新
				existing, ferr := s.repo.CameraReview.FindBySlot(ctx, shiftID, reviewNumber)
				if ferr != nil {
					return nil, cerr
				}
				applyReviewPatch(existing, req)
				existing.UpdatedBy = &callerID
				if uerr := s.repo.CameraReview.Update(ctx, existing); uerr != nil {
					return nil, uerr
				}
				review = existing
			} else {
				s.logger.Error("创建摄像头复查失败", zap.Error(cerr))
				return nil, cerr
			}
		}

	default:
		s.logger.Error("查询摄像头复查失败", zap.Error(err))
		return nil, err
	}

	if err := s.alerts.EvaluateCameraReview(ctx, review, callerID); err != nil {
		s.logger.Error("复查告警推导失败", zap.String("review_id", review.ReviewID), zap.Error(err))
		return nil, err
	}
	if _, err := s.calc.Recompute(ctx, shiftID); err != nil {
		s.logger.Error("重算完成度失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}

	return toCameraReviewResponse(review), nil
}

// applyReviewPatch 应用复查 patch；ScreenshotURL 为 nil 时保留既有截图
func applyReviewPatch(review *model.CameraReview, req *dto.UpsertCameraReviewRequest) {
	if req.ActualTime != nil {
		review.ActualTime = req.ActualTime
	}
	if req.ScreenshotURL != nil {
		review.ScreenshotURL = *req.ScreenshotURL
	}
	if req.CamerasReviewed != nil {
		review.CamerasReviewed = model.StringArray(req.CamerasReviewed)
	}
	if req.Notes != nil {
		review.Notes = *req.Notes
	}
	if req.NonConformity != nil {
		review.NonConformity = *req.NonConformity
	}
	if req.NonConformityDescription != nil {
		review.NonConformityDesc = *req.NonConformityDescription
	}
}

// ────────────────────── 响应转换 ──────────────────────

func toCallResponse(call *model.Call) *dto.CallResponse {
	return &dto.CallResponse{
		ID:                       call.CallID,
		ShiftID:                  call.ShiftID,
		WorkerID:                 call.WorkerID,
		WorkerName:               call.WorkerName,
		WorkerPhone:              call.WorkerPhone,
		CallNumber:               call.CallNumber,
		ScheduledTime:            call.ScheduledTime,
		ActualTime:               call.ActualTime,
		Answered:                 call.Answered,
		PhotoReceived:            call.PhotoReceived,
		PhotoURL:                 call.PhotoURL,
		OnRest:                   call.OnRest,
		Notes:                    call.Notes,
		NonConformity:            call.NonConformity,
		NonConformityDescription: call.NonConformityDesc,
	}
}

func toCameraReviewResponse(review *model.CameraReview) *dto.CameraReviewResponse {
	return &dto.CameraReviewResponse{
		ID:                       review.ReviewID,
		ShiftID:                  review.ShiftID,
		ReviewNumber:             review.ReviewNumber,
		ScheduledTime:            review.ScheduledTime,
		ActualTime:               review.ActualTime,
		ScreenshotURL:            review.ScreenshotURL,
		CamerasReviewed:          review.CamerasReviewed,
		Notes:                    review.Notes,
		NonConformity:            review.NonConformity,
		NonConformityDescription: review.NonConformityDesc,
	}
}
