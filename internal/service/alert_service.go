package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
)

// ── 告警模块业务错误 ──

var (
	ErrAlertNotFound = errors.New("告警不存在")
)

// AlertService 告警引擎接口
//
// 推导只覆盖刚写入的那一条检查点，不做全班次重扫；
// 同一 (shift, type, related_entity) 最多一条未解决告警，部分唯一索引兜底。
type AlertService interface {
	// EvaluateCall 按点名结果推导 missing_call / missing_photo / non_conformity
	EvaluateCall(ctx context.Context, call *model.Call, actorID string) error
	// EvaluateCameraReview 按复查结果推导 missing_camera_review / non_conformity
	EvaluateCameraReview(ctx context.Context, review *model.CameraReview, actorID string) error
	// Resolve 人工解决告警；重复解决是幂等空操作
	Resolve(ctx context.Context, alertID string, resolvedBy string) (*dto.AlertResponse, error)
	// ResolveOpenForEntity 关闭指向某检查点的全部未解决告警（检查点删除时调用）
	ResolveOpenForEntity(ctx context.Context, shiftID, entityID, actorID string) error
	ListByShift(ctx context.Context, shiftID string, onlyOpen bool) ([]dto.AlertResponse, error)
	// ContractAlerts 合同预警：读时扫描培训人员，不落库
	ContractAlerts(ctx context.Context) ([]dto.ContractAlertResponse, error)
}

type alertService struct {
	cfg    *config.Config
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewAlertService 创建 AlertService 实例
func NewAlertService(cfg *config.Config, repo *repository.Repository, loc *time.Location, logger *zap.Logger) AlertService {
	return &alertService{cfg: cfg, repo: repo, loc: loc, logger: logger}
}

// ────────────────────── 点名推导 ──────────────────────

func (s *alertService) EvaluateCall(ctx context.Context, call *model.Call, actorID string) error {
	// 休息中的员工不考核接听与照片，既有告警一并关闭
	if call.OnRest {
		if err := s.resolveOpen(ctx, call.ShiftID, model.AlertTypeMissingCall, call.CallID, actorID); err != nil {
			return err
		}
		if err := s.resolveOpen(ctx, call.ShiftID, model.AlertTypeMissingPhoto, call.CallID, actorID); err != nil {
			return err
		}
	} else {
		if !call.Answered {
			if err := s.ensureOpen(ctx, &model.Alert{
				ShiftID:           call.ShiftID,
				Type:              model.AlertTypeMissingCall,
				Severity:          model.SeverityHigh,
				Title:             fmt.Sprintf("Llamada %d sin contestar — %s", call.CallNumber, call.WorkerName),
				Description:       fmt.Sprintf("La llamada programada a las %s no fue contestada", call.ScheduledTime),
				RelatedEntityType: model.RelatedEntityCall,
				RelatedEntityID:   call.CallID,
			}, actorID); err != nil {
				return err
			}
		} else if err := s.resolveOpen(ctx, call.ShiftID, model.AlertTypeMissingCall, call.CallID, actorID); err != nil {
			return err
		}

		if !call.PhotoReceived {
			if err := s.ensureOpen(ctx, &model.Alert{
				ShiftID:           call.ShiftID,
				Type:              model.AlertTypeMissingPhoto,
				Severity:          model.SeverityMedium,
				Title:             fmt.Sprintf("Foto pendiente — llamada %d de %s", call.CallNumber, call.WorkerName),
				Description:       "No se ha recibido la foto de respaldo de la llamada",
				RelatedEntityType: model.RelatedEntityCall,
				RelatedEntityID:   call.CallID,
			}, actorID); err != nil {
				return err
			}
		} else if err := s.resolveOpen(ctx, call.ShiftID, model.AlertTypeMissingPhoto, call.CallID, actorID); err != nil {
			return err
		}
	}

	// 不符合项从不自动解决：纠正是历史事实，需要人工确认
	if call.NonConformity {
		return s.ensureOpen(ctx, &model.Alert{
			ShiftID:           call.ShiftID,
			Type:              model.AlertTypeNonConformity,
			Severity:          nonConformitySeverity(call.NonConformityDesc),
			Title:             fmt.Sprintf("No conformidad — llamada %d de %s", call.CallNumber, call.WorkerName),
			Description:       call.NonConformityDesc,
			RelatedEntityType: model.RelatedEntityCall,
			RelatedEntityID:   call.CallID,
		}, actorID)
	}
	return nil
}

// ────────────────────── 复查推导 ──────────────────────

func (s *alertService) EvaluateCameraReview(ctx context.Context, review *model.CameraReview, actorID string) error {
	if review.ScreenshotURL == "" {
		if err := s.ensureOpen(ctx, &model.Alert{
			ShiftID:           review.ShiftID,
			Type:              model.AlertTypeMissingCameraReview,
			Severity:          model.SeverityHigh,
			Title:             fmt.Sprintf("Revisión de cámaras %d sin captura", review.ReviewNumber),
			Description:       fmt.Sprintf("La revisión programada a las %s no tiene captura de pantalla", review.ScheduledTime),
			RelatedEntityType: model.RelatedEntityCameraReview,
			RelatedEntityID:   review.ReviewID,
		}, actorID); err != nil {
			return err
		}
	} else if err := s.resolveOpen(ctx, review.ShiftID, model.AlertTypeMissingCameraReview, review.ReviewID, actorID); err != nil {
		return err
	}

	if review.NonConformity {
		return s.ensureOpen(ctx, &model.Alert{
			ShiftID:           review.ShiftID,
			Type:              model.AlertTypeNonConformity,
			Severity:          nonConformitySeverity(review.NonConformityDesc),
			Title:             fmt.Sprintf("No conformidad — revisión de cámaras %d", review.ReviewNumber),
			Description:       review.NonConformityDesc,
			RelatedEntityType: model.RelatedEntityCameraReview,
			RelatedEntityID:   review.ReviewID,
		}, actorID)
	}
	return nil
}

// nonConformitySeverity 描述文本含 "crítico"（不区分大小写）时升为 critical
func nonConformitySeverity(desc string) string {
	if strings.Contains(strings.ToLower(desc), "crítico") {
		return model.SeverityCritical
	}
	return model.SeverityHigh
}

// ensureOpen 确保同键未解决告警恰有一条：已存在则不重复创建。
// 并发创建由部分唯一索引兜底，撞键视为已存在。
func (s *alertService) ensureOpen(ctx context.Context, alert *model.Alert, actorID string) error {
	_, err := s.repo.Alert.FindOpen(ctx, alert.ShiftID, alert.Type, alert.RelatedEntityID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询未解决告警失败", zap.Error(err))
		return err
	}
	alert.CreatedBy = &actorID
	alert.UpdatedBy = &actorID
	if cerr := s.repo.Alert.Create(ctx, alert); cerr != nil {
		if errors.Is(cerr, gorm.ErrDuplicatedKey) {
			return nil
		}
		s.logger.Error("创建告警失败", zap.String("type", alert.Type), zap.Error(cerr))
		return cerr
	}
	return nil
}

// resolveOpen 若同键存在未解决告警则关闭；不存在不算错误
func (s *alertService) resolveOpen(ctx context.Context, shiftID, alertType, entityID, actorID string) error {
	alert, err := s.repo.Alert.FindOpen(ctx, shiftID, alertType, entityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		s.logger.Error("查询未解决告警失败", zap.Error(err))
		return err
	}
	return s.repo.Alert.Resolve(ctx, alert.AlertID, actorID, time.Now())
}

// ────────────────────── 人工操作 ──────────────────────

func (s *alertService) Resolve(ctx context.Context, alertID string, resolvedBy string) (*dto.AlertResponse, error) {
	alert, err := s.repo.Alert.GetByID(ctx, alertID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAlertNotFound
		}
		s.logger.Error("查询告警失败", zap.String("id", alertID), zap.Error(err))
		return nil, err
	}

	// 已解决直接返回现状，不刷新解决时间
	if alert.Resolved {
		return toAlertResponse(alert), nil
	}

	now := time.Now()
	if err := s.repo.Alert.Resolve(ctx, alertID, resolvedBy, now); err != nil {
		s.logger.Error("解决告警失败", zap.String("id", alertID), zap.Error(err))
		return nil, err
	}
	alert.Resolved = true
	alert.ResolvedBy = &resolvedBy
	alert.ResolvedAt = &now
	return toAlertResponse(alert), nil
}

func (s *alertService) ResolveOpenForEntity(ctx context.Context, shiftID, entityID, actorID string) error {
	for _, t := range []string{
		model.AlertTypeMissingCall,
		model.AlertTypeMissingPhoto,
		model.AlertTypeMissingCameraReview,
		model.AlertTypeNonConformity,
	} {
		if err := s.resolveOpen(ctx, shiftID, t, entityID, actorID); err != nil {
			return err
		}
	}
	return nil
}

func (s *alertService) ListByShift(ctx context.Context, shiftID string, onlyOpen bool) ([]dto.AlertResponse, error) {
	if _, err := s.repo.Shift.GetByID(ctx, shiftID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, err
	}
	alerts, err := s.repo.Alert.ListByShift(ctx, shiftID, onlyOpen)
	if err != nil {
		s.logger.Error("查询班次告警失败", zap.String("shift_id", shiftID), zap.Error(err))
		return nil, err
	}
	out := make([]dto.AlertResponse, 0, len(alerts))
	for i := range alerts {
		out = append(out, *toAlertResponse(&alerts[i]))
	}
	return out, nil
}

// ────────────────────── 合同预警 ──────────────────────

// ContractAlerts 扫描培训中（in_training 且未生成合同）的人员；
// 培训天数达到阈值即产出虚拟告警，日期锚定在跨越阈值那天而非查询日
func (s *alertService) ContractAlerts(ctx context.Context) ([]dto.ContractAlertResponse, error) {
	resources, err := s.repo.Resource.ListInTraining(ctx)
	if err != nil {
		s.logger.Error("查询培训人员失败", zap.Error(err))
		return nil, err
	}

	today := dateutil.TodayKey(s.loc)
	threshold := s.cfg.Supervision.ContractAlertDays

	out := make([]dto.ContractAlertResponse, 0)
	for i := range resources {
		r := &resources[i]
		if r.TrainingStartDate == nil || !dateutil.ValidKey(*r.TrainingStartDate) {
			continue
		}
		days, err := dateutil.DaysBetween(*r.TrainingStartDate, today)
		if err != nil || days < threshold {
			continue
		}
		alertDate, err := dateutil.AddDays(*r.TrainingStartDate, threshold)
		if err != nil {
			continue
		}
		unitName := ""
		if r.Unit != nil {
			unitName = r.Unit.Name
		}
		out = append(out, dto.ContractAlertResponse{
			ResourceID:        r.ResourceID,
			ResourceName:      r.FullName,
			UnitID:            r.UnitID,
			UnitName:          unitName,
			TrainingStartDate: *r.TrainingStartDate,
			DaysInTraining:    days,
			AlertDate:         alertDate,
			Severity:          model.SeverityHigh,
		})
	}
	return out, nil
}

// ────────────────────── 响应转换 ──────────────────────

func toAlertResponse(alert *model.Alert) *dto.AlertResponse {
	resolvedBy := ""
	if alert.ResolvedBy != nil {
		resolvedBy = *alert.ResolvedBy
	}
	return &dto.AlertResponse{
		ID:                alert.AlertID,
		ShiftID:           alert.ShiftID,
		Type:              alert.Type,
		Severity:          alert.Severity,
		Title:             alert.Title,
		Description:       alert.Description,
		RelatedEntityType: alert.RelatedEntityType,
		RelatedEntityID:   alert.RelatedEntityID,
		Resolved:          alert.Resolved,
		ResolvedBy:        resolvedBy,
		ResolvedAt:        alert.ResolvedAt,
		CreatedAt:         alert.CreatedAt.Format(time.RFC3339),
	}
}
