package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
)

// ── 人员资源模块业务错误 ──

var (
	ErrResourceNotFound      = errors.New("人员不存在")
	ErrTrainingDateInvalid   = errors.New("培训开始日期格式无效")
	ErrContractAlreadyExists = errors.New("该人员的合同已生成")
)

// ResourceService 人员资源业务接口
//
// ListNightWorkers 同时充当班次创建的夜班目录：
// 在职、未归档、未离职，且 shift_label 与配置的夜班同义词匹配（忽略大小写）
type ResourceService interface {
	Create(ctx context.Context, req *dto.CreateResourceRequest, callerID string) (*dto.ResourceResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ResourceResponse, error)
	ListByUnit(ctx context.Context, unitID string, onlyActive bool) ([]dto.ResourceResponse, error)
	ListNightWorkers(ctx context.Context, unitID string) ([]dto.NightWorkerResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, callerID string) (*dto.ResourceResponse, error)
	// GenerateContract 标记合同已生成；对应的合同预警随之消失
	GenerateContract(ctx context.Context, id string, callerID string) (*dto.ResourceResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type resourceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResourceService 创建 ResourceService 实例
func NewResourceService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ResourceService {
	return &resourceService{cfg: cfg, repo: repo, logger: logger}
}

func (s *resourceService) Create(ctx context.Context, req *dto.CreateResourceRequest, callerID string) (*dto.ResourceResponse, error) {
	if _, err := s.repo.Unit.GetByID(ctx, req.UnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	if req.TrainingStartDate != nil && !dateutil.ValidKey(*req.TrainingStartDate) {
		return nil, ErrTrainingDateInvalid
	}

	res := &model.Resource{
		UnitID:            req.UnitID,
		FullName:          req.FullName,
		Phone:             req.Phone,
		ShiftLabel:        req.ShiftLabel,
		Status:            model.ResourceStatusActivo,
		InTraining:        req.InTraining,
		TrainingStartDate: req.TrainingStartDate,
	}
	res.CreatedBy = &callerID
	res.UpdatedBy = &callerID

	if err := s.repo.Resource.Create(ctx, res); err != nil {
		s.logger.Error("创建人员失败", zap.Error(err))
		return nil, err
	}
	return toResourceResponse(res), nil
}

func (s *resourceService) GetByID(ctx context.Context, id string) (*dto.ResourceResponse, error) {
	res, err := s.repo.Resource.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		s.logger.Error("查询人员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toResourceResponse(res), nil
}

func (s *resourceService) ListByUnit(ctx context.Context, unitID string, onlyActive bool) ([]dto.ResourceResponse, error) {
	if _, err := s.repo.Unit.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	resources, err := s.repo.Resource.ListByUnit(ctx, unitID, onlyActive)
	if err != nil {
		s.logger.Error("查询人员列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.ResourceResponse, 0, len(resources))
	for i := range resources {
		out = append(out, *toResourceResponse(&resources[i]))
	}
	return out, nil
}

func (s *resourceService) ListNightWorkers(ctx context.Context, unitID string) ([]dto.NightWorkerResponse, error) {
	resources, err := s.repo.Resource.ListByUnit(ctx, unitID, true)
	if err != nil {
		s.logger.Error("查询夜班目录失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.NightWorkerResponse, 0, len(resources))
	for i := range resources {
		r := &resources[i]
		if !s.isNightLabel(r.ShiftLabel) {
			continue
		}
		out = append(out, dto.NightWorkerResponse{
			ID:                r.ResourceID,
			Name:              r.FullName,
			Phone:             r.Phone,
			InTraining:        r.InTraining,
			TrainingStartDate: r.TrainingStartDate,
			ContractGenerated: r.ContractGenerated,
		})
	}
	return out, nil
}

// isNightLabel 与配置的夜班同义词做忽略大小写的全等匹配
func (s *resourceService) isNightLabel(label string) bool {
	if label == "" {
		return false
	}
	label = strings.ToLower(strings.TrimSpace(label))
	for _, syn := range s.cfg.Supervision.NightShiftLabels {
		if label == strings.ToLower(syn) {
			return true
		}
	}
	return false
}

func (s *resourceService) Update(ctx context.Context, id string, req *dto.UpdateResourceRequest, callerID string) (*dto.ResourceResponse, error) {
	res, err := s.repo.Resource.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	if req.FullName != nil {
		res.FullName = *req.FullName
	}
	if req.Phone != nil {
		res.Phone = *req.Phone
	}
	if req.ShiftLabel != nil {
		res.ShiftLabel = *req.ShiftLabel
	}
	if req.Status != nil {
		res.Status = *req.Status
	}
	if req.InTraining != nil {
		res.InTraining = *req.InTraining
	}
	if req.TrainingStartDate != nil {
		if !dateutil.ValidKey(*req.TrainingStartDate) {
			return nil, ErrTrainingDateInvalid
		}
		res.TrainingStartDate = req.TrainingStartDate
	}
	res.UpdatedBy = &callerID

	if err := s.repo.Resource.Update(ctx, res); err != nil {
		s.logger.Error("更新人员失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toResourceResponse(res), nil
}

func (s *resourceService) GenerateContract(ctx context.Context, id string, callerID string) (*dto.ResourceResponse, error) {
	res, err := s.repo.Resource.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	if res.ContractGenerated {
		return nil, ErrContractAlreadyExists
	}

	res.ContractGenerated = true
	res.UpdatedBy = &callerID
	if err := s.repo.Resource.Update(ctx, res); err != nil {
		s.logger.Error("标记合同生成失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("合同已生成", zap.String("resource_id", id), zap.String("by", callerID))
	return toResourceResponse(res), nil
}

func (s *resourceService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Resource.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return err
	}
	if err := s.repo.Resource.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除人员失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toResourceResponse(res *model.Resource) *dto.ResourceResponse {
	unitName := ""
	if res.Unit != nil {
		unitName = res.Unit.Name
	}
	return &dto.ResourceResponse{
		ID:                res.ResourceID,
		UnitID:            res.UnitID,
		UnitName:          unitName,
		FullName:          res.FullName,
		Phone:             res.Phone,
		ShiftLabel:        res.ShiftLabel,
		Status:            res.Status,
		InTraining:        res.InTraining,
		TrainingStartDate: res.TrainingStartDate,
		ContractGenerated: res.ContractGenerated,
	}
}
