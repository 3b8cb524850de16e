package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
)

// ── 单位模块业务错误 ──

var (
	ErrUnitNotFound = errors.New("单位不存在")
	ErrUnitInactive = errors.New("单位已停用")
)

// UnitService 运营单位业务接口
type UnitService interface {
	Create(ctx context.Context, req *dto.CreateUnitRequest, callerID string) (*dto.UnitResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UnitResponse, error)
	List(ctx context.Context, onlyActive bool) ([]dto.UnitResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUnitRequest, callerID string) (*dto.UnitResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type unitService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUnitService 创建 UnitService 实例
func NewUnitService(repo *repository.Repository, logger *zap.Logger) UnitService {
	return &unitService{repo: repo, logger: logger}
}

func (s *unitService) Create(ctx context.Context, req *dto.CreateUnitRequest, callerID string) (*dto.UnitResponse, error) {
	unit := &model.Unit{
		Name:        req.Name,
		Address:     req.Address,
		CameraCount: req.CameraCount,
		IsActive:    true,
	}
	unit.CreatedBy = &callerID
	unit.UpdatedBy = &callerID

	if err := s.repo.Unit.Create(ctx, unit); err != nil {
		s.logger.Error("创建单位失败", zap.Error(err))
		return nil, err
	}
	return toUnitResponse(unit), nil
}

func (s *unitService) GetByID(ctx context.Context, id string) (*dto.UnitResponse, error) {
	unit, err := s.repo.Unit.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		s.logger.Error("查询单位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUnitResponse(unit), nil
}

func (s *unitService) List(ctx context.Context, onlyActive bool) ([]dto.UnitResponse, error) {
	units, err := s.repo.Unit.List(ctx, onlyActive)
	if err != nil {
		s.logger.Error("查询单位列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.UnitResponse, 0, len(units))
	for i := range units {
		out = append(out, *toUnitResponse(&units[i]))
	}
	return out, nil
}

func (s *unitService) Update(ctx context.Context, id string, req *dto.UpdateUnitRequest, callerID string) (*dto.UnitResponse, error) {
	unit, err := s.repo.Unit.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		unit.Name = *req.Name
	}
	if req.Address != nil {
		unit.Address = *req.Address
	}
	if req.CameraCount != nil {
		unit.CameraCount = *req.CameraCount
	}
	if req.IsActive != nil {
		unit.IsActive = *req.IsActive
	}
	unit.UpdatedBy = &callerID

	if err := s.repo.Unit.Update(ctx, unit); err != nil {
		s.logger.Error("更新单位失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toUnitResponse(unit), nil
}

func (s *unitService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Unit.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUnitNotFound
		}
		return err
	}
	if err := s.repo.Unit.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除单位失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func toUnitResponse(unit *model.Unit) *dto.UnitResponse {
	return &dto.UnitResponse{
		ID:          unit.UnitID,
		Name:        unit.Name,
		Address:     unit.Address,
		CameraCount: unit.CameraCount,
		IsActive:    unit.IsActive,
		CreatedAt:   unit.CreatedAt.Format(time.RFC3339),
	}
}
