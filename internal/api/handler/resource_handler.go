package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/service"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/response"
)

// ResourceHandler 人员资源模块 HTTP 处理器
type ResourceHandler struct {
	resourceSvc service.ResourceService
}

// NewResourceHandler 创建 ResourceHandler
func NewResourceHandler(resourceSvc service.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceSvc: resourceSvc}
}

// Create 创建人员
// POST /api/v1/resources
func (h *ResourceHandler) Create(c *gin.Context) {
	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	res, err := h.resourceSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.Created(c, res)
}

// Get 获取人员
// GET /api/v1/resources/:id
func (h *ResourceHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "人员ID不能为空")
		return
	}

	res, err := h.resourceSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, res)
}

// ListByUnit 按单位列出人员
// GET /api/v1/units/:id/resources
func (h *ResourceHandler) ListByUnit(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		response.BadRequest(c, 12001, "单位ID不能为空")
		return
	}
	onlyActive := c.Query("only_active") == "true"

	resources, err := h.resourceSvc.ListByUnit(c.Request.Context(), unitID, onlyActive)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": resources})
}

// ListNightWorkers 单位的夜班员工目录
// GET /api/v1/units/:id/night-workers
func (h *ResourceHandler) ListNightWorkers(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		response.BadRequest(c, 12001, "单位ID不能为空")
		return
	}

	workers, err := h.resourceSvc.ListNightWorkers(c.Request.Context(), unitID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": workers})
}

// Update 更新人员
// PUT /api/v1/resources/:id
func (h *ResourceHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "人员ID不能为空")
		return
	}

	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	res, err := h.resourceSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, res)
}

// GenerateContract 标记合同已生成
// POST /api/v1/resources/:id/contract
func (h *ResourceHandler) GenerateContract(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "人员ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	res, err := h.resourceSvc.GenerateContract(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, res)
}

// Delete 删除人员
// DELETE /api/v1/resources/:id
func (h *ResourceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "人员ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.resourceSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleResourceError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ResourceHandler) handleResourceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrResourceNotFound):
		response.NotFound(c, 12002, "人员不存在")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 11002, "单位不存在")
	case errors.Is(err, service.ErrTrainingDateInvalid):
		response.BadRequest(c, 12003, "培训开始日期格式无效")
	case errors.Is(err, service.ErrContractAlreadyExists):
		response.Conflict(c, 12004, "该人员的合同已生成", nil)
	default:
		response.InternalError(c)
	}
}
