package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/service"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/response"
)

// UnitHandler 运营单位模块 HTTP 处理器
type UnitHandler struct {
	unitSvc service.UnitService
}

// NewUnitHandler 创建 UnitHandler
func NewUnitHandler(unitSvc service.UnitService) *UnitHandler {
	return &UnitHandler{unitSvc: unitSvc}
}

// Create 创建单位
// POST /api/v1/units
func (h *UnitHandler) Create(c *gin.Context) {
	var req dto.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	unit, err := h.unitSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.Created(c, unit)
}

// Get 获取单位
// GET /api/v1/units/:id
func (h *UnitHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "单位ID不能为空")
		return
	}

	unit, err := h.unitSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.OK(c, unit)
}

// List 单位列表
// GET /api/v1/units
func (h *UnitHandler) List(c *gin.Context) {
	onlyActive := c.Query("only_active") == "true"

	units, err := h.unitSvc.List(c.Request.Context(), onlyActive)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.OK(c, gin.H{"list": units})
}

// Update 更新单位
// PUT /api/v1/units/:id
func (h *UnitHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "单位ID不能为空")
		return
	}

	var req dto.UpdateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	unit, err := h.unitSvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.OK(c, unit)
}

// Delete 删除单位
// DELETE /api/v1/units/:id
func (h *UnitHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 11001, "单位ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.unitSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleUnitError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *UnitHandler) handleUnitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 11002, "单位不存在")
	default:
		response.InternalError(c)
	}
}
