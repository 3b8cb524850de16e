package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/service"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/response"
)

// ShiftHandler 班次模块 HTTP 处理器
type ShiftHandler struct {
	shiftSvc    service.ShiftService
	calendarSvc service.CalendarService
}

// NewShiftHandler 创建 ShiftHandler
func NewShiftHandler(shiftSvc service.ShiftService, calendarSvc service.CalendarService) *ShiftHandler {
	return &ShiftHandler{shiftSvc: shiftSvc, calendarSvc: calendarSvc}
}

// Create 创建班次（自动物化点名）
// POST /api/v1/shifts
func (h *ShiftHandler) Create(c *gin.Context) {
	var req dto.CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	shift, err := h.shiftSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.Created(c, shift)
}

// Get 班次详情（含点名、复查、告警）
// GET /api/v1/shifts/:id
func (h *ShiftHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "班次ID不能为空")
		return
	}

	shift, err := h.shiftSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, shift)
}

// List 班次列表
// GET /api/v1/shifts
func (h *ShiftHandler) List(c *gin.Context) {
	var req dto.ShiftListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13001, "参数校验失败")
		return
	}

	shifts, total, err := h.shiftSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OKPage(c, shifts, total, req.GetPage(), req.GetPageSize())
}

// Cancel 取消班次
// POST /api/v1/shifts/:id/cancel
func (h *ShiftHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "班次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Cancel(c.Request.Context(), id, callerID); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// Delete 删除班次（级联点名、复查与告警）
// DELETE /api/v1/shifts/:id
func (h *ShiftHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "班次ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.shiftSvc.Delete(c.Request.Context(), id, callerID); err != nil {
		h.handleShiftError(c, err)
		return
	}

	response.OK(c, nil)
}

// Calendar 班次检查点的 iCalendar 导出
// GET /api/v1/shifts/:id/calendar.ics
func (h *ShiftHandler) Calendar(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 13001, "班次ID不能为空")
		return
	}

	ics, err := h.calendarSvc.ShiftCalendar(c.Request.Context(), id)
	if err != nil {
		h.handleShiftError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="turno.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}

func (h *ShiftHandler) handleShiftError(c *gin.Context, err error) {
	var dup *service.DuplicateShiftError
	switch {
	case errors.As(err, &dup):
		response.Conflict(c, 13002, "该日期该单位该监督员已存在班次", gin.H{"existing_id": dup.ExistingID})
	case errors.Is(err, service.ErrShiftDuplicate):
		response.Conflict(c, 13002, "该日期该单位该监督员已存在班次", nil)
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13003, "班次不存在")
	case errors.Is(err, service.ErrShiftDateInvalid):
		response.BadRequest(c, 13004, "班次日期格式无效")
	case errors.Is(err, service.ErrShiftTimeInvalid):
		response.BadRequest(c, 13005, "班次时间格式无效")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 11002, "单位不存在")
	case errors.Is(err, service.ErrSupervisorNotFound):
		response.NotFound(c, 13006, "监督员不存在")
	default:
		response.InternalError(c)
	}
}
