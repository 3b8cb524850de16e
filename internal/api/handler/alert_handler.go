package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/service"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/response"
)

// AlertHandler 告警模块 HTTP 处理器
type AlertHandler struct {
	alertSvc service.AlertService
}

// NewAlertHandler 创建 AlertHandler
func NewAlertHandler(alertSvc service.AlertService) *AlertHandler {
	return &AlertHandler{alertSvc: alertSvc}
}

// ListByShift 班次告警列表
// GET /api/v1/shifts/:id/alerts
func (h *AlertHandler) ListByShift(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 15001, "班次ID不能为空")
		return
	}
	onlyOpen := c.Query("only_open") == "true"

	alerts, err := h.alertSvc.ListByShift(c.Request.Context(), shiftID, onlyOpen)
	if err != nil {
		h.handleAlertError(c, err)
		return
	}

	response.OK(c, gin.H{"list": alerts})
}

// Resolve 解决告警（幂等）
// POST /api/v1/alerts/:id/resolve
func (h *AlertHandler) Resolve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 15001, "告警ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	alert, err := h.alertSvc.Resolve(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleAlertError(c, err)
		return
	}

	response.OK(c, alert)
}

// ContractAlerts 合同预警（仅 admin / operaciones）
// GET /api/v1/alerts/contracts
func (h *AlertHandler) ContractAlerts(c *gin.Context) {
	alerts, err := h.alertSvc.ContractAlerts(c.Request.Context())
	if err != nil {
		h.handleAlertError(c, err)
		return
	}

	response.OK(c, gin.H{"list": alerts})
}

func (h *AlertHandler) handleAlertError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAlertNotFound):
		response.NotFound(c, 15002, "告警不存在")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13003, "班次不存在")
	default:
		response.InternalError(c)
	}
}
