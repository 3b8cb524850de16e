package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/service"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/response"
)

// ReportHandler 历史报表模块 HTTP 处理器
type ReportHandler struct {
	reportSvc service.ReportService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(reportSvc service.ReportService) *ReportHandler {
	return &ReportHandler{reportSvc: reportSvc}
}

// ByWorker 按员工汇总
// GET /api/v1/reports/workers/:id
func (h *ReportHandler) ByWorker(c *gin.Context) {
	workerID := c.Param("id")
	if workerID == "" {
		response.BadRequest(c, 16001, "员工ID不能为空")
		return
	}

	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	report, err := h.reportSvc.ByWorker(c.Request.Context(), workerID, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

// ByUnit 按单位汇总
// GET /api/v1/reports/units/:id
func (h *ReportHandler) ByUnit(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		response.BadRequest(c, 16001, "单位ID不能为空")
		return
	}

	var req dto.ReportRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 16001, "参数校验失败")
		return
	}

	report, err := h.reportSvc.ByUnit(c.Request.Context(), unitID, &req)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, report)
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	// 零命中与"查无此人"是不同的答案，分开映射
	case errors.Is(err, service.ErrReportNoData):
		response.NotFound(c, 16002, "指定范围内没有班次数据")
	case errors.Is(err, service.ErrReportRangeInvalid):
		response.BadRequest(c, 16003, "报表日期范围无效")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12002, "人员不存在")
	case errors.Is(err, service.ErrUnitNotFound):
		response.NotFound(c, 11002, "单位不存在")
	default:
		response.InternalError(c)
	}
}
