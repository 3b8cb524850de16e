package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/service"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/response"
)

// CheckpointHandler 检查点（点名 / 摄像头复查）模块 HTTP 处理器
type CheckpointHandler struct {
	checkpointSvc service.CheckpointService
}

// NewCheckpointHandler 创建 CheckpointHandler
func NewCheckpointHandler(checkpointSvc service.CheckpointService) *CheckpointHandler {
	return &CheckpointHandler{checkpointSvc: checkpointSvc}
}

// CreateCall 计划外加点
// POST /api/v1/shifts/:id/calls
func (h *CheckpointHandler) CreateCall(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 14001, "班次ID不能为空")
		return
	}

	var req dto.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	call, err := h.checkpointSvc.CreateCall(c.Request.Context(), shiftID, &req, callerID)
	if err != nil {
		h.handleCheckpointError(c, err)
		return
	}

	response.Created(c, call)
}

// UpdateCall 回填点名结果
// PUT /api/v1/calls/:id
func (h *CheckpointHandler) UpdateCall(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "点名ID不能为空")
		return
	}

	var req dto.UpdateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	call, err := h.checkpointSvc.UpdateCall(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleCheckpointError(c, err)
		return
	}

	response.OK(c, call)
}

// DeleteCall 删除点名
// DELETE /api/v1/calls/:id
func (h *CheckpointHandler) DeleteCall(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 14001, "点名ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.checkpointSvc.DeleteCall(c.Request.Context(), id, callerID); err != nil {
		h.handleCheckpointError(c, err)
		return
	}

	response.OK(c, nil)
}

// UpsertCameraReview 写入摄像头复查槽位
// PUT /api/v1/shifts/:id/camera-reviews/:number
func (h *CheckpointHandler) UpsertCameraReview(c *gin.Context) {
	shiftID := c.Param("id")
	if shiftID == "" {
		response.BadRequest(c, 14001, "班次ID不能为空")
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		response.BadRequest(c, 14002, "复查槽位编号无效")
		return
	}

	var req dto.UpsertCameraReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 14001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	review, err := h.checkpointSvc.UpsertCameraReview(c.Request.Context(), shiftID, number, &req, callerID)
	if err != nil {
		h.handleCheckpointError(c, err)
		return
	}

	response.OK(c, review)
}

func (h *CheckpointHandler) handleCheckpointError(c *gin.Context, err error) {
	var dup *service.DuplicateCallError
	switch {
	case errors.As(err, &dup):
		response.Conflict(c, 14003, "该班次该员工的该次点名已存在", gin.H{"existing_id": dup.ExistingID})
	case errors.Is(err, service.ErrCallDuplicate):
		response.Conflict(c, 14003, "该班次该员工的该次点名已存在", nil)
	case errors.Is(err, service.ErrCallNotFound):
		response.NotFound(c, 14004, "点名记录不存在")
	case errors.Is(err, service.ErrShiftNotFound):
		response.NotFound(c, 13003, "班次不存在")
	case errors.Is(err, service.ErrWorkerNotFound):
		response.NotFound(c, 12002, "人员不存在")
	case errors.Is(err, service.ErrCallTimeInvalid):
		response.BadRequest(c, 14005, "点名计划时间格式无效")
	case errors.Is(err, service.ErrReviewNumberInvalid):
		response.BadRequest(c, 14002, "复查槽位编号无效")
	case errors.Is(err, service.ErrReviewNotesRequired):
		response.BadRequest(c, 14006, "摄像头复查完成后必须填写备注")
	case errors.Is(err, service.ErrNonConformityDescEmpty):
		response.BadRequest(c, 14007, "标记不符合项时必须填写描述")
	default:
		response.InternalError(c)
	}
}
