package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
)

// CompletionCalculator 班次完成度计算器
//
// 必查项 R = 3 × 有点名记录的员工数 + 3（摄像头复查槽位总数，
// 无论槽位是否已惰性创建）；已完成 D = 已接听的点名数 + 已有截图的复查数。
// 百分比 = round(100·D/R)，夹在 [0,100]，R 为 0 时记 0。
type CompletionCalculator struct {
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewCompletionCalculator 创建完成度计算器
func NewCompletionCalculator(repo *repository.Repository, loc *time.Location, logger *zap.Logger) *CompletionCalculator {
	return &CompletionCalculator{repo: repo, loc: loc, logger: logger}
}

// Recompute 重算并持久化班次的完成度与状态，返回新百分比。
// 每次检查点写入成功后调用；写入失败的请求不会走到这里，
// 班次上的完成度因此不会被半途污染。
func (c *CompletionCalculator) Recompute(ctx context.Context, shiftID string) (int, error) {
	shift, err := c.repo.Shift.GetByID(ctx, shiftID)
	if err != nil {
		return 0, err
	}

	calls, err := c.repo.Call.ListByShift(ctx, shiftID)
	if err != nil {
		return 0, err
	}
	reviews, err := c.repo.CameraReview.ListByShift(ctx, shiftID)
	if err != nil {
		return 0, err
	}

	pct := Completion(calls, reviews)
	status := nextStatus(shift, pct, dateutil.TodayKey(c.loc))

	if err := c.repo.Shift.SetCompletion(ctx, shiftID, pct, status); err != nil {
		return 0, err
	}

	c.logger.Debug("班次完成度已更新",
		zap.String("shift_id", shiftID),
		zap.Int("pct", pct),
		zap.String("status", status),
	)
	return pct, nil
}

// Completion 纯计算：由当前检查点集合得出完成度百分比
func Completion(calls []model.Call, reviews []model.CameraReview) int {
	workers := make(map[string]struct{})
	answered := 0
	for _, call := range calls {
		workers[call.WorkerID] = struct{}{}
		if call.Answered {
			answered++
		}
	}

	withScreenshot := 0
	for _, rv := range reviews {
		if rv.ScreenshotURL != "" {
			withScreenshot++
		}
	}

	required := model.CallsPerWorker*len(workers) + model.ReviewSlots
	if required == 0 {
		return 0
	}
	done := answered + withScreenshot

	pct := int(math.Round(100 * float64(done) / float64(required)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return pct
}

// nextStatus 状态推进策略：
//   - cancelada 只能由显式取消设置，这里绝不覆盖
//   - 班次日期是今天或未来 → en_curso
//   - 日期已成过去 → 100% 则 completada，否则 incompleta
func nextStatus(shift *model.Shift, pct int, todayKey string) string {
	if shift.Status == model.ShiftStatusCancelada {
		return model.ShiftStatusCancelada
	}
	if shift.DateKey >= todayKey {
		return model.ShiftStatusEnCurso
	}
	if pct == 100 {
		return model.ShiftStatusCompletada
	}
	return model.ShiftStatusIncompleta
}
