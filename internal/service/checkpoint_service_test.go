package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestCheckpointService(env *testEnv) CheckpointService {
	logger := zap.NewNop()
	calc := NewCompletionCalculator(env.repo, time.UTC, logger)
	alertSvc := NewAlertService(env.cfg, env.repo, time.UTC, logger)
	return NewCheckpointService(env.cfg, env.repo, alertSvc, calc, logger)
}

// createTestShift 建一个含 2 名夜班员工（6 次点名）的班次
func createTestShift(t *testing.T, env *testEnv) *dto.ShiftDetailResponse {
	t.Helper()
	seedShiftFixtures(env)
	shiftSvc := setupTestShiftService(env)
	detail, err := shiftSvc.Create(context.Background(), &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}, "sup-001")
	if err != nil {
		t.Fatalf("创建测试班次失败: %v", err)
	}
	return detail
}

func boolPtr(b bool) *bool           { return &b }
func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }

// ── CreateCall 测试 ──

func TestCheckpointService_CreateCall_Duplicate(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	// (shift, res-001, 1) 已由调度器物化
	_, err := svc.CreateCall(context.Background(), shift.ID, &dto.CreateCallRequest{
		WorkerID: "res-001", CallNumber: 1, ScheduledTime: "23:30",
	}, "sup-001")
	if !errors.Is(err, ErrCallDuplicate) {
		t.Fatalf("期望 ErrCallDuplicate，实际: %v", err)
	}
	var dup *DuplicateCallError
	if !errors.As(err, &dup) || dup.ExistingID == "" {
		t.Error("重复点名错误应携带既有记录 id")
	}
	if len(env.calls.calls) != 6 {
		t.Errorf("重复创建不应落库，点名数应保持 6，实际=%d", len(env.calls.calls))
	}
}

func TestCheckpointService_CreateCall_AdHoc(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	// 为休息后补班的员工加一次计划外点名（用未占用的次序是调用方的责任——
	// 此处给日班员工加点验证快照字段）
	call, err := svc.CreateCall(context.Background(), shift.ID, &dto.CreateCallRequest{
		WorkerID: "res-003", CallNumber: 1, ScheduledTime: "23:30",
	}, "sup-001")
	if err != nil {
		t.Fatalf("计划外加点应成功: %v", err)
	}
	if call.WorkerName != "Carla Soto" {
		t.Errorf("应冗余员工姓名快照，实际=%s", call.WorkerName)
	}
	if len(env.calls.calls) != 7 {
		t.Errorf("期望共 7 次点名，实际=%d", len(env.calls.calls))
	}
}

// ── UpdateCall 测试 ──

func TestCheckpointService_UpdateCall_RaisesAndResolvesAlert(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)
	callID := shift.Calls[0].ID

	// 记录未接听 → 恰好一条未解决 missing_call
	_, err := svc.UpdateCall(context.Background(), callID, &dto.UpdateCallRequest{
		ActualTime: timePtr(time.Now()),
		Answered:   boolPtr(false),
	}, "sup-001")
	if err != nil {
		t.Fatalf("UpdateCall 应成功: %v", err)
	}
	open := countOpenAlerts(env, shift.ID, model.AlertTypeMissingCall, callID)
	if open != 1 {
		t.Fatalf("未接听应产生恰好 1 条未解决 missing_call，实际=%d", open)
	}

	// 再次保存仍未接听 → 不重复告警
	if _, err := svc.UpdateCall(context.Background(), callID, &dto.UpdateCallRequest{
		Answered: boolPtr(false),
	}, "sup-001"); err != nil {
		t.Fatalf("UpdateCall 应成功: %v", err)
	}
	if n := countOpenAlerts(env, shift.ID, model.AlertTypeMissingCall, callID); n != 1 {
		t.Errorf("重复评估不应重复告警，实际=%d", n)
	}

	// 改为已接听 → missing_call 自动解决
	if _, err := svc.UpdateCall(context.Background(), callID, &dto.UpdateCallRequest{
		Answered: boolPtr(true),
	}, "sup-001"); err != nil {
		t.Fatalf("UpdateCall 应成功: %v", err)
	}
	if n := countOpenAlerts(env, shift.ID, model.AlertTypeMissingCall, callID); n != 0 {
		t.Errorf("接听后 missing_call 应自动解决，未解决=%d", n)
	}
}

func TestCheckpointService_UpdateCall_NonConformityNeedsDescription(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	_, err := svc.UpdateCall(context.Background(), shift.Calls[0].ID, &dto.UpdateCallRequest{
		NonConformity: boolPtr(true),
	}, "sup-001")
	if !errors.Is(err, ErrNonConformityDescEmpty) {
		t.Errorf("期望 ErrNonConformityDescEmpty，实际: %v", err)
	}
}

func TestCheckpointService_UpdateCall_FailedWriteKeepsCompletion(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	if _, err := svc.UpdateCall(context.Background(), shift.Calls[0].ID, &dto.UpdateCallRequest{
		Answered: boolPtr(true),
	}, "sup-001"); err != nil {
		t.Fatalf("UpdateCall 应成功: %v", err)
	}
	before := env.shifts.shifts[shift.ID].CompletionPct

	// 校验失败的写入不得触碰完成度
	if _, err := svc.UpdateCall(context.Background(), shift.Calls[1].ID, &dto.UpdateCallRequest{
		Answered:      boolPtr(true),
		NonConformity: boolPtr(true),
	}, "sup-001"); !errors.Is(err, ErrNonConformityDescEmpty) {
		t.Fatalf("期望校验失败，实际: %v", err)
	}
	if after := env.shifts.shifts[shift.ID].CompletionPct; after != before {
		t.Errorf("失败写入后完成度应保持 %d，实际=%d", before, after)
	}
}

// ── DeleteCall 测试 ──

func TestCheckpointService_DeleteCall_ClosesAlerts(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)
	callID := shift.Calls[0].ID

	if _, err := svc.UpdateCall(context.Background(), callID, &dto.UpdateCallRequest{
		Answered: boolPtr(false),
	}, "sup-001"); err != nil {
		t.Fatalf("UpdateCall 应成功: %v", err)
	}
	if n := countOpenAlerts(env, shift.ID, model.AlertTypeMissingCall, callID); n != 1 {
		t.Fatalf("前置条件失败：应有 1 条未解决告警，实际=%d", n)
	}

	if err := svc.DeleteCall(context.Background(), callID, "sup-001"); err != nil {
		t.Fatalf("DeleteCall 应成功: %v", err)
	}
	if n := countOpenAlerts(env, shift.ID, model.AlertTypeMissingCall, callID); n != 0 {
		t.Errorf("删除点名后其告警应全部关闭，未解决=%d", n)
	}
	if len(env.calls.calls) != 5 {
		t.Errorf("期望剩余 5 次点名，实际=%d", len(env.calls.calls))
	}
}

// ── UpsertCameraReview 测试 ──

func TestCheckpointService_UpsertReview_SingleRecordAndScreenshotPreserved(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	first, err := svc.UpsertCameraReview(context.Background(), shift.ID, 1, &dto.UpsertCameraReviewRequest{
		ScreenshotURL: strPtr("https://cdn.opsflow.cl/cap1.png"),
		Notes:         strPtr("Todo normal"),
	}, "sup-001")
	if err != nil {
		t.Fatalf("首次 upsert 应成功: %v", err)
	}
	if first.ScheduledTime != "00:00" {
		t.Errorf("槽位 1 计划时间应取配置值 00:00，实际=%s", first.ScheduledTime)
	}

	// 第二次同槽位：就地更新，截图保留
	second, err := svc.UpsertCameraReview(context.Background(), shift.ID, 1, &dto.UpsertCameraReviewRequest{
		Notes: strPtr("Se revisó nuevamente"),
	}, "sup-001")
	if err != nil {
		t.Fatalf("二次 upsert 应成功: %v", err)
	}
	if len(env.reviews.reviews) != 1 {
		t.Fatalf("同槽位重复提交应只有 1 条记录，实际=%d", len(env.reviews.reviews))
	}
	if second.ID != first.ID {
		t.Error("二次 upsert 应更新同一条记录")
	}
	if second.ScreenshotURL != "https://cdn.opsflow.cl/cap1.png" {
		t.Errorf("patch 省略截图时应保留原值，实际=%s", second.ScreenshotURL)
	}
	if second.Notes != "Se revisó nuevamente" {
		t.Errorf("备注应更新，实际=%s", second.Notes)
	}
}

func TestCheckpointService_UpsertReview_InvalidSlot(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	for _, slot := range []int{0, 4} {
		_, err := svc.UpsertCameraReview(context.Background(), shift.ID, slot, &dto.UpsertCameraReviewRequest{}, "sup-001")
		if !errors.Is(err, ErrReviewNumberInvalid) {
			t.Errorf("槽位 %d 期望 ErrReviewNumberInvalid，实际: %v", slot, err)
		}
	}
}

func TestCheckpointService_UpsertReview_NotesRequiredWithScreenshot(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	_, err := svc.UpsertCameraReview(context.Background(), shift.ID, 2, &dto.UpsertCameraReviewRequest{
		ScreenshotURL: strPtr("https://cdn.opsflow.cl/cap2.png"),
	}, "sup-001")
	if !errors.Is(err, ErrReviewNotesRequired) {
		t.Errorf("有截图无备注期望 ErrReviewNotesRequired，实际: %v", err)
	}
}

// ── 完成度联动测试 ──

// 2 名员工 6 次点名 + 3 个复查槽位 = R 9；
// 5 次接听 + 1 个有截图的复查 = D 6 → round(100×6/9) = 67
func TestCheckpointService_CompletionRecompute(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)

	for i := 0; i < 5; i++ {
		if _, err := svc.UpdateCall(context.Background(), shift.Calls[i].ID, &dto.UpdateCallRequest{
			Answered: boolPtr(true),
		}, "sup-001"); err != nil {
			t.Fatalf("UpdateCall %d 应成功: %v", i, err)
		}
	}
	if _, err := svc.UpsertCameraReview(context.Background(), shift.ID, 1, &dto.UpsertCameraReviewRequest{
		ScreenshotURL: strPtr("https://cdn.opsflow.cl/cap1.png"),
		Notes:         strPtr("OK"),
	}, "sup-001"); err != nil {
		t.Fatalf("UpsertCameraReview 应成功: %v", err)
	}

	if pct := env.shifts.shifts[shift.ID].CompletionPct; pct != 67 {
		t.Errorf("期望完成度 67，实际=%d", pct)
	}
}

// 完成度随证据累积单调不降：每满足一个检查点重算一次，
// 百分比都不得低于上一次；撤销已记录的接听则允许回落
func TestCheckpointService_CompletionMonotonic(t *testing.T) {
	env := newTestEnv()
	shift := createTestShift(t, env)
	svc := setupTestCheckpointService(env)
	ctx := context.Background()

	prev := env.shifts.shifts[shift.ID].CompletionPct
	for i, call := range shift.Calls {
		if _, err := svc.UpdateCall(ctx, call.ID, &dto.UpdateCallRequest{
			Answered: boolPtr(true),
		}, "sup-001"); err != nil {
			t.Fatalf("UpdateCall %d 应成功: %v", i, err)
		}
		pct := env.shifts.shifts[shift.ID].CompletionPct
		if pct < prev {
			t.Fatalf("第 %d 次接听后完成度回落: %d < %d", i+1, pct, prev)
		}
		prev = pct
	}
	for slot := 1; slot <= 3; slot++ {
		if _, err := svc.UpsertCameraReview(ctx, shift.ID, slot, &dto.UpsertCameraReviewRequest{
			ScreenshotURL: strPtr(fmt.Sprintf("https://cdn.opsflow.cl/cap%d.png", slot)),
			Notes:         strPtr("OK"),
		}, "sup-001"); err != nil {
			t.Fatalf("UpsertCameraReview %d 应成功: %v", slot, err)
		}
		pct := env.shifts.shifts[shift.ID].CompletionPct
		if pct < prev {
			t.Fatalf("槽位 %d 截图后完成度回落: %d < %d", slot, pct, prev)
		}
		prev = pct
	}
	if prev != 100 {
		t.Errorf("全部检查点满足后完成度应为 100，实际=%d", prev)
	}

	// 撤销一次接听是证据的倒退，完成度随之下降
	if _, err := svc.UpdateCall(ctx, shift.Calls[0].ID, &dto.UpdateCallRequest{
		Answered: boolPtr(false),
	}, "sup-001"); err != nil {
		t.Fatalf("UpdateCall 应成功: %v", err)
	}
	if pct := env.shifts.shifts[shift.ID].CompletionPct; pct >= prev {
		t.Errorf("撤销接听后完成度应下降，实际 %d >= %d", pct, prev)
	}
}

// countOpenAlerts 统计某检查点的某类未解决告警
func countOpenAlerts(env *testEnv, shiftID, alertType, entityID string) int {
	n := 0
	for _, a := range env.alerts.alerts {
		if !a.Resolved && a.ShiftID == shiftID && a.Type == alertType && a.RelatedEntityID == entityID {
			n++
		}
	}
	return n
}
