package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/AlvaritoMP/OpsFlow-sub000/internal/dto"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestShiftService(env *testEnv) ShiftService {
	logger := zap.NewNop()
	calc := NewCompletionCalculator(env.repo, time.UTC, logger)
	directory := NewResourceService(env.cfg, env.repo, logger)
	return NewShiftService(env.cfg, env.repo, directory, calc, time.UTC, logger)
}

func seedShiftFixtures(env *testEnv) {
	env.users.users["sup-001"] = &model.User{
		UserID: "sup-001", Email: "sup@opsflow.cl", Name: "Supervisora Uno",
		Role: model.RoleSupervisor, IsActive: true,
	}
	env.units.units["unit-001"] = &model.Unit{
		UnitID: "unit-001", Name: "Condominio Norte", IsActive: true,
	}
	env.resources.resources["res-001"] = &model.Resource{
		ResourceID: "res-001", UnitID: "unit-001", FullName: "Ana Rojas",
		Phone: "+56911111111", ShiftLabel: "Noche", Status: model.ResourceStatusActivo,
	}
	env.resources.resources["res-002"] = &model.Resource{
		ResourceID: "res-002", UnitID: "unit-001", FullName: "Bruno Díaz",
		Phone: "+56922222222", ShiftLabel: "turno noche", Status: model.ResourceStatusActivo,
	}
	// 日班员工：不应被物化点名
	env.resources.resources["res-003"] = &model.Resource{
		ResourceID: "res-003", UnitID: "unit-001", FullName: "Carla Soto",
		ShiftLabel: "día", Status: model.ResourceStatusActivo,
	}
}

// ── Create 测试 ──

func TestShiftService_Create_MaterializesCalls(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date:       "2025-03-10",
		UnitID:     "unit-001",
		ShiftStart: "22:00",
		ShiftEnd:   "07:00",
	}

	result, err := svc.Create(context.Background(), req, "sup-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.SupervisorID != "sup-001" {
		t.Errorf("省略 supervisor_id 时应默认为调用者，实际=%s", result.SupervisorID)
	}
	// 2 名夜班员工 × 3 次点名；日班员工不参与
	if len(result.Calls) != 6 {
		t.Fatalf("期望物化 6 次点名，实际=%d", len(result.Calls))
	}
	for _, call := range result.Calls {
		if call.WorkerID == "res-003" {
			t.Error("日班员工不应被物化点名")
		}
	}
	if result.Calls[0].ScheduledTime != "23:00" {
		t.Errorf("第一次点名时间应取配置值 23:00，实际=%s", result.Calls[0].ScheduledTime)
	}
	if result.Status != model.ShiftStatusEnCurso {
		t.Errorf("新班次应为 en_curso，实际=%s", result.Status)
	}
	if result.CompletionPercentage != 0 {
		t.Errorf("新班次完成度应为 0，实际=%d", result.CompletionPercentage)
	}
}

func TestShiftService_Create_SkipsRestingWorkers(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date:          "2025-03-10",
		UnitID:        "unit-001",
		ShiftStart:    "22:00",
		ShiftEnd:      "07:00",
		RestWorkerIDs: []string{"res-002"},
	}

	result, err := svc.Create(context.Background(), req, "sup-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if len(result.Calls) != 3 {
		t.Fatalf("休息员工不物化点名，期望 3 次，实际=%d", len(result.Calls))
	}
	for _, call := range result.Calls {
		if call.WorkerID != "res-001" {
			t.Errorf("点名应只属于 res-001，实际=%s", call.WorkerID)
		}
	}
}

func TestShiftService_Create_Duplicate(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}

	first, err := svc.Create(context.Background(), req, "sup-001")
	if err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}

	_, err = svc.Create(context.Background(), req, "sup-001")
	if !errors.Is(err, ErrShiftDuplicate) {
		t.Fatalf("期望 ErrShiftDuplicate，实际: %v", err)
	}
	var dup *DuplicateShiftError
	if !errors.As(err, &dup) {
		t.Fatal("重复错误应为 *DuplicateShiftError")
	}
	if dup.ExistingID != first.ID {
		t.Errorf("冲突应携带既有班次 id=%s，实际=%s", first.ID, dup.ExistingID)
	}
}

func TestShiftService_Create_DuplicateRace(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	// 直接落一个同键班次但不经过预检路径，模拟并发插入后唯一索引报错
	env.shifts.shifts["shift-race"] = &model.Shift{
		ShiftID: "shift-race", DateKey: "2025-03-10",
		UnitID: "unit-001", SupervisorID: "sup-001",
		ShiftStart: "22:00", ShiftEnd: "07:00", Status: model.ShiftStatusEnCurso,
	}

	req := &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}
	_, err := svc.Create(context.Background(), req, "sup-001")
	var dup *DuplicateShiftError
	if !errors.As(err, &dup) || dup.ExistingID != "shift-race" {
		t.Errorf("并发冲突也应返回携带既有 id 的 DuplicateShiftError，实际: %v", err)
	}
}

func TestShiftService_Create_InvalidDate(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date: "10-03-2025", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}
	_, err := svc.Create(context.Background(), req, "sup-001")
	if !errors.Is(err, ErrShiftDateInvalid) {
		t.Errorf("期望 ErrShiftDateInvalid，实际: %v", err)
	}
}

func TestShiftService_Create_UnitNotFound(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-999", ShiftStart: "22:00", ShiftEnd: "07:00",
	}
	_, err := svc.Create(context.Background(), req, "sup-001")
	if !errors.Is(err, ErrUnitNotFound) {
		t.Errorf("期望 ErrUnitNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestShiftService_List_Filters(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	for _, date := range []string{"2025-03-08", "2025-03-09", "2025-03-10"} {
		req := &dto.CreateShiftRequest{
			Date: date, UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
		}
		if _, err := svc.Create(context.Background(), req, "sup-001"); err != nil {
			t.Fatalf("创建 %s 班次失败: %v", date, err)
		}
	}

	list, total, err := svc.List(context.Background(), &dto.ShiftListRequest{
		DateFrom: "2025-03-09", DateTo: "2025-03-10",
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("闭区间过滤期望 2 条，实际 total=%d len=%d", total, len(list))
	}
	if list[0].Date != "2025-03-10" {
		t.Errorf("列表应按日期倒序，首条应为 2025-03-10，实际=%s", list[0].Date)
	}
}

// ── Cancel / Delete 测试 ──

func TestShiftService_Cancel_Idempotent(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}
	created, err := svc.Create(context.Background(), req, "sup-001")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}

	if err := svc.Cancel(context.Background(), created.ID, "sup-001"); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}
	if env.shifts.shifts[created.ID].Status != model.ShiftStatusCancelada {
		t.Error("取消后状态应为 cancelada")
	}
	// 重复取消是空操作
	if err := svc.Cancel(context.Background(), created.ID, "sup-001"); err != nil {
		t.Errorf("重复取消应为空操作: %v", err)
	}
}

// 重算的读与写之间插入取消时，迟到的写不得把状态改回去：
// SetCompletion 的谓词排除已取消的班次
func TestShiftService_Cancel_SurvivesStaleRecompute(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	created, err := svc.Create(context.Background(), &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}, "sup-001")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	if err := svc.Cancel(context.Background(), created.ID, "sup-001"); err != nil {
		t.Fatalf("Cancel 应成功: %v", err)
	}

	// 模拟并发重算在取消前读到 en_curso、取消后才落盘
	if err := env.repo.Shift.SetCompletion(context.Background(), created.ID, 50, model.ShiftStatusEnCurso); err != nil {
		t.Fatalf("SetCompletion 应成功: %v", err)
	}
	got := env.shifts.shifts[created.ID]
	if got.Status != model.ShiftStatusCancelada {
		t.Errorf("迟到的重算写入不得覆盖取消状态，实际=%s", got.Status)
	}
	if got.CompletionPct != 0 {
		t.Errorf("已取消班次的完成度不应被回写，实际=%d", got.CompletionPct)
	}
}

func TestShiftService_Delete_Cascades(t *testing.T) {
	env := newTestEnv()
	seedShiftFixtures(env)
	svc := setupTestShiftService(env)

	req := &dto.CreateShiftRequest{
		Date: "2025-03-10", UnitID: "unit-001", ShiftStart: "22:00", ShiftEnd: "07:00",
	}
	created, err := svc.Create(context.Background(), req, "sup-001")
	if err != nil {
		t.Fatalf("创建失败: %v", err)
	}
	env.alerts.alerts["alert-x"] = &model.Alert{
		AlertID: "alert-x", ShiftID: created.ID,
		Type: model.AlertTypeMissingCall, RelatedEntityID: "call-001",
	}

	if err := svc.Delete(context.Background(), created.ID, "sup-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(env.calls.calls) != 0 {
		t.Errorf("删除班次应级联删除点名，剩余=%d", len(env.calls.calls))
	}
	if len(env.alerts.alerts) != 0 {
		t.Errorf("删除班次应级联删除告警，剩余=%d", len(env.alerts.alerts))
	}

	if err := svc.Delete(context.Background(), created.ID, "sup-001"); !errors.Is(err, ErrShiftNotFound) {
		t.Errorf("再次删除应报 ErrShiftNotFound，实际: %v", err)
	}
}
