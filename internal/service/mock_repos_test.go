package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	pkgerrors "github.com/AlvaritoMP/OpsFlow-sub000/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

// ── Mock UnitRepository ──

type mockUnitRepo struct {
	units map[string]*model.Unit
	seq   int
}

func newMockUnitRepo() *mockUnitRepo {
	return &mockUnitRepo{units: make(map[string]*model.Unit)}
}

func (m *mockUnitRepo) Create(_ context.Context, unit *model.Unit) error {
	if unit.UnitID == "" {
		m.seq++
		unit.UnitID = fmt.Sprintf("unit-%03d", m.seq)
	}
	m.units[unit.UnitID] = unit
	return nil
}

func (m *mockUnitRepo) GetByID(_ context.Context, id string) (*model.Unit, error) {
	if u, ok := m.units[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUnitRepo) List(_ context.Context, onlyActive bool) ([]model.Unit, error) {
	var result []model.Unit
	for _, u := range m.units {
		if onlyActive && !u.IsActive {
			continue
		}
		result = append(result, *u)
	}
	return result, nil
}

func (m *mockUnitRepo) Update(_ context.Context, unit *model.Unit) error {
	m.units[unit.UnitID] = unit
	return nil
}

func (m *mockUnitRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.units, id)
	return nil
}

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources map[string]*model.Resource
	seq       int
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{resources: make(map[string]*model.Resource)}
}

func (m *mockResourceRepo) Create(_ context.Context, res *model.Resource) error {
	if res.ResourceID == "" {
		m.seq++
		res.ResourceID = fmt.Sprintf("res-%03d", m.seq)
	}
	m.resources[res.ResourceID] = res
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id string) (*model.Resource, error) {
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResourceRepo) ListByUnit(_ context.Context, unitID string, onlyActive bool) ([]model.Resource, error) {
	var result []model.Resource
	for _, r := range m.resources {
		if r.UnitID != unitID {
			continue
		}
		if onlyActive && r.Status != model.ResourceStatusActivo {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

func (m *mockResourceRepo) ListInTraining(_ context.Context) ([]model.Resource, error) {
	var result []model.Resource
	for _, r := range m.resources {
		if r.Status != model.ResourceStatusActivo || !r.InTraining || r.ContractGenerated || r.TrainingStartDate == nil {
			continue
		}
		result = append(result, *r)
	}
	return result, nil
}

func (m *mockResourceRepo) Update(_ context.Context, res *model.Resource) error {
	m.resources[res.ResourceID] = res
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.resources, id)
	return nil
}

// ── Mock CallRepository ──
// (shift_id, worker_id, call_number) 唯一，撞键返回 gorm.ErrDuplicatedKey，
// 模拟数据库的唯一索引兜底行为

type mockCallRepo struct {
	calls map[string]*model.Call
	seq   int
}

func newMockCallRepo() *mockCallRepo {
	return &mockCallRepo{calls: make(map[string]*model.Call)}
}

func (m *mockCallRepo) slotTaken(shiftID, workerID string, number int) bool {
	for _, c := range m.calls {
		if c.ShiftID == shiftID && c.WorkerID == workerID && c.CallNumber == number {
			return true
		}
	}
	return false
}

func (m *mockCallRepo) Create(_ context.Context, call *model.Call) error {
	if m.slotTaken(call.ShiftID, call.WorkerID, call.CallNumber) {
		return gorm.ErrDuplicatedKey
	}
	if call.CallID == "" {
		m.seq++
		call.CallID = fmt.Sprintf("call-%03d", m.seq)
	}
	m.calls[call.CallID] = call
	return nil
}

func (m *mockCallRepo) GetByID(_ context.Context, id string) (*model.Call, error) {
	if c, ok := m.calls[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCallRepo) ListByShift(_ context.Context, shiftID string) ([]model.Call, error) {
	var result []model.Call
	for _, c := range m.calls {
		if c.ShiftID == shiftID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].WorkerName != result[j].WorkerName {
			return result[i].WorkerName < result[j].WorkerName
		}
		return result[i].CallNumber < result[j].CallNumber
	})
	return result, nil
}

func (m *mockCallRepo) FindBySlot(_ context.Context, shiftID, workerID string, callNumber int) (*model.Call, error) {
	for _, c := range m.calls {
		if c.ShiftID == shiftID && c.WorkerID == workerID && c.CallNumber == callNumber {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCallRepo) Update(_ context.Context, call *model.Call) error {
	if _, ok := m.calls[call.CallID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.calls[call.CallID] = call
	return nil
}

func (m *mockCallRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.calls[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.calls, id)
	return nil
}

// ── Mock CameraReviewRepository ──

type mockCameraReviewRepo struct {
	reviews map[string]*model.CameraReview
	seq     int
}

func newMockCameraReviewRepo() *mockCameraReviewRepo {
	return &mockCameraReviewRepo{reviews: make(map[string]*model.CameraReview)}
}

func (m *mockCameraReviewRepo) Create(_ context.Context, review *model.CameraReview) error {
	for _, r := range m.reviews {
		if r.ShiftID == review.ShiftID && r.ReviewNumber == review.ReviewNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if review.ReviewID == "" {
		m.seq++
		review.ReviewID = fmt.Sprintf("review-%03d", m.seq)
	}
	m.reviews[review.ReviewID] = review
	return nil
}

func (m *mockCameraReviewRepo) GetByID(_ context.Context, id string) (*model.CameraReview, error) {
	if r, ok := m.reviews[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCameraReviewRepo) FindBySlot(_ context.Context, shiftID string, reviewNumber int) (*model.CameraReview, error) {
	for _, r := range m.reviews {
		if r.ShiftID == shiftID && r.ReviewNumber == reviewNumber {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCameraReviewRepo) ListByShift(_ context.Context, shiftID string) ([]model.CameraReview, error) {
	var result []model.CameraReview
	for _, r := range m.reviews {
		if r.ShiftID == shiftID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ReviewNumber < result[j].ReviewNumber })
	return result, nil
}

func (m *mockCameraReviewRepo) Update(_ context.Context, review *model.CameraReview) error {
	if _, ok := m.reviews[review.ReviewID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	m.reviews[review.ReviewID] = review
	return nil
}

// ── Mock AlertRepository ──

type mockAlertRepo struct {
	alerts map[string]*model.Alert
	seq    int
}

func newMockAlertRepo() *mockAlertRepo {
	return &mockAlertRepo{alerts: make(map[string]*model.Alert)}
}

func (m *mockAlertRepo) Create(_ context.Context, alert *model.Alert) error {
	for _, a := range m.alerts {
		if !a.Resolved && a.ShiftID == alert.ShiftID && a.Type == alert.Type && a.RelatedEntityID == alert.RelatedEntityID {
			return gorm.ErrDuplicatedKey
		}
	}
	if alert.AlertID == "" {
		m.seq++
		alert.AlertID = fmt.Sprintf("alert-%03d", m.seq)
	}
	alert.CreatedAt = time.Now()
	m.alerts[alert.AlertID] = alert
	return nil
}

func (m *mockAlertRepo) GetByID(_ context.Context, id string) (*model.Alert, error) {
	if a, ok := m.alerts[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAlertRepo) ListByShift(_ context.Context, shiftID string, onlyOpen bool) ([]model.Alert, error) {
	var result []model.Alert
	for _, a := range m.alerts {
		if a.ShiftID != shiftID {
			continue
		}
		if onlyOpen && a.Resolved {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAlertRepo) FindOpen(_ context.Context, shiftID, alertType, relatedEntityID string) (*model.Alert, error) {
	for _, a := range m.alerts {
		if !a.Resolved && a.ShiftID == shiftID && a.Type == alertType && a.RelatedEntityID == relatedEntityID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAlertRepo) Resolve(_ context.Context, id string, resolvedBy string, resolvedAt time.Time) error {
	a, ok := m.alerts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Resolved = true
	a.ResolvedBy = &resolvedBy
	a.ResolvedAt = &resolvedAt
	return nil
}

// ── Mock ShiftRepository ──
// 与 mockCallRepo / mockCameraReviewRepo / mockAlertRepo 共享存储，
// 让 CreateWithCalls 的事务语义和 Delete 的级联在测试中可见

type mockShiftRepo struct {
	shifts  map[string]*model.Shift
	calls   *mockCallRepo
	reviews *mockCameraReviewRepo
	alerts  *mockAlertRepo
	seq     int
}

func newMockShiftRepo(calls *mockCallRepo, reviews *mockCameraReviewRepo, alerts *mockAlertRepo) *mockShiftRepo {
	return &mockShiftRepo{
		shifts:  make(map[string]*model.Shift),
		calls:   calls,
		reviews: reviews,
		alerts:  alerts,
	}
}

func (m *mockShiftRepo) CreateWithCalls(ctx context.Context, shift *model.Shift, calls []model.Call) error {
	for _, s := range m.shifts {
		if s.DateKey == shift.DateKey && s.UnitID == shift.UnitID && s.SupervisorID == shift.SupervisorID {
			return gorm.ErrDuplicatedKey
		}
	}
	if shift.ShiftID == "" {
		m.seq++
		shift.ShiftID = fmt.Sprintf("shift-%03d", m.seq)
	}
	m.shifts[shift.ShiftID] = shift
	for i := range calls {
		calls[i].ShiftID = shift.ShiftID
		c := calls[i]
		if err := m.calls.Create(ctx, &c); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockShiftRepo) GetByID(_ context.Context, id string) (*model.Shift, error) {
	if s, ok := m.shifts[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) GetDetail(ctx context.Context, id string) (*model.Shift, error) {
	s, ok := m.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	detail := *s
	detail.Calls, _ = m.calls.ListByShift(ctx, id)
	detail.CameraReviews, _ = m.reviews.ListByShift(ctx, id)
	return &detail, nil
}

func (m *mockShiftRepo) FindActive(_ context.Context, dateKey, unitID, supervisorID string) (*model.Shift, error) {
	for _, s := range m.shifts {
		if s.DateKey == dateKey && s.UnitID == unitID && s.SupervisorID == supervisorID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftRepo) List(_ context.Context, filter repository.ShiftFilter, offset, limit int) ([]model.Shift, int64, error) {
	var matched []model.Shift
	for _, s := range m.shifts {
		if filter.DateFrom != "" && s.DateKey < filter.DateFrom {
			continue
		}
		if filter.DateTo != "" && s.DateKey > filter.DateTo {
			continue
		}
		if filter.UnitID != "" && s.UnitID != filter.UnitID {
			continue
		}
		if filter.SupervisorID != "" && s.SupervisorID != filter.SupervisorID {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		matched = append(matched, *s)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].DateKey > matched[j].DateKey })
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockShiftRepo) ListRange(ctx context.Context, dateFrom, dateTo, unitID string) ([]model.Shift, error) {
	var result []model.Shift
	for id, s := range m.shifts {
		if s.DateKey < dateFrom || s.DateKey > dateTo {
			continue
		}
		if unitID != "" && s.UnitID != unitID {
			continue
		}
		detail := *s
		detail.Calls, _ = m.calls.ListByShift(ctx, id)
		detail.CameraReviews, _ = m.reviews.ListByShift(ctx, id)
		result = append(result, detail)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].DateKey < result[j].DateKey })
	return result, nil
}

func (m *mockShiftRepo) Update(_ context.Context, shift *model.Shift) error {
	if _, ok := m.shifts[shift.ShiftID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	shift.Version++
	m.shifts[shift.ShiftID] = shift
	return nil
}

func (m *mockShiftRepo) SetCompletion(_ context.Context, shiftID string, pct int, status string) error {
	s, ok := m.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	// 与真实实现的谓词一致：已取消的班次不回写
	if s.Status == model.ShiftStatusCancelada {
		return nil
	}
	s.CompletionPct = pct
	s.Status = status
	return nil
}

// ── 共享测试环境 ──

type testEnv struct {
	cfg       *config.Config
	repo      *repository.Repository
	users     *mockUserRepo
	units     *mockUnitRepo
	resources *mockResourceRepo
	shifts    *mockShiftRepo
	calls     *mockCallRepo
	reviews   *mockCameraReviewRepo
	alerts    *mockAlertRepo
}

func newTestEnv() *testEnv {
	calls := newMockCallRepo()
	reviews := newMockCameraReviewRepo()
	alerts := newMockAlertRepo()
	shifts := newMockShiftRepo(calls, reviews, alerts)
	env := &testEnv{
		cfg:       newTestConfig(),
		users:     newMockUserRepo(),
		units:     newMockUnitRepo(),
		resources: newMockResourceRepo(),
		shifts:    shifts,
		calls:     calls,
		reviews:   reviews,
		alerts:    alerts,
	}
	env.repo = &repository.Repository{
		User:         env.users,
		Unit:         env.units,
		Resource:     env.resources,
		Shift:        env.shifts,
		Call:         env.calls,
		CameraReview: env.reviews,
		Alert:        env.alerts,
	}
	return env
}

func newTestConfig() *config.Config {
	return &config.Config{
		Supervision: config.SupervisionConfig{
			Timezone:          "UTC",
			NightShiftLabels:  []string{"noche", "nocturno", "turno noche", "night"},
			CallTimes:         []string{"23:00", "02:00", "05:00"},
			ReviewTimes:       []string{"00:00", "03:00", "06:00"},
			ContractAlertDays: 3,
			ReportCacheTTL:    0,
		},
	}
}

func (m *mockShiftRepo) Delete(_ context.Context, id string, _ string) error {
	if _, ok := m.shifts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.shifts, id)
	for cid, c := range m.calls.calls {
		if c.ShiftID == id {
			delete(m.calls.calls, cid)
		}
	}
	for rid, r := range m.reviews.reviews {
		if r.ShiftID == id {
			delete(m.reviews.reviews, rid)
		}
	}
	for aid, a := range m.alerts.alerts {
		if a.ShiftID == id {
			delete(m.alerts.alerts, aid)
		}
	}
	return nil
}
