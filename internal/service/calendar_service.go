package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AlvaritoMP/OpsFlow-sub000/config"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/model"
	"github.com/AlvaritoMP/OpsFlow-sub000/internal/repository"
	"github.com/AlvaritoMP/OpsFlow-sub000/pkg/dateutil"
)

// CalendarService 班次日历导出接口
//
// 把一个班次的全部点名与摄像头复查槽位导出为 iCalendar（.ics）文本，
// 供监督员订阅到手机日历。时刻按配置时区解释；
// 早于班次开始时刻的检查点视为跨夜，落到次日。
type CalendarService interface {
	ShiftCalendar(ctx context.Context, shiftID string) (string, error)
}

type calendarService struct {
	cfg    *config.Config
	repo   *repository.Repository
	loc    *time.Location
	logger *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(cfg *config.Config, repo *repository.Repository, loc *time.Location, logger *zap.Logger) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, loc: loc, logger: logger}
}

func (s *calendarService) ShiftCalendar(ctx context.Context, shiftID string) (string, error) {
	shift, err := s.repo.Shift.GetDetail(ctx, shiftID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrShiftNotFound
		}
		s.logger.Error("查询班次失败", zap.String("id", shiftID), zap.Error(err))
		return "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//OpsFlow//Supervision Nocturna//ES")

	unitName := ""
	if shift.Unit != nil {
		unitName = shift.Unit.Name
	}

	for i := range shift.Calls {
		call := &shift.Calls[i]
		start, perr := s.checkpointTime(shift, call.ScheduledTime)
		if perr != nil {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("call-%s@opsflow", call.CallID))
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(10 * time.Minute))
		ev.SetSummary(fmt.Sprintf("Llamada %d — %s", call.CallNumber, call.WorkerName))
		if unitName != "" {
			ev.SetLocation(unitName)
		}
		if call.WorkerPhone != "" {
			ev.SetDescription("Tel: " + call.WorkerPhone)
		}
	}

	// 复查槽位惰性落库：未落库的槽位按配置时刻补齐日历项
	seen := make(map[int]bool, len(shift.CameraReviews))
	for i := range shift.CameraReviews {
		review := &shift.CameraReviews[i]
		seen[review.ReviewNumber] = true
		s.addReviewEvent(cal, shift, unitName, review.ReviewNumber, review.ScheduledTime)
	}
	for slot := 1; slot <= model.ReviewSlots; slot++ {
		if !seen[slot] {
			s.addReviewEvent(cal, shift, unitName, slot, s.cfg.Supervision.ReviewTimes[slot-1])
		}
	}

	return cal.Serialize(), nil
}

func (s *calendarService) addReviewEvent(cal *ics.Calendar, shift *model.Shift, unitName string, slot int, clock string) {
	start, err := s.checkpointTime(shift, clock)
	if err != nil {
		return
	}
	ev := cal.AddEvent(fmt.Sprintf("review-%s-%d@opsflow", shift.ShiftID, slot))
	ev.SetStartAt(start)
	ev.SetEndAt(start.Add(15 * time.Minute))
	ev.SetSummary(fmt.Sprintf("Revisión de cámaras %d", slot))
	if unitName != "" {
		ev.SetLocation(unitName)
	}
}

// checkpointTime 把 (班次日期, HH:MM) 解释为配置时区的具体时刻；
// 时刻早于班次开始视为已过午夜，顺延一天
func (s *calendarService) checkpointTime(shift *model.Shift, clock string) (time.Time, error) {
	dateKey := shift.DateKey
	if clock < shift.ShiftStart {
		next, err := dateutil.AddDays(dateKey, 1)
		if err != nil {
			return time.Time{}, err
		}
		dateKey = next
	}
	return time.ParseInLocation("2006-01-02 15:04", dateKey+" "+clock, s.loc)
}
