package dateutil

import (
	"testing"
	"time"
)

func TestParseKey_Valid(t *testing.T) {
	got, err := ParseKey("2025-03-10")
	if err != nil {
		t.Fatalf("ParseKey 应成功: %v", err)
	}
	want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, got)
	}
}

func TestParseKey_Invalid(t *testing.T) {
	cases := []string{"", "2025/03/10", "10-03-2025", "2025-13-01", "hoy"}
	for _, c := range cases {
		if _, err := ParseKey(c); err == nil {
			t.Errorf("ParseKey(%q) 应失败", c)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"2025-01-01", "2025-01-05", 4},
		{"2025-01-05", "2025-01-01", -4},
		{"2025-03-10", "2025-03-10", 0},
		// 跨月与闰年
		{"2024-02-28", "2024-03-01", 2},
		{"2025-02-28", "2025-03-01", 1},
		// 跨智利夏令时切换（4月初），锚定 UTC 零点后不受影响
		{"2025-04-05", "2025-04-07", 2},
	}
	for _, c := range cases {
		got, err := DaysBetween(c.a, c.b)
		if err != nil {
			t.Fatalf("DaysBetween(%s, %s) 应成功: %v", c.a, c.b, err)
		}
		if got != c.want {
			t.Errorf("DaysBetween(%s, %s) 期望 %d，实际 %d", c.a, c.b, c.want, got)
		}
	}
}

func TestAddDays(t *testing.T) {
	got, err := AddDays("2025-01-01", 3)
	if err != nil {
		t.Fatalf("AddDays 应成功: %v", err)
	}
	if got != "2025-01-04" {
		t.Errorf("期望 2025-01-04，实际 %s", got)
	}

	got, _ = AddDays("2025-03-01", -1)
	if got != "2025-02-28" {
		t.Errorf("期望 2025-02-28，实际 %s", got)
	}
}

func TestTodayKey_UsesLocation(t *testing.T) {
	// 选两个日期一定不同步的时区验证"今天"随时区变化
	east := time.FixedZone("E12", 12*3600)
	west := time.FixedZone("W12", -12*3600)

	keyE := TodayKey(east)
	keyW := TodayKey(west)
	if !ValidKey(keyE) || !ValidKey(keyW) {
		t.Fatalf("TodayKey 应返回合法日历键: %s / %s", keyE, keyW)
	}
	d, err := DaysBetween(keyW, keyE)
	if err != nil {
		t.Fatalf("DaysBetween 应成功: %v", err)
	}
	if d < 0 || d > 1 {
		t.Errorf("东西十二区的日期差应为 0 或 1 天，实际 %d", d)
	}
}

func TestValidClock(t *testing.T) {
	if !ValidClock("23:00") || !ValidClock("02:30") {
		t.Error("合法时刻被判为非法")
	}
	if ValidClock("24:00") || ValidClock("9am") || ValidClock("") {
		t.Error("非法时刻被判为合法")
	}
}
