package dateutil

import (
	"fmt"
	"time"
)

// KeyLayout 日历键格式 YYYY-MM-DD
const KeyLayout = "2006-01-02"

// TodayKey 返回 loc 时区下今天的日历键。
// 所有"今天"的判断必须经过这里，统一时区基准，不做 UTC 换算。
func TodayKey(loc *time.Location) string {
	return time.Now().In(loc).Format(KeyLayout)
}

// ParseKey 解析日历键为 UTC 零点时刻。
// 日历键本身不携带时区，统一锚定 UTC 零点仅用于天数运算。
func ParseKey(key string) (time.Time, error) {
	t, err := time.ParseInLocation(KeyLayout, key, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("无效的日历键 %q: %w", key, err)
	}
	return t, nil
}

// ValidKey 校验字符串是否为合法日历键
func ValidKey(key string) bool {
	_, err := ParseKey(key)
	return err == nil
}

// DaysBetween 计算 b - a 的整天差（a、b 均为日历键）。
// 两端都锚定 UTC 零点，结果是精确的整数，不受夏令时影响。
func DaysBetween(a, b string) (int, error) {
	ta, err := ParseKey(a)
	if err != nil {
		return 0, err
	}
	tb, err := ParseKey(b)
	if err != nil {
		return 0, err
	}
	return int(tb.Sub(ta) / (24 * time.Hour)), nil
}

// AddDays 日历键加 n 天（n 可为负）
func AddDays(key string, n int) (string, error) {
	t, err := ParseKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(KeyLayout), nil
}

// ValidClock 校验 HH:MM 时刻字符串
func ValidClock(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}
