// Package timeutil 提供工时与时刻的归一化转换
//
// 工单的预估时长来自外部文档库，可能是数字（分钟）也可能是
// "2 hours" / "90 minutes" / "1 day" 这类自由文本，引擎内部只
// 使用分钟数，所有转换集中在本包。
package timeutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultDurationMinutes 无法解析时长时的默认值（分钟）
const DefaultDurationMinutes = 60

// WorkdayMinutes 一个工作日按8小时折算
const WorkdayMinutes = 8 * 60

// 时长文本模式，按优先级匹配：
// 先匹配小时再匹配分钟，避免 "1.5 hours" 里的数字被当作分钟
var (
	hoursPattern   = regexp.MustCompile(`(?i)([\d.]+)\s*(hours?|hrs?)`)
	minutesPattern = regexp.MustCompile(`(?i)([\d.]+)\s*(minutes?|mins?)`)
	daysPattern    = regexp.MustCompile(`(?i)([\d.]+)\s*days?`)
)

// ParseDuration 将时长文本解析为分钟数
//
// 支持 "<数值> hour(s)/hr(s)"、"<数值> minute(s)/min(s)"、
// "<数值> day(s)"（按8小时工作日折算）以及纯数字（直接视为分钟）。
// 空串或无法识别的输入返回默认60分钟，不报错。
func ParseDuration(input string) int {
	s := strings.TrimSpace(input)
	if s == "" {
		return DefaultDurationMinutes
	}

	// 纯数字直接当作分钟
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return roundMinutes(v)
	}

	if m := hoursPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return roundMinutes(v * 60)
		}
	}
	if m := minutesPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return roundMinutes(v)
		}
	}
	if m := daysPattern.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return roundMinutes(v * WorkdayMinutes)
		}
	}

	return DefaultDurationMinutes
}

// MinutesToClock 将当日分钟偏移转换为 HH:MM（24小时制，零填充）
func MinutesToClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ClockToMinutes 将 HH:MM 转换为当日分钟偏移
//
// 非法输入返回0，引擎按「当日开始」兜底处理。
func ClockToMinutes(clock string) int {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return 0
	}
	return h*60 + m
}

// WeekdayName 返回日期对应的英文星期名（小写全称）
//
// 外部应用的文档库按 "monday".."sunday" 存储工作时间，统一在
// 这里生成，避免散落各处的字符串拼写。
func WeekdayName(date time.Time) string {
	return strings.ToLower(date.Weekday().String())
}

// ParseWeekday 将英文星期名解析为 time.Weekday
func ParseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return 0, false
}

// ParseDate 解析 YYYY-MM-DD 日期串
func ParseDate(date string) (time.Time, error) {
	return time.Parse("2006-01-02", date)
}

// FormatDate 格式化为 YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// roundMinutes 四舍五入到整分钟
func roundMinutes(v float64) int {
	if v < 0 {
		return 0
	}
	return int(v + 0.5)
}
