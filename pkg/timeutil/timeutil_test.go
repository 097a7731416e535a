package timeutil

import (
	"fmt"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"整数小时", "2 hours", 120},
		{"小数小时", "1.5 hours", 90},
		{"单数小时", "1 hour", 60},
		{"hr缩写", "3 hrs", 180},
		{"整数分钟", "90 minutes", 90},
		{"min缩写", "45 min", 45},
		{"单数分钟", "1 minute", 1},
		{"天数折算", "1 day", 480},
		{"半天", "0.5 days", 240},
		{"纯数字按分钟", "75", 75},
		{"小数分钟四舍五入", "30.6", 31},
		{"空串默认60", "", 60},
		{"无法识别默认60", "soon", 60},
		{"无单位空格", "2hours", 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDuration(tt.input)
			if got != tt.expected {
				t.Errorf("ParseDuration(%q) = %d, expected %d", tt.input, got, tt.expected)
			}
		})
	}
}

// 小时模式优先于分钟模式：同时含数字与 hour 的文本不能被当作分钟
func TestParseDuration_HoursBeforeMinutes(t *testing.T) {
	if got := ParseDuration("about 2 hours of work"); got != 120 {
		t.Errorf("expected 120, got %d", got)
	}
	if got := ParseDuration("1.5 hours (90 minutes)"); got != 90 {
		t.Errorf("hours pattern should win: expected 90, got %d", got)
	}
}

// 往返性质：h 小时 = round(h*60) 分钟，m 分钟 = round(m) 分钟
func TestParseDuration_RoundTrip(t *testing.T) {
	for h := 0; h <= 12; h++ {
		input := fmt.Sprintf("%d hours", h)
		if got := ParseDuration(input); got != h*60 {
			t.Errorf("ParseDuration(%q) = %d, expected %d", input, got, h*60)
		}
	}
	for m := 0; m <= 240; m += 15 {
		input := fmt.Sprintf("%d minutes", m)
		if got := ParseDuration(input); got != m {
			t.Errorf("ParseDuration(%q) = %d, expected %d", input, got, m)
		}
	}
}

func TestClockConversion(t *testing.T) {
	tests := []struct {
		clock   string
		minutes int
	}{
		{"00:00", 0},
		{"08:00", 480},
		{"10:30", 630},
		{"17:00", 1020},
		{"23:59", 1439},
	}

	for _, tt := range tests {
		if got := ClockToMinutes(tt.clock); got != tt.minutes {
			t.Errorf("ClockToMinutes(%q) = %d, expected %d", tt.clock, got, tt.minutes)
		}
		if got := MinutesToClock(tt.minutes); got != tt.clock {
			t.Errorf("MinutesToClock(%d) = %q, expected %q", tt.minutes, got, tt.clock)
		}
	}
}

func TestClockToMinutes_Invalid(t *testing.T) {
	if got := ClockToMinutes("not a time"); got != 0 {
		t.Errorf("expected 0 for invalid input, got %d", got)
	}
}

func TestWeekdayName(t *testing.T) {
	// 2026-01-06 是周二
	date := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	if got := WeekdayName(date); got != "tuesday" {
		t.Errorf("WeekdayName = %q, expected tuesday", got)
	}
}

func TestParseWeekday(t *testing.T) {
	wd, ok := ParseWeekday("Saturday")
	if !ok || wd != time.Saturday {
		t.Errorf("ParseWeekday(Saturday) = %v, %v", wd, ok)
	}
	if _, ok := ParseWeekday("funday"); ok {
		t.Error("ParseWeekday should reject unknown names")
	}
}
