package slot

import (
	"testing"
	"time"

	"github.com/paigong/paigong/pkg/model"
)

var (
	tuesday  = time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
)

func newTech(name string) *model.Technician {
	return &model.Technician{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Status:       "active",
		WorkingHours: model.WeekdaySchedule("08:00", "17:00"),
	}
}

func bookedJob(tech *model.Technician, clock, duration string) *model.Job {
	j := &model.Job{
		BaseModel:         model.NewBaseModel(),
		Category:          "HVAC Repair",
		EstimatedDuration: model.FlexDuration(duration),
		ScheduledTime:     clock,
		Status:            "assigned",
	}
	j.AssignedTechID = &tech.ID
	j.AssignedTechName = tech.Name
	return j
}

func TestFindOpenSlot_AfterExistingBooking(t *testing.T) {
	tech := newTech("老李")
	dayJobs := []*model.Job{bookedJob(tech, "08:00", "2 hours")}

	// 08:00-10:00占用 + 30分钟缓冲 → 最早10:30
	start, ok := FindOpenSlot(tech, 90, dayJobs, tuesday)
	if !ok {
		t.Fatal("expected an open slot")
	}
	if start != "10:30" {
		t.Errorf("start = %s, expected 10:30", start)
	}
}

func TestFindOpenSlot_EmptyDay(t *testing.T) {
	tech := newTech("老李")
	start, ok := FindOpenSlot(tech, 60, nil, tuesday)
	if !ok || start != "08:00" {
		t.Errorf("got (%s, %v), expected (08:00, true)", start, ok)
	}
}

func TestFindOpenSlot_GapBetweenBookings(t *testing.T) {
	tech := newTech("老李")
	dayJobs := []*model.Job{
		bookedJob(tech, "11:00", "1 hour"),
		bookedJob(tech, "08:00", "1 hour"),
	}

	// 09:00结束+30缓冲 → 09:30起，60分钟+尾缓冲正好贴到11:00
	start, ok := FindOpenSlot(tech, 60, dayJobs, tuesday)
	if !ok || start != "09:30" {
		t.Errorf("got (%s, %v), expected (09:30, true)", start, ok)
	}
}

func TestFindOpenSlot_NoRoomForLongJob(t *testing.T) {
	tech := newTech("老李")
	// 08:00-17:00共540分钟，600分钟放不下
	if _, ok := FindOpenSlot(tech, 600, nil, tuesday); ok {
		t.Error("expected no slot for a job longer than the working day")
	}
}

func TestFindOpenSlot_DayOff(t *testing.T) {
	tech := newTech("老李")
	if _, ok := FindOpenSlot(tech, 60, nil, saturday); ok {
		t.Error("expected no slot on a day off")
	}
}

func TestFindOpenSlot_IgnoresOtherTechBookings(t *testing.T) {
	tech := newTech("老李")
	other := newTech("老王")
	dayJobs := []*model.Job{bookedJob(other, "08:00", "4 hours")}

	start, ok := FindOpenSlot(tech, 60, dayJobs, tuesday)
	if !ok || start != "08:00" {
		t.Errorf("got (%s, %v), other tech's bookings should not count", start, ok)
	}
}

func TestSuggestSlots_SkipsFullDaysAndRanks(t *testing.T) {
	tech := newTech("老李")

	// 周二已满（4单），周三已有一单，周四全空
	full := make([]*model.Job, 0, 4)
	for i := 0; i < 4; i++ {
		full = append(full, bookedJob(tech, "", "1 hour"))
	}
	jobsByDate := map[string][]*model.Job{
		"2026-01-06": full,
		"2026-01-07": {bookedJob(tech, "08:00", "1 hour")},
	}

	got := SuggestSlots(tech, 60, jobsByDate, tuesday, ScanOptions{})

	if len(got) != 3 {
		t.Fatalf("got %d candidates, expected 3", len(got))
	}
	// 周四全空最优，周三居次（但起点被已有预约推后），周五第三
	if got[0].Date != "2026-01-08" || got[0].Start != "08:00" {
		t.Errorf("top = %+v, expected 2026-01-08 08:00", got[0])
	}
	if got[1].Date != "2026-01-07" || got[1].Start != "09:30" {
		t.Errorf("second = %+v, expected 2026-01-07 09:30", got[1])
	}
	if got[2].Date != "2026-01-09" {
		t.Errorf("third = %+v, expected 2026-01-09", got[2])
	}
	if got[0].Score <= got[1].Score || got[1].Score <= got[2].Score {
		t.Errorf("scores not strictly ranked: %v %v %v", got[0].Score, got[1].Score, got[2].Score)
	}
}

func TestSuggestSlots_PreferenceLiftsLaterDay(t *testing.T) {
	tech := newTech("老李")

	got := SuggestSlots(tech, 60, nil, tuesday, ScanOptions{
		Preference: &Preference{
			PreferredDays: []time.Weekday{time.Friday},
			PreferredTime: "morning",
		},
	})

	if len(got) == 0 {
		t.Fatal("expected candidates")
	}
	// 偏好周五的加分足以盖过晚三天的扣分
	if got[0].Date != "2026-01-09" {
		t.Errorf("top = %+v, expected preferred Friday 2026-01-09", got[0])
	}
}

func TestSuggestSlots_LookaheadLimit(t *testing.T) {
	tech := newTech("老李")

	got := SuggestSlots(tech, 60, nil, tuesday, ScanOptions{LookaheadDays: 2, TopN: 10})

	// 仅扫周二周三两天
	if len(got) != 2 {
		t.Fatalf("got %d candidates, expected 2 within lookahead", len(got))
	}
	for _, c := range got {
		if c.Date != "2026-01-06" && c.Date != "2026-01-07" {
			t.Errorf("candidate %s outside lookahead window", c.Date)
		}
	}
}
