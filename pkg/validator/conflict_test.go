package validator

import (
	"testing"
	"time"

	"github.com/paigong/paigong/pkg/model"
)

var (
	tuesday  = time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
)

func newTech(name string, skills ...string) *model.Technician {
	return &model.Technician{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Status:       "active",
		Skills:       skills,
		WorkingHours: model.WeekdaySchedule("08:00", "17:00"),
	}
}

func newJob(category, duration, clock string) *model.Job {
	return &model.Job{
		BaseModel:         model.NewBaseModel(),
		JobNo:             "JOB001",
		Category:          category,
		EstimatedDuration: model.FlexDuration(duration),
		ScheduledTime:     clock,
		Status:            "pending",
	}
}

func booked(tech *model.Technician, duration, clock string) *model.Job {
	j := newJob("HVAC Repair", duration, clock)
	j.JobNo = "EXIST"
	j.AssignedTechID = &tech.ID
	j.AssignedTechName = tech.Name
	j.Status = "assigned"
	return j
}

func hasType(r *Report, ct ConflictType) bool {
	for _, c := range r.Conflicts {
		if c.Type == ct {
			return true
		}
	}
	return false
}

func TestCheckAssignment_Clean(t *testing.T) {
	tech := newTech("老李", "HVAC")
	existing := []*model.Job{booked(tech, "2 hours", "08:00")}

	// 未定时刻的候选不触发时间段检查
	r := CheckAssignment(tech, newJob("HVAC Repair", "90 minutes", ""), existing, tuesday)

	if r.HasConflicts {
		t.Errorf("expected clean report, got %+v", r.Conflicts)
	}
}

func TestCheckAssignment_DayOff(t *testing.T) {
	tech := newTech("老李", "HVAC")
	r := CheckAssignment(tech, newJob("HVAC Repair", "1 hour", ""), nil, saturday)

	if !r.HasErrors || !hasType(r, ConflictDayOff) {
		t.Errorf("expected blocking day_off conflict, got %+v", r.Conflicts)
	}
}

func TestCheckAssignment_MaxJobs(t *testing.T) {
	tech := newTech("老李", "HVAC")
	var existing []*model.Job
	for i := 0; i < 4; i++ {
		existing = append(existing, booked(tech, "1 hour", ""))
	}

	r := CheckAssignment(tech, newJob("HVAC Repair", "1 hour", ""), existing, tuesday)

	if !r.HasErrors || !hasType(r, ConflictMaxJobs) {
		t.Errorf("expected blocking max_jobs conflict, got %+v", r.Conflicts)
	}
}

func TestCheckAssignment_MaxHoursIsWarningOnly(t *testing.T) {
	tech := newTech("老李", "HVAC")
	existing := []*model.Job{
		booked(tech, "3 hours", ""),
		booked(tech, "3 hours", ""),
	}

	r := CheckAssignment(tech, newJob("HVAC Repair", "3 hours", ""), existing, tuesday)

	if !hasType(r, ConflictMaxHours) {
		t.Fatalf("expected max_hours conflict, got %+v", r.Conflicts)
	}
	// 加班走提示不走阻断，调度员可自行权衡
	if r.HasErrors {
		t.Errorf("max_hours alone must not block, got %+v", r.Conflicts)
	}
	if !r.HasWarnings {
		t.Error("expected HasWarnings")
	}
}

func TestCheckAssignment_SkillMismatch(t *testing.T) {
	tech := newTech("管道工", "Plumbing")
	r := CheckAssignment(tech, newJob("HVAC Repair", "1 hour", ""), nil, tuesday)

	if !hasType(r, ConflictSkill) {
		t.Fatalf("expected skills conflict, got %+v", r.Conflicts)
	}
	if r.HasErrors {
		t.Error("skill mismatch must not block")
	}
}

func TestCheckAssignment_GeneralistSkipsSkillCheck(t *testing.T) {
	tech := newTech("多面手")
	r := CheckAssignment(tech, newJob("HVAC Repair", "1 hour", ""), nil, tuesday)

	if hasType(r, ConflictSkill) {
		t.Errorf("tech with no declared skills should pass, got %+v", r.Conflicts)
	}
}

func TestCheckAssignment_TimeOverlap(t *testing.T) {
	tech := newTech("老李", "HVAC")
	existing := []*model.Job{booked(tech, "2 hours", "08:00")}

	tests := []struct {
		name     string
		clock    string
		conflict bool
	}{
		{"占用区间内", "09:00", true},
		{"压进头部缓冲", "07:00", true},
		{"压进尾部缓冲", "10:15", true},
		{"正好在缓冲之后", "10:30", false},
		{"正好在缓冲之前结束", "06:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := CheckAssignment(tech, newJob("HVAC Repair", "1 hour", tt.clock), existing, tuesday)
			if got := hasType(r, ConflictTime); got != tt.conflict {
				t.Errorf("clock %s: time_conflict = %v, expected %v", tt.clock, got, tt.conflict)
			}
		})
	}
}

func TestCheckAssignment_IgnoresOtherTechJobs(t *testing.T) {
	tech := newTech("老李", "HVAC")
	other := newTech("老王", "HVAC")
	existing := []*model.Job{booked(other, "8 hours", "08:00")}

	r := CheckAssignment(tech, newJob("HVAC Repair", "1 hour", "09:00"), existing, tuesday)

	if r.HasConflicts {
		t.Errorf("other tech's bookings must not count, got %+v", r.Conflicts)
	}
}
