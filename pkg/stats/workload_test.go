package stats

import (
	"math"
	"testing"
	"time"

	"github.com/paigong/paigong/pkg/model"
)

var tuesday = time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)

func newTech(name string) *model.Technician {
	return &model.Technician{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Status:       "active",
		WorkingHours: model.WeekdaySchedule("08:00", "17:00"),
	}
}

func assignedJob(tech *model.Technician, duration string) *model.Job {
	j := &model.Job{
		BaseModel:         model.NewBaseModel(),
		Category:          "HVAC Repair",
		EstimatedDuration: model.FlexDuration(duration),
		Status:            "assigned",
	}
	j.AssignedTechID = &tech.ID
	j.AssignedTechName = tech.Name
	return j
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeWorkload(t *testing.T) {
	busy := newTech("忙的")
	idle := newTech("闲的")

	jobs := []*model.Job{
		assignedJob(busy, "4 hours"),
		assignedJob(busy, "2 hours"),
		{BaseModel: model.NewBaseModel(), Category: "Plumbing", EstimatedDuration: "1 hour", Status: "pending"},
	}

	report := AnalyzeWorkload([]*model.Technician{idle, busy}, jobs, tuesday)

	if report.Date != "2026-01-06" {
		t.Errorf("Date = %s", report.Date)
	}
	if report.TotalJobs != 3 || report.AssignedJobs != 2 || report.UnassignedJobs != 1 {
		t.Errorf("job counts = %d/%d/%d, expected 3/2/1",
			report.TotalJobs, report.AssignedJobs, report.UnassignedJobs)
	}

	// 按利用率降序：忙的在前
	if report.Technicians[0].TechName != "忙的" {
		t.Errorf("first = %s, expected 忙的", report.Technicians[0].TechName)
	}
	if w := report.Technicians[0]; w.JobCount != 2 || !almostEqual(w.HoursBooked, 6) || !almostEqual(w.Utilization, 0.75) {
		t.Errorf("busy workload = %+v", w)
	}
	if w := report.Technicians[1]; w.JobCount != 0 || !almostEqual(w.Utilization, 0) {
		t.Errorf("idle workload = %+v", w)
	}
	if !almostEqual(report.AvgUtilization, 0.375) {
		t.Errorf("AvgUtilization = %v, expected 0.375", report.AvgUtilization)
	}
	if len(report.OverloadedIDs) != 0 {
		t.Errorf("unexpected overloads: %v", report.OverloadedIDs)
	}
}

func TestAnalyzeWorkload_Overload(t *testing.T) {
	tech := newTech("超载的")
	jobs := []*model.Job{
		assignedJob(tech, "5 hours"),
		assignedJob(tech, "4 hours"),
	}

	report := AnalyzeWorkload([]*model.Technician{tech}, jobs, tuesday)

	w := report.Technicians[0]
	if !w.Overloaded {
		t.Error("9 booked hours over an 8-hour cap should flag overloaded")
	}
	if !almostEqual(w.Utilization, 1.125) {
		t.Errorf("Utilization = %v, expected 1.125", w.Utilization)
	}
	if len(report.OverloadedIDs) != 1 || report.OverloadedIDs[0] != tech.ID.String() {
		t.Errorf("OverloadedIDs = %v", report.OverloadedIDs)
	}
}

func TestAnalyzeWorkload_DayOffExcludedFromAverage(t *testing.T) {
	working := newTech("上班的")
	resting := newTech("休息的")
	resting.WorkingHours = model.WeekSchedule{} // 全周停用

	jobs := []*model.Job{assignedJob(working, "4 hours")}
	report := AnalyzeWorkload([]*model.Technician{working, resting}, jobs, tuesday)

	// 平均利用率只看当天上班的技师
	if !almostEqual(report.AvgUtilization, 0.5) {
		t.Errorf("AvgUtilization = %v, expected 0.5", report.AvgUtilization)
	}
	for _, w := range report.Technicians {
		if w.TechName == "休息的" && !w.DayOff {
			t.Error("expected DayOff for resting tech")
		}
	}
}

func TestAnalyzeWorkload_Empty(t *testing.T) {
	report := AnalyzeWorkload(nil, nil, tuesday)
	if report.TotalJobs != 0 || report.AvgUtilization != 0 || len(report.Technicians) != 0 {
		t.Errorf("empty report = %+v", report)
	}
}
