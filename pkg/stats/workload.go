// Package stats 提供派工负载统计分析
package stats

import (
	"sort"
	"time"

	"github.com/paigong/paigong/pkg/model"
)

// TechWorkload 单个技师的当日负载
type TechWorkload struct {
	TechID      string  `json:"tech_id"`
	TechName    string  `json:"tech_name"`
	JobCount    int     `json:"job_count"`
	MaxJobs     int     `json:"max_jobs"`
	HoursBooked float64 `json:"hours_booked"`
	MaxHours    float64 `json:"max_hours"`
	Utilization float64 `json:"utilization"` // 工时利用率 0-1（可超1表示超载）
	DayOff      bool    `json:"day_off"`
	Overloaded  bool    `json:"overloaded"` // 工单数或工时任一超限
}

// WorkloadReport 当日负载报告
type WorkloadReport struct {
	Date           string         `json:"date"`
	Technicians    []TechWorkload `json:"technicians"`
	TotalJobs      int            `json:"total_jobs"`
	AssignedJobs   int            `json:"assigned_jobs"`
	UnassignedJobs int            `json:"unassigned_jobs"`
	AvgUtilization float64        `json:"avg_utilization"` // 仅统计当天上班的技师
	OverloadedIDs  []string       `json:"overloaded_ids,omitempty"`
}

// AnalyzeWorkload 统计一天的技师负载分布
//
// jobs 取当天全量工单（含未分配）；利用率按工时计算，休息的
// 技师不计入平均值。结果按利用率降序，便于调度看板直接展示。
func AnalyzeWorkload(technicians []*model.Technician, jobs []*model.Job, date time.Time) *WorkloadReport {
	report := &WorkloadReport{
		Date:        date.Format("2006-01-02"),
		Technicians: make([]TechWorkload, 0, len(technicians)),
		TotalJobs:   len(jobs),
	}

	for _, job := range jobs {
		if job.IsAssigned() {
			report.AssignedJobs++
		}
	}
	report.UnassignedJobs = report.TotalJobs - report.AssignedJobs

	workingCount := 0
	utilizationSum := 0.0

	for _, tech := range technicians {
		techJobs := model.JobsFor(jobs, tech.ID)
		hours := model.HoursBooked(techJobs)
		maxHours := tech.EffectiveMaxHours()
		maxJobs := tech.EffectiveMaxJobs()

		w := TechWorkload{
			TechID:      tech.ID.String(),
			TechName:    tech.Name,
			JobCount:    len(techJobs),
			MaxJobs:     maxJobs,
			HoursBooked: hours,
			MaxHours:    maxHours,
			Utilization: hours / maxHours,
			DayOff:      !tech.WorksOn(date),
			Overloaded:  len(techJobs) > maxJobs || hours > maxHours,
		}
		report.Technicians = append(report.Technicians, w)

		if !w.DayOff {
			workingCount++
			utilizationSum += w.Utilization
		}
		if w.Overloaded {
			report.OverloadedIDs = append(report.OverloadedIDs, w.TechID)
		}
	}

	if workingCount > 0 {
		report.AvgUtilization = utilizationSum / float64(workingCount)
	}

	sort.SliceStable(report.Technicians, func(i, j int) bool {
		return report.Technicians[i].Utilization > report.Technicians[j].Utilization
	})

	return report
}
