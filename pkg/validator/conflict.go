// Package validator 提供派工前的冲突检测
//
// 与评分器刻意各自独立：本包在调度员手动拖拽指派时被调用，
// 规则必须自包含、可审计，不复用评分逻辑。error 级冲突需要
// 调用方弹出确认后才能强制指派，warning 级只提示不阻断。
package validator

import (
	"fmt"
	"time"

	"github.com/paigong/paigong/pkg/assigner"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/timeutil"
)

// ConflictType 冲突类型
type ConflictType string

const (
	ConflictDayOff   ConflictType = "day_off"       // 当天休息
	ConflictMaxJobs  ConflictType = "max_jobs"      // 工单数已满
	ConflictMaxHours ConflictType = "max_hours"     // 工时超限
	ConflictSkill    ConflictType = "skills"        // 技能不匹配
	ConflictTime     ConflictType = "time_conflict" // 时间段冲突
)

// Conflict 冲突信息
type Conflict struct {
	Type     ConflictType   `json:"type"`
	Severity model.Severity `json:"severity"`
	Message  string         `json:"message"`
}

// Report 冲突检测报告
type Report struct {
	HasConflicts bool       `json:"has_conflicts"`
	HasErrors    bool       `json:"has_errors"`
	HasWarnings  bool       `json:"has_warnings"`
	Conflicts    []Conflict `json:"conflicts"`
}

// CheckAssignment 检测把工单指派给技师是否存在冲突
//
// existingJobs 是当天所有已分配工单，其中分配给该技师的部分
// 参与容量与时间段检查。所有输入只读，函数总是返回报告，
// 不因业务原因报错。
func CheckAssignment(tech *model.Technician, job *model.Job, existingJobs []*model.Job, date time.Time) *Report {
	report := &Report{Conflicts: []Conflict{}}
	techJobs := model.JobsFor(existingJobs, tech.ID)

	// 当天休息：阻断
	if !tech.WorksOn(date) {
		report.add(Conflict{
			Type:     ConflictDayOff,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("技师 %s 当天（%s）休息", tech.Name, timeutil.WeekdayName(date)),
		})
	}

	// 工单数已满：阻断
	if len(techJobs) >= tech.EffectiveMaxJobs() {
		report.add(Conflict{
			Type:     ConflictMaxJobs,
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("技师 %s 今日已有 %d 单，达到上限", tech.Name, len(techJobs)),
		})
	}

	// 工时超限：提示（允许调度员权衡加班）
	hoursAfter := model.HoursBooked(techJobs) + job.DurationHours()
	if maxHours := tech.EffectiveMaxHours(); hoursAfter > maxHours {
		report.add(Conflict{
			Type:     ConflictMaxHours,
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("加上该单后工时 %.1f 小时，超过上限 %.1f 小时", hoursAfter, maxHours),
		})
	}

	// 技能不匹配：提示（与评分器同一套匹配规则）
	if missing, ok := missingSkill(tech, job); ok {
		report.add(Conflict{
			Type:     ConflictSkill,
			Severity: model.SeverityWarning,
			Message:  "缺少技能: " + missing,
		})
	}

	// 时间段冲突：仅当工单已有明确预约时刻时检查
	if job.ScheduledTime != "" {
		for _, existing := range techJobs {
			if overlapsWithBuffer(job, existing, tech.EffectiveBuffer()) {
				report.add(Conflict{
					Type:     ConflictTime,
					Severity: model.SeverityError,
					Message:  fmt.Sprintf("与工单 %s（%s 开始）时间冲突", existing.JobNo, existing.ScheduledTime),
				})
			}
		}
	}

	return report
}

// add 记录冲突并更新汇总标记
func (r *Report) add(c Conflict) {
	r.Conflicts = append(r.Conflicts, c)
	r.HasConflicts = true
	if c.Severity == model.SeverityError {
		r.HasErrors = true
	} else {
		r.HasWarnings = true
	}
}

// missingSkill 检查技能要求，返回第一个缺失的技能
//
// 未申报任何技能的技师视为全能，不报缺失。
func missingSkill(tech *model.Technician, job *model.Job) (string, bool) {
	required := assigner.RequiredSkillsFor(job.Category)
	if len(required) == 0 {
		return "", false
	}
	techSkills := tech.AllSkills()
	if len(techSkills) == 0 {
		return "", false
	}
	if _, ok := assigner.MatchSkill(techSkills, required); ok {
		return "", false
	}
	return required[0], true
}

// overlapsWithBuffer 检查候选工单与已有工单是否在缓冲垫片后重叠
//
// 已有工单的区间向两侧各扩一个缓冲间隔，候选区间为
// [开始, 开始+时长]，扩后相交即为冲突。
func overlapsWithBuffer(candidate, existing *model.Job, bufferMinutes int) bool {
	if existing.ScheduledTime == "" {
		return false
	}

	candStart := timeutil.ClockToMinutes(candidate.ScheduledTime)
	candEnd := candStart + candidate.DurationMinutes()

	existStart := timeutil.ClockToMinutes(existing.ScheduledTime) - bufferMinutes
	existEnd := timeutil.ClockToMinutes(existing.ScheduledTime) + existing.DurationMinutes() + bufferMinutes

	return candStart < existEnd && existStart < candEnd
}
