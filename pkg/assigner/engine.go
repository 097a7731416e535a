// Package assigner 提供技师-工单智能派工引擎
package assigner

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/logger"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/timeutil"
)

// Engine 派工引擎
//
// 纯内存计算，不访问存储；同一输入可安全并发调用，
// 但同一次 AutoAssign 内部的工作集不可跨调用共享。
type Engine struct {
	logger *logger.AssignerLogger
}

// NewEngine 创建派工引擎
func NewEngine() *Engine {
	return &Engine{
		logger: logger.NewAssignerLogger(),
	}
}

// SuggestRequest 单工单推荐请求
type SuggestRequest struct {
	Job           *model.Job          // 待派工单
	Technicians   []*model.Technician // 全量技师名册
	DayJobs       []*model.Job        // 当天已分配工单
	Date          time.Time           // 目标日期（调用方负责时区归一化）
	ExcludeTechID *uuid.UUID          // 改派时排除当前技师
}

// SuggestResult 单工单推荐结果
type SuggestResult struct {
	Job          *model.Job   `json:"job"`
	Suggestions  []Suggestion `json:"suggestions"`
	TopPick      *Suggestion  `json:"top_pick,omitempty"`
	HasGoodMatch bool         `json:"has_good_match"`
}

// Suggest 对一个工单给出按分数降序的技师推荐列表
//
// 同分保持名册输入顺序（稳定排序），保证相同输入得到相同输出。
func (e *Engine) Suggest(req *SuggestRequest) *SuggestResult {
	result := &SuggestResult{
		Job:         req.Job,
		Suggestions: make([]Suggestion, 0, len(req.Technicians)),
	}
	if req.Job == nil {
		return result
	}

	for _, tech := range req.Technicians {
		if req.ExcludeTechID != nil && tech.ID == *req.ExcludeTechID {
			continue
		}
		result.Suggestions = append(result.Suggestions, ScoreTechnician(tech, req.Job, req.DayJobs, req.Date))
	}

	sort.SliceStable(result.Suggestions, func(i, j int) bool {
		return result.Suggestions[i].Score > result.Suggestions[j].Score
	})

	if len(result.Suggestions) > 0 {
		result.TopPick = &result.Suggestions[0]
	}
	for _, s := range result.Suggestions {
		if s.IsRecommended {
			result.HasGoodMatch = true
			break
		}
	}
	return result
}

// AssignmentRecord 批量派工中单个工单的处置记录
type AssignmentRecord struct {
	JobID    uuid.UUID  `json:"job_id"`
	Job      *model.Job `json:"job"`
	TechID   *uuid.UUID `json:"tech_id,omitempty"`
	TechName string     `json:"tech_name,omitempty"`
	Score    int        `json:"score"`
	Reasons  []string   `json:"reasons,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Failed   bool       `json:"failed,omitempty"`
}

// Summary 批量派工汇总
type Summary struct {
	Total      int `json:"total"`
	Assigned   int `json:"assigned"`
	Unassigned int `json:"unassigned"`
}

// AutoAssignResult 批量派工结果
type AutoAssignResult struct {
	Assignments []AssignmentRecord `json:"assignments"`
	Successful  []AssignmentRecord `json:"successful"`
	Failed      []AssignmentRecord `json:"failed"`
	Summary     Summary            `json:"summary"`
}

// AutoAssign 贪心批量派工
//
// 工单按预估时长降序逐个处理（长工单难安置，先派），每派成功
// 一单就把它追加进工作集，让后续工单的容量与片区评分看得到
// 本批次已做出的分配。单遍贪心不回溯：前面的次优安置可能挤掉
// 后面的工单，这是有意选择的可预期行为，不做全局寻优。
//
// 自动派工只接受硬性可行的分配：技师当天上班、工单数与工时
// 不超限、与已有预约无缓冲重叠。得分为正但硬性不可行的候选
// 跳过，顺延到下一名。没有可行技师的工单记为 Failed，留在
// 待派队列，属正常结果。
func (e *Engine) AutoAssign(jobs []*model.Job, technicians []*model.Technician, existing []*model.Job, date time.Time) *AutoAssignResult {
	start := time.Now()
	e.logger.StartBatch(len(jobs), len(technicians))

	techByID := make(map[uuid.UUID]*model.Technician, len(technicians))
	for _, tech := range technicians {
		techByID[tech.ID] = tech
	}

	// 长工单优先；同时长保持输入顺序
	pending := make([]*model.Job, len(jobs))
	copy(pending, jobs)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].DurationMinutes() > pending[j].DurationMinutes()
	})

	// 工作集：已有分配 + 本批次逐步累积的分配
	working := make([]*model.Job, len(existing))
	copy(working, existing)

	result := &AutoAssignResult{
		Assignments: make([]AssignmentRecord, 0, len(pending)),
	}

	for _, job := range pending {
		sr := e.Suggest(&SuggestRequest{
			Job:         job,
			Technicians: technicians,
			DayJobs:     working,
			Date:        date,
		})

		// 建议已按分数降序，取第一个得正分且硬性可行的候选
		var pick *Suggestion
		for i := range sr.Suggestions {
			s := &sr.Suggestions[i]
			if s.Score <= 0 {
				break
			}
			if hardFits(techByID[s.TechID], job, working, date) {
				pick = s
				break
			}
		}

		if pick == nil {
			rec := AssignmentRecord{
				JobID:    job.ID,
				Job:      job,
				Warnings: []string{"没有合适的技师可派"},
				Failed:   true,
			}
			result.Assignments = append(result.Assignments, rec)
			result.Failed = append(result.Failed, rec)
			e.logger.JobUnassigned(job.JobNo)
			continue
		}
		techID := pick.TechID
		rec := AssignmentRecord{
			JobID:    job.ID,
			Job:      job,
			TechID:   &techID,
			TechName: pick.TechName,
			Score:    pick.Score,
			Reasons:  pick.Reasons,
			Warnings: pick.Warnings,
		}
		result.Assignments = append(result.Assignments, rec)
		result.Successful = append(result.Successful, rec)

		// 把本次分配并入工作集，影响后续工单的评分
		assigned := *job
		assigned.AssignedTechID = &techID
		assigned.AssignedTechName = pick.TechName
		working = append(working, &assigned)
	}

	result.Summary = Summary{
		Total:      len(pending),
		Assigned:   len(result.Successful),
		Unassigned: len(result.Failed),
	}

	e.logger.BatchComplete(result.Summary.Total, result.Summary.Assigned, result.Summary.Unassigned, time.Since(start))
	return result
}

// hardFits 检查自动派工的硬性可行条件
//
// 当天上班、工单数未满、工时不超限；工单带明确预约时刻时还要求
// 与该技师已有预约在缓冲垫片后不重叠。软性问题（技能、远近）
// 只影响分数，不在这里拦截。
func hardFits(tech *model.Technician, job *model.Job, dayJobs []*model.Job, date time.Time) bool {
	if tech == nil || !tech.WorksOn(date) {
		return false
	}

	techJobs := model.JobsFor(dayJobs, tech.ID)
	if len(techJobs) >= tech.EffectiveMaxJobs() {
		return false
	}
	if model.HoursBooked(techJobs)+job.DurationHours() > tech.EffectiveMaxHours() {
		return false
	}

	if job.ScheduledTime != "" {
		buffer := tech.EffectiveBuffer()
		candStart := timeutil.ClockToMinutes(job.ScheduledTime)
		candEnd := candStart + job.DurationMinutes()
		for _, existing := range techJobs {
			if existing.ScheduledTime == "" {
				continue
			}
			existStart := timeutil.ClockToMinutes(existing.ScheduledTime) - buffer
			existEnd := timeutil.ClockToMinutes(existing.ScheduledTime) + existing.DurationMinutes() + buffer
			if candStart < existEnd && existStart < candEnd {
				return false
			}
		}
	}
	return true
}
