// Package slot 提供空闲时段查找
//
// 单日查找服务于「给这位技师约个时间」，跨日扫描服务于日历上的
// 「推荐时段」：向后有限天数内逐日找缝，再按轻重缓急排序取前几。
package slot

import (
	"sort"
	"time"

	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/timeutil"
)

// 跨日扫描缺省参数
const (
	DefaultLookaheadDays = 14 // 最多向后扫描天数
	DefaultTopN          = 3  // 返回的推荐时段数
)

// booking 技师当日的一段占用（含尾部缓冲）
type booking struct {
	start int
	end   int
}

// FindOpenSlot 查找技师当天能容纳指定时长的最早空闲时段
//
// 已有工单按开始时刻排序，每段尾部加缓冲间隔；从上班时刻起在
// 缝隙间推进，候选段尾加缓冲后不压到下一段占用即命中。没有
// 够长的缝隙时返回 ok=false，属正常结果。
func FindOpenSlot(tech *model.Technician, durationMinutes int, dayJobs []*model.Job, date time.Time) (string, bool) {
	wh := tech.WorkingHoursOn(date)
	if wh == nil {
		return "", false
	}

	open := timeutil.ClockToMinutes(wh.Start)
	close := timeutil.ClockToMinutes(wh.End)
	buffer := tech.EffectiveBuffer()

	bookings := bookingsFor(tech, dayJobs, buffer)

	cursor := open
	for _, b := range bookings {
		if cursor+durationMinutes+buffer <= b.start {
			return timeutil.MinutesToClock(cursor), true
		}
		if b.end > cursor {
			cursor = b.end
		}
	}

	if cursor+durationMinutes <= close {
		return timeutil.MinutesToClock(cursor), true
	}
	return "", false
}

// bookingsFor 收集技师当日已有占用并按开始时刻排序
func bookingsFor(tech *model.Technician, dayJobs []*model.Job, buffer int) []booking {
	var bookings []booking
	for _, job := range model.JobsFor(dayJobs, tech.ID) {
		if job.ScheduledTime == "" {
			continue
		}
		start := timeutil.ClockToMinutes(job.ScheduledTime)
		bookings = append(bookings, booking{
			start: start,
			end:   start + job.DurationMinutes() + buffer,
		})
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].start < bookings[j].start
	})
	return bookings
}

// Preference 客户的日期/时段偏好
type Preference struct {
	PreferredDays []time.Weekday `json:"preferred_days,omitempty"`
	PreferredTime string         `json:"preferred_time,omitempty"` // morning/afternoon/evening
}

// ScanOptions 跨日扫描选项
type ScanOptions struct {
	LookaheadDays int         // 零值取默认14天
	TopN          int         // 零值取默认3个
	Preference    *Preference // 客户偏好，可为空
}

// Candidate 一个候选时段
type Candidate struct {
	Date        string  `json:"date"`  // YYYY-MM-DD
	Start       string  `json:"start"` // HH:MM
	Score       float64 `json:"score"`
	DayJobCount int     `json:"day_job_count"`
}

// 时段推荐的次级评分参数：越早越好、当日越闲越好、偏早上，
// 命中客户偏好再加分。与派工主评分无关，只用于时段排序。
const (
	slotBaseScore      = 100.0
	slotPerDayPenalty  = 5.0  // 每晚一天扣分
	slotPerJobPenalty  = 8.0  // 当日每有一单扣分
	slotMorningBonus   = 10.0 // 中午前开始
	slotPrefDayBonus   = 15.0 // 命中偏好星期
	slotPrefTimeBonus  = 10.0 // 命中偏好时段
	morningEndMinutes  = 12 * 60
	eveningFromMinutes = 17 * 60
)

// SuggestSlots 向后逐日扫描，返回按次级评分排序的候选时段
//
// 跳过休息日和工单数已满的日子；jobsByDate 以 YYYY-MM-DD 为键。
// 同分保持日期先后，保证结果确定。
func SuggestSlots(tech *model.Technician, durationMinutes int, jobsByDate map[string][]*model.Job, from time.Time, opts ScanOptions) []Candidate {
	lookahead := opts.LookaheadDays
	if lookahead <= 0 {
		lookahead = DefaultLookaheadDays
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	var candidates []Candidate
	for offset := 0; offset < lookahead; offset++ {
		date := from.AddDate(0, 0, offset)
		if !tech.WorksOn(date) {
			continue
		}

		dayJobs := jobsByDate[timeutil.FormatDate(date)]
		techJobs := model.JobsFor(dayJobs, tech.ID)
		if len(techJobs) >= tech.EffectiveMaxJobs() {
			continue
		}

		start, ok := FindOpenSlot(tech, durationMinutes, dayJobs, date)
		if !ok {
			continue
		}

		candidates = append(candidates, Candidate{
			Date:        timeutil.FormatDate(date),
			Start:       start,
			Score:       scoreSlot(date, start, offset, len(techJobs), opts.Preference),
			DayJobCount: len(techJobs),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > topN {
		candidates = candidates[:topN]
	}
	return candidates
}

// scoreSlot 对候选时段做次级评分
func scoreSlot(date time.Time, start string, dayOffset, dayJobCount int, pref *Preference) float64 {
	score := slotBaseScore
	score -= float64(dayOffset) * slotPerDayPenalty
	score -= float64(dayJobCount) * slotPerJobPenalty

	startMin := timeutil.ClockToMinutes(start)
	if startMin < morningEndMinutes {
		score += slotMorningBonus
	}

	if pref != nil {
		for _, d := range pref.PreferredDays {
			if date.Weekday() == d {
				score += slotPrefDayBonus
				break
			}
		}
		if matchesTimeOfDay(startMin, pref.PreferredTime) {
			score += slotPrefTimeBonus
		}
	}
	return score
}

// matchesTimeOfDay 检查开始时刻是否落在偏好时段
func matchesTimeOfDay(startMin int, timeOfDay string) bool {
	switch timeOfDay {
	case "morning":
		return startMin < morningEndMinutes
	case "afternoon":
		return startMin >= morningEndMinutes && startMin < eveningFromMinutes
	case "evening":
		return startMin >= eveningFromMinutes
	}
	return false
}
