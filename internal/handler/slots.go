// Package handler 提供API处理器
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/pkg/assigner"
	"github.com/paigong/paigong/pkg/assigner/slot"
	apperrors "github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/timeutil"
)

// SlotAPIRequest 空闲时段查找API请求
//
// Date 给定时只查当天；留空则从 From（默认今天）起跨日扫描。
type SlotAPIRequest struct {
	Technician      *model.Technician       `json:"technician"`
	DurationMinutes int                     `json:"duration_minutes"`
	Duration        model.FlexDuration      `json:"duration,omitempty"` // 与 duration_minutes 二选一
	Date            string                  `json:"date,omitempty"`     // YYYY-MM-DD
	From            string                  `json:"from,omitempty"`     // YYYY-MM-DD
	DayJobs         []*model.Job            `json:"day_jobs,omitempty"`
	JobsByDate      map[string][]*model.Job `json:"jobs_by_date,omitempty"`
	LookaheadDays   int                     `json:"lookahead_days,omitempty"`
	TopN            int                     `json:"top_n,omitempty"`
	Preference      *slot.Preference        `json:"preference,omitempty"`
}

// SlotAPIResponse 空闲时段查找API响应
type SlotAPIResponse struct {
	Success    bool             `json:"success"`
	Found      bool             `json:"found"`
	Start      string           `json:"start,omitempty"`
	Candidates []slot.Candidate `json:"candidates,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// RouteAPIRequest 路线排序API请求
type RouteAPIRequest struct {
	Jobs []*model.Job    `json:"jobs"`
	Home *model.Location `json:"home,omitempty"`
}

// RouteAPIResponse 路线排序API响应
type RouteAPIResponse struct {
	Success       bool         `json:"success"`
	Jobs          []*model.Job `json:"jobs,omitempty"`
	TotalDistance float64      `json:"total_distance,omitempty"`
	Error         string       `json:"error,omitempty"`
}

// SlotHandler 查找技师空闲时段
func SlotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SlotAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if req.Technician == nil {
		respondError(w, apperrors.InvalidInput("technician", "不能为空"))
		return
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = req.Duration.Minutes()
	}

	// 单日查找
	if req.Date != "" {
		date, err := timeutil.ParseDate(req.Date)
		if err != nil {
			respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
			return
		}

		log.Printf("接收时段查找请求: tech=%s, date=%s, duration=%d", req.Technician.Name, req.Date, duration)

		start, ok := slot.FindOpenSlot(req.Technician, duration, req.DayJobs, date)
		metrics.RecordSlotScan(ok)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SlotAPIResponse{
			Success: true,
			Found:   ok,
			Start:   start,
		})
		return
	}

	// 跨日扫描，From 缺省为今天
	from := time.Now()
	if req.From != "" {
		parsed, err := timeutil.ParseDate(req.From)
		if err != nil {
			respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
			return
		}
		from = parsed
	}

	log.Printf("接收时段扫描请求: tech=%s, from=%s, duration=%d", req.Technician.Name, req.From, duration)

	candidates := slot.SuggestSlots(req.Technician, duration, req.JobsByDate, from, slot.ScanOptions{
		LookaheadDays: req.LookaheadDays,
		TopN:          req.TopN,
		Preference:    req.Preference,
	})
	metrics.RecordSlotScan(len(candidates) > 0)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SlotAPIResponse{
		Success:    true,
		Found:      len(candidates) > 0,
		Candidates: candidates,
	})
}

// RouteHandler 技师当日工单路线排序
func RouteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RouteAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(RouteAPIResponse{
			Success: false,
			Error:   "Invalid request: " + err.Error(),
		})
		return
	}

	if len(req.Jobs) == 0 {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(RouteAPIResponse{
			Success: true,
			Jobs:    req.Jobs,
		})
		return
	}

	ordered := assigner.OrderRoute(req.Jobs, req.Home)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(RouteAPIResponse{
		Success:       true,
		Jobs:          ordered,
		TotalDistance: assigner.RouteDistance(ordered, req.Home),
	})
}
