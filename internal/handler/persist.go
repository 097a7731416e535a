// Package handler 提供API处理器
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/internal/repository"
	"github.com/paigong/paigong/pkg/assigner"
	apperrors "github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/timeutil"
	"github.com/paigong/paigong/pkg/validator"
)

// PersistHandler 派工落库处理器
//
// 与无状态的建议/校验端点不同，这组端点直接读写数据库：
// 派单结果回写工单表，改派与撤销同样落库。
type PersistHandler struct {
	jobs   *repository.JobRepository
	techs  *repository.TechnicianRepository
	engine *assigner.Engine
}

// NewPersistHandler 创建派工落库处理器
func NewPersistHandler(db repository.DB) *PersistHandler {
	return &PersistHandler{
		jobs:   repository.NewJobRepository(db),
		techs:  repository.NewTechnicianRepository(db),
		engine: assigner.NewEngine(),
	}
}

// CommitRequest 手动派单落库请求
type CommitRequest struct {
	JobID    string `json:"job_id"`
	TechID   string `json:"tech_id"`
	TechName string `json:"tech_name,omitempty"`
	Source   string `json:"source,omitempty"` // manual / ai，默认 manual
	Force    bool   `json:"force,omitempty"`  // 跳过冲突检查强制落库
}

// Commit 手动派单并回写数据库
//
// 落库前重新跑一遍冲突检查，存在硬冲突且未指定 force 时拒绝。
func (h *PersistHandler) Commit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CommitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		respondError(w, apperrors.InvalidInput("job_id", "不是合法的UUID"))
		return
	}
	techID, err := uuid.Parse(req.TechID)
	if err != nil {
		respondError(w, apperrors.InvalidInput("tech_id", "不是合法的UUID"))
		return
	}

	source := model.AssignSource(req.Source)
	if source == "" {
		source = model.AssignManual
	}

	ctx := r.Context()

	job, err := h.jobs.GetByID(ctx, jobID)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeNotFound, "工单不存在"))
		return
	}
	tech, err := h.techs.GetByID(ctx, techID)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeNotFound, "技师不存在"))
		return
	}

	techName := req.TechName
	if techName == "" {
		techName = tech.Name
	}

	// 落库前复核冲突
	var report *validator.Report
	if job.ScheduledDate != "" {
		date, err := timeutil.ParseDate(job.ScheduledDate)
		if err != nil {
			respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
			return
		}
		dayJobs, err := h.jobs.ListByDate(ctx, job.OrgID, job.ScheduledDate)
		if err != nil {
			respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询当日工单失败"))
			return
		}
		report = validator.CheckAssignment(tech, job, dayJobs, date)
		metrics.RecordConflictCheck(report.HasErrors || report.HasWarnings)
		if report.HasErrors && !req.Force {
			metrics.RecordAssignment(string(source), false)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success":   false,
				"error":     "存在硬冲突，未落库",
				"conflicts": report,
			})
			return
		}
	}

	if err := h.jobs.AssignTech(ctx, jobID, techID, techName, source); err != nil {
		metrics.RecordAssignment(string(source), false)
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "派工回写失败"))
		return
	}
	metrics.RecordAssignment(string(source), true)

	log.Printf("派单落库: job=%s, tech=%s(%s), source=%s", jobID, techName, techID, source)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"job_id":    jobID,
		"tech_id":   techID,
		"conflicts": report,
	})
}

// UnassignRequest 撤销派单请求
type UnassignRequest struct {
	JobID string `json:"job_id"`
}

// Unassign 撤销派单，工单回到待派队列
func (h *PersistHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UnassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		respondError(w, apperrors.InvalidInput("job_id", "不是合法的UUID"))
		return
	}

	if err := h.jobs.ClearAssignment(r.Context(), jobID); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "撤销派单失败"))
		return
	}

	log.Printf("撤销派单: job=%s", jobID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"job_id":  jobID,
	})
}

// DispatchDayRequest 整日自动派工请求
type DispatchDayRequest struct {
	OrgID string `json:"org_id"`
	Date  string `json:"date,omitempty"` // YYYY-MM-DD，默认今天
}

// DispatchDay 从数据库取某日待派工单批量自动派工并回写
func (h *PersistHandler) DispatchDay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req DispatchDayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	orgID, err := uuid.Parse(req.OrgID)
	if err != nil {
		respondError(w, apperrors.InvalidInput("org_id", "不是合法的UUID"))
		return
	}

	date := time.Now()
	if req.Date != "" {
		date, err = timeutil.ParseDate(req.Date)
		if err != nil {
			respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
			return
		}
	}
	dateStr := timeutil.FormatDate(date)

	ctx := r.Context()
	start := time.Now()

	pending, err := h.jobs.ListUnassigned(ctx, orgID, dateStr)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询待派工单失败"))
		return
	}
	if len(pending) == 0 {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"message": "当日没有待派工单",
		})
		return
	}

	techs, err := h.techs.ListActive(ctx, orgID)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询技师失败"))
		return
	}

	dayJobs, err := h.jobs.ListByDate(ctx, orgID, dateStr)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询当日工单失败"))
		return
	}
	existing := make([]*model.Job, 0, len(dayJobs))
	for _, j := range dayJobs {
		if j.IsAssigned() {
			existing = append(existing, j)
		}
	}

	log.Printf("接收整日派工请求: org=%s, date=%s, pending=%d, techs=%d", orgID, dateStr, len(pending), len(techs))

	result := h.engine.AutoAssign(pending, techs, existing, date)

	persisted := 0
	for _, rec := range result.Successful {
		if err := h.jobs.AssignTech(ctx, rec.JobID, *rec.TechID, rec.TechName, model.AssignAuto); err != nil {
			log.Printf("派工回写失败: job=%s, err=%v", rec.JobID, err)
			metrics.RecordAssignment(string(model.AssignAuto), false)
			continue
		}
		metrics.RecordAssignment(string(model.AssignAuto), true)
		persisted++
	}
	metrics.RecordAutoAssign(persisted > 0 || result.Summary.Total == result.Summary.Unassigned, time.Since(start))
	metrics.SetUnassignedJobs(orgID.String(), result.Summary.Unassigned)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"persisted": persisted,
		"result":    result,
	})
}
