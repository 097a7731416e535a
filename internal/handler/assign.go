// Package handler 提供API处理器
package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/pkg/assigner"
	apperrors "github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/timeutil"
	"github.com/paigong/paigong/pkg/validator"
)

// SuggestAPIRequest 单工单推荐API请求
type SuggestAPIRequest struct {
	Job           *model.Job          `json:"job"`
	Technicians   []*model.Technician `json:"technicians"`
	DayJobs       []*model.Job        `json:"day_jobs,omitempty"`
	Date          string              `json:"date"` // YYYY-MM-DD
	ExcludeTechID *uuid.UUID          `json:"exclude_tech_id,omitempty"`
}

// SuggestAPIResponse 单工单推荐API响应
type SuggestAPIResponse struct {
	Success bool                    `json:"success"`
	Data    *assigner.SuggestResult `json:"data,omitempty"`
	Error   string                  `json:"error,omitempty"`
}

// AutoAssignAPIRequest 批量派工API请求
type AutoAssignAPIRequest struct {
	Jobs        []*model.Job        `json:"jobs"`
	Technicians []*model.Technician `json:"technicians"`
	DayJobs     []*model.Job        `json:"day_jobs,omitempty"`
	Date        string              `json:"date"` // YYYY-MM-DD
}

// AutoAssignAPIResponse 批量派工API响应
type AutoAssignAPIResponse struct {
	Success bool                       `json:"success"`
	Data    *assigner.AutoAssignResult `json:"data,omitempty"`
	Error   string                     `json:"error,omitempty"`
}

// ConflictAPIRequest 冲突检测API请求
type ConflictAPIRequest struct {
	Technician *model.Technician `json:"technician"`
	Job        *model.Job        `json:"job"`
	DayJobs    []*model.Job      `json:"day_jobs,omitempty"`
	Date       string            `json:"date"` // YYYY-MM-DD
}

// ConflictAPIResponse 冲突检测API响应
type ConflictAPIResponse struct {
	Success bool              `json:"success"`
	Data    *validator.Report `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

var assignEngine *assigner.Engine

func init() {
	assignEngine = assigner.NewEngine()
}

// SuggestHandler 对单个工单给出技师推荐
func SuggestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SuggestAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if req.Job == nil {
		respondError(w, apperrors.InvalidInput("job", "不能为空"))
		return
	}
	if len(req.Technicians) == 0 {
		respondError(w, apperrors.InvalidInput("technicians", "至少需要一位技师"))
		return
	}

	date, err := resolveDate(req.Date, req.Job)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
		return
	}

	log.Printf("接收推荐请求: job=%s, technicians=%d", req.Job.JobNo, len(req.Technicians))

	result := assignEngine.Suggest(&assigner.SuggestRequest{
		Job:           req.Job,
		Technicians:   req.Technicians,
		DayJobs:       req.DayJobs,
		Date:          date,
		ExcludeTechID: req.ExcludeTechID,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SuggestAPIResponse{
		Success: true,
		Data:    result,
	})
}

// AutoAssignHandler 批量自动派工
func AutoAssignHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req AutoAssignAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Jobs) == 0 {
		respondError(w, apperrors.InvalidInput("jobs", "至少需要一个工单"))
		return
	}
	if len(req.Technicians) == 0 {
		respondError(w, apperrors.InvalidInput("technicians", "至少需要一位技师"))
		return
	}

	date, err := resolveDate(req.Date, req.Jobs[0])
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
		return
	}

	log.Printf("接收批量派工请求: jobs=%d, technicians=%d", len(req.Jobs), len(req.Technicians))

	start := time.Now()
	result := assignEngine.AutoAssign(req.Jobs, req.Technicians, req.DayJobs, date)
	metrics.RecordAutoAssign(result.Summary.Unassigned == 0, time.Since(start))
	for _, rec := range result.Assignments {
		metrics.RecordAssignment(string(model.AssignAuto), !rec.Failed)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AutoAssignAPIResponse{
		Success: true,
		Data:    result,
	})
}

// ConflictCheckHandler 手动指派前的冲突检测
func ConflictCheckHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ConflictAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if req.Technician == nil {
		respondError(w, apperrors.InvalidInput("technician", "不能为空"))
		return
	}
	if req.Job == nil {
		respondError(w, apperrors.InvalidInput("job", "不能为空"))
		return
	}

	date, err := resolveDate(req.Date, req.Job)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
		return
	}

	log.Printf("接收冲突检测请求: job=%s, tech=%s", req.Job.JobNo, req.Technician.Name)

	report := validator.CheckAssignment(req.Technician, req.Job, req.DayJobs, date)
	metrics.RecordConflictCheck(report.HasConflicts)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ConflictAPIResponse{
		Success: true,
		Data:    report,
	})
}

// resolveDate 解析请求日期，留空时回退到工单排期日
func resolveDate(date string, job *model.Job) (time.Time, error) {
	if date == "" && job != nil {
		date = job.ScheduledDate
	}
	d, err := timeutil.ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	return d, nil
}

// respondError 发送错误响应
func respondError(w http.ResponseWriter, err *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"code":    err.Code,
		"error":   err.Message,
	})
}
