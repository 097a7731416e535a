// Package handler 提供API处理器
package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/paigong/paigong/internal/metrics"
	apperrors "github.com/paigong/paigong/pkg/errors"
	"github.com/paigong/paigong/pkg/model"
	"github.com/paigong/paigong/pkg/stats"
	"github.com/paigong/paigong/pkg/timeutil"
)

// WorkloadAPIRequest 负载统计API请求
type WorkloadAPIRequest struct {
	Technicians []*model.Technician `json:"technicians"`
	Jobs        []*model.Job        `json:"jobs,omitempty"`
	Date        string              `json:"date"` // YYYY-MM-DD
	OrgID       string              `json:"org_id,omitempty"`
}

// WorkloadAPIResponse 负载统计API响应
type WorkloadAPIResponse struct {
	Success bool                  `json:"success"`
	Data    *stats.WorkloadReport `json:"data,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// WorkloadHandler 当日技师负载统计
func WorkloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req WorkloadAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Technicians) == 0 {
		respondError(w, apperrors.InvalidInput("technicians", "至少需要一位技师"))
		return
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		respondError(w, apperrors.Wrap(err, apperrors.CodeInvalidInput, "无效的日期格式"))
		return
	}

	log.Printf("接收负载统计请求: technicians=%d, jobs=%d, date=%s", len(req.Technicians), len(req.Jobs), req.Date)

	report := stats.AnalyzeWorkload(req.Technicians, req.Jobs, date)

	if req.OrgID != "" {
		metrics.SetUnassignedJobs(req.OrgID, report.UnassignedJobs)
		metrics.SetAvgUtilization(req.OrgID, report.AvgUtilization)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(WorkloadAPIResponse{
		Success: true,
		Data:    report,
	})
}
