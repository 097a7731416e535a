// Package model 定义派工引擎的核心数据模型
package model

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/timeutil"
)

// FlexDuration 弹性时长
//
// 外部文档库里的预估时长既可能是数字（分钟）也可能是
// "2 hours" 这类文本，反序列化时统一收进字符串，取值时
// 经 timeutil 归一化为分钟。
type FlexDuration string

// UnmarshalJSON 同时接受 JSON 数字和字符串
func (d *FlexDuration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = FlexDuration(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*d = FlexDuration(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Minutes 返回归一化后的分钟数（无法解析时按默认60分钟）
func (d FlexDuration) Minutes() int {
	return timeutil.ParseDuration(string(d))
}

// Job 工单（一次上门作业）
type Job struct {
	BaseModel
	OrgID    uuid.UUID `json:"org_id" db:"org_id"`
	JobNo    string    `json:"job_no" db:"job_no"`
	Title    string    `json:"title,omitempty" db:"title"`
	Category string    `json:"category" db:"category"` // 服务类型，用于推导技能要求

	EstimatedDuration FlexDuration `json:"estimated_duration,omitempty" db:"estimated_duration"`
	ScheduledDate     string       `json:"scheduled_date,omitempty" db:"scheduled_date"` // YYYY-MM-DD
	ScheduledTime     string       `json:"scheduled_time,omitempty" db:"scheduled_time"` // HH:MM，分配后才有意义

	CustomerZip   string    `json:"customer_zip,omitempty" db:"customer_zip"`
	Location      *Location `json:"location,omitempty" db:"location"`
	Zone          string    `json:"zone,omitempty" db:"zone"`
	RequiredCerts []string  `json:"required_certs,omitempty" db:"required_certs"`
	Priority      int       `json:"priority" db:"priority"`
	Notes         string    `json:"notes,omitempty" db:"notes"`

	Status string `json:"status" db:"status"` // pending/assigned/in_progress/completed/cancelled

	// 分配回写字段，由外部持久层维护（引擎只读）
	AssignedTechID   *uuid.UUID   `json:"assigned_tech_id,omitempty" db:"assigned_tech_id"`
	AssignedTechName string       `json:"assigned_tech_name,omitempty" db:"assigned_tech_name"`
	AssignedAt       *time.Time   `json:"assigned_at,omitempty" db:"assigned_at"`
	AssignedBy       AssignSource `json:"assigned_by,omitempty" db:"assigned_by"`
}

// DurationMinutes 返回归一化后的预估时长（分钟）
func (j *Job) DurationMinutes() int {
	return j.EstimatedDuration.Minutes()
}

// DurationHours 返回归一化后的预估时长（小时）
func (j *Job) DurationHours() float64 {
	return float64(j.DurationMinutes()) / 60
}

// IsAssigned 检查工单是否已分配技师
func (j *Job) IsAssigned() bool {
	return j.AssignedTechID != nil
}

// AssignedTo 检查工单是否分配给了指定技师
func (j *Job) AssignedTo(techID uuid.UUID) bool {
	return j.AssignedTechID != nil && *j.AssignedTechID == techID
}

// NeedsAssign 检查工单是否待分配
func (j *Job) NeedsAssign() bool {
	return j.AssignedTechID == nil && (j.Status == "" || j.Status == "pending")
}
