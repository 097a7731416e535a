// Package model 定义派工引擎的核心数据模型
package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// AssignSource 分配来源
type AssignSource string

const (
	AssignManual AssignSource = "manual" // 调度员手动分配
	AssignAuto   AssignSource = "ai"     // 引擎自动分配
)

// Severity 冲突严重程度
type Severity string

const (
	SeverityError   Severity = "error"   // 阻断性，需人工确认后才能覆盖
	SeverityWarning Severity = "warning" // 提示性，不阻断分配
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// JSONMap 用于存储 JSONB 数据
type JSONMap map[string]interface{}

// Location 地理坐标
type Location struct {
	Address   string  `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// DistanceApprox 返回两点间的平面欧氏距离（经纬度直接作平面坐标）
//
// 仅用于同城内的相对远近比较（路线排序的贪心选点），不是真实
// 道路距离，也不做球面修正。
func (l Location) DistanceApprox(other Location) float64 {
	dLat := l.Latitude - other.Latitude
	dLon := l.Longitude - other.Longitude
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

// 邮编前缀距离估算的阶梯（英里）
const (
	zipSamePrefix3Miles = 5  // 前3位相同：同片区
	zipSamePrefix2Miles = 15 // 前2位相同：同城
	zipDifferentMiles   = 25 // 其他：跨区
)

// EstimateZipMiles 按邮编前缀估算两地距离（英里）
//
// 粗粒度代理：前3位相同按5英里、前2位相同按15英里、否则25英里。
// 评分阈值是按这套阶梯调校的，替换为真实地理距离前需重新校准。
func EstimateZipMiles(zip1, zip2 string) float64 {
	if len(zip1) >= 3 && len(zip2) >= 3 && zip1[:3] == zip2[:3] {
		return zipSamePrefix3Miles
	}
	if len(zip1) >= 2 && len(zip2) >= 2 && zip1[:2] == zip2[:2] {
		return zipSamePrefix2Miles
	}
	return zipDifferentMiles
}
