// Package model 定义派工引擎的核心数据模型
package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// 技师属性缺省值（字段为零值时生效）
const (
	DefaultMaxJobsPerDay  = 4    // 每日最大工单数
	DefaultMaxHoursPerDay = 8.0  // 每日最大工时（小时）
	DefaultMaxTravelMiles = 30.0 // 最大服务半径（英里）
	DefaultBufferMinutes  = 30   // 相邻工单之间的最小间隔（分钟）
)

// DayHours 某个工作日的上下班时间
type DayHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"` // HH:MM
	End     string `json:"end"`   // HH:MM
}

// WeekSchedule 一周的工作时间，按 time.Weekday 下标索引（周日=0）
//
// 外部文档库用星期英文名作键存储，序列化时互转；引擎内部
// 只通过下标访问，不做星期名字符串比对。
type WeekSchedule [7]*DayHours

// 星期下标与文档库字段名的对应关系
var weekdayKeys = [7]string{
	"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday",
}

// On 返回某天的工作时间，未配置或停用返回 nil
func (ws WeekSchedule) On(day time.Weekday) *DayHours {
	dh := ws[day]
	if dh == nil || !dh.Enabled {
		return nil
	}
	return dh
}

// MarshalJSON 序列化为星期名作键的对象
func (ws WeekSchedule) MarshalJSON() ([]byte, error) {
	m := make(map[string]*DayHours, 7)
	for i, dh := range ws {
		if dh != nil {
			m[weekdayKeys[i]] = dh
		}
	}
	return json.Marshal(m)
}

// UnmarshalJSON 从星期名作键的对象反序列化，未知键忽略
func (ws *WeekSchedule) UnmarshalJSON(data []byte) error {
	var m map[string]*DayHours
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	for key, dh := range m {
		for i, name := range weekdayKeys {
			if strings.EqualFold(key, name) {
				ws[i] = dh
				break
			}
		}
	}
	return nil
}

// WeekdaySchedule 创建周一到周五上班的标准排班
func WeekdaySchedule(start, end string) WeekSchedule {
	var ws WeekSchedule
	for d := time.Monday; d <= time.Friday; d++ {
		ws[d] = &DayHours{Enabled: true, Start: start, End: end}
	}
	return ws
}

// Technician 技师（可被派工的上门人员）
type Technician struct {
	BaseModel
	OrgID  uuid.UUID `json:"org_id" db:"org_id"`
	Name   string    `json:"name" db:"name"`
	Code   string    `json:"code,omitempty" db:"code"`
	Phone  string    `json:"phone,omitempty" db:"phone"`
	Email  string    `json:"email,omitempty" db:"email"`
	Status string    `json:"status" db:"status"` // active/inactive/leave

	WorkingHours   WeekSchedule `json:"working_hours" db:"working_hours"`
	MaxJobsPerDay  int          `json:"max_jobs_per_day,omitempty" db:"max_jobs_per_day"`
	MaxHoursPerDay float64      `json:"max_hours_per_day,omitempty" db:"max_hours_per_day"`
	BufferMinutes  int          `json:"buffer_minutes,omitempty" db:"buffer_minutes"`

	Skills         []string `json:"skills,omitempty" db:"skills"`
	Specialties    []string `json:"specialties,omitempty" db:"specialties"`
	Certifications []string `json:"certifications,omitempty" db:"certifications"`

	HomeZip        string    `json:"home_zip,omitempty" db:"home_zip"`
	HomeLocation   *Location `json:"home_location,omitempty" db:"home_location"`
	MaxTravelMiles float64   `json:"max_travel_miles,omitempty" db:"max_travel_miles"`
	PreferredZones []string  `json:"preferred_zones,omitempty" db:"preferred_zones"`
}

// IsActive 检查技师是否在职
func (t *Technician) IsActive() bool {
	return t.Status == "" || t.Status == "active"
}

// WorkingHoursOn 返回技师在指定日期的工作时间，当天休息返回 nil
func (t *Technician) WorkingHoursOn(date time.Time) *DayHours {
	return t.WorkingHours.On(date.Weekday())
}

// WorksOn 检查技师在指定日期是否上班
func (t *Technician) WorksOn(date time.Time) bool {
	return t.WorkingHoursOn(date) != nil
}

// AllSkills 返回技能与专长的合集（评分时两者等价）
func (t *Technician) AllSkills() []string {
	if len(t.Specialties) == 0 {
		return t.Skills
	}
	all := make([]string, 0, len(t.Skills)+len(t.Specialties))
	all = append(all, t.Skills...)
	all = append(all, t.Specialties...)
	return all
}

// HasCertification 检查技师是否持有某项资质
func (t *Technician) HasCertification(cert string) bool {
	for _, c := range t.Certifications {
		if strings.EqualFold(c, cert) {
			return true
		}
	}
	return false
}

// EffectiveMaxJobs 返回每日最大工单数（零值取默认4）
func (t *Technician) EffectiveMaxJobs() int {
	if t.MaxJobsPerDay > 0 {
		return t.MaxJobsPerDay
	}
	return DefaultMaxJobsPerDay
}

// EffectiveMaxHours 返回每日最大工时（零值取默认8小时）
func (t *Technician) EffectiveMaxHours() float64 {
	if t.MaxHoursPerDay > 0 {
		return t.MaxHoursPerDay
	}
	return DefaultMaxHoursPerDay
}

// EffectiveTravelRadius 返回最大服务半径（零值取默认30英里）
func (t *Technician) EffectiveTravelRadius() float64 {
	if t.MaxTravelMiles > 0 {
		return t.MaxTravelMiles
	}
	return DefaultMaxTravelMiles
}

// EffectiveBuffer 返回工单间最小间隔（零值取默认30分钟）
func (t *Technician) EffectiveBuffer() int {
	if t.BufferMinutes > 0 {
		return t.BufferMinutes
	}
	return DefaultBufferMinutes
}

// JobsFor 从当日工单中筛出分配给指定技师的部分
func JobsFor(jobs []*Job, techID uuid.UUID) []*Job {
	var result []*Job
	for _, j := range jobs {
		if j.AssignedTo(techID) {
			result = append(result, j)
		}
	}
	return result
}

// HoursBooked 累计一组工单的预估总工时（小时）
func HoursBooked(jobs []*Job) float64 {
	total := 0.0
	for _, j := range jobs {
		total += j.DurationHours()
	}
	return total
}
