// Package assigner 提供技师-工单智能派工引擎
package assigner

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paigong/paigong/pkg/model"
)

// 各评分项权重
const (
	weightSkillMatch   = 50  // 技能匹配
	weightCertMatch    = 30  // 资质匹配
	weightDayAvailable = 40  // 当天上班
	penaltyDayOff      = 100 // 当天休息（单独即可出局）
	weightCapacity     = 30  // 工单余量（按比例）
	penaltyAtMaxJobs   = 50  // 工单已满
	penaltyOverHours   = 30  // 超出工时上限
	weightBalance      = 20  // 负载均衡（按比例）
	weightProximity    = 25  // 在服务半径内
	bonusNearOtherJobs = 15  // 与当日其他工单同片区
	bonusPreferredZone = 15  // 偏好服务区

	nearbyMiles = 10 // 「靠近」的判定距离（英里）

	// RecommendThreshold 推荐阈值：达到该分且无警告才标记为推荐
	RecommendThreshold = 80
)

// Suggestion 单个技师的派工建议
type Suggestion struct {
	TechID        uuid.UUID `json:"tech_id"`
	TechName      string    `json:"tech_name"`
	Score         int       `json:"score"`
	Reasons       []string  `json:"reasons"`
	Warnings      []string  `json:"warnings"`
	IsRecommended bool      `json:"is_recommended"`
	HasWarnings   bool      `json:"has_warnings"`
}

// ScoreTechnician 对一个（技师, 工单, 日期）组合打分
//
// 从0分起算，各评分项按固定顺序独立加减分；reasons 与 warnings
// 的顺序即评分项的求值顺序，属于对外契约的一部分。分数不截断，
// 负分是「明显不合适」的有效信号而非错误。
//
// dayJobs 是当天所有已分配工单（含本批次中先做出的分配），
// 只有其中分配给该技师的部分参与容量与片区计算。
func ScoreTechnician(tech *model.Technician, job *model.Job, dayJobs []*model.Job, date time.Time) Suggestion {
	s := Suggestion{
		TechID:   tech.ID,
		TechName: tech.Name,
		Reasons:  []string{},
		Warnings: []string{},
	}

	techJobs := model.JobsFor(dayJobs, tech.ID)

	// 1. 技能匹配
	required := RequiredSkillsFor(job.Category)
	techSkills := tech.AllSkills()
	switch {
	case len(required) == 0:
		s.Score += weightSkillMatch
		s.Reasons = append(s.Reasons, "无特定技能要求")
	case len(techSkills) == 0:
		// 未申报技能的技师视为全能
		s.Score += weightSkillMatch
		s.Reasons = append(s.Reasons, "全能技师，可接任意工单")
	default:
		if matched, ok := MatchSkill(techSkills, required); ok {
			s.Score += weightSkillMatch
			s.Reasons = append(s.Reasons, "技能匹配: "+matched)
		} else {
			s.Warnings = append(s.Warnings, "缺少技能: "+required[0])
		}
	}

	// 2. 资质匹配
	if len(job.RequiredCerts) == 0 {
		s.Score += weightCertMatch
	} else if cert, ok := matchCert(tech, job.RequiredCerts); ok {
		s.Score += weightCertMatch
		s.Reasons = append(s.Reasons, "资质符合: "+cert)
	} else {
		s.Warnings = append(s.Warnings, "缺少资质: "+strings.Join(job.RequiredCerts, "/"))
	}

	// 3. 当天是否上班
	if wh := tech.WorkingHoursOn(date); wh != nil {
		s.Score += weightDayAvailable
		s.Reasons = append(s.Reasons, fmt.Sprintf("当天上班 %s-%s", wh.Start, wh.End))
	} else {
		s.Score -= penaltyDayOff
		s.Warnings = append(s.Warnings, "当天休息")
	}

	// 4. 工单数容量
	current := len(techJobs)
	maxJobs := tech.EffectiveMaxJobs()
	if current < maxJobs {
		s.Score += ratio(weightCapacity, maxJobs-current, maxJobs)
		s.Reasons = append(s.Reasons, fmt.Sprintf("今日还可接 %d 单", maxJobs-current))
	} else {
		s.Score -= penaltyAtMaxJobs
		s.Warnings = append(s.Warnings, "今日工单数已满")
	}

	// 5. 工时容量（不加分，只提示或扣分）
	hoursBooked := model.HoursBooked(techJobs)
	jobHours := job.DurationHours()
	maxHours := tech.EffectiveMaxHours()
	if hoursBooked+jobHours <= maxHours {
		s.Reasons = append(s.Reasons, fmt.Sprintf("今日剩余工时 %.1f 小时", maxHours-hoursBooked-jobHours))
	} else {
		s.Score -= penaltyOverHours
		s.Warnings = append(s.Warnings, "将超出每日工时上限")
	}

	// 6. 负载均衡：当前负载越低得分越高，引导工单分散
	s.Score += ratio(weightBalance, maxJobs-current, maxJobs)

	// 7. 远近（仅当工单与技师驻地都有邮编时评估）
	if job.CustomerZip != "" && tech.HomeZip != "" {
		dist := model.EstimateZipMiles(job.CustomerZip, tech.HomeZip)
		radius := tech.EffectiveTravelRadius()
		if dist <= radius {
			s.Score += weightProximity
			if dist <= nearbyMiles {
				s.Reasons = append(s.Reasons, "靠近驻地")
			}
		} else {
			s.Score -= int(math.Round(2 * (dist - radius)))
			s.Warnings = append(s.Warnings, fmt.Sprintf("距离约 %.0f 英里，超出服务半径", dist))
		}

		// 与当日其他工单同片区的顺路奖励
		for _, other := range techJobs {
			if other.CustomerZip == "" {
				continue
			}
			if model.EstimateZipMiles(job.CustomerZip, other.CustomerZip) <= nearbyMiles {
				s.Score += bonusNearOtherJobs
				s.Reasons = append(s.Reasons, "与今日其他工单同片区")
				break
			}
		}
	}

	// 8. 偏好服务区
	if job.Zone != "" && zoneMatches(tech.PreferredZones, job.Zone) {
		s.Score += bonusPreferredZone
		s.Reasons = append(s.Reasons, "偏好服务区: "+job.Zone)
	}

	s.HasWarnings = len(s.Warnings) > 0
	s.IsRecommended = s.Score >= RecommendThreshold && len(s.Warnings) == 0
	return s
}

// matchCert 在技师资质中查找与任一所需资质匹配的项
func matchCert(tech *model.Technician, required []string) (string, bool) {
	for _, cert := range required {
		if tech.HasCertification(cert) {
			return cert, true
		}
	}
	return "", false
}

// zoneMatches 检查服务区是否在偏好列表中（大小写无关）
func zoneMatches(preferred []string, zone string) bool {
	for _, z := range preferred {
		if strings.EqualFold(z, zone) {
			return true
		}
	}
	return false
}

// ratio 按比例折算权重分并四舍五入
func ratio(weight, part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(weight) * float64(part) / float64(whole)))
}
