// Package assigner 提供技师-工单智能派工引擎
package assigner

import "strings"

// categorySkillRule 服务类型关键字到所需技能的映射规则
type categorySkillRule struct {
	Keyword string   // 服务类型中包含的关键字（小写）
	Skills  []string // 对应的技能要求，满足其一即可
}

// 服务类型技能表，按顺序取第一条命中的规则；
// 未命中的服务类型视为无特定技能要求
var categorySkillRules = []categorySkillRule{
	{"hvac", []string{"HVAC", "Heating", "Cooling", "AC"}},
	{"heating", []string{"Heating", "HVAC"}},
	{"cooling", []string{"Cooling", "AC", "HVAC"}},
	{"air condition", []string{"AC", "Cooling", "HVAC"}},
	{"furnace", []string{"Heating", "HVAC"}},
	{"plumb", []string{"Plumbing"}},
	{"drain", []string{"Plumbing", "Drain Cleaning"}},
	{"water heater", []string{"Plumbing", "Water Heater"}},
	{"electric", []string{"Electrical"}},
	{"wiring", []string{"Electrical"}},
	{"roof", []string{"Roofing"}},
	{"landscap", []string{"Landscaping"}},
	{"lawn", []string{"Landscaping", "Lawn Care"}},
	{"irrigation", []string{"Landscaping", "Irrigation"}},
	{"pest", []string{"Pest Control"}},
	{"appliance", []string{"Appliance Repair"}},
	{"garage door", []string{"Garage Door"}},
	{"paint", []string{"Painting"}},
	{"clean", []string{"Cleaning"}},
}

// RequiredSkillsFor 根据工单服务类型推导所需技能
//
// 返回空切片表示该类型没有特定技能要求。
func RequiredSkillsFor(category string) []string {
	lower := strings.ToLower(category)
	for _, rule := range categorySkillRules {
		if strings.Contains(lower, rule.Keyword) {
			return rule.Skills
		}
	}
	return nil
}

// SkillRule 对外暴露的服务类型技能规则
type SkillRule struct {
	Keyword string   `json:"keyword"`
	Skills  []string `json:"skills"`
}

// SkillRules 返回服务类型技能表的只读副本，供前端配置页展示
func SkillRules() []SkillRule {
	rules := make([]SkillRule, len(categorySkillRules))
	for i, r := range categorySkillRules {
		skills := make([]string, len(r.Skills))
		copy(skills, r.Skills)
		rules[i] = SkillRule{Keyword: r.Keyword, Skills: skills}
	}
	return rules
}

// skillMatches 检查技师技能与所需技能是否匹配（大小写无关的子串匹配）
//
// "HVAC Certified" 能匹配要求 "HVAC"，"AC" 也能匹配技能 "AC Repair"。
func skillMatches(techSkill, required string) bool {
	ts := strings.ToLower(strings.TrimSpace(techSkill))
	rs := strings.ToLower(strings.TrimSpace(required))
	if ts == "" || rs == "" {
		return false
	}
	return strings.Contains(ts, rs) || strings.Contains(rs, ts)
}

// MatchSkill 在技师技能集中查找与任一所需技能匹配的项
//
// 返回命中的技师技能；未命中时返回空串和 false。
func MatchSkill(techSkills, required []string) (string, bool) {
	for _, req := range required {
		for _, skill := range techSkills {
			if skillMatches(skill, req) {
				return skill, true
			}
		}
	}
	return "", false
}
