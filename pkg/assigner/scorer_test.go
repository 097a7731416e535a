package assigner

import (
	"reflect"
	"testing"
	"time"

	"github.com/paigong/paigong/pkg/model"
)

// 2026-01-06 周二 / 2026-01-10 周六
var (
	tuesday  = time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
)

func newTech(name string, skills ...string) *model.Technician {
	return &model.Technician{
		BaseModel:    model.NewBaseModel(),
		Name:         name,
		Status:       "active",
		Skills:       skills,
		WorkingHours: model.WeekdaySchedule("08:00", "17:00"),
	}
}

func newJob(category, duration string) *model.Job {
	return &model.Job{
		BaseModel:         model.NewBaseModel(),
		JobNo:             "JOB001",
		Category:          category,
		EstimatedDuration: model.FlexDuration(duration),
		Status:            "pending",
	}
}

func assignTo(job *model.Job, tech *model.Technician) *model.Job {
	job.AssignedTechID = &tech.ID
	job.AssignedTechName = tech.Name
	return job
}

func TestScoreTechnician_Baseline(t *testing.T) {
	tech := newTech("老李", "HVAC")
	job := newJob("HVAC Repair", "90 minutes")

	s := ScoreTechnician(tech, job, nil, tuesday)

	// 技能50 + 资质30 + 当天上班40 + 容量30 + 均衡20
	if s.Score != 170 {
		t.Errorf("Score = %d, expected 170", s.Score)
	}
	if !s.IsRecommended {
		t.Error("high score with no warnings should be recommended")
	}
	if s.HasWarnings || len(s.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", s.Warnings)
	}

	// reasons 顺序是对外契约：按评分项求值顺序排列
	expected := []string{
		"技能匹配: HVAC",
		"当天上班 08:00-17:00",
		"今日还可接 4 单",
		"今日剩余工时 6.5 小时",
	}
	if !reflect.DeepEqual(s.Reasons, expected) {
		t.Errorf("Reasons = %v, expected %v", s.Reasons, expected)
	}
}

func TestScoreTechnician_DayOffPenaltyDominates(t *testing.T) {
	onDuty := newTech("上班的", "HVAC")
	offDuty := newTech("休息的", "HVAC")
	job := newJob("HVAC Repair", "90 minutes")

	sOn := ScoreTechnician(onDuty, job, nil, tuesday)
	sOff := ScoreTechnician(offDuty, job, nil, saturday)

	// 休息惩罚必须压倒其他加分项：差距不少于100分
	if sOff.Score > sOn.Score-100 {
		t.Errorf("day-off score %d should be ≤ %d-100", sOff.Score, sOn.Score)
	}
	if !containsString(sOff.Warnings, "当天休息") {
		t.Errorf("expected day-off warning, got %v", sOff.Warnings)
	}
	if sOff.IsRecommended {
		t.Error("day-off tech must not be recommended")
	}
}

func TestScoreTechnician_Generalist(t *testing.T) {
	// 未申报技能视为全能，任何技能要求都通过
	tech := newTech("多面手")
	job := newJob("HVAC Repair", "1 hour")

	s := ScoreTechnician(tech, job, nil, tuesday)
	if s.Score != 170 {
		t.Errorf("Score = %d, expected 170", s.Score)
	}
	if !containsString(s.Reasons, "全能技师，可接任意工单") {
		t.Errorf("expected generalist reason, got %v", s.Reasons)
	}
}

func TestScoreTechnician_MissingSkill(t *testing.T) {
	tech := newTech("管道工", "Plumbing")
	job := newJob("HVAC Repair", "1 hour")

	s := ScoreTechnician(tech, job, nil, tuesday)

	// 无技能分：资质30 + 当天40 + 容量30 + 均衡20
	if s.Score != 120 {
		t.Errorf("Score = %d, expected 120", s.Score)
	}
	if !containsString(s.Warnings, "缺少技能: HVAC") {
		t.Errorf("expected missing-skill warning naming first required skill, got %v", s.Warnings)
	}
	if s.IsRecommended {
		t.Error("tech with warnings must not be recommended")
	}
}

func TestScoreTechnician_Certifications(t *testing.T) {
	job := newJob("HVAC Repair", "1 hour")
	job.RequiredCerts = []string{"EPA 608"}

	certified := newTech("持证的", "HVAC")
	certified.Certifications = []string{"EPA 608"}
	s := ScoreTechnician(certified, job, nil, tuesday)
	if s.Score != 170 {
		t.Errorf("certified score = %d, expected 170", s.Score)
	}
	if !containsString(s.Reasons, "资质符合: EPA 608") {
		t.Errorf("expected cert reason, got %v", s.Reasons)
	}

	uncertified := newTech("无证的", "HVAC")
	s = ScoreTechnician(uncertified, job, nil, tuesday)
	if s.Score != 140 {
		t.Errorf("uncertified score = %d, expected 140", s.Score)
	}
	if !containsString(s.Warnings, "缺少资质: EPA 608") {
		t.Errorf("expected cert warning, got %v", s.Warnings)
	}
}

func TestScoreTechnician_AtMaxJobs(t *testing.T) {
	tech := newTech("满负荷", "HVAC")
	var dayJobs []*model.Job
	for i := 0; i < 4; i++ {
		dayJobs = append(dayJobs, assignTo(newJob("HVAC Repair", "1 hour"), tech))
	}
	job := newJob("HVAC Repair", "90 minutes")

	s := ScoreTechnician(tech, job, dayJobs, tuesday)

	// 技能50 + 资质30 + 当天40 − 工单已满50 + 均衡0
	if s.Score != 70 {
		t.Errorf("Score = %d, expected 70", s.Score)
	}
	if !containsString(s.Warnings, "今日工单数已满") {
		t.Errorf("expected max-jobs warning, got %v", s.Warnings)
	}
}

func TestScoreTechnician_HoursExceeded(t *testing.T) {
	tech := newTech("排满的", "HVAC")
	dayJobs := []*model.Job{
		assignTo(newJob("HVAC Repair", "3 hours"), tech),
		assignTo(newJob("HVAC Repair", "3 hours"), tech),
	}
	job := newJob("HVAC Repair", "3 hours")

	s := ScoreTechnician(tech, job, dayJobs, tuesday)

	// 技能50 + 资质30 + 当天40 + 容量15 − 超时30 + 均衡10
	if s.Score != 115 {
		t.Errorf("Score = %d, expected 115", s.Score)
	}
	if !containsString(s.Warnings, "将超出每日工时上限") {
		t.Errorf("expected over-hours warning, got %v", s.Warnings)
	}
}

func TestScoreTechnician_Proximity(t *testing.T) {
	job := newJob("HVAC Repair", "90 minutes")
	job.CustomerZip = "75201"

	// 同片区：半径内加分并标注靠近驻地
	near := newTech("近的", "HVAC")
	near.HomeZip = "75204"
	s := ScoreTechnician(near, job, nil, tuesday)
	if s.Score != 195 {
		t.Errorf("near score = %d, expected 195", s.Score)
	}
	if !containsString(s.Reasons, "靠近驻地") {
		t.Errorf("expected close-to-home reason, got %v", s.Reasons)
	}

	// 超出服务半径：按超出里程线性扣分
	far := newTech("远的", "HVAC")
	far.HomeZip = "10001"
	far.MaxTravelMiles = 20
	s = ScoreTechnician(far, job, nil, tuesday)
	// 170 − 2×(25−20)
	if s.Score != 160 {
		t.Errorf("far score = %d, expected 160", s.Score)
	}
	if !containsString(s.Warnings, "距离约 25 英里，超出服务半径") {
		t.Errorf("expected out-of-radius warning, got %v", s.Warnings)
	}

	// 双方缺任一邮编时完全跳过该项
	noZip := newTech("没邮编", "HVAC")
	s = ScoreTechnician(noZip, job, nil, tuesday)
	if s.Score != 170 {
		t.Errorf("no-zip score = %d, expected 170", s.Score)
	}
}

func TestScoreTechnician_NearOtherJobs(t *testing.T) {
	tech := newTech("顺路的", "HVAC")
	tech.HomeZip = "75204"

	other := assignTo(newJob("HVAC Repair", "1 hour"), tech)
	other.CustomerZip = "75299"

	job := newJob("HVAC Repair", "90 minutes")
	job.CustomerZip = "75201"

	s := ScoreTechnician(tech, job, []*model.Job{other}, tuesday)

	// 技能50 + 资质30 + 当天40 + 容量23 + 均衡15 + 半径内25 + 顺路15
	if s.Score != 198 {
		t.Errorf("Score = %d, expected 198", s.Score)
	}
	if !containsString(s.Reasons, "与今日其他工单同片区") {
		t.Errorf("expected near-other-jobs reason, got %v", s.Reasons)
	}
}

func TestScoreTechnician_PreferredZone(t *testing.T) {
	tech := newTech("片区熟", "HVAC")
	tech.PreferredZones = []string{"North Dallas"}

	job := newJob("HVAC Repair", "1 hour")
	job.Zone = "north dallas" // 大小写无关

	s := ScoreTechnician(tech, job, nil, tuesday)
	if s.Score != 185 {
		t.Errorf("Score = %d, expected 185", s.Score)
	}
	if !containsString(s.Reasons, "偏好服务区: north dallas") {
		t.Errorf("expected zone reason, got %v", s.Reasons)
	}
}

func TestRequiredSkillsFor(t *testing.T) {
	tests := []struct {
		category string
		first    string // 第一项所需技能；空串表示无要求
	}{
		{"HVAC Maintenance", "HVAC"},
		{"Emergency hvac repair", "HVAC"},
		{"Plumbing - Leak", "Plumbing"},
		{"Electrical Panel", "Electrical"},
		{"Roof Inspection", "Roofing"},
		{"General Maintenance", ""},
		{"", ""},
	}

	for _, tt := range tests {
		skills := RequiredSkillsFor(tt.category)
		if tt.first == "" {
			if len(skills) != 0 {
				t.Errorf("RequiredSkillsFor(%q) = %v, expected none", tt.category, skills)
			}
			continue
		}
		if len(skills) == 0 || skills[0] != tt.first {
			t.Errorf("RequiredSkillsFor(%q) = %v, expected first %q", tt.category, skills, tt.first)
		}
	}
}

func TestMatchSkill(t *testing.T) {
	// 大小写无关的双向子串匹配
	if _, ok := MatchSkill([]string{"HVAC Certified"}, []string{"HVAC"}); !ok {
		t.Error("HVAC Certified should match requirement HVAC")
	}
	if _, ok := MatchSkill([]string{"ac"}, []string{"AC"}); !ok {
		t.Error("match should be case-insensitive")
	}
	if _, ok := MatchSkill([]string{"Plumbing"}, []string{"HVAC", "Heating"}); ok {
		t.Error("Plumbing should not match HVAC requirements")
	}
	if _, ok := MatchSkill(nil, []string{"HVAC"}); ok {
		t.Error("empty skill set should not match")
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
