// Package assigner 提供技师-工单智能派工引擎
package assigner

import (
	"github.com/paigong/paigong/pkg/model"
)

// OrderRoute 对技师当日工单做最近邻排序
//
// 从驻地出发（无驻地坐标时从第一单出发），每次选择离当前位置
// 平面距离最近的工单。不是真实道路距离；缺坐标的工单每轮都落在
// 下标0，整体退化为保持输入顺序，这是已知的有损兜底，不在引擎
// 内接真实路线服务。
func OrderRoute(jobs []*model.Job, home *model.Location) []*model.Job {
	if len(jobs) <= 1 {
		return jobs
	}

	result := make([]*model.Job, 0, len(jobs))
	remaining := make([]*model.Job, len(jobs))
	copy(remaining, jobs)

	var current *model.Location
	if home != nil {
		loc := *home
		current = &loc
	}

	for len(remaining) > 0 {
		minIdx := 0
		if current != nil {
			minDist := -1.0
			for i, job := range remaining {
				if job.Location == nil {
					continue
				}
				dist := current.DistanceApprox(*job.Location)
				if minDist < 0 || dist < minDist {
					minDist = dist
					minIdx = i
				}
			}
		}

		next := remaining[minIdx]
		result = append(result, next)
		if next.Location != nil {
			loc := *next.Location
			current = &loc
		}
		remaining = append(remaining[:minIdx], remaining[minIdx+1:]...)
	}

	return result
}

// RouteDistance 估算一条路线的总平面距离（跳过缺坐标的停靠点）
func RouteDistance(jobs []*model.Job, home *model.Location) float64 {
	total := 0.0
	current := home
	for _, job := range jobs {
		if job.Location == nil {
			continue
		}
		if current != nil {
			total += current.DistanceApprox(*job.Location)
		}
		current = job.Location
	}
	return total
}
