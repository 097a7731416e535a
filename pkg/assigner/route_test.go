package assigner

import (
	"testing"

	"github.com/paigong/paigong/pkg/model"
)

func jobAt(jobNo string, lat, lon float64) *model.Job {
	j := newJob("HVAC Repair", "1 hour")
	j.JobNo = jobNo
	j.Location = &model.Location{Latitude: lat, Longitude: lon}
	return j
}

func routeNos(jobs []*model.Job) []string {
	nos := make([]string, len(jobs))
	for i, j := range jobs {
		nos[i] = j.JobNo
	}
	return nos
}

func TestOrderRoute_FromHome(t *testing.T) {
	home := &model.Location{Latitude: 0, Longitude: 0}
	jobs := []*model.Job{
		jobAt("C", 3, 0),
		jobAt("A", 1, 0),
		jobAt("B", 2, 0),
	}

	got := routeNos(OrderRoute(jobs, home))
	want := []string{"A", "B", "C"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("route = %v, expected %v", got, want)
		}
	}
}

func TestOrderRoute_NoHomeStartsAtFirstJob(t *testing.T) {
	// 无驻地坐标时从第一单出发，之后仍按最近邻推进
	jobs := []*model.Job{
		jobAt("A", 5, 0),
		jobAt("B", 1, 0),
		jobAt("C", 2, 0),
	}

	got := routeNos(OrderRoute(jobs, nil))
	want := []string{"A", "C", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("route = %v, expected %v", got, want)
		}
	}
}

func TestOrderRoute_NoCoordinatesKeepsOrder(t *testing.T) {
	a := newJob("HVAC Repair", "1 hour")
	a.JobNo = "A"
	b := newJob("HVAC Repair", "1 hour")
	b.JobNo = "B"

	got := routeNos(OrderRoute([]*model.Job{a, b}, nil))
	if got[0] != "A" || got[1] != "B" {
		t.Errorf("route = %v, expected input order preserved", got)
	}
}

func TestOrderRoute_SingleJob(t *testing.T) {
	jobs := []*model.Job{jobAt("A", 1, 1)}
	if got := OrderRoute(jobs, nil); len(got) != 1 || got[0].JobNo != "A" {
		t.Errorf("single-job route = %v", routeNos(got))
	}
}

func TestRouteDistance(t *testing.T) {
	home := &model.Location{Latitude: 0, Longitude: 0}
	jobs := []*model.Job{
		jobAt("A", 3, 0),
		jobAt("B", 3, 4),
	}

	// 0,0 → 3,0 → 3,4
	if d := RouteDistance(jobs, home); d != 7 {
		t.Errorf("RouteDistance = %v, expected 7", d)
	}
	// 无驻地：只算单与单之间
	if d := RouteDistance(jobs, nil); d != 4 {
		t.Errorf("RouteDistance without home = %v, expected 4", d)
	}
}
