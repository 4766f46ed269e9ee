package vehicle

import (
	"testing"

	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity/route"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

// 沿x轴、间距1米、n个点的直线路径
func newTestRoute(t *testing.T, n int) entity.IRoute {
	nodes := make([]*geov2.XYPosition, n)
	for i := range nodes {
		nodes[i] = &geov2.XYPosition{X: float64(i)}
	}
	m := route.NewManager(nil)
	m.Init(&mapv2.Lane{
		Id:         1,
		CenterLine: &mapv2.Polyline{Nodes: nodes},
		MaxSpeed:   10,
	})
	r := m.Route()
	assert.NotNil(t, r)
	return r
}

func TestNewVehicleDefaults(t *testing.T) {
	r := newTestRoute(t, 100)
	veh := New(nil, config.VehicleConfig{StartS: -5}, r)
	assert.Equal(t, defaultMaxA, veh.maxA)
	assert.Equal(t, defaultBrakingA, veh.brakingA)
	assert.Equal(t, defaultMaxV, veh.maxV)
	// 起始位置截断到路径范围内
	assert.Equal(t, 0.0, veh.S())
	assert.Equal(t, 0.0, veh.V())
}

func TestVehicleTracksTarget(t *testing.T) {
	r := newTestRoute(t, 100)
	veh := New(nil, config.VehicleConfig{Seed: 1}, r)
	window := []entity.Waypoint{{V: 10}}

	for i := 0; i < 100; i++ {
		veh.Update(0.1, window)
		assert.LessOrEqual(t, veh.V(), veh.maxV)
		assert.GreaterOrEqual(t, veh.V(), 0.0)
	}
	// 足够多步后接近目标速度并向前推进
	assert.Greater(t, veh.V(), 5.0)
	assert.Greater(t, veh.S(), 0.0)
	assert.LessOrEqual(t, veh.S(), r.Length())
}

func TestVehicleStops(t *testing.T) {
	r := newTestRoute(t, 100)
	veh := New(nil, config.VehicleConfig{Seed: 1}, r)
	for i := 0; i < 50; i++ {
		veh.Update(0.1, []entity.Waypoint{{V: 10}})
	}
	// 空窗口视为目标速度0
	for i := 0; i < 100; i++ {
		veh.Update(0.1, nil)
	}
	assert.Equal(t, 0.0, veh.V())
	sStopped := veh.S()
	veh.Update(0.1, nil)
	assert.Equal(t, sStopped, veh.S())
}

func TestVehicleDeterministic(t *testing.T) {
	r := newTestRoute(t, 100)
	a := New(nil, config.VehicleConfig{Seed: 42}, r)
	b := New(nil, config.VehicleConfig{Seed: 42}, r)
	for i := 0; i < 50; i++ {
		a.Update(0.1, []entity.Waypoint{{V: 10}})
		b.Update(0.1, []entity.Waypoint{{V: 10}})
	}
	assert.Equal(t, a.V(), b.V())
	assert.Equal(t, a.S(), b.S())
}

func TestVehiclePose(t *testing.T) {
	r := newTestRoute(t, 100)
	veh := New(nil, config.VehicleConfig{StartS: 10.5}, r)
	pose := veh.Pose()
	assert.InDelta(t, 10.5, pose.XYZ.X, 1e-9)
	assert.InDelta(t, 0, pose.Direction, 1e-9)
}
