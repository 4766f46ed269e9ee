package planner

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/clock"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity/route"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

type testContext struct {
	rc *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock                  { return nil }
func (c *testContext) RouteManager() entity.IRouteManager   { return nil }
func (c *testContext) LightManager() entity.ILightManager   { return nil }
func (c *testContext) Planner() entity.IPlanner             { return nil }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.rc }

// 沿x轴、间距1米、n个点的直线路径
func newTestRoute(t *testing.T, n int, maxV float64) entity.IRoute {
	nodes := make([]*geov2.XYPosition, n)
	for i := range nodes {
		nodes[i] = &geov2.XYPosition{X: float64(i)}
	}
	m := route.NewManager(nil)
	m.Init(&mapv2.Lane{
		Id:         1,
		CenterLine: &mapv2.Polyline{Nodes: nodes},
		MaxSpeed:   maxV,
	})
	r := m.Route()
	assert.NotNil(t, r)
	return r
}

func newTestPlanner(t *testing.T, n int, maxV float64, lookahead int) *Planner {
	ctx := &testContext{
		rc: config.NewRuntimeConfig(config.Config{
			Control: config.Control{Lookahead: lookahead},
		}),
	}
	p := New(ctx)
	p.SetRoute(newTestRoute(t, n, maxV))
	return p
}

func red(x float64) entity.LightObservation {
	return entity.LightObservation{
		XYZ:   geometry.Point{X: x},
		State: mapv2.LightState_LIGHT_STATE_RED,
	}
}

func green(x float64) entity.LightObservation {
	return entity.LightObservation{
		XYZ:   geometry.Point{X: x},
		State: mapv2.LightState_LIGHT_STATE_GREEN,
	}
}

func TestGenerateNotReady(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	// 缺位姿
	assert.Nil(t, p.Generate())
	assert.Equal(t, entity.NoIndex, p.ForwardIndex())

	// 缺路径
	p2 := New(&testContext{rc: config.NewRuntimeConfig(config.Config{})})
	p2.UpdatePose(entity.Pose{})
	assert.Nil(t, p2.Generate())
}

func TestGenerateNoLights(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	w := p.Generate()
	assert.Len(t, w, 20)
	assert.Equal(t, 0, p.ForwardIndex())
	for _, wp := range w {
		assert.Equal(t, 10.0, wp.V)
	}
}

func TestGenerateStopProfile(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 25)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	p.UpdateLights([]entity.LightObservation{red(30)})
	w := p.Generate()
	assert.Len(t, w, 25)

	// 制动距离 = 30 - 6 - 4 - 0.1*10 = 19，停车点下标19
	assert.Equal(t, 0.0, w[19].V)
	// 停车点之后全部置0
	for i := 19; i < len(w); i++ {
		assert.Equal(t, 0.0, w[i].V)
	}
	// 停车点前紧邻点因蠕行抑制置0（距离0）
	assert.Equal(t, 0.0, w[18].V)
	// 减速曲线：v = sqrt(2*5*d)，与标称速度取小
	assert.InDelta(t, math.Sqrt(10), w[17].V, 1e-9)
	assert.Equal(t, 10.0, w[0].V)
	// 朝停车点单调不增
	for i := 1; i < len(w); i++ {
		assert.LessOrEqual(t, w[i].V, w[i-1].V)
	}
}

func TestGenerateIdempotent(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 25)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	p.UpdateLights([]entity.LightObservation{red(30)})
	w1 := p.Generate()
	w2 := p.Generate()
	assert.Equal(t, w1, w2)
	assert.Equal(t, 0, p.ForwardIndex())
}

func TestGenerateAtStopLine(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	// 已紧贴停止线：制动距离为0，整个窗口置0
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 25.2}})
	p.UpdateLights([]entity.LightObservation{red(30)})
	w := p.Generate()
	assert.Equal(t, 25, p.ForwardIndex())
	for _, wp := range w {
		assert.Equal(t, 0.0, wp.V)
	}
}

func TestGenerateShortApproach(t *testing.T) {
	// 剩余距离不足以容纳最小保留距离+车长时，制动距离截断为0，全窗置0
	p := newTestPlanner(t, 10, 10, 20)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 2.1}})
	p.UpdateLights([]entity.LightObservation{red(8)})
	w := p.Generate()
	assert.Equal(t, 2, p.ForwardIndex())
	assert.Equal(t, 2, p.state.commitment.index)
	for _, wp := range w {
		assert.Equal(t, 0.0, wp.V)
	}

	p2 := newTestPlanner(t, 10, 10, 20)
	p2.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.1}})
	p2.UpdateLights([]entity.LightObservation{red(9)})
	w2 := p2.Generate()
	assert.Equal(t, 0, p2.state.commitment.index)
	for _, wp := range w2 {
		assert.Equal(t, 0.0, wp.V)
	}
}

func TestGenerateStopBeyondLookahead(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 10)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	p.UpdateLights([]entity.LightObservation{red(30)})
	w := p.Generate()
	assert.Len(t, w, 10)
	// 停车点（下标19）在前视范围之外，本周期不修改窗口
	for _, wp := range w {
		assert.Equal(t, 10.0, wp.V)
	}
}

func TestGenerateCommitmentFrozen(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 25)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	p.UpdateLights([]entity.LightObservation{red(30)})
	p.Generate()
	assert.Equal(t, 19, p.state.commitment.index)

	// 车辆前进后停车点保持冻结，不随新的前向下标重算
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 5.2}})
	w := p.Generate()
	assert.Equal(t, 5, p.ForwardIndex())
	assert.Equal(t, 19, p.state.commitment.index)
	assert.Equal(t, 0.0, w[19-5].V)
	assert.Equal(t, 10.0, w[0].V)
}

func TestGenerateCommitmentReset(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 25)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	p.UpdateLights([]entity.LightObservation{red(30)})
	p.Generate()
	assert.True(t, p.state.commitment.committed)

	// 红灯结束：承诺清除，窗口恢复标称速度
	p.UpdateLights([]entity.LightObservation{green(30)})
	w := p.Generate()
	assert.False(t, p.state.commitment.committed)
	for _, wp := range w {
		assert.Equal(t, 10.0, wp.V)
	}

	// 再次变红：按新的前向下标重新计算承诺
	p.UpdateLights([]entity.LightObservation{red(30)})
	p.Generate()
	assert.True(t, p.state.commitment.committed)
}

func TestGenerateBehindLightIgnored(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	// 红灯在车辆后方，不构成停车目标
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 25.2}})
	p.UpdateLights([]entity.LightObservation{red(10)})
	w := p.Generate()
	assert.Equal(t, entity.NoIndex, p.state.activeStopIndex)
	for _, wp := range w {
		assert.Equal(t, 10.0, wp.V)
	}
}

func TestGenerateSpeedLimit(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	p.SetSpeedLimit(3)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 0.2}})
	w := p.Generate()
	for _, wp := range w {
		assert.Equal(t, 3.0, wp.V)
	}
	// 非正值视为不限速
	p.SetSpeedLimit(0)
	w = p.Generate()
	assert.Equal(t, 10.0, w[0].V)
}

func TestGenerateAtRouteEnd(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: 49.3}})
	w := p.Generate()
	// 末点退化为单个静止路径点
	assert.Len(t, w, 1)
	assert.Equal(t, 0.0, w[0].V)
	assert.Equal(t, 49, p.ForwardIndex())
}

func TestForwardIndexMonotonic(t *testing.T) {
	p := newTestPlanner(t, 50, 10, 20)
	last := 0
	for _, x := range []float64{0.2, 2.1, 4.9, 5.0, 8.3} {
		p.UpdatePose(entity.Pose{XYZ: geometry.Point{X: x}})
		p.Generate()
		assert.GreaterOrEqual(t, p.ForwardIndex(), last)
		last = p.ForwardIndex()
	}
}

func TestTrackerAnchorsOnce(t *testing.T) {
	r := newTestRoute(t, 50, 10)
	tr := lightTracker{route: r}
	tr.update([]entity.LightObservation{red(30)})
	assert.True(t, tr.anchored)
	assert.Equal(t, []int{30}, tr.anchors)

	// 锚点一次计算后冻结，后续观测即使位置变化也不重算
	tr.update([]entity.LightObservation{red(12)})
	assert.Equal(t, []int{30}, tr.anchors)
	assert.Equal(t, 30, tr.resolve(0))

	// 空观测不建立锚点
	empty := lightTracker{route: r}
	empty.update(nil)
	assert.False(t, empty.anchored)
	assert.Equal(t, entity.NoIndex, empty.resolve(0))
}

func TestTrackerResolveOrder(t *testing.T) {
	r := newTestRoute(t, 50, 10)

	// 灯按沿路径升序提供时，选中前方最近的红灯
	asc := lightTracker{route: r}
	asc.update([]entity.LightObservation{red(30), red(40)})
	assert.Equal(t, 30, asc.resolve(0))
	// 越过第一个灯后选中下一个
	assert.Equal(t, 40, asc.resolve(30))

	// 选择规则是"列表位置最小的合格红灯"而非按距离最小化：
	// 降序提供时选中的是列表首个，不是距离最近的
	desc := lightTracker{route: r}
	desc.update([]entity.LightObservation{red(40), red(30)})
	assert.Equal(t, 40, desc.resolve(0))
}

func TestTrackerResolveSkipsInvalid(t *testing.T) {
	r := newTestRoute(t, 50, 10)
	// 锚定失败的灯（NoIndex）被跳过，不参与选择
	tr := lightTracker{
		route:    r,
		anchored: true,
		anchors:  []int{entity.NoIndex, 30},
		obs:      []entity.LightObservation{red(0), red(30)},
	}
	assert.Equal(t, 30, tr.resolve(0))

	// 观测数量多于锚定数量时只考虑已锚定的部分
	tr.obs = append(tr.obs, red(40))
	assert.Equal(t, 30, tr.resolve(0))
}
