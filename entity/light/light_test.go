package light

import (
	"testing"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

func TestNewLight(t *testing.T) {
	l := newLight(nil, config.LightConfig{
		ID: 1, X: 30, Y: 0,
		Red: 10, Green: 5,
		Start: "red", Offset: 3,
	})
	assert.Equal(t, int32(1), l.ID())
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.observation().State)
	assert.InDelta(t, 7, l.runtime.remainingT, 1e-9)

	// 默认初始相位为绿灯，offset超出相位时长时取模
	g := newLight(nil, config.LightConfig{ID: 2, Red: 10, Green: 5, Offset: 12})
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, g.observation().State)
	assert.InDelta(t, 3, g.runtime.remainingT, 1e-9)

	assert.Panics(t, func() {
		newLight(nil, config.LightConfig{ID: 3, Red: 0, Green: 5})
	})
}

func TestLightPhaseCycle(t *testing.T) {
	l := newLight(nil, config.LightConfig{
		ID: 1, Red: 3, Green: 2, Start: "red",
	})
	// 红灯3秒
	for i := 0; i < 3; i++ {
		assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.runtime.state)
		l.update(1)
	}
	// 绿灯2秒
	for i := 0; i < 2; i++ {
		assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, l.runtime.state)
		l.update(1)
	}
	// 回到红灯
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.runtime.state)

	// 观测来自snapshot，prepare前保持旧值
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.observation().State)
	l.update(3)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, l.runtime.state)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.observation().State)
	l.prepare()
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, l.observation().State)
}

func TestLightSetPhase(t *testing.T) {
	l := newLight(nil, config.LightConfig{ID: 1, Red: 10, Green: 5})
	assert.NoError(t, l.setPhase(0, 4))
	// buffer在prepare后生效
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, l.observation().State)
	l.prepare()
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.observation().State)
	assert.InDelta(t, 4, l.runtime.remainingT, 1e-9)

	assert.ErrorIs(t, l.setPhase(5, 4), errBadPhaseIndex)
}

func TestLightSetStatus(t *testing.T) {
	l := newLight(nil, config.LightConfig{ID: 1, Red: 10, Green: 5, Start: "red"})
	l.setStatus(false)
	// 关闭前对外仍为红灯，prepare后失效灯对外视为绿灯
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.observation().State)
	l.prepare()
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, l.observation().State)

	l.setStatus(true)
	l.prepare()
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, l.observation().State)
}

func TestManagerObservations(t *testing.T) {
	m := NewManager(nil)
	m.Init([]config.LightConfig{
		{ID: 1, X: 10, Red: 3, Green: 2, Start: "red"},
		{ID: 2, X: 20, Red: 3, Green: 2},
	}, nil)

	obs := m.Observations()
	assert.Len(t, obs, 2)
	// 观测顺序与配置列表顺序一致
	assert.Equal(t, 10.0, obs[0].XYZ.X)
	assert.Equal(t, 20.0, obs[1].XYZ.X)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, obs[0].State)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, obs[1].State)

	// 每周期返回新建切片
	obs[0].State = mapv2.LightState_LIGHT_STATE_GREEN
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, m.Observations()[0].State)

	assert.NotNil(t, m.Get(1))
	_, err := m.GetOrError(3)
	assert.Error(t, err)
}

func TestManagerDuplicateIDs(t *testing.T) {
	m := NewManager(nil)
	assert.Panics(t, func() {
		m.Init([]config.LightConfig{
			{ID: 1, Red: 3, Green: 2},
			{ID: 1, Red: 3, Green: 2},
		}, nil)
	})
}

func TestManagerPrepareUpdate(t *testing.T) {
	m := NewManager(nil)
	m.Init([]config.LightConfig{
		{ID: 1, Red: 3, Green: 2, Start: "red"},
	}, nil)

	m.Update(3)
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_RED, m.Observations()[0].State)
	m.Prepare()
	assert.Equal(t, mapv2.LightState_LIGHT_STATE_GREEN, m.Observations()[0].State)
}
