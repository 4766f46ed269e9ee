package light

import (
	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

// lightRuntime 信号灯运行时数据结构
// 功能：存储两相位信号灯的运行时状态
type lightRuntime struct {
	state      mapv2.LightState // 当前相位状态
	remainingT float64          // 当前相位剩余时间（秒）
}

// Light 停止线信号灯实体
// 功能：表示路径上一个红绿两相位的固定程序信号灯
// 说明：按红、绿两个相位时长循环切换；关闭（ok=false）时对外视为绿灯
type Light struct {
	ctx entity.ITaskContext

	id  int32
	xyz geometry.Point // 停止线位置

	redTime   float64 // 红灯相位时长（秒）
	greenTime float64 // 绿灯相位时长（秒）

	snapshot lightRuntime  // snapshot，用于对外提供观测
	runtime  lightRuntime  // 运行时数据
	buffer   *lightRuntime // 数据buffer，用于交互式接口写入(optional)
	ok       bool          // 信号灯状态，true为开启，false为关闭
	okBuffer bool          // 信号灯状态buffer，用于交互式接口写入
}

// newLight 创建并初始化一个新的Light实例
// 功能：根据配置创建信号灯对象，设置初始相位与剩余时间
// 参数：ctx-任务上下文，base-信号灯配置
// 返回：初始化完成的Light实例
// 说明：相位时长非正视为坏数据直接panic；offset超出相位时长时取模处理
func newLight(ctx entity.ITaskContext, base config.LightConfig) *Light {
	if base.Red <= 0 || base.Green <= 0 {
		log.Panicf("light %d has non-positive phase durations (red=%v, green=%v)",
			base.ID, base.Red, base.Green)
	}
	l := &Light{
		ctx:       ctx,
		id:        base.ID,
		xyz:       geometry.Point{X: base.X, Y: base.Y},
		redTime:   base.Red,
		greenTime: base.Green,
		ok:        true,
		okBuffer:  true,
	}
	state := mapv2.LightState_LIGHT_STATE_GREEN
	total := base.Green
	if base.Start == "red" {
		state = mapv2.LightState_LIGHT_STATE_RED
		total = base.Red
	}
	offset := base.Offset
	for offset >= total {
		offset -= total
	}
	l.runtime = lightRuntime{
		state:      state,
		remainingT: total - offset,
	}
	l.snapshot = l.runtime
	return l
}

// ID 获取信号灯ID
func (l *Light) ID() int32 {
	return l.id
}

// prepare 准备阶段
// 功能：应用交互式接口写入的buffer，并将运行时数据写入snapshot
func (l *Light) prepare() {
	l.ok = l.okBuffer
	if l.buffer != nil {
		l.runtime = *l.buffer
		l.buffer = nil
	}
	l.snapshot = l.runtime
}

// update 更新阶段，推进相位倒计时
// 功能：按固定程序在红绿两相位间循环切换
// 参数：dt-时间步长
// 算法说明：
// 1. 剩余时间递减dt
// 2. 剩余时间耗尽时切换到另一相位，剩余时间加上新相位时长
// 说明：dt远小于相位时长，单步最多切换一次
func (l *Light) update(dt float64) {
	l.runtime.remainingT -= dt
	if l.runtime.remainingT > 0 {
		return
	}
	if l.runtime.state == mapv2.LightState_LIGHT_STATE_RED {
		l.runtime.state = mapv2.LightState_LIGHT_STATE_GREEN
		l.runtime.remainingT += l.greenTime
	} else {
		l.runtime.state = mapv2.LightState_LIGHT_STATE_RED
		l.runtime.remainingT += l.redTime
	}
}

// setPhase 跳转到指定相位
// 功能：交互式接口写入，设置当前相位与剩余时间（prepare后生效）
// 参数：phaseIndex-相位下标（0为红，1为绿），remainingT-剩余时间
func (l *Light) setPhase(phaseIndex int32, remainingT float64) error {
	state := mapv2.LightState_LIGHT_STATE_RED
	switch phaseIndex {
	case 0:
	case 1:
		state = mapv2.LightState_LIGHT_STATE_GREEN
	default:
		return errBadPhaseIndex
	}
	l.buffer = &lightRuntime{
		state:      state,
		remainingT: remainingT,
	}
	return nil
}

// setStatus 设置信号灯开关状态
// 功能：交互式接口写入，true表示正常工作，false表示失效（对外视为绿灯）
func (l *Light) setStatus(ok bool) {
	l.okBuffer = ok
}

// observation 生成当前周期的观测快照
// 功能：将snapshot转换为对外的信号灯观测
// 说明：关闭状态的信号灯对外报告绿灯（不阻塞）
func (l *Light) observation() entity.LightObservation {
	state := l.snapshot.state
	if !l.ok {
		state = mapv2.LightState_LIGHT_STATE_GREEN
	}
	return entity.LightObservation{
		XYZ:   l.xyz,
		State: state,
	}
}
