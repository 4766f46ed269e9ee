package vehicle

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/randengine"
)

const (
	defaultMaxA     = 3.0  // 默认最大加速度（米/秒²）
	defaultBrakingA = -6.0 // 默认最大制动加速度（米/秒²）
	defaultMaxV     = 20.0 // 默认最大速度（米/秒）

	// maxNoiseA 加速度随机扰动最大值
	// 功能：为车辆加速度添加随机扰动，模拟真实驾驶的不确定性
	maxNoiseA = .5

	// zeroAThreshold 加速度零值判定阈值
	// 功能：当加速度绝对值小于此值时认为加速度为零
	zeroAThreshold = .1
)

// Vehicle 仿真车辆
// 功能：沿路径向前运动的运动学车辆，跟踪规划窗口中标注的目标速度
// 说明：这是外部位姿来源与下游轨迹跟随控制器的仓库内替身，
// 用于闭环演示红灯减速停车；所有更新由任务循环单写者驱动
type Vehicle struct {
	ctx entity.ITaskContext

	route     entity.IRoute
	generator *randengine.Engine // 随机数生成器

	maxA     float64 // 最大加速度
	brakingA float64 // 最大制动加速度（负值）
	maxV     float64 // 最大速度

	s float64 // 沿路径位置（米）
	v float64 // 当前速度（米/秒）
}

// New 创建仿真车辆
// 功能：根据场景配置初始化车辆，缺省参数取默认值
// 参数：ctx-任务上下文，base-车辆配置，route-要跟踪的路径
// 返回：初始化完成的车辆实例
func New(ctx entity.ITaskContext, base config.VehicleConfig, route entity.IRoute) *Vehicle {
	veh := &Vehicle{
		ctx:       ctx,
		route:     route,
		generator: randengine.New(base.Seed),
		maxA:      base.MaxAcceleration,
		brakingA:  base.MaxBrakingAcceleration,
		maxV:      base.MaxSpeed,
		s:         base.StartS,
	}
	if veh.maxA <= 0 {
		veh.maxA = defaultMaxA
	}
	if veh.brakingA >= 0 {
		veh.brakingA = defaultBrakingA
	}
	if veh.maxV <= 0 {
		veh.maxV = defaultMaxV
	}
	if route != nil {
		veh.s = lo.Clamp(veh.s, 0, route.Length())
	}
	return veh
}

// Pose 获取车辆位姿
// 功能：将沿路径位置转换为平面位姿（位置+朝向）
func (veh *Vehicle) Pose() entity.Pose {
	return entity.Pose{
		XYZ:       veh.route.GetPositionByS(veh.s),
		Direction: veh.route.GetDirectionByS(veh.s),
	}
}

// S 获取沿路径位置
func (veh *Vehicle) S() float64 {
	return veh.s
}

// V 获取速度
func (veh *Vehicle) V() float64 {
	return veh.v
}

// Update 跟踪窗口并推进运动学状态
// 功能：朝窗口起点标注的目标速度加减速，并沿路径推进
// 参数：dt-时间步长，window-本周期规划窗口
// 算法说明：
// 1. 空窗口（规划器未就绪）时目标速度为0
// 2. 计算达到目标速度所需加速度并截断到[brakingA, maxA]
// 3. 加速度添加随机扰动；过小的加速度不扰动，扰动不改变加速度符号
// 4. 更新速度（不为负、不超过maxV）并推进s，s截断到路径末端
func (veh *Vehicle) Update(dt float64, window []entity.Waypoint) {
	var targetV float64
	if len(window) > 0 {
		targetV = window[0].V
	}
	targetV = math.Min(targetV, veh.maxV)

	a := lo.Clamp((targetV-veh.v)/dt, veh.brakingA, veh.maxA)
	noiseA := maxNoiseA * lo.Clamp(.5*veh.generator.NormFloat64(), -1, 1)
	if math.Abs(a) >= zeroAThreshold && math.Signbit(a) == math.Signbit(a+noiseA) {
		a += noiseA
	}

	veh.v = lo.Clamp(veh.v+a*dt, 0, veh.maxV)
	veh.s = lo.Clamp(veh.s+veh.v*dt, 0, veh.route.Length())
}
