package entity

import (
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"git.fiblab.net/sim/syncer/v3"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

// Manager依赖倒置

// entity/route/manager.go的依赖倒置
type IRouteManager interface {
	Init(pb *mapv2.Lane) // 初始化

	// 获取本会话的路径，未初始化时返回nil
	Route() IRoute
}

// entity/light/manager.go的依赖倒置
type ILightManager interface {
	Init(pbs []config.LightConfig, route IRoute) // 初始化
	Register(sidecar *syncer.Sidecar)            // 注册到Sidecar

	Prepare()          // 准备阶段
	Update(dt float64) // 更新阶段

	// 生成当前周期的信号灯观测快照（按配置列表顺序）
	Observations() []LightObservation
}

// entity/planner/planner.go的依赖倒置
type IPlanner interface {
	SetRoute(route IRoute)               // 设置静态路径（每会话一次）
	SetSpeedLimit(v float64)             // 设置限速（任意时刻可调用）
	UpdatePose(pose Pose)                // 车辆位姿更新钩子
	UpdateLights(obs []LightObservation) // 信号灯观测更新钩子

	// 执行一个规划周期，返回带目标速度标注的前视窗口
	Generate() []Waypoint
	// 最近一次生成的窗口
	Window() []Waypoint
	// 最近一次解析的前向下标，未定位时返回NoIndex
	ForwardIndex() int
}

// entity/vehicle/vehicle.go的依赖倒置
type IVehicle interface {
	Pose() Pose // 获取车辆位姿
	S() float64 // 获取沿路径位置
	V() float64 // 获取速度

	// 跟踪窗口中的目标速度并推进运动学状态
	Update(dt float64, window []Waypoint)
}
