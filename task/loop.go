package task

import (
	"flag"
)

const (
	SelfName = "planner" // 本程序在模拟任务集群中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个规划周期开始时进行准备工作
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出当前前向下标与车速
// 3. 信号灯管理器：应用外部RPC写入缓冲并产生本周期快照
func (ctx *Context) prepare() {
	log.Debugf("step %d complete, +1", ctx.clock.InternalStep)
	ctx.clock.InternalStep++
	ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) forward=%d v=%.2f",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.planner.ForwardIndex(),
			ctx.vehicle.V(),
		)
	}

	ctx.lightManager.Prepare()
}

// update 更新阶段，每步执行一次
// 功能：在每个规划周期中执行主要的规划逻辑
// 算法说明：
// 1. 信号灯管理器：推进相位倒计时
// 2. 规划器：依次注入车辆位姿与信号灯观测快照
// 3. 规划生成：解析前向下标、提取窗口并应用停车速度剖面
// 4. 仿真车辆：跟踪窗口目标速度并推进运动学状态
// 说明：规划器状态只有一个写者，各步骤之间存在数据依赖，
// 因此本阶段严格串行执行，不做并行化
func (ctx *Context) update() {
	dt := ctx.clock.DT

	ctx.lightManager.Update(dt)

	ctx.planner.UpdatePose(ctx.vehicle.Pose())
	ctx.planner.UpdateLights(ctx.lightManager.Observations())
	window := ctx.planner.Generate()

	ctx.vehicle.Update(dt, window)
}

// Run 运行
func (ctx *Context) Run() {
	// 初始化
	ctx.Init()
	// init syncer
	ctx.sidecar.Step(false)
	for {
		ctx.prepare()
		// 通知准备阶段完成
		log.Debugf("step %d: prepare complete and call NotifyStepReady", ctx.clock.InternalStep)
		ctx.sidecar.NotifyStepReady()
		log.Debugf("step %d: NotifyStepReady complete", ctx.clock.InternalStep)
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		close := false
		if ctx.clock.InternalStep+1 >= ctx.clock.END_STEP {
			close = ctx.sidecar.Step(true)
		} else {
			close = ctx.sidecar.Step(false)
		}
		if close || ctx.closed.Load() {
			break
		}
	}
	log.Infof("planner complete")
	ctx.Close()
}
