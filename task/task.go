package task

import (
	"sync/atomic"

	"git.fiblab.net/sim/syncer/v3"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/clock"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity/light"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity/planner"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity/route"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity/vehicle"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/input"
)

// Context 规划任务上下文
// 功能：包含一次规划任务的所有变量和状态，替代全局变量
// 说明：管理任务的所有组件，包括时钟、路径、信号灯、规划器和仿真车辆；
// prepare/update循环中对这些组件的写入全部由任务协程单写者完成
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock

	// 辅助程序，处理分布式模式下相关调用，包括与syncer、其他服务的交互
	sidecar *syncer.Sidecar
	// sidecar close channel
	sidecarCloseCh chan struct{}
	// 缓存文件夹
	cacheDir string

	// 路径管理器
	routeManager entity.IRouteManager
	// 信号灯管理器
	lightManager entity.ILightManager
	// 路径点规划器
	planner entity.IPlanner
	// 仿真车辆
	vehicle entity.IVehicle

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 用于初始化的输入
	initRes *input.Input
}

// NewContext 创建新的规划任务上下文
// 功能：初始化任务的所有组件和配置
// 参数：
//   - job: 任务名称
//   - grpcAddr: gRPC服务地址
//   - syncerAddr: syncer服务地址
//   - syncerLog: syncer日志记录器
//   - cacheDir: 缓存目录
//   - c: 配置对象
//   - sidecar: 外部sidecar实例
//   - startSidecarServe: 是否启动sidecar服务
//
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 创建Context实例并设置基本属性
// 2. 初始化时钟并下载路径数据
// 3. 创建路径、信号灯管理器与规划器
// 4. 注册RPC服务到sidecar
// 5. 启动sidecar服务（如果需要）
func NewContext(
	job string,
	grpcAddr string,
	syncerAddr string,
	syncerLog *logrus.Entry,
	cacheDir string,
	c config.Config,
	sidecar *syncer.Sidecar,
	startSidecarServe bool,
) *Context {
	ctx := &Context{
		job:            job,
		cacheDir:       cacheDir,
		sidecar:        sidecar,
		sidecarCloseCh: make(chan struct{}),
	}
	ctx.clock = clock.New(c.Control.Step)

	// 下载所有规划器启动所需的数据
	ctx.initRes = input.Init(c, ctx.cacheDir)

	ctx.runtimeConfig = config.NewRuntimeConfig(c)

	// 新建各类对象
	ctx.routeManager = route.NewManager(ctx)
	ctx.lightManager = light.NewManager(ctx)
	ctx.planner = planner.New(ctx)

	ctx.clock.Register(ctx.sidecar)
	ctx.lightManager.Register(ctx.sidecar)

	// sidecar协程，用于提供gRPC服务
	if startSidecarServe {
		go func() {
			err := ctx.sidecar.Serve()
			if err != nil {
				log.Panicf("failed to serve: %v", err)
			}
			ctx.sidecarCloseCh <- struct{}{}
		}()
	}

	return ctx
}

func (ctx *Context) GetInput() *input.Input {
	return ctx.initRes
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) RouteManager() entity.IRouteManager {
	return ctx.routeManager
}

func (ctx *Context) LightManager() entity.ILightManager {
	return ctx.lightManager
}

func (ctx *Context) Planner() entity.IPlanner {
	return ctx.planner
}

func (ctx *Context) Vehicle() entity.IVehicle {
	return ctx.vehicle
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

func (ctx *Context) Init() {
	ctx.clock.Init()

	initRes := ctx.initRes
	// 数据加载
	routePb := initRes.Route

	log.Infof("Route: %d points", len(routePb.CenterLine.Nodes))
	log.Infof("Light: %d", len(ctx.runtimeConfig.All.Scenario.Lights))

	ctx.routeManager.Init(routePb) // 先完成路径的所有初始化
	r := ctx.routeManager.Route()
	// 在建立好路径的基础上
	// 信号灯初始化（在路径上锚定停止线位置）
	ctx.lightManager.Init(ctx.runtimeConfig.All.Scenario.Lights, r)
	// 规划器初始化
	ctx.planner.SetRoute(r)
	ctx.planner.SetSpeedLimit(ctx.runtimeConfig.All.Control.SpeedLimit)
	// 仿真车辆初始化
	ctx.vehicle = vehicle.New(ctx, ctx.runtimeConfig.All.Scenario.Vehicle, r)
}

func (ctx *Context) Close() {
	if ctx.closed.Load() {
		return
	}
	ctx.sidecar.Close()
	// wait for graceful stop
	<-ctx.sidecarCloseCh
	ctx.closed.Store(true)
}
