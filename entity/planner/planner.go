package planner

import (
	"git.fiblab.net/general/common/v2/mathutil"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
)

// plannerState 规划器会话状态
// 功能：集中保存跨周期的可变状态，由Planner独占持有
// 说明：显式结构体替代任何环境/静态状态；所有字段只在规划周期内被串行读写
type plannerState struct {
	// 上一次解析出的前向下标；车辆只向前运动时跨周期单调不减
	forwardIndex int
	// 前方最近合格红灯的锚点下标，无红灯时为entity.NoIndex
	activeStopIndex int
	// 当前红灯事件的停车点承诺
	commitment stopCommitment
}

// stopCommitment 停车点承诺
// 功能：一次红灯事件内冻结的停车路径点下标
// 说明：显式的committed标志表达"一次计算、此后冻结"；
// 事件期间不重算以保持速度曲线稳定（若车辆越过原定制动距离则不再修正，
// 属于已知限制），无合格红灯时整体清零等待下一次事件
type stopCommitment struct {
	committed bool // 是否已为当前事件计算过停车点
	index     int  // 停车路径点下标
}

// Planner 路径跟踪规划器
// 功能：每个规划周期产出一段带目标速度标注的前视路径点窗口，
// 使车辆在最近的前方红灯停止线前平滑减速停车
// 说明：所有更新钩子与Generate必须来自同一写者串行调用；
// 若位姿与信号灯更新来自并发源，须先汇聚为单写者再进入本模块
type Planner struct {
	ctx entity.ITaskContext

	route      entity.IRoute // 静态路径，未设置时规划器未就绪
	lookahead  int           // 前视路径点数量
	speedLimit float64       // 会话限速（米/秒）

	hasPose bool        // 是否收到过位姿
	pose    entity.Pose // 最近一次车辆位姿

	tracker lightTracker // 信号灯锚定与选择

	state  plannerState      // 会话状态
	window []entity.Waypoint // 最近一次生成的窗口
}

// New 创建规划器实例
// 功能：根据运行时配置初始化规划器，重置会话状态
// 参数：ctx-任务上下文
// 返回：初始化完成的规划器实例
func New(ctx entity.ITaskContext) *Planner {
	c := ctx.RuntimeConfig().C
	speedLimit := c.SpeedLimit
	if speedLimit <= 0 {
		speedLimit = mathutil.INF
	}
	return &Planner{
		ctx:        ctx,
		lookahead:  c.Lookahead,
		speedLimit: speedLimit,
		state: plannerState{
			forwardIndex:    entity.NoIndex,
			activeStopIndex: entity.NoIndex,
		},
	}
}

// SetRoute 设置静态路径
// 功能：绑定本会话要跟踪的路径
// 说明：每会话设置一次；路径本身只读，规划器只输出窗口副本
func (p *Planner) SetRoute(route entity.IRoute) {
	p.route = route
	p.tracker.route = route
}

// SetSpeedLimit 设置会话限速
// 功能：限制窗口中路径点的标称目标速度，任意时刻可调用
// 说明：非正值视为不限速
func (p *Planner) SetSpeedLimit(v float64) {
	if v <= 0 {
		v = mathutil.INF
	}
	p.speedLimit = v
}

// UpdatePose 车辆位姿更新钩子
// 功能：记录最近一次车辆位姿，供下一个规划周期使用
func (p *Planner) UpdatePose(pose entity.Pose) {
	p.pose = pose
	p.hasPose = true
}

// UpdateLights 信号灯观测更新钩子
// 功能：记录最近一批信号灯观测；首批观测时完成一次性锚点计算
func (p *Planner) UpdateLights(obs []entity.LightObservation) {
	p.tracker.update(obs)
}

// Generate 执行一个规划周期
// 功能：产出带目标速度标注的前视窗口
// 返回：窗口路径点列表；未就绪（缺路径或位姿）或定位失败时返回空
// 算法说明：
// 1. 解析前向下标：从上一周期下标开始的有界最近点搜索（首周期全量扫描）
// 2. 解析红灯停车目标：在锚定的信号灯中选择前方最近的合格红灯
// 3. 抽取前视窗口副本
// 4. 就地改写窗口速度，生成减速停车曲线
// 说明：每步执行一次且不阻塞；失败一律降级为空输出而非报错
func (p *Planner) Generate() []entity.Waypoint {
	if p.route == nil || !p.hasPose {
		return nil
	}

	start := p.state.forwardIndex
	if start == entity.NoIndex {
		start = 0
	}
	idx := p.route.NearestIndex(start, p.pose.XYZ)
	if idx == entity.NoIndex {
		log.Debugf("planner: cannot locate vehicle on route from index %d", start)
		return nil
	}
	p.state.forwardIndex = idx
	p.state.activeStopIndex = p.tracker.resolve(idx)

	window := p.extractWindow(idx)
	p.applyStopProfile(window, idx)
	p.window = window
	return window
}

// Window 最近一次生成的窗口
func (p *Planner) Window() []entity.Waypoint {
	return p.window
}

// ForwardIndex 最近一次解析的前向下标
// 返回：前向下标，尚未定位时返回entity.NoIndex
func (p *Planner) ForwardIndex() int {
	return p.state.forwardIndex
}
