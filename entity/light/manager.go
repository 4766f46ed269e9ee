package light

import (
	"errors"
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

var (
	errBadPhaseIndex    = errors.New("phase index must be 0 (red) or 1 (green)")
	errBadRemainingTime = errors.New("invalid remaining time")
)

// LightManager 信号灯管理器
// 功能：管理所有停止线信号灯，提供创建、查找、相位推进与观测输出功能
// 说明：信号灯是规划核心的外部协作方，本管理器是其在仓库内的具体实现；
// 规划器只消费Observations产生的（位置，状态）快照
type LightManager struct {
	ctx entity.ITaskContext

	data   map[int32]*Light
	lights []*Light // 按配置列表顺序，应为沿路径升序
}

// NewManager 创建信号灯管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的信号灯管理器实例
func NewManager(ctx entity.ITaskContext) *LightManager {
	return &LightManager{
		ctx:    ctx,
		data:   make(map[int32]*Light),
		lights: make([]*Light, 0),
	}
}

// Init 初始化所有信号灯
// 功能：根据配置初始化所有信号灯对象，建立ID映射关系
// 参数：pbs-信号灯配置列表，route-路径（用于校验灯是否落在路径附近）
// 说明：配置顺序即观测列表顺序；灯离路径过远时仅告警，不影响初始化
func (m *LightManager) Init(pbs []config.LightConfig, route entity.IRoute) {
	m.lights = parallel.GoMap(pbs, func(pb config.LightConfig) *Light {
		return newLight(m.ctx, pb)
	})
	m.data = lo.SliceToMap(m.lights, func(l *Light) (int32, *Light) {
		return l.id, l
	})
	if len(m.data) != len(m.lights) {
		log.Panic("lights have duplicated ids, please check config")
	}
	if route != nil {
		for _, l := range m.lights {
			if idx := route.NearestIndex(0, l.xyz); idx == entity.NoIndex {
				log.Warnf("light %d is not near the route", l.id)
			}
		}
	}
	log.Infof("Light: %v", len(m.lights))
}

// Get 根据ID获取信号灯实例
// 功能：通过信号灯ID查找对应的对象，如果不存在则panic
func (m *LightManager) Get(id int32) *Light {
	if l, ok := m.data[id]; !ok {
		log.Panicf("no id %d in light data", id)
		return nil
	} else {
		return l
	}
}

// GetOrError 根据ID获取信号灯实例（带错误处理）
// 功能：通过信号灯ID查找对应的对象，如果不存在则返回错误
func (m *LightManager) GetOrError(id int32) (*Light, error) {
	if l, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in light data", id)
	} else {
		return l, nil
	}
}

// Prepare 准备阶段，处理所有信号灯的准备工作
// 功能：应用交互式写入buffer并更新snapshot
func (m *LightManager) Prepare() {
	parallel.GoFor(m.lights, func(l *Light) { l.prepare() })
}

// Update 更新阶段，执行所有信号灯的相位推进
// 参数：dt-时间步长
func (m *LightManager) Update(dt float64) {
	parallel.GoFor(m.lights, func(l *Light) { l.update(dt) })
}

// Observations 生成当前周期的信号灯观测快照
// 功能：按配置列表顺序输出所有信号灯的（位置，状态）
// 说明：返回的切片每周期新建，调用方可以安全持有
func (m *LightManager) Observations() []entity.LightObservation {
	return lo.Map(m.lights, func(l *Light, _ int) entity.LightObservation {
		return l.observation()
	})
}
