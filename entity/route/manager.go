package route

import (
	"git.fiblab.net/general/common/v2/geometry"
	geov2 "git.fiblab.net/sim/protos/v2/go/city/geo/v2"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
)

// RouteManager 路径管理器
// 功能：管理会话内唯一的静态路径，提供初始化与查询功能
type RouteManager struct {
	ctx entity.ITaskContext

	route *Route
}

// NewManager 创建路径管理器实例
// 参数：ctx-任务上下文
// 返回：新创建的路径管理器实例
func NewManager(ctx entity.ITaskContext) *RouteManager {
	return &RouteManager{
		ctx: ctx,
	}
}

// Init 初始化路径
// 功能：根据protobuf数据构造路径对象
// 参数：pb-路径的Lane protobuf数据（中心线折线+限速）
// 说明：每会话调用一次；中心线少于2个点视为坏数据直接panic
func (m *RouteManager) Init(pb *mapv2.Lane) {
	if pb.CenterLine == nil || len(pb.CenterLine.Nodes) < 2 {
		log.Panicf("route %d has no usable center line", pb.Id)
	}
	points := lo.Map(pb.CenterLine.Nodes, func(node *geov2.XYPosition, _ int) geometry.Point {
		return geometry.NewPointFromPb(node)
	})
	m.route = newRoute(points, pb.MaxSpeed)
	log.Infof("route %d loaded: %d waypoints, %.1fm, maxV=%.1fm/s",
		pb.Id, m.route.Len(), m.route.Length(), m.route.MaxV())
}

// Route 获取本会话的路径
// 返回：路径实例，未初始化时返回nil
func (m *RouteManager) Route() entity.IRoute {
	if m.route == nil {
		return nil
	}
	return m.route
}
