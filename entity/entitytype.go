package entity

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
)

// NoIndex 无效路径点下标的哨兵值
// 说明：所有返回路径点下标的查找接口在失败时返回NoIndex，
// 调用方必须先检查再使用，禁止直接用NoIndex访问路径点
const NoIndex = -1

// Waypoint 路径点
// 功能：描述路径上的一个采样点，包含位置、朝向与目标线速度
// 说明：基础路径中的Waypoint为只读模板，规划器只修改复制到输出窗口中的副本
type Waypoint struct {
	XYZ       geometry.Point // 位置
	Direction float64        // 切向角度（弧度，速度规划不使用）
	V         float64        // 目标线速度（米/秒）
}

// Pose 位姿
// 功能：描述车辆或信号灯的平面位置与朝向
// 说明：平面距离计算只使用x、y，z被忽略
type Pose struct {
	XYZ       geometry.Point // 位置
	Direction float64        // 朝向（弧度）
}

// LightObservation 信号灯观测
// 功能：外部每周期提供的信号灯快照，包含停止线位置与离散状态
// 说明：状态为RED时阻塞通行，其余状态对本模块均不阻塞；
// 状态由外部提供，本模块不做任何灯色识别
type LightObservation struct {
	XYZ   geometry.Point   // 停止线位置
	State mapv2.LightState // 信号灯状态
}

// PlaneDistance 计算两点间的平面距离
// 功能：只使用x、y坐标计算欧氏距离，z被忽略
func PlaneDistance(a, b geometry.Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// entity/route/route.go的依赖倒置
type IRoute interface {
	// 路径点数量
	Len() int
	// 获取只读的基础路径点列表
	Waypoints() []Waypoint
	// 获取下标为i的路径点（副本）
	Waypoint(i int) Waypoint
	// 以折线长度为路径长度
	Length() float64
	// 路径的标称限速
	MaxV() float64

	// 从start开始向前查找距pos最近的路径点下标，失败返回NoIndex；
	// start为0时做全量扫描（仅用于会话引导定位），否则为有界前向搜索
	NearestIndex(start int, pos geometry.Point) int
	// 两个路径点下标之间的沿线弦长（相邻路径点欧氏距离之和）
	DistanceBetween(i, j int) float64

	// 将路径s坐标转换为xy(z)坐标
	GetPositionByS(s float64) geometry.Point
	// 根据路径s坐标计算切向角度
	GetDirectionByS(s float64) float64
}
