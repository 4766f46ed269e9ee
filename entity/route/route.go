package route

import (
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
)

const (
	// searchDistance 有界最近点搜索的放弃阈值（米）
	// 说明：路径采样足够密集且车辆只向前运动时，平面距离一旦超过该阈值
	// 即可断定最近点已经越过，继续向前扫描没有意义
	searchDistance = 5.0
)

// Route 路径实体
// 功能：表示一次会话内固定不变的有序路径，包含几何信息与只读的路径点模板
// 说明：路径加载后不再被修改或重排，下标空间为[0, N)，不支持环绕
type Route struct {
	line           []entity.Waypoint            // 只读的基础路径点
	points         []geometry.Point             // 路径点坐标折线
	lineLengths    []float64                    // 折线点对应的累计长度列表
	lineDirections []geometry.PolylineDirection // 折线段每一段的方向（atan2）
	length         float64                      // 以折线的长度为路径长度
	maxV           float64                      // 路径标称限速
}

// newRoute 创建并初始化一个新的Route实例
// 功能：根据折线坐标与标称限速构造路径，预计算累计长度与切向角度
// 参数：points-路径点坐标折线，maxV-标称限速
// 返回：初始化完成的Route实例
// 说明：每个路径点的初始目标速度为标称限速，朝向取所在折线段的方向
func newRoute(points []geometry.Point, maxV float64) *Route {
	r := &Route{
		points: points,
		maxV:   maxV,
	}
	r.lineLengths = geometry.GetPolylineLengths2D(points)
	r.length = r.lineLengths[len(r.lineLengths)-1]
	r.lineDirections = geometry.GetPolylineDirections(points)
	r.line = lo.Map(points, func(p geometry.Point, i int) entity.Waypoint {
		// 末点沿用最后一段的方向
		d := r.lineDirections[lo.Clamp(i, 0, len(r.lineDirections)-1)]
		return entity.Waypoint{
			XYZ:       p,
			Direction: d.Direction,
			V:         maxV,
		}
	})
	return r
}

// Len 路径点数量
func (r *Route) Len() int {
	return len(r.line)
}

// Waypoints 获取只读的基础路径点列表
// 说明：调用方不得修改返回的切片内容，需要修改时必须先复制
func (r *Route) Waypoints() []entity.Waypoint {
	return r.line
}

// Waypoint 获取下标为i的路径点（副本）
func (r *Route) Waypoint(i int) entity.Waypoint {
	return r.line[i]
}

// Length 以折线的长度为路径长度
func (r *Route) Length() float64 {
	return r.length
}

// MaxV 路径的标称限速
func (r *Route) MaxV() float64 {
	return r.maxV
}

// NearestIndex 从start开始向前查找距pos最近的路径点下标
// 功能：增量式最近路径点搜索，失败返回entity.NoIndex
// 参数：start-起始下标，pos-目标位置
// 返回：平面距离最小的路径点下标，路径为空或搜索失败时返回entity.NoIndex
// 算法说明：
// 1. start为0时为会话引导定位，做无界全量扫描
// 2. 否则做有界前向搜索：从start向前扫描并跟踪最小平面距离，
//    一旦距离超过searchDistance立即放弃（最近点只会在窄前向窗口内）
// 3. 返回扫描中距离最小的下标
// 说明：不做后向搜索，依赖车辆只向前运动的假设；
// 若真实最近点位于start之前则无法恢复，属于已知限制
func (r *Route) NearestIndex(start int, pos geometry.Point) int {
	if r == nil || len(r.line) == 0 {
		return entity.NoIndex
	}

	maxDistance := math.Inf(1)
	if start != 0 {
		maxDistance = searchDistance
	}
	minDist := math.Inf(1)
	minIndex := entity.NoIndex
	for i := start; i < len(r.line); i++ {
		d := entity.PlaneDistance(r.line[i].XYZ, pos)
		if d > maxDistance {
			break
		}
		if d < minDist {
			minDist = d
			minIndex = i
		}
	}
	return minIndex
}

// DistanceBetween 两个路径点下标之间的沿线弦长
// 功能：计算i到j之间相邻路径点欧氏距离之和（非两点直线距离）
// 说明：累计长度列表在构造时已预计算，差分即为沿线距离
func (r *Route) DistanceBetween(i, j int) float64 {
	if i < 0 || i >= len(r.line) || j < 0 || j >= len(r.line) {
		log.Panicf("route: DistanceBetween(%d, %d) out of range [0, %d)", i, j, len(r.line))
	}
	return math.Abs(r.lineLengths[j] - r.lineLengths[i])
}

// GetPositionByS 将路径s坐标转换为xy(z)坐标
// 功能：在折线上按s坐标插值求位置
func (r *Route) GetPositionByS(s float64) (pos geometry.Point) {
	if s < r.lineLengths[0] || s > r.lineLengths[len(r.lineLengths)-1] {
		log.Debugf("get position with s %v out of range{%v,%v}",
			s, r.lineLengths[0], r.lineLengths[len(r.lineLengths)-1])
		s = lo.Clamp(s, r.lineLengths[0], r.lineLengths[len(r.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(r.lineLengths, s); i == 0 {
		pos = r.points[0]
	} else {
		sHigh, sLow := r.lineLengths[i], r.lineLengths[i-1]
		k := (s - sLow) / (sHigh - sLow)
		pos = geometry.Blend(r.points[i-1], r.points[i], k)
	}
	return
}

// GetDirectionByS 根据路径s坐标计算切向角度
func (r *Route) GetDirectionByS(s float64) float64 {
	if s < r.lineLengths[0] || s > r.lineLengths[len(r.lineLengths)-1] {
		s = lo.Clamp(s, r.lineLengths[0], r.lineLengths[len(r.lineLengths)-1])
	}
	if i := sort.SearchFloat64s(r.lineLengths, s); i == 0 {
		return r.lineDirections[0].Direction
	} else {
		return r.lineDirections[i-1].Direction
	}
}
