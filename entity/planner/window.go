package planner

import (
	"math"

	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
)

// extractWindow 抽取前视窗口
// 功能：复制路径点[forwardIndex, min(forwardIndex+lookahead, N))作为本周期窗口
// 参数：forwardIndex-当前前向下标
// 返回：窗口路径点副本列表
// 算法说明：
// 1. 前向下标到达或越过末点时，退化为单个静止路径点（速度0），不做环绕
// 2. 否则做对称的安全截断：end = min(forwardIndex+lookahead, N)
// 3. 窗口速度以会话限速封顶，作为路径点的标称目标速度
// 说明：只有窗口副本会被改写，基础路径保持只读
func (p *Planner) extractWindow(forwardIndex int) []entity.Waypoint {
	n := p.route.Len()
	if forwardIndex >= n-1 {
		wp := p.route.Waypoint(n - 1)
		wp.V = 0
		return []entity.Waypoint{wp}
	}
	end := forwardIndex + p.lookahead
	if end > n {
		end = n
	}
	window := make([]entity.Waypoint, end-forwardIndex)
	copy(window, p.route.Waypoints()[forwardIndex:end])
	for i := range window {
		window[i].V = math.Min(window[i].V, p.speedLimit)
	}
	return window
}
