package planner

import (
	"math"

	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
)

// 红灯减速曲线：v = sqrt(2 * kSlow * dist)，等价于匀减速
const (
	kSlow         = 5.0 // 减速曲线系数（m^1/2·s^-1）
	distMin       = 6.0 // 停止线前需要保留的距离（米）
	vehicleLength = 4.0 // 车辆长度（米）
	latencyFactor = 0.1 // 反应时间距离系数（秒），乘以窗口起点速度
	creepV        = 1.0 // 低于该值的目标速度直接压为0，抑制蠕行（米/秒）
)

// applyStopProfile 在窗口上生成红灯减速停车曲线
// 功能：为当前红灯事件计算并冻结停车点，然后就地改写窗口速度
// 参数：window-本周期窗口副本，forwardIndex-当前前向下标
// 算法说明：
// 1. 无合格红灯时清除停车点承诺并直接返回（窗口保持标称速度）
// 2. 首次进入红灯事件时计算承诺：
//    distanceToLight为前向下标到红灯锚点的沿线弦长（非直线距离），
//    brakingDistance = max(distanceToLight - distMin - vehicleLength - 反应距离, 0)，
//    在[forwardIndex, activeStopIndex)中找沿线距离最接近brakingDistance的下标并冻结
// 3. offset = 承诺下标 - forwardIndex，即停车点在窗口内的位置：
//    offset超出窗口长度时本周期不修改（停车点在前视范围之外）；
//    offset<=0时整个窗口置0（车辆已到达/越过停车位置）；
//    否则从窗口末端向前逐点赋值：停车点及之后置0，之前按
//    v = sqrt(2*kSlow*d)赋值并与原目标速度取小——曲线只降速，
//    绝不超过标称速度或先前更低的赋值
func (p *Planner) applyStopProfile(window []entity.Waypoint, forwardIndex int) {
	if p.state.activeStopIndex == entity.NoIndex {
		// 红灯事件结束，下一次事件重新计算停车点
		p.state.commitment = stopCommitment{}
		return
	}
	if len(window) == 0 {
		return
	}

	if !p.state.commitment.committed {
		distanceToLight := p.route.DistanceBetween(forwardIndex, p.state.activeStopIndex)
		latency := latencyFactor * window[0].V
		brakingDistance := math.Max(distanceToLight-distMin-vehicleLength-latency, 0)
		p.state.commitment = stopCommitment{
			committed: true,
			index:     p.findStopIndex(forwardIndex, p.state.activeStopIndex, brakingDistance),
		}
		log.Debugf("planner: committed stop index %d for red light at %d (braking distance %.2fm)",
			p.state.commitment.index, p.state.activeStopIndex, brakingDistance)
	}

	offset := p.state.commitment.index - forwardIndex
	switch {
	case offset > len(window):
		// 停车点在前视范围之外，本周期不修改窗口
	case offset <= 0:
		for i := range window {
			window[i].V = 0
		}
	default:
		anchor := window[offset-1].XYZ
		for i := len(window) - 1; i >= 0; i-- {
			if i >= offset {
				window[i].V = 0
				continue
			}
			v := math.Sqrt(2 * kSlow * entity.PlaneDistance(window[i].XYZ, anchor))
			if v < creepV {
				v = 0
			}
			window[i].V = math.Min(v, window[i].V)
		}
	}
}

// findStopIndex 查找停车路径点下标
// 功能：在[start, end)中查找沿线距离最接近distance的下标
// 参数：start-搜索起点（前向下标），end-搜索终点（红灯锚点），distance-目标制动距离
// 返回：|沿线距离 - distance|最小的下标，相等时取先出现者
func (p *Planner) findStopIndex(start, end int, distance float64) int {
	minIndex := start
	minDelta := math.Inf(1)
	for i := start; i < end; i++ {
		d := p.route.DistanceBetween(start, i)
		if delta := math.Abs(distance - d); delta < minDelta {
			minDelta = delta
			minIndex = i
		}
	}
	return minIndex
}
