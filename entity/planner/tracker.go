package planner

import (
	"git.fiblab.net/general/common/v2/parallel"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/entity"
)

// lightTracker 信号灯锚定与选择
// 功能：把信号灯位置一次性映射为路径点锚点，之后每周期从中
// 选出前方最近的合格红灯
// 说明：锚点缓存为"一次计算、此后冻结"，带显式anchored标志
// （信号灯假定静止，不重算）
type lightTracker struct {
	route entity.IRoute

	anchored bool  // 锚点缓存是否已建立
	anchors  []int // 每个灯（按观测列表位置）最近的路径点下标，可能为entity.NoIndex

	obs []entity.LightObservation // 最近一次观测
}

// update 记录观测并按需建立锚点缓存
// 功能：保存最近一批观测；首批非空观测到达且路径已设置时，
// 对每个灯做一次引导定位并缓存锚点
// 说明：锚点搜索互相独立，初始化时并行展开
func (t *lightTracker) update(obs []entity.LightObservation) {
	t.obs = obs
	if t.anchored || t.route == nil || len(obs) == 0 {
		return
	}
	t.anchors = parallel.GoMap(obs, func(o entity.LightObservation) int {
		return t.route.NearestIndex(0, o.XYZ)
	})
	t.anchored = true
	found := 0
	for _, a := range t.anchors {
		if a != entity.NoIndex {
			found++
		}
	}
	log.Infof("anchored %d/%d traffic lights to the route", found, len(t.anchors))
}

// resolve 解析当前周期的红灯停车目标
// 功能：在锚定的信号灯中选出前方最近的合格红灯锚点
// 参数：forwardIndex-当前前向下标
// 返回：停车目标的路径点下标，无合格红灯时返回entity.NoIndex
// 算法说明：
// 按列表位置降序归约、不提前退出："最后一个合格候选胜出"，
// 即所有合格红灯中列表位置最小者。灯按沿路径升序提供时，
// 这正是前方最近的红灯；若提供顺序不满足该假设，结果并非
// 距离最近——此为有意保留的选择规则，不是按距离的最小化。
// 合格条件：锚点有效、严格位于forwardIndex之前方、状态为RED
func (t *lightTracker) resolve(forwardIndex int) int {
	if !t.anchored {
		return entity.NoIndex
	}
	n := len(t.obs)
	if len(t.anchors) < n {
		// 观测数量多于锚定数量时只考虑已锚定的部分
		n = len(t.anchors)
	}
	stop := entity.NoIndex
	for i := n - 1; i >= 0; i-- {
		anchor := t.anchors[i]
		if anchor == entity.NoIndex {
			continue
		}
		if anchor > forwardIndex && t.obs[i].State == mapv2.LightState_LIGHT_STATE_RED {
			stop = anchor
		}
	}
	return stop
}
