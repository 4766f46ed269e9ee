package entity

import (
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/clock"
	"github.com/tsinghua-fib-lab/waypoint-planner-oss/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	RouteManager() IRouteManager
	LightManager() ILightManager
	Planner() IPlanner
	RuntimeConfig() *config.RuntimeConfig
}
