package light

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	mapv2connect "git.fiblab.net/sim/protos/v2/go/city/map/v2/mapv2connect"
	"git.fiblab.net/sim/syncer/v3"
)

// rpcHandler 信号灯RPC处理器
// 功能：将LightManager包装为TrafficLightService处理器
// 说明：只实现相位跳转与开关两个接口，其余方法由嵌入的Unimplemented处理器兜底
type rpcHandler struct {
	mapv2connect.UnimplementedTrafficLightServiceHandler

	m *LightManager
}

// Register 将信号灯管理器注册到sidecar
// 功能：将信号灯管理器注册为RPC服务，提供远程调用接口
// 参数：sidecar-同步器侧车实例
// 说明：请求中的JunctionId字段承载信号灯ID
func (m *LightManager) Register(sidecar *syncer.Sidecar) {
	h := &rpcHandler{m: m}
	sidecar.Register(
		mapv2connect.TrafficLightServiceName,
		func(opts ...connect.HandlerOption) (pattern string, handler http.Handler) {
			return mapv2connect.NewTrafficLightServiceHandler(h, opts...)
		},
	)
}

// SetTrafficLightPhase RPC接口：设置指定信号灯的相位
// 功能：处理SetTrafficLightPhase RPC请求，将信号灯跳转到指定相位
// 参数：ctx-上下文，in-包含信号灯ID、相位下标（0红1绿）和剩余时间的请求
// 返回：设置结果响应
// 说明：写入buffer，下一个Prepare后生效
func (h *rpcHandler) SetTrafficLightPhase(
	ctx context.Context, in *connect.Request[mapv2.SetTrafficLightPhaseRequest],
) (*connect.Response[mapv2.SetTrafficLightPhaseResponse], error) {
	req := in.Msg
	l, err := h.m.GetOrError(req.JunctionId)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if req.TimeRemaining < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errBadRemainingTime)
	}
	if err := l.setPhase(req.PhaseIndex, req.TimeRemaining); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	return connect.NewResponse(&mapv2.SetTrafficLightPhaseResponse{}), nil
}

// SetTrafficLightStatus RPC接口：设置指定信号灯的开关状态
// 功能：处理SetTrafficLightStatus RPC请求，设置信号灯的开关状态
// 参数：ctx-上下文，in-包含信号灯ID和状态标志的请求
// 返回：设置结果响应
// 说明：true表示正常工作，false表示失效（对外视为绿灯、不阻塞）
func (h *rpcHandler) SetTrafficLightStatus(
	ctx context.Context, in *connect.Request[mapv2.SetTrafficLightStatusRequest],
) (*connect.Response[mapv2.SetTrafficLightStatusResponse], error) {
	req := in.Msg
	l, err := h.m.GetOrError(req.JunctionId)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	l.setStatus(req.Ok)
	return connect.NewResponse(&mapv2.SetTrafficLightStatusResponse{}), nil
}
