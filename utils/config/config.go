package config

const (
	defaultLookahead = 100 // 默认前视路径点数量
)

// RuntimeConfig 运行时配置
// 功能：存储规划器运行时的配置信息
// 说明：将YAML配置转换为运行时可用的配置对象，并填充默认值
type RuntimeConfig struct {
	All Config  // 全部配置
	C   Control // 全局控制配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，进行配置验证与默认值填充
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 算法说明：
// 1. 创建运行时配置对象
// 2. 设置默认值：未指定前视数量时采用defaultLookahead
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Lookahead <= 0 {
		rc.C.Lookahead = defaultLookahead
	}

	return rc
}
