package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：支持MongoDB数据库和文件系统两种数据源，支持缓存机制
type InputPath struct {
	DB        string `yaml:"db"`                   // 数据库名
	Col       string `yaml:"col"`                  // 集合名
	Cache     string `yaml:"cache,omitempty"`      // 缓存文件名，为空则采用默认路径{db}.{col}.pb
	OnlyCache bool   `yaml:"only_cache,omitempty"` // 只从缓存中获取
	File      string `yaml:"file,omitempty"`       // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
func (p InputPath) GetColl() string {
	return p.Col
}

// GetCachePath 获取缓存文件路径
// 功能：返回缓存文件的完整路径
// 算法说明：
// 1. 如果指定了缓存路径，直接返回
// 2. 否则使用默认命名规则：{数据库名}.{集合名}.pb
func (p InputPath) GetCachePath() string {
	if p.Cache != "" {
		return p.Cache
	}
	return p.DB + "." + p.Col + ".pb"
}

// Input 指定规划器所有输入数据的配置项
// 功能：定义路径跟踪规划所需的输入数据配置
// 说明：路径以mapv2.Lane protobuf的形式提供（中心线折线+限速）
type Input struct {
	URI   string    `yaml:"uri"`   // MongoDB连接字符串
	Route InputPath `yaml:"route"` // 路径（Lane protobuf）
}

// ControlStep 指定规划周期时间范围和间隔的配置项
// 功能：定义周期控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 规划器控制配置
// 功能：定义规划核心的控制参数
type Control struct {
	Step ControlStep `yaml:"step"`
	// 每周期发布的前视路径点数量
	Lookahead int `yaml:"lookahead,omitempty"`
	// 会话限速（米/秒），0表示只采用路径自带的标称限速
	SpeedLimit float64 `yaml:"speed_limit,omitempty"`
}

// LightConfig 信号灯配置
// 功能：定义一个红绿两相位的停止线信号灯
// 说明：信号灯应按沿路径的先后顺序给出（升序），这是灯观测列表顺序的来源
type LightConfig struct {
	ID     int32   `yaml:"id"`               // 信号灯ID
	X      float64 `yaml:"x"`                // 停止线x坐标
	Y      float64 `yaml:"y"`                // 停止线y坐标
	Red    float64 `yaml:"red"`              // 红灯相位时长（秒）
	Green  float64 `yaml:"green"`            // 绿灯相位时长（秒）
	Start  string  `yaml:"start,omitempty"`  // 初始相位（red/green，默认green）
	Offset float64 `yaml:"offset,omitempty"` // 初始相位已经过的时间（秒）
}

// VehicleConfig 仿真车辆配置
// 功能：定义驱动规划闭环的运动学车辆参数
type VehicleConfig struct {
	StartS                 float64 `yaml:"start_s"`                            // 初始沿路径位置（米）
	MaxSpeed               float64 `yaml:"max_speed,omitempty"`                // 最大速度（米/秒）
	MaxAcceleration        float64 `yaml:"max_acceleration,omitempty"`         // 最大加速度（米/秒²）
	MaxBrakingAcceleration float64 `yaml:"max_braking_acceleration,omitempty"` // 最大制动加速度（米/秒²，负值）
	Seed                   uint64  `yaml:"seed,omitempty"`                     // 随机数种子
}

// Scenario 仿真场景配置
// 功能：定义闭环演示所需的车辆与信号灯
type Scenario struct {
	Vehicle VehicleConfig `yaml:"vehicle"`
	Lights  []LightConfig `yaml:"lights,omitempty"`
}

// Config YAML配置文件的根结构
type Config struct {
	Input    Input    `yaml:"input"`    // 输入
	Control  Control  `yaml:"control"`  // 规划过程控制
	Scenario Scenario `yaml:"scenario"` // 仿真场景
}
