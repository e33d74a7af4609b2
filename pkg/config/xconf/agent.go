package xconf

import (
	"fmt"
	"math"
	"strings"

	"github.com/omeyang/xapm/pkg/observability/xlog"
)

// 默认值
const (
	DefaultFramework           = "Nextjs"
	DefaultMiddlewareNamespace = "Middleware/"
	DefaultSampleRate          = 1.0
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
)

// Agent agent 配置。
//
// 示例（YAML）：
//
//	enabled: true
//	app_name: shop
//	framework: Nextjs
//	middleware:
//	  enabled: true
//	  sample_rate: 0.5
//	  namespace: Middleware/
//	log:
//	  level: debug
//	  format: json
//	  file: /var/log/xapm/agent.log
type Agent struct {
	Enabled    bool       `koanf:"enabled"`
	AppName    string     `koanf:"app_name"`
	Framework  string     `koanf:"framework"`
	Middleware Middleware `koanf:"middleware"`
	Log        Log        `koanf:"log"`
}

// Middleware 中间件 segment 相关配置。
type Middleware struct {
	Enabled    bool    `koanf:"enabled"`
	SampleRate float64 `koanf:"sample_rate"`
	// Namespace span 名称的固定前缀（命名空间 token）。
	Namespace string `koanf:"namespace"`
}

// Log agent 自身日志配置。
type Log struct {
	Level      string `koanf:"level"`
	Format     string `koanf:"format"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	// AddSource 日志中附带调用位置。
	AddSource bool `koanf:"add_source"`
}

// DefaultAgent 返回默认配置：全部启用、全采样。
func DefaultAgent() Agent {
	return Agent{
		Enabled:   true,
		Framework: DefaultFramework,
		Middleware: Middleware{
			Enabled:    true,
			SampleRate: DefaultSampleRate,
			Namespace:  DefaultMiddlewareNamespace,
		},
		Log: Log{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Validate 校验配置。
func (a Agent) Validate() error {
	if strings.TrimSpace(a.Framework) == "" {
		return ErrEmptyFramework
	}
	rate := a.Middleware.SampleRate
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidSampleRate, rate)
	}
	if a.Log.Level != "" {
		if _, err := xlog.ParseLevel(a.Log.Level); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidLogLevel, err)
		}
	}
	return nil
}

// LoadAgent 在默认值之上解码整个配置并校验。
//
// 设计决策: 先填默认值再解码，配置文件中缺失的键保留默认值；
// 布尔字段因此只能显式写 false 关闭。
func LoadAgent(cfg Config) (Agent, error) {
	agent := DefaultAgent()
	if err := cfg.Unmarshal("", &agent); err != nil {
		return Agent{}, err
	}
	if agent.Middleware.Namespace == "" {
		agent.Middleware.Namespace = DefaultMiddlewareNamespace
	}
	if err := agent.Validate(); err != nil {
		return Agent{}, err
	}
	return agent, nil
}

// LoadAgentFile 从文件加载 Agent 配置，opts 同 [New]。
func LoadAgentFile(path string, opts ...Option) (Agent, Config, error) {
	cfg, err := New(path, opts...)
	if err != nil {
		return Agent{}, nil, err
	}
	agent, err := LoadAgent(cfg)
	if err != nil {
		return Agent{}, nil, err
	}
	return agent, cfg, nil
}
