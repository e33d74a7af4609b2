// Package xconf 加载并监视 agent 配置。
//
// 底层使用 koanf：rawbytes provider + yaml/json parser，XAPM_* 环境变量可覆盖文件（[WithEnv]）。
// [LoadAgent] 将配置解码为 [Agent] 并补全默认值、校验；
// [Watch] 基于 fsnotify 在文件变更时重载，调用方在回调中把新配置应用到 shim。
package xconf

import "github.com/knadh/koanf/v2"

// Format 定义配置文件格式。
type Format string

// 支持的配置格式。
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Config 定义配置接口。
type Config interface {
	// Client 返回底层的 koanf 实例。
	Client() *koanf.Koanf

	// Unmarshal 将指定路径的配置反序列化到目标结构体，path 为空时反序列化整个配置。
	Unmarshal(path string, target any) error

	// Reload 重新加载配置文件，并发安全。从字节数据创建的 Config 返回 ErrReloadBytes。
	Reload() error

	// Path 返回配置文件路径，从字节数据创建时为空。
	Path() string

	// Format 返回配置格式。
	Format() Format
}
