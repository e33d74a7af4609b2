package xconf

import "errors"

var (
	// ErrEmptyPath 配置文件路径为空。
	ErrEmptyPath = errors.New("xconf: empty config path")

	// ErrUnsupportedFormat 不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xconf: unsupported config format")

	// ErrLoadFailed 配置加载失败。
	ErrLoadFailed = errors.New("xconf: failed to load config")

	// ErrParseFailed 配置解析失败。
	ErrParseFailed = errors.New("xconf: failed to parse config")

	// ErrUnmarshalFailed 配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xconf: failed to unmarshal config")

	// ErrReloadBytes 从字节数据创建的配置无法重载或监视。
	ErrReloadBytes = errors.New("xconf: config created from bytes cannot be reloaded")

	// ErrInvalidSampleRate middleware.sample_rate 不在 [0, 1]。
	ErrInvalidSampleRate = errors.New("xconf: middleware.sample_rate must be in [0, 1]")

	// ErrInvalidLogLevel log.level 无法识别。
	ErrInvalidLogLevel = errors.New("xconf: invalid log.level")

	// ErrEmptyFramework framework 为空。
	ErrEmptyFramework = errors.New("xconf: framework must not be empty")
)
