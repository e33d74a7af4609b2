package xconf

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/v2"
)

// EnvPrefix 环境变量覆盖的前缀。
const EnvPrefix = "XAPM_"

// EnvKeys 环境变量到配置键的映射。值为字符串，解码时按目标字段类型转换
// （如 XAPM_MIDDLEWARE_SAMPLE_RATE=0.5、XAPM_ENABLED=false）。
var EnvKeys = map[string]string{
	EnvPrefix + "ENABLED":                "enabled",
	EnvPrefix + "APP_NAME":               "app_name",
	EnvPrefix + "FRAMEWORK":              "framework",
	EnvPrefix + "MIDDLEWARE_ENABLED":     "middleware.enabled",
	EnvPrefix + "MIDDLEWARE_SAMPLE_RATE": "middleware.sample_rate",
	EnvPrefix + "MIDDLEWARE_NAMESPACE":   "middleware.namespace",
	EnvPrefix + "LOG_LEVEL":              "log.level",
	EnvPrefix + "LOG_FORMAT":             "log.format",
	EnvPrefix + "LOG_FILE":               "log.file",
	EnvPrefix + "LOG_ADD_SOURCE":         "log.add_source",
}

// applyEnv 把 environ 中已知的 XAPM_* 变量写入 k，未知变量忽略。
func applyEnv(k *koanf.Koanf, environ []string) error {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		key, known := EnvKeys[name]
		if !known {
			continue
		}
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrParseFailed, name, err)
		}
	}
	return nil
}
