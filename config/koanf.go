package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载并校验配置。
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// 环境变量中以逗号分隔的列表字段
var sliceConfigPaths = []string{
	"security.cors_origins",
	"recommend.blacklist",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		parts := strings.Split(s, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

var envMappings = map[string]string{
	"port":      "server.port",
	"http_port": "server.port",
	"http_host": "server.host",

	"places_csv":  "data.places_path",
	"ratings_csv": "data.ratings_path",
	"users_csv":   "data.users_path",

	"recommend_top_k":         "recommend.top_k",
	"recommend_clusters":      "recommend.clusters",
	"recommend_seed":          "recommend.seed",
	"recommend_recall_source": "recommend.recall_source",
	"pipeline_path":           "recommend.pipeline_path",
	"blacklist":               "recommend.blacklist",

	"model_type":        "model.type",
	"model_endpoint":    "model.endpoint",
	"model_name":        "model.name",
	"model_version":     "model.version",
	"model_timeout":     "model.timeout",
	"model_batch_size":  "model.batch_size",
	"model_user_input":  "model.user_input",
	"model_place_input": "model.place_input",

	"store_type":     "store.type",
	"redis_addr":     "store.addr",
	"redis_password": "store.password",
	"redis_db":       "store.db",
	"store_prefix":   "store.prefix",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc 只接受映射表中的环境变量，其余返回空串被忽略。
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func itoa(n int) string { return strconv.Itoa(n) }
