package config

import "time"

// ConfigPathEnvVar 指定配置文件路径的环境变量
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths 未指定 CONFIG_PATH 时依次查找的配置文件
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config 是服务的完整配置，优先级：环境变量 > 配置文件 > 默认值。
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Recommend RecommendConfig `koanf:"recommend"`
	Model     ModelConfig     `koanf:"model"`
	Store     StoreConfig     `koanf:"store"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DataConfig 三个 CSV 文件路径；UsersPath 为空时看板的年龄分布全为 0。
type DataConfig struct {
	PlacesPath  string `koanf:"places_path"`
	RatingsPath string `koanf:"ratings_path"`
	UsersPath   string `koanf:"users_path"`
}

type RecommendConfig struct {
	TopK     int   `koanf:"top_k"`
	Clusters int   `koanf:"clusters"`
	Seed     int64 `koanf:"seed"`

	// NeighborsPublished 发布到 Store 的每个景点邻居数
	NeighborsPublished int `koanf:"neighbors_published"`

	// RecallSource: snapshot（默认）/ store
	RecallSource string `koanf:"recall_source"`

	// PipelinePath 可选的 YAML pipeline 配置
	PipelinePath string `koanf:"pipeline_path"`

	// Blacklist 下架景点
	Blacklist []int64 `koanf:"blacklist"`
}

// ModelConfig Type 为空时不启用神经网络推荐
type ModelConfig struct {
	Type       string        `koanf:"type"`
	Endpoint   string        `koanf:"endpoint"`
	Name       string        `koanf:"name"`
	Version    string        `koanf:"version"`
	UserInput  string        `koanf:"user_input"`
	PlaceInput string        `koanf:"place_input"`
	Timeout    time.Duration `koanf:"timeout"`
	BatchSize  int           `koanf:"batch_size"`
}

// StoreConfig Type 为空时不发布快照
type StoreConfig struct {
	Type     string `koanf:"type"`
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
	Prefix   string `koanf:"prefix"`
}

type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Data: DataConfig{
			PlacesPath:  "data/tourism_with_id.csv",
			RatingsPath: "data/tourism_rating.csv",
			UsersPath:   "data/user.csv",
		},
		Recommend: RecommendConfig{
			TopK:               5,
			Clusters:           5,
			Seed:               42,
			NeighborsPublished: 20,
			RecallSource:       "snapshot",
		},
		Model: ModelConfig{
			UserInput:  "user_input",
			PlaceInput: "place_input",
			Timeout:    5 * time.Second,
			BatchSize:  512,
		},
		Store: StoreConfig{
			Prefix: "placerec",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return s.Host + ":" + itoa(s.Port)
}
