// Package store 提供 core.KeyValueStore 的实现：MemoryStore 与 RedisStore。
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/placerec/core"
)

// 存储类型
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Config 是存储配置
type Config struct {
	Type        string
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// New 根据配置创建存储，Type 为空时使用内存存储。
func New(ctx context.Context, cfg Config) (core.KeyValueStore, error) {
	switch cfg.Type {
	case "", TypeMemory:
		return NewMemoryStore(), nil
	case TypeRedis:
		return NewRedisStore(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}
