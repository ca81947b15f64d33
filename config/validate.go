package config

import (
	"fmt"
	"strings"
)

// Validate 校验配置取值范围
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Data.PlacesPath == "" || c.Data.RatingsPath == "" {
		return fmt.Errorf("data.places_path and data.ratings_path are required")
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateModel(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitRequests <= 0 || c.Security.RateLimitWindow <= 0) {
		return fmt.Errorf("security.rate_limit_requests and rate_limit_window must be positive")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.TopK <= 0 {
		return fmt.Errorf("recommend.top_k must be positive, got %d", r.TopK)
	}
	if r.Clusters <= 0 {
		return fmt.Errorf("recommend.clusters must be positive, got %d", r.Clusters)
	}
	if r.NeighborsPublished < 0 {
		return fmt.Errorf("recommend.neighbors_published must be >= 0")
	}
	switch r.RecallSource {
	case "snapshot":
	case "store":
		if c.Store.Type == "" {
			return fmt.Errorf("recommend.recall_source=store requires store.type")
		}
	default:
		return fmt.Errorf("recommend.recall_source must be snapshot or store, got %q", r.RecallSource)
	}
	return nil
}

func (c *Config) validateModel() error {
	m := c.Model
	switch m.Type {
	case "":
		return nil
	case "tf_serving", "rpc":
	default:
		return fmt.Errorf("model.type must be tf_serving or rpc, got %q", m.Type)
	}
	if m.Endpoint == "" {
		return fmt.Errorf("model.endpoint is required when model.type is set")
	}
	if m.Type == "tf_serving" && m.Name == "" {
		return fmt.Errorf("model.name is required for tf_serving")
	}
	if m.BatchSize <= 0 {
		return fmt.Errorf("model.batch_size must be positive, got %d", m.BatchSize)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Type {
	case "", "memory":
		return nil
	case "redis":
		if c.Store.Addr == "" {
			return fmt.Errorf("store.addr is required for redis")
		}
		return nil
	default:
		return fmt.Errorf("store.type must be memory or redis, got %q", c.Store.Type)
	}
}
