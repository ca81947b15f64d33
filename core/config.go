package core

import "time"

// RecommendConfig 提供推荐链路的默认参数。
type RecommendConfig interface {
	// DefaultTopK 返回默认的推荐条数
	DefaultTopK() int

	// DefaultClusters 返回默认的价格聚类数
	DefaultClusters() int

	// DefaultSeed 返回聚类使用的随机种子
	DefaultSeed() int64

	// DefaultBatchSize 返回模型批量预测的单批大小
	DefaultBatchSize() int

	// DefaultTimeout 返回模型调用的超时时间
	DefaultTimeout() time.Duration
}

// DefaultRecommendConfig 是默认配置实现。
type DefaultRecommendConfig struct{}

func (c *DefaultRecommendConfig) DefaultTopK() int { return 5 }

func (c *DefaultRecommendConfig) DefaultClusters() int { return 5 }

func (c *DefaultRecommendConfig) DefaultSeed() int64 { return 42 }

func (c *DefaultRecommendConfig) DefaultBatchSize() int { return 512 }

func (c *DefaultRecommendConfig) DefaultTimeout() time.Duration { return 5 * time.Second }
