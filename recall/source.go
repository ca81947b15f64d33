package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Source 表示一个召回源（相似景点 / 全量景点 / 热门榜 / 存储中的邻居表）。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Node 把 Source 包装成召回阶段的 pipeline.Node，丢弃上游 items。
type Node struct {
	Source Source
}
