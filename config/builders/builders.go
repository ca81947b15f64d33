// Package builders 在 init 中注册内置 Node 的配置构建逻辑。
package builders

import (
	"fmt"

	"github.com/rushteam/placerec/config"
	"github.com/rushteam/placerec/filter"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/conv"
	"github.com/rushteam/placerec/rank"
	"github.com/rushteam/placerec/rerank"
)

func init() {
	config.Register("filter.self", BuildSelfFilterNode)
	config.Register("filter.expr", BuildExprFilterNode)
	config.Register("filter.blacklist", BuildBlacklistNode)
	config.Register("rank.score", BuildScoreSortNode)
	config.Register("rerank.diversity", BuildDiversityNode)
	config.Register("rerank.topn", BuildTopNNode)
}

func BuildSelfFilterNode(map[string]any) (pipeline.Node, error) {
	return filter.NewFilterNode(filter.SelfFilter{}), nil
}

// BuildExprFilterNode config: {expr: "item.price <= 20000"}
func BuildExprFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, fmt.Errorf("expr not found")
	}
	f, err := filter.NewExprFilter(expr)
	if err != nil {
		return nil, err
	}
	return filter.NewFilterNode(f), nil
}

// BuildBlacklistNode config: {place_ids: [12, 40]}；存储中的黑名单由引擎注入。
func BuildBlacklistNode(cfg map[string]any) (pipeline.Node, error) {
	ids := conv.SliceAnyToInt64(cfg["place_ids"])
	return filter.NewFilterNode(filter.NewBlacklistFilter(ids, nil, "")), nil
}

func BuildScoreSortNode(map[string]any) (pipeline.Node, error) {
	return &rank.ScoreSort{}, nil
}

// BuildDiversityNode config: {label_key: category, max_per_key: 2}
func BuildDiversityNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		LabelKey:  conv.ConfigGet(cfg, "label_key", "category"),
		MaxPerKey: int(conv.ConfigGetInt64(cfg, "max_per_key", 1)),
	}, nil
}

// BuildTopNNode config: {n: 5}
func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	n := conv.ConfigGetInt64(cfg, "n", 0)
	if n < 0 {
		return nil, fmt.Errorf("n must be >= 0, got %d", n)
	}
	return &rerank.TopNNode{N: int(n)}, nil
}
