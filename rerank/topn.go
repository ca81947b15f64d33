package rerank

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
)

// TopNNode 是 Top-N 截断节点，在排序之后截取前 N 个景点。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &rank.ScoreSort{},
//	        &rerank.Diversity{MaxPerKey: 2},
//	        &rerank.TopNNode{N: 5},
//	    },
//	}
type TopNNode struct {
	// N <= 0 时不截断
	N int
}

var _ pipeline.Node = (*TopNNode)(nil)

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	// 请求参数 top_k 优先
	if v, ok := rctx.Param("top_k"); ok {
		if k, ok := v.(int); ok && k > 0 {
			limit = k
		}
	}
	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}
