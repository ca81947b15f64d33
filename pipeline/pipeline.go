package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rushteam/placerec/core"
)

// Observer 在每个 Node 执行后回调，用于打点（耗时、输入输出数量）。
type Observer func(node Node, elapsed time.Duration, in, out int, err error)

// Pipeline 把推荐逻辑拆成可组合的 Node 链：召回 → 过滤 → 排序 → 重排 → 后处理。
type Pipeline struct {
	Nodes    []Node
	Observer Observer
}

func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, rctx, cur)
		if p.Observer != nil {
			p.Observer(node, time.Since(start), len(cur), len(next), err)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Append 返回追加了 nodes 的新 Pipeline，原 Pipeline 不变。
func (p *Pipeline) Append(nodes ...Node) *Pipeline {
	merged := make([]Node, 0, len(p.Nodes)+len(nodes))
	merged = append(merged, p.Nodes...)
	merged = append(merged, nodes...)
	return &Pipeline{Nodes: merged, Observer: p.Observer}
}
