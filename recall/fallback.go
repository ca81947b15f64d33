package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/utils"
)

// Fallback 按顺序尝试召回源，返回第一个找到目标景点的源的结果。
//
// 只有 NOT_FOUND 会转到下一个源（例如存储中还没有该景点的邻居表）；
// 其他错误直接返回。全部 NOT_FOUND 时返回最后一个错误。
type Fallback struct {
	Sources []Source
}

var (
	_ Source        = (*Fallback)(nil)
	_ pipeline.Node = (*Fallback)(nil)
)

func (n *Fallback) Name() string        { return "recall.fallback" }
func (n *Fallback) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *Fallback) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.Recall(ctx, rctx)
}

func (n *Fallback) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	var lastErr error
	for _, src := range n.Sources {
		items, err := src.Recall(ctx, rctx)
		if core.IsNotFound(err) {
			lastErr = err
			continue
		}
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			it.PutLabel("recall_source", utils.Label{Value: src.Name(), Source: "recall"})
		}
		return items, nil
	}
	if lastErr == nil {
		lastErr = core.ErrPlaceNotFound
	}
	return nil, lastErr
}
