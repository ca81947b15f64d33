package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Catalog 召回全部景点，按 IDs 的顺序输出（调用方保证升序）。
type Catalog struct {
	IDs []int64
}

func (r *Catalog) Name() string { return "recall.catalog" }

func (r *Catalog) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	out := make([]*core.Item, len(r.IDs))
	for i, id := range r.IDs {
		out[i] = core.NewItem(id)
	}
	return out, nil
}
