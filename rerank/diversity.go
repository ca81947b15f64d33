package rerank

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
)

// Diversity 按类别打散：同一类别最多保留 MaxPerKey 个（保持输入顺序）。
// 类别来源优先级：
// - label[LabelKey].Value
// - meta[LabelKey] (string)
type Diversity struct {
	LabelKey  string // 默认 "category"
	MaxPerKey int    // 默认 1
}

var _ pipeline.Node = (*Diversity)(nil)

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.LabelKey
	if key == "" {
		key = core.MetaCategory
	}
	max := n.MaxPerKey
	if max <= 0 {
		max = 1
	}

	seen := make(map[string]int, 8)
	out := make([]*core.Item, 0, len(items))

	for _, it := range items {
		if it == nil {
			continue
		}

		cate := ""
		if lbl, ok := it.Labels[key]; ok {
			cate = lbl.Value
		}
		if cate == "" {
			cate = it.MetaString(key)
		}

		if cate == "" {
			out = append(out, it)
			continue
		}
		if seen[cate] >= max {
			continue
		}
		seen[cate]++
		out = append(out, it)
	}

	return out, nil
}
