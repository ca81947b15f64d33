package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该景点就会被过滤掉。
// 过滤器返回 INVALID_INPUT 错误时整个 Process 失败，其他错误保留该景点。
type FilterNode struct {
	Filters []Filter
}

var _ pipeline.Node = (*FilterNode)(nil)

// NewFilterNode 组合多个过滤器
func NewFilterNode(filters ...Filter) *FilterNode {
	return &FilterNode{Filters: filters}
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	filters := make([]Filter, 0, len(n.Filters))
	for _, f := range n.Filters {
		if p, ok := f.(Prepared); ok {
			prepared, err := p.Prepare(ctx, rctx)
			if err != nil {
				return nil, err
			}
			f = prepared
		}
		filters = append(filters, f)
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		reason := ""
		for _, f := range filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if core.IsInvalidInput(err) {
				// 表达式写错对每个景点都一样，直接让请求失败
				return nil, err
			}
			if err != nil {
				// 其他错误保留该景点，不中断流程
				continue
			}
			if ok {
				reason = f.Name()
				break
			}
		}

		if reason != "" {
			item.PutLabel("filtered", utils.Label{Value: "true", Source: reason})
			continue
		}
		out = append(out, item)
	}

	return out, nil
}
