package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// SelfFilter 过滤掉请求中的目标景点本身（按 ID 判断，而不是按位置）。
type SelfFilter struct{}

func (SelfFilter) Name() string { return "filter.self" }

func (SelfFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if rctx == nil || item == nil {
		return false, nil
	}
	return item.ID == rctx.PlaceID, nil
}
