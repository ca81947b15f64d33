package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个候选景点是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Prepared 由需要按请求预取数据的过滤器实现（例如按用户读取已评分集合），
// FilterNode 在遍历 items 之前调用一次。
type Prepared interface {
	Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error)
}
