package recall

import (
	"context"
	"strconv"

	"github.com/rushteam/placerec/core"
)

// Hot 是热门景点召回源，读取 Store 中按平均评分排序的有序集合。
// Store 不可用或为空时退回到内存中的 IDs。
type Hot struct {
	Store core.KeyValueStore
	Key   string  // 例如 "placerec:hot"
	Limit int64   // 读取前 Limit 个，默认 100
	IDs   []int64 // fallback 内存列表（已按热度排序）
}

func (r *Hot) Name() string { return "recall.hot" }

func (r *Hot) Recall(
	ctx context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	limit := r.Limit
	if limit <= 0 {
		limit = 100
	}

	if r.Store != nil && r.Key != "" {
		members, err := r.Store.ZRange(ctx, r.Key, 0, limit-1)
		if err == nil && len(members) > 0 {
			out := make([]*core.Item, 0, len(members))
			for _, m := range members {
				id, err := strconv.ParseInt(m, 10, 64)
				if err != nil {
					continue
				}
				it := core.NewItem(id)
				if score, err := r.Store.ZScore(ctx, r.Key, m); err == nil {
					it.Score = score
				}
				out = append(out, it)
			}
			return out, nil
		}
	}

	ids := r.IDs
	if int64(len(ids)) > limit {
		ids = ids[:limit]
	}
	out := make([]*core.Item, len(ids))
	for i, id := range ids {
		out[i] = core.NewItem(id)
	}
	return out, nil
}
