package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉运营下架的景点。
type BlacklistFilter struct {
	// PlaceIDs 是内存中的黑名单景点 ID
	PlaceIDs []int64

	// Store 用于从存储中读取黑名单（可选）
	Store BlacklistStore

	// Key 是 Store 中的黑名单 key（可选）
	Key string
}

// BlacklistStore 是黑名单存储接口。
type BlacklistStore interface {
	// GetBlacklist 获取黑名单景点 ID 列表
	GetBlacklist(ctx context.Context, key string) ([]int64, error)
}

var _ Prepared = (*BlacklistFilter)(nil)

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(placeIDs []int64, storeAdapter *StoreAdapter, key string) *BlacklistFilter {
	var store BlacklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlacklistFilter{
		PlaceIDs: placeIDs,
		Store:    store,
		Key:      key,
	}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

// Prepare 合并内存与存储中的黑名单；存储读取失败时只使用内存列表。
func (f *BlacklistFilter) Prepare(ctx context.Context, _ *core.RecommendContext) (Filter, error) {
	set := make(idSet, len(f.PlaceIDs))
	for _, id := range f.PlaceIDs {
		set[id] = struct{}{}
	}
	if f.Store != nil && f.Key != "" {
		if ids, err := f.Store.GetBlacklist(ctx, f.Key); err == nil {
			for _, id := range ids {
				set[id] = struct{}{}
			}
		}
	}
	return set, nil
}

func (f *BlacklistFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	set, _ := f.Prepare(ctx, rctx)
	return set.ShouldFilter(ctx, rctx, item)
}

type idSet map[int64]struct{}

func (s idSet) Name() string { return "filter.blacklist" }

func (s idSet) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := s[item.ID]
	return ok, nil
}
