package filter

import (
	"context"
	"fmt"

	"github.com/rushteam/placerec/core"
)

// RatedStore 返回用户已评分过的景点集合。
type RatedStore interface {
	RatedPlaces(ctx context.Context, userID int64) (map[int64]struct{}, error)
}

// RatedFilter 过滤掉用户已经评分过的景点。
//
// 用户没有任何评分记录时（包括未知用户），所有景点都保留。
type RatedFilter struct {
	Store RatedStore
}

var _ Prepared = (*RatedFilter)(nil)

func (f *RatedFilter) Name() string { return "filter.rated" }

// Prepare 每次请求只读取一次已评分集合。
func (f *RatedFilter) Prepare(ctx context.Context, rctx *core.RecommendContext) (Filter, error) {
	if f.Store == nil || rctx == nil {
		return &ratedSet{}, nil
	}
	rated, err := f.Store.RatedPlaces(ctx, rctx.UserID)
	if err != nil {
		if core.IsStoreNotFound(err) || core.IsNotFound(err) {
			return &ratedSet{}, nil
		}
		return nil, fmt.Errorf("rated places of user %d: %w", rctx.UserID, err)
	}
	return &ratedSet{rated: rated}, nil
}

func (f *RatedFilter) ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	p, err := f.Prepare(ctx, rctx)
	if err != nil {
		return false, err
	}
	return p.ShouldFilter(ctx, rctx, item)
}

type ratedSet struct {
	rated map[int64]struct{}
}

func (s *ratedSet) Name() string { return "filter.rated" }

func (s *ratedSet) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := s.rated[item.ID]
	return ok, nil
}

// RatedSets 是内存版 RatedStore
type RatedSets map[int64]map[int64]struct{}

func (m RatedSets) RatedPlaces(_ context.Context, userID int64) (map[int64]struct{}, error) {
	return m[userID], nil
}
