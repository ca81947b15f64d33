package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/store"
)

func items(ids ...int64) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		it := core.NewItem(id)
		it.Meta[core.MetaPrice] = float64(id * 1000)
		it.Meta[core.MetaCategory] = "Bahari"
		out = append(out, it)
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func equal(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSelfFilter(t *testing.T) {
	in := items(1, 2, 3)
	node := NewFilterNode(SelfFilter{})
	out, err := node.Process(context.Background(), &core.RecommendContext{PlaceID: 2}, in)
	if err != nil {
		t.Fatal(err)
	}
	if got := ids(out); !equal(got, []int64{1, 3}) {
		t.Errorf("got %v", got)
	}
	if lbl, ok := in[1].Labels["filtered"]; !ok || lbl.Source != "filter.self" {
		t.Errorf("filtered label = %+v", in[1].Labels)
	}
}

func TestRatedFilter(t *testing.T) {
	rated := RatedSets{7: {1: {}, 3: {}}}
	node := NewFilterNode(&RatedFilter{Store: rated})

	out, _ := node.Process(context.Background(), &core.RecommendContext{UserID: 7}, items(1, 2, 3, 4))
	if got := ids(out); !equal(got, []int64{2, 4}) {
		t.Errorf("known user: %v", got)
	}
	out, _ = node.Process(context.Background(), &core.RecommendContext{UserID: 99}, items(1, 2))
	if got := ids(out); !equal(got, []int64{1, 2}) {
		t.Errorf("unknown user: %v", got)
	}
}

type failingRated struct{}

func (failingRated) RatedPlaces(context.Context, int64) (map[int64]struct{}, error) {
	return nil, errors.New("boom")
}

func TestRatedFilterStoreError(t *testing.T) {
	node := NewFilterNode(&RatedFilter{Store: failingRated{}})
	if _, err := node.Process(context.Background(), &core.RecommendContext{UserID: 1}, items(1)); err == nil {
		t.Error("expected store error to surface")
	}
}

func TestExprFilter(t *testing.T) {
	f, err := NewExprFilter("item.price <= 2000")
	if err != nil {
		t.Fatal(err)
	}
	out, _ := NewFilterNode(f).Process(context.Background(), &core.RecommendContext{}, items(1, 2, 3))
	if got := ids(out); !equal(got, []int64{1, 2}) {
		t.Errorf("got %v", got)
	}

	if _, err := NewExprFilter("item.price <="); !core.IsInvalidInput(err) {
		t.Errorf("bad expr err = %v", err)
	}
}

type brokenFilter struct{}

func (brokenFilter) Name() string { return "filter.broken" }
func (brokenFilter) ShouldFilter(context.Context, *core.RecommendContext, *core.Item) (bool, error) {
	return true, errors.New("broken")
}

func TestFilterNodeErrors(t *testing.T) {
	f, err := NewExprFilter("item.prise <= 2000")
	if err != nil {
		t.Fatal(err)
	}
	out, err := NewFilterNode(f).Process(context.Background(), &core.RecommendContext{}, items(1, 2, 3))
	if !core.IsInvalidInput(err) || out != nil {
		t.Errorf("unknown field = %v, %v, want INVALID_INPUT", ids(out), err)
	}

	// 其他错误保留景点
	out, err = NewFilterNode(brokenFilter{}).Process(context.Background(), &core.RecommendContext{}, items(1, 2))
	if err != nil || !equal(ids(out), []int64{1, 2}) {
		t.Errorf("broken filter = %v, %v", ids(out), err)
	}
}

func TestBlacklistFilterWithStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	adapter := NewStoreAdapter(s, "")
	if err := adapter.SetBlacklist(ctx, "placerec:blacklist", []int64{3}); err != nil {
		t.Fatal(err)
	}

	f := NewBlacklistFilter([]int64{1}, adapter, "placerec:blacklist")
	out, _ := NewFilterNode(f).Process(ctx, &core.RecommendContext{}, items(1, 2, 3, 4))
	if got := ids(out); !equal(got, []int64{2, 4}) {
		t.Errorf("got %v", got)
	}
}

func TestStoreAdapterRated(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	defer s.Close()
	adapter := NewStoreAdapter(s, "test")
	if err := adapter.SaveRated(ctx, map[int64][]int64{5: {10, 11}}); err != nil {
		t.Fatal(err)
	}
	set, err := adapter.RatedPlaces(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := set[11]; !ok || len(set) != 2 {
		t.Errorf("set = %v", set)
	}

	// 未发布的用户视为没有评分
	node := NewFilterNode(&RatedFilter{Store: adapter})
	out, err := node.Process(ctx, &core.RecommendContext{UserID: 6}, items(10))
	if err != nil || len(out) != 1 {
		t.Errorf("unknown user: %v, %v", ids(out), err)
	}
}
