package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/placerec/core"
)

func withCategory(id int64, cate string) *core.Item {
	it := core.NewItem(id)
	it.Meta[core.MetaCategory] = cate
	return it
}

func TestTopN(t *testing.T) {
	in := []*core.Item{core.NewItem(1), core.NewItem(2), core.NewItem(3)}
	out, _ := (&TopNNode{N: 2}).Process(context.Background(), nil, in)
	if len(out) != 2 || out[1].ID != 2 {
		t.Errorf("out = %d items", len(out))
	}
	out, _ = (&TopNNode{N: 10}).Process(context.Background(), nil, in)
	if len(out) != 3 {
		t.Errorf("short input truncated to %d", len(out))
	}
	rctx := &core.RecommendContext{Params: map[string]any{"top_k": 1}}
	out, _ = (&TopNNode{N: 2}).Process(context.Background(), rctx, in)
	if len(out) != 1 {
		t.Errorf("top_k param ignored: %d", len(out))
	}
}

func TestDiversity(t *testing.T) {
	in := []*core.Item{
		withCategory(1, "Bahari"),
		withCategory(2, "Bahari"),
		withCategory(3, "Budaya"),
		withCategory(4, "Bahari"),
		withCategory(5, ""),
	}
	out, _ := (&Diversity{MaxPerKey: 2}).Process(context.Background(), nil, in)
	want := []int64{1, 2, 3, 5}
	if len(out) != len(want) {
		t.Fatalf("len = %d", len(out))
	}
	for i := range want {
		if out[i].ID != want[i] {
			t.Errorf("out[%d] = %d, want %d", i, out[i].ID, want[i])
		}
	}
}
