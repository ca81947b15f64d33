package recall

import (
	"context"
	"errors"
	"testing"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/matrix"
	"github.com/rushteam/placerec/store"
)

func similarity(t *testing.T) *matrix.Similarity {
	t.Helper()
	rm, err := matrix.BuildRatingMatrix([]core.Rating{
		{UserID: 1, PlaceID: 1, Value: 5}, {UserID: 2, PlaceID: 1, Value: 3},
		{UserID: 1, PlaceID: 2, Value: 4}, {UserID: 2, PlaceID: 2, Value: 4},
		{UserID: 3, PlaceID: 3, Value: 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	return matrix.CosineSimilarity(rm)
}

func TestItemSimilarity(t *testing.T) {
	sim := similarity(t)
	node := &Node{Source: &ItemSimilarity{Similarity: sim}}
	items, err := node.Process(context.Background(), &core.RecommendContext{PlaceID: 1}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want one per place", len(items))
	}
	for i, want := range []int64{1, 2, 3} {
		if items[i].ID != want {
			t.Errorf("items[%d].ID = %d, want %d", i, items[i].ID, want)
		}
	}
	if items[0].Score != 1 || items[2].Score != 0 {
		t.Errorf("scores = %v %v", items[0].Score, items[2].Score)
	}
	if lbl := items[1].Labels["recall_source"]; lbl.Value != "recall.item_similarity" {
		t.Errorf("recall_source label = %+v", lbl)
	}

	_, err = node.Process(context.Background(), &core.RecommendContext{PlaceID: 99}, nil)
	if !core.IsNotFound(err) {
		t.Errorf("unknown place err = %v", err)
	}
}

func TestCatalog(t *testing.T) {
	items, err := (&Catalog{IDs: []int64{3, 5, 8}}).Recall(context.Background(), nil)
	if err != nil || len(items) != 3 || items[2].ID != 8 {
		t.Fatalf("items=%v err=%v", items, err)
	}
}

func TestNeighborStoreRoundTrip(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()
	adapter := NewNeighborStoreAdapter(ms, "")
	if adapter.KeyPrefix != "placerec" {
		t.Errorf("default prefix = %q", adapter.KeyPrefix)
	}
	err := adapter.SaveNeighbors(ctx, map[int64][]matrix.Neighbor{
		1: {{ID: 2, Score: 0.9}, {ID: 3, Score: 0.1}},
	})
	if err != nil {
		t.Fatalf("SaveNeighbors: %v", err)
	}
	if _, err := ms.Get(ctx, "placerec:sim:1"); err != nil {
		t.Errorf("expected key placerec:sim:1: %v", err)
	}

	src := &StoredNeighbors{Adapter: adapter}
	items, err := src.Recall(ctx, &core.RecommendContext{PlaceID: 1})
	if err != nil {
		t.Fatalf("Recall: %v", err)
	}
	if len(items) != 2 || items[0].ID != 2 || items[0].Score != 0.9 {
		t.Errorf("items = %+v", items)
	}
	if _, err := src.Recall(ctx, &core.RecommendContext{PlaceID: 7}); !errors.Is(err, core.ErrPlaceNotFound) {
		t.Errorf("missing key err = %v", err)
	}
}

func TestHot(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	ctx := context.Background()
	_ = ms.ZAdd(ctx, "placerec:hot", 4.2, "10")
	_ = ms.ZAdd(ctx, "placerec:hot", 4.8, "11")
	_ = ms.ZAdd(ctx, "placerec:hot", 3.1, "12")

	items, err := (&Hot{Store: ms, Key: "placerec:hot", Limit: 2}).Recall(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != 11 || items[0].Score != 4.8 || items[1].ID != 10 {
		t.Errorf("items = %+v", items)
	}

	items, _ = (&Hot{IDs: []int64{5, 6, 7}, Limit: 2}).Recall(ctx, nil)
	if len(items) != 2 || items[0].ID != 5 {
		t.Errorf("fallback items = %+v", items)
	}
}

type failingSource struct{ err error }

func (s failingSource) Name() string { return "recall.failing" }
func (s failingSource) Recall(context.Context, *core.RecommendContext) ([]*core.Item, error) {
	return nil, s.err
}

func TestFallback(t *testing.T) {
	ctx := context.Background()
	sim := similarity(t)
	ms := store.NewMemoryStore()
	defer ms.Close()
	adapter := NewNeighborStoreAdapter(ms, "p")
	_ = adapter.SaveNeighbors(ctx, map[int64][]matrix.Neighbor{1: {{ID: 3, Score: 0.95}}})

	f := &Fallback{Sources: []Source{&StoredNeighbors{Adapter: adapter}, &ItemSimilarity{Similarity: sim}}}

	// 存储中有邻居表时只用存储
	items, err := f.Process(ctx, &core.RecommendContext{PlaceID: 1}, nil)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(items) != 1 || items[0].ID != 3 {
		t.Fatalf("stored neighbors not used: %v", ids(items))
	}
	if items[0].Labels["recall_source"].Value != "recall.stored_neighbors" {
		t.Errorf("labels = %+v", items[0].Labels)
	}

	// 缺失时回退到相似度矩阵
	items, err = f.Recall(ctx, &core.RecommendContext{PlaceID: 2})
	if err != nil || len(items) != 3 {
		t.Fatalf("items=%v err=%v", ids(items), err)
	}
	if items[0].Labels["recall_source"].Value != "recall.item_similarity" {
		t.Errorf("labels = %+v", items[0].Labels)
	}

	// 其他错误不回退
	down := errors.New("down")
	f.Sources = []Source{failingSource{down}, &ItemSimilarity{Similarity: sim}}
	if _, err := f.Recall(ctx, &core.RecommendContext{PlaceID: 1}); !errors.Is(err, down) {
		t.Errorf("err = %v, want down", err)
	}

	// 全部 NOT_FOUND
	f.Sources = []Source{&StoredNeighbors{Adapter: adapter}, &ItemSimilarity{Similarity: sim}}
	if _, err := f.Recall(ctx, &core.RecommendContext{PlaceID: 42}); !core.IsNotFound(err) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
