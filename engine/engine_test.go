package engine

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	_ "github.com/rushteam/placerec/config/builders"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/dataset"
	"github.com/rushteam/placerec/matrix"
	"github.com/rushteam/placerec/model"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/store"
)

func place(id int64, name, category string, price float64) core.Place {
	return core.Place{ID: id, Name: name, Category: category, City: "Jakarta", Price: price, Lat: -6.2, Long: 106.8, Cluster: -1}
}

func rating(user, place int64, v float64) core.Rating {
	return core.Rating{UserID: user, PlaceID: place, Value: v}
}

// 景点 1、2、3 的评分向量完全相同；景点 8 没有评分。
func testDataset() *dataset.Dataset {
	return &dataset.Dataset{
		Places: []core.Place{
			place(1, "Pantai Ancol", "Bahari", 10000),
			place(2, "Pantai Indah", "Bahari", 20000),
			place(3, "Pulau Seribu", "Bahari", 15000),
			place(4, "Dunia Fantasi", "Taman Hiburan", 75000),
			place(5, "Monas", "Budaya", 0),
			place(6, "Sea World", "Bahari", 250000),
			place(7, "Kota Tua", "Budaya", 120000),
			place(8, "Kebun Raya", "Cagar Alam", 30000),
		},
		Ratings: []core.Rating{
			rating(1, 1, 5), rating(2, 1, 3),
			rating(1, 2, 5), rating(2, 2, 3),
			rating(1, 3, 5), rating(2, 3, 3),
			rating(1, 4, 1), rating(3, 4, 5),
			rating(3, 5, 4), rating(4, 5, 2),
			rating(2, 6, 4), rating(4, 6, 5),
			rating(1, 7, 2), rating(2, 7, 1), rating(3, 7, 3),
			rating(9, 99, 5), // 目录中不存在的景点
		},
		Users: []core.User{{ID: 1, Age: 20}, {ID: 2, Age: 30}, {ID: 3, Age: 70}, {ID: 4, Age: 10}},
	}
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.Clusters == 0 {
		opts.Clusters = 3
	}
	e, err := New(testDataset(), opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = e.Close(context.Background()) })
	return e
}

func placeIDs(recs []Recommendation) []int64 {
	out := make([]int64, len(recs))
	for i, r := range recs {
		out[i] = r.PlaceID
	}
	return out
}

func TestRecommendProperties(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	for _, id := range e.Snapshot().Ratings.PlaceIDs() {
		recs, err := e.Recommend(ctx, id, RecommendOptions{})
		if err != nil {
			t.Fatalf("Recommend(%d): %v", id, err)
		}
		if len(recs) > 5 {
			t.Errorf("Recommend(%d) returned %d records", id, len(recs))
		}
		for i, r := range recs {
			if r.PlaceID == id {
				t.Errorf("Recommend(%d) contains the target", id)
			}
			if i > 0 && r.SimilarityScore > recs[i-1].SimilarityScore {
				t.Errorf("Recommend(%d) scores increase at %d", id, i)
			}
		}
		again, _ := e.Recommend(ctx, id, RecommendOptions{})
		if !reflect.DeepEqual(recs, again) {
			t.Errorf("Recommend(%d) is not idempotent", id)
		}
	}
}

func TestRecommendIdenticalPlaces(t *testing.T) {
	e := newEngine(t, Options{})
	recs, err := e.Recommend(context.Background(), 1, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want := []int64{2, 3, 7, 6, 4}
	if got := placeIDs(recs); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if math.Abs(recs[0].SimilarityScore-1) > 1e-9 || math.Abs(recs[1].SimilarityScore-1) > 1e-9 {
		t.Errorf("identical places scores = %v, %v", recs[0].SimilarityScore, recs[1].SimilarityScore)
	}
	if recs[0].PlaceName != "Pantai Indah" || recs[0].Category != "Bahari" || recs[0].Price != 20000 {
		t.Errorf("record = %+v", recs[0])
	}
}

func TestRecommendUnknownPlace(t *testing.T) {
	e := newEngine(t, Options{})
	for _, id := range []int64{8, 404} {
		_, err := e.Recommend(context.Background(), id, RecommendOptions{})
		if !core.IsNotFound(err) || !errors.Is(err, core.ErrPlaceNotFound) {
			t.Errorf("Recommend(%d) err = %v", id, err)
		}
	}
}

func TestRecommendOptions(t *testing.T) {
	e := newEngine(t, Options{})
	ctx := context.Background()

	recs, err := e.Recommend(ctx, 1, RecommendOptions{Filter: "item.price <= 20000"})
	if err != nil {
		t.Fatal(err)
	}
	if got := placeIDs(recs); !reflect.DeepEqual(got, []int64{2, 3, 5}) {
		t.Errorf("filtered = %v", got)
	}

	recs, _ = e.Recommend(ctx, 1, RecommendOptions{TopK: 2})
	if len(recs) != 2 {
		t.Errorf("top_k = %d", len(recs))
	}

	for _, expr := range []string{"item.price <=", "item.prise <= 20000", "item.price"} {
		recs, err := e.Recommend(ctx, 1, RecommendOptions{Filter: expr})
		if !core.IsInvalidInput(err) || recs != nil {
			t.Errorf("filter %q = %v, %v, want INVALID_INPUT", expr, placeIDs(recs), err)
		}
	}
}

func TestRecommendBlacklist(t *testing.T) {
	e := newEngine(t, Options{Blacklist: []int64{2}})
	recs, _ := e.Recommend(context.Background(), 1, RecommendOptions{})
	if got := placeIDs(recs); !reflect.DeepEqual(got, []int64{3, 7, 6, 4, 5}) {
		t.Errorf("got %v", got)
	}
}

func TestRecommendConfiguredPipeline(t *testing.T) {
	cfg, err := pipeline.ParseYAML([]byte(`
pipeline:
  nodes:
    - type: rank.score
    - type: rerank.diversity
      config: {max_per_key: 1}
`))
	if err != nil {
		t.Fatal(err)
	}
	e := newEngine(t, Options{Pipeline: cfg})
	recs, err := e.Recommend(context.Background(), 1, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := placeIDs(recs); !reflect.DeepEqual(got, []int64{2, 7, 4}) {
		t.Errorf("got %v", got)
	}

	// 没有 rank 节点的配置仍然按分数截断
	unranked, err := pipeline.ParseYAML([]byte(`
pipeline:
  nodes:
    - type: rerank.diversity
      config: {max_per_key: 5}
`))
	if err != nil {
		t.Fatal(err)
	}
	recs, err = newEngine(t, Options{Pipeline: unranked}).Recommend(context.Background(), 4, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].SimilarityScore > recs[i-1].SimilarityScore {
			t.Fatalf("scores not sorted: %+v", recs)
		}
	}
	want, err := newEngine(t, Options{}).Recommend(context.Background(), 4, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(placeIDs(recs), placeIDs(want)) {
		t.Errorf("unranked pipeline = %v, default = %v", placeIDs(recs), placeIDs(want))
	}

	bad, _ := pipeline.ParseYAML([]byte("pipeline:\n  nodes:\n    - type: rank.lr\n"))
	if _, err := New(testDataset(), Options{Clusters: 3, Pipeline: bad}); err == nil {
		t.Error("unknown node type should fail")
	}
}

func byPlaceID() *model.FuncModel {
	return model.NewFuncModel("by-id", func(f map[string]float64) (float64, error) {
		return f[core.FeaturePlaceID], nil
	})
}

func TestRecommendForUser(t *testing.T) {
	e := newEngine(t, Options{Model: byPlaceID(), BatchSize: 2})
	ctx := context.Background()

	names, err := e.RecommendForUser(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Kebun Raya", "Sea World", "Monas"}; !reflect.DeepEqual(names, want) {
		t.Errorf("user 1 = %v, want %v", names, want)
	}

	names, err = e.RecommendForUser(ctx, 999)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"Kebun Raya", "Kota Tua", "Sea World", "Monas", "Dunia Fantasi"}; !reflect.DeepEqual(names, want) {
		t.Errorf("unknown user = %v", names)
	}
}

func TestRecommendForUserRatedEverything(t *testing.T) {
	ds := &dataset.Dataset{
		Places: []core.Place{place(1, "A", "Bahari", 1), place(2, "B", "Budaya", 2)},
		Ratings: []core.Rating{
			rating(1, 1, 4), rating(1, 2, 5),
		},
	}
	e, err := New(ds, Options{Clusters: 2, Model: byPlaceID()})
	if err != nil {
		t.Fatal(err)
	}
	names, err := e.RecommendForUser(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if names == nil || len(names) != 0 {
		t.Errorf("names = %#v, want empty non-nil", names)
	}
}

func TestRecommendForUserWithoutModel(t *testing.T) {
	e := newEngine(t, Options{})
	if _, err := e.RecommendForUser(context.Background(), 1); !errors.Is(err, core.ErrModelUnavailable) {
		t.Errorf("err = %v", err)
	}
	if e.Health(context.Background()) != "disabled" {
		t.Errorf("health = %s", e.Health(context.Background()))
	}
}

func TestClustersDeterministic(t *testing.T) {
	a := newEngine(t, Options{}).Clusters()
	b := newEngine(t, Options{}).Clusters()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("clusters differ between runs with the same seed")
	}
	if len(a) != 3 {
		t.Fatalf("clusters = %d", len(a))
	}
	total := 0
	for i, c := range a {
		if c.ClusterID != i {
			t.Errorf("cluster %d has id %d", i, c.ClusterID)
		}
		if i > 0 && len(c.Places) > 0 && len(a[i-1].Places) > 0 && c.AvgPrice < a[i-1].AvgPrice {
			t.Errorf("clusters not ordered by price")
		}
		total += len(c.Places)
	}
	if total != 8 {
		t.Errorf("clustered places = %d", total)
	}
}

func TestPlaces(t *testing.T) {
	refs := newEngine(t, Options{}).Places()
	if len(refs) != 8 || refs[0].PlaceID != 1 || refs[7].PlaceName != "Kebun Raya" {
		t.Errorf("places = %+v", refs)
	}
}

func TestDashboard(t *testing.T) {
	d, err := newEngine(t, Options{}).Dashboard(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	wantCats := []CategoryCount{{"Bahari", 4}, {"Budaya", 2}, {"Cagar Alam", 1}, {"Taman Hiburan", 1}}
	if !reflect.DeepEqual(d.Categories, wantCats) {
		t.Errorf("categories = %v", d.Categories)
	}
	counts := []int{5, 1, 1, 1}
	for i, pr := range d.PriceRanges {
		if pr.Count != counts[i] {
			t.Errorf("price range %d count = %d, want %d", i, pr.Count, counts[i])
		}
	}
	if d.PriceRanges[3].Max != nil {
		t.Error("last price range should be unbounded")
	}
	if len(d.MapData) != 8 {
		t.Errorf("map points = %d", len(d.MapData))
	}
	if d.TopRatedPlaces[0] != (RatedPlace{Name: "Sea World", Rating: 4.5}) {
		t.Errorf("top rated = %v", d.TopRatedPlaces)
	}
	if len(d.TopRatedPlaces) != 7 {
		t.Errorf("top rated len = %d", len(d.TopRatedPlaces))
	}
	wantAges := map[string]int{"18-24": 1, "25-34": 1, "35-44": 0, "45-54": 0, "55-64": 0, "65+": 2}
	if !reflect.DeepEqual(d.AgeDistribution, wantAges) {
		t.Errorf("ages = %v", d.AgeDistribution)
	}
}

func TestPublishAndStoreRecall(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := newEngine(t, Options{Store: s, RecallSource: RecallStore, Blacklist: []int64{4}})
	if err := e.Publish(ctx); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Get(ctx, "placerec:sim:1"); err != nil {
		t.Errorf("neighbors not published: %v", err)
	}
	if _, err := s.Get(ctx, "placerec:cluster:0"); err != nil {
		t.Errorf("clusters not published: %v", err)
	}

	recs, err := e.Recommend(ctx, 1, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := placeIDs(recs); !reflect.DeepEqual(got, []int64{2, 3, 7, 6, 5}) {
		t.Errorf("store recall = %v", got)
	}

	d, err := e.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.TopRatedPlaces[0].Name != "Sea World" {
		t.Errorf("top rated from store = %v", d.TopRatedPlaces)
	}
	local, err := newEngine(t, Options{Blacklist: []int64{4}}).Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(d.TopRatedPlaces, local.TopRatedPlaces) {
		t.Errorf("top rated store = %v, snapshot = %v", d.TopRatedPlaces, local.TopRatedPlaces)
	}

	names, err := (&Engine{}).RecommendForUser(ctx, 1)
	if !errors.Is(err, core.ErrModelUnavailable) || names != nil {
		t.Errorf("empty engine = %v, %v", names, err)
	}
}

func TestStoreRecallUsesPublishedNeighbors(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	e := newEngine(t, Options{Store: s, RecallSource: RecallStore, Blacklist: []int64{4}})
	if err := e.Publish(ctx); err != nil {
		t.Fatal(err)
	}

	// 离线任务发布了与本地快照不同的邻居表
	err := e.neighbors.SaveNeighbors(ctx, map[int64][]matrix.Neighbor{
		1: {{ID: 7, Score: 0.9}, {ID: 5, Score: 0.5}},
	})
	if err != nil {
		t.Fatal(err)
	}
	recs, err := e.Recommend(ctx, 1, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if got := placeIDs(recs); !reflect.DeepEqual(got, []int64{7, 5}) {
		t.Errorf("store recall = %v, want published list", got)
	}

	// 邻居表缺失时退回快照
	if err := s.Delete(ctx, "placerec:sim:2"); err != nil {
		t.Fatal(err)
	}
	recs, err = e.Recommend(ctx, 2, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	want, err := newEngine(t, Options{Blacklist: []int64{4}}).Recommend(ctx, 2, RecommendOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(placeIDs(recs), placeIDs(want)) {
		t.Errorf("fallback recall = %v, snapshot = %v", placeIDs(recs), placeIDs(want))
	}
}
