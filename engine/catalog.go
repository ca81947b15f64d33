package engine

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/recall"
)

// ClusterPlace 是价格簇中的一个景点
type ClusterPlace struct {
	PlaceID   int64   `json:"Place_Id"`
	PlaceName string  `json:"Place_Name"`
	Category  string  `json:"Category"`
	Price     float64 `json:"Price"`
}

// ClusterSummary 是一个价格簇的汇总
type ClusterSummary struct {
	ClusterID int            `json:"cluster_id"`
	AvgPrice  float64        `json:"avg_price"`
	Places    []ClusterPlace `json:"places"`
}

// Clusters 按簇编号返回价格聚类结果，簇内景点按 ID 升序。
func (e *Engine) Clusters() []ClusterSummary {
	out := make([]ClusterSummary, 0, len(e.snap.Clusters.Summaries))
	for _, s := range e.snap.Clusters.Summaries {
		cs := ClusterSummary{
			ClusterID: s.ClusterID,
			AvgPrice:  s.AvgPrice,
			Places:    make([]ClusterPlace, 0, len(s.PlaceIDs)),
		}
		for _, id := range s.PlaceIDs {
			p := e.snap.Places[id]
			cs.Places = append(cs.Places, ClusterPlace{
				PlaceID:   p.ID,
				PlaceName: p.Name,
				Category:  p.Category,
				Price:     p.Price,
			})
		}
		out = append(out, cs)
	}
	return out
}

// PlaceRef 是景点下拉列表的一项
type PlaceRef struct {
	PlaceID   int64  `json:"Place_Id"`
	PlaceName string `json:"Place_Name"`
}

// Places 按 ID 升序返回全部景点
func (e *Engine) Places() []PlaceRef {
	out := make([]PlaceRef, len(e.snap.PlaceIDs))
	for i, id := range e.snap.PlaceIDs {
		out[i] = PlaceRef{PlaceID: id, PlaceName: e.snap.Places[id].Name}
	}
	return out
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// PriceRange Max 为 nil 表示无上限
type PriceRange struct {
	Min   float64  `json:"min"`
	Max   *float64 `json:"max"`
	Count int      `json:"count"`
}

type MapPoint struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Category string  `json:"category"`
}

type RatedPlace struct {
	Name   string  `json:"name"`
	Rating float64 `json:"rating"`
}

// Dashboard 是看板数据
type Dashboard struct {
	Categories      []CategoryCount `json:"categories"`
	PriceRanges     []PriceRange    `json:"priceRanges"`
	MapData         []MapPoint      `json:"mapData"`
	TopRatedPlaces  []RatedPlace    `json:"topRatedPlaces"`
	AgeDistribution map[string]int  `json:"ageDistribution"`
}

var priceBounds = []struct {
	min float64
	max float64 // 0 表示无上限
}{
	{0, 50000},
	{50001, 100000},
	{100001, 200000},
	{200001, 0},
}

// AgeBuckets 看板年龄段，顺序即展示顺序
var AgeBuckets = []string{"18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

const dashboardTopN = 10

// Dashboard 汇总类别、票价区间、地图点位、评分榜与年龄分布。
// 配置了存储时评分榜读取已发布的热门有序集合。
func (e *Engine) Dashboard(ctx context.Context) (*Dashboard, error) {
	places := e.snap.PlaceList()
	d := &Dashboard{
		Categories:      topCategories(places, dashboardTopN),
		PriceRanges:     make([]PriceRange, len(priceBounds)),
		MapData:         make([]MapPoint, 0, len(places)),
		AgeDistribution: make(map[string]int, len(AgeBuckets)),
	}

	for i, b := range priceBounds {
		pr := PriceRange{Min: b.min}
		if b.max > 0 {
			max := b.max
			pr.Max = &max
		}
		for _, p := range places {
			if p.Price >= b.min && (b.max == 0 || p.Price <= b.max) {
				pr.Count++
			}
		}
		d.PriceRanges[i] = pr
	}

	for _, p := range places {
		d.MapData = append(d.MapData, MapPoint{ID: p.ID, Name: p.Name, Lat: p.Lat, Lng: p.Long, Category: p.Category})
	}

	top, err := e.topRated(ctx, dashboardTopN)
	if err != nil {
		return nil, err
	}
	d.TopRatedPlaces = top

	for _, b := range AgeBuckets {
		d.AgeDistribution[b] = 0
	}
	for _, u := range e.snap.Users {
		d.AgeDistribution[ageBucket(u.Age)]++
	}
	return d, nil
}

func topCategories(places []core.Place, n int) []CategoryCount {
	counts := make(map[string]int)
	for _, p := range places {
		counts[p.Category]++
	}
	out := make([]CategoryCount, 0, len(counts))
	for c, k := range counts {
		out = append(out, CategoryCount{Category: c, Count: k})
	}
	slices.SortFunc(out, func(a, b CategoryCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Category, b.Category)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func (e *Engine) topRated(ctx context.Context, n int) ([]RatedPlace, error) {
	type rated struct {
		id   int64
		mean float64
	}
	list := make([]rated, 0, len(e.snap.HotIDs))
	if e.opts.Store != nil {
		// 读取整个有序集合，再按 compareHot 排序；Redis 同分按成员字典序降序
		hot := &recall.Hot{Store: e.opts.Store, Key: e.hotKey(), Limit: int64(max(len(e.snap.HotIDs), n)), IDs: e.snap.HotIDs}
		items, err := hot.Recall(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("read hot places: %w", err)
		}
		for _, it := range items {
			mean := it.Score
			// 存储为空时 Hot 回退到内存列表，没有分数
			if mean == 0 {
				mean = e.snap.MeanRatings[it.ID]
			}
			list = append(list, rated{id: it.ID, mean: mean})
		}
		slices.SortFunc(list, func(a, b rated) int { return compareHot(a.id, a.mean, b.id, b.mean) })
	} else {
		for _, id := range e.snap.HotIDs {
			list = append(list, rated{id: id, mean: e.snap.MeanRatings[id]})
		}
	}
	if len(list) > n {
		list = list[:n]
	}

	out := make([]RatedPlace, 0, len(list))
	for _, r := range list {
		name := "Place " + strconv.FormatInt(r.id, 10)
		if p, ok := e.snap.Places[r.id]; ok {
			name = p.Name
		}
		out = append(out, RatedPlace{Name: name, Rating: r.mean})
	}
	return out, nil
}

// ageBucket 18 岁以下与 65 岁以上同样计入 "65+"
func ageBucket(age int) string {
	switch {
	case age >= 18 && age <= 24:
		return "18-24"
	case age >= 25 && age <= 34:
		return "25-34"
	case age >= 35 && age <= 44:
		return "35-44"
	case age >= 45 && age <= 54:
		return "45-54"
	case age >= 55 && age <= 64:
		return "55-64"
	default:
		return "65+"
	}
}
