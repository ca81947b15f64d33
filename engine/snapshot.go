package engine

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/placerec/cluster"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/dataset"
	"github.com/rushteam/placerec/matrix"
)

// Snapshot 是启动时从数据集构建的全部打分状态，构建后只读。
type Snapshot struct {
	Places   map[int64]core.Place
	PlaceIDs []int64 // 升序

	Ratings    *matrix.RatingMatrix
	Similarity *matrix.Similarity
	Clusters   *cluster.Assignment

	// Rated 每个用户评分过的景点
	Rated map[int64]map[int64]struct{}

	// MeanRatings 每个景点的原始评分均值（不先按用户去重），以及按均值降序的景点
	MeanRatings map[int64]float64
	HotIDs      []int64

	Users []core.User

	// RatingCount 参与构建的评分条数；DroppedRatings 指向目录中不存在景点的评分数
	RatingCount    int
	DroppedRatings int
	BuiltAt        time.Time
	Timings        map[string]time.Duration
}

// BuildSnapshot 构建评分矩阵、相似度矩阵与价格聚类。
func BuildSnapshot(ds *dataset.Dataset, km cluster.KMeans) (*Snapshot, error) {
	timings := make(map[string]time.Duration, 3)

	s := &Snapshot{
		Places:      make(map[int64]core.Place, len(ds.Places)),
		PlaceIDs:    make([]int64, 0, len(ds.Places)),
		Rated:       make(map[int64]map[int64]struct{}),
		MeanRatings: make(map[int64]float64),
		Users:       ds.Users,
		Timings:     timings,
	}
	for _, p := range ds.Places {
		s.Places[p.ID] = p
		s.PlaceIDs = append(s.PlaceIDs, p.ID)
	}
	slices.Sort(s.PlaceIDs)

	ratings := make([]core.Rating, 0, len(ds.Ratings))
	values := make(map[int64][]float64)
	for _, r := range ds.Ratings {
		if _, ok := s.Places[r.PlaceID]; !ok {
			s.DroppedRatings++
			continue
		}
		ratings = append(ratings, r)
		values[r.PlaceID] = append(values[r.PlaceID], r.Value)
		set, ok := s.Rated[r.UserID]
		if !ok {
			set = make(map[int64]struct{})
			s.Rated[r.UserID] = set
		}
		set[r.PlaceID] = struct{}{}
	}
	s.RatingCount = len(ratings)

	start := time.Now()
	rm, err := matrix.BuildRatingMatrix(ratings)
	if err != nil {
		return nil, fmt.Errorf("build rating matrix: %w", err)
	}
	s.Ratings = rm
	timings["rating_matrix"] = time.Since(start)

	start = time.Now()
	s.Similarity = matrix.CosineSimilarity(rm)
	timings["similarity"] = time.Since(start)

	start = time.Now()
	places := make([]core.Place, 0, len(s.PlaceIDs))
	for _, id := range s.PlaceIDs {
		places = append(places, s.Places[id])
	}
	assignment, err := cluster.ByPrice(places, km)
	if err != nil {
		return nil, fmt.Errorf("cluster prices: %w", err)
	}
	s.Clusters = assignment
	for id, p := range s.Places {
		p.Cluster = assignment.Label(id)
		s.Places[id] = p
	}
	timings["clusters"] = time.Since(start)

	for id, vs := range values {
		s.MeanRatings[id] = stat.Mean(vs, nil)
	}
	s.HotIDs = make([]int64, 0, len(s.MeanRatings))
	for _, id := range s.PlaceIDs {
		if _, ok := s.MeanRatings[id]; ok {
			s.HotIDs = append(s.HotIDs, id)
		}
	}
	slices.SortFunc(s.HotIDs, func(a, b int64) int {
		return compareHot(a, s.MeanRatings[a], b, s.MeanRatings[b])
	})

	s.BuiltAt = time.Now()
	return s, nil
}

// compareHot 是热门榜的顺序：均值降序，同分按 ID 升序。
func compareHot(a int64, ma float64, b int64, mb float64) int {
	switch {
	case ma > mb:
		return -1
	case ma < mb:
		return 1
	default:
		return cmp.Compare(a, b)
	}
}

// PlaceList 按 ID 升序返回景点
func (s *Snapshot) PlaceList() []core.Place {
	out := make([]core.Place, len(s.PlaceIDs))
	for i, id := range s.PlaceIDs {
		out[i] = s.Places[id]
	}
	return out
}
