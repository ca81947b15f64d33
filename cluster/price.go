package cluster

import (
	"slices"

	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/placerec/core"
)

// Summary 是一个价格簇的汇总
type Summary struct {
	ClusterID int
	AvgPrice  float64
	PlaceIDs  []int64 // 升序
}

// Assignment 是景点到价格簇的映射
type Assignment struct {
	Labels    map[int64]int
	Summaries []Summary // 按 ClusterID 升序
}

// Label 返回景点所属簇，不存在时返回 -1
func (a *Assignment) Label(placeID int64) int {
	if l, ok := a.Labels[placeID]; ok {
		return l
	}
	return -1
}

// ByPrice 对景点票价标准化后聚类。
func ByPrice(places []core.Place, km KMeans) (*Assignment, error) {
	prices := make([]float64, len(places))
	for i, p := range places {
		prices[i] = p.Price
	}
	scaled := Standardize(prices)
	points := make([][]float64, len(scaled))
	for i, v := range scaled {
		points[i] = []float64{v}
	}

	res, err := km.Fit(points)
	if err != nil {
		return nil, err
	}

	a := &Assignment{Labels: make(map[int64]int, len(places))}
	members := make([][]int64, len(res.Centroids))
	memberPrices := make([][]float64, len(res.Centroids))
	for i, p := range places {
		l := res.Labels[i]
		a.Labels[p.ID] = l
		members[l] = append(members[l], p.ID)
		memberPrices[l] = append(memberPrices[l], p.Price)
	}
	for l := range members {
		slices.Sort(members[l])
		s := Summary{ClusterID: l, PlaceIDs: members[l]}
		if len(memberPrices[l]) > 0 {
			s.AvgPrice = stat.Mean(memberPrices[l], nil)
		}
		a.Summaries = append(a.Summaries, s)
	}
	return a, nil
}
