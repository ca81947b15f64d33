// Package matrix 构建景点×用户评分矩阵以及景点间的余弦相似度矩阵。
package matrix

import (
	"slices"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/placerec/core"
)

// ErrEmptyRatings 没有任何评分时无法构建矩阵
var ErrEmptyRatings = core.NewDomainError(core.ModuleMatrix, core.ErrorCodeInvalidInput, "matrix: no ratings")

// RatingMatrix 是稠密的景点×用户评分矩阵。
//
// 行按 Place_Id 升序，列按 User_Id 升序；同一 (用户, 景点) 的多次评分取平均，缺失为 0。
// 构建后只读。
type RatingMatrix struct {
	placeIDs   []int64
	userIDs    []int64
	placeIndex map[int64]int
	userIndex  map[int64]int
	data       *mat.Dense
}

type cellKey struct {
	place int64
	user  int64
}

type cellAgg struct {
	sum float64
	n   int
}

// BuildRatingMatrix 由评分记录构建矩阵。
func BuildRatingMatrix(ratings []core.Rating) (*RatingMatrix, error) {
	if len(ratings) == 0 {
		return nil, ErrEmptyRatings
	}

	cells := make(map[cellKey]*cellAgg, len(ratings))
	placeSet := make(map[int64]struct{})
	userSet := make(map[int64]struct{})
	for _, r := range ratings {
		k := cellKey{place: r.PlaceID, user: r.UserID}
		agg, ok := cells[k]
		if !ok {
			agg = &cellAgg{}
			cells[k] = agg
		}
		agg.sum += r.Value
		agg.n++
		placeSet[r.PlaceID] = struct{}{}
		userSet[r.UserID] = struct{}{}
	}

	rm := &RatingMatrix{
		placeIDs: sortedKeys(placeSet),
		userIDs:  sortedKeys(userSet),
	}
	rm.placeIndex = indexOf(rm.placeIDs)
	rm.userIndex = indexOf(rm.userIDs)
	rm.data = mat.NewDense(len(rm.placeIDs), len(rm.userIDs), nil)
	for k, agg := range cells {
		rm.data.Set(rm.placeIndex[k.place], rm.userIndex[k.user], agg.sum/float64(agg.n))
	}
	return rm, nil
}

func sortedKeys(set map[int64]struct{}) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func indexOf(ids []int64) map[int64]int {
	m := make(map[int64]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// Dims 返回 (景点数, 用户数)
func (rm *RatingMatrix) Dims() (places, users int) {
	return len(rm.placeIDs), len(rm.userIDs)
}

// PlaceIDs 返回行顺序对应的 Place_Id（副本）
func (rm *RatingMatrix) PlaceIDs() []int64 { return slices.Clone(rm.placeIDs) }

// UserIDs 返回列顺序对应的 User_Id（副本）
func (rm *RatingMatrix) UserIDs() []int64 { return slices.Clone(rm.userIDs) }

// PlaceIndex 返回景点所在行
func (rm *RatingMatrix) PlaceIndex(placeID int64) (int, bool) {
	i, ok := rm.placeIndex[placeID]
	return i, ok
}

// UserIndex 返回用户所在列
func (rm *RatingMatrix) UserIndex(userID int64) (int, bool) {
	j, ok := rm.userIndex[userID]
	return j, ok
}

// PlaceAt 返回第 i 行对应的 Place_Id
func (rm *RatingMatrix) PlaceAt(i int) int64 { return rm.placeIDs[i] }

// At 返回 (景点, 用户) 的评分，未评分或不存在时为 0
func (rm *RatingMatrix) At(placeID, userID int64) float64 {
	i, ok := rm.placeIndex[placeID]
	if !ok {
		return 0
	}
	j, ok := rm.userIndex[userID]
	if !ok {
		return 0
	}
	return rm.data.At(i, j)
}

// Row 返回景点的评分向量（副本）
func (rm *RatingMatrix) Row(placeID int64) ([]float64, bool) {
	i, ok := rm.placeIndex[placeID]
	if !ok {
		return nil, false
	}
	return mat.Row(nil, i, rm.data), true
}

// Matrix 返回只读视图
func (rm *RatingMatrix) Matrix() mat.Matrix { return rm.data }
