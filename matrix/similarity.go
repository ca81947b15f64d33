package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/placerec/core"
)

// Similarity 是景点间的余弦相似度矩阵，行列顺序与所属 RatingMatrix 的行一致。
type Similarity struct {
	ratings *RatingMatrix
	sym     *mat.SymDense
}

// CosineSimilarity 计算 S = N·Nᵀ，N 为按行 L2 归一化后的评分矩阵。
// 全零行与任何景点（包括自身）的相似度都是 0；非零行的对角线恰好为 1。
func CosineSimilarity(rm *RatingMatrix) *Similarity {
	rows, cols := rm.data.Dims()
	normalized := mat.NewDense(rows, cols, nil)
	zero := make([]bool, rows)
	buf := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(buf, i, rm.data)
		norm := floats.Norm(buf, 2)
		if norm == 0 {
			zero[i] = true
			continue
		}
		floats.Scale(1/norm, buf)
		normalized.SetRow(i, buf)
	}

	sym := &mat.SymDense{}
	sym.SymOuterK(1, normalized)

	for i := 0; i < rows; i++ {
		for j := i; j < rows; j++ {
			v := sym.At(i, j)
			switch {
			case zero[i] || zero[j]:
				v = 0
			case i == j:
				v = 1
			default:
				v = math.Max(-1, math.Min(1, v))
			}
			sym.SetSym(i, j, v)
		}
	}
	return &Similarity{ratings: rm, sym: sym}
}

// Ratings 返回构建相似度所用的评分矩阵
func (s *Similarity) Ratings() *RatingMatrix { return s.ratings }

// Size 返回景点数
func (s *Similarity) Size() int { return s.sym.SymmetricDim() }

// Row 返回目标景点与所有景点的相似度（副本），顺序同 Ratings().PlaceIDs()。
func (s *Similarity) Row(placeID int64) ([]float64, error) {
	i, ok := s.ratings.PlaceIndex(placeID)
	if !ok {
		return nil, fmt.Errorf("place %d: %w", placeID, core.ErrPlaceNotFound)
	}
	return mat.Row(nil, i, s.sym), nil
}

// Score 返回两个景点的相似度
func (s *Similarity) Score(a, b int64) (float64, error) {
	i, ok := s.ratings.PlaceIndex(a)
	if !ok {
		return 0, fmt.Errorf("place %d: %w", a, core.ErrPlaceNotFound)
	}
	j, ok := s.ratings.PlaceIndex(b)
	if !ok {
		return 0, fmt.Errorf("place %d: %w", b, core.ErrPlaceNotFound)
	}
	return s.sym.At(i, j), nil
}

// Neighbor 是一个相似景点及其分数
type Neighbor struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// TopNeighbors 返回除自身以外相似度最高的 n 个景点，同分按行顺序。
func (s *Similarity) TopNeighbors(placeID int64, n int) ([]Neighbor, error) {
	row, err := s.Row(placeID)
	if err != nil {
		return nil, err
	}
	out := make([]Neighbor, 0, len(row))
	for j, v := range row {
		id := s.ratings.PlaceAt(j)
		if id == placeID {
			continue
		}
		out = append(out, Neighbor{ID: id, Score: v})
	}
	SortNeighbors(out)
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
