// Package cluster 实现确定性的 k-means 聚类，用于按票价给景点分组。
package cluster

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/placerec/core"
)

var (
	// ErrTooFewPoints 样本数少于 K
	ErrTooFewPoints = core.NewDomainError(core.ModuleCluster, core.ErrorCodeInvalidInput, "cluster: fewer points than clusters")
	// ErrInvalidK K 必须为正数
	ErrInvalidK = core.NewDomainError(core.ModuleCluster, core.ErrorCodeInvalidInput, "cluster: k must be positive")
)

// KMeans 是 k-means++ 初始化 + Lloyd 迭代的聚类器。
// 相同的输入与 Seed 总是得到相同的结果。
type KMeans struct {
	K       int
	Seed    int64
	MaxIter int     // 单次运行的最大迭代次数，默认 300
	NInit   int     // 不同初始化的运行次数，取 inertia 最小者，默认 10
	Tol     float64 // 质心总位移平方和不超过 Tol 时收敛，默认 1e-4
}

// Result 是一次聚类的结果。标签按质心第一维升序编号，0 为最小。
type Result struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
	Iter      int
}

func (km KMeans) withDefaults() KMeans {
	if km.MaxIter <= 0 {
		km.MaxIter = 300
	}
	if km.NInit <= 0 {
		km.NInit = 10
	}
	if km.Tol <= 0 {
		km.Tol = 1e-4
	}
	return km
}

// Fit 对 points 聚类，所有点的维度必须一致。
func (km KMeans) Fit(points [][]float64) (*Result, error) {
	km = km.withDefaults()
	if km.K <= 0 {
		return nil, ErrInvalidK
	}
	if len(points) < km.K {
		return nil, fmt.Errorf("%d points, k=%d: %w", len(points), km.K, ErrTooFewPoints)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("point %d has dimension %d, want %d", i, len(p), dim)
		}
	}

	rng := rand.New(rand.NewSource(km.Seed))
	var best *Result
	for run := 0; run < km.NInit; run++ {
		res := km.lloyd(points, km.seedPlusPlus(points, rng))
		if best == nil || res.Inertia < best.Inertia {
			best = res
		}
	}
	relabel(best)
	return best, nil
}

// seedPlusPlus 按 k-means++ 选择初始质心。
func (km KMeans) seedPlusPlus(points [][]float64, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, km.K)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	dist := make([]float64, len(points))
	for len(centroids) < km.K {
		total := 0.0
		for i, p := range points {
			dist[i] = nearestDist(p, centroids)
			total += dist[i]
		}
		if total == 0 {
			// 所有点都与现有质心重合
			centroids = append(centroids, clone(points[rng.Intn(len(points))]))
			continue
		}
		target := rng.Float64() * total
		chosen := len(points) - 1
		acc := 0.0
		for i, d := range dist {
			acc += d
			if acc >= target && d > 0 {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(points[chosen]))
	}
	return centroids
}

func (km KMeans) lloyd(points [][]float64, centroids [][]float64) *Result {
	dim := len(points[0])
	labels := make([]int, len(points))
	sums := make([][]float64, km.K)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}
	counts := make([]int, km.K)

	iter := 0
	for iter < km.MaxIter {
		iter++
		for i, p := range points {
			labels[i] = nearest(p, centroids)
		}

		for c := range sums {
			for d := range sums[c] {
				sums[c][d] = 0
			}
			counts[c] = 0
		}
		for i, p := range points {
			floats.Add(sums[labels[i]], p)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centroids {
			if counts[c] == 0 {
				// 空簇保留原质心
				continue
			}
			next := clone(sums[c])
			floats.Scale(1/float64(counts[c]), next)
			shift += sqDist(next, centroids[c])
			centroids[c] = next
		}
		if shift <= km.Tol {
			break
		}
	}

	inertia := 0.0
	for i, p := range points {
		labels[i] = nearest(p, centroids)
		inertia += sqDist(p, centroids[labels[i]])
	}
	return &Result{Labels: labels, Centroids: centroids, Inertia: inertia, Iter: iter}
}

// relabel 按质心第一维升序重新编号，使标签与输入顺序无关。
func relabel(res *Result) {
	order := make([]int, len(res.Centroids))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return res.Centroids[order[a]][0] < res.Centroids[order[b]][0]
	})
	mapping := make([]int, len(order))
	centroids := make([][]float64, len(order))
	for newLabel, old := range order {
		mapping[old] = newLabel
		centroids[newLabel] = res.Centroids[old]
	}
	for i, l := range res.Labels {
		res.Labels[i] = mapping[l]
	}
	res.Centroids = centroids
}

func nearest(p []float64, centroids [][]float64) int {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

func nearestDist(p []float64, centroids [][]float64) float64 {
	return sqDist(p, centroids[nearest(p, centroids)])
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}

// Standardize 返回 (x-mean)/std，std 为总体标准差；std 为 0 时全部返回 0。
func Standardize(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}
