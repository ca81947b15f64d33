package matrix

import "sort"

// SortNeighbors 按分数降序稳定排序，同分保持原有顺序。
func SortNeighbors(ns []Neighbor) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].Score > ns[j].Score
	})
}
