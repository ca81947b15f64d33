package rank

import (
	"sort"

	"github.com/rushteam/placerec/core"
)

// SortByScore 按 Score 降序稳定排序，同分保持原有（召回）顺序；nil 排在最后。
func SortByScore(items []*core.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		return items[i].Score > items[j].Score
	})
}
