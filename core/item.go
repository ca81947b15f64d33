package core

import "github.com/rushteam/placerec/pkg/utils"

// Item 是推荐链路中的统一承载结构：一个候选景点及其分数、特征、元信息、标签。
// ID 即 Place_Id；Score 用于排序决策；Meta 存放名称、类别、价格等展示字段。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Meta     map[string]any
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Features: make(map[string]float64),
		Meta:     make(map[string]any),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// MetaString 读取字符串类型的元信息，不存在或类型不符时返回空串。
func (it *Item) MetaString(key string) string {
	if it.Meta == nil {
		return ""
	}
	s, _ := it.Meta[key].(string)
	return s
}

// MetaFloat 读取数值类型的元信息。
func (it *Item) MetaFloat(key string) (float64, bool) {
	if it.Meta == nil {
		return 0, false
	}
	f, ok := it.Meta[key].(float64)
	return f, ok
}
