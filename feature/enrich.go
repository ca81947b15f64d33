// Package feature 为候选景点补全展示字段与数值特征。
package feature

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/utils"
)

// PlaceLookup 按 ID 查询景点目录。
type PlaceLookup interface {
	Lookup(ctx context.Context, ids []int64) (map[int64]core.Place, error)
}

// Catalog 是内存版 PlaceLookup
type Catalog map[int64]core.Place

func (c Catalog) Lookup(_ context.Context, ids []int64) (map[int64]core.Place, error) {
	out := make(map[int64]core.Place, len(ids))
	for _, id := range ids {
		if p, ok := c[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

// EnrichNode 将景点的名称、类别、城市、价格、聚类写入 Item.Meta，
// 同时把价格与聚类作为数值特征写入 Item.Features。
// 目录中不存在的候选会被丢弃。
type EnrichNode struct {
	Catalog PlaceLookup
}

var _ pipeline.Node = (*EnrichNode)(nil)

func (n *EnrichNode) Name() string        { return "feature.enrich" }
func (n *EnrichNode) Kind() pipeline.Kind { return pipeline.KindPostProcess }

func (n *EnrichNode) Process(
	ctx context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Catalog == nil || len(items) == 0 {
		return items, nil
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if it != nil {
			ids = append(ids, it.ID)
		}
	}
	places, err := n.Catalog.Lookup(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		p, ok := places[it.ID]
		if !ok {
			continue
		}
		Apply(it, p)
		out = append(out, it)
	}
	return out, nil
}

// Apply 把单个景点的信息写入 Item。
func Apply(it *core.Item, p core.Place) {
	if it.Meta == nil {
		it.Meta = make(map[string]any, 5)
	}
	if it.Features == nil {
		it.Features = make(map[string]float64, 2)
	}
	it.Meta[core.MetaName] = p.Name
	it.Meta[core.MetaCategory] = p.Category
	it.Meta[core.MetaCity] = p.City
	it.Meta[core.MetaPrice] = p.Price
	it.Meta[core.MetaCluster] = p.Cluster
	it.Features["price"] = p.Price
	it.Features["cluster"] = float64(p.Cluster)
	it.PutLabel("category", utils.Label{Value: p.Category, Source: "feature"})
}
