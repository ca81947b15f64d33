package rank

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/utils"
)

// ScoreSort 直接使用召回阶段给出的分数（例如余弦相似度）排序，不改分。
type ScoreSort struct{}

var _ pipeline.Node = (*ScoreSort)(nil)

func (n *ScoreSort) Name() string        { return "rank.score" }
func (n *ScoreSort) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ScoreSort) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	SortByScore(items)
	for _, it := range items {
		if it != nil {
			it.PutLabel("rank_type", utils.Label{Value: "score", Source: "rank"})
		}
	}
	return items, nil
}
