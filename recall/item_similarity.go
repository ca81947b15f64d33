package recall

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/matrix"
)

// ItemSimilarity 以目标景点（rctx.PlaceID）在相似度矩阵中的整行作为候选，
// 按矩阵行顺序输出，Score 为相似度。目标景点本身也在其中，由 filter.SelfFilter 剔除。
type ItemSimilarity struct {
	Similarity *matrix.Similarity
}

func (r *ItemSimilarity) Name() string { return "recall.item_similarity" }

func (r *ItemSimilarity) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	row, err := r.Similarity.Row(rctx.PlaceID)
	if err != nil {
		return nil, err
	}
	rm := r.Similarity.Ratings()
	out := make([]*core.Item, len(row))
	for j, score := range row {
		it := core.NewItem(rm.PlaceAt(j))
		it.Score = score
		out[j] = it
	}
	return out, nil
}
