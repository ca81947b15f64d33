package rank

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/utils"
)

// ModelNode 调用 core.MLService 为 (用户, 景点) 对打分，并按预测分数降序排序。
//
// 每个候选景点构造一条特征 {user_id, place_id}；候选按 BatchSize 分批并发请求。
type ModelNode struct {
	Service core.MLService

	// ModelName / ModelVersion 透传给服务端
	ModelName    string
	ModelVersion string

	// BatchSize 单次预测的最大条数，<=0 时不分批
	BatchSize int

	// MaxConcurrent 最大并发批数，<=0 时为 4
	MaxConcurrent int
}

var _ pipeline.Node = (*ModelNode)(nil)

func (n *ModelNode) Name() string        { return "rank.model" }
func (n *ModelNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *ModelNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.Service == nil {
		return nil, core.ErrModelUnavailable
	}

	valid := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it != nil {
			valid = append(valid, it)
		}
	}
	if len(valid) == 0 {
		return valid, nil
	}

	var userID int64
	if rctx != nil {
		userID = rctx.UserID
	}

	batch := n.BatchSize
	if batch <= 0 || batch > len(valid) {
		batch = len(valid)
	}
	limit := n.MaxConcurrent
	if limit <= 0 {
		limit = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for start := 0; start < len(valid); start += batch {
		end := start + batch
		if end > len(valid) {
			end = len(valid)
		}
		chunk := valid[start:end]
		g.Go(func() error {
			return n.predict(gctx, userID, chunk)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	SortByScore(valid)
	return valid, nil
}

func (n *ModelNode) predict(ctx context.Context, userID int64, chunk []*core.Item) error {
	features := make([]map[string]float64, len(chunk))
	for i, it := range chunk {
		f := map[string]float64{
			core.FeatureUserID:  float64(userID),
			core.FeaturePlaceID: float64(it.ID),
		}
		for k, v := range it.Features {
			if _, ok := f[k]; !ok {
				f[k] = v
			}
		}
		features[i] = f
	}

	resp, err := n.Service.Predict(ctx, &core.MLPredictRequest{
		Features:     features,
		ModelName:    n.ModelName,
		ModelVersion: n.ModelVersion,
	})
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	if len(resp.Predictions) != len(chunk) {
		return fmt.Errorf("predict: got %d predictions for %d places: %w",
			len(resp.Predictions), len(chunk), core.ErrModelUnavailable)
	}

	model := n.ModelName
	if model == "" {
		model = "default"
	}
	for i, it := range chunk {
		it.Score = resp.Predictions[i]
		it.PutLabel("rank_model", utils.Label{Value: model, Source: "rank"})
		it.PutLabel("rank_type", utils.Label{Value: "model", Source: "rank"})
	}
	return nil
}
