package engine

import (
	"context"
	"fmt"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/filter"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
	"github.com/rushteam/placerec/pipeline"
)

// Recommendation 是相似推荐的返回记录，字段名沿用对外 API。
type Recommendation struct {
	PlaceID         int64   `json:"Place_Id"`
	PlaceName       string  `json:"Place_Name"`
	Category        string  `json:"Category"`
	Price           float64 `json:"Price"`
	SimilarityScore float64 `json:"Similarity_Score"`
}

// RecommendOptions 是单次相似推荐的可选参数
type RecommendOptions struct {
	// TopK <= 0 时使用引擎默认值
	TopK int

	// Filter 是 CEL 保留条件，例如 `item.price <= 20000`
	Filter string
}

// Recommend 返回与 placeID 最相似的景点（不含自身），分数不增。
// placeID 不在评分矩阵中时返回 core.ErrPlaceNotFound。
func (e *Engine) Recommend(ctx context.Context, placeID int64, opts RecommendOptions) ([]Recommendation, error) {
	rctx := &core.RecommendContext{
		PlaceID: placeID,
		Scene:   "similar",
		Params:  map[string]any{},
	}
	if opts.TopK > 0 {
		rctx.Params["top_k"] = opts.TopK
	}

	p := e.similar
	if opts.Filter != "" {
		f, err := filter.NewExprFilter(opts.Filter)
		if err != nil {
			metrics.RecordRecommendation("similar", outcome(err))
			return nil, err
		}
		rctx.Params["filter"] = opts.Filter
		p = insertNode(p, 3, filter.NewFilterNode(f))
	}

	items, err := p.Run(ctx, rctx, nil)
	metrics.RecordRecommendation("similar", outcome(err))
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Int64("place_id", placeID).Msg("recommend failed")
		return nil, err
	}

	out := make([]Recommendation, 0, len(items))
	for _, it := range items {
		price, _ := it.MetaFloat(core.MetaPrice)
		out = append(out, Recommendation{
			PlaceID:         it.ID,
			PlaceName:       it.MetaString(core.MetaName),
			Category:        it.MetaString(core.MetaCategory),
			Price:           price,
			SimilarityScore: it.Score,
		})
	}
	return out, nil
}

// RecommendForUser 用评分模型为用户打分所有未评分景点，返回分数最高的景点名称。
// 未知用户不是错误：所有景点都是候选。未配置模型时返回 core.ErrModelUnavailable。
func (e *Engine) RecommendForUser(ctx context.Context, userID int64) ([]string, error) {
	if e.opts.Model == nil {
		metrics.RecordRecommendation("personal", outcome(core.ErrModelUnavailable))
		return nil, core.ErrModelUnavailable
	}
	rctx := &core.RecommendContext{UserID: userID, Scene: "personal"}

	items, err := e.personal.Run(ctx, rctx, nil)
	metrics.RecordRecommendation("personal", outcome(err))
	if err != nil {
		return nil, fmt.Errorf("recommend for user %d: %w", userID, err)
	}

	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.MetaString(core.MetaName))
	}
	return names, nil
}

// insertNode 返回在第 i 个节点之前插入 node 的新 Pipeline，原 Pipeline 不变。
func insertNode(p *pipeline.Pipeline, i int, node pipeline.Node) *pipeline.Pipeline {
	if i > len(p.Nodes) {
		i = len(p.Nodes)
	}
	nodes := make([]pipeline.Node, 0, len(p.Nodes)+1)
	nodes = append(nodes, p.Nodes[:i]...)
	nodes = append(nodes, node)
	nodes = append(nodes, p.Nodes[i:]...)
	return &pipeline.Pipeline{Nodes: nodes, Observer: p.Observer}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case core.IsNotFound(err):
		return "not_found"
	case core.IsUnavailable(err):
		return "unavailable"
	case core.IsInvalidInput(err):
		return "invalid_input"
	default:
		return "error"
	}
}
