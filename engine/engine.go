// Package engine 持有推荐快照，并把召回、过滤、排序、重排组装成相似推荐与个性化推荐两条 Pipeline。
package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rushteam/placerec/cluster"
	"github.com/rushteam/placerec/config"
	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/dataset"
	"github.com/rushteam/placerec/feature"
	"github.com/rushteam/placerec/filter"
	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/metrics"
	"github.com/rushteam/placerec/pipeline"
	"github.com/rushteam/placerec/pkg/conv"
	"github.com/rushteam/placerec/rank"
	"github.com/rushteam/placerec/recall"
	"github.com/rushteam/placerec/rerank"
)

// 召回来源
const (
	RecallSnapshot = "snapshot"
	RecallStore    = "store"
)

// Options 是引擎配置，零值字段使用 core.DefaultRecommendConfig 的默认值。
type Options struct {
	TopK     int
	Clusters int
	Seed     int64

	// Model 为 nil 时个性化推荐返回 core.ErrModelUnavailable
	Model        core.MLService
	ModelName    string
	ModelVersion string
	BatchSize    int

	// Store 为 nil 时不发布快照
	Store              core.KeyValueStore
	KeyPrefix          string
	NeighborsPublished int
	RecallSource       string

	Blacklist []int64

	// Pipeline 描述相似推荐的中间段（过滤、排序、重排）；为 nil 时只做 rank.score
	Pipeline *pipeline.Config

	Defaults core.RecommendConfig
}

// Engine 是无锁的只读推荐服务，所有方法可并发调用。
type Engine struct {
	snap *Snapshot
	opts Options

	similar  *pipeline.Pipeline
	personal *pipeline.Pipeline

	neighbors *recall.NeighborStoreAdapter
	filters   *filter.StoreAdapter
	lookup    *feature.StoreLookup
}

// New 加载后的数据集构建快照并组装 Pipeline。
func New(ds *dataset.Dataset, opts Options) (*Engine, error) {
	opts = withDefaults(opts)

	start := time.Now()
	snap, err := BuildSnapshot(ds, cluster.KMeans{K: opts.Clusters, Seed: opts.Seed})
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(start)
	metrics.SnapshotBuildDuration.Set(elapsed.Seconds())
	metrics.SnapshotSize.WithLabelValues("places").Set(float64(len(snap.Places)))
	metrics.SnapshotSize.WithLabelValues("ratings").Set(float64(len(ds.Ratings) - snap.DroppedRatings))
	metrics.SnapshotSize.WithLabelValues("users").Set(float64(len(snap.Users)))
	metrics.SnapshotSize.WithLabelValues("skipped_rows").Set(float64(
		ds.PlaceStats.Skipped + ds.RatingStats.Skipped + ds.UserStats.Skipped))

	places, users := snap.Ratings.Dims()
	ev := logging.Info().
		Int("places", len(snap.Places)).
		Int("matrix_places", places).
		Int("matrix_users", users).
		Int("dropped_ratings", snap.DroppedRatings).
		Dur("elapsed", elapsed)
	for stage, d := range snap.Timings {
		ev = ev.Dur(stage, d)
	}
	ev.Msg("snapshot built")

	e := &Engine{snap: snap, opts: opts}
	if opts.Store != nil {
		e.neighbors = recall.NewNeighborStoreAdapter(opts.Store, opts.KeyPrefix)
		e.filters = filter.NewStoreAdapter(opts.Store, opts.KeyPrefix)
		e.lookup = feature.NewStoreLookup(opts.Store, opts.KeyPrefix)
	}
	if err := e.buildPipelines(); err != nil {
		return nil, err
	}
	return e, nil
}

func withDefaults(opts Options) Options {
	d := opts.Defaults
	if d == nil {
		d = &core.DefaultRecommendConfig{}
	}
	if opts.TopK <= 0 {
		opts.TopK = d.DefaultTopK()
	}
	if opts.Clusters <= 0 {
		opts.Clusters = d.DefaultClusters()
	}
	if opts.Seed == 0 {
		opts.Seed = d.DefaultSeed()
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = d.DefaultBatchSize()
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = "placerec"
	}
	if opts.RecallSource == "" {
		opts.RecallSource = RecallSnapshot
	}
	if opts.NeighborsPublished <= 0 {
		opts.NeighborsPublished = 20
	}
	return opts
}

func (e *Engine) blacklistKey() string { return e.opts.KeyPrefix + ":blacklist" }

func (e *Engine) blacklistFilter() *filter.BlacklistFilter {
	return filter.NewBlacklistFilter(e.opts.Blacklist, e.filters, e.blacklistKey())
}

// factory 在内置注册表之上，把 filter.blacklist 绑定到当前存储
func (e *Engine) factory() *pipeline.NodeFactory {
	f := config.DefaultFactory()
	f.Register("filter.blacklist", func(cfg map[string]any) (pipeline.Node, error) {
		bl := e.blacklistFilter()
		bl.PlaceIDs = append(slices.Clone(bl.PlaceIDs), conv.SliceAnyToInt64(cfg["place_ids"])...)
		return filter.NewFilterNode(bl), nil
	})
	return f
}

// ensureRanked 保证重排节点和末尾的 TopN 拿到的是按分数排好的列表：
// 配置里没有在重排前出现 rank 节点时补一个 rank.ScoreSort。
func ensureRanked(nodes []pipeline.Node) []pipeline.Node {
	out := make([]pipeline.Node, 0, len(nodes)+1)
	ranked := false
	for _, n := range nodes {
		switch n.Kind() {
		case pipeline.KindRank:
			ranked = true
		case pipeline.KindReRank:
			if !ranked {
				out = append(out, &rank.ScoreSort{})
				ranked = true
			}
		}
		out = append(out, n)
	}
	if !ranked {
		out = append(out, &rank.ScoreSort{})
	}
	return out
}

func (e *Engine) buildPipelines() error {
	var catalog feature.PlaceLookup = feature.Catalog(e.snap.Places)
	if e.opts.RecallSource == RecallStore && e.lookup != nil {
		catalog = e.lookup
	}
	enrich := &feature.EnrichNode{Catalog: catalog}

	var source recall.Source = &recall.ItemSimilarity{Similarity: e.snap.Similarity}
	if e.opts.RecallSource == RecallStore && e.neighbors != nil {
		source = &recall.Fallback{
			Sources: []recall.Source{
				&recall.StoredNeighbors{Adapter: e.neighbors},
				source,
			},
		}
	}

	middle := []pipeline.Node{&rank.ScoreSort{}}
	if e.opts.Pipeline != nil && len(e.opts.Pipeline.Pipeline.Nodes) > 0 {
		if err := config.ValidatePipelineConfig(e.opts.Pipeline); err != nil {
			return err
		}
		p, err := e.opts.Pipeline.BuildPipeline(e.factory())
		if err != nil {
			return fmt.Errorf("build pipeline: %w", err)
		}
		middle = ensureRanked(p.Nodes)
	}

	nodes := []pipeline.Node{
		&recall.Node{Source: source},
		enrich,
		filter.NewFilterNode(filter.SelfFilter{}, e.blacklistFilter()),
	}
	nodes = append(nodes, middle...)
	nodes = append(nodes, &rerank.TopNNode{N: e.opts.TopK})
	e.similar = &pipeline.Pipeline{Nodes: nodes, Observer: observe}

	var rated filter.RatedStore = filter.RatedSets(e.snap.Rated)
	if e.opts.RecallSource == RecallStore && e.filters != nil {
		rated = e.filters
	}
	e.personal = &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&recall.Node{Source: &recall.Catalog{IDs: e.snap.PlaceIDs}},
			enrich,
			filter.NewFilterNode(&filter.RatedFilter{Store: rated}, e.blacklistFilter()),
			&rank.ModelNode{
				Service:      e.opts.Model,
				ModelName:    e.opts.ModelName,
				ModelVersion: e.opts.ModelVersion,
				BatchSize:    e.opts.BatchSize,
			},
			&rerank.TopNNode{N: e.opts.TopK},
		},
		Observer: observe,
	}
	return nil
}

func observe(node pipeline.Node, elapsed time.Duration, in, out int, err error) {
	metrics.ObserveNode(node.Name(), elapsed, in, out, err)
}

// Snapshot 返回只读快照
func (e *Engine) Snapshot() *Snapshot { return e.snap }

// ModelEnabled 是否配置了评分模型
func (e *Engine) ModelEnabled() bool { return e.opts.Model != nil }

// Health 返回模型状态：disabled / ok / unavailable
func (e *Engine) Health(ctx context.Context) string {
	if e.opts.Model == nil {
		return "disabled"
	}
	if err := e.opts.Model.Health(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("model health check failed")
		return "unavailable"
	}
	return "ok"
}

// Close 释放模型连接与存储
func (e *Engine) Close(ctx context.Context) error {
	var firstErr error
	if e.opts.Model != nil {
		if err := e.opts.Model.Close(ctx); err != nil {
			firstErr = err
		}
	}
	if e.opts.Store != nil {
		if err := e.opts.Store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
