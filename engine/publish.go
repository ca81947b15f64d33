package engine

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/logging"
	"github.com/rushteam/placerec/matrix"
)

func (e *Engine) hotKey() string { return e.opts.KeyPrefix + ":hot" }

func (e *Engine) clusterKey(label int) string {
	return e.opts.KeyPrefix + ":cluster:" + strconv.Itoa(label)
}

// Publish 把快照写入存储：景点目录、邻居表、已评分集合、热门有序集合、价格簇与黑名单。
// 未配置存储时直接返回。
func (e *Engine) Publish(ctx context.Context) error {
	if e.opts.Store == nil {
		return nil
	}
	start := time.Now()
	snap := e.snap

	if err := e.lookup.Save(ctx, snap.PlaceList()); err != nil {
		return fmt.Errorf("publish places: %w", err)
	}

	neighbors := make(map[int64][]matrix.Neighbor, len(snap.PlaceIDs))
	for _, id := range snap.Ratings.PlaceIDs() {
		ns, err := snap.Similarity.TopNeighbors(id, e.opts.NeighborsPublished)
		if err != nil {
			return err
		}
		neighbors[id] = ns
	}
	if err := e.neighbors.SaveNeighbors(ctx, neighbors); err != nil {
		return fmt.Errorf("publish neighbors: %w", err)
	}

	rated := make(map[int64][]int64, len(snap.Rated))
	for uid, set := range snap.Rated {
		ids := make([]int64, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		rated[uid] = ids
	}
	if err := e.filters.SaveRated(ctx, rated); err != nil {
		return fmt.Errorf("publish rated places: %w", err)
	}

	if err := e.opts.Store.Delete(ctx, e.hotKey()); err != nil {
		return fmt.Errorf("reset hot places: %w", err)
	}
	for _, id := range snap.HotIDs {
		if err := e.opts.Store.ZAdd(ctx, e.hotKey(), snap.MeanRatings[id], strconv.FormatInt(id, 10)); err != nil {
			return fmt.Errorf("publish hot places: %w", err)
		}
	}

	kvs := make(map[string][]byte, len(snap.Clusters.Summaries))
	for _, s := range snap.Clusters.Summaries {
		data, err := json.Marshal(s.PlaceIDs)
		if err != nil {
			return err
		}
		kvs[e.clusterKey(s.ClusterID)] = data
	}
	if err := e.opts.Store.BatchSet(ctx, kvs); err != nil {
		return fmt.Errorf("publish clusters: %w", err)
	}

	if len(e.opts.Blacklist) > 0 {
		if err := e.filters.SetBlacklist(ctx, e.blacklistKey(), e.opts.Blacklist); err != nil {
			return fmt.Errorf("publish blacklist: %w", err)
		}
	}

	logging.Info().
		Str("store", e.opts.Store.Name()).
		Int("neighbors", len(neighbors)).
		Int("users", len(rated)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot published")
	return nil
}
