package recall

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/matrix"
)

// NeighborStoreAdapter 在 core.Store 中读写预计算的相似邻居表。
//
// key 格式：{KeyPrefix}:sim:{placeID}，value 为 JSON [{"id":..,"score":..}, ...]（降序）。
type NeighborStoreAdapter struct {
	store     core.Store
	KeyPrefix string
}

// NewNeighborStoreAdapter 创建适配器，keyPrefix 为空时使用 "placerec"。
func NewNeighborStoreAdapter(s core.Store, keyPrefix string) *NeighborStoreAdapter {
	if keyPrefix == "" {
		keyPrefix = "placerec"
	}
	return &NeighborStoreAdapter{store: s, KeyPrefix: keyPrefix}
}

func (a *NeighborStoreAdapter) key(placeID int64) string {
	return a.KeyPrefix + ":sim:" + strconv.FormatInt(placeID, 10)
}

// SaveNeighbors 批量写入邻居表
func (a *NeighborStoreAdapter) SaveNeighbors(ctx context.Context, neighbors map[int64][]matrix.Neighbor, ttl ...int) error {
	kvs := make(map[string][]byte, len(neighbors))
	for id, ns := range neighbors {
		data, err := json.Marshal(ns)
		if err != nil {
			return fmt.Errorf("marshal neighbors %d: %w", id, err)
		}
		kvs[a.key(id)] = data
	}
	return a.store.BatchSet(ctx, kvs, ttl...)
}

// GetNeighbors 读取某景点的邻居表；不存在时返回 core.ErrPlaceNotFound。
func (a *NeighborStoreAdapter) GetNeighbors(ctx context.Context, placeID int64) ([]matrix.Neighbor, error) {
	data, err := a.store.Get(ctx, a.key(placeID))
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, fmt.Errorf("place %d: %w", placeID, core.ErrPlaceNotFound)
		}
		return nil, err
	}
	var ns []matrix.Neighbor
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("decode neighbors %d: %w", placeID, err)
	}
	return ns, nil
}

// StoredNeighbors 从 Store 中读取预计算的邻居作为召回结果，适合多副本共享同一份快照。
// 邻居表已经排除了目标景点并按分数降序。
type StoredNeighbors struct {
	Adapter *NeighborStoreAdapter
}

func (r *StoredNeighbors) Name() string { return "recall.stored_neighbors" }

func (r *StoredNeighbors) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	ns, err := r.Adapter.GetNeighbors(ctx, rctx.PlaceID)
	if err != nil {
		return nil, err
	}
	out := make([]*core.Item, len(ns))
	for i, n := range ns {
		it := core.NewItem(n.ID)
		it.Score = n.Score
		out[i] = it
	}
	return out, nil
}
