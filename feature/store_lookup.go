package feature

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
)

// StoreLookup 从 core.Store 读取景点目录，key 为 {KeyPrefix}:place:{id}，value 为 JSON。
type StoreLookup struct {
	store     core.Store
	KeyPrefix string
}

var _ PlaceLookup = (*StoreLookup)(nil)

// NewStoreLookup keyPrefix 为空时使用 "placerec"
func NewStoreLookup(s core.Store, keyPrefix string) *StoreLookup {
	if keyPrefix == "" {
		keyPrefix = "placerec"
	}
	return &StoreLookup{store: s, KeyPrefix: keyPrefix}
}

type storedPlace struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	City     string  `json:"city"`
	Price    float64 `json:"price"`
	Lat      float64 `json:"lat"`
	Long     float64 `json:"long"`
	Cluster  int     `json:"cluster"`
}

func (s *StoreLookup) key(id int64) string {
	return s.KeyPrefix + ":place:" + strconv.FormatInt(id, 10)
}

// Save 批量写入景点目录
func (s *StoreLookup) Save(ctx context.Context, places []core.Place, ttl ...int) error {
	kvs := make(map[string][]byte, len(places))
	for _, p := range places {
		data, err := json.Marshal(storedPlace(p))
		if err != nil {
			return fmt.Errorf("marshal place %d: %w", p.ID, err)
		}
		kvs[s.key(p.ID)] = data
	}
	return s.store.BatchSet(ctx, kvs, ttl...)
}

func (s *StoreLookup) Lookup(ctx context.Context, ids []int64) (map[int64]core.Place, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	raw, err := s.store.BatchGet(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]core.Place, len(raw))
	for i, id := range ids {
		data, ok := raw[keys[i]]
		if !ok {
			continue
		}
		var sp storedPlace
		if err := json.Unmarshal(data, &sp); err != nil {
			return nil, fmt.Errorf("decode place %d: %w", id, err)
		}
		out[id] = core.Place(sp)
	}
	return out, nil
}
