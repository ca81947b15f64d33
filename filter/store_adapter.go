package filter

import (
	"context"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/rushteam/placerec/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
//
// 黑名单 value 为 JSON 数组 [12, 40]；
// 用户已评分集合的 key 为 {KeyPrefix}:rated:{userID}，value 同样是 JSON 数组。
type StoreAdapter struct {
	store     core.Store
	KeyPrefix string
}

var (
	_ BlacklistStore = (*StoreAdapter)(nil)
	_ RatedStore     = (*StoreAdapter)(nil)
)

// NewStoreAdapter 创建一个 core.Store 适配器，keyPrefix 为空时使用 "placerec"。
func NewStoreAdapter(s core.Store, keyPrefix string) *StoreAdapter {
	if keyPrefix == "" {
		keyPrefix = "placerec"
	}
	return &StoreAdapter{store: s, KeyPrefix: keyPrefix}
}

// GetBlacklist 从 Store 读取黑名单。
func (a *StoreAdapter) GetBlacklist(ctx context.Context, key string) ([]int64, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode blacklist %s: %w", key, err)
	}
	return ids, nil
}

// SetBlacklist 写入黑名单
func (a *StoreAdapter) SetBlacklist(ctx context.Context, key string, ids []int64) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}

func (a *StoreAdapter) ratedKey(userID int64) string {
	return a.KeyPrefix + ":rated:" + strconv.FormatInt(userID, 10)
}

// RatedPlaces 从 Store 读取用户已评分的景点集合。
func (a *StoreAdapter) RatedPlaces(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	data, err := a.store.Get(ctx, a.ratedKey(userID))
	if err != nil {
		return nil, err
	}
	var ids []int64
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decode rated places of user %d: %w", userID, err)
	}
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// SaveRated 批量写入用户已评分集合
func (a *StoreAdapter) SaveRated(ctx context.Context, rated map[int64][]int64, ttl ...int) error {
	kvs := make(map[string][]byte, len(rated))
	for uid, ids := range rated {
		data, err := json.Marshal(ids)
		if err != nil {
			return err
		}
		kvs[a.ratedKey(uid)] = data
	}
	return a.store.BatchSet(ctx, kvs, ttl...)
}
