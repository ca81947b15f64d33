package store

import (
	"context"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/rushteam/placerec/core"
)

func exercise(t *testing.T, s core.KeyValueStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "t:missing"); !core.IsStoreNotFound(err) {
		t.Errorf("Get missing err = %v", err)
	}
	if err := s.Set(ctx, "t:a", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if v, err := s.Get(ctx, "t:a"); err != nil || string(v) != "1" {
		t.Errorf("Get = %q, %v", v, err)
	}
	if err := s.BatchSet(ctx, map[string][]byte{"t:b": []byte("2"), "t:c": []byte("3")}); err != nil {
		t.Fatal(err)
	}
	got, err := s.BatchGet(ctx, []string{"t:a", "t:b", "t:zz"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || string(got["t:b"]) != "2" {
		t.Errorf("BatchGet = %v", got)
	}
	if err := s.Delete(ctx, "t:a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "t:a"); !core.IsStoreNotFound(err) {
		t.Errorf("deleted key err = %v", err)
	}

	_ = s.Delete(ctx, "t:z")
	_ = s.ZAdd(ctx, "t:z", 1, "low")
	_ = s.ZAdd(ctx, "t:z", 3, "high")
	_ = s.ZAdd(ctx, "t:z", 2, "mid")
	members, err := s.ZRange(ctx, "t:z", 0, -1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(members, []string{"high", "mid", "low"}) {
		t.Errorf("ZRange = %v", members)
	}
	if top, _ := s.ZRange(ctx, "t:z", 0, 0); !reflect.DeepEqual(top, []string{"high"}) {
		t.Errorf("ZRange top1 = %v", top)
	}
	if score, err := s.ZScore(ctx, "t:z", "mid"); err != nil || score != 2 {
		t.Errorf("ZScore = %v, %v", score, err)
	}
	if _, err := s.ZScore(ctx, "t:z", "nobody"); !core.IsStoreNotFound(err) {
		t.Errorf("ZScore missing err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exercise(t, s)
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"), 1)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("fresh key: %v", err)
	}
	s.mu.Lock()
	past := time.Now().Add(-time.Second)
	s.data["k"].ttl = &past
	s.mu.Unlock()
	if _, err := s.Get(ctx, "k"); !core.IsStoreNotFound(err) {
		t.Errorf("expired key err = %v", err)
	}
}

func TestMemoryStoreCloseIdempotent(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	s, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Name() != "memory" {
		t.Errorf("default store = %s", s.Name())
	}
	if _, err := New(context.Background(), Config{Type: "etcd"}); err == nil {
		t.Error("unknown type should fail")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := NewRedisStore(ctx, Config{Addr: addr, DB: 15})
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	defer s.Close()
	exercise(t, s)
}
