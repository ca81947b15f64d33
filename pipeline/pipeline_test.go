package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rushteam/placerec/core"
)

type appendNode struct {
	id  int64
	err error
}

func (n *appendNode) Name() string { return "test.append" }
func (n *appendNode) Kind() Kind   { return KindRecall }
func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.err != nil {
		return nil, n.err
	}
	return append(items, core.NewItem(n.id)), nil
}

func TestPipelineRun(t *testing.T) {
	var observed []string
	p := &Pipeline{
		Nodes: []Node{&appendNode{id: 1}, &appendNode{id: 2}},
		Observer: func(node Node, _ time.Duration, in, out int, _ error) {
			observed = append(observed, node.Name())
		},
	}
	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(items) != 2 || items[0].ID != 1 || items[1].ID != 2 {
		t.Fatalf("unexpected items: %+v", items)
	}
	if len(observed) != 2 {
		t.Errorf("observer called %d times, want 2", len(observed))
	}
}

func TestPipelineRunError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{id: 1}, &appendNode{err: boom}, &appendNode{id: 3}}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}

func TestPipelineRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{&appendNode{id: 1}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPipelineAppend(t *testing.T) {
	base := &Pipeline{Nodes: []Node{&appendNode{id: 1}}}
	ext := base.Append(&appendNode{id: 2})
	if len(base.Nodes) != 1 || len(ext.Nodes) != 2 {
		t.Fatalf("Append must not mutate base: base=%d ext=%d", len(base.Nodes), len(ext.Nodes))
	}
}

func TestLoadFromYAMLAndBuild(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.yaml")
	yml := `pipeline:
  name: similar
  nodes:
    - type: test.append
      config:
        id: 7
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromYAML(path)
	if err != nil {
		t.Fatalf("LoadFromYAML: %v", err)
	}
	if cfg.Pipeline.Name != "similar" || len(cfg.Pipeline.Nodes) != 1 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	factory := NewNodeFactory()
	factory.Register("test.append", func(c map[string]any) (Node, error) {
		id, _ := c["id"].(int)
		return &appendNode{id: int64(id)}, nil
	})
	p, err := cfg.BuildPipeline(factory)
	if err != nil {
		t.Fatalf("BuildPipeline: %v", err)
	}
	items, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	if err != nil || len(items) != 1 || items[0].ID != 7 {
		t.Fatalf("items=%v err=%v", items, err)
	}

	if _, err := NewNodeFactory().Build("nope", nil); err == nil {
		t.Error("unknown node type should fail")
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "pipeline.json")
	if err := os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"similar","nodes":[{"type":"rank.score"}]}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(jsonPath)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Pipeline.Nodes) != 1 || cfg.Pipeline.Nodes[0].Type != "rank.score" {
		t.Errorf("cfg = %+v", cfg)
	}
	if _, err := Load(filepath.Join(dir, "pipeline.toml")); err == nil {
		t.Error("unknown extension should fail")
	}
	if _, err := NewNodeFactory().Build("nope", nil); !core.IsInvalidInput(err) {
		t.Errorf("err = %v", err)
	}
}
