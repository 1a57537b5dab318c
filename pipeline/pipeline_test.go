package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rushteam/swipekit/core"
)

type dropFirst struct{}

func (dropFirst) Name() string { return "test.drop_first" }
func (dropFirst) Kind() Kind   { return KindFilter }
func (dropFirst) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	return items[1:], nil
}

type failing struct{}

func (failing) Name() string { return "test.failing" }
func (failing) Kind() Kind   { return KindRank }
func (failing) Process(context.Context, *core.RecommendContext, []*core.Item) ([]*core.Item, error) {
	return nil, errors.New("boom")
}

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.NewItem(core.ItemMetadata{ItemID: id}))
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{}, dropFirst{}}}
	out, err := p.Run(context.Background(), &core.RecommendContext{}, items("a", "b", "c"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != "c" {
		t.Errorf("Run() = %v", out)
	}
}

func TestPipeline_RunError(t *testing.T) {
	p := &Pipeline{Nodes: []Node{dropFirst{}, failing{}}}
	_, err := p.Run(context.Background(), &core.RecommendContext{}, items("a", "b"))
	if err == nil || !strings.Contains(err.Error(), "test.failing") {
		t.Fatalf("Run() error = %v, want node name in error", err)
	}
}

func TestPipeline_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &Pipeline{Nodes: []Node{dropFirst{}}}
	if _, err := p.Run(ctx, &core.RecommendContext{}, items("a")); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}

func TestConfig_Build(t *testing.T) {
	cfg, err := ParseYAML([]byte(`
pipeline:
  name: test
  nodes:
    - type: drop
    - type: drop
      config:
        ignored: true
`))
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}

	f := NewNodeFactory(map[string]NodeBuilder{
		"drop": func(map[string]any) (Node, error) { return dropFirst{}, nil },
	})
	if !f.Has("drop") || f.Has("missing") {
		t.Fatal("Has() mismatch")
	}
	p, err := cfg.Build(f)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(p.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(p.Nodes))
	}

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "missing"})
	if got := cfg.Types(); len(got) != 3 || got[2] != "missing" {
		t.Errorf("Types() = %v", got)
	}
	if _, err := cfg.Build(f); err == nil {
		t.Error("expected unknown node type error")
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "chain.json")
	if err := os.WriteFile(jsonPath, []byte(`{"pipeline":{"name":"j","nodes":[{"type":"drop"}]}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "chain.yaml")
	if err := os.WriteFile(yamlPath, []byte("pipeline:\n  name: y\n  nodes:\n    - type: drop\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{jsonPath, yamlPath} {
		cfg, err := LoadFile(path)
		if err != nil {
			t.Fatalf("LoadFile(%s) error = %v", path, err)
		}
		if got := cfg.Types(); len(got) != 1 || got[0] != "drop" {
			t.Errorf("LoadFile(%s) types = %v", path, got)
		}
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}
