package config

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rushteam/swipekit/pipeline"
)

// 声明式选品链依赖 init 注册，入口需 import _ "github.com/rushteam/swipekit/config/builders"。

// NodeBuilder 与 pipeline.NodeBuilder 一致：根据 config 构建 Node。
type NodeBuilder = pipeline.NodeBuilder

// nodeRegistry 是进程级的节点类型表，只在 init 阶段写入
var nodeRegistry = struct {
	sync.RWMutex
	builders map[string]NodeBuilder
}{builders: map[string]NodeBuilder{}}

// Register 登记一种节点类型，同名后注册者覆盖先注册者。
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	nodeRegistry.Lock()
	nodeRegistry.builders[typeName] = builder
	nodeRegistry.Unlock()
}

// SupportedTypes 返回已登记的节点类型（升序）
func SupportedTypes() []string {
	nodeRegistry.RLock()
	defer nodeRegistry.RUnlock()
	return slices.Sorted(maps.Keys(nodeRegistry.builders))
}

// DefaultFactory 返回注册表当前内容的快照工厂
func DefaultFactory() *pipeline.NodeFactory {
	nodeRegistry.RLock()
	defer nodeRegistry.RUnlock()
	return pipeline.NewNodeFactory(nodeRegistry.builders)
}

// ValidatePipelineConfig 要求选品链非空，且每个节点都有已登记的类型。
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return fmt.Errorf("pipeline %q has no nodes", cfg.Pipeline.Name)
	}
	factory := DefaultFactory()
	for i, typ := range cfg.Types() {
		switch {
		case typ == "":
			return fmt.Errorf("node #%d has no type", i)
		case !factory.Has(typ):
			return fmt.Errorf("node #%d: unsupported type %q (supported: %v)", i, typ, SupportedTypes())
		}
	}
	return nil
}

// LoadPipeline 读取 YAML/JSON 选品链定义，校验后按注册表构建。
func LoadPipeline(path string) (*pipeline.Pipeline, error) {
	pc, err := pipeline.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ValidatePipelineConfig(pc); err != nil {
		return nil, err
	}
	return pc.Build(DefaultFactory())
}
