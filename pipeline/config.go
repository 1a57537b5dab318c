package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 描述一条可由文件声明的选品链，YAML 与 JSON 共用同一结构：
//
//	pipeline:
//	  name: swipe
//	  nodes:
//	    - type: filter
//	      config: {filters: [{type: active}, {type: shown}]}
//	    - type: rank.score
//	    - type: rerank.category_shift
//	    - type: rerank.explore
//	    - type: rerank.diversity
//	    - type: rerank.topn
type Config struct {
	Pipeline struct {
		Name  string       `yaml:"name" json:"name"`
		Nodes []NodeConfig `yaml:"nodes" json:"nodes"`
	} `yaml:"pipeline" json:"pipeline"`
}

// NodeConfig 是链上一个节点的声明：Type 为注册名，Config 原样交给构建器。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config" json:"config"`
}

// Types 按声明顺序返回节点类型
func (c *Config) Types() []string {
	out := make([]string, len(c.Pipeline.Nodes))
	for i, nc := range c.Pipeline.Nodes {
		out[i] = nc.Type
	}
	return out
}

// LoadFile 读取选品链定义，.json 后缀按 JSON 解析，其余按 YAML 解析。
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseJSON(data)
	}
	return ParseYAML(data)
}

// ParseYAML 解析 YAML 形式的选品链定义
func ParseYAML(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("pipeline: decode yaml: %w", err)
	}
	return cfg, nil
}

// ParseJSON 解析 JSON 形式的选品链定义
func ParseJSON(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("pipeline: decode json: %w", err)
	}
	return cfg, nil
}

// Build 依次用 factory 构建每个节点。节点出错时报告其序号与类型。
func (c *Config) Build(factory *NodeFactory) (*Pipeline, error) {
	p := &Pipeline{Nodes: make([]Node, 0, len(c.Pipeline.Nodes))}
	for i, nc := range c.Pipeline.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("pipeline %q node #%d (%s): %w", c.Pipeline.Name, i, nc.Type, err)
		}
		p.Nodes = append(p.Nodes, node)
	}
	return p, nil
}

// NodeFactory 按类型名分发到 NodeBuilder。零值不可用，使用 NewNodeFactory。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

// NewNodeFactory 以 builders 的副本创建工厂，可为 nil。
func NewNodeFactory(builders map[string]NodeBuilder) *NodeFactory {
	f := &NodeFactory{builders: make(map[string]NodeBuilder, len(builders))}
	for name, b := range builders {
		f.Register(name, b)
	}
	return f
}

// Register 登记（或替换）一种节点类型
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	if nodeType == "" || builder == nil {
		return
	}
	f.builders[nodeType] = builder
}

// Has 报告类型是否已登记
func (f *NodeFactory) Has(nodeType string) bool {
	_, ok := f.builders[nodeType]
	return ok
}

// Build 构建单个节点；未登记的类型返回错误，nil config 视为空配置。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type %q", nodeType)
	}
	if config == nil {
		config = map[string]any{}
	}
	return builder(config)
}
