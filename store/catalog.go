package store

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/swipekit/core"
)

// MemoryCatalog 是内存物品目录，支持整体替换（热更新）。
type MemoryCatalog struct {
	mu    sync.RWMutex
	items []core.ItemMetadata
}

var _ core.CatalogStore = (*MemoryCatalog)(nil)

// NewMemoryCatalog 用给定物品创建目录
func NewMemoryCatalog(items ...core.ItemMetadata) *MemoryCatalog {
	c := &MemoryCatalog{}
	c.Replace(items)
	return c
}

// Replace 整体替换目录内容
func (c *MemoryCatalog) Replace(items []core.ItemMetadata) {
	cp := make([]core.ItemMetadata, len(items))
	copy(cp, items)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].ItemID < cp[j].ItemID })

	c.mu.Lock()
	c.items = cp
	c.mu.Unlock()
}

func (c *MemoryCatalog) ListActiveItems(ctx context.Context) ([]core.ItemMetadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]core.ItemMetadata, 0, len(c.items))
	for _, it := range c.items {
		if it.IsActive {
			out = append(out, it)
		}
	}
	return out, nil
}

// catalogFile 是目录 YAML 文件的结构
//
//	items:
//	  - item_id: sku-1
//	    tags: [summer, leisure]
//	    category: dress
//	    brand: acme
//	    price: 59.9
//	    rating_count: 120
//	    rating_average: 4.6
//	    is_active: true
type catalogFile struct {
	Items []core.ItemMetadata `yaml:"items" validate:"dive"`
}

var validate = validator.New()

// LoadCatalogYAML 从 YAML 文件读取并校验物品目录
func LoadCatalogYAML(path string) ([]core.ItemMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalogYAML(data)
}

// ParseCatalogYAML 解析并校验物品目录，重复的 item_id 视为错误
func ParseCatalogYAML(data []byte) ([]core.ItemMetadata, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(f.Items))
	for _, it := range f.Items {
		if _, dup := seen[it.ItemID]; dup {
			return nil, fmt.Errorf("invalid catalog: duplicate item_id %q", it.ItemID)
		}
		seen[it.ItemID] = struct{}{}
	}
	return f.Items, nil
}
