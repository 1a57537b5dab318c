package core

import (
	"sort"

	"github.com/goccy/go-json"
)

// Set 是字符串集合，用于标签、品牌、类目和已展示物品。
// 序列化为有序字符串数组，保证输出稳定。
type Set map[string]struct{}

// NewSet 用给定元素创建集合
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add 添加元素（nil 集合会 panic，请先 NewSet）
func (s Set) Add(v string) {
	s[v] = struct{}{}
}

// Has 判断是否包含元素，nil 集合安全
func (s Set) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Sorted 返回排好序的元素列表
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Clone 复制集合
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}

// UnmarshalYAML 支持 yaml.v3 直接把序列解码为集合
func (s *Set) UnmarshalYAML(unmarshal func(any) error) error {
	var values []string
	if err := unmarshal(&values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}
