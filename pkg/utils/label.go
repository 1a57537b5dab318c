// Package utils 提供候选与请求上共用的标签类型。
package utils

import "strings"

// Label 记录某个阶段对候选（或整个请求）做出的判断，用于 explain 与观测。
// Source 标明写入的阶段：filter / rank / rerank / selector / explore。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"`
}

// MergeLabel 合并同名 Label：不同的 Value 以 '|' 累积，不同的 Source 以 ',' 累积，
// 已存在的值不重复追加。空值一侧直接让位。
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}
	return Label{
		Value:  appendUnique(existing.Value, incoming.Value, "|"),
		Source: appendUnique(existing.Source, incoming.Source, ","),
	}
}

// Values 返回合并后 Value 中的各个值
func (l Label) Values() []string {
	if l.Value == "" {
		return nil
	}
	return strings.Split(l.Value, "|")
}

func appendUnique(joined, v, sep string) string {
	switch {
	case v == "":
		return joined
	case joined == "":
		return v
	}
	for _, part := range strings.Split(joined, sep) {
		if part == v {
			return joined
		}
	}
	return joined + sep + v
}
