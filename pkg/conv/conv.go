// Package conv 读取节点参数：YAML/JSON 解码得到的 map[string]any 中，
// 数字可能是 int、int64 或 float64，环境变量覆盖时还可能是字符串。
package conv

import (
	"strconv"
	"strings"
)

// Number 是节点参数支持的数值类型
type Number interface {
	~int | ~int64 | ~float64
}

// ToFloat64 把任意数值（或可解析为数值的字符串）转为 float64
func ToFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// ConvertSlice 逐个转换，convert 拒绝的元素被丢弃
func ConvertSlice[T, U any](s []T, convert func(T) (U, bool)) []U {
	if s == nil {
		return nil
	}
	out := make([]U, 0, len(s))
	for _, v := range s {
		if u, ok := convert(v); ok {
			out = append(out, u)
		}
	}
	return out
}

// SliceAnyToString 读取 ID 列表。YAML 里未加引号的数字 ID 按整数格式化，其他类型丢弃。
func SliceAnyToString(v any) []string {
	raw, _ := v.([]any)
	return ConvertSlice(raw, func(e any) (string, bool) {
		switch x := e.(type) {
		case string:
			return x, true
		case bool:
			return "", false
		}
		if f, ok := ToFloat64(e); ok {
			return strconv.FormatFloat(f, 'f', 0, 64), true
		}
		return "", false
	})
}

// SliceAnyToFloat64 读取数值列表，非数值元素被丢弃
func SliceAnyToFloat64(v any) []float64 {
	raw, _ := v.([]any)
	return ConvertSlice(raw, ToFloat64)
}

// ConfigGet 按 key 取 T 类型的值，缺失或类型不符时返回 def
func ConfigGet[T any](m map[string]any, key string, def T) T {
	if t, ok := m[key].(T); ok {
		return t
	}
	return def
}

// ConfigGetNumber 按 key 取数值，跨数值类型转换；缺失或不可转换时返回 def
func ConfigGetNumber[N Number](m map[string]any, key string, def N) N {
	if i, ok := m[key].(int64); ok {
		return N(i)
	}
	if f, ok := ToFloat64(m[key]); ok {
		return N(f)
	}
	return def
}

func ConfigGetInt(m map[string]any, key string, def int) int {
	return ConfigGetNumber(m, key, def)
}

func ConfigGetInt64(m map[string]any, key string, def int64) int64 {
	return ConfigGetNumber(m, key, def)
}

func ConfigGetFloat64(m map[string]any, key string, def float64) float64 {
	return ConfigGetNumber(m, key, def)
}
