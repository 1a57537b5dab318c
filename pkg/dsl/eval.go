package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		// 物品
		cel.Variable("tags", cel.ListType(cel.StringType)),
		cel.Variable("category", cel.StringType),
		cel.Variable("brand", cel.StringType),
		cel.Variable("price", cel.DoubleType),
		cel.Variable("score", cel.DoubleType),
		// 请求时刻
		cel.Variable("hour", cel.IntType),
		cel.Variable("weekday", cel.IntType),
		cel.Variable("month", cel.IntType),
		cel.Variable("season", cel.StringType),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Vars 是表达式可见的变量。
type Vars struct {
	Tags     []string
	Category string
	Brand    string
	Price    float64
	Score    float64

	Hour    int
	Weekday int // 0=周日
	Month   int
	Season  string
}

func (v Vars) activation() map[string]any {
	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}
	return map[string]any{
		"tags":     tags,
		"category": v.Category,
		"brand":    v.Brand,
		"price":    v.Price,
		"score":    v.Score,
		"hour":     v.Hour,
		"weekday":  v.Weekday,
		"month":    v.Month,
		"season":   v.Season,
	}
}

// Program 是编译好的布尔表达式，使用 CEL (Common Expression Language) 实现。
// 编译一次、多次求值，并发安全。
//
// 表达式示例：
//   - `"leisure" in tags && hour >= 18`
//   - `weekday == 0 || weekday == 6`
//   - `season == "summer" && category == "swimwear"`
//   - `price > 200.0 && score < 40.0`（score 仅在打分之后求值时非零）
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，语法或类型错误在这里暴露，而不是在请求时。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式
func (p *Program) String() string {
	return p.expr
}

// Eval 求值，表达式必须返回布尔值。
func (p *Program) Eval(vars Vars) (bool, error) {
	out, _, err := p.prg.Eval(vars.activation())
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}
