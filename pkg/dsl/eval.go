package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/placerec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// programs 缓存已编译的表达式，key 为表达式原文
	programs sync.Map
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的布尔表达式，可并发复用。
//
// 可用变量：
//   - item.id / item.score / item.name / item.category / item.city / item.price / item.cluster
//   - label.<key>：Label 的 Value，例如 label.recall_source == "item_similarity"
//   - rctx.user_id / rctx.place_id / rctx.scene / rctx.params
//
// 示例：
//   - `item.price <= 20000 && item.category == "Bahari"`
//   - `item.score > 0.3 || item.city == "Bandung"`
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式并缓存。语法错误、类型错误或结果类型不是 bool
// （包括只能在运行时确定类型的表达式，例如 `item.price`）返回包装了 core.ErrInvalidInput 的错误。
func Compile(expr string) (*Program, error) {
	if cached, ok := programs.Load(expr); ok {
		return cached.(*Program), nil
	}
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %v: %w", expr, issues.Err(), core.ErrInvalidInput)
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("compile %q: expression must return bool, got %v: %w", expr, ast.OutputType(), core.ErrInvalidInput)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %v: %w", expr, err, core.ErrInvalidInput)
	}
	p := &Program{expr: expr, prg: prg}
	actual, _ := programs.LoadOrStore(expr, p)
	return actual.(*Program), nil
}

// Expr 返回表达式原文
func (p *Program) Expr() string { return p.expr }

// Match 对单个 item 求值。求值失败（例如访问不存在的字段 item.prise）
// 同样是表达式本身的问题，返回包装了 core.ErrInvalidInput 的错误。
func (p *Program) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(buildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %v: %w", p.expr, err, core.ErrInvalidInput)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return boolean, got %T: %w", p.expr, out.Value(), core.ErrInvalidInput)
	}
	return result, nil
}

// Eval 是面向单个 item 的便捷封装。
type Eval struct {
	item *core.Item
	rctx *core.RecommendContext
}

func NewEval(item *core.Item, rctx *core.RecommendContext) *Eval {
	return &Eval{item: item, rctx: rctx}
}

// Evaluate 编译（命中缓存则跳过）并执行表达式；空表达式视为 true。
func (e *Eval) Evaluate(expr string) (bool, error) {
	if expr == "" {
		return true, nil
	}
	p, err := Compile(expr)
	if err != nil {
		return false, err
	}
	return p.Match(e.item, e.rctx)
}

func buildInput(it *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(it.Labels))
	for k, v := range it.Labels {
		labels[k] = v.Value
	}

	item := map[string]any{
		"id":       it.ID,
		"score":    it.Score,
		"name":     it.MetaString(core.MetaName),
		"category": it.MetaString(core.MetaCategory),
		"city":     it.MetaString(core.MetaCity),
		"features": it.Features,
	}
	if price, ok := it.MetaFloat(core.MetaPrice); ok {
		item["price"] = price
	} else {
		item["price"] = 0.0
	}
	if cluster, ok := it.Meta[core.MetaCluster].(int); ok {
		item["cluster"] = int64(cluster)
	} else {
		item["cluster"] = int64(-1)
	}

	rc := map[string]any{
		"user_id":  int64(0),
		"place_id": int64(0),
		"scene":    "",
		"params":   map[string]any{},
	}
	if rctx != nil {
		rc["user_id"] = rctx.UserID
		rc["place_id"] = rctx.PlaceID
		rc["scene"] = rctx.Scene
		if rctx.Params != nil {
			rc["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item":  item,
		"label": labels,
		"rctx":  rc,
	}
}
