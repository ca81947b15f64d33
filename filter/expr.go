package filter

import (
	"context"

	"github.com/rushteam/placerec/core"
	"github.com/rushteam/placerec/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式描述保留条件：表达式为 false 的景点被过滤。
//
// 例如 `item.price <= 20000 && item.category == "Taman Hiburan"`。
type ExprFilter struct {
	Program *dsl.Program
}

// NewExprFilter 编译表达式；表达式非法时返回包装了 core.ErrInvalidInput 的错误。
func NewExprFilter(expr string) (*ExprFilter, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: p}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if f.Program == nil || item == nil {
		return false, nil
	}
	keep, err := f.Program.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
