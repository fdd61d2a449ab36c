package export

import "github.com/conduit-lang/mapexport/internal/orm/literal"

// builder accumulates the statements of one exporter call. The first
// literal error is kept and returned by done; later emits are ignored.
type builder struct {
	stmts []Statement
	err   error
}

func (b *builder) emit(stmts ...Statement) {
	if b.err != nil {
		return
	}
	b.stmts = append(b.stmts, stmts...)
}

func (b *builder) blank() {
	b.emit(Blank{})
}

// extend appends a nested exporter's output, adopting its error
func (b *builder) extend(stmts []Statement, err error) {
	if b.err != nil {
		return
	}
	if err != nil {
		b.err = err
		return
	}
	b.stmts = append(b.stmts, stmts...)
}

// lit normalizes v into a literal expression
func (b *builder) lit(v interface{}) Expr {
	n, err := literal.Normalize(v)
	if err != nil && b.err == nil {
		b.err = err
	}
	return Literal{Value: n}
}

func (b *builder) str(s string) Expr {
	return Literal{Value: s}
}

func (b *builder) call(recv, method string, args ...Expr) {
	b.emit(Call{Recv: recv, Method: method, Args: args})
}

func (b *builder) assign(v string, value Expr) {
	b.emit(Assign{Var: v, Value: value})
}

func (b *builder) done() ([]Statement, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.stmts, nil
}

func typeExpr(typeName string) Expr {
	return StaticCall{Type: pkgTypes, Method: "getType", Args: []Expr{Literal{Value: typeName}}}
}
