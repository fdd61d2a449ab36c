package export

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/mapexport/internal/orm/literal"
)

const indentUnit = "    "

// Render prints prog one statement per line
func Render(prog Program) (string, error) {
	var b strings.Builder
	if err := renderStatements(&b, prog, ""); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderStatements(b *strings.Builder, stmts []Statement, indent string) error {
	for _, s := range stmts {
		line, err := renderStatement(b, s, indent)
		if err != nil {
			return err
		}
		if line != "" {
			b.WriteString(indent)
			b.WriteString(line)
		}
		b.WriteByte('\n')
	}
	return nil
}

func renderStatement(b *strings.Builder, s Statement, indent string) (string, error) {
	switch st := s.(type) {
	case Header:
		return fmt.Sprintf("# mapping program v%d", st.Version), nil
	case Use:
		return "use " + st.Path, nil
	case Blank:
		return "", nil
	case Assign:
		v, err := renderExpr(st.Value)
		if err != nil {
			return "", err
		}
		return st.Var + " = " + v, nil
	case SetField:
		v, err := renderExpr(st.Value)
		if err != nil {
			return "", err
		}
		return st.Recv + "." + st.Field + " = " + v, nil
	case Call:
		args, err := renderArgs(st.Args)
		if err != nil {
			return "", err
		}
		return st.Recv + "." + st.Method + "(" + args + ")", nil
	case Append:
		v, err := renderExpr(st.Value)
		if err != nil {
			return "", err
		}
		return st.Var + "[] = " + v, nil
	case ForEach:
		b.WriteString(indent)
		b.WriteString("for " + st.Item + " in " + st.Over + " {\n")
		if err := renderStatements(b, st.Body, indent+indentUnit); err != nil {
			return "", err
		}
		return "}", nil
	}
	return "", fmt.Errorf("cannot render statement %T", s)
}

func renderExpr(e Expr) (string, error) {
	switch ex := e.(type) {
	case Literal:
		return literal.Format(ex.Value)
	case Var:
		return ex.Name, nil
	case New:
		args, err := renderArgs(ex.Args)
		if err != nil {
			return "", err
		}
		return "new " + ex.Type + "(" + args + ")", nil
	case Const:
		return ex.Type + "." + ex.Name, nil
	case StaticCall:
		args, err := renderArgs(ex.Args)
		if err != nil {
			return "", err
		}
		return ex.Type + "." + ex.Method + "(" + args + ")", nil
	}
	return "", fmt.Errorf("cannot render expression %T", e)
}

func renderArgs(args []Expr) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		s, err := renderExpr(a)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, ", "), nil
}
