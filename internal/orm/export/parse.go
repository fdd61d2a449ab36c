package export

import (
	"fmt"
	"strings"
	"text/scanner"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/literal"
)

// ParseProgram reads program text produced by Render
func ParseProgram(src string) (Program, error) {
	lines := strings.Split(src, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	pp := &programParser{lines: lines}
	stmts, err := pp.block(false)
	if err != nil {
		return nil, err
	}
	return Program(stmts), nil
}

type programParser struct {
	lines []string
	pos   int
}

// block parses statements until the end of input or, inside a loop body,
// until the closing brace.
func (pp *programParser) block(inLoop bool) ([]Statement, error) {
	stmts := make([]Statement, 0)
	for pp.pos < len(pp.lines) {
		lineNo := pp.pos + 1
		line := strings.TrimSpace(pp.lines[pp.pos])
		pp.pos++

		if line == "}" {
			if !inLoop {
				return nil, mxerrors.NewProgramSyntax(lineNo, "unexpected '}'")
			}
			return stmts, nil
		}

		stmt, err := pp.statement(line)
		if err != nil {
			return nil, atLine(err, lineNo)
		}
		if loop, ok := stmt.(ForEach); ok {
			body, err := pp.block(true)
			if err != nil {
				return nil, err
			}
			loop.Body = body
			stmt = loop
		}
		stmts = append(stmts, stmt)
	}

	if inLoop {
		return nil, mxerrors.NewProgramSyntax(len(pp.lines), "unterminated loop")
	}
	return stmts, nil
}

func (pp *programParser) statement(line string) (Statement, error) {
	switch {
	case line == "":
		return Blank{}, nil
	case strings.HasPrefix(line, "#"):
		var version int
		if _, err := fmt.Sscanf(line, "# mapping program v%d", &version); err != nil {
			return nil, mxerrors.NewProgramSyntax(0, "malformed program header")
		}
		if version < 1 || version > FormatVersion {
			return nil, mxerrors.NewProgramSyntax(0, fmt.Sprintf("unsupported program version %d", version))
		}
		return Header{Version: version}, nil
	}

	p := literal.NewParser(line)
	keyword, err := p.ExpectIdent()
	if err != nil {
		return nil, err
	}

	var stmt Statement
	switch keyword {
	case "use":
		path, err := parsePath(p)
		if err != nil {
			return nil, err
		}
		stmt = Use{Path: strings.Join(path, ".")}
	case "for":
		stmt, err = parseForHeader(p)
	default:
		stmt, err = parseSimple(p, keyword)
	}
	if err != nil {
		return nil, err
	}

	if !p.AtEOF() {
		return nil, p.Errorf("unexpected %q at end of statement", p.Text())
	}
	return stmt, nil
}

func parseForHeader(p *literal.Parser) (Statement, error) {
	item, err := p.ExpectIdent()
	if err != nil {
		return nil, err
	}
	in, err := p.ExpectIdent()
	if err != nil {
		return nil, err
	}
	if in != "in" {
		return nil, p.Errorf("expected \"in\", found %q", in)
	}
	over, err := p.ExpectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.Expect('{'); err != nil {
		return nil, err
	}
	return ForEach{Item: item, Over: over}, nil
}

func parseSimple(p *literal.Parser, name string) (Statement, error) {
	switch {
	case p.Accept('='):
		value, err := parseExpr(p)
		if err != nil {
			return nil, err
		}
		return Assign{Var: name, Value: value}, nil

	case p.Accept('['):
		if err := p.Expect(']'); err != nil {
			return nil, err
		}
		if err := p.Expect('='); err != nil {
			return nil, err
		}
		value, err := parseExpr(p)
		if err != nil {
			return nil, err
		}
		return Append{Var: name, Value: value}, nil

	case p.Accept('.'):
		member, err := p.ExpectIdent()
		if err != nil {
			return nil, err
		}
		if p.Accept('=') {
			value, err := parseExpr(p)
			if err != nil {
				return nil, err
			}
			return SetField{Recv: name, Field: member, Value: value}, nil
		}
		args, err := parseArgs(p)
		if err != nil {
			return nil, err
		}
		return Call{Recv: name, Method: member, Args: args}, nil
	}
	return nil, p.Errorf("unexpected %q after %q", p.Text(), name)
}

func parseExpr(p *literal.Parser) (Expr, error) {
	if p.StartsValue() {
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		return Literal{Value: v}, nil
	}

	if p.Tok() == scanner.Ident && p.Text() == "new" {
		p.Next()
		path, err := parsePath(p)
		if err != nil {
			return nil, err
		}
		args, err := parseArgs(p)
		if err != nil {
			return nil, err
		}
		return New{Type: strings.Join(path, "."), Args: args}, nil
	}

	path, err := parsePath(p)
	if err != nil {
		return nil, err
	}
	n := len(path)
	owner := strings.Join(path[:n-1], ".")

	if p.Tok() == '(' {
		if n < 2 {
			return nil, p.Errorf("call of %q needs a type", path[0])
		}
		args, err := parseArgs(p)
		if err != nil {
			return nil, err
		}
		return StaticCall{Type: owner, Method: path[n-1], Args: args}, nil
	}
	if n == 1 {
		return Var{Name: path[0]}, nil
	}
	return Const{Type: owner, Name: path[n-1]}, nil
}

func parsePath(p *literal.Parser) ([]string, error) {
	first, err := p.ExpectIdent()
	if err != nil {
		return nil, err
	}
	path := []string{first}
	for p.Accept('.') {
		next, err := p.ExpectIdent()
		if err != nil {
			return nil, err
		}
		path = append(path, next)
	}
	return path, nil
}

func parseArgs(p *literal.Parser) ([]Expr, error) {
	if err := p.Expect('('); err != nil {
		return nil, err
	}
	var args []Expr
	if p.Accept(')') {
		return args, nil
	}
	for {
		arg, err := parseExpr(p)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.Accept(')') {
			return args, nil
		}
		if err := p.Expect(','); err != nil {
			return nil, err
		}
	}
}

func atLine(err error, line int) error {
	if me, ok := err.(*mxerrors.MappingError); ok && me.Line == 0 {
		return me.WithLine(line)
	}
	return err
}
