package literal

import (
	"fmt"
	"strconv"
	"strings"
	"text/scanner"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
)

// Parser is a token-level reader over literal text. The program parser
// drives it directly so literals embedded in statements share one tokenizer.
type Parser struct {
	s   scanner.Scanner
	tok rune
	err string
}

// NewParser creates a parser positioned on the first token of src
func NewParser(src string) *Parser {
	p := &Parser{}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts | scanner.ScanStrings
	p.s.Error = func(_ *scanner.Scanner, msg string) {
		if p.err == "" {
			p.err = msg
		}
	}
	p.Next()
	return p
}

// Parse reads a single literal from s
func Parse(s string) (interface{}, error) {
	p := NewParser(s)
	v, err := p.ParseValue()
	if err != nil {
		return nil, err
	}
	if !p.AtEOF() {
		return nil, p.Errorf("unexpected %q after literal", p.Text())
	}
	return v, nil
}

// Tok returns the current token
func (p *Parser) Tok() rune {
	return p.tok
}

// Text returns the text of the current token
func (p *Parser) Text() string {
	return p.s.TokenText()
}

// Next advances to the following token
func (p *Parser) Next() {
	p.tok = p.s.Scan()
}

// AtEOF reports whether all input has been consumed
func (p *Parser) AtEOF() bool {
	return p.tok == scanner.EOF
}

// Errorf builds a syntax error at the current column
func (p *Parser) Errorf(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	if p.err != "" {
		msg = p.err + ": " + msg
	}
	return mxerrors.NewProgramSyntax(0, fmt.Sprintf("column %d: %s", p.s.Position.Column, msg))
}

// Expect consumes the single-character token r
func (p *Parser) Expect(r rune) error {
	if p.tok != r {
		return p.Errorf("expected %q, found %q", string(r), p.Text())
	}
	p.Next()
	return nil
}

// Accept consumes r when it is the current token
func (p *Parser) Accept(r rune) bool {
	if p.tok != r {
		return false
	}
	p.Next()
	return true
}

// ExpectIdent consumes an identifier and returns it
func (p *Parser) ExpectIdent() (string, error) {
	if p.tok != scanner.Ident {
		return "", p.Errorf("expected identifier, found %q", p.Text())
	}
	name := p.Text()
	p.Next()
	return name, nil
}

// StartsValue reports whether the current token begins a literal
func (p *Parser) StartsValue() bool {
	switch p.tok {
	case '[', '{', '-', scanner.String, scanner.Int:
		return true
	case scanner.Ident:
		switch p.Text() {
		case "true", "false", "null":
			return true
		}
	}
	return false
}

// ParseValue reads one literal starting at the current token
func (p *Parser) ParseValue() (interface{}, error) {
	switch p.tok {
	case scanner.Ident:
		text := p.Text()
		switch text {
		case "true", "false":
			p.Next()
			return text == "true", nil
		case "null":
			p.Next()
			return nil, nil
		}
		return nil, p.Errorf("unexpected identifier %q", text)
	case scanner.String:
		s, err := strconv.Unquote(p.Text())
		if err != nil {
			return nil, p.Errorf("invalid string %s", p.Text())
		}
		p.Next()
		return s, nil
	case scanner.Int:
		return p.parseInt(false)
	case '-':
		p.Next()
		if p.tok != scanner.Int {
			return nil, p.Errorf("expected integer after '-'")
		}
		return p.parseInt(true)
	case '[':
		return p.parseSequence()
	case '{':
		return p.parseMap()
	case scanner.EOF:
		return nil, p.Errorf("unexpected end of input")
	}
	return nil, p.Errorf("unexpected %q", p.Text())
}

func (p *Parser) parseInt(negative bool) (interface{}, error) {
	text := p.Text()
	if negative {
		text = "-" + text
	}
	n, err := strconv.ParseInt(text, 0, strconv.IntSize)
	if err != nil {
		return nil, p.Errorf("invalid integer %s", text)
	}
	p.Next()
	return int(n), nil
}

func (p *Parser) parseSequence() (interface{}, error) {
	p.Next()
	seq := make([]interface{}, 0)
	if p.Accept(']') {
		return seq, nil
	}
	for {
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		seq = append(seq, v)
		if p.Accept(']') {
			return seq, nil
		}
		if err := p.Expect(','); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseMap() (interface{}, error) {
	p.Next()
	m := make(Map, 0)
	if p.Accept('}') {
		return m, nil
	}
	for {
		if p.tok != scanner.String {
			return nil, p.Errorf("expected string key, found %q", p.Text())
		}
		key, err := strconv.Unquote(p.Text())
		if err != nil {
			return nil, p.Errorf("invalid key %s", p.Text())
		}
		p.Next()
		if err := p.Expect(':'); err != nil {
			return nil, err
		}
		v, err := p.ParseValue()
		if err != nil {
			return nil, err
		}
		if _, dup := m.Get(key); dup {
			return nil, p.Errorf("duplicate key %q", key)
		}
		m = append(m, Entry{Key: key, Value: v})
		if p.Accept('}') {
			return m, nil
		}
		if err := p.Expect(','); err != nil {
			return nil, err
		}
	}
}
