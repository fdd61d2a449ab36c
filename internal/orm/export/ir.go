// Package export turns resolved class metadata into a program: an ordered
// sequence of construction statements that rebuilds the metadata when
// executed. Programs are plain values; Render prints them, ParseProgram reads
// them back and Load executes them.
package export

// Statement is one line of a program
type Statement interface {
	statement()
}

// Expr is a statement operand
type Expr interface {
	expr()
}

// Header identifies the program format
type Header struct {
	Version int
}

// Use imports a symbol of the target runtime
type Use struct {
	Path string
}

// Blank separates logical groups
type Blank struct{}

// Assign binds a local variable
type Assign struct {
	Var   string
	Value Expr
}

// SetField assigns a public attribute of a variable
type SetField struct {
	Recv  string
	Field string
	Value Expr
}

// Call invokes a method on a variable
type Call struct {
	Recv   string
	Method string
	Args   []Expr
}

// Append adds a value to a sequence variable
type Append struct {
	Var   string
	Value Expr
}

// ForEach runs Body once per element of Over, bound to Item
type ForEach struct {
	Item string
	Over string
	Body []Statement
}

func (Header) statement()   {}
func (Use) statement()      {}
func (Blank) statement()    {}
func (Assign) statement()   {}
func (SetField) statement() {}
func (Call) statement()     {}
func (Append) statement()   {}
func (ForEach) statement()  {}

// Literal is a value rendered by the literal formatter. Value is always in
// the normalized form produced by literal.Normalize.
type Literal struct {
	Value interface{}
}

// Var references a variable
type Var struct {
	Name string
}

// New constructs a runtime type
type New struct {
	Type string
	Args []Expr
}

// Const references a named constant of a runtime type
type Const struct {
	Type string
	Name string
}

// StaticCall invokes a function of a runtime type
type StaticCall struct {
	Type   string
	Method string
	Args   []Expr
}

func (Literal) expr()    {}
func (Var) expr()        {}
func (New) expr()        {}
func (Const) expr()      {}
func (StaticCall) expr() {}

// Program is an ordered statement sequence
type Program []Statement

// Count returns the number of statements, counting loop bodies and
// ignoring blank lines
func (p Program) Count() int {
	return countStatements(p)
}

func countStatements(stmts []Statement) int {
	n := 0
	for _, s := range stmts {
		switch st := s.(type) {
		case Blank:
		case ForEach:
			n += 1 + countStatements(st.Body)
		default:
			n++
		}
	}
	return n
}

// Variable names and runtime symbols used by generated programs
const (
	varMetadata           = "metadata"
	varTable              = "table"
	varDiscrColumn        = "discrColumn"
	varProperty           = "property"
	varAssociation        = "association"
	varJoinTable          = "joinTable"
	varJoinColumn         = "joinColumn"
	varJoinColumns        = "joinColumns"
	varInverseJoinColumn  = "inverseJoinColumn"
	varInverseJoinColumns = "inverseJoinColumns"

	pkgMapping = "mapping"
	pkgTypes   = "Type"

	// FormatVersion is the program header version this package writes
	FormatVersion = 1
)

// Preamble returns the fixed program preamble
func Preamble() []Statement {
	return []Statement{
		Header{Version: FormatVersion},
		Use{Path: "types.Type"},
		Use{Path: "mapping"},
		Use{Path: "mapping.ClassMetadata"},
		Blank{},
	}
}

func mappingType(name string) string {
	return pkgMapping + "." + name
}
