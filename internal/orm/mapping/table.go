package mapping

import "github.com/conduit-lang/mapexport/internal/orm/literal"

// TableMetadata describes the primary table of a class
type TableMetadata struct {
	Name              string
	Schema            string
	Options           literal.Map
	Indexes           []literal.Map
	UniqueConstraints []literal.Map
}

// NewTableMetadata creates a table with the given name
func NewTableMetadata(name string) *TableMetadata {
	return &TableMetadata{
		Name:              name,
		Options:           literal.Map{},
		Indexes:           make([]literal.Map, 0),
		UniqueConstraints: make([]literal.Map, 0),
	}
}

// AddIndex appends an index specification
func (t *TableMetadata) AddIndex(index literal.Map) {
	t.Indexes = append(t.Indexes, index)
}

// AddUniqueConstraint appends a unique constraint specification
func (t *TableMetadata) AddUniqueConstraint(constraint literal.Map) {
	t.UniqueConstraints = append(t.UniqueConstraints, constraint)
}

// DiscriminatorColumnMetadata describes the column storing the concrete subtype
type DiscriminatorColumnMetadata struct {
	ColumnName       string
	TypeName         string
	TableName        string
	ColumnDefinition string
	Length           int
	Scale            int
	Precision        int
	Options          literal.Map
	Nullable         bool
	Unique           bool
}

// NewDiscriminatorColumnMetadata creates a discriminator column
func NewDiscriminatorColumnMetadata() *DiscriminatorColumnMetadata {
	return &DiscriminatorColumnMetadata{Options: literal.Map{}}
}

// DiscriminatorMapping maps one discriminator value to a class name
type DiscriminatorMapping struct {
	Value     string
	ClassName string
}

// ValueGeneratorMetadata describes how a field value is produced on insert
type ValueGeneratorMetadata struct {
	Type       GeneratorType
	Definition literal.Map
}

// NewValueGeneratorMetadata creates a generator; a nil definition becomes empty
func NewValueGeneratorMetadata(typ GeneratorType, definition literal.Map) *ValueGeneratorMetadata {
	if definition == nil {
		definition = literal.Map{}
	}
	return &ValueGeneratorMetadata{Type: typ, Definition: definition}
}

// JoinColumnMetadata describes one foreign key column of an association
type JoinColumnMetadata struct {
	TableName            string
	ColumnName           string
	ReferencedColumnName string
	AliasedName          string
	ColumnDefinition     string
	OnDelete             string
	Options              literal.Map
	Nullable             bool
	Unique               bool
	PrimaryKey           bool
}

// NewJoinColumnMetadata creates a nullable join column, the storage default
func NewJoinColumnMetadata() *JoinColumnMetadata {
	return &JoinColumnMetadata{Options: literal.Map{}, Nullable: true}
}

// JoinTableMetadata describes the link table of an owning many-to-many side
type JoinTableMetadata struct {
	Name               string
	Schema             string
	Options            literal.Map
	JoinColumns        []*JoinColumnMetadata
	InverseJoinColumns []*JoinColumnMetadata
}

// NewJoinTableMetadata creates an empty join table
func NewJoinTableMetadata() *JoinTableMetadata {
	return &JoinTableMetadata{
		Options:            literal.Map{},
		JoinColumns:        make([]*JoinColumnMetadata, 0),
		InverseJoinColumns: make([]*JoinColumnMetadata, 0),
	}
}

// AddJoinColumn appends a column referencing the owning side
func (j *JoinTableMetadata) AddJoinColumn(c *JoinColumnMetadata) {
	j.JoinColumns = append(j.JoinColumns, c)
}

// AddInverseJoinColumn appends a column referencing the target side
func (j *JoinTableMetadata) AddInverseJoinColumn(c *JoinColumnMetadata) {
	j.InverseJoinColumns = append(j.InverseJoinColumns, c)
}
