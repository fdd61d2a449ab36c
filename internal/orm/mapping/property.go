package mapping

import "github.com/conduit-lang/mapexport/internal/orm/literal"

// Property is a declared property of a class: either a *FieldMetadata or
// an *AssociationMetadata. The set of implementations is closed.
type Property interface {
	PropertyName() string
	property()
}

// FieldMetadata describes a scalar column mapping
type FieldMetadata struct {
	Name             string
	ColumnName       string
	TypeName         string
	TableName        string
	ColumnDefinition string
	// Length, Scale and Precision are unset when zero
	Length    int
	Scale     int
	Precision int
	Options   literal.Map

	PrimaryKey bool
	Nullable   bool
	Unique     bool

	ValueGenerator *ValueGeneratorMetadata
}

// NewFieldMetadata creates a field whose column name defaults to its name
func NewFieldMetadata(name string) *FieldMetadata {
	return &FieldMetadata{
		Name:       name,
		ColumnName: name,
		Options:    literal.Map{},
	}
}

// PropertyName implements Property
func (f *FieldMetadata) PropertyName() string { return f.Name }

func (f *FieldMetadata) property() {}

// HasValueGenerator returns true if the field declares a generator
func (f *FieldMetadata) HasValueGenerator() bool {
	return f.ValueGenerator != nil
}

// AssociationMetadata describes a relation to another class. Kind selects
// the variant; the variant payload fields are only meaningful for the
// kinds noted beside them.
type AssociationMetadata struct {
	Kind          AssociationKind
	Name          string
	TargetEntity  string
	FetchMode     FetchMode
	MappedBy      string
	InversedBy    string
	Cascade       []string
	OrphanRemoval bool
	PrimaryKey    bool

	// JoinColumns belongs to OneToOne and ManyToOne
	JoinColumns []*JoinColumnMetadata
	// OrderBy belongs to OneToMany and ManyToMany
	OrderBy literal.Map
	// JoinTable belongs to the owning side of ManyToMany
	JoinTable *JoinTableMetadata
	// IndexedBy belongs to ManyToMany
	IndexedBy string
}

// NewAssociationMetadata creates an association of the given kind
func NewAssociationMetadata(kind AssociationKind, name string) *AssociationMetadata {
	a := &AssociationMetadata{
		Kind:      kind,
		Name:      name,
		FetchMode: FetchLazy,
		Cascade:   make([]string, 0),
	}
	if kind.IsToOne() {
		a.JoinColumns = make([]*JoinColumnMetadata, 0)
	} else {
		a.OrderBy = literal.Map{}
	}
	return a
}

// NewOneToOne creates a one-to-one association
func NewOneToOne(name string) *AssociationMetadata {
	return NewAssociationMetadata(OneToOne, name)
}

// NewManyToOne creates a many-to-one association
func NewManyToOne(name string) *AssociationMetadata {
	return NewAssociationMetadata(ManyToOne, name)
}

// NewOneToMany creates a one-to-many association
func NewOneToMany(name string) *AssociationMetadata {
	return NewAssociationMetadata(OneToMany, name)
}

// NewManyToMany creates a many-to-many association
func NewManyToMany(name string) *AssociationMetadata {
	return NewAssociationMetadata(ManyToMany, name)
}

// PropertyName implements Property
func (a *AssociationMetadata) PropertyName() string { return a.Name }

func (a *AssociationMetadata) property() {}

// IsOwningSide returns true unless the association is mapped by the target
func (a *AssociationMetadata) IsOwningSide() bool {
	return a.MappedBy == ""
}

// SetCascade stores ops expanded and in canonical order
func (a *AssociationMetadata) SetCascade(ops ...string) {
	a.Cascade = ExpandCascade(ops)
}

// HasCascade reports whether op cascades over this association
func (a *AssociationMetadata) HasCascade(op string) bool {
	for _, c := range a.Cascade {
		if c == op {
			return true
		}
	}
	return false
}

// AddJoinColumn appends a join column to a to-one association
func (a *AssociationMetadata) AddJoinColumn(c *JoinColumnMetadata) {
	a.JoinColumns = append(a.JoinColumns, c)
}
