package mapping

import (
	"fmt"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
)

// Validate checks the structural invariants the exporter relies on and
// returns every violation as an ErrorList, or nil.
func Validate(c *ClassMetadata) error {
	if c == nil {
		return mxerrors.ErrorList{mxerrors.NewInconsistentMetadata("<nil>", "class metadata is nil")}
	}

	v := &validator{class: c}

	if c.Table != nil && c.Table.Name == "" {
		v.fail("table name is required")
	}
	if c.DiscriminatorColumn != nil {
		if c.DiscriminatorColumn.ColumnName == "" {
			v.fail("discriminator column name is required")
		}
		v.checkSizes("discriminator column",
			c.DiscriminatorColumn.Length, c.DiscriminatorColumn.Scale, c.DiscriminatorColumn.Precision)
	}

	seenValues := make(map[string]bool, len(c.DiscriminatorMap))
	for _, d := range c.DiscriminatorMap {
		if seenValues[d.Value] {
			v.fail(fmt.Sprintf("duplicate discriminator value %q", d.Value))
		}
		seenValues[d.Value] = true
	}

	for _, g := range c.LifecycleCallbacks {
		if g.Event == "" {
			v.fail("lifecycle callback event name is required")
		}
		for _, cb := range g.Callbacks {
			if cb == "" {
				v.fail(fmt.Sprintf("empty callback name for event %q", g.Event))
			}
		}
	}

	if c.VersionProperty != nil && !v.declared(c.VersionProperty) {
		v.fail(fmt.Sprintf("version property %q is not a declared property", c.VersionProperty.Name))
	}

	for _, p := range c.properties {
		switch prop := p.(type) {
		case *FieldMetadata:
			v.checkField(prop)
		case *AssociationMetadata:
			v.checkAssociation(prop)
		}
	}

	return v.errs.Err()
}

type validator struct {
	class *ClassMetadata
	errs  mxerrors.ErrorList
}

func (v *validator) fail(reason string) {
	v.errs = append(v.errs, mxerrors.NewInconsistentMetadata(v.class.ClassName, reason))
}

func (v *validator) declared(f *FieldMetadata) bool {
	for _, p := range v.class.properties {
		if p == Property(f) {
			return true
		}
	}
	return false
}

func (v *validator) checkSizes(subject string, length, scale, precision int) {
	if length < 0 || scale < 0 || precision < 0 {
		v.fail(fmt.Sprintf("%s has a negative length, scale or precision", subject))
	}
}

func (v *validator) checkField(f *FieldMetadata) {
	if f.Name == "" {
		v.fail("field name is required")
	}
	if f.ColumnName == "" {
		v.fail(fmt.Sprintf("field %q has no column name", f.Name))
	}
	v.checkSizes(fmt.Sprintf("field %q", f.Name), f.Length, f.Scale, f.Precision)
}

func (v *validator) checkAssociation(a *AssociationMetadata) {
	if a.Name == "" {
		v.fail("association name is required")
	}
	if a.TargetEntity == "" {
		v.fail(fmt.Sprintf("association %q has no target entity", a.Name))
	}
	if a.MappedBy != "" && a.InversedBy != "" {
		v.fail(fmt.Sprintf("association %q sets both mappedBy and inversedBy", a.Name))
	}
	for _, op := range a.Cascade {
		if op != CascadeAll && !IsCascadeOperation(op) {
			v.fail(fmt.Sprintf("association %q has unknown cascade operation %q", a.Name, op))
		}
	}

	if a.Kind.IsToOne() && len(a.OrderBy) > 0 {
		v.fail(fmt.Sprintf("%s association %q cannot be ordered", a.Kind, a.Name))
	}
	if a.Kind.IsToMany() && len(a.JoinColumns) > 0 {
		v.fail(fmt.Sprintf("%s association %q cannot own join columns", a.Kind, a.Name))
	}
	if a.Kind == OneToMany && a.MappedBy == "" {
		v.fail(fmt.Sprintf("one_to_many association %q must be mapped by the target", a.Name))
	}
	if a.Kind != ManyToMany {
		if a.JoinTable != nil {
			v.fail(fmt.Sprintf("%s association %q cannot own a join table", a.Kind, a.Name))
		}
		if a.IndexedBy != "" {
			v.fail(fmt.Sprintf("%s association %q cannot be indexed", a.Kind, a.Name))
		}
	}
	if a.JoinTable != nil && a.JoinTable.Name == "" {
		v.fail(fmt.Sprintf("join table of %q has no name", a.Name))
	}
}
