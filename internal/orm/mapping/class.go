package mapping

import (
	"fmt"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/literal"
)

// LifecycleCallbackGroup holds the callbacks registered for one event
type LifecycleCallbackGroup struct {
	Event     string
	Callbacks []string
}

// ClassMetadata is the root of the metadata graph of one class
type ClassMetadata struct {
	ClassName                 string
	IsMappedSuperclass        bool
	InheritanceType           InheritanceType
	CustomRepositoryClassName string

	Table               *TableMetadata
	DiscriminatorColumn *DiscriminatorColumnMetadata
	DiscriminatorMap    []DiscriminatorMapping

	ChangeTrackingPolicy ChangeTrackingPolicy
	// LifecycleCallbacks is ordered by first registration of each event
	LifecycleCallbacks []LifecycleCallbackGroup

	// VersionProperty points into the declared properties
	VersionProperty *FieldMetadata

	properties []Property
}

// NewClassMetadata creates empty metadata for className
func NewClassMetadata(className string) *ClassMetadata {
	return &ClassMetadata{
		ClassName:          className,
		DiscriminatorMap:   make([]DiscriminatorMapping, 0),
		LifecycleCallbacks: make([]LifecycleCallbackGroup, 0),
		properties:         make([]Property, 0),
	}
}

// AddProperty appends p to the declared properties. A second property with
// the same name is rejected.
func (c *ClassMetadata) AddProperty(p Property) error {
	if p == nil {
		return mxerrors.NewInconsistentMetadata(c.ClassName, "nil property")
	}
	if c.HasProperty(p.PropertyName()) {
		return mxerrors.NewInconsistentMetadata(c.ClassName,
			fmt.Sprintf("duplicate property %q", p.PropertyName()))
	}
	c.properties = append(c.properties, p)
	return nil
}

// DeclaredProperties returns the properties in declaration order
func (c *ClassMetadata) DeclaredProperties() []Property {
	out := make([]Property, len(c.properties))
	copy(out, c.properties)
	return out
}

// Property returns the declared property with the given name
func (c *ClassMetadata) Property(name string) (Property, bool) {
	for _, p := range c.properties {
		if p.PropertyName() == name {
			return p, true
		}
	}
	return nil, false
}

// HasProperty returns true if a property with the given name is declared
func (c *ClassMetadata) HasProperty(name string) bool {
	_, ok := c.Property(name)
	return ok
}

// IsVersion reports whether f is the designated version property
func (c *ClassMetadata) IsVersion(f *FieldMetadata) bool {
	return c.VersionProperty != nil && c.VersionProperty == f
}

// SetDiscriminatorMap replaces the discriminator map with the entries of m.
// Every value must be a class name string.
func (c *ClassMetadata) SetDiscriminatorMap(m literal.Map) error {
	out := make([]DiscriminatorMapping, 0, len(m))
	for _, e := range m {
		className, ok := e.Value.(string)
		if !ok {
			return mxerrors.NewInconsistentMetadata(c.ClassName,
				fmt.Sprintf("discriminator value %q maps to a non-string", e.Key))
		}
		out = append(out, DiscriminatorMapping{Value: e.Key, ClassName: className})
	}
	c.DiscriminatorMap = out
	return nil
}

// DiscriminatorLiteral returns the discriminator map as an ordered map
func (c *ClassMetadata) DiscriminatorLiteral() literal.Map {
	m := make(literal.Map, 0, len(c.DiscriminatorMap))
	for _, d := range c.DiscriminatorMap {
		m = append(m, literal.Entry{Key: d.Value, Value: d.ClassName})
	}
	return m
}

// AddLifecycleCallback registers callback for event. Events keep the order
// in which they were first registered; duplicates are kept.
func (c *ClassMetadata) AddLifecycleCallback(callback, event string) {
	for i := range c.LifecycleCallbacks {
		if c.LifecycleCallbacks[i].Event == event {
			c.LifecycleCallbacks[i].Callbacks = append(c.LifecycleCallbacks[i].Callbacks, callback)
			return
		}
	}
	c.LifecycleCallbacks = append(c.LifecycleCallbacks, LifecycleCallbackGroup{
		Event:     event,
		Callbacks: []string{callback},
	})
}

// LifecycleCallbacksFor returns the callbacks registered for event
func (c *ClassMetadata) LifecycleCallbacksFor(event string) []string {
	for _, g := range c.LifecycleCallbacks {
		if g.Event == event {
			return g.Callbacks
		}
	}
	return nil
}
