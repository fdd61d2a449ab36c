// Package mapping defines the resolved class-metadata model: how an object
// type maps to tables, columns, associations, inheritance and generators.
// Values are built once by a metadata source and treated as read-only by
// the exporter.
package mapping

import "fmt"

// InheritanceType represents the inheritance mapping strategy of a class
type InheritanceType int

const (
	InheritanceNone InheritanceType = iota
	InheritanceSingleTable
	InheritanceJoined
	InheritanceTablePerClass
)

// String returns the constant name of the inheritance type
func (t InheritanceType) String() string {
	switch t {
	case InheritanceNone:
		return "NONE"
	case InheritanceSingleTable:
		return "SINGLE_TABLE"
	case InheritanceJoined:
		return "JOINED"
	case InheritanceTablePerClass:
		return "TABLE_PER_CLASS"
	default:
		return "unknown"
	}
}

// ParseInheritanceType converts a constant name to an InheritanceType
func ParseInheritanceType(s string) (InheritanceType, error) {
	switch s {
	case "NONE":
		return InheritanceNone, nil
	case "SINGLE_TABLE":
		return InheritanceSingleTable, nil
	case "JOINED":
		return InheritanceJoined, nil
	case "TABLE_PER_CLASS":
		return InheritanceTablePerClass, nil
	default:
		return 0, fmt.Errorf("unknown inheritance type: %s", s)
	}
}

// ChangeTrackingPolicy represents how the unit of work detects changes
type ChangeTrackingPolicy int

const (
	ChangeTrackingDeferredImplicit ChangeTrackingPolicy = iota
	ChangeTrackingDeferredExplicit
	ChangeTrackingNotify
)

// String returns the constant name of the policy
func (p ChangeTrackingPolicy) String() string {
	switch p {
	case ChangeTrackingDeferredImplicit:
		return "DEFERRED_IMPLICIT"
	case ChangeTrackingDeferredExplicit:
		return "DEFERRED_EXPLICIT"
	case ChangeTrackingNotify:
		return "NOTIFY"
	default:
		return "unknown"
	}
}

// ParseChangeTrackingPolicy converts a constant name to a ChangeTrackingPolicy
func ParseChangeTrackingPolicy(s string) (ChangeTrackingPolicy, error) {
	switch s {
	case "DEFERRED_IMPLICIT":
		return ChangeTrackingDeferredImplicit, nil
	case "DEFERRED_EXPLICIT":
		return ChangeTrackingDeferredExplicit, nil
	case "NOTIFY":
		return ChangeTrackingNotify, nil
	default:
		return 0, fmt.Errorf("unknown change tracking policy: %s", s)
	}
}

// FetchMode represents when associated entities are loaded
type FetchMode int

const (
	FetchLazy FetchMode = iota
	FetchEager
	FetchExtraLazy
)

// String returns the constant name of the fetch mode
func (f FetchMode) String() string {
	switch f {
	case FetchLazy:
		return "LAZY"
	case FetchEager:
		return "EAGER"
	case FetchExtraLazy:
		return "EXTRA_LAZY"
	default:
		return "unknown"
	}
}

// ParseFetchMode converts a constant name to a FetchMode
func ParseFetchMode(s string) (FetchMode, error) {
	switch s {
	case "LAZY":
		return FetchLazy, nil
	case "EAGER":
		return FetchEager, nil
	case "EXTRA_LAZY":
		return FetchExtraLazy, nil
	default:
		return 0, fmt.Errorf("unknown fetch mode: %s", s)
	}
}

// GeneratorType represents the strategy producing a field value on insert
type GeneratorType int

const (
	GeneratorNone GeneratorType = iota
	GeneratorAuto
	GeneratorSequence
	GeneratorTable
	GeneratorIdentity
	GeneratorUUID
	GeneratorCustom
)

// String returns the constant name of the generator type
func (g GeneratorType) String() string {
	switch g {
	case GeneratorNone:
		return "NONE"
	case GeneratorAuto:
		return "AUTO"
	case GeneratorSequence:
		return "SEQUENCE"
	case GeneratorTable:
		return "TABLE"
	case GeneratorIdentity:
		return "IDENTITY"
	case GeneratorUUID:
		return "UUID"
	case GeneratorCustom:
		return "CUSTOM"
	default:
		return "unknown"
	}
}

// ParseGeneratorType converts a constant name to a GeneratorType
func ParseGeneratorType(s string) (GeneratorType, error) {
	switch s {
	case "NONE":
		return GeneratorNone, nil
	case "AUTO":
		return GeneratorAuto, nil
	case "SEQUENCE":
		return GeneratorSequence, nil
	case "TABLE":
		return GeneratorTable, nil
	case "IDENTITY":
		return GeneratorIdentity, nil
	case "UUID":
		return GeneratorUUID, nil
	case "CUSTOM":
		return GeneratorCustom, nil
	default:
		return 0, fmt.Errorf("unknown generator type: %s", s)
	}
}

// AssociationKind discriminates the four association variants
type AssociationKind int

const (
	OneToOne AssociationKind = iota
	ManyToOne
	OneToMany
	ManyToMany
)

// String returns the string representation of the association kind
func (k AssociationKind) String() string {
	switch k {
	case OneToOne:
		return "one_to_one"
	case ManyToOne:
		return "many_to_one"
	case OneToMany:
		return "one_to_many"
	case ManyToMany:
		return "many_to_many"
	default:
		return "unknown"
	}
}

// IsToOne returns true for one-to-one and many-to-one
func (k AssociationKind) IsToOne() bool {
	return k == OneToOne || k == ManyToOne
}

// IsToMany returns true for one-to-many and many-to-many
func (k AssociationKind) IsToMany() bool {
	return k == OneToMany || k == ManyToMany
}
