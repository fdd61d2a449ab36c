// Package snapshot reads resolved class-metadata snapshots from YAML.
//
// A snapshot file holds one YAML document per class:
//
//	class: App\Entity\User
//	table:
//	  name: users
//	properties:
//	  - kind: field
//	    name: id
//	    type: integer
//	    id: true
//	    generator: {type: IDENTITY}
//	  - kind: manyToMany
//	    name: groups
//	    targetEntity: App\Entity\Group
//	    joinTable:
//	      name: users_groups
//	      joinColumns: [{name: user_id, referencedColumnName: id}]
//	      inverseJoinColumns: [{name: group_id, referencedColumnName: id}]
//
// Mapping order is kept wherever it is significant (options, discriminator
// maps, lifecycle events, properties).
package snapshot

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/literal"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

// Snapshot is a set of resolved classes in file order
type Snapshot struct {
	names   []string
	classes map[string]*mapping.ClassMetadata
}

// New creates an empty snapshot
func New() *Snapshot {
	return &Snapshot{classes: make(map[string]*mapping.ClassMetadata)}
}

// Lookup returns the class named className
func (s *Snapshot) Lookup(className string) (*mapping.ClassMetadata, bool) {
	m, ok := s.classes[className]
	return m, ok
}

// ClassNames returns the class names in the order they were read
func (s *Snapshot) ClassNames() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of classes
func (s *Snapshot) Len() int {
	return len(s.names)
}

// Add inserts m; a class name may only appear once
func (s *Snapshot) Add(m *mapping.ClassMetadata) error {
	if _, dup := s.classes[m.ClassName]; dup {
		return fmt.Errorf("class %s is defined more than once", m.ClassName)
	}
	s.names = append(s.names, m.ClassName)
	s.classes[m.ClassName] = m
	return nil
}

// Parse reads every document of data. source names the input in errors.
func Parse(source string, data []byte) (*Snapshot, error) {
	s := New()
	dec := yaml.NewDecoder(bytes.NewReader(data))

	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, mxerrors.NewSnapshotInvalid(source, err.Error())
		}
		if len(doc.Content) == 0 {
			continue
		}

		r := &reader{source: source}
		m := r.class(doc.Content[0])
		if r.err != nil {
			return nil, r.err
		}
		if err := mapping.Validate(m); err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		if err := s.Add(m); err != nil {
			return nil, mxerrors.NewSnapshotInvalid(source, err.Error())
		}
	}
	return s, nil
}

// ReadFile parses one snapshot file from fs
func ReadFile(fs afero.Fs, path string) (*Snapshot, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Load reads and merges the snapshot files at paths
func Load(fs afero.Fs, paths ...string) (*Snapshot, error) {
	merged := New()
	for _, path := range paths {
		s, err := ReadFile(fs, path)
		if err != nil {
			return nil, err
		}
		for _, name := range s.names {
			if err := merged.Add(s.classes[name]); err != nil {
				return nil, mxerrors.NewSnapshotInvalid(filepath.Base(path), err.Error())
			}
		}
	}
	return merged, nil
}

// reader converts YAML nodes into metadata, keeping the first error
type reader struct {
	source string
	err    error
}

func (r *reader) fail(n *yaml.Node, format string, args ...interface{}) {
	if r.err != nil {
		return
	}
	e := mxerrors.NewSnapshotInvalid(r.source, fmt.Sprintf(format, args...))
	if n != nil {
		e = e.WithLine(n.Line)
	}
	r.err = e
}

// each calls fn for every key/value pair of a mapping node
func (r *reader) each(n *yaml.Node, what string, fn func(key string, value *yaml.Node)) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		r.fail(n, "%s must be a mapping", what)
		return
	}
	for i := 0; i+1 < len(n.Content) && r.err == nil; i += 2 {
		fn(n.Content[i].Value, resolve(n.Content[i+1]))
	}
}

func (r *reader) items(n *yaml.Node, what string) []*yaml.Node {
	n = resolve(n)
	if n.Kind != yaml.SequenceNode {
		r.fail(n, "%s must be a sequence", what)
		return nil
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, item := range n.Content {
		out[i] = resolve(item)
	}
	return out
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func (r *reader) str(n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode || n.ShortTag() == "!!null" {
		r.fail(n, "expected a string")
		return ""
	}
	return n.Value
}

func (r *reader) boolean(n *yaml.Node) bool {
	var b bool
	if n.ShortTag() != "!!bool" || n.Decode(&b) != nil {
		r.fail(n, "expected a boolean, found %q", n.Value)
	}
	return b
}

func (r *reader) integer(n *yaml.Node) int {
	var i int
	if n.ShortTag() != "!!int" || n.Decode(&i) != nil {
		r.fail(n, "expected an integer, found %q", n.Value)
	}
	return i
}

func (r *reader) strings(n *yaml.Node, what string) []string {
	var out []string
	for _, item := range r.items(n, what) {
		out = append(out, r.str(item))
	}
	return out
}

// value converts a node into a literal value
func (r *reader) value(n *yaml.Node) interface{} {
	n = resolve(n)
	switch n.Kind {
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil
		case "!!bool":
			return r.boolean(n)
		case "!!int":
			return r.integer(n)
		case "!!str":
			return n.Value
		default:
			r.fail(n, "unsupported scalar %q (%s)", n.Value, n.ShortTag())
			return nil
		}
	case yaml.SequenceNode:
		seq := make([]interface{}, 0, len(n.Content))
		for _, item := range n.Content {
			seq = append(seq, r.value(item))
		}
		return seq
	case yaml.MappingNode:
		return r.dict(n, "value")
	}
	r.fail(n, "unsupported node")
	return nil
}

func (r *reader) dict(n *yaml.Node, what string) literal.Map {
	m := literal.Map{}
	r.each(n, what, func(key string, value *yaml.Node) {
		if _, dup := m.Get(key); dup {
			r.fail(value, "duplicate key %q in %s", key, what)
			return
		}
		m = append(m, literal.Entry{Key: key, Value: r.value(value)})
	})
	return m
}

func (r *reader) dicts(n *yaml.Node, what string) []literal.Map {
	var out []literal.Map
	for _, item := range r.items(n, what) {
		out = append(out, r.dict(item, what))
	}
	return out
}

func (r *reader) class(n *yaml.Node) *mapping.ClassMetadata {
	var className string
	n = resolve(n)
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "class" {
				className = r.str(resolve(n.Content[i+1]))
			}
		}
	}
	if className == "" {
		r.fail(n, "document has no class name")
		return nil
	}

	m := mapping.NewClassMetadata(className)
	r.each(n, "class", func(key string, v *yaml.Node) {
		switch key {
		case "class":
		case "mappedSuperclass":
			m.IsMappedSuperclass = r.boolean(v)
		case "inheritanceType":
			it, err := mapping.ParseInheritanceType(r.str(v))
			if err != nil {
				r.fail(v, "%v", err)
			}
			m.InheritanceType = it
		case "repositoryClass":
			m.CustomRepositoryClassName = r.str(v)
		case "changeTrackingPolicy":
			p, err := mapping.ParseChangeTrackingPolicy(r.str(v))
			if err != nil {
				r.fail(v, "%v", err)
			}
			m.ChangeTrackingPolicy = p
		case "table":
			m.Table = r.table(v)
		case "discriminatorColumn":
			m.DiscriminatorColumn = r.discriminatorColumn(v)
		case "discriminatorMap":
			if err := m.SetDiscriminatorMap(r.dict(v, key)); err != nil {
				r.fail(v, "%v", err)
			}
		case "lifecycleCallbacks":
			r.each(v, key, func(event string, callbacks *yaml.Node) {
				for _, cb := range r.strings(callbacks, "callbacks of "+event) {
					m.AddLifecycleCallback(cb, event)
				}
			})
		case "properties":
			for _, item := range r.items(v, key) {
				r.property(m, item)
			}
		default:
			r.fail(v, "unknown class key %q", key)
		}
	})
	return m
}

func (r *reader) table(n *yaml.Node) *mapping.TableMetadata {
	t := mapping.NewTableMetadata("")
	r.each(n, "table", func(key string, v *yaml.Node) {
		switch key {
		case "name":
			t.Name = r.str(v)
		case "schema":
			t.Schema = r.str(v)
		case "options":
			t.Options = r.dict(v, key)
		case "indexes":
			for _, index := range r.dicts(v, key) {
				t.AddIndex(index)
			}
		case "uniqueConstraints":
			for _, c := range r.dicts(v, key) {
				t.AddUniqueConstraint(c)
			}
		default:
			r.fail(v, "unknown table key %q", key)
		}
	})
	return t
}

// column reads the keys shared by fields and discriminator columns and
// reports whether key was one of them
func (r *reader) column(key string, v *yaml.Node, c columnRef) bool {
	switch key {
	case "column":
		*c.columnName = r.str(v)
	case "type":
		*c.typeName = r.str(v)
	case "tableName":
		*c.tableName = r.str(v)
	case "columnDefinition":
		*c.columnDefinition = r.str(v)
	case "length":
		*c.length = r.integer(v)
	case "scale":
		*c.scale = r.integer(v)
	case "precision":
		*c.precision = r.integer(v)
	case "options":
		*c.options = r.dict(v, key)
	case "nullable":
		*c.nullable = r.boolean(v)
	case "unique":
		*c.unique = r.boolean(v)
	default:
		return false
	}
	return true
}

type columnRef struct {
	columnName, typeName, tableName, columnDefinition *string
	length, scale, precision                          *int
	options                                           *literal.Map
	nullable, unique                                  *bool
}

func (r *reader) discriminatorColumn(n *yaml.Node) *mapping.DiscriminatorColumnMetadata {
	d := mapping.NewDiscriminatorColumnMetadata()
	ref := columnRef{
		&d.ColumnName, &d.TypeName, &d.TableName, &d.ColumnDefinition,
		&d.Length, &d.Scale, &d.Precision, &d.Options, &d.Nullable, &d.Unique,
	}
	r.each(n, "discriminatorColumn", func(key string, v *yaml.Node) {
		if key == "name" {
			key = "column"
		}
		if !r.column(key, v, ref) {
			r.fail(v, "unknown discriminator column key %q", key)
		}
	})
	return d
}

func (r *reader) property(m *mapping.ClassMetadata, n *yaml.Node) {
	var kind, name string
	r.each(n, "property", func(key string, v *yaml.Node) {
		switch key {
		case "kind":
			kind = r.str(v)
		case "name":
			name = r.str(v)
		}
	})
	if r.err != nil {
		return
	}

	var p mapping.Property
	switch kind {
	case "field", "version":
		f := r.field(n, name)
		if kind == "version" {
			if m.VersionProperty != nil {
				r.fail(n, "class %s has more than one version property", m.ClassName)
				return
			}
			m.VersionProperty = f
		}
		p = f
	case "oneToOne":
		p = r.association(n, mapping.OneToOne, name)
	case "manyToOne":
		p = r.association(n, mapping.ManyToOne, name)
	case "oneToMany":
		p = r.association(n, mapping.OneToMany, name)
	case "manyToMany":
		p = r.association(n, mapping.ManyToMany, name)
	default:
		r.fail(n, "unknown property kind %q", kind)
		return
	}

	if r.err != nil {
		return
	}
	if err := m.AddProperty(p); err != nil {
		r.fail(n, "%v", err)
	}
}

func (r *reader) field(n *yaml.Node, name string) *mapping.FieldMetadata {
	f := mapping.NewFieldMetadata(name)
	ref := columnRef{
		&f.ColumnName, &f.TypeName, &f.TableName, &f.ColumnDefinition,
		&f.Length, &f.Scale, &f.Precision, &f.Options, &f.Nullable, &f.Unique,
	}
	r.each(n, "field", func(key string, v *yaml.Node) {
		switch key {
		case "kind", "name":
		case "id":
			f.PrimaryKey = r.boolean(v)
		case "generator":
			f.ValueGenerator = r.generator(v)
		default:
			if !r.column(key, v, ref) {
				r.fail(v, "unknown field key %q", key)
			}
		}
	})
	return f
}

func (r *reader) generator(n *yaml.Node) *mapping.ValueGeneratorMetadata {
	g := mapping.NewValueGeneratorMetadata(mapping.GeneratorAuto, nil)
	r.each(n, "generator", func(key string, v *yaml.Node) {
		switch key {
		case "type":
			gt, err := mapping.ParseGeneratorType(r.str(v))
			if err != nil {
				r.fail(v, "%v", err)
			}
			g.Type = gt
		case "definition":
			g.Definition = r.dict(v, key)
		default:
			r.fail(v, "unknown generator key %q", key)
		}
	})
	return g
}

func (r *reader) association(n *yaml.Node, kind mapping.AssociationKind, name string) *mapping.AssociationMetadata {
	a := mapping.NewAssociationMetadata(kind, name)
	r.each(n, "association", func(key string, v *yaml.Node) {
		switch key {
		case "kind", "name":
		case "targetEntity":
			a.TargetEntity = r.str(v)
		case "fetch":
			fm, err := mapping.ParseFetchMode(r.str(v))
			if err != nil {
				r.fail(v, "%v", err)
			}
			a.FetchMode = fm
		case "mappedBy":
			a.MappedBy = r.str(v)
		case "inversedBy":
			a.InversedBy = r.str(v)
		case "cascade":
			a.SetCascade(r.strings(v, key)...)
		case "orphanRemoval":
			a.OrphanRemoval = r.boolean(v)
		case "id":
			a.PrimaryKey = r.boolean(v)
		case "joinColumns":
			for _, item := range r.items(v, key) {
				a.AddJoinColumn(r.joinColumn(item))
			}
		case "orderBy":
			a.OrderBy = r.dict(v, key)
		case "indexBy":
			a.IndexedBy = r.str(v)
		case "joinTable":
			a.JoinTable = r.joinTable(v)
		default:
			r.fail(v, "unknown association key %q", key)
		}
	})
	return a
}

func (r *reader) joinTable(n *yaml.Node) *mapping.JoinTableMetadata {
	jt := mapping.NewJoinTableMetadata()
	r.each(n, "joinTable", func(key string, v *yaml.Node) {
		switch key {
		case "name":
			jt.Name = r.str(v)
		case "schema":
			jt.Schema = r.str(v)
		case "options":
			jt.Options = r.dict(v, key)
		case "joinColumns":
			for _, item := range r.items(v, key) {
				jt.AddJoinColumn(r.joinColumn(item))
			}
		case "inverseJoinColumns":
			for _, item := range r.items(v, key) {
				jt.AddInverseJoinColumn(r.joinColumn(item))
			}
		default:
			r.fail(v, "unknown join table key %q", key)
		}
	})
	return jt
}

func (r *reader) joinColumn(n *yaml.Node) *mapping.JoinColumnMetadata {
	jc := mapping.NewJoinColumnMetadata()
	r.each(n, "joinColumn", func(key string, v *yaml.Node) {
		switch key {
		case "name":
			jc.ColumnName = r.str(v)
		case "referencedColumnName":
			jc.ReferencedColumnName = r.str(v)
		case "tableName":
			jc.TableName = r.str(v)
		case "aliasedName":
			jc.AliasedName = r.str(v)
		case "columnDefinition":
			jc.ColumnDefinition = r.str(v)
		case "onDelete":
			jc.OnDelete = r.str(v)
		case "options":
			jc.Options = r.dict(v, key)
		case "nullable":
			jc.Nullable = r.boolean(v)
		case "unique":
			jc.Unique = r.boolean(v)
		case "id":
			jc.PrimaryKey = r.boolean(v)
		default:
			r.fail(v, "unknown join column key %q", key)
		}
	})
	return jc
}
