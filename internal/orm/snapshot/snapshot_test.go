package snapshot

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/export"
	"github.com/conduit-lang/mapexport/internal/orm/literal"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

const usersYAML = `
class: App\Entity\User
repositoryClass: App\Repository\UserRepository
table:
  name: users
  schema: auth
  options:
    collate: utf8_unicode_ci
    charset: utf8
  indexes:
    - {name: idx_login, columns: [login]}
lifecycleCallbacks:
  prePersist: [onCreate, stamp]
  preUpdate: [stamp]
properties:
  - kind: field
    name: id
    type: integer
    tableName: users
    id: true
    generator: {type: SEQUENCE, definition: {sequenceName: users_seq, allocationSize: 10}}
  - kind: version
    name: revision
    type: integer
  - kind: manyToMany
    name: groups
    targetEntity: App\Entity\Group
    inversedBy: users
    cascade: [all]
    orderBy: {name: ASC}
    joinTable:
      name: users_groups
      joinColumns:
        - {name: user_id, referencedColumnName: id, nullable: false}
      inverseJoinColumns:
        - {name: group_id, referencedColumnName: id, onDelete: CASCADE}
---
class: App\Entity\Group
inheritanceType: JOINED
changeTrackingPolicy: DEFERRED_EXPLICIT
discriminatorColumn: {name: dtype, type: string, length: 20}
discriminatorMap:
  group: App\Entity\Group
  team: App\Entity\Team
properties:
  - kind: field
    name: name
    column: group_name
    type: string
    nullable: true
  - kind: manyToMany
    name: users
    targetEntity: App\Entity\User
    mappedBy: groups
    fetch: EXTRA_LAZY
  - kind: manyToOne
    name: parent
    targetEntity: App\Entity\Group
    joinColumns: [{name: parent_id, referencedColumnName: id}]
`

func TestParse(t *testing.T) {
	s, err := Parse("users.yml", []byte(usersYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{`App\Entity\User`, `App\Entity\Group`}, s.ClassNames())

	user, ok := s.Lookup(`App\Entity\User`)
	require.True(t, ok)
	assert.Equal(t, `App\Repository\UserRepository`, user.CustomRepositoryClassName)
	assert.Equal(t, "auth", user.Table.Schema)
	assert.Equal(t, []string{"collate", "charset"}, user.Table.Options.Keys())
	assert.Equal(t, []literal.Map{literal.NewMap("name", "idx_login", "columns", []interface{}{"login"})},
		user.Table.Indexes)
	assert.Equal(t, []string{"onCreate", "stamp"}, user.LifecycleCallbacksFor("prePersist"))
	assert.Equal(t, "prePersist", user.LifecycleCallbacks[0].Event)

	require.NotNil(t, user.VersionProperty)
	assert.Equal(t, "revision", user.VersionProperty.Name)

	id, _ := user.Property("id")
	gen := id.(*mapping.FieldMetadata).ValueGenerator
	require.NotNil(t, gen)
	assert.Equal(t, mapping.GeneratorSequence, gen.Type)
	assert.Equal(t, literal.NewMap("sequenceName", "users_seq", "allocationSize", 10), gen.Definition)

	p, _ := user.Property("groups")
	groups := p.(*mapping.AssociationMetadata)
	assert.Equal(t, mapping.CascadeOperations, groups.Cascade)
	require.NotNil(t, groups.JoinTable)
	require.Len(t, groups.JoinTable.JoinColumns, 1)
	assert.False(t, groups.JoinTable.JoinColumns[0].Nullable)
	assert.True(t, groups.JoinTable.InverseJoinColumns[0].Nullable)
	assert.Equal(t, "CASCADE", groups.JoinTable.InverseJoinColumns[0].OnDelete)

	group, _ := s.Lookup(`App\Entity\Group`)
	assert.Equal(t, mapping.InheritanceJoined, group.InheritanceType)
	assert.Equal(t, mapping.ChangeTrackingDeferredExplicit, group.ChangeTrackingPolicy)
	assert.Equal(t, "dtype", group.DiscriminatorColumn.ColumnName)
	assert.Equal(t, 20, group.DiscriminatorColumn.Length)
	assert.Equal(t, []mapping.DiscriminatorMapping{
		{Value: "group", ClassName: `App\Entity\Group`},
		{Value: "team", ClassName: `App\Entity\Team`},
	}, group.DiscriminatorMap)

	name, _ := group.Property("name")
	assert.Equal(t, "group_name", name.(*mapping.FieldMetadata).ColumnName)
}

func TestParseExportsAndReloads(t *testing.T) {
	s, err := Parse("users.yml", []byte(usersYAML))
	require.NoError(t, err)

	for _, className := range s.ClassNames() {
		m, _ := s.Lookup(className)
		text, err := export.NewExporter().Export(m)
		require.NoError(t, err)

		loaded, err := export.LoadText(className, text)
		require.NoError(t, err)
		assert.Equal(t, m, loaded, className)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing class", "table: {name: t}\n"},
		{"unknown key", "class: A\ncolour: red\n"},
		{"float option", "class: A\ntable: {name: t, options: {ratio: 1.5}}\n"},
		{"unknown property kind", "class: A\nproperties:\n  - {kind: embedded, name: e}\n"},
		{"bad inheritance", "class: A\ninheritanceType: SOMETIMES\n"},
		{"boolean expected", "class: A\nmappedSuperclass: maybe\n"},
		{"duplicate class", "class: A\n---\nclass: A\n"},
		{"two versions", "class: A\nproperties:\n  - {kind: version, name: a}\n  - {kind: version, name: b}\n"},
		{"malformed yaml", "class: [A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.yml", []byte(tt.doc))
			require.Error(t, err)
			assert.True(t, mxerrors.HasCode(err, mxerrors.ErrSnapshotInvalid), "got %v", err)
		})
	}
}

func TestParseInconsistentClass(t *testing.T) {
	doc := "class: A\nproperties:\n  - {kind: oneToMany, name: children, targetEntity: B}\n"
	_, err := Parse("bad.yml", []byte(doc))
	assert.True(t, mxerrors.HasCode(err, mxerrors.ErrInconsistentMetadata))
}

func TestLoadMergesFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "a.yml", []byte("class: A\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "b.yml", []byte("class: B\n---\nclass: C\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, "dup.yml", []byte("class: A\n"), 0644))

	s, err := Load(fs, "a.yml", "b.yml")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, s.ClassNames())
	assert.Equal(t, 3, s.Len())

	_, err = Load(fs, "a.yml", "dup.yml")
	assert.True(t, mxerrors.HasCode(err, mxerrors.ErrSnapshotInvalid))

	_, err = Load(fs, "missing.yml")
	assert.Error(t, err)
}
