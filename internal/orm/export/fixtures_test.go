package export

import (
	"testing"

	"github.com/conduit-lang/mapexport/internal/orm/literal"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
	"github.com/stretchr/testify/require"
)

func idField(table string) *mapping.FieldMetadata {
	f := mapping.NewFieldMetadata("id")
	f.TypeName = "integer"
	f.TableName = table
	f.PrimaryKey = true
	f.ValueGenerator = mapping.NewValueGeneratorMetadata(mapping.GeneratorIdentity, nil)
	return f
}

func joinColumn(table, column, referenced string) *mapping.JoinColumnMetadata {
	jc := mapping.NewJoinColumnMetadata()
	jc.TableName = table
	jc.ColumnName = column
	jc.ReferencedColumnName = referenced
	return jc
}

func mustAdd(t *testing.T, c *mapping.ClassMetadata, props ...mapping.Property) {
	t.Helper()
	for _, p := range props {
		require.NoError(t, c.AddProperty(p))
	}
}

// qualificationGraph models a qualification owning one metadata row, which
// links to categories through an association class.
func qualificationGraph(t *testing.T) map[string]*mapping.ClassMetadata {
	qualification := mapping.NewClassMetadata(`App\Entity\Qualification`)
	qualification.Table = mapping.NewTableMetadata("ddc2759_qualification")
	meta := mapping.NewOneToOne("metadata")
	meta.TargetEntity = `App\Entity\QualificationMetadata`
	meta.MappedBy = "content"
	meta.SetCascade(mapping.CascadeAll)
	mustAdd(t, qualification, idField("ddc2759_qualification"), meta)

	category := mapping.NewClassMetadata(`App\Entity\Category`)
	category.Table = mapping.NewTableMetadata("ddc2759_category")
	description := mapping.NewFieldMetadata("description")
	description.TypeName = "string"
	description.TableName = "ddc2759_category"
	description.Length = 255
	categoryLinks := mapping.NewOneToMany("metadataCategories")
	categoryLinks.TargetEntity = `App\Entity\MetadataCategory`
	categoryLinks.MappedBy = "category"
	mustAdd(t, category, idField("ddc2759_category"), description, categoryLinks)

	qualificationMeta := mapping.NewClassMetadata(`App\Entity\QualificationMetadata`)
	qualificationMeta.Table = mapping.NewTableMetadata("ddc2759_qualification_metadata")
	content := mapping.NewOneToOne("content")
	content.TargetEntity = `App\Entity\Qualification`
	content.InversedBy = "metadata"
	qjc := joinColumn("ddc2759_qualification_metadata", "content_id", "id")
	qjc.Nullable = false
	qjc.Unique = true
	content.AddJoinColumn(qjc)
	links := mapping.NewOneToMany("metadataCategories")
	links.TargetEntity = `App\Entity\MetadataCategory`
	links.MappedBy = "metadata"
	links.SetCascade(mapping.CascadePersist)
	links.OrphanRemoval = true
	mustAdd(t, qualificationMeta, idField("ddc2759_qualification_metadata"), content, links)

	link := mapping.NewClassMetadata(`App\Entity\MetadataCategory`)
	link.Table = mapping.NewTableMetadata("ddc2759_metadata_category")
	link.Table.AddUniqueConstraint(literal.NewMap("columns", []interface{}{"metadata_id", "category_id"}))
	owner := mapping.NewManyToOne("metadata")
	owner.TargetEntity = `App\Entity\QualificationMetadata`
	owner.InversedBy = "metadataCategories"
	owner.PrimaryKey = true
	owner.AddJoinColumn(joinColumn("ddc2759_metadata_category", "metadata_id", "id"))
	cat := mapping.NewManyToOne("category")
	cat.TargetEntity = `App\Entity\Category`
	cat.InversedBy = "metadataCategories"
	cat.PrimaryKey = true
	cat.FetchMode = mapping.FetchEager
	cat.AddJoinColumn(joinColumn("ddc2759_metadata_category", "category_id", "id"))
	mustAdd(t, link, owner, cat)

	return map[string]*mapping.ClassMetadata{
		qualification.ClassName:     qualification,
		category.ClassName:          category,
		qualificationMeta.ClassName: qualificationMeta,
		link.ClassName:              link,
	}
}

// membershipGraph models users and groups joined through a link table plus
// a versioned membership hierarchy with lifecycle callbacks.
func membershipGraph(t *testing.T) map[string]*mapping.ClassMetadata {
	user := mapping.NewClassMetadata(`App\Entity\User`)
	user.Table = mapping.NewTableMetadata("ddc345_users")
	user.Table.Schema = "auth"
	user.Table.Options = literal.NewMap("charset", "utf8", "collate", "utf8_unicode_ci")
	user.Table.AddIndex(literal.NewMap("name", "idx_login", "columns", []interface{}{"login"}))
	user.CustomRepositoryClassName = `App\Repository\UserRepository`
	login := mapping.NewFieldMetadata("login")
	login.ColumnName = "user_login"
	login.TypeName = "string"
	login.TableName = "ddc345_users"
	login.Length = 50
	login.Unique = true
	login.Options = literal.NewMap("fixed", true, "comment", "login name")
	groups := mapping.NewManyToMany("groups")
	groups.TargetEntity = `App\Entity\Group`
	groups.InversedBy = "users"
	groups.SetCascade(mapping.CascadePersist, mapping.CascadeMerge)
	groups.IndexedBy = "name"
	groups.OrderBy = literal.NewMap("name", "ASC")
	groups.JoinTable = mapping.NewJoinTableMetadata()
	groups.JoinTable.Name = "ddc345_users_groups"
	groups.JoinTable.Schema = "auth"
	groups.JoinTable.AddJoinColumn(joinColumn("ddc345_users_groups", "user_id", "id"))
	inverse := joinColumn("ddc345_users_groups", "group_id", "id")
	inverse.OnDelete = "CASCADE"
	groups.JoinTable.AddInverseJoinColumn(inverse)
	mustAdd(t, user, idField("ddc345_users"), login, groups)

	group := mapping.NewClassMetadata(`App\Entity\Group`)
	group.Table = mapping.NewTableMetadata("ddc345_groups")
	name := mapping.NewFieldMetadata("name")
	name.TypeName = "string"
	name.TableName = "ddc345_groups"
	name.Nullable = true
	users := mapping.NewManyToMany("users")
	users.TargetEntity = `App\Entity\User`
	users.MappedBy = "groups"
	users.FetchMode = mapping.FetchExtraLazy
	mustAdd(t, group, idField("ddc345_groups"), name, users)

	membership := mapping.NewClassMetadata(`App\Entity\Membership`)
	membership.InheritanceType = mapping.InheritanceSingleTable
	membership.ChangeTrackingPolicy = mapping.ChangeTrackingNotify
	membership.Table = mapping.NewTableMetadata("ddc345_memberships")
	discr := mapping.NewDiscriminatorColumnMetadata()
	discr.ColumnName = "kind"
	discr.TypeName = "string"
	discr.TableName = "ddc345_memberships"
	discr.Length = 32
	membership.DiscriminatorColumn = discr
	require.NoError(t, membership.SetDiscriminatorMap(literal.NewMap(
		"standard", `App\Entity\Membership`,
		"premium", `App\Entity\PremiumMembership`,
	)))
	membership.AddLifecycleCallback("doStuffOnPrePersist", "prePersist")
	membership.AddLifecycleCallback("touch", "preUpdate")
	membership.AddLifecycleCallback("doOtherStuffOnPrePersist", "prePersist")
	version := mapping.NewFieldMetadata("version")
	version.TypeName = "integer"
	version.TableName = "ddc345_memberships"
	membership.VersionProperty = version
	state := mapping.NewFieldMetadata("state")
	state.TypeName = "decimal"
	state.TableName = "ddc345_memberships"
	state.Precision = 10
	state.Scale = 2
	state.ColumnDefinition = "DECIMAL(10,2) NOT NULL"
	memberUser := mapping.NewManyToOne("user")
	memberUser.TargetEntity = `App\Entity\User`
	memberUser.SetCascade(mapping.CascadeRemove, mapping.CascadePersist, mapping.CascadeRefresh,
		mapping.CascadeMerge, mapping.CascadeDetach)
	memberUser.AddJoinColumn(joinColumn("ddc345_memberships", "user_id", "id"))
	mustAdd(t, membership, idField("ddc345_memberships"), version, state, memberUser)

	base := mapping.NewClassMetadata(`App\Entity\Timestamped`)
	base.IsMappedSuperclass = true
	created := mapping.NewFieldMetadata("createdAt")
	created.ColumnName = "created_at"
	created.TypeName = "datetime"
	mustAdd(t, base, created)

	return map[string]*mapping.ClassMetadata{
		user.ClassName:       user,
		group.ClassName:      group,
		membership.ClassName: membership,
		base.ClassName:       base,
	}
}
