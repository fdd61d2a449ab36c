package export

import (
	"fmt"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

var associationTypes = map[mapping.AssociationKind]string{
	mapping.OneToOne:   "OneToOneAssociationMetadata",
	mapping.ManyToOne:  "ManyToOneAssociationMetadata",
	mapping.OneToMany:  "OneToManyAssociationMetadata",
	mapping.ManyToMany: "ManyToManyAssociationMetadata",
}

// ExportAssociation returns the statements that rebuild assoc and append it
// to the declared properties of owner. Owned sub-structures are built before
// the association so its setters can reference them.
func ExportAssociation(owner *mapping.ClassMetadata, assoc *mapping.AssociationMetadata) ([]Statement, error) {
	if assoc.MappedBy != "" && assoc.InversedBy != "" {
		return nil, mxerrors.NewInconsistentMetadata(owner.ClassName,
			fmt.Sprintf("association %q sets both mappedBy and inversedBy", assoc.Name))
	}

	typeName, ok := associationTypes[assoc.Kind]
	if !ok {
		return nil, mxerrors.NewInconsistentMetadata(owner.ClassName,
			fmt.Sprintf("association %q has unknown kind %d", assoc.Name, int(assoc.Kind)))
	}

	b := &builder{}
	construct := func() {
		b.assign(varAssociation, New{Type: mappingType(typeName), Args: []Expr{b.str(assoc.Name)}})
		b.blank()
	}

	switch assoc.Kind {
	case mapping.OneToOne, mapping.ManyToOne:
		b.extend(exportJoinColumns(assoc.JoinColumns, varJoinColumns))
		construct()
		b.call(varAssociation, "setJoinColumns", Var{Name: varJoinColumns})

	case mapping.OneToMany:
		construct()
		b.call(varAssociation, "setOrderBy", b.lit(assoc.OrderBy))

	case mapping.ManyToMany:
		// Only the owning side carries a join table.
		if assoc.JoinTable != nil {
			b.extend(exportJoinTable(assoc.JoinTable))
		}
		construct()
		if assoc.JoinTable != nil {
			b.call(varAssociation, "setJoinTable", Var{Name: varJoinTable})
		}
		if assoc.IndexedBy != "" {
			b.call(varAssociation, "setIndexedBy", b.str(assoc.IndexedBy))
		}
		b.call(varAssociation, "setOrderBy", b.lit(assoc.OrderBy))
	}

	b.call(varAssociation, "setTargetEntity", b.str(assoc.TargetEntity))
	b.call(varAssociation, "setFetchMode", b.str(assoc.FetchMode.String()))
	if assoc.MappedBy != "" {
		b.call(varAssociation, "setMappedBy", b.str(assoc.MappedBy))
	}
	if assoc.InversedBy != "" {
		b.call(varAssociation, "setInversedBy", b.str(assoc.InversedBy))
	}
	b.call(varAssociation, "setCascade", b.lit(mapping.CompactCascade(assoc.Cascade)))
	b.call(varAssociation, "setOrphanRemoval", b.lit(assoc.OrphanRemoval))
	b.call(varAssociation, "setPrimaryKey", b.lit(assoc.PrimaryKey))
	b.blank()
	b.call(varMetadata, "addProperty", Var{Name: varAssociation})

	return b.done()
}

// exportJoinTable builds both join-column sequences, then the join table
// wired to them.
func exportJoinTable(joinTable *mapping.JoinTableMetadata) ([]Statement, error) {
	b := &builder{}

	b.blank()
	b.extend(exportJoinColumns(joinTable.JoinColumns, varJoinColumns))
	b.blank()
	b.extend(exportJoinColumns(joinTable.InverseJoinColumns, varInverseJoinColumns))
	b.blank()

	b.assign(varJoinTable, New{Type: mappingType("JoinTableMetadata")})
	b.blank()
	b.call(varJoinTable, "setName", b.str(joinTable.Name))
	if joinTable.Schema != "" {
		b.call(varJoinTable, "setSchema", b.str(joinTable.Schema))
	}
	b.call(varJoinTable, "setOptions", b.lit(joinTable.Options))
	b.blank()
	b.emit(ForEach{
		Item: varJoinColumn,
		Over: varJoinColumns,
		Body: []Statement{Call{Recv: varJoinTable, Method: "addJoinColumn", Args: []Expr{Var{Name: varJoinColumn}}}},
	})
	b.blank()
	b.emit(ForEach{
		Item: varInverseJoinColumn,
		Over: varInverseJoinColumns,
		Body: []Statement{Call{Recv: varJoinTable, Method: "addInverseJoinColumn", Args: []Expr{Var{Name: varInverseJoinColumn}}}},
	})
	b.blank()

	return b.done()
}

// exportJoinColumns builds the sequence variable seqVar holding columns
func exportJoinColumns(columns []*mapping.JoinColumnMetadata, seqVar string) ([]Statement, error) {
	b := &builder{}

	b.assign(seqVar, Literal{Value: []interface{}{}})

	for _, jc := range columns {
		b.assign(varJoinColumn, New{Type: mappingType("JoinColumnMetadata")})
		b.blank()
		b.call(varJoinColumn, "setTableName", b.str(jc.TableName))
		b.call(varJoinColumn, "setColumnName", b.str(jc.ColumnName))
		b.call(varJoinColumn, "setReferencedColumnName", b.str(jc.ReferencedColumnName))
		b.call(varJoinColumn, "setAliasedName", b.str(jc.AliasedName))
		b.call(varJoinColumn, "setColumnDefinition", b.str(jc.ColumnDefinition))
		b.call(varJoinColumn, "setOnDelete", b.str(jc.OnDelete))
		b.call(varJoinColumn, "setOptions", b.lit(jc.Options))
		b.call(varJoinColumn, "setNullable", b.lit(jc.Nullable))
		b.call(varJoinColumn, "setUnique", b.lit(jc.Unique))
		b.call(varJoinColumn, "setPrimaryKey", b.lit(jc.PrimaryKey))
		b.blank()
		b.emit(Append{Var: seqVar, Value: Var{Name: varJoinColumn}})
	}

	return b.done()
}
