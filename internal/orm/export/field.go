package export

import "github.com/conduit-lang/mapexport/internal/orm/mapping"

// ExportField returns the statements that rebuild field and append it to
// the declared properties of owner.
func ExportField(owner *mapping.ClassMetadata, field *mapping.FieldMetadata) ([]Statement, error) {
	b := &builder{}

	ctor := "FieldMetadata"
	if owner.IsVersion(field) {
		ctor = "VersionFieldMetadata"
	}

	b.assign(varProperty, New{Type: mappingType(ctor), Args: []Expr{b.str(field.Name)}})
	b.blank()
	b.call(varProperty, "setColumnName", b.str(field.ColumnName))
	b.call(varProperty, "setType", typeExpr(field.TypeName))
	b.call(varProperty, "setTableName", b.str(field.TableName))

	// Zero means unset: omitting the setter keeps the runtime default.
	if field.ColumnDefinition != "" {
		b.call(varProperty, "setColumnDefinition", b.str(field.ColumnDefinition))
	}
	if field.Length != 0 {
		b.call(varProperty, "setLength", b.lit(field.Length))
	}
	if field.Scale != 0 {
		b.call(varProperty, "setScale", b.lit(field.Scale))
	}
	if field.Precision != 0 {
		b.call(varProperty, "setPrecision", b.lit(field.Precision))
	}

	b.call(varProperty, "setOptions", b.lit(field.Options))
	b.call(varProperty, "setPrimaryKey", b.lit(field.PrimaryKey))
	b.call(varProperty, "setNullable", b.lit(field.Nullable))
	b.call(varProperty, "setUnique", b.lit(field.Unique))

	if field.HasValueGenerator() {
		gen := field.ValueGenerator
		b.call(varProperty, "setValueGenerator", New{
			Type: mappingType("ValueGeneratorMetadata"),
			Args: []Expr{b.str(gen.Type.String()), b.lit(gen.Definition)},
		})
	}

	b.blank()
	b.call(varMetadata, "addProperty", Var{Name: varProperty})

	return b.done()
}
