package export

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

// ExportClass returns the complete program rebuilding metadata. It fails
// without output when the metadata is inconsistent or a value cannot be
// expressed as a literal.
func ExportClass(metadata *mapping.ClassMetadata) (Program, error) {
	if err := mapping.Validate(metadata); err != nil {
		return nil, err
	}

	b := &builder{}
	b.emit(Preamble()...)

	if metadata.IsMappedSuperclass {
		b.emit(SetField{Recv: varMetadata, Field: "isMappedSuperclass", Value: Literal{Value: true}})
	}
	if metadata.InheritanceType != mapping.InheritanceNone {
		b.call(varMetadata, "setInheritanceType",
			Const{Type: mappingType("InheritanceType"), Name: metadata.InheritanceType.String()})
	}
	if metadata.CustomRepositoryClassName != "" {
		b.call(varMetadata, "setCustomRepositoryClassName", b.str(metadata.CustomRepositoryClassName))
	}

	if metadata.Table != nil {
		b.extend(exportTable(metadata.Table))
	}
	if metadata.DiscriminatorColumn != nil {
		b.extend(exportDiscriminatorColumn(metadata.DiscriminatorColumn))
	}
	if len(metadata.DiscriminatorMap) > 0 {
		b.call(varMetadata, "setDiscriminatorMap", b.lit(metadata.DiscriminatorLiteral()))
	}
	if metadata.ChangeTrackingPolicy != mapping.ChangeTrackingDeferredImplicit {
		b.call(varMetadata, "setChangeTrackingPolicy",
			Const{Type: mappingType("ChangeTrackingPolicy"), Name: metadata.ChangeTrackingPolicy.String()})
	}

	for _, group := range metadata.LifecycleCallbacks {
		for _, callback := range group.Callbacks {
			b.call(varMetadata, "addLifecycleCallback", b.str(callback), b.str(group.Event))
		}
	}

	for _, p := range metadata.DeclaredProperties() {
		switch prop := p.(type) {
		case *mapping.FieldMetadata:
			b.extend(ExportField(metadata, prop))
		case *mapping.AssociationMetadata:
			b.extend(ExportAssociation(metadata, prop))
		default:
			return nil, fmt.Errorf("unsupported property type %T", p)
		}
	}

	stmts, err := b.done()
	if err != nil {
		return nil, err
	}
	return Program(stmts), nil
}

func exportTable(table *mapping.TableMetadata) ([]Statement, error) {
	b := &builder{}

	b.assign(varTable, New{Type: mappingType("TableMetadata")})
	b.blank()
	if table.Schema != "" {
		b.call(varTable, "setSchema", b.str(table.Schema))
	}
	b.call(varTable, "setName", b.str(table.Name))
	b.call(varTable, "setOptions", b.lit(table.Options))
	for _, index := range table.Indexes {
		b.call(varTable, "addIndex", b.lit(index))
	}
	for _, constraint := range table.UniqueConstraints {
		b.call(varTable, "addUniqueConstraint", b.lit(constraint))
	}
	b.blank()
	b.call(varMetadata, "setTable", Var{Name: varTable})

	return b.done()
}

func exportDiscriminatorColumn(column *mapping.DiscriminatorColumnMetadata) ([]Statement, error) {
	b := &builder{}

	b.assign(varDiscrColumn, New{Type: mappingType("DiscriminatorColumnMetadata")})
	b.blank()
	b.call(varDiscrColumn, "setColumnName", b.str(column.ColumnName))
	b.call(varDiscrColumn, "setType", typeExpr(column.TypeName))
	b.call(varDiscrColumn, "setTableName", b.str(column.TableName))

	if column.ColumnDefinition != "" {
		b.call(varDiscrColumn, "setColumnDefinition", b.str(column.ColumnDefinition))
	}
	if column.Length != 0 {
		b.call(varDiscrColumn, "setLength", b.lit(column.Length))
	}
	if column.Scale != 0 {
		b.call(varDiscrColumn, "setScale", b.lit(column.Scale))
	}
	if column.Precision != 0 {
		b.call(varDiscrColumn, "setPrecision", b.lit(column.Precision))
	}

	b.call(varDiscrColumn, "setOptions", b.lit(column.Options))
	b.call(varDiscrColumn, "setNullable", b.lit(column.Nullable))
	b.call(varDiscrColumn, "setUnique", b.lit(column.Unique))
	b.blank()
	b.call(varMetadata, "setDiscriminatorColumn", Var{Name: varDiscrColumn})

	return b.done()
}

// Exporter renders class metadata into program text
type Exporter struct {
	logger *zap.Logger
}

// Option configures an Exporter
type Option func(*Exporter)

// WithLogger sets the logger used to trace exports
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter creates an exporter. Without options it logs nothing.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExportProgram builds the program for metadata
func (e *Exporter) ExportProgram(metadata *mapping.ClassMetadata) (Program, error) {
	prog, err := ExportClass(metadata)
	if err != nil {
		className := "<nil>"
		if metadata != nil {
			className = metadata.ClassName
		}
		e.logger.Error("export failed", zap.String("class", className), zap.Error(err))
		return nil, err
	}

	e.logger.Debug("exported class metadata",
		zap.String("class", metadata.ClassName),
		zap.Int("properties", len(metadata.DeclaredProperties())),
		zap.Int("statements", prog.Count()),
	)
	return prog, nil
}

// Export returns the rendered program for metadata. It returns either a
// complete program or an error, never partial text.
func (e *Exporter) Export(metadata *mapping.ClassMetadata) (string, error) {
	prog, err := e.ExportProgram(metadata)
	if err != nil {
		return "", err
	}
	return Render(prog)
}
