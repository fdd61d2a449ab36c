package export

import (
	"fmt"

	mxerrors "github.com/conduit-lang/mapexport/internal/errors"
	"github.com/conduit-lang/mapexport/internal/orm/literal"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
)

// typeRef is the value of Type.getType(name)
type typeRef string

var knownUses = map[string]bool{
	"types.Type":            true,
	"mapping":               true,
	"mapping.ClassMetadata": true,
}

// Load executes prog against fresh metadata for className and returns the
// rebuilt metadata.
func Load(className string, prog Program) (*mapping.ClassMetadata, error) {
	in := &interpreter{
		class:    mapping.NewClassMetadata(className),
		vars:     make(map[string]interface{}),
		versions: make(map[*mapping.FieldMetadata]bool),
	}
	in.vars[varMetadata] = in.class

	if err := in.checkHeader(prog); err != nil {
		return nil, err
	}
	if err := in.run(prog); err != nil {
		return nil, err
	}
	if err := mapping.Validate(in.class); err != nil {
		return nil, err
	}
	return in.class, nil
}

// LoadText parses and executes program text
func LoadText(className, src string) (*mapping.ClassMetadata, error) {
	prog, err := ParseProgram(src)
	if err != nil {
		return nil, err
	}
	return Load(className, prog)
}

type interpreter struct {
	class    *mapping.ClassMetadata
	vars     map[string]interface{}
	versions map[*mapping.FieldMetadata]bool
}

func execErr(format string, args ...interface{}) error {
	return mxerrors.NewProgramExecution(fmt.Sprintf(format, args...))
}

func (in *interpreter) checkHeader(prog Program) error {
	for _, s := range prog {
		if _, ok := s.(Blank); ok {
			continue
		}
		h, ok := s.(Header)
		if !ok {
			break
		}
		if h.Version < 1 || h.Version > FormatVersion {
			return execErr("unsupported program version %d", h.Version)
		}
		return nil
	}
	return execErr("program has no header")
}

func (in *interpreter) run(stmts []Statement) error {
	for _, s := range stmts {
		if err := in.exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) exec(s Statement) error {
	switch st := s.(type) {
	case Header, Blank:
		return nil
	case Use:
		if !knownUses[st.Path] {
			return execErr("unknown import %q", st.Path)
		}
		return nil
	case Assign:
		v, err := in.eval(st.Value)
		if err != nil {
			return err
		}
		if st.Var == varMetadata {
			return execErr("cannot reassign %s", varMetadata)
		}
		in.vars[st.Var] = v
		return nil
	case SetField:
		return in.setField(st)
	case Call:
		recv, err := in.lookup(st.Recv)
		if err != nil {
			return err
		}
		args := make([]interface{}, len(st.Args))
		for i, a := range st.Args {
			if args[i], err = in.eval(a); err != nil {
				return err
			}
		}
		return in.call(recv, st.Method, args)
	case Append:
		cur, err := in.lookup(st.Var)
		if err != nil {
			return err
		}
		seq, ok := cur.([]interface{})
		if !ok {
			return execErr("%s is not a sequence", st.Var)
		}
		v, err := in.eval(st.Value)
		if err != nil {
			return err
		}
		in.vars[st.Var] = append(seq, v)
		return nil
	case ForEach:
		cur, err := in.lookup(st.Over)
		if err != nil {
			return err
		}
		seq, ok := cur.([]interface{})
		if !ok {
			return execErr("%s is not a sequence", st.Over)
		}
		for _, item := range seq {
			in.vars[st.Item] = item
			if err := in.run(st.Body); err != nil {
				return err
			}
		}
		return nil
	}
	return execErr("unsupported statement %T", s)
}

func (in *interpreter) lookup(name string) (interface{}, error) {
	v, ok := in.vars[name]
	if !ok {
		return nil, execErr("undefined variable %q", name)
	}
	return v, nil
}

func (in *interpreter) eval(e Expr) (interface{}, error) {
	switch ex := e.(type) {
	case Literal:
		return ex.Value, nil
	case Var:
		return in.lookup(ex.Name)
	case Const:
		return evalConst(ex)
	case StaticCall:
		if ex.Type != pkgTypes || ex.Method != "getType" || len(ex.Args) != 1 {
			return nil, execErr("unknown function %s.%s", ex.Type, ex.Method)
		}
		name, err := in.eval(ex.Args[0])
		if err != nil {
			return nil, err
		}
		s, ok := name.(string)
		if !ok {
			return nil, execErr("%s.getType expects a string", pkgTypes)
		}
		return typeRef(s), nil
	case New:
		args := make([]interface{}, len(ex.Args))
		for i, a := range ex.Args {
			v, err := in.eval(a)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return in.construct(ex.Type, args)
	}
	return nil, execErr("unsupported expression %T", e)
}

func evalConst(c Const) (interface{}, error) {
	switch c.Type {
	case mappingType("InheritanceType"):
		it, err := mapping.ParseInheritanceType(c.Name)
		if err != nil {
			return nil, execErr("%v", err)
		}
		return it, nil
	case mappingType("ChangeTrackingPolicy"):
		p, err := mapping.ParseChangeTrackingPolicy(c.Name)
		if err != nil {
			return nil, execErr("%v", err)
		}
		return p, nil
	}
	return nil, execErr("unknown constant %s.%s", c.Type, c.Name)
}

var associationKinds = map[string]mapping.AssociationKind{
	mappingType("OneToOneAssociationMetadata"):   mapping.OneToOne,
	mappingType("ManyToOneAssociationMetadata"):  mapping.ManyToOne,
	mappingType("OneToManyAssociationMetadata"):  mapping.OneToMany,
	mappingType("ManyToManyAssociationMetadata"): mapping.ManyToMany,
}

func (in *interpreter) construct(typeName string, vals []interface{}) (interface{}, error) {
	a := &argList{fn: "new " + typeName, vals: vals}

	if kind, ok := associationKinds[typeName]; ok {
		if !a.count(1) {
			return nil, a.err
		}
		return mapping.NewAssociationMetadata(kind, a.str(0)), a.err
	}

	switch typeName {
	case mappingType("TableMetadata"):
		a.count(0)
		return mapping.NewTableMetadata(""), a.err
	case mappingType("DiscriminatorColumnMetadata"):
		a.count(0)
		return mapping.NewDiscriminatorColumnMetadata(), a.err
	case mappingType("JoinColumnMetadata"):
		a.count(0)
		return mapping.NewJoinColumnMetadata(), a.err
	case mappingType("JoinTableMetadata"):
		a.count(0)
		return mapping.NewJoinTableMetadata(), a.err
	case mappingType("FieldMetadata"), mappingType("VersionFieldMetadata"):
		if !a.count(1) {
			return nil, a.err
		}
		f := mapping.NewFieldMetadata(a.str(0))
		if typeName == mappingType("VersionFieldMetadata") {
			in.versions[f] = true
		}
		return f, a.err
	case mappingType("ValueGeneratorMetadata"):
		if !a.count(2) {
			return nil, a.err
		}
		gt, err := mapping.ParseGeneratorType(a.str(0))
		if err != nil {
			return nil, execErr("%v", err)
		}
		return mapping.NewValueGeneratorMetadata(gt, a.dict(1)), a.err
	}
	return nil, execErr("unknown type %s", typeName)
}

func (in *interpreter) setField(st SetField) error {
	recv, err := in.lookup(st.Recv)
	if err != nil {
		return err
	}
	v, err := in.eval(st.Value)
	if err != nil {
		return err
	}
	class, ok := recv.(*mapping.ClassMetadata)
	if !ok || st.Field != "isMappedSuperclass" {
		return execErr("unknown field %s.%s", st.Recv, st.Field)
	}
	a := &argList{fn: st.Field, vals: []interface{}{v}}
	class.IsMappedSuperclass = a.boolean(0)
	return a.err
}

func (in *interpreter) call(recv interface{}, method string, vals []interface{}) error {
	switch r := recv.(type) {
	case *mapping.ClassMetadata:
		return in.callClass(r, method, vals)
	case *mapping.TableMetadata:
		return callTable(r, method, vals)
	case *mapping.DiscriminatorColumnMetadata:
		return callColumn(columnOf(r), method, vals)
	case *mapping.FieldMetadata:
		return callField(r, method, vals)
	case *mapping.JoinColumnMetadata:
		return callJoinColumn(r, method, vals)
	case *mapping.JoinTableMetadata:
		return callJoinTable(r, method, vals)
	case *mapping.AssociationMetadata:
		return callAssociation(r, method, vals)
	}
	return execErr("cannot call %s on %T", method, recv)
}

func (in *interpreter) callClass(c *mapping.ClassMetadata, method string, vals []interface{}) error {
	a := &argList{fn: method, vals: vals}

	switch method {
	case "setInheritanceType":
		if a.count(1) {
			it, ok := vals[0].(mapping.InheritanceType)
			if !ok {
				return execErr("%s expects an inheritance type", method)
			}
			c.InheritanceType = it
		}
	case "setCustomRepositoryClassName":
		if a.count(1) {
			c.CustomRepositoryClassName = a.str(0)
		}
	case "setTable":
		if a.count(1) {
			t, ok := vals[0].(*mapping.TableMetadata)
			if !ok {
				return execErr("%s expects a table", method)
			}
			c.Table = t
		}
	case "setDiscriminatorColumn":
		if a.count(1) {
			d, ok := vals[0].(*mapping.DiscriminatorColumnMetadata)
			if !ok {
				return execErr("%s expects a discriminator column", method)
			}
			c.DiscriminatorColumn = d
		}
	case "setDiscriminatorMap":
		if a.count(1) {
			if err := c.SetDiscriminatorMap(a.dict(0)); err != nil {
				return err
			}
		}
	case "setChangeTrackingPolicy":
		if a.count(1) {
			p, ok := vals[0].(mapping.ChangeTrackingPolicy)
			if !ok {
				return execErr("%s expects a change tracking policy", method)
			}
			c.ChangeTrackingPolicy = p
		}
	case "addLifecycleCallback":
		if a.count(2) {
			c.AddLifecycleCallback(a.str(0), a.str(1))
		}
	case "addProperty":
		if a.count(1) {
			return in.addProperty(c, vals[0])
		}
	default:
		return execErr("unknown method metadata.%s", method)
	}
	return a.err
}

func (in *interpreter) addProperty(c *mapping.ClassMetadata, v interface{}) error {
	p, ok := v.(mapping.Property)
	if !ok {
		return execErr("addProperty expects a field or association, got %T", v)
	}
	if err := c.AddProperty(p); err != nil {
		return err
	}
	if f, ok := p.(*mapping.FieldMetadata); ok && in.versions[f] {
		if c.VersionProperty != nil {
			return mxerrors.NewInconsistentMetadata(c.ClassName, "more than one version property")
		}
		c.VersionProperty = f
	}
	return nil
}

func callTable(t *mapping.TableMetadata, method string, vals []interface{}) error {
	a := &argList{fn: method, vals: vals}
	if !a.count(1) {
		return a.err
	}
	switch method {
	case "setSchema":
		t.Schema = a.str(0)
	case "setName":
		t.Name = a.str(0)
	case "setOptions":
		t.Options = a.dict(0)
	case "addIndex":
		t.AddIndex(a.dict(0))
	case "addUniqueConstraint":
		t.AddUniqueConstraint(a.dict(0))
	default:
		return execErr("unknown method table.%s", method)
	}
	return a.err
}

// column addresses the attributes shared by fields and discriminator columns
type column struct {
	columnName, typeName, tableName, columnDefinition *string
	length, scale, precision                          *int
	options                                           *literal.Map
	nullable, unique                                  *bool
}

func columnOf(d *mapping.DiscriminatorColumnMetadata) column {
	return column{
		&d.ColumnName, &d.TypeName, &d.TableName, &d.ColumnDefinition,
		&d.Length, &d.Scale, &d.Precision, &d.Options, &d.Nullable, &d.Unique,
	}
}

func callColumn(c column, method string, vals []interface{}) error {
	a := &argList{fn: method, vals: vals}
	if !a.count(1) {
		return a.err
	}
	switch method {
	case "setColumnName":
		*c.columnName = a.str(0)
	case "setType":
		t, ok := vals[0].(typeRef)
		if !ok {
			return execErr("setType expects %s.getType(...)", pkgTypes)
		}
		*c.typeName = string(t)
	case "setTableName":
		*c.tableName = a.str(0)
	case "setColumnDefinition":
		*c.columnDefinition = a.str(0)
	case "setLength":
		*c.length = a.integer(0)
	case "setScale":
		*c.scale = a.integer(0)
	case "setPrecision":
		*c.precision = a.integer(0)
	case "setOptions":
		*c.options = a.dict(0)
	case "setNullable":
		*c.nullable = a.boolean(0)
	case "setUnique":
		*c.unique = a.boolean(0)
	default:
		return execErr("unknown column method %s", method)
	}
	return a.err
}

func callField(f *mapping.FieldMetadata, method string, vals []interface{}) error {
	switch method {
	case "setPrimaryKey":
		a := &argList{fn: method, vals: vals}
		if a.count(1) {
			f.PrimaryKey = a.boolean(0)
		}
		return a.err
	case "setValueGenerator":
		a := &argList{fn: method, vals: vals}
		if a.count(1) {
			g, ok := vals[0].(*mapping.ValueGeneratorMetadata)
			if !ok {
				return execErr("%s expects a value generator", method)
			}
			f.ValueGenerator = g
		}
		return a.err
	}
	return callColumn(column{
		&f.ColumnName, &f.TypeName, &f.TableName, &f.ColumnDefinition,
		&f.Length, &f.Scale, &f.Precision, &f.Options, &f.Nullable, &f.Unique,
	}, method, vals)
}

func callJoinColumn(jc *mapping.JoinColumnMetadata, method string, vals []interface{}) error {
	a := &argList{fn: method, vals: vals}
	if !a.count(1) {
		return a.err
	}
	switch method {
	case "setTableName":
		jc.TableName = a.str(0)
	case "setColumnName":
		jc.ColumnName = a.str(0)
	case "setReferencedColumnName":
		jc.ReferencedColumnName = a.str(0)
	case "setAliasedName":
		jc.AliasedName = a.str(0)
	case "setColumnDefinition":
		jc.ColumnDefinition = a.str(0)
	case "setOnDelete":
		jc.OnDelete = a.str(0)
	case "setOptions":
		jc.Options = a.dict(0)
	case "setNullable":
		jc.Nullable = a.boolean(0)
	case "setUnique":
		jc.Unique = a.boolean(0)
	case "setPrimaryKey":
		jc.PrimaryKey = a.boolean(0)
	default:
		return execErr("unknown method joinColumn.%s", method)
	}
	return a.err
}

func callJoinTable(jt *mapping.JoinTableMetadata, method string, vals []interface{}) error {
	a := &argList{fn: method, vals: vals}
	if !a.count(1) {
		return a.err
	}
	switch method {
	case "setName":
		jt.Name = a.str(0)
	case "setSchema":
		jt.Schema = a.str(0)
	case "setOptions":
		jt.Options = a.dict(0)
	case "addJoinColumn", "addInverseJoinColumn":
		jc, ok := vals[0].(*mapping.JoinColumnMetadata)
		if !ok {
			return execErr("%s expects a join column", method)
		}
		if method == "addJoinColumn" {
			jt.AddJoinColumn(jc)
		} else {
			jt.AddInverseJoinColumn(jc)
		}
	default:
		return execErr("unknown method joinTable.%s", method)
	}
	return a.err
}

func callAssociation(as *mapping.AssociationMetadata, method string, vals []interface{}) error {
	a := &argList{fn: method, vals: vals}
	if !a.count(1) {
		return a.err
	}
	switch method {
	case "setJoinColumns":
		seq := a.seq(0)
		columns := make([]*mapping.JoinColumnMetadata, 0, len(seq))
		for _, item := range seq {
			jc, ok := item.(*mapping.JoinColumnMetadata)
			if !ok {
				return execErr("%s expects join columns, got %T", method, item)
			}
			columns = append(columns, jc)
		}
		as.JoinColumns = columns
	case "setOrderBy":
		as.OrderBy = a.dict(0)
	case "setJoinTable":
		jt, ok := vals[0].(*mapping.JoinTableMetadata)
		if !ok {
			return execErr("%s expects a join table", method)
		}
		as.JoinTable = jt
	case "setIndexedBy":
		as.IndexedBy = a.str(0)
	case "setTargetEntity":
		as.TargetEntity = a.str(0)
	case "setFetchMode":
		fm, err := mapping.ParseFetchMode(a.str(0))
		if err != nil && a.err == nil {
			return execErr("%v", err)
		}
		as.FetchMode = fm
	case "setMappedBy":
		as.MappedBy = a.str(0)
	case "setInversedBy":
		as.InversedBy = a.str(0)
	case "setCascade":
		seq := a.seq(0)
		ops := make([]string, 0, len(seq))
		for _, item := range seq {
			op, ok := item.(string)
			if !ok {
				return execErr("%s expects operation names", method)
			}
			ops = append(ops, op)
		}
		as.SetCascade(ops...)
	case "setOrphanRemoval":
		as.OrphanRemoval = a.boolean(0)
	case "setPrimaryKey":
		as.PrimaryKey = a.boolean(0)
	default:
		return execErr("unknown method association.%s", method)
	}
	return a.err
}

// argList extracts typed call arguments, keeping the first mismatch
type argList struct {
	fn   string
	vals []interface{}
	err  error
}

func (a *argList) count(n int) bool {
	if len(a.vals) != n {
		a.fail("%s expects %d argument(s), got %d", a.fn, n, len(a.vals))
		return false
	}
	return true
}

func (a *argList) fail(format string, args ...interface{}) {
	if a.err == nil {
		a.err = execErr(format, args...)
	}
}

func (a *argList) str(i int) string {
	s, ok := a.vals[i].(string)
	if !ok {
		a.fail("%s expects a string, got %T", a.fn, a.vals[i])
	}
	return s
}

func (a *argList) boolean(i int) bool {
	b, ok := a.vals[i].(bool)
	if !ok {
		a.fail("%s expects a boolean, got %T", a.fn, a.vals[i])
	}
	return b
}

func (a *argList) integer(i int) int {
	n, ok := a.vals[i].(int)
	if !ok {
		a.fail("%s expects an integer, got %T", a.fn, a.vals[i])
	}
	return n
}

func (a *argList) dict(i int) literal.Map {
	m, ok := a.vals[i].(literal.Map)
	if !ok {
		a.fail("%s expects a map, got %T", a.fn, a.vals[i])
	}
	return m
}

func (a *argList) seq(i int) []interface{} {
	s, ok := a.vals[i].([]interface{})
	if !ok {
		a.fail("%s expects a sequence, got %T", a.fn, a.vals[i])
	}
	return s
}
