package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/mapexport/internal/cli/ui"
	"github.com/conduit-lang/mapexport/internal/orm/export"
	"github.com/conduit-lang/mapexport/internal/orm/mapping"
	"github.com/conduit-lang/mapexport/internal/orm/metadata"
)

func newShowCommand(env *Env) *cobra.Command {
	var describe bool

	cmd := &cobra.Command{
		Use:   "show <snapshot.yml> [class]",
		Short: "Print the mapping program of a class",
		Long: `Print the mapping program of one snapshot class to stdout.

Without a class argument, list the classes the snapshot declares.
With --describe, print a summary of the class metadata instead of the program.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			factory, err := env.loadFactory(args[:1])
			if err != nil {
				return env.printError(cmd.ErrOrStderr(), err)
			}

			if len(args) == 1 {
				return listClasses(cmd.OutOrStdout(), env, factory)
			}

			className := args[1]
			if err := env.resolveClass(cmd, factory, className); err != nil {
				return err
			}
			m, err := factory.GetClassMetadata(className)
			if err != nil {
				return err
			}

			if describe {
				describeClass(cmd.OutOrStdout(), env, m)
				return nil
			}

			text, err := export.NewExporter(export.WithLogger(env.Logger)).Export(m)
			if err != nil {
				return env.printError(cmd.ErrOrStderr(), err)
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&describe, "describe", "d", false, "Summarize the class instead of printing its program")

	return cmd
}

func listClasses(w io.Writer, env *Env, factory *metadata.Factory) error {
	classes, err := factory.AllMetadata()
	if err != nil {
		return err
	}

	table := ui.NewTable(w, []string{"Class", "Table", "Inheritance", "Properties"}, env.NoColor)
	for _, m := range classes {
		tableName := "-"
		if m.Table != nil {
			tableName = m.Table.Name
		}
		if m.IsMappedSuperclass {
			tableName = "(mapped superclass)"
		}
		table.AddRow(m.ClassName, tableName, m.InheritanceType.String(), strconv.Itoa(len(m.DeclaredProperties())))
	}
	table.Render()
	return nil
}

func describeClass(w io.Writer, env *Env, m *mapping.ClassMetadata) {
	ui.Header(w, m.ClassName, env.NoColor)

	kv := ui.NewKeyValueTable(w, env.NoColor)
	if m.Table != nil {
		name := m.Table.Name
		if m.Table.Schema != "" {
			name = m.Table.Schema + "." + name
		}
		kv.AddRow("Table", name)
	}
	if m.CustomRepositoryClassName != "" {
		kv.AddRow("Repository", m.CustomRepositoryClassName)
	}
	kv.AddRow("Inheritance", m.InheritanceType.String())
	kv.AddRow("Change tracking", m.ChangeTrackingPolicy.String())
	if m.VersionProperty != nil {
		kv.AddRow("Version", m.VersionProperty.Name)
	}
	kv.Render()
	fmt.Fprintln(w)

	props := ui.NewTable(w, []string{"Property", "Kind", "Column / Target"}, env.NoColor)
	for _, p := range m.DeclaredProperties() {
		switch p := p.(type) {
		case *mapping.FieldMetadata:
			kind := "field"
			if m.IsVersion(p) {
				kind = "version"
			}
			props.AddRow(p.Name, kind, p.ColumnName)
		case *mapping.AssociationMetadata:
			props.AddRow(p.Name, p.Kind.String(), p.TargetEntity)
		}
	}
	props.Render()
}
