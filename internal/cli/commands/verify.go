package commands

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conduit-lang/mapexport/internal/cli/ui"
	"github.com/conduit-lang/mapexport/internal/orm/export"
	"github.com/conduit-lang/mapexport/internal/orm/metadata"
)

// verifyResult is the outcome of checking one program file
type verifyResult struct {
	path      string
	className string
	status    string
	ok        bool
}

func newVerifyCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <snapshot.yml> <program>...",
		Short: "Check program files against their snapshot",
		Long: `Parse and load each program file, then compare it with a fresh export of
the snapshot class it was written for. The class is found from the file
name. A program passes when it is in canonical form and matches the
fresh export exactly.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			factory, err := env.loadFactory(args[:1])
			if err != nil {
				return env.printError(cmd.ErrOrStderr(), err)
			}

			exporter := export.NewExporter(export.WithLogger(env.Logger))
			byFile := classesByFileName(factory)

			table := ui.NewTable(cmd.OutOrStdout(), []string{"File", "Class", "Status"}, env.NoColor)
			failed := 0
			for _, path := range args[1:] {
				r := verifyProgram(env.Fs, exporter, factory, byFile, path)
				if !r.ok {
					failed++
				}
				table.AddRow(r.path, r.className, r.status)
			}
			table.Render()

			if failed > 0 {
				return fmt.Errorf("%d of %d programs failed verification", failed, len(args)-1)
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("%d programs verified", len(args)-1), env.NoColor)
			return nil
		},
	}

	return cmd
}

// classesByFileName maps each program base name, without extension, to
// the class it belongs to
func classesByFileName(factory *metadata.Factory) map[string]string {
	w := &export.Writer{Extension: export.DefaultExtension}
	out := make(map[string]string)
	for _, className := range factory.AllClassNames() {
		out[strings.TrimSuffix(w.FileName(className), w.Extension)] = className
	}
	return out
}

func verifyProgram(fs afero.Fs, exporter *export.Exporter, factory *metadata.Factory, byFile map[string]string, path string) verifyResult {
	r := verifyResult{path: path, className: "-"}

	base := filepath.Base(path)
	className, ok := byFile[strings.TrimSuffix(base, filepath.Ext(base))]
	if !ok {
		r.status = "no snapshot class"
		return r
	}
	r.className = className

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		r.status = fmt.Sprintf("unreadable: %v", err)
		return r
	}
	text := string(data)

	prog, err := export.ParseProgram(text)
	if err != nil {
		r.status = err.Error()
		return r
	}
	if _, err := export.Load(className, prog); err != nil {
		r.status = err.Error()
		return r
	}

	canonical, err := export.Render(prog)
	if err != nil {
		r.status = err.Error()
		return r
	}
	if canonical != text {
		r.status = "not canonical"
		return r
	}

	m, err := factory.GetClassMetadata(className)
	if err != nil {
		r.status = err.Error()
		return r
	}
	fresh, err := exporter.Export(m)
	if err != nil {
		r.status = err.Error()
		return r
	}
	if fresh != text {
		r.status = "stale"
		return r
	}

	r.status = "ok"
	r.ok = true
	return r
}
