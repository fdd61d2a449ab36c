package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/mapexport/internal/cli/ui"
	"github.com/conduit-lang/mapexport/internal/orm/export"
	"github.com/conduit-lang/mapexport/internal/store"
)

type exportOptions struct {
	out     string
	ext     string
	classes []string
	force   bool
	yes     bool
}

func newExportCommand(env *Env) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export <snapshot.yml>...",
		Short: "Write mapping programs for snapshot classes",
		Long: `Export every class declared by the given snapshots, or only the classes
named with --class, into one program file per class.

Classes whose program is unchanged since the last recorded export are
skipped unless --force is given. Existing files are only replaced after
confirmation, or with --yes.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, env, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output directory (default from output.dir)")
	cmd.Flags().StringVar(&opts.ext, "ext", "", "Program file extension (default from output.extension)")
	cmd.Flags().StringSliceVarP(&opts.classes, "class", "c", nil, "Export only this class (repeatable)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Rewrite programs even when unchanged")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "Replace existing files without asking")

	return cmd
}

func runExport(cmd *cobra.Command, env *Env, opts *exportOptions, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	factory, err := env.loadFactory(args)
	if err != nil {
		return env.printError(cmd.ErrOrStderr(), err)
	}

	classNames := opts.classes
	if len(classNames) == 0 {
		classNames = factory.AllClassNames()
	}
	for _, className := range classNames {
		if err := env.resolveClass(cmd, factory, className); err != nil {
			return err
		}
	}
	if len(classNames) == 0 {
		fmt.Fprint(out, ui.Info("No classes to export", env.NoColor))
		return nil
	}

	writer := export.NewWriter(env.Config.Output.Dir)
	writer.Fs = env.Fs
	writer.Extension = env.Config.Output.Extension
	writer.Overwrite = env.Config.Output.Overwrite || opts.yes
	if opts.out != "" {
		writer.Dir = opts.out
	}
	if opts.ext != "" {
		writer.Extension = opts.ext
	}

	st, err := env.openStore(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	runID := store.NewRunID()
	logger := env.Logger.With(zap.String("run_id", runID))
	exporter := export.NewExporter(export.WithLogger(logger))

	progress := ui.NewProgress(out, len(classNames), env.NoColor)
	var entries []store.Entry

	for _, className := range classNames {
		m, err := factory.GetClassMetadata(className)
		if err != nil {
			progress.Report(className, ui.StatusFailed, err.Error())
			continue
		}

		prog, err := exporter.ExportProgram(m)
		var text string
		if err == nil {
			text, err = export.Render(prog)
		}
		if err != nil {
			progress.Report(className, ui.StatusFailed, err.Error())
			continue
		}

		checksum := store.Checksum(text)
		if !opts.force && writer.Exists(className) {
			unchanged, err := isUnchanged(cmd, st, writer, className, text, checksum)
			if err != nil {
				return err
			}
			if unchanged {
				progress.Report(className, ui.StatusUnchanged, "")
				continue
			}
		}

		w := *writer
		if w.Exists(className) && !w.Overwrite {
			ok, err := env.Confirm(fmt.Sprintf("Overwrite %s?", w.Path(className)))
			if err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}
			if !ok {
				progress.Report(className, ui.StatusSkipped, "kept existing file")
				continue
			}
			w.Overwrite = true
		}

		path, err := w.Write(className, text)
		if err != nil {
			if errors.Is(err, export.ErrFileExists) {
				progress.Report(className, ui.StatusSkipped, "file exists")
				continue
			}
			progress.Report(className, ui.StatusFailed, err.Error())
			continue
		}

		progress.Report(className, ui.StatusWritten, path)
		entries = append(entries, store.Entry{
			ClassName:  className,
			Path:       path,
			Checksum:   checksum,
			Statements: prog.Count(),
			RunID:      runID,
		})
	}

	if st != nil {
		if err := st.RecordAll(ctx, entries); err != nil {
			return fmt.Errorf("failed to record exports: %w", err)
		}
	}

	progress.Finish()

	if failed := progress.Count(ui.StatusFailed); failed > 0 {
		return fmt.Errorf("%d of %d classes failed to export", failed, len(classNames))
	}
	return nil
}

// isUnchanged compares against the export log when there is one, otherwise
// against the file already on disk
func isUnchanged(cmd *cobra.Command, st *store.Store, w *export.Writer, className, text, checksum string) (bool, error) {
	if st != nil {
		return st.Unchanged(cmd.Context(), className, checksum)
	}
	existing, err := w.Read(className)
	if err != nil {
		return false, err
	}
	return existing == text, nil
}
