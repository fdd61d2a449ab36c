package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/mapexport/internal/cli/ui"
)

func newHistoryCommand(env *Env) *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the export log",
		Long:  "Show the last recorded export of every class, newest first. Requires registry.dsn.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			st, err := env.openStore(cmd.Context())
			if err != nil {
				return err
			}
			if st == nil {
				fmt.Fprint(out, ui.Info("Export log disabled: set registry.dsn in mapexport.yml", env.NoColor))
				return nil
			}
			defer st.Close()

			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}

			table := ui.NewTable(out, []string{"Class", "Checksum", "Statements", "Run", "Exported", "Path"}, env.NoColor)
			for _, e := range entries {
				if !strings.HasPrefix(e.RunID, runID) {
					continue
				}
				table.AddRow(
					e.ClassName,
					e.Checksum,
					strconv.Itoa(e.Statements),
					shortRunID(e.RunID),
					e.ExportedAt.Local().Format("2006-01-02 15:04:05"),
					e.Path,
				)
			}

			if table.Len() == 0 {
				fmt.Fprint(out, ui.Info("No exports recorded", env.NoColor))
				return nil
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Only show exports from runs whose id starts with this prefix")

	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
