package commands

import (
	"fmt"
	"runtime"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conduit-lang/mapexport/internal/cli/config"
	"github.com/conduit-lang/mapexport/internal/cli/ui"
	"github.com/conduit-lang/mapexport/internal/logging"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// ConfirmFunc asks the user a yes/no question
type ConfirmFunc func(message string) (bool, error)

// Env is the state shared by all subcommands
type Env struct {
	Fs      afero.Fs
	Config  *config.Config
	Logger  *zap.Logger
	Confirm ConfirmFunc
	NoColor bool

	configPath string
	logLevel   string
}

// NewEnv returns an environment on the OS filesystem with survey prompts
func NewEnv() *Env {
	return &Env{
		Fs:      afero.NewOsFs(),
		Confirm: surveyConfirm,
	}
}

func surveyConfirm(message string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// setup loads configuration and builds the logger unless they were
// provided up front
func (e *Env) setup(cmd *cobra.Command) error {
	if e.NoColor {
		color.NoColor = true
	}

	if e.Config == nil {
		cfg, err := config.LoadFile(e.configPath)
		if err != nil {
			fmt.Fprint(cmd.ErrOrStderr(), ui.ConfigError(err.Error(), e.NoColor))
			return err
		}
		e.Config = cfg
	}

	if e.Logger == nil {
		level := e.Config.Log.Level
		if e.logLevel != "" {
			level = e.logLevel
		}
		logger, err := logging.New(logging.Config{
			Level:       level,
			Development: e.Config.Log.Development,
		})
		if err != nil {
			return err
		}
		e.Logger = logger
	}
	return nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	return newRootCommand(NewEnv())
}

func newRootCommand(env *Env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mapexport",
		Short: "Export ORM class metadata as loadable mapping programs",
		Long: color.CyanString(`mapexport - ORM mapping exporter

mapexport reads resolved class metadata snapshots and writes one mapping
program per class. Loading a program rebuilds the exact metadata it was
exported from.

Commands:
  • export   write mapping programs for snapshot classes
  • show     print the program of one class
  • verify   check programs against their snapshot
  • history  list the export log`),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if env.Logger != nil {
				_ = env.Logger.Sync()
			}
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&env.configPath, "config", "", "Config file (default ./mapexport.yml)")
	flags.BoolVar(&env.NoColor, "no-color", false, "Disable colored output")
	flags.StringVar(&env.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(newExportCommand(env))
	rootCmd.AddCommand(newShowCommand(env))
	rootCmd.AddCommand(newVerifyCommand(env))
	rootCmd.AddCommand(newHistoryCommand(env))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the mapexport version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			out := cmd.OutOrStdout()
			titleColor := color.New(color.FgCyan, color.Bold)
			valueColor := color.New(color.FgWhite)

			titleColor.Fprint(out, "mapexport version: ")
			valueColor.Fprintln(out, Version)

			titleColor.Fprint(out, "Git commit: ")
			valueColor.Fprintln(out, GitCommit)

			titleColor.Fprint(out, "Build date: ")
			valueColor.Fprintln(out, BuildDate)

			titleColor.Fprint(out, "Go version: ")
			valueColor.Fprintln(out, goVer)
		},
	}
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		errorColor := color.New(color.FgRed, color.Bold)
		errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return err
	}
	return nil
}
