// Package cli implements the epiannotate command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/EpiAnnotator/internal/config"
	"github.com/turtacn/EpiAnnotator/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EpiAnnotator/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	NoColor      bool
	Timeout      time.Duration
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	// ConfigPath is the file Config was loaded from, empty for env-only.
	ConfigPath   string
	Logger       logging.Logger
	OutputFormat string

	cancel context.CancelFunc
}

// NewRootCommand creates the root command with its global flags and
// subcommands.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "epiannotate",
		Short: "Annotate outbreak reports with resolved place names",
		Long: "epiannotate finds place names in epidemiological reports, resolves each one\n" +
			"to a GeoNames record and extracts case counts and patient descriptions.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if cliCtx, err := GetCLIContext(cmd); err == nil {
				cliCtx.cancel()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./epiannotate.yaml when present)")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json)")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 0, "overall deadline for the command, 0 for none")

	cmd.AddCommand(
		newAnnotateCmd(),
		newGazetteerCmd(),
		newVersionCmd(),
	)
	return cmd
}

// persistentPreRun loads config and the logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	format := strings.ToLower(opts.OutputFormat)
	if format != OutputText && format != OutputJSON {
		return errors.Newf(errors.ErrCodeValidation, "unknown output format %q", opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, configPath, err := initConfig(opts)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "config initialization failed")
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		OutputPaths: cfg.Log.OutputPaths,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "logger initialization failed")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	var cancel context.CancelFunc
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	ctx = context.WithValue(ctx, cliContextKey{}, &CLIContext{
		Config:       cfg,
		ConfigPath:   configPath,
		Logger:       logger,
		OutputFormat: format,
		cancel:       cancel,
	})
	cmd.SetContext(ctx)
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	if opts.ConfigPath != "" {
		cfg, err := config.Load(opts.ConfigPath)
		return cfg, opts.ConfigPath, err
	}

	searchPaths := []string{"./epiannotate.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(home, ".epiannotate", "config.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/epiannotate/config.yaml")

	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			cfg, err := config.Load(p)
			return cfg, p, err
		}
	}
	cfg, err := config.LoadFromEnv()
	return cfg, "", err
}

// watchLogLevel applies log.level edits of the config file while a long
// command runs. An explicit --log-level wins.
func watchLogLevel(cmd *cobra.Command, cliCtx *CLIContext) {
	if cliCtx.ConfigPath == "" || cmd.Flags().Changed("log-level") {
		return
	}
	setter, ok := cliCtx.Logger.(logging.LevelSetter)
	if !ok {
		return
	}
	config.Watch(cliCtx.ConfigPath,
		func(c *config.Config) {
			setter.SetLevel(c.Log.Level)
			cliCtx.Logger.Info("log level reloaded", logging.String("level", c.Log.Level))
		},
		func(err error) {
			cliCtx.Logger.Warn("ignoring invalid config change", logging.Err(err))
		})
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute runs the command tree with args and returns the process exit
// status.
func Execute(ctx context.Context, args []string) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return ExitCode(err)
	}
	return 0
}

// ExitCode maps err to a process exit status. Errors without a code exit
// with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		return 1
	}
	return errors.ExitStatusForCode(code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Output helpers
// ─────────────────────────────────────────────────────────────────────────────

// textRenderer is implemented by results with a human-readable form.
type textRenderer interface {
	RenderText(w io.Writer) error
}

// PrintResult outputs data in the format selected by --output.
func PrintResult(cmd *cobra.Command, data any) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil || cliCtx.OutputFormat == OutputJSON {
		return printJSON(cmd.OutOrStdout(), data)
	}
	return printText(cmd.OutOrStdout(), data)
}

// printJSON outputs data as indented JSON.
func printJSON(w io.Writer, data any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(w io.Writer, data any) error {
	switch v := data.(type) {
	case textRenderer:
		return v.RenderText(w)
	case string:
		_, err := fmt.Fprintln(w, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(w, v.String())
		return err
	default:
		_, err := fmt.Fprintf(w, "%+v\n", v)
		return err
	}
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	color.New(color.FgRed, color.Bold).Fprint(cmd.ErrOrStderr(), "Error: ")
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
}

// PrintSuccess writes a formatted success message to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	color.New(color.FgGreen).Fprint(cmd.OutOrStdout(), "OK: ")
	fmt.Fprintln(cmd.OutOrStdout(), msg)
}

//Personal.AI order the ending
