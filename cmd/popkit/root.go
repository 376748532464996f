// Package main provides the CLI entrypoint for popkit.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popkit/internal/adapter/desktop"
	"github.com/jmylchreest/popkit/internal/adapter/output"
	"github.com/jmylchreest/popkit/internal/alert"
	"github.com/jmylchreest/popkit/internal/config"
	"github.com/jmylchreest/popkit/internal/dbus"
	"github.com/jmylchreest/popkit/internal/tui"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		backend    string
		format     string
		template   string
		assume     string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "popkit",
	Short: "Modal dialogs and toasts for scripts",
	Long: `popkit shows success, error, warning and info toasts, confirmation
dialogs, custom alerts and loading indicators from the command line.

Popups are rendered by popkitd (or any freedesktop notification server)
over D-Bus by default. The terminal backend draws them in the terminal,
the desktop backend hands them to the platform notifier and the print
backend writes them to stdout.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if globalOpts.backend != "" {
			if !slices.Contains(config.ValidBackends(), globalOpts.backend) {
				return fmt.Errorf("invalid backend %q, must be one of: %v", globalOpts.backend, config.ValidBackends())
			}
			cfg.Backend.Name = globalOpts.backend
		}
		return nil
	},
}

// exitError carries a process exit status without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/popkit/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.backend, "backend", "b", "",
		"Rendering backend (dbus, terminal, desktop, print)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.format, "format", "f", "",
		"Print backend format (plain, json, yaml, ids)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.template, "template", "",
		"Custom Go template for plain output")
	rootCmd.PersistentFlags().StringVar(&globalOpts.assume, "assume", "",
		"Answer the print backend gives dialogs (yes, no)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// session is a facade bound to the configured backend.
type session struct {
	facade *alert.Facade
	client *dbus.Client
	term   *tui.Renderer
}

// openSession builds the renderer selected by config and flags.
func openSession() (*session, error) {
	s := &session{}

	var renderer alert.Renderer
	switch cfg.Backend.Name {
	case config.BackendDBus, "":
		client, err := dbus.NewClient(
			dbus.WithAppName(cfg.Backend.AppName),
			dbus.WithClientLogger(logger),
		)
		if err != nil {
			return nil, err
		}
		s.client = client
		renderer = client

	case config.BackendTerminal:
		s.term = tui.New(tui.WithLogger(logger))
		renderer = s.term

	case config.BackendDesktop:
		renderer = desktop.New(cfg.Backend.AppName, desktop.WithLogger(logger))

	case config.BackendPrint:
		f, err := newFormatter(output.FormatPlain)
		if err != nil {
			return nil, err
		}
		answer, err := output.ParseAnswer(globalOpts.assume)
		if err != nil {
			return nil, err
		}
		renderer = output.NewRenderer(os.Stdout, f,
			output.WithAssume(answer),
			output.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend.Name)
	}

	s.facade = alert.New(renderer,
		alert.WithPolicy(alert.PolicyFromConfig(cfg)),
		alert.WithLogger(logger),
	)
	logger.Debug("session opened", "backend", cfg.Backend.Name)
	return s, nil
}

// Wait keeps the process alive while a terminal popup is on screen. Other
// backends hand the popup to something that outlives the process.
func (s *session) Wait(ctx context.Context) error {
	if s.term == nil {
		return nil
	}
	return s.term.Wait(ctx)
}

// Close releases the backend.
func (s *session) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logger.Debug("failed to close D-Bus client", "error", err)
		}
	}
}

// newFormatter builds the formatter for --format, using def when unset.
func newFormatter(def output.FormatType) (output.Formatter, error) {
	format := def
	if globalOpts.format != "" {
		f, err := output.ParseFormat(globalOpts.format)
		if err != nil {
			return nil, err
		}
		format = f
	}
	return output.NewFormatter(format, output.FormatterOptions{
		Template: globalOpts.template,
		Indent:   format == output.FormatJSON && globalOpts.template == "",
	})
}
