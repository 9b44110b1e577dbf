// Package cli implements the hello command: it reads NAME from the
// environment, renders the greeting page, and delivers it on stdout, to a
// file, or over HTTP.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"impractical.co/hello"
	"impractical.co/hello/internal/config"
	"impractical.co/hello/internal/logger"
)

// app is the state shared by every subcommand once the root command has
// loaded the configuration.
type app struct {
	env    hello.EnvReader
	stderr io.Writer

	configPath string
	logLevel   string
	title      string

	cfg config.Config
	log *logger.Logger
}

// NewRootCommand returns the hello command. env is where NAME is read from,
// and stderr is where logs go.
func NewRootCommand(env hello.EnvReader, stderr io.Writer) *cobra.Command {
	a := &app{env: env, stderr: stderr}
	if a.env == nil {
		a.env = hello.OSEnv{}
	}
	if a.stderr == nil {
		a.stderr = os.Stderr
	}

	root := &cobra.Command{
		Use:   "hello",
		Short: "Render a hello world page showing $" + hello.NameEnvVar,
		Long: `hello renders a decorated "hello world" page that shows the value of the
` + hello.NameEnvVar + ` environment variable as "` + hello.NameEnvVar + `=<value>".`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.log.Sync()
		},
	}
	a.bindFlags(root.PersistentFlags())

	root.AddCommand(newRenderCommand(a), newServeCommand(a))
	return root
}

func (a *app) bindFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "", "minimum log level: debug, info, warn, error")
	flags.StringVar(&a.title, "title", "", "document title")
}

// setup loads the config file, applies flag overrides, and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if flags.Changed("title") {
		cfg.Title = a.title
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	log, err := logger.New(a.stderr, cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// renderer returns a PageRenderer for the loaded config.
func (a *app) renderer() *hello.PageRenderer {
	return hello.NewPageRenderer(a.cfg.RendererOptions()...)
}

// context attaches the logger to ctx for both logr and slog consumers.
func (a *app) context(ctx context.Context, command string) context.Context {
	log := a.log.WithValues(logger.CommandKey, command)
	ctx = logger.WithLogger(ctx, log)
	return hello.LoggingContext(ctx, a.log.Slog().With(logger.CommandKey, command))
}

// Execute runs the hello command against the process environment.
func Execute() error {
	return NewRootCommand(hello.OSEnv{}, os.Stderr).Execute()
}
