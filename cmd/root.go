// Package cmd is the restdocs command line: it reports which documentation
// configurers the auto-configuration would publish, documents a sample API
// and renders generated snippets in the terminal.
package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/km-arc/go-restdocs/framework/app"
	"github.com/km-arc/go-restdocs/framework/config"
)

var version = "dev"

type rootOptions struct {
	configFile string
	envFiles   []string
	trace      bool
	verbose    bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	o := &rootOptions{}
	root := &cobra.Command{
		Use:           "restdocs",
		Short:         "Conditional REST documentation configuration",
		Long:          `Inspect the REST documentation auto-configuration and the snippets it produces.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&o.configFile, "config", "c", "",
		"config file (YAML); environment variables still win")
	root.PersistentFlags().StringSliceVar(&o.envFiles, "env", []string{".env"},
		".env files to load before reading the environment")
	root.PersistentFlags().BoolVar(&o.trace, "trace", false,
		"print auto-configuration spans to stderr")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false,
		"debug logging on stderr")

	root.AddCommand(
		newConditionsCommand(o),
		newSampleCommand(o),
		newShowCommand(),
	)
	return root
}

// Execute runs the root command with os.Args.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	var envFiles []string
	for _, f := range o.envFiles {
		if f != "" {
			envFiles = append(envFiles, f)
		}
	}
	opts := []config.Option{config.WithEnvFiles(envFiles...)}
	if o.configFile != "" {
		opts = append(opts, config.WithConfigFile(o.configFile))
	}
	return config.Load(opts...)
}

// appOptions returns the logging and tracing options for app.New, and a
// function flushing the tracer once the command is done.
func (o *rootOptions) appOptions(cmd *cobra.Command) ([]app.Option, func(), error) {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	opts := []app.Option{app.WithLogger(logger)}
	if !o.trace {
		return opts, func() {}, nil
	}

	tp, err := newTracerProvider(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, err
	}
	shutdown := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown", slog.Any("error", err))
		}
	}
	return append(opts, app.WithTracerProvider(tp)), shutdown, nil
}

func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}
