package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/at-addrcompare/internal/compare"
	"github.com/at-addrcompare/internal/config"
	"github.com/at-addrcompare/internal/logging"
	"github.com/at-addrcompare/internal/overpass"
	"github.com/at-addrcompare/internal/register"
	"github.com/at-addrcompare/internal/register/libpostal"
	"github.com/at-addrcompare/internal/report"
	"github.com/at-addrcompare/internal/web"
)

var (
	// Loaded in the root command's PersistentPreRunE
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	rootCmd := createRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func createRootCmd() *cobra.Command {
	var (
		configFile string
		logLevel   string
		logFormat  string
	)

	rootCmd := &cobra.Command{
		Use:   "addrcompare",
		Short: "Compare OpenStreetMap addresses with the Austrian address register",
		Long: `Reconciles the house numbers mapped in OpenStreetMap for one municipality
with the addresses of the official register and reports, per street, which
numbers are missing on either side.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return err
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			logger = logging.NewFromConfig(cfg.Logging())
			logging.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (json, console, auto)")

	rootCmd.AddCommand(createCompareCmd())
	rootCmd.AddCommand(createGKZCmd())
	rootCmd.AddCommand(createServeCmd())
	return rootCmd
}

// createCompareCmd creates the one-shot comparison command
func createCompareCmd() *cobra.Command {
	var (
		timeout int
		html    bool
		format  string
		output  string
	)

	cmd := &cobra.Command{
		Use:   "compare [register] <gkz|municipality>",
		Short: "Compare one municipality and print the report",
		Long: `Compare the addresses of one municipality. The municipality is given by its
GKZ or by name. The register is a semicolon separated export; it may be
omitted when a register database is configured.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registerPath, filter := cfg.Register.Path, args[len(args)-1]
			if len(args) == 2 {
				registerPath = args[0]
			}
			if cmd.Flags().Changed("timeout") {
				cfg.Overpass.Timeout = timeout
			}
			if html {
				format = "html"
			}

			renderer, err := report.ForFormat(format)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, closeFn, err := newRunner(ctx, registerPath)
			if err != nil {
				return err
			}
			defer closeFn()

			gkz, err := runner.ResolveMunicipality(ctx, filter)
			if err != nil {
				return err
			}
			run, err := runner.Run(ctx, gkz)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				out = f
			}
			if err := renderer.Render(out, run.Result, run.Meta()); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&timeout, "timeout", 25, "Overpass query timeout in seconds")
	cmd.Flags().BoolVar(&html, "html", false, "Write an HTML report (same as --format html)")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Report format: text, html, json, yaml, xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the report to a file instead of stdout")
	return cmd
}

// createGKZCmd creates a command resolving a municipality name to its GKZ
func createGKZCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gkz <municipality>",
		Short: "Look up the GKZ of a municipality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newOverpassClient()
			gkz, err := client.ResolveGKZ(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("could not match name %q to GKZ: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), gkz)
			return nil
		},
	}
}

// createServeCmd creates the HTTP API command
func createServeCmd() *cobra.Command {
	var (
		host         string
		port         int
		registerPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve reports over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				cfg.Web.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Web.Port = port
			}
			if registerPath == "" {
				registerPath = cfg.Register.Path
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			runner, closeFn, err := newRunner(ctx, registerPath)
			if err != nil {
				return err
			}
			defer closeFn()

			return web.NewServer(cfg.Web, runner, logger).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "Listen port (default from config)")
	cmd.Flags().StringVar(&registerPath, "register", "", "Register export file (default from config)")
	return cmd
}

func newOverpassClient() *overpass.Client {
	clientCfg := cfg.OverpassClient()
	clientCfg.Logger = &logger
	return overpass.NewClient(clientCfg)
}

// newRunner wires the configured sources. A register file wins over a
// configured database.
func newRunner(ctx context.Context, registerPath string) (*compare.Runner, func(), error) {
	canon, err := cfg.Canonicalizer()
	if err != nil {
		return nil, nil, err
	}

	var (
		source  register.Source
		closeFn = func() {}
	)
	switch {
	case registerPath != "":
		csvSource := register.NewCSVSource(registerPath, logger)
		csvSource.Delimiter = cfg.DelimiterRune()
		source = csvSource
	case cfg.Register.DSN != "":
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pg, err := register.OpenPostgres(openCtx, cfg.Register.DSN, cfg.Register.Table, cfg.Columns())
		if err != nil {
			return nil, nil, err
		}
		source = pg
		closeFn = func() { pg.Close() }
	default:
		return nil, nil, fmt.Errorf("no register given: pass a register file or configure register.dsn")
	}

	if col := cfg.Register.Columns.Address; col != "" {
		source = register.SplitSource{
			Source: source,
			Splitter: &register.PostalSplitter{
				Parse:         libpostal.Parse,
				AddressColumn: col,
				Columns:       cfg.Columns(),
				Logger:        logger,
			},
		}
	}

	runner := compare.NewRunner(newOverpassClient(), source, canon, logger)
	runner.Columns = cfg.Columns()
	return runner, closeFn, nil
}
