package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/textclean/internal/config"
	"github.com/ironsheep/textclean/internal/logger"
	"github.com/ironsheep/textclean/internal/ocr"
	"github.com/ironsheep/textclean/internal/server"
)

const appName = "textclean"

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// app holds state shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	envFile    string

	cfg *config.Config
	log *slog.Logger
}

// setup loads the environment file, the config file and the logger. It runs
// before every subcommand.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", a.envFile, err)
	}

	cfg, err := config.LoadConfigFromFile(a.configPath)
	if err != nil {
		return err
	}
	cfg.Log.Level = logger.Level(cfg.Log.Level)
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	a.cfg = cfg

	// Logs go to stderr: stdout carries the MCP protocol when serving.
	a.log = logger.Init(os.Stderr, cfg.Log.Level)
	a.log.Debug("configuration loaded", "path", a.configPath, "strategy", cfg.Mask.Strategy)
	return nil
}

func (a *app) serverOptions() server.Options {
	return server.Options{
		Pipeline: a.cfg.PipelineOptions(),
		OCR:      a.cfg.OCR,
		Version:  Version,
		Logger:   a.log,
	}
}

func (a *app) runServe(cmd *cobra.Command, _ []string) error {
	a.log.Info("starting MCP server", "version", Version, "commit", GitCommit)
	srv := server.New(a.serverOptions())
	if err := srv.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (a *app) runVersion(cmd *cobra.Command, _ []string) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", appName, Version)
	fmt.Fprintf(out, "  Build time: %s\n", BuildTime)
	fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)

	info := ocr.NewEngine(a.cfg.OCR).Info()
	if info.Available {
		fmt.Fprintf(out, "  Tesseract:  %s (%s)\n", color.GreenString(info.Version), info.Language)
	} else {
		fmt.Fprintf(out, "  Tesseract:  %s\n", color.RedString("unavailable: %s", info.Error))
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   appName,
		Short: "Remove lettering from comic pages",
		Long: color.New(color.FgHiMagenta).Sprintf(
			"Remove lettering from speech bubbles and captions of comic pages. %s",
			color.New(color.FgBlue).Sprintf("(%s)", Version),
		) + "\n\nWithout a subcommand, serves MCP over stdin/stdout.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		RunE:              a.runServe,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", config.DefaultPath(), "Path to the TOML config file")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.StringVar(&a.envFile, "env-file", ".env", "Environment file to load before reading the config")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve MCP over stdin/stdout",
			Args:  cobra.NoArgs,
			RunE:  a.runServe,
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print version and OCR engine information",
			Args:  cobra.NoArgs,
			Run:   a.runVersion,
		},
		newCleanCmd(a),
		newAnalyzeCmd(a),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		slog.Error("Error executing command", "error", err)
		os.Exit(1)
	}
}
