// Package cmd implements the spreadscan command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/MeKo-Tech/spreadscan/internal/config"
	"github.com/MeKo-Tech/spreadscan/internal/pipeline"
	"github.com/MeKo-Tech/spreadscan/internal/version"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by one command tree.
type app struct {
	v       *viper.Viper
	loader  *config.Loader
	cfg     *config.Config
	cfgFile string
}

// NewRootCommand builds a fresh command tree with its own viper instance.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	a.loader = config.NewLoaderWithViper(a.v)

	root := &cobra.Command{
		Use:   "spreadscan",
		Short: "Digitize photographed two-page journal spreads",
		Long: `spreadscan turns photographs of open journals into per-page transcripts.

Each photo is rotated upright from its EXIF orientation, split into a left and a
right page, and sent to an image analysis service for text recognition and
captions. Transcripts, an aggregate log and optional annotated images are
written to an output directory next to the input.

Examples:
  spreadscan run images/
  spreadscan run spreads.json --save-images --lines
  spreadscan config init`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(); err != nil {
				return err
			}
			if on, _ := cmd.Flags().GetBool("verbose-log"); on {
				a.cfg.LogLevel = "debug"
			}
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), a.cfg))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is search in ., $HOME, $HOME/.config/spreadscan, /etc/spreadscan)")
	pf.String("log-level", "warn", "diagnostic log level (debug, info, warn, error)")
	pf.Bool("verbose-log", false, "diagnostic logging at debug level")
	_ = a.v.BindPFlag("log_level", pf.Lookup("log-level"))

	root.AddCommand(newRunCommand(a))
	root.AddCommand(newConfigCommand(a))
	root.AddCommand(newVersionCommand())
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		printError(root.ErrOrStderr(), err)
		return 1
	}
	return 0
}

// loadConfig reads the config file, environment and bound flags once.
func (a *app) loadConfig() error {
	if a.cfg != nil {
		return nil
	}
	cfg, err := a.loader.LoadWithFile(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	a.cfg = cfg
	return nil
}

func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// printError reports a failed command. Fatal preconditions print their
// message alone since the cause is already part of it.
func printError(w io.Writer, err error) {
	msg := err.Error()
	var pe *pipeline.ProcessingError
	if errors.As(err, &pe) && pe.Code == pipeline.CodeFatalPrecondition {
		msg = pe.Message
	}
	_, _ = color.New(color.FgRed, color.Bold).Fprintln(w, msg)
}
