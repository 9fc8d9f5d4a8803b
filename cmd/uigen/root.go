package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	slogmulti "github.com/samber/slog-multi"
	"github.com/spf13/cobra"

	"github.com/MegaGrindStone/go-uigen/internal/config"
	"github.com/MegaGrindStone/go-uigen/models"
	"github.com/MegaGrindStone/go-uigen/models/mock"
	"github.com/MegaGrindStone/go-uigen/session"
)

// app carries the state shared by the subcommands. It is filled in by the root command's
// PersistentPreRunE.
type app struct {
	configPath string
	logLevel   string

	cfg     *config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "uigen",
		Short: "Generate React components in a virtual workspace",
		Long: `uigen drives a language model that writes React components into an in-memory
workspace through the str_replace_editor and file_manager tools.

Without ANTHROPIC_API_KEY a scripted mock model is used, so every run is reproducible.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "uigen.yaml", "path to the YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	root.AddCommand(
		newRunCmd(a),
		newServeCmd(a),
		newChatCmd(a),
		newInspectCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	handlers := []slog.Handler{
		slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}),
	}
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	}

	a.cfg = cfg
	a.logger = slog.New(slogmulti.Fanout(handlers...))
	return nil
}

func (a *app) close() error {
	if a.logFile == nil {
		return nil
	}
	if err := a.logFile.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	a.logFile = nil
	return nil
}

func (a *app) newManager(options ...session.ManagerOption) *session.Manager {
	model := models.NewLanguageModel(a.cfg.Model.APIKey, a.logger, mock.WithDelay(a.cfg.GetModelDelay()))

	options = append([]session.ManagerOption{
		session.WithManagerLogger(a.logger),
		session.WithManagerMaxSteps(a.cfg.Agent.MaxSteps),
	}, options...)
	return session.NewManager(model, options...)
}
