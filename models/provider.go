// Package models selects the language model backing an agent.
package models

import (
	"log/slog"
	"strings"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/models/mock"
)

// NewLanguageModel returns the model to drive agents with. Without an API key the scripted mock
// model is used. Remote providers are not part of this build, so a configured key only changes
// what is logged.
func NewLanguageModel(apiKey string, logger *slog.Logger, options ...mock.Option) uigen.LanguageModel {
	if logger == nil {
		logger = slog.Default()
	}
	options = append([]mock.Option{mock.WithLogger(logger)}, options...)

	if strings.TrimSpace(apiKey) == "" {
		logger.Info("No ANTHROPIC_API_KEY found, using mock provider")
		return mock.New(mock.DefaultModelID, options...)
	}

	logger.Warn("ANTHROPIC_API_KEY is set but remote providers are not available, using mock provider")
	return mock.New(mock.DefaultModelID, options...)
}
