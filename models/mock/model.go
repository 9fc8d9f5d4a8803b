package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/tools"
)

// Model is a scripted uigen.LanguageModel. It needs no network: every step is a pure function of
// the transcript's shape, so the same transcript always yields the same text, tool call and
// finish reason. Only text part and tool call IDs differ between calls.
type Model struct {
	modelID string
	delay   time.Duration
	logger  *slog.Logger
}

// Option represents the options for the Model.
type Option func(*Model)

const (
	// DefaultModelID identifies the mock model.
	DefaultModelID = "mock-claude-sonnet-4-0"

	// DefaultDelay is the pause after every streamed character.
	DefaultDelay = 15 * time.Millisecond
)

// New creates a mock model reporting modelID. An empty modelID falls back to DefaultModelID.
func New(modelID string, options ...Option) Model {
	if modelID == "" {
		modelID = DefaultModelID
	}
	m := Model{
		modelID: modelID,
		delay:   DefaultDelay,
		logger:  slog.Default(),
	}
	for _, opt := range options {
		opt(&m)
	}
	return m
}

// WithDelay sets the pause after every streamed character. Zero disables pacing.
func WithDelay(delay time.Duration) Option {
	return func(m *Model) {
		m.delay = max(delay, 0)
	}
}

// WithLogger sets the logger for the model.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Model) {
		m.logger = logger.With(
			slog.String("package", "go-uigen"),
			slog.String("component", "mock-model"),
		)
	}
}

// ModelID implements uigen.LanguageModel interface.
func (m Model) ModelID() string { return m.modelID }

// Stream implements uigen.LanguageModel interface.
//
// A step streams its text one character per text-delta event, pausing for the configured delay
// after each, then yields at most one str_replace_editor tool call and a finish event.
func (m Model) Stream(ctx context.Context, transcript uigen.Transcript) iter.Seq[uigen.StreamEvent] {
	return func(yield func(uigen.StreamEvent) bool) {
		st, ok := planStep(transcript)
		if !ok {
			return
		}

		m.logger.Debug("streaming step",
			slog.Int("toolResults", transcript.ToolResultCount()),
			slog.String("finishReason", string(st.reason)),
		)

		send := func(ev uigen.StreamEvent) bool {
			return ctx.Err() == nil && yield(ev)
		}

		id := "text-" + uuid.NewString()
		if !send(uigen.StreamEvent{Type: uigen.EventTextStart, ID: id}) {
			return
		}
		for _, r := range st.text {
			if !send(uigen.StreamEvent{Type: uigen.EventTextDelta, ID: id, Delta: string(r)}) {
				return
			}
			if !m.pause(ctx) {
				return
			}
		}
		if !send(uigen.StreamEvent{Type: uigen.EventTextEnd, ID: id}) {
			return
		}

		if st.call != nil {
			input, err := json.Marshal(st.call)
			if err != nil {
				m.logger.Error("failed to marshal tool input", slog.String("err", err.Error()))
				return
			}
			if !send(uigen.StreamEvent{
				Type:       uigen.EventToolCall,
				ToolCallID: "call_" + uuid.NewString(),
				ToolName:   tools.EditorToolName,
				Input:      input,
			}) {
				return
			}
		}

		usage := st.usage
		send(uigen.StreamEvent{Type: uigen.EventFinish, FinishReason: st.reason, Usage: &usage})
	}
}

// Generate implements uigen.LanguageModel interface. It drains Stream and folds the events with
// uigen.Collect.
func (m Model) Generate(ctx context.Context, transcript uigen.Transcript) (uigen.GenerateResult, error) {
	finished := false
	events := func(yield func(uigen.StreamEvent) bool) {
		for ev := range m.Stream(ctx, transcript) {
			if ev.Type == uigen.EventFinish {
				finished = true
			}
			if !yield(ev) {
				return
			}
		}
	}

	result := uigen.Collect(events)
	if !finished {
		if err := ctx.Err(); err != nil {
			return uigen.GenerateResult{}, fmt.Errorf("failed to generate: %w", err)
		}
	}
	return result, nil
}

func (m Model) pause(ctx context.Context) bool {
	if m.delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(m.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
