package uigen

import (
	"context"
	"iter"
	"log/slog"
	"strings"
	"time"
)

// Agent runs the model-driving loop of a chat turn: it streams a model step, executes the tool
// calls the step proposed, appends the results to the transcript and starts the next step, until
// the model stops.
//
// Agent does not guard the transcript or the tools against concurrent use. Callers running several
// agents over the same workspace must serialize them.
type Agent struct {
	model    LanguageModel
	tools    ToolServer
	logger   *slog.Logger
	metrics  *Metrics
	maxSteps int
}

// AgentOption represents the options for the Agent.
type AgentOption func(*Agent)

// DefaultMaxSteps bounds the number of model steps of a single Run.
const DefaultMaxSteps = 10

// NewAgent creates an Agent driving model with the tools of tools.
func NewAgent(model LanguageModel, tools ToolServer, options ...AgentOption) Agent {
	a := Agent{
		model:    model,
		tools:    tools,
		logger:   slog.Default(),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range options {
		opt(&a)
	}
	return a
}

// WithAgentLogger sets the logger for the agent.
func WithAgentLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger.With(
			slog.String("package", "go-uigen"),
			slog.String("component", "agent"),
		)
	}
}

// WithAgentMaxSteps bounds the number of model steps of a single Run. Values below one are ignored.
func WithAgentMaxSteps(steps int) AgentOption {
	return func(a *Agent) {
		if steps > 0 {
			a.maxSteps = steps
		}
	}
}

// WithAgentMetrics makes the agent record steps and tool calls into metrics.
func WithAgentMetrics(metrics *Metrics) AgentOption {
	return func(a *Agent) {
		a.metrics = metrics
	}
}

// Run returns an iterator over every event of the turn: the model events of each step, followed by
// one EventToolResult per executed tool call. The transcript is extended in place with an
// assistant entry per step and a tool-result entry per call, so it must not be touched until the
// iteration ends.
//
// The run ends when a step finishes with anything but FinishReasonToolCalls, when a step proposes
// no tool call, after the configured maximum number of steps, when ctx is cancelled, or when the
// consumer stops iterating. Tool calls already executed stay recorded in the transcript.
func (a Agent) Run(ctx context.Context, transcript *Transcript) iter.Seq[StreamEvent] {
	return func(yield func(StreamEvent) bool) {
		for step := 0; step < a.maxSteps; step++ {
			started := time.Now()

			var (
				text   strings.Builder
				calls  []ToolCall
				reason FinishReason
			)
			for ev := range a.model.Stream(ctx, *transcript) {
				switch ev.Type {
				case EventTextDelta:
					text.WriteString(ev.Delta)
				case EventToolCall:
					calls = append(calls, ToolCall{ID: ev.ToolCallID, Name: ev.ToolName, Input: ev.Input})
				case EventFinish:
					reason = ev.FinishReason
				case EventTextStart, EventTextEnd, EventToolResult:
				}
				if !yield(ev) {
					return
				}
			}
			if err := ctx.Err(); err != nil {
				a.logger.Warn("agent run cancelled", slog.Int("step", step), slog.String("err", err.Error()))
				return
			}

			if text.Len() > 0 || len(calls) > 0 {
				transcript.Append(Message{Role: RoleAssistant, Content: text.String(), ToolCalls: calls})
			}

			for _, call := range calls {
				result := a.callTool(ctx, call)
				transcript.Append(NewToolResultMessage(call, result))

				if !yield(StreamEvent{
					Type:       EventToolResult,
					ToolCallID: call.ID,
					ToolName:   call.Name,
					Result:     result.Text(),
					IsError:    result.IsError,
				}) {
					return
				}
			}

			a.metrics.recordStep(reason, time.Since(started))
			a.logger.Debug("agent step finished",
				slog.Int("step", step),
				slog.String("finishReason", string(reason)),
				slog.Int("toolCalls", len(calls)),
			)

			if reason != FinishReasonToolCalls || len(calls) == 0 {
				return
			}
		}

		a.logger.Warn("agent reached the maximum number of steps", slog.Int("maxSteps", a.maxSteps))
	}
}

func (a Agent) callTool(ctx context.Context, call ToolCall) CallToolResult {
	result, err := a.tools.CallTool(ctx, CallToolParams{Name: call.Name, Arguments: call.Input})
	if err != nil {
		a.logger.Error("failed to call tool",
			slog.String("tool", call.Name),
			slog.String("toolCallId", call.ID),
			slog.String("err", err.Error()),
		)
		result = CallToolResult{
			Content: []Content{{Type: ContentTypeText, Text: "Error: " + err.Error()}},
			IsError: true,
		}
	}

	a.metrics.recordToolCall(call.Name, result.IsError)
	a.logger.Info("tool called",
		slog.String("tool", call.Name),
		slog.String("toolCallId", call.ID),
		slog.Bool("isError", result.IsError),
	)
	return result
}
