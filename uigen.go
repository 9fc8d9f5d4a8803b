package uigen

import (
	"context"
	"errors"
	"iter"
)

// LanguageModel produces one step of a conversation at a time.
type LanguageModel interface {
	// ModelID returns the identifier of the model, e.g. "mock-claude-sonnet-4-0".
	ModelID() string

	// Stream returns an iterator over the events of the next step for the given transcript.
	// Events are yielded as they are produced. The iteration ends after the EventFinish event, when
	// the consumer stops early, or when ctx is cancelled; in the last two cases no EventFinish is
	// yielded. The implementation must not retain or mutate the transcript.
	Stream(ctx context.Context, transcript Transcript) iter.Seq[StreamEvent]

	// Generate runs the same step as Stream and returns its aggregate. It returns an error when
	// ctx is cancelled before the step completes.
	Generate(ctx context.Context, transcript Transcript) (GenerateResult, error)
}

// ToolServer exposes executable tools to an Agent.
type ToolServer interface {
	// ListTools returns the tools this server can execute.
	ListTools(ctx context.Context) ([]Tool, error)

	// CallTool executes the named tool. Failures of the operation itself are reported through
	// CallToolResult.IsError; a returned error means the call could not be dispatched at all, for
	// example because the tool does not exist.
	CallTool(ctx context.Context, params CallToolParams) (CallToolResult, error)
}

// ChatHandler is the backend of SSEServer: it owns workspaces and runs chats against them.
type ChatHandler interface {
	// Chat appends prompt to the session's transcript and returns the session ID together with the
	// events of the resulting agent run. An empty sessionID opens a new session. ErrSessionNotFound
	// is returned for an unknown non-empty ID.
	Chat(ctx context.Context, sessionID, prompt string) (string, iter.Seq[StreamEvent], error)

	// Files returns the JSON-serializable workspace of a session, restricted to paths matching
	// pattern when pattern is not empty.
	Files(sessionID, pattern string) (any, error)
}

// ErrSessionNotFound is returned by a ChatHandler for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Collect drains events and folds them into a GenerateResult. Consecutive deltas of one text part
// become a single text Part; parts keep the order in which they were opened. When no finish event
// is seen the result defaults to FinishReasonStop with zero usage.
func Collect(events iter.Seq[StreamEvent]) GenerateResult {
	result := GenerateResult{
		FinishReason: FinishReasonStop,
		Warnings:     []string{},
	}
	textIndex := make(map[string]int)

	for ev := range events {
		switch ev.Type {
		case EventTextStart:
			textIndex[ev.ID] = len(result.Content)
			result.Content = append(result.Content, Part{Type: ContentTypeText})
		case EventTextDelta:
			i, ok := textIndex[ev.ID]
			if !ok {
				i = len(result.Content)
				textIndex[ev.ID] = i
				result.Content = append(result.Content, Part{Type: ContentTypeText})
			}
			result.Content[i].Text += ev.Delta
		case EventToolCall:
			result.Content = append(result.Content, Part{
				Type: ContentTypeToolCall,
				ToolCall: &ToolCall{
					ID:    ev.ToolCallID,
					Name:  ev.ToolName,
					Input: ev.Input,
				},
			})
		case EventFinish:
			result.FinishReason = ev.FinishReason
			if ev.Usage != nil {
				result.Usage = *ev.Usage
			}
		case EventTextEnd, EventToolResult:
		}
	}

	return result
}
