package uigen

import (
	"encoding/json"
	"strings"
)

// Role identifies the author of a transcript entry.
type Role string

// EventType discriminates the variants of StreamEvent.
type EventType string

// FinishReason tells whether a model step wants its tool calls executed or is done.
type FinishReason string

// ContentType represents the type of a content part.
type ContentType string

// Message is a single role-tagged entry of a Transcript.
//
// User entries carry the prompt in Content. Assistant entries carry the step's text and the tool
// calls it issued. Tool-result entries acknowledge a tool call by ToolCallID and carry the tool's
// textual result.
type Message struct {
	Role Role `json:"role"`

	Content string `json:"content,omitempty"`

	// For RoleAssistant
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`

	// For RoleToolResult
	ToolCallID string `json:"toolCallId,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	IsError    bool   `json:"isError,omitempty"`
}

// Transcript is the ordered conversation history handed to a LanguageModel for every step.
type Transcript struct {
	Messages []Message `json:"messages"`
}

// StreamEvent is one event of a model step, or of an agent run.
//
// Text parts are announced with EventTextStart, grown by EventTextDelta and closed by
// EventTextEnd, all sharing the same ID. A step issues at most one EventToolCall and always ends
// with exactly one EventFinish. EventToolResult is only emitted by Agent, after it executed a call.
type StreamEvent struct {
	Type EventType `json:"type"`

	// For EventTextStart, EventTextDelta and EventTextEnd
	ID    string `json:"id,omitempty"`
	Delta string `json:"delta,omitempty"`

	// For EventToolCall and EventToolResult
	ToolCallID string          `json:"toolCallId,omitempty"`
	ToolName   string          `json:"toolName,omitempty"`
	Input      json.RawMessage `json:"input,omitempty"`
	Result     string          `json:"result,omitempty"`
	IsError    bool            `json:"isError,omitempty"`

	// For EventFinish
	FinishReason FinishReason `json:"finishReason,omitempty"`
	Usage        *Usage       `json:"usage,omitempty"`
}

// ToolCall is a tool invocation proposed by a model.
type ToolCall struct {
	ID    string          `json:"toolCallId"`
	Name  string          `json:"toolName"`
	Input json.RawMessage `json:"input"`
}

// Usage reports token counts for a model step.
type Usage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
}

// Part is one element of a GenerateResult's content: either text or a tool call.
type Part struct {
	Type ContentType `json:"type"`

	// For ContentTypeText
	Text string `json:"text,omitempty"`

	// For ContentTypeToolCall
	ToolCall *ToolCall `json:"toolCall,omitempty"`
}

// GenerateResult is the aggregate of a whole model step.
type GenerateResult struct {
	Content      []Part       `json:"content"`
	FinishReason FinishReason `json:"finishReason"`
	Usage        Usage        `json:"usage"`
	Warnings     []string     `json:"warnings"`
}

// Tool describes a tool a ToolServer exposes to the model.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// CallToolParams contains the parameters for executing a tool.
type CallToolParams struct {
	// Name is the unique identifier of the tool to execute
	Name string `json:"name"`

	// Arguments is a JSON object of argument name-value pairs
	// Must satisfy the tool's InputSchema
	Arguments json.RawMessage `json:"arguments"`
}

// CallToolResult represents the outcome of a tool invocation.
type CallToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError"`
}

// Content is a piece of tool output.
type Content struct {
	Type ContentType `json:"type"`
	Text string      `json:"text,omitempty"`
}

const (
	// RoleUser represents the end user.
	RoleUser Role = "user"
	// RoleAssistant represents the model.
	RoleAssistant Role = "assistant"
	// RoleToolResult represents the acknowledgement of an executed tool call.
	RoleToolResult Role = "tool-result"

	// EventTextStart opens a text part.
	EventTextStart EventType = "text-start"
	// EventTextDelta appends to an open text part.
	EventTextDelta EventType = "text-delta"
	// EventTextEnd closes a text part.
	EventTextEnd EventType = "text-end"
	// EventToolCall proposes a tool invocation.
	EventToolCall EventType = "tool-call"
	// EventToolResult reports the outcome of an executed tool call.
	EventToolResult EventType = "tool-result"
	// EventFinish terminates a model step.
	EventFinish EventType = "finish"

	// FinishReasonToolCalls asks the caller to execute the step's tool calls and continue.
	FinishReasonToolCalls FinishReason = "tool-calls"
	// FinishReasonStop ends the turn.
	FinishReasonStop FinishReason = "stop"

	// ContentTypeText represents text content.
	ContentTypeText ContentType = "text"
	// ContentTypeToolCall represents a tool call part.
	ContentTypeToolCall ContentType = "tool-call"
)

// NewUserMessage returns a user entry holding prompt.
func NewUserMessage(prompt string) Message {
	return Message{Role: RoleUser, Content: prompt}
}

// NewToolResultMessage returns the tool-result entry acknowledging call.
func NewToolResultMessage(call ToolCall, result CallToolResult) Message {
	return Message{
		Role:       RoleToolResult,
		Content:    result.Text(),
		ToolCallID: call.ID,
		ToolName:   call.Name,
		IsError:    result.IsError,
	}
}

// Append adds messages to the end of the transcript.
func (t *Transcript) Append(msgs ...Message) {
	t.Messages = append(t.Messages, msgs...)
}

// ToolResultCount returns the number of tool-result entries.
func (t Transcript) ToolResultCount() int {
	n := 0
	for _, m := range t.Messages {
		if m.Role == RoleToolResult {
			n++
		}
	}
	return n
}

// FirstUserPrompt returns the content of the first user entry, or "" when there is none.
func (t Transcript) FirstUserPrompt() string {
	for _, m := range t.Messages {
		if m.Role == RoleUser {
			return m.Content
		}
	}
	return ""
}

// Text joins every text part of the result.
func (r GenerateResult) Text() string {
	var b strings.Builder
	for _, p := range r.Content {
		if p.Type == ContentTypeText {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the tool calls of the result in order.
func (r GenerateResult) ToolCalls() []ToolCall {
	var calls []ToolCall
	for _, p := range r.Content {
		if p.Type == ContentTypeToolCall && p.ToolCall != nil {
			calls = append(calls, *p.ToolCall)
		}
	}
	return calls
}

// Text joins every text content of the result, separated by newlines.
func (r CallToolResult) Text() string {
	texts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		if c.Type == ContentTypeText {
			texts = append(texts, c.Text)
		}
	}
	return strings.Join(texts, "\n")
}
