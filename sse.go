package uigen

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tmaxmax/go-sse"
)

// SSEServer exposes a ChatHandler over HTTP. Chat turns are posted as JSON and answered with a
// Server-Sent Events stream carrying every StreamEvent of the agent run; workspaces are served as
// plain JSON.
//
// The handlers returned by HandleChat and HandleFiles are framework-agnostic http.Handlers.
type SSEServer struct {
	chats       ChatHandler
	logger      *slog.Logger
	metrics     *Metrics
	maxBodySize int64
}

// SSEServerOption represents the options for the SSEServer.
type SSEServerOption func(*SSEServer)

// SSEClient talks to the chat endpoint of an SSEServer. Instances should be created using
// NewSSEClient.
type SSEClient struct {
	httpClient *http.Client
	chatURL    string
	logger     *slog.Logger

	maxPayloadSize int
}

// SSEClientOption represents the options for the SSEClient.
type SSEClientOption func(*SSEClient)

// ChatRequest is the body of a chat turn. An empty SessionID opens a new session.
type ChatRequest struct {
	SessionID string `json:"sessionId,omitempty"`
	Prompt    string `json:"prompt"`
}

const (
	// SessionIDHeader carries the session ID of a chat stream.
	SessionIDHeader = "X-Session-ID"

	// DoneEventType is the SSE event type closing a chat stream. Its data is the session ID.
	DoneEventType = "done"

	defaultMaxBodySize = 1 << 20
)

// NewSSEServer creates an SSEServer serving chats.
func NewSSEServer(chats ChatHandler, options ...SSEServerOption) SSEServer {
	s := SSEServer{
		chats:       chats,
		logger:      slog.Default(),
		maxBodySize: defaultMaxBodySize,
	}
	for _, opt := range options {
		opt(&s)
	}
	return s
}

// WithSSEServerLogger sets the logger for the server.
func WithSSEServerLogger(logger *slog.Logger) SSEServerOption {
	return func(s *SSEServer) {
		s.logger = logger.With(
			slog.String("package", "go-uigen"),
			slog.String("component", "sse-server"),
		)
	}
}

// WithSSEServerMetrics makes the server record open streams and sent events into metrics.
func WithSSEServerMetrics(metrics *Metrics) SSEServerOption {
	return func(s *SSEServer) {
		s.metrics = metrics
	}
}

// WithSSEServerMaxBodySize limits the size of a chat request body.
func WithSSEServerMaxBodySize(size int64) SSEServerOption {
	return func(s *SSEServer) {
		s.maxBodySize = size
	}
}

// NewSSEClient creates a client posting chat turns to chatURL. A nil httpClient means
// http.DefaultClient.
func NewSSEClient(chatURL string, httpClient *http.Client, options ...SSEClientOption) *SSEClient {
	cli := httpClient
	if cli == nil {
		cli = http.DefaultClient
	}
	c := &SSEClient{
		httpClient: cli,
		chatURL:    chatURL,
		logger:     slog.Default(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithSSEClientMaxPayloadSize sets the maximum size of a single event received from the server.
// If an event exceeds this limit, the error is logged and the stream ends.
func WithSSEClientMaxPayloadSize(size int) SSEClientOption {
	return func(c *SSEClient) {
		c.maxPayloadSize = size
	}
}

// WithSSEClientLogger sets the logger for the client.
func WithSSEClientLogger(logger *slog.Logger) SSEClientOption {
	return func(c *SSEClient) {
		c.logger = logger.With(
			slog.String("package", "go-uigen"),
			slog.String("component", "sse-client"),
		)
	}
}

// HandleChat returns an http.Handler running one chat turn per POST request. The response is an
// SSE stream: one event per StreamEvent, typed after StreamEvent.Type with the event's JSON as
// data, closed by a DoneEventType event. The session ID is sent in the SessionIDHeader header.
func (s SSEServer) HandleChat() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ChatRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodySize)).Decode(&req); err != nil {
			nErr := fmt.Errorf("failed to decode chat request: %w", err)
			s.logger.Warn("failed to decode chat request", slog.String("err", nErr.Error()))
			http.Error(w, nErr.Error(), http.StatusBadRequest)
			return
		}
		if req.Prompt == "" {
			http.Error(w, "prompt is required", http.StatusBadRequest)
			return
		}

		// Upgrade only checks that w can flush. It must run before Chat so a failed upgrade opens no session.
		sess, err := sse.Upgrade(w, r)
		if err != nil {
			nErr := fmt.Errorf("failed to upgrade session: %w", err)
			s.logger.Error("failed to upgrade session", "err", nErr)
			http.Error(w, nErr.Error(), http.StatusInternalServerError)
			return
		}

		sessID, events, err := s.chats.Chat(r.Context(), req.SessionID, req.Prompt)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, ErrSessionNotFound) {
				status = http.StatusNotFound
			}
			s.logger.Warn("failed to start chat", slog.String("sessionID", req.SessionID), slog.String("err", err.Error()))
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set(SessionIDHeader, sessID)

		s.metrics.sseConnected(1)
		defer s.metrics.sseConnected(-1)

		for ev := range events {
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("failed to marshal event", slog.String("type", string(ev.Type)), slog.String("err", err.Error()))
				continue
			}
			if err := s.send(sess, string(ev.Type), string(data)); err != nil {
				// Leaving the loop stops the agent run.
				s.logger.Warn("failed to send event", slog.String("sessionID", sessID), slog.String("err", err.Error()))
				return
			}
		}

		if err := s.send(sess, DoneEventType, sessID); err != nil {
			s.logger.Warn("failed to send done event", slog.String("sessionID", sessID), slog.String("err", err.Error()))
		}
	})
}

// HandleFiles returns an http.Handler serving the workspace of the session named by the
// sessionId query parameter as JSON. The optional glob query parameter filters paths.
func (s SSEServer) HandleFiles() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessID := r.URL.Query().Get("sessionId")
		if sessID == "" {
			nErr := fmt.Errorf("missing sessionId query parameter")
			s.logger.Warn("missing sessionId query parameter", slog.String("err", nErr.Error()))
			http.Error(w, nErr.Error(), http.StatusBadRequest)
			return
		}

		files, err := s.chats.Files(sessID, r.URL.Query().Get("glob"))
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrSessionNotFound) {
				status = http.StatusNotFound
			}
			http.Error(w, err.Error(), status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(files); err != nil {
			s.logger.Error("failed to encode files", slog.String("sessionID", sessID), slog.String("err", err.Error()))
		}
	})
}

func (s SSEServer) send(sess *sse.Session, eventType, data string) error {
	msg := sse.Message{
		Type: sse.Type(eventType),
	}
	msg.AppendData(data)
	if err := sess.Send(&msg); err != nil {
		return fmt.Errorf("failed to send %s event: %w", eventType, err)
	}
	if err := sess.Flush(); err != nil {
		return fmt.Errorf("failed to flush %s event: %w", eventType, err)
	}
	s.metrics.recordSSEEvent(eventType)
	return nil
}

// Chat posts prompt to the server and returns the session ID together with an iterator over the
// events of the run. An empty sessionID asks the server for a new session. The iterator must be
// ranged over: it owns the response body and closes it when the stream ends or the caller stops.
func (c *SSEClient) Chat(ctx context.Context, sessionID, prompt string) (string, iter.Seq[StreamEvent], error) {
	body, err := json.Marshal(ChatRequest{SessionID: sessionID, Prompt: prompt})
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(body))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("failed to send chat request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return "", nil, fmt.Errorf("%w: %s", ErrSessionNotFound, bytes.TrimSpace(msg))
		}
		return "", nil, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return resp.Header.Get(SessionIDHeader), c.readEvents(resp.Body), nil
}

// Files fetches the workspace of a session from the files endpoint sitting next to the chat
// endpoint (".../chat" and ".../files"), restricted to pattern when it is not empty.
func (c *SSEClient) Files(ctx context.Context, sessionID, pattern string) (json.RawMessage, error) {
	u, err := url.Parse(c.chatURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse chat URL: %w", err)
	}
	u = u.JoinPath("..", "files")
	q := url.Values{"sessionId": []string{sessionID}}
	if pattern != "" {
		q.Set("glob", pattern)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read files: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return json.RawMessage(body), nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, bytes.TrimSpace(body))
	default:
		return nil, fmt.Errorf("unexpected status code: %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
}

func (c *SSEClient) readEvents(body io.ReadCloser) iter.Seq[StreamEvent] {
	return func(yield func(StreamEvent) bool) {
		defer body.Close()

		var config *sse.ReadConfig
		if c.maxPayloadSize > 0 {
			config = &sse.ReadConfig{
				MaxEventSize: c.maxPayloadSize,
			}
		}

		for ev, err := range sse.Read(body, config) {
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					c.logger.Error("failed to read SSE message", "err", err)
				}
				return
			}

			if ev.Type == DoneEventType {
				return
			}

			var se StreamEvent
			if err := json.Unmarshal([]byte(ev.Data), &se); err != nil {
				c.logger.Error("failed to unmarshal event", slog.String("type", ev.Type), slog.String("err", err.Error()))
				continue
			}
			if !yield(se) {
				return
			}
		}
	}
}
