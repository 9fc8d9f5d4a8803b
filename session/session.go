// Package session keeps one isolated workspace per conversation: its filesystem, its tools and its
// transcript.
package session

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/tools"
	"github.com/MegaGrindStone/go-uigen/vfs"
)

// Manager creates and tracks sessions. It implements uigen.ChatHandler.
type Manager struct {
	model    uigen.LanguageModel
	logger   *slog.Logger
	metrics  *uigen.Metrics
	maxSteps int

	mu       sync.Mutex
	sessions map[string]*Session
}

// ManagerOption represents the options for the Manager.
type ManagerOption func(*Manager)

// Session is a single conversation over its own FileSystem. Chats on one session run one at a
// time; a second Chat blocks until the first run ends.
type Session struct {
	id        string
	createdAt time.Time
	agent     uigen.Agent
	logger    *slog.Logger

	mu         sync.Mutex
	fs         *vfs.FileSystem
	transcript uigen.Transcript
}

// Info summarizes a session.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  int       `json:"messages"`
	Files     int       `json:"files"`
}

// NewManager creates a Manager whose sessions are driven by model.
func NewManager(model uigen.LanguageModel, options ...ManagerOption) *Manager {
	m := &Manager{
		model:    model,
		logger:   slog.Default(),
		maxSteps: uigen.DefaultMaxSteps,
		sessions: make(map[string]*Session),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// WithManagerLogger sets the logger for the manager and its sessions.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithManagerMetrics makes the agents of every session record into metrics.
func WithManagerMetrics(metrics *uigen.Metrics) ManagerOption {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithManagerMaxSteps bounds the number of model steps of a single chat.
func WithManagerMaxSteps(steps int) ManagerOption {
	return func(m *Manager) {
		m.maxSteps = steps
	}
}

// Create opens a session with an empty workspace.
func (m *Manager) Create() *Session {
	return m.add(vfs.New())
}

// Restore opens a session whose workspace is rebuilt from snap.
func (m *Manager) Restore(snap vfs.Snapshot) (*Session, error) {
	fs, err := vfs.Deserialize(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	return m.add(fs), nil
}

func (m *Manager) add(fs *vfs.FileSystem) *Session {
	id := uuid.New().String()
	logger := m.logger.With(slog.String("sessionID", id))

	s := &Session{
		id:        id,
		createdAt: time.Now(),
		logger:    logger,
		fs:        fs,
		agent: uigen.NewAgent(m.model,
			tools.NewServer(fs, tools.WithLogger(logger)),
			uigen.WithAgentLogger(logger),
			uigen.WithAgentMetrics(m.metrics),
			uigen.WithAgentMaxSteps(m.maxSteps),
		),
	}

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	logger.Info("session created", slog.String("model", m.model.ModelID()))
	return s
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", uigen.ErrSessionNotFound, id)
	}
	return s, nil
}

// Close forgets the session with the given ID. It reports whether the session existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

// List returns a summary of every session, oldest first.
func (m *Manager) List() []Info {
	m.mu.Lock()
	sessions := slices.Collect(maps.Values(m.sessions))
	m.mu.Unlock()

	infos := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		infos = append(infos, s.Info())
	}
	slices.SortFunc(infos, func(a, b Info) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return infos
}

// Chat implements uigen.ChatHandler interface.
func (m *Manager) Chat(ctx context.Context, sessionID, prompt string) (string, iter.Seq[uigen.StreamEvent], error) {
	var s *Session
	if sessionID == "" {
		s = m.Create()
	} else {
		var err error
		if s, err = m.Get(sessionID); err != nil {
			return "", nil, err
		}
	}
	return s.ID(), s.Chat(ctx, prompt), nil
}

// Files implements uigen.ChatHandler interface. It returns the session's vfs.Snapshot.
func (m *Manager) Files(sessionID, pattern string) (any, error) {
	s, err := m.Get(sessionID)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot()
	if pattern == "" {
		return snap, nil
	}
	return snap.Filter(pattern)
}

// ID returns the session ID.
func (s *Session) ID() string { return s.id }

// Chat returns an iterator running one agent turn for prompt. The session is locked while the
// iterator runs; the prompt is recorded only once iteration starts.
func (s *Session) Chat(ctx context.Context, prompt string) iter.Seq[uigen.StreamEvent] {
	return func(yield func(uigen.StreamEvent) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.transcript.Append(uigen.NewUserMessage(prompt))
		s.logger.Info("chat started", slog.Int("messages", len(s.transcript.Messages)))

		for ev := range s.agent.Run(ctx, &s.transcript) {
			if !yield(ev) {
				return
			}
		}
	}
}

// Snapshot returns a copy of the session's workspace.
func (s *Session) Snapshot() vfs.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.fs.Serialize()
}

// Transcript returns a copy of the conversation so far.
func (s *Session) Transcript() uigen.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	return uigen.Transcript{Messages: slices.Clone(s.transcript.Messages)}
}

// Info returns a summary of the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()

	files := 0
	for e := range s.fs.Walk() {
		if !e.IsDir() {
			files++
		}
	}
	return Info{
		ID:        s.id,
		CreatedAt: s.createdAt,
		Messages:  len(s.transcript.Messages),
		Files:     files,
	}
}
