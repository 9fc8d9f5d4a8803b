package session_test

import (
	"context"
	"iter"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MegaGrindStone/go-uigen"
	"github.com/MegaGrindStone/go-uigen/models/mock"
	"github.com/MegaGrindStone/go-uigen/session"
	"github.com/MegaGrindStone/go-uigen/vfs"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newManager() *session.Manager {
	return session.NewManager(mock.New("", mock.WithDelay(0)))
}

func drain(events iter.Seq[uigen.StreamEvent]) []uigen.StreamEvent {
	var out []uigen.StreamEvent
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestChatBuildsWorkspace(t *testing.T) {
	m := newManager()

	id, events, err := m.Chat(context.Background(), "", "Create a contact form")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got := drain(events)
	var results int
	for _, ev := range got {
		if ev.Type == uigen.EventToolResult {
			results++
			assert.False(t, ev.IsError, ev.Result)
		}
	}
	assert.Equal(t, 3, results)
	assert.Equal(t, uigen.FinishReasonStop, got[len(got)-1].FinishReason)

	s, err := m.Get(id)
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Contains(t, snap, vfs.Path("/App.jsx"))
	assert.Contains(t, snap, vfs.Path("/components/ContactForm.jsx"))
	assert.Contains(t, snap["/components/ContactForm.jsx"].Content, "alert(")

	transcript := s.Transcript()
	assert.Equal(t, 3, transcript.ToolResultCount())
	assert.Equal(t, "Create a contact form", transcript.FirstUserPrompt())

	info := s.Info()
	assert.Equal(t, id, info.ID)
	assert.Equal(t, 2, info.Files)
	assert.Equal(t, len(transcript.Messages), info.Messages)
}

func TestChatUnknownSession(t *testing.T) {
	m := newManager()

	_, _, err := m.Chat(context.Background(), "missing", "hi")
	assert.ErrorIs(t, err, uigen.ErrSessionNotFound)

	_, err = m.Files("missing", "")
	assert.ErrorIs(t, err, uigen.ErrSessionNotFound)
}

func TestSessionsAreIsolated(t *testing.T) {
	m := newManager()

	a := m.Create()
	b := m.Create()
	assert.NotEqual(t, a.ID(), b.ID())

	drain(a.Chat(context.Background(), "a card"))

	assert.NotEmpty(t, a.Snapshot())
	assert.Empty(t, b.Snapshot())
	assert.Len(t, m.List(), 2)

	assert.True(t, m.Close(b.ID()))
	assert.False(t, m.Close(b.ID()))
	assert.Len(t, m.List(), 1)
}

func TestFilesFilter(t *testing.T) {
	m := newManager()
	id, events, err := m.Chat(context.Background(), "", "counter")
	require.NoError(t, err)
	drain(events)

	files, err := m.Files(id, "/components/**")
	require.NoError(t, err)
	snap, ok := files.(vfs.Snapshot)
	require.True(t, ok)
	assert.Len(t, snap, 1)
	assert.Contains(t, snap, vfs.Path("/components/Counter.jsx"))

	_, err = m.Files(id, "[")
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	m := newManager()

	s, err := m.Restore(vfs.Snapshot{
		"/App.jsx": {Type: vfs.KindFile, Name: "App.jsx", Path: "/App.jsx", Content: "app"},
	})
	require.NoError(t, err)
	assert.Equal(t, "app", s.Snapshot()["/App.jsx"].Content)

	_, err = m.Restore(vfs.Snapshot{"/x": {Type: "link"}})
	assert.Error(t, err)
}

func TestConcurrentChatsAreSerialized(t *testing.T) {
	m := newManager()
	s := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			drain(s.Chat(context.Background(), "counter"))
		}()
	}
	wg.Wait()

	transcript := s.Transcript()
	var users int
	for _, msg := range transcript.Messages {
		if msg.Role == uigen.RoleUser {
			users++
		}
	}
	assert.Equal(t, 3, users)
	// Later turns start past the scripted steps and stop right away.
	assert.Equal(t, 3, transcript.ToolResultCount())
}

func TestChatStopsEarly(t *testing.T) {
	s := newManager().Create()

	for ev := range s.Chat(context.Background(), "counter") {
		if ev.Type == uigen.EventToolCall {
			break
		}
	}

	transcript := s.Transcript()
	assert.Zero(t, transcript.ToolResultCount())

	// The session lock was released.
	drain(s.Chat(context.Background(), "counter"))
	assert.Equal(t, 3, s.Transcript().ToolResultCount())
}
