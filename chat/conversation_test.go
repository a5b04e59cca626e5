package chat_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/estate-client/chat"
	"github.com/jrsteele09/estate-client/internal/api"
	ierrors "github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/users"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu       sync.Mutex
	requests []chat.Request
	uploaded map[string]string
	cleared  []string

	reply     func(req chat.Request) (*chat.Reply, error)
	uploadErr error
	clearErr  error
}

var _ chat.Backend = (*fakeBackend)(nil)

func (b *fakeBackend) Chat(ctx context.Context, req chat.Request) (*chat.Reply, error) {
	b.mu.Lock()
	b.requests = append(b.requests, req)
	reply := b.reply
	b.mu.Unlock()
	if reply == nil {
		return &chat.Reply{Response: "echo: " + req.Message}, nil
	}
	return reply(req)
}

func (b *fakeBackend) Upload(ctx context.Context, filename string, content io.Reader) (*chat.UploadResult, error) {
	if b.uploadErr != nil {
		return nil, b.uploadErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.uploaded == nil {
		b.uploaded = map[string]string{}
	}
	b.uploaded[filename] = string(data)
	return &chat.UploadResult{Status: "success", Filename: filename, FileSize: int64(len(data))}, nil
}

func (b *fakeBackend) ClearHistory(ctx context.Context, sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.cleared = append(b.cleared, sessionID)
	return b.clearErr
}

func (b *fakeBackend) chatCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

type testFixture struct {
	backend *fakeBackend
	conv    *chat.Conversation
	files   map[string]string
}

func setupTestFixture(t *testing.T, role users.RoleType) *testFixture {
	t.Helper()
	f := &testFixture{backend: &fakeBackend{}, files: map[string]string{}}
	user := &users.Profile{ID: 42, Roles: []users.RoleType{role}}
	f.conv = chat.NewConversation(f.backend, user, role,
		chat.WithNowTime(func() time.Time { return testNow }),
		chat.WithFileOpener(f.open),
	)
	return f
}

func (f *testFixture) open(name string) (io.ReadCloser, int64, error) {
	content, ok := f.files[name]
	if !ok {
		return nil, 0, fmt.Errorf("open %s: no such file", name)
	}
	return io.NopCloser(strings.NewReader(content)), int64(len(content)), nil
}

func TestNewConversation_SessionID(t *testing.T) {
	f := setupTestFixture(t, users.RoleClient)
	id := f.conv.SessionID()
	require.True(t, strings.HasPrefix(id, fmt.Sprintf("42-%d-", testNow.UnixMilli())), id)

	other := setupTestFixture(t, users.RoleClient)
	require.NotEqual(t, id, other.conv.SessionID())
}

func TestConversation_Send(t *testing.T) {
	t.Run("blank text sends nothing", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleClient)
		msg, err := f.conv.Send(context.Background(), "   \n\t")
		require.NoError(t, err)
		require.Nil(t, msg)
		require.Equal(t, 0, f.backend.chatCalls())
		require.Empty(t, f.conv.Messages())
	})

	t.Run("appends user then assistant", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleAgent)
		f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
			return &chat.Reply{Response: "Two options found.", Sources: []string{"listings.csv"}}, nil
		}

		msg, err := f.conv.Send(context.Background(), "Any villas in Arabian Ranches?")
		require.NoError(t, err)
		require.Equal(t, chat.SenderAssistant, msg.Sender)

		msgs := f.conv.Messages()
		require.Len(t, msgs, 2)
		require.Equal(t, chat.SenderUser, msgs[0].Sender)
		require.Equal(t, "Any villas in Arabian Ranches?", msgs[0].Text)
		require.Equal(t, "Two options found.", msgs[1].Text)
		require.Equal(t, []string{"listings.csv"}, msgs[1].Sources)

		req := f.backend.requests[0]
		require.Equal(t, users.RoleAgent, req.Role)
		require.Equal(t, f.conv.SessionID(), req.SessionID)
	})

	t.Run("text is kept verbatim", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleClient)
		_, err := f.conv.Send(context.Background(), "  spaced  ")
		require.NoError(t, err)
		require.Equal(t, "  spaced  ", f.conv.Messages()[0].Text)
		require.Equal(t, "  spaced  ", f.backend.requests[0].Message)
	})

	t.Run("failure sets the banner and adds no reply", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleClient)
		f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
			return nil, &api.Error{Status: 500, Message: "Chat service unavailable"}
		}

		_, err := f.conv.Send(context.Background(), "hello")
		require.ErrorIs(t, err, ierrors.ErrServer)
		require.Equal(t, "Chat service unavailable", f.conv.Banner())

		msgs := f.conv.Messages()
		require.Len(t, msgs, 1)
		require.Equal(t, chat.SenderUser, msgs[0].Sender)
		require.False(t, f.conv.Pending())

		f.conv.DismissBanner()
		require.Empty(t, f.conv.Banner())
	})

	t.Run("the next send clears the banner", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleClient)
		f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
			return nil, fmt.Errorf("%w: dial tcp", ierrors.ErrNetwork)
		}
		_, _ = f.conv.Send(context.Background(), "first")
		require.NotEmpty(t, f.conv.Banner())

		f.backend.reply = nil
		_, err := f.conv.Send(context.Background(), "second")
		require.NoError(t, err)
		require.Empty(t, f.conv.Banner())
	})
}

func TestConversation_SingleFlight(t *testing.T) {
	f := setupTestFixture(t, users.RoleClient)
	started := make(chan struct{})
	release := make(chan struct{})
	f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
		close(started)
		<-release
		return &chat.Reply{Response: "done"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.conv.Send(context.Background(), "first")
		done <- err
	}()
	<-started
	require.True(t, f.conv.Pending())

	_, err := f.conv.Send(context.Background(), "second")
	require.ErrorIs(t, err, ierrors.ErrSendInFlight)

	close(release)
	require.NoError(t, <-done)

	msgs := f.conv.Messages()
	require.Len(t, msgs, 2)
	require.Equal(t, "first", msgs[0].Text)
	require.Equal(t, "done", msgs[1].Text)
	require.Equal(t, 1, f.backend.chatCalls())
}

func TestConversation_RenderFlags(t *testing.T) {
	t.Run("agent milestone", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleAgent)
		f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
			return &chat.Reply{Response: "🎉 Congratulations! Your new listing is live."}, nil
		}
		_, err := f.conv.Send(context.Background(), "new listing added")
		require.NoError(t, err)

		rendered := f.conv.Render()
		require.Len(t, rendered, 2)
		require.Empty(t, rendered[0].Flags)
		require.True(t, rendered[1].Flags.Has(chat.FlagMilestone))
		require.Equal(t, "🎉 Congratulations! Your new listing is live.", rendered[1].Text)
	})

	t.Run("cultural recognition", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleEmployee)
		f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
			return &chat.Reply{Response: "Steadily, we are getting leads! Keep going."}, nil
		}
		_, err := f.conv.Send(context.Background(), "how are leads?")
		require.NoError(t, err)
		require.Equal(t, chat.Flags{chat.FlagCulturalRecognition}, f.conv.Render()[1].Flags)
	})
}

func TestConversation_SendSuggestion(t *testing.T) {
	f := setupTestFixture(t, users.RoleAdmin)

	_, err := f.conv.SendSuggestion(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, "Show the Admin Analytics Dashboard", f.backend.requests[0].Message)

	_, err = f.conv.SendSuggestion(context.Background(), 99)
	require.ErrorIs(t, err, ierrors.ErrValidation)
}

func TestConversation_UploadFiles(t *testing.T) {
	t.Run("each success is confirmed", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleAgent)
		f.files["/tmp/docs/listings.csv"] = "id,price\n1,1200000"
		f.files["/tmp/docs/brochure.txt"] = "Marina views"

		results, err := f.conv.UploadFiles(context.Background(), []string{"/tmp/docs/listings.csv", "/tmp/docs/brochure.txt"})
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.Equal(t, "Marina views", f.backend.uploaded["brochure.txt"])

		msgs := f.conv.Messages()
		require.Len(t, msgs, 2)
		require.Equal(t, chat.SenderAssistant, msgs[0].Sender)
		require.Contains(t, msgs[0].Text, `"listings.csv" uploaded and processed successfully`)
	})

	t.Run("failures set the banner and are all reported", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleAgent)
		f.files["ok.txt"] = "fine"
		f.files["huge.pdf"] = strings.Repeat("x", chat.MaxUploadSize+1)

		results, err := f.conv.UploadFiles(context.Background(), []string{"missing.txt", "ok.txt", "huge.pdf"})
		require.ErrorIs(t, err, ierrors.ErrValidation)
		require.Len(t, results, 1)
		require.Contains(t, err.Error(), "missing.txt")
		require.Contains(t, err.Error(), "too large")
		require.Contains(t, f.conv.Banner(), "too large")
		require.Len(t, f.conv.Messages(), 1)
	})

	t.Run("backend rejection", func(t *testing.T) {
		f := setupTestFixture(t, users.RoleAgent)
		f.files["doc.txt"] = "x"
		f.backend.uploadErr = &api.Error{Status: 400, Message: "File type .exe not allowed"}

		_, err := f.conv.UploadFiles(context.Background(), []string{"doc.txt"})
		require.Error(t, err)
		require.Equal(t, "File type .exe not allowed", f.conv.Banner())
		require.Empty(t, f.conv.Messages())
	})
}

func TestConversation_Reset(t *testing.T) {
	f := setupTestFixture(t, users.RoleClient)
	_, err := f.conv.Send(context.Background(), "hello")
	require.NoError(t, err)
	id := f.conv.SessionID()

	require.NoError(t, f.conv.Reset(context.Background()))
	require.Empty(t, f.conv.Messages())
	require.Equal(t, []string{id}, f.backend.cleared)
	require.Equal(t, id, f.conv.SessionID(), "reset keeps the session")

	f.backend.clearErr = fmt.Errorf("%w: refused", ierrors.ErrNetwork)
	_, _ = f.conv.Send(context.Background(), "again")
	require.Error(t, f.conv.Reset(context.Background()))
	require.Empty(t, f.conv.Messages())
}

func TestConversation_Discard(t *testing.T) {
	f := setupTestFixture(t, users.RoleClient)
	started := make(chan struct{})
	release := make(chan struct{})
	f.backend.reply = func(req chat.Request) (*chat.Reply, error) {
		close(started)
		<-release
		return &chat.Reply{Response: "too late"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.conv.Send(context.Background(), "hello")
		done <- err
	}()
	<-started
	f.conv.Discard()
	close(release)

	require.ErrorIs(t, <-done, ierrors.ErrNoSessionUser)
	require.Empty(t, f.conv.Messages())
	require.Empty(t, f.conv.SessionID())

	_, err := f.conv.Send(context.Background(), "after")
	require.ErrorIs(t, err, ierrors.ErrNoSessionUser)
}

func TestOpenLocalFile(t *testing.T) {
	backend := &fakeBackend{}
	conv := chat.NewConversation(backend, &users.Profile{ID: 1}, users.RoleAgent)

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	_, err := conv.UploadFiles(context.Background(), []string{path})
	require.NoError(t, err)
	require.Equal(t, "hello", backend.uploaded["notes.txt"])
}
