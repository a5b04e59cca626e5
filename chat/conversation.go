package chat

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/users"
	"github.com/rs/zerolog"
)

// MaxUploadSize matches the backend's upload limit.
const MaxUploadSize = 10 * 1024 * 1024

// Backend is what a conversation sends through. *Client satisfies it.
type Backend interface {
	Chat(ctx context.Context, req Request) (*Reply, error)
	Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error)
	ClearHistory(ctx context.Context, sessionID string) error
}

var _ Backend = (*Client)(nil)

// Sender says who wrote a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one entry in the log, stored exactly as sent or received.
type Message struct {
	Sender    Sender
	Text      string
	Timestamp time.Time
	Sources   []string
}

// RenderedMessage is a message with the flags computed for display.
type RenderedMessage struct {
	Message
	Flags Flags
}

// Conversation is the message log of one chat view. Sends are single-flight:
// while one is outstanding, another is rejected rather than queued.
type Conversation struct {
	backend    Backend
	classifier *Classifier
	role       users.RoleType
	userID     int64
	nowTime    func() time.Time
	newID      func() string
	openFile   func(name string) (io.ReadCloser, int64, error)
	log        zerolog.Logger

	mu        sync.Mutex
	sessionID string
	messages  []Message
	inFlight  bool
	banner    string
	gen       uint64
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(c *Conversation) { c.nowTime = nowFunc }
}

// WithClassifier replaces the default rule table.
func WithClassifier(cl *Classifier) Option {
	return func(c *Conversation) { c.classifier = cl }
}

// WithFileOpener replaces how upload paths are opened (primarily for testing)
func WithFileOpener(open func(name string) (io.ReadCloser, int64, error)) Option {
	return func(c *Conversation) { c.openFile = open }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Conversation) { c.log = l }
}

// NewConversation starts a conversation for user in role. The session
// identifier is fixed for the conversation's lifetime.
func NewConversation(backend Backend, user *users.Profile, role users.RoleType, options ...Option) *Conversation {
	c := &Conversation{
		backend:    backend,
		classifier: NewClassifier(),
		role:       role,
		nowTime:    time.Now,
		newID:      uuid.NewString,
		openFile:   openLocalFile,
		log:        zerolog.Nop(),
	}
	if user != nil {
		c.userID = user.ID
	}
	for _, opt := range options {
		opt(c)
	}
	c.sessionID = fmt.Sprintf("%d-%d-%s", c.userID, c.nowTime().UnixMilli(), c.newID())
	return c
}

func (c *Conversation) Role() users.RoleType { return c.role }

// Profile is the role presentation used for theming and suggestions.
func (c *Conversation) Profile() RoleProfile { return ProfileFor(c.role) }

// SessionID is "" once the conversation has been discarded.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Send appends text as a user message and asks the backend for a reply.
// Blank text is ignored. A send while another is outstanding returns
// ErrSendInFlight and appends nothing. On failure no assistant message is
// added and the banner carries the reason.
func (c *Conversation) Send(ctx context.Context, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	c.mu.Lock()
	if c.sessionID == "" {
		c.mu.Unlock()
		return nil, errors.ErrNoSessionUser
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, errors.ErrSendInFlight
	}
	c.inFlight = true
	c.banner = ""
	c.messages = append(c.messages, Message{Sender: SenderUser, Text: text, Timestamp: c.nowTime()})
	gen := c.gen
	req := Request{Message: text, SessionID: c.sessionID, Role: c.role}
	c.mu.Unlock()

	reply, err := c.backend.Chat(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	if gen != c.gen {
		// Reset or discarded while waiting; the reply belongs to a log that no longer exists.
		if c.sessionID == "" {
			return nil, errors.ErrNoSessionUser
		}
		return nil, nil
	}
	if err != nil {
		c.banner = api.DisplayMessage(err)
		c.log.Warn().Err(err).Str("session_id", req.SessionID).Msg("chat request failed")
		return nil, err
	}

	msg := Message{
		Sender:    SenderAssistant,
		Text:      reply.Response,
		Timestamp: c.nowTime(),
		Sources:   append([]string{}, reply.Sources...),
	}
	c.messages = append(c.messages, msg)
	return &msg, nil
}

// SendSuggestion sends the i-th suggestion of the conversation's role.
func (c *Conversation) SendSuggestion(ctx context.Context, i int) (*Message, error) {
	suggestions := c.Profile().Suggestions
	if i < 0 || i >= len(suggestions) {
		return nil, errors.Validationf("suggestion %d does not exist", i+1)
	}
	return c.Send(ctx, suggestions[i])
}

// UploadFiles uploads each path in turn. Every successful upload is followed
// by an assistant message confirming it; a failed one sets the banner and
// adds nothing. The returned error joins every failure.
func (c *Conversation) UploadFiles(ctx context.Context, paths []string) ([]UploadResult, error) {
	var (
		results []UploadResult
		errs    []error
	)
	for _, path := range paths {
		result, err := c.uploadOne(ctx, path)
		if err != nil {
			c.mu.Lock()
			c.banner = api.DisplayMessage(err)
			c.mu.Unlock()
			c.log.Warn().Err(err).Str("file", path).Msg("upload failed")
			errs = append(errs, err)
			continue
		}
		results = append(results, *result)

		c.mu.Lock()
		c.messages = append(c.messages, Message{
			Sender:    SenderAssistant,
			Text:      fmt.Sprintf("✅ File %q uploaded and processed successfully. You can now ask questions about its contents.", result.Filename),
			Timestamp: c.nowTime(),
		})
		c.mu.Unlock()
	}
	return results, errors.Join(errs...)
}

func (c *Conversation) uploadOne(ctx context.Context, path string) (*UploadResult, error) {
	f, size, err := c.openFile(path)
	if err != nil {
		return nil, errors.Validationf("cannot open %s: %v", path, err)
	}
	defer f.Close()

	if size > MaxUploadSize {
		return nil, errors.Validationf("%s is too large (maximum %d MB)", filepath.Base(path), MaxUploadSize/(1024*1024))
	}
	result, err := c.backend.Upload(ctx, filepath.Base(path), f)
	if err != nil {
		return nil, err
	}
	if result.Filename == "" {
		result.Filename = filepath.Base(path)
	}
	return result, nil
}

// Messages returns a copy of the log as stored.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Render returns the log with classification applied.
func (c *Conversation) Render() []RenderedMessage {
	msgs := c.Messages()
	out := make([]RenderedMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, RenderedMessage{Message: m, Flags: c.classifier.Classify(m.Text)})
	}
	return out
}

// Pending reports whether a send is outstanding.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Conversation) Banner() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

func (c *Conversation) DismissBanner() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.banner = ""
}

// Reset empties the log and asks the backend to forget the session. The
// local log is cleared even if the backend call fails.
func (c *Conversation) Reset(ctx context.Context) error {
	c.mu.Lock()
	c.messages = nil
	c.banner = ""
	c.gen++
	sessionID := c.sessionID
	c.mu.Unlock()

	if sessionID == "" {
		return nil
	}
	if err := c.backend.ClearHistory(ctx, sessionID); err != nil {
		c.log.Warn().Err(err).Str("session_id", sessionID).Msg("could not clear server conversation")
		return err
	}
	return nil
}

// Discard drops the log and the session identifier. Called when the user's
// session ends; the conversation cannot be used afterwards.
func (c *Conversation) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.banner = ""
	c.sessionID = ""
	c.inFlight = false
	c.gen++
}

func openLocalFile(name string) (io.ReadCloser, int64, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}
