// Package chat holds the conversation view: the ordered message log of one
// chat session, the calls that feed it, and how its messages are classified.
package chat

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/config"
	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/internal/utils"
	"github.com/jrsteele09/estate-client/users"
)

// Transport is the subset of *api.Client the chat calls need.
type Transport interface {
	Do(ctx context.Context, req api.Request, result any) error
	Upload(ctx context.Context, path, field, filename string, content io.Reader, result any) error
}

// Request is one outgoing chat turn.
type Request struct {
	Message   string         `json:"message"`
	SessionID string         `json:"session_id"`
	Role      users.RoleType `json:"role"`
}

// Reply is the assistant's answer and the documents it drew on.
type Reply struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// UploadResult is the backend's confirmation of a stored file.
type UploadResult struct {
	Status     string     `json:"status"`
	Filename   string     `json:"filename"`
	FilePath   string     `json:"file_path"`
	FileSize   int64      `json:"file_size"`
	UploadTime utils.Time `json:"upload_time"`
}

// Client talks to the chat, upload and conversation endpoints.
type Client struct {
	transport  Transport
	chatPath   string
	uploadPath string
}

func NewClient(transport Transport, cfg config.ChatConfig) *Client {
	return &Client{
		transport:  transport,
		chatPath:   cfg.GetChatPath(),
		uploadPath: cfg.GetUploadPath(),
	}
}

func (c *Client) Chat(ctx context.Context, req Request) (*Reply, error) {
	var reply Reply
	err := c.transport.Do(ctx, api.Request{Method: http.MethodPost, Path: c.chatPath, Body: req, Auth: true}, &reply)
	if err != nil {
		return nil, errors.Wrapf(err, "chat")
	}
	return &reply, nil
}

// Upload sends one file for ingestion. A response whose status is not
// "success" is reported as ErrUploadFailed.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (*UploadResult, error) {
	var result UploadResult
	if err := c.transport.Upload(ctx, c.uploadPath, "file", filename, content, &result); err != nil {
		return nil, errors.Wrapf(err, "upload %s", filename)
	}
	if result.Status != "success" {
		return nil, errors.Wrapf(errors.ErrUploadFailed, "upload %s: status %q", filename, result.Status)
	}
	return &result, nil
}

// ClearHistory asks the backend to forget the conversation's memory.
func (c *Client) ClearHistory(ctx context.Context, sessionID string) error {
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   "/conversation/" + url.PathEscape(sessionID) + "/clear",
		Auth:   true,
	}, nil)
	if err != nil {
		return errors.Wrapf(err, "clear conversation")
	}
	return nil
}
