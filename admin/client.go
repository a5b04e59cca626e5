package admin

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/estate-client/internal/api"
	"github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/users"
)

const (
	analyticsRoute = "/admin/analytics"
	usersRoute     = "/auth/users"
	auditLogsRoute = "/auth/audit-logs"
)

// Doer sends one backend request. *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req api.Request, result any) error
}

type Client struct {
	transport Doer
}

func NewClient(transport Doer) *Client {
	return &Client{transport: transport}
}

func (c *Client) Analytics(ctx context.Context) (*Analytics, error) {
	var a Analytics
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: analyticsRoute, Auth: true}, &a); err != nil {
		return nil, errors.Wrapf(err, "get analytics")
	}
	return &a, nil
}

func (c *Client) ListUsers(ctx context.Context, filter UserFilter) ([]users.Profile, error) {
	q := page(filter.Skip, filter.Limit)
	if filter.Role != "" {
		if !users.RoleType(filter.Role).Valid() {
			return nil, errors.Validationf("unknown role %q", filter.Role)
		}
		q.Set("role", filter.Role)
	}
	if filter.IsActive != nil {
		q.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}

	var list []users.Profile
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: usersRoute, Query: q, Auth: true}, &list); err != nil {
		return nil, errors.Wrapf(err, "list users")
	}
	return list, nil
}

// DeactivateUser disables the account and ends every session it has. It
// returns the server's acknowledgement.
func (c *Client) DeactivateUser(ctx context.Context, id int64) (string, error) {
	if id <= 0 {
		return "", errors.Validationf("user id must be positive")
	}
	var result messageResult
	path := usersRoute + "/" + strconv.FormatInt(id, 10) + "/deactivate"
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodPut, Path: path, Auth: true}, &result); err != nil {
		return "", errors.Wrapf(err, "deactivate user %d", id)
	}
	return result.Message, nil
}

// AuditLogs returns entries newest first.
func (c *Client) AuditLogs(ctx context.Context, filter AuditFilter) ([]AuditEntry, error) {
	q := page(filter.Skip, filter.Limit)
	if filter.UserID > 0 {
		q.Set("user_id", strconv.FormatInt(filter.UserID, 10))
	}
	if filter.Action != "" {
		q.Set("action", filter.Action)
	}

	var entries []AuditEntry
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: auditLogsRoute, Query: q, Auth: true}, &entries); err != nil {
		return nil, errors.Wrapf(err, "list audit logs")
	}
	return entries, nil
}

func page(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
