package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"time"

	"github.com/jrsteele09/estate-client/internal/api"
	ierrors "github.com/jrsteele09/estate-client/internal/errors"
	"github.com/jrsteele09/estate-client/sessions"
	"github.com/jrsteele09/estate-client/token"
	"github.com/jrsteele09/estate-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Doer sends one backend request. *api.Client satisfies it.
type Doer interface {
	Do(ctx context.Context, req api.Request, result any) error
}

// Client wraps the /auth endpoints. It holds no credentials of its own:
// authenticated calls use whatever the transport's token source currently
// holds, and refresh takes its token explicitly.
type Client struct {
	transport  Doer
	deviceInfo map[string]any
	nowTime    func() time.Time
	log        zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ClientOption {
	return func(c *Client) {
		c.nowTime = nowFunc
	}
}

// WithDeviceInfo replaces the device description sent at login.
func WithDeviceInfo(info map[string]any) ClientOption {
	return func(c *Client) {
		c.deviceInfo = info
	}
}

func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates an auth client over transport.
func NewClient(transport Doer, options ...ClientOption) (*Client, error) {
	if transport == nil {
		return nil, errors.New("[NewClient] transport is required")
	}

	c := &Client{
		transport: transport,
		deviceInfo: map[string]any{
			"platform":   runtime.GOOS,
			"user_agent": "estate-cli",
		},
		nowTime: time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Login exchanges credentials for a pair, the profile and a CSRF token.
// A 401 is reported as ErrInvalidCredentials carrying the server's message.
func (c *Client) Login(ctx context.Context, email, password string, rememberMe bool) (*LoginResult, error) {
	if err := ValidateCredentials(email, password); err != nil {
		return nil, err
	}

	var resp loginResponse
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   loginRoute,
		Body: loginRequest{
			Email:      email,
			Password:   password,
			RememberMe: rememberMe,
			DeviceInfo: c.deviceInfo,
		},
	}, &resp)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrUnauthorized) {
			err = fmt.Errorf("%w: %w", ierrors.ErrInvalidCredentials, err)
		}
		return nil, errors.Wrap(err, "[Login]")
	}
	if resp.Tokens.AccessToken == "" {
		return nil, errors.Wrap(ierrors.ErrServer, "[Login] response carried no access token")
	}

	c.log.Info().Int64("user_id", resp.User.ID).Msg("logged in")
	return &LoginResult{
		User:      resp.User,
		Pair:      resp.Tokens.Pair(c.nowTime()),
		CSRFToken: resp.CSRFToken,
	}, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var result RegisterResult
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodPost, Path: registerRoute, Body: req}, &result); err != nil {
		return nil, errors.Wrap(err, "[Register]")
	}
	return &result, nil
}

// Logout revokes the current server session.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodPost, Path: logoutRoute, Auth: true}, nil); err != nil {
		return errors.Wrap(err, "[Logout]")
	}
	return nil
}

// Refresh exchanges refreshToken for a new pair. The backend takes the token
// as a query parameter.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	if refreshToken == "" {
		return token.Pair{}, RefreshTokenRequiredErr
	}

	var resp token.Response
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   refreshRoute,
		Query:  url.Values{"refresh_token": {refreshToken}},
	}, &resp)
	if err != nil {
		if ierrors.Is(err, ierrors.ErrUnauthorized) {
			err = fmt.Errorf("%w: %w", ierrors.ErrInvalidRefreshToken, err)
		}
		return token.Pair{}, errors.Wrap(err, "[Refresh]")
	}
	if resp.AccessToken == "" {
		return token.Pair{}, errors.Wrap(ierrors.ErrServer, "[Refresh] response carried no access token")
	}

	pair := resp.Pair(c.nowTime())
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return pair, nil
}

// Me fetches the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*users.Profile, error) {
	var profile users.Profile
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: meRoute, Auth: true}, &profile); err != nil {
		return nil, errors.Wrap(err, "[Me]")
	}
	return &profile, nil
}

// CSRFToken requests a fresh anti-forgery token.
func (c *Client) CSRFToken(ctx context.Context) (string, error) {
	var resp csrfResponse
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: csrfTokenRoute, Auth: true}, &resp); err != nil {
		return "", errors.Wrap(err, "[CSRFToken]")
	}
	return resp.CSRFToken, nil
}

// UpdateProfile sends the changed fields and returns the server's profile.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) (*users.Profile, error) {
	if update.Empty() {
		return nil, NothingToUpdateErr
	}

	var profile users.Profile
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodPut, Path: meRoute, Body: update, Auth: true}, &profile); err != nil {
		return nil, errors.Wrap(err, "[UpdateProfile]")
	}
	return &profile, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) (*MessageResult, error) {
	if err := ValidatePasswordChange(current, next); err != nil {
		return nil, err
	}

	var result MessageResult
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   changePasswordRoute,
		Body:   changePasswordRequest{CurrentPassword: current, NewPassword: next},
		Auth:   true,
	}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[ChangePassword]")
	}
	return &result, nil
}

// ForgotPassword asks the backend to mail a reset link. The backend answers
// the same way whether or not the account exists.
func (c *Client) ForgotPassword(ctx context.Context, email string) (*MessageResult, error) {
	if err := users.ValidateEmail(email); err != nil {
		return nil, err
	}

	var result MessageResult
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   forgotPasswordRoute,
		Body:   forgotPasswordRequest{Email: email},
	}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[ForgotPassword]")
	}
	return &result, nil
}

func (c *Client) ResetPassword(ctx context.Context, resetToken, next string) (*MessageResult, error) {
	if err := ValidatePasswordReset(resetToken, next); err != nil {
		return nil, err
	}

	var result MessageResult
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodPost,
		Path:   resetPasswordRoute,
		Body:   resetPasswordRequest{ResetToken: resetToken, NewPassword: next},
	}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[ResetPassword]")
	}
	return &result, nil
}

// ListSessions returns the server sessions (one per device) of the current user.
func (c *Client) ListSessions(ctx context.Context) ([]sessions.Record, error) {
	var records []sessions.Record
	if err := c.transport.Do(ctx, api.Request{Method: http.MethodGet, Path: sessionsRoute, Auth: true}, &records); err != nil {
		return nil, errors.Wrap(err, "[ListSessions]")
	}
	return records, nil
}

func (c *Client) RevokeSession(ctx context.Context, id int64) (*MessageResult, error) {
	var result MessageResult
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   sessionsRoute + "/" + strconv.FormatInt(id, 10),
		Auth:   true,
	}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[RevokeSession]")
	}
	return &result, nil
}

// RevokeAllSessions revokes every session, optionally sparing the current one.
func (c *Client) RevokeAllSessions(ctx context.Context, keepCurrent bool) (*sessions.RevokeAllResult, error) {
	var result sessions.RevokeAllResult
	err := c.transport.Do(ctx, api.Request{
		Method: http.MethodDelete,
		Path:   sessionsRoute,
		Query:  url.Values{"keep_current": {strconv.FormatBool(keepCurrent)}},
		Auth:   true,
	}, &result)
	if err != nil {
		return nil, errors.Wrap(err, "[RevokeAllSessions]")
	}
	return &result, nil
}
