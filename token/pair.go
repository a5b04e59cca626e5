package token

import (
	"strings"
	"time"

	"github.com/jrsteele09/estate-client/internal/utils"
	"golang.org/x/oauth2"
)

// Pair is the unit of authentication state: access token, refresh token and
// the instant the access token stops being accepted.
type Pair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsZero reports whether p carries no access token.
func (p Pair) IsZero() bool {
	return p.AccessToken == ""
}

// Expired reports whether the access token is no longer in the future at now.
// A pair without an expiry is treated as expired.
func (p Pair) Expired(now time.Time) bool {
	return p.ExpiresAt.IsZero() || !p.ExpiresAt.After(now)
}

// RefreshDelay is how long to wait before renewing: (expiresAt - now) - margin,
// clamped to zero.
func (p Pair) RefreshDelay(now time.Time, margin time.Duration) time.Duration {
	delay := p.ExpiresAt.Sub(now) - margin
	if delay < 0 {
		return 0
	}
	return delay
}

// OAuth2 converts the pair for use with an oauth2.Transport.
func (p Pair) OAuth2() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       p.ExpiresAt,
	}
}

// Response is the token block the backend returns from login and refresh.
type Response struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int64  `json:"expires_in,omitempty"`
	ExpiresAt    string `json:"expires_at,omitempty"`
}

// Pair resolves the expiry in order: explicit expires_at, expires_in relative
// to now, then the access token's own exp claim.
func (r Response) Pair(now time.Time) Pair {
	p := Pair{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}

	if at := strings.TrimSpace(r.ExpiresAt); at != "" {
		if t, err := utils.ParseTime(at); err == nil {
			p.ExpiresAt = t
			return p
		}
	}
	if r.ExpiresIn > 0 {
		p.ExpiresAt = now.Add(time.Duration(r.ExpiresIn) * time.Second).UTC()
		return p
	}
	if claims, err := ParseClaims(r.AccessToken); err == nil && !claims.ExpiresAt.IsZero() {
		p.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return p
}
