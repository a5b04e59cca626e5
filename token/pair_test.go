package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/estate-client/token"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestPair_RefreshDelay(t *testing.T) {
	margin := 5 * time.Minute

	t.Run("expiry minus margin", func(t *testing.T) {
		p := token.Pair{AccessToken: "a", ExpiresAt: testNow.Add(30 * time.Minute)}
		require.Equal(t, 25*time.Minute, p.RefreshDelay(testNow, margin))
	})

	t.Run("inside the margin clamps to zero", func(t *testing.T) {
		p := token.Pair{AccessToken: "a", ExpiresAt: testNow.Add(2 * time.Minute)}
		require.Equal(t, time.Duration(0), p.RefreshDelay(testNow, margin))
	})

	t.Run("already expired clamps to zero", func(t *testing.T) {
		p := token.Pair{AccessToken: "a", ExpiresAt: testNow.Add(-time.Hour)}
		require.Equal(t, time.Duration(0), p.RefreshDelay(testNow, margin))
	})
}

func TestPair_Expired(t *testing.T) {
	require.True(t, token.Pair{AccessToken: "a"}.Expired(testNow), "no expiry counts as expired")
	require.True(t, token.Pair{AccessToken: "a", ExpiresAt: testNow}.Expired(testNow))
	require.False(t, token.Pair{AccessToken: "a", ExpiresAt: testNow.Add(time.Second)}.Expired(testNow))
}

func TestPair_OAuth2(t *testing.T) {
	p := token.Pair{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: testNow}
	tok := p.OAuth2()
	require.Equal(t, "access", tok.AccessToken)
	require.Equal(t, "refresh", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.TokenType)
	require.Equal(t, testNow, tok.Expiry)
}

func TestResponse_Pair(t *testing.T) {
	t.Run("explicit expires_at wins", func(t *testing.T) {
		r := token.Response{AccessToken: "a", RefreshToken: "r", ExpiresIn: 60, ExpiresAt: "2025-03-14T13:00:00Z"}
		require.Equal(t, time.Date(2025, 3, 14, 13, 0, 0, 0, time.UTC), r.Pair(testNow).ExpiresAt)
	})

	t.Run("naive expires_at is read as UTC", func(t *testing.T) {
		r := token.Response{AccessToken: "a", ExpiresAt: "2025-03-14T13:30:00.123456"}
		got := r.Pair(testNow).ExpiresAt
		require.Equal(t, time.UTC, got.Location())
		require.Equal(t, 13, got.Hour())
		require.Equal(t, 30, got.Minute())
	})

	t.Run("expires_in relative to now", func(t *testing.T) {
		r := token.Response{AccessToken: "a", ExpiresIn: 1800}
		require.Equal(t, testNow.Add(30*time.Minute), r.Pair(testNow).ExpiresAt)
	})

	t.Run("falls back to the exp claim", func(t *testing.T) {
		exp := testNow.Add(45 * time.Minute)
		r := token.Response{AccessToken: signedToken(t, jwtlib.MapClaims{"exp": exp.Unix()})}
		require.Equal(t, exp, r.Pair(testNow).ExpiresAt)
	})

	t.Run("nothing to go on leaves the pair expired", func(t *testing.T) {
		r := token.Response{AccessToken: "opaque"}
		require.True(t, r.Pair(testNow).Expired(testNow))
	})
}

func TestParseClaims(t *testing.T) {
	exp := testNow.Add(time.Hour)
	raw := signedToken(t, jwtlib.MapClaims{
		"sub":   "42",
		"type":  "access",
		"roles": []string{"agent", "client"},
		"iat":   testNow.Unix(),
		"exp":   exp.Unix(),
	})

	claims, err := token.ParseClaims(raw)
	require.NoError(t, err)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "access", claims.Type)
	require.Equal(t, []string{"agent", "client"}, claims.Roles)
	require.True(t, claims.IssuedAt.Equal(testNow))
	require.True(t, claims.ExpiresAt.Equal(exp))

	_, err = token.ParseClaims("")
	require.Error(t, err)
	_, err = token.ParseClaims("not-a-jwt")
	require.Error(t, err)
}
