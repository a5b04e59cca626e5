package store_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jrsteele09/estate-client/token/store"
	storerepofake "github.com/jrsteele09/estate-client/token/store/repofake"
	"github.com/jrsteele09/estate-client/users"
	"github.com/stretchr/testify/require"
)

func TestSealedKV(t *testing.T) {
	inner := storerepofake.NewFakeKV()
	kv, err := store.NewSealedKV(inner, "correct horse battery staple")
	require.NoError(t, err)

	require.NoError(t, kv.Set(map[string][]byte{"auth_tokens": []byte(`{"access_token":"secret-access"}`)}))

	raw, err := inner.Get("auth_tokens")
	require.NoError(t, err)
	require.NotContains(t, string(raw), "secret-access")

	plain, err := kv.Get("auth_tokens")
	require.NoError(t, err)
	require.JSONEq(t, `{"access_token":"secret-access"}`, string(plain))

	t.Run("wrong key", func(t *testing.T) {
		other, err := store.NewSealedKV(inner, "another secret")
		require.NoError(t, err)
		_, err = other.Get("auth_tokens")
		require.ErrorIs(t, err, store.ErrUnsealFailed)
	})

	t.Run("values are bound to their key", func(t *testing.T) {
		inner.Put("user_data", raw)
		_, err := kv.Get("user_data")
		require.ErrorIs(t, err, store.ErrUnsealFailed)
	})

	t.Run("missing key passes through", func(t *testing.T) {
		_, err := kv.Get("nothing")
		require.ErrorIs(t, err, store.ErrKeyNotFound)
	})

	_, err = store.NewSealedKV(inner, "")
	require.Error(t, err)
}

func TestSealedKV_UnderStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	file, err := store.NewFileKV(path)
	require.NoError(t, err)
	sealed, err := store.NewSealedKV(file, "k")
	require.NoError(t, err)

	f := setupTestFixture(t)
	require.NoError(t, store.New(sealed).Save(f.pair, f.user, "csrf"))

	loaded := store.New(sealed).Load()
	require.Equal(t, "access-1", loaded.Pair.AccessToken)
	require.Equal(t, users.RoleAgent, loaded.User.Roles[0])

	// read without the key, the same file looks like nothing is stored
	require.True(t, store.New(file).Load().Empty())

	wrong, err := store.NewSealedKV(file, "other")
	require.NoError(t, err)
	require.True(t, store.New(wrong).Load().Empty())
	require.False(t, strings.Contains(readFile(t, path), "access-1"))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
