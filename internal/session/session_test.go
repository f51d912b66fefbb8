package session_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/projecthub/internal/config"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Stores
// ============================================================================

func TestNewStore(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.SessionConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.SessionConfig{Mode: "memory"}},
		{name: "file", cfg: config.SessionConfig{Mode: "file", Path: filepath.Join(t.TempDir(), "s.json")}},
		{name: "unknown", cfg: config.SessionConfig{Mode: "browser"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := session.NewStore(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, store.Token())
		})
	}
}

func TestMemoryStore_UserIsCopied(t *testing.T) {
	store := session.NewMemoryStore()
	member := &domain.Member{ID: 1, Name: "Kim"}
	require.NoError(t, store.SetUser(member))

	member.Name = "changed"
	got, ok := store.User()
	require.True(t, ok)
	assert.Equal(t, "Kim", got.Name)

	got.Name = "changed again"
	again, _ := store.User()
	assert.Equal(t, "Kim", again.Name)
}

func TestFileStore_PersistsUnderFixedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	store, err := session.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetToken("tok-1"))
	require.NoError(t, store.SetUser(&domain.Member{ID: 7, AuthID: "lee", Role: domain.MemberRoleUser}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, session.TokenKey)
	assert.Contains(t, raw, session.UserKey)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := session.NewFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", reopened.Token())
	user, ok := reopened.User()
	require.True(t, ok)
	assert.Equal(t, "lee", user.AuthID)
}

func TestFileStore_ClearRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store, err := session.NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, store.SetToken("tok"))

	require.NoError(t, store.Clear())

	assert.Empty(t, store.Token())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	// Clearing an empty session is a no-op
	assert.NoError(t, store.Clear())
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := session.NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStore_ConcurrentWriters(t *testing.T) {
	store, err := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.SetToken(string(rune('a' + i)))
			_, _ = store.User()
		}(i)
	}
	wg.Wait()

	reopened, err := session.NewFileStore(store.Path())
	require.NoError(t, err)
	assert.Equal(t, store.Token(), reopened.Token())
}

// ============================================================================
// Claims
// ============================================================================

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-only-secret"))
	require.NoError(t, err)
	return token
}

func TestParseClaims(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	tests := []struct {
		name      string
		token     string
		wantRoles []string
		wantAuth  string
	}{
		{
			name:      "roles array",
			token:     sign(t, jwt.MapClaims{"sub": "42", "authId": "kim", "roles": []string{"ADMIN"}, "iat": now.Unix(), "exp": now.Add(time.Hour).Unix()}),
			wantRoles: []string{"ADMIN"},
			wantAuth:  "kim",
		},
		{
			name:      "comma separated auth claim with bearer prefix",
			token:     "Bearer " + sign(t, jwt.MapClaims{"sub": "42", "username": "lee", "auth": "USER, ADMIN", "exp": now.Add(time.Hour).Unix()}),
			wantRoles: []string{"USER", "ADMIN"},
			wantAuth:  "lee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := session.ParseClaims(tt.token)
			require.NoError(t, err)
			assert.Equal(t, "42", claims.Subject)
			assert.Equal(t, tt.wantAuth, claims.AuthID)
			assert.ElementsMatch(t, tt.wantRoles, claims.Roles)
			assert.False(t, claims.Expired(now))
			assert.Equal(t, time.Hour, claims.TimeLeft(now))
		})
	}
}

func TestParseClaims_Expired(t *testing.T) {
	now := time.Now()
	claims, err := session.ParseClaims(sign(t, jwt.MapClaims{"sub": "1", "exp": now.Add(-time.Minute).Unix()}))

	require.NoError(t, err)
	assert.True(t, claims.Expired(now))
	assert.Zero(t, claims.TimeLeft(now))
}

func TestParseClaims_Invalid(t *testing.T) {
	for _, token := range []string{"", "Bearer ", "not-a-jwt"} {
		_, err := session.ParseClaims(token)
		assert.ErrorIs(t, err, session.ErrInvalidToken, token)
	}
}
