package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	backend *testutil.Backend
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	backend := testutil.NewBackend(t)

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("API_BASEURL", backend.URL())
	t.Setenv("SESSION_MODE", "file")
	t.Setenv("SESSION_PATH", filepath.Join(home, "session.json"))
	t.Setenv("LOGGING_LEVEL", "error")

	return &cli{backend: backend}
}

func (c *cli) run(args ...string) (stdout, stderr string, err error) {
	return c.runWithInput("", args...)
}

// runWithInput executes one command with input piped to stdin
func (c *cli) runWithInput(input string, args ...string) (stdout, stderr string, err error) {
	var out, errOut bytes.Buffer
	a := &app{out: &out, errOut: &errOut, in: strings.NewReader(input)}
	cmd := newRootCmd(a)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func (c *cli) login(t *testing.T) {
	t.Helper()
	c.backend.Handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", "Bearer cli-token")
		testutil.WriteEnvelope(w, http.StatusOK, nil)
	})
	c.backend.Handle(http.MethodGet, "/members/me", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{"id": 1, "authId": "kim", "name": "Kim", "role": "ADMIN"})
	})

	out, _, err := c.run("login", "--id", "kim", "--password", "secret")
	require.NoError(t, err)
	require.Contains(t, out, "logged in as Kim (ADMIN)")
}

// ============================================================================
// Session commands
// ============================================================================

func TestLogin_PersistsSessionAcrossRuns(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	c.backend.Handle(http.MethodGet, "/companies", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{
			"content":       []map[string]interface{}{{"id": 7, "name": "Acme", "status": "ACTIVE"}},
			"totalElements": 1,
			"totalPages":    1,
		})
	})

	out, _, err := c.run("companies", "list", "--view", "active")
	require.NoError(t, err)

	assert.Contains(t, out, "Acme")
	last := c.backend.Last(t)
	assert.Equal(t, "Bearer cli-token", last.Header.Get("Authorization"))
	assert.Equal(t, "page=0&size=10&view=ACTIVE", last.Query)
}

func TestLogin_ReadsPromptsFromPipedInput(t *testing.T) {
	c := newCLI(t)

	var body map[string]string
	c.backend.Handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Authorization", "Bearer cli-token")
		testutil.WriteEnvelope(w, http.StatusOK, nil)
	})
	c.backend.Handle(http.MethodGet, "/members/me", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{"id": 1, "authId": "kim", "name": "Kim", "role": "USER"})
	})

	out, stderr, err := c.runWithInput("kim\nsecret\n", "login")

	require.NoError(t, err)
	assert.Contains(t, out, "logged in as Kim (USER)")
	assert.Contains(t, stderr, "ID: ")
	assert.Contains(t, stderr, "Password: ")
	assert.Equal(t, "kim", body["authId"])
	assert.Equal(t, "secret", body["password"])
}

func TestUnauthorized_PrintsSessionExpired(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	c.backend.Handle(http.MethodGet, "/projects", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteError(w, http.StatusUnauthorized, "", "token expired")
	})

	_, stderr, err := c.run("projects", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Contains(t, stderr, sessionExpiredMessage)

	_, _, err = c.run("whoami")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestLogout(t *testing.T) {
	c := newCLI(t)
	c.login(t)

	out, _, err := c.run("logout", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"result":"logged out"}`, out)

	_, _, err = c.run("whoami")
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

// ============================================================================
// Argument parsing
// ============================================================================

func TestParseProjectMembers(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []domain.ProjectMemberInput
		wantErr bool
	}{
		{name: "empty", raw: nil, want: []domain.ProjectMemberInput{}},
		{
			name: "mixed roles",
			raw:  []string{"3:manager", "4:PARTICIPANT"},
			want: []domain.ProjectMemberInput{
				{MemberID: 3, Role: domain.ProjectRoleManager},
				{MemberID: 4, Role: domain.ProjectRoleParticipant},
			},
		},
		{name: "missing role", raw: []string{"3"}, wantErr: true},
		{name: "bad id", raw: []string{"x:MANAGER"}, wantErr: true},
		{name: "bad role", raw: []string{"3:OWNER"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProjectMembers(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, raw := range []string{"", "0", "-1", "abc"} {
		_, err := parseID(raw)
		assert.Error(t, err, raw)
	}
}
