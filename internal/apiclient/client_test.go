package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/session"
	"github.com/straye-as/projecthub/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// Helpers
// ============================================================================

type redirectCounter struct {
	calls atomic.Int32
}

func (r *redirectCounter) toLogin() {
	r.calls.Add(1)
}

func newTestClient(t *testing.T, backend *testutil.Backend, store session.Store, redirects *redirectCounter) *apiclient.Client {
	t.Helper()

	opts := apiclient.Options{
		BaseURL:     backend.URL(),
		Timeout:     5 * time.Second,
		Store:       store,
		ExemptPaths: []string{"verification", "verify-code", "password/reset"},
		Logger:      zap.NewNop(),
	}
	if redirects != nil {
		opts.OnUnauthorized = redirects.toLogin
	}

	client, err := apiclient.New(opts)
	require.NoError(t, err)
	return client
}

func tokenStore(t *testing.T, token string) *session.MemoryStore {
	t.Helper()
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken(token))
	return store
}

// ============================================================================
// Construction
// ============================================================================

func TestNew_RequiresBaseURLAndStore(t *testing.T) {
	_, err := apiclient.New(apiclient.Options{Store: session.NewMemoryStore()})
	assert.Error(t, err)

	_, err = apiclient.New(apiclient.Options{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

// ============================================================================
// Request interceptors
// ============================================================================

func TestDo_AttachesBearerTokenFromStore(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/members/me", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{"id": 1})
	})

	client := newTestClient(t, backend, tokenStore(t, "abc.def.ghi"), nil)

	env := client.Do(context.Background(), apiclient.Get("/members/me"))

	require.True(t, env.IsSuccess())
	assert.Equal(t, "Bearer abc.def.ghi", backend.Last(t).Header.Get("Authorization"))
	assert.NotEmpty(t, backend.Last(t).Header.Get("X-Request-ID"))
}

func TestDo_NoTokenMeansNoAuthorizationHeader(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/companies", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, []interface{}{})
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Get("/companies"))

	require.True(t, env.IsSuccess())
	assert.Empty(t, backend.Last(t).Header.Get("Authorization"))
}

func TestDo_MultipartUsesEncoderBoundary(t *testing.T) {
	backend := testutil.NewBackend(t)

	var (
		title    string
		fileBody string
	)
	backend.Handle(http.MethodPost, "/tasks/{id}/requests", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		title = r.FormValue("title")
		f, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		fileBody = string(data)
		testutil.WriteEnvelope(w, http.StatusCreated, map[string]interface{}{"id": 9})
	})

	client := newTestClient(t, backend, tokenStore(t, "tok"), nil)

	form := apiclient.NewMultipart().
		Field("title", "Design review").
		File("files", "notes.txt", strings.NewReader("hello"))
	req := apiclient.Post("/tasks/{id}/requests", nil).ID(3).Multipart(form)

	env := client.Do(context.Background(), req)

	require.True(t, env.IsSuccess(), env.Message)
	contentType := backend.Last(t).Header.Get("Content-Type")
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="), contentType)
	assert.NotContains(t, contentType, "application/json")
	assert.Equal(t, "Design review", title)
	assert.Equal(t, "hello", fileBody)
	assert.Equal(t, "/tasks/3/requests", backend.Last(t).Path)
}

func TestDo_JSONBodyKeepsDefaultContentType(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/companies", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusCreated, map[string]interface{}{"id": 1})
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Post("/companies", map[string]string{"name": "Acme"}))

	require.True(t, env.IsSuccess())
	assert.Equal(t, "application/json", backend.Last(t).Header.Get("Content-Type"))
	assert.JSONEq(t, `{"name":"Acme"}`, string(backend.Last(t).Body))
}

func TestUse_CustomRequestInterceptorRuns(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/stages", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, []interface{}{})
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)
	client.Use(func(req *http.Request) error {
		req.Header.Set("X-Client", "projecthub-cli")
		return nil
	})

	client.Do(context.Background(), apiclient.Get("/stages"))

	assert.Equal(t, "projecthub-cli", backend.Last(t).Header.Get("X-Client"))
}

func TestUse_FailingInterceptorAbortsRequest(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := newTestClient(t, backend, session.NewMemoryStore(), nil)
	client.Use(func(req *http.Request) error {
		return errors.New("refused")
	})

	env := client.Do(context.Background(), apiclient.Get("/stages"))

	assert.False(t, env.IsSuccess())
	assert.Equal(t, domain.CodeBadPayload, env.Code)
	assert.Empty(t, backend.Requests())
}

// ============================================================================
// Response interceptors
// ============================================================================

func TestDo_PersistsRotatedToken(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/projects", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", "Bearer rotated-token")
		testutil.WriteEnvelope(w, http.StatusOK, []interface{}{})
	})

	store := tokenStore(t, "old-token")
	client := newTestClient(t, backend, store, nil)

	env := client.Do(context.Background(), apiclient.Get("/projects"))

	require.True(t, env.IsSuccess())
	assert.Equal(t, "rotated-token", store.Token())
}

func TestDo_RotatedTokenUsedOnNextRequest(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Authorization", "Bearer fresh")
		testutil.WriteEnvelope(w, http.StatusOK, nil)
	})
	backend.Handle(http.MethodGet, "/members/me", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{"id": 1})
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	client.Do(context.Background(), apiclient.Post("/login", map[string]string{"authId": "a"}))
	client.Do(context.Background(), apiclient.Get("/members/me"))

	assert.Equal(t, "Bearer fresh", backend.Last(t).Header.Get("Authorization"))
}

func TestDo_UnauthorizedOnExemptPathIsPassedThrough(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "verify code", path: "/verify-code"},
		{name: "member verification", path: "/members/verification"},
		{name: "password reset", path: "/members/password/reset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := testutil.NewBackend(t)
			backend.Handle(http.MethodPost, tt.path, func(w http.ResponseWriter, r *http.Request) {
				testutil.WriteError(w, http.StatusUnauthorized, "", "코드가 일치하지 않습니다")
			})

			store := tokenStore(t, "keep-me")
			redirects := &redirectCounter{}
			client := newTestClient(t, backend, store, redirects)

			env := client.Do(context.Background(), apiclient.Post(tt.path, map[string]string{"code": "000000"}))

			assert.Equal(t, domain.StatusError, env.Status)
			assert.Equal(t, "코드가 일치하지 않습니다", env.Message)
			assert.Equal(t, http.StatusUnauthorized, env.HTTPStatus)
			assert.Equal(t, "keep-me", store.Token(), "token must survive an exempt 401")
			assert.Zero(t, redirects.calls.Load(), "no redirect on an exempt 401")
		})
	}
}

func TestDo_VerifyCodeScenario_BodyReturnedUnmodified(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/verify-code", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","message":"코드가 일치하지 않습니다"}`))
	})

	redirects := &redirectCounter{}
	client := newTestClient(t, backend, session.NewMemoryStore(), redirects)

	env := client.Do(context.Background(), apiclient.Post("/verify-code", map[string]string{"code": "123456"}))

	assert.Equal(t, domain.StatusError, env.Status)
	assert.Empty(t, env.Code)
	assert.Equal(t, "코드가 일치하지 않습니다", env.Message)
	assert.False(t, env.HasData())
	assert.Zero(t, redirects.calls.Load())
}

func TestDo_UnauthorizedPurgesTokenAndRedirectsOnce(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/projects", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "로그인이 만료되었습니다")
	})

	store := tokenStore(t, "expired")
	require.NoError(t, store.SetUser(&domain.Member{ID: 1, Name: "Kim"}))
	redirects := &redirectCounter{}
	client := newTestClient(t, backend, store, redirects)

	env := client.Do(context.Background(), apiclient.Get("/projects"))

	assert.Equal(t, domain.StatusError, env.Status)
	assert.Equal(t, "TOKEN_EXPIRED", env.Code)
	assert.Equal(t, http.StatusUnauthorized, env.HTTPStatus)
	assert.Empty(t, store.Token())
	_, hasUser := store.User()
	assert.False(t, hasUser)
	assert.Equal(t, int32(1), redirects.calls.Load())

	// Each occurrence redirects exactly once
	client.Do(context.Background(), apiclient.Get("/projects"))
	assert.Equal(t, int32(2), redirects.calls.Load())
}

func TestDo_UnauthorizedOnLookalikePathStillEndsSession(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/verifications", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteError(w, http.StatusUnauthorized, "", "expired")
	})

	store := tokenStore(t, "tok")
	redirects := &redirectCounter{}
	client := newTestClient(t, backend, store, redirects)

	client.Do(context.Background(), apiclient.Get("/verifications"))

	assert.Empty(t, store.Token())
	assert.Equal(t, int32(1), redirects.calls.Load())
}

func TestDo_MeWithoutTokenScenario(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/members/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			testutil.WriteError(w, http.StatusUnauthorized, "", "unauthorized")
			return
		}
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{"id": 1})
	})

	store := session.NewMemoryStore()
	redirects := &redirectCounter{}
	client := newTestClient(t, backend, store, redirects)

	env := client.Do(context.Background(), apiclient.Get("/members/me"))

	assert.Empty(t, backend.Last(t).Header.Get("Authorization"))
	assert.False(t, env.IsSuccess())
	assert.Empty(t, store.Token())
	assert.Equal(t, int32(1), redirects.calls.Load())
}

// ============================================================================
// Status policy and normalization
// ============================================================================

func TestDo_NonExemptClientErrorIsNormalized(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPost, "/companies", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteError(w, http.StatusBadRequest, "DUPLICATE_NAME", "이미 존재하는 회사입니다")
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Post("/companies", map[string]string{"name": "Acme"}))

	assert.Equal(t, domain.StatusError, env.Status)
	assert.Equal(t, "DUPLICATE_NAME", env.Code)
	assert.Equal(t, "이미 존재하는 회사입니다", env.Message)
	assert.False(t, env.HasData())

	var apiErr *domain.APIError
	require.ErrorAs(t, env.Err(), &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestDo_ExemptPathServerErrorIsRejected(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodPatch, "/members/password/reset", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteError(w, http.StatusInternalServerError, "", "boom")
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Patch("/members/password/reset", map[string]string{}))

	assert.Equal(t, domain.StatusError, env.Status)
	assert.Equal(t, domain.CodeBadResponse, env.Code)
	assert.Equal(t, http.StatusInternalServerError, env.HTTPStatus)
}

func TestDo_NonEnvelopeErrorGetsGenericMessage(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/stages/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Get("/stages/{id}").ID(4))

	assert.Equal(t, domain.StatusError, env.Status)
	assert.Equal(t, domain.CodeBadResponse, env.Code)
	assert.Equal(t, domain.DefaultErrorMessage, env.Message)
}

func TestDo_NetworkFailureIsNormalized(t *testing.T) {
	backend := testutil.NewBackend(t)
	url := backend.URL()
	backend.Server.Close()

	client, err := apiclient.New(apiclient.Options{
		BaseURL: url,
		Store:   session.NewMemoryStore(),
		Logger:  zap.NewNop(),
	})
	require.NoError(t, err)

	env := client.Do(context.Background(), apiclient.Get("/companies"))

	assert.Equal(t, domain.StatusError, env.Status)
	assert.Equal(t, domain.CodeNetwork, env.Code)
	assert.Equal(t, domain.DefaultErrorMessage, env.Message)
	assert.Zero(t, env.HTTPStatus)
	assert.ErrorIs(t, env.Err(), domain.ErrNetwork)
}

func TestDo_CanceledContextIsNormalized(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/companies", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, nil)
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	env := client.Do(ctx, apiclient.Get("/companies"))

	assert.Equal(t, domain.CodeCanceled, env.Code)
}

func TestDo_UnboundPathParameterIsRejectedBeforeSending(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Get("/companies/{id}"))

	assert.Equal(t, domain.CodeBadPayload, env.Code)
	assert.Empty(t, backend.Requests())
}

func TestDo_EmptySuccessBody(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodDelete, "/stages/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	env := client.Do(context.Background(), apiclient.Delete("/stages/{id}").ID(2))

	assert.True(t, env.IsSuccess())
	assert.False(t, env.HasData())
}

func TestDo_RepeatedGetYieldsIdenticalEnvelopes(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/companies", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{
			"content":       []map[string]interface{}{{"id": 1, "name": "Acme", "status": "ACTIVE"}},
			"totalElements": 1,
			"totalPages":    1,
			"number":        0,
			"size":          10,
		})
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)
	req := func() *apiclient.Request {
		return apiclient.Get("/companies").With("view", "ACTIVE").With("page", "0").With("size", "10")
	}

	first := client.Do(context.Background(), req())
	second := client.Do(context.Background(), req())

	require.True(t, first.IsSuccess())
	assert.Equal(t, first, second)
	assert.Len(t, backend.Requests(), 2, "both calls must reach the server")
	assert.Equal(t, "page=0&size=10&view=ACTIVE", backend.Last(t).Query)
}

// ============================================================================
// Decode
// ============================================================================

func TestDecode_TypedPayload(t *testing.T) {
	backend := testutil.NewBackend(t)
	backend.Handle(http.MethodGet, "/companies/{id}", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteEnvelope(w, http.StatusOK, map[string]interface{}{
			"id": 7, "name": "Acme", "status": "ACTIVE", "createdAt": "2024-03-01T09:30:00",
		})
	})

	client := newTestClient(t, backend, session.NewMemoryStore(), nil)

	company, err := apiclient.Decode[domain.Company](client.Do(context.Background(), apiclient.Get("/companies/{id}").ID(7)))

	require.NoError(t, err)
	assert.Equal(t, int64(7), company.ID)
	assert.Equal(t, domain.CompanyStatusActive, company.Status)
	assert.Equal(t, 2024, company.CreatedAt.Year())
}

func TestDecode_ErrorEnvelope(t *testing.T) {
	env := domain.ErrorEnvelope(http.StatusNotFound, domain.CodeBadRequest, "없음")

	_, err := apiclient.Decode[domain.Company](env)

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
