package gateway

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/logger"
	"github.com/straye-as/projecthub/internal/session"
	"go.uber.org/zap"
)

// SessionInfo describes the gateway's current session
type SessionInfo struct {
	Authenticated bool           `json:"authenticated"`
	User          *domain.Member `json:"user,omitempty"`
	Roles         []string       `json:"roles,omitempty"`
	ExpiresAt     *time.Time     `json:"expiresAt,omitempty"`
}

const loginPage = `<!DOCTYPE html>
<html lang="ko">
<head><meta charset="utf-8"><title>ProjectHub</title></head>
<body>
<h1>ProjectHub</h1>
{{if .}}<p role="alert">{{.}}</p>{{end}}
<form method="post" action="/login">
<label>ID <input name="authId" autocomplete="username" required></label>
<label>Password <input name="password" type="password" autocomplete="current-password" required></label>
<button type="submit">Sign in</button>
</form>
</body>
</html>
`

var loginTemplate = template.Must(template.New("login").Parse(loginPage))

// handleLoginPage serves the sign-in form the 401 redirect points at
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := loginTemplate.Execute(w, r.URL.Query().Get("error")); err != nil {
		s.logger.Error("Failed to render login page", zap.Error(err))
	}
}

// handleLogin accepts a JSON body from scripts or a form post from the login
// page; form posts are answered with redirects instead of envelopes
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form := strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")

	var req domain.LoginRequest
	if form {
		if err := r.ParseForm(); err != nil {
			http.Redirect(w, r, LoginPath+"?error="+url.QueryEscape("Invalid form"), http.StatusSeeOther)
			return
		}
		req = domain.LoginRequest{AuthID: r.PostForm.Get("authId"), Password: r.PostForm.Get("password")}
	} else if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorEnvelope(w, http.StatusBadRequest, domain.CodeBadPayload, "Invalid request body")
		return
	}

	member, err := s.services.Auth.Login(r.Context(), req)
	if err != nil {
		if form {
			http.Redirect(w, r, LoginPath+"?error="+url.QueryEscape(loginFailureMessage(err)), http.StatusSeeOther)
			return
		}
		s.writeError(w, err)
		return
	}

	logger.WithMember(s.logger, member).Info("Console login")
	if form {
		http.Redirect(w, r, SessionPath, http.StatusSeeOther)
		return
	}
	writeEnvelope(w, http.StatusOK, member)
}

func loginFailureMessage(err error) string {
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if errors.Is(err, domain.ErrInvalidInput) {
		return "ID and password are required"
	}
	return domain.DefaultErrorMessage
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Auth.Logout(); err != nil {
		s.writeError(w, err)
		return
	}
	writeEnvelope(w, http.StatusOK, nil)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	store := s.client.Store()
	token := store.Token()
	if token == "" {
		writeEnvelope(w, http.StatusOK, SessionInfo{})
		return
	}

	info := SessionInfo{Authenticated: true}
	if user, ok := store.User(); ok {
		info.User = user
	}
	if claims, err := session.ParseClaims(token); err == nil {
		info.Roles = claims.Roles
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			info.ExpiresAt = &exp
		}
	}
	writeEnvelope(w, http.StatusOK, info)
}

// handleProxy forwards /api/<path> to <backend>/<path> through the shared
// client and relays the normalized envelope
func (s *Server) handleProxy(w http.ResponseWriter, r *http.Request) {
	path := "/" + strings.TrimPrefix(chi.URLParam(r, "*"), "/")

	req := &apiclient.Request{
		Method:      r.Method,
		Path:        path,
		Query:       r.URL.Query(),
		Raw:         r.Body,
		ContentType: r.Header.Get("Content-Type"),
		Route:       "proxy",
		Header:      map[string]string{"X-Request-ID": r.Header.Get("X-Request-ID")},
	}

	env := s.client.Do(r.Context(), req)

	if env.HTTPStatus == http.StatusUnauthorized && !s.client.IsExempt(path) {
		http.Redirect(w, r, LoginPath, http.StatusFound)
		return
	}

	status := env.HTTPStatus
	if status == 0 {
		status = http.StatusBadGateway
	}
	writeJSON(w, status, env)
}

// writeError maps an API module error onto an error envelope
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		apiErr *domain.APIError
		ve     *domain.ValidationError
	)
	switch {
	case errors.As(err, &ve):
		env := domain.ErrorEnvelope(http.StatusBadRequest, "VALIDATION_ERROR", "One or more fields failed validation")
		env.Data, _ = json.Marshal(ve.Fields)
		writeJSON(w, http.StatusBadRequest, env)
	case errors.As(err, &apiErr):
		status := apiErr.Status
		if status == 0 {
			status = http.StatusBadGateway
		}
		writeErrorEnvelope(w, status, apiErr.Code, apiErr.Message)
	default:
		s.logger.Error("Console request failed", zap.Error(err))
		writeErrorEnvelope(w, http.StatusInternalServerError, "", "")
	}
}

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	raw, err := json.Marshal(data)
	if err != nil {
		writeErrorEnvelope(w, http.StatusInternalServerError, domain.CodeBadPayload, "")
		return
	}
	writeJSON(w, status, &domain.Envelope{Status: domain.StatusSuccess, Data: raw})
}

func writeErrorEnvelope(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, domain.ErrorEnvelope(status, code, message))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
