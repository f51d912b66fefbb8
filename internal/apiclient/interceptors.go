package apiclient

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/straye-as/projecthub/internal/session"
	"go.uber.org/zap"
)

// RequestInterceptor runs on every outgoing request before it is sent
type RequestInterceptor func(req *http.Request) error

// ResponseInterceptor runs on every response before its body is read.
// resp.Request is the request that produced it.
type ResponseInterceptor func(resp *http.Response) error

// AttachCredentials sets the bearer token from the store when one is present
func AttachCredentials(store session.Store) RequestInterceptor {
	return func(req *http.Request) error {
		if token := store.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// StripMultipartContentType removes any preset Content-Type from multipart
// requests so the encoder's boundary-bearing value is used instead
func StripMultipartContentType() RequestInterceptor {
	return func(req *http.Request) error {
		if _, ok := multipartContentType(req.Context()); ok {
			req.Header.Del("Content-Type")
		}
		return nil
	}
}

// RequestID tags requests that do not already carry an X-Request-ID
func RequestID() RequestInterceptor {
	return func(req *http.Request) error {
		if req.Header.Get("X-Request-ID") == "" {
			req.Header.Set("X-Request-ID", uuid.New().String())
		}
		return nil
	}
}

// RotateToken persists a token the server sent back in the Authorization
// header, with the Bearer prefix stripped
func RotateToken(store session.Store, recorder Recorder, logger *zap.Logger) ResponseInterceptor {
	return func(resp *http.Response) error {
		header := strings.TrimSpace(resp.Header.Get("Authorization"))
		if header == "" {
			return nil
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			return nil
		}
		if err := store.SetToken(token); err != nil {
			logger.Warn("Failed to persist rotated token", zap.Error(err))
			return nil
		}
		recorder.IncTokenRotation()
		return nil
	}
}

// HandleUnauthorized ends the session on a 401, except for paths the matcher
// exempts. onExpired runs once per ending, after the store is cleared.
func HandleUnauthorized(store session.Store, exempt *PathMatcher, onExpired func(), recorder Recorder, logger *zap.Logger) ResponseInterceptor {
	return func(resp *http.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}

		path := ""
		if resp.Request != nil && resp.Request.URL != nil {
			path = resp.Request.URL.Path
		}

		if exempt.Match(path) {
			recorder.IncUnauthorized(false)
			return nil
		}

		logger.Info("Session expired, clearing stored credentials", zap.String("path", path))
		if err := store.Clear(); err != nil {
			logger.Error("Failed to clear session", zap.Error(err))
		}
		recorder.IncUnauthorized(true)
		if onExpired != nil {
			onExpired()
		}
		return nil
	}
}
