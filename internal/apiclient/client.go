// Package apiclient is the single point of contact with the ProjectHub
// backend. It owns credential attachment, token rotation, session-expiry
// handling and the normalization of every failure into an error envelope.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/straye-as/projecthub/internal/config"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/logger"
	"github.com/straye-as/projecthub/internal/session"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 16 << 20
)

// Recorder receives per-request measurements
type Recorder interface {
	ObserveRequest(method, route string, status int, duration time.Duration)
	IncUnauthorized(sessionEnded bool)
	IncTokenRotation()
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, int, time.Duration) {}
func (nopRecorder) IncUnauthorized(bool)                              {}
func (nopRecorder) IncTokenRotation()                                 {}

// Options configures a Client
type Options struct {
	BaseURL         string
	Timeout         time.Duration
	WithCredentials bool
	Store           session.Store
	// ExemptPaths are fragments whose 401 is returned to the caller
	ExemptPaths []string
	// OnUnauthorized is the redirect-to-login side effect
	OnUnauthorized func()
	Logger         *zap.Logger
	Recorder       Recorder
	// HTTPClient replaces the default transport, mainly for tests
	HTTPClient *http.Client
	// DefaultHeaders are set on every request before interceptors run
	DefaultHeaders map[string]string
}

// OptionsFromConfig maps application config onto client options
func OptionsFromConfig(cfg *config.APIConfig, store session.Store, log *zap.Logger) Options {
	return Options{
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.TimeoutDuration(),
		WithCredentials: cfg.WithCredentials,
		Store:           store,
		ExemptPaths:     cfg.ExemptPaths,
		Logger:          log,
	}
}

// Client sends requests through the interceptor pipeline
type Client struct {
	baseURL        string
	httpClient     *http.Client
	store          session.Store
	exempt         *PathMatcher
	logger         *zap.Logger
	recorder       Recorder
	defaultHeaders map[string]string

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor
}

// New creates a client with the standard pipeline installed:
// request  -> attach credentials, strip multipart content type, request id
// response -> rotate token, handle unauthorized
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = nopRecorder{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.DefaultHeaders == nil {
		opts.DefaultHeaders = map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
		}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.WithCredentials && httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		httpClient.Jar = jar
	}

	c := &Client{
		baseURL:        strings.TrimRight(opts.BaseURL, "/"),
		httpClient:     httpClient,
		store:          opts.Store,
		exempt:         NewPathMatcher(opts.ExemptPaths...),
		logger:         opts.Logger.Named("apiclient"),
		recorder:       opts.Recorder,
		defaultHeaders: opts.DefaultHeaders,
	}

	c.Use(
		AttachCredentials(c.store),
		StripMultipartContentType(),
		RequestID(),
	)
	c.UseResponse(
		RotateToken(c.store, c.recorder, c.logger),
		HandleUnauthorized(c.store, c.exempt, opts.OnUnauthorized, c.recorder, c.logger),
	)

	return c, nil
}

// Use appends request interceptors
func (c *Client) Use(interceptors ...RequestInterceptor) {
	c.requestInterceptors = append(c.requestInterceptors, interceptors...)
}

// UseResponse appends response interceptors
func (c *Client) UseResponse(interceptors ...ResponseInterceptor) {
	c.responseInterceptors = append(c.responseInterceptors, interceptors...)
}

// Store returns the session the client reads and writes
func (c *Client) Store() session.Store {
	return c.store
}

// IsExempt reports whether a 401 on path is returned to the caller
func (c *Client) IsExempt(path string) bool {
	return c.exempt.Match(path)
}

// BaseURL returns the backend root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends r and always returns an envelope. Transport failures and
// rejected statuses come back as {status:error, code, message, data:null}.
func (c *Client) Do(ctx context.Context, r *Request) *domain.Envelope {
	start := time.Now()

	req, err := c.build(ctx, r)
	if err != nil {
		c.logger.Error("Failed to build API request",
			zap.String("method", r.Method),
			zap.String("route", r.route()),
			zap.Error(err),
		)
		return domain.ErrorEnvelope(0, domain.CodeBadPayload, err.Error())
	}

	for _, interceptor := range c.requestInterceptors {
		if err := interceptor(req); err != nil {
			c.logger.Error("Request interceptor failed", zap.String("route", r.route()), zap.Error(err))
			return domain.ErrorEnvelope(0, domain.CodeBadPayload, err.Error())
		}
	}

	// The multipart encoder supplies the boundary once nothing else claims the header
	if ct, ok := multipartContentType(req.Context()); ok && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", ct)
	}

	log := logger.WithRequest(c.logger, req.Method, req.URL.Path, req.Header.Get("X-Request-ID"))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		duration := time.Since(start)
		c.recorder.ObserveRequest(req.Method, r.route(), 0, duration)

		code := domain.CodeNetwork
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			code = domain.CodeCanceled
		}
		log.Warn("API request failed", zap.String("code", code), zap.Duration("duration", duration), zap.Error(err))
		return domain.ErrorEnvelope(0, code, domain.DefaultErrorMessage)
	}
	defer resp.Body.Close()

	for _, interceptor := range c.responseInterceptors {
		if err := interceptor(resp); err != nil {
			log.Warn("Response interceptor failed", zap.Error(err))
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	duration := time.Since(start)
	c.recorder.ObserveRequest(req.Method, r.route(), resp.StatusCode, duration)
	if err != nil {
		log.Warn("Failed to read API response", zap.Int("status_code", resp.StatusCode), zap.Error(err))
		return domain.ErrorEnvelope(resp.StatusCode, domain.CodeNetwork, domain.DefaultErrorMessage)
	}

	env := c.interpret(req.URL.Path, resp.StatusCode, body)

	log.Debug(fmt.Sprintf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, duration.Truncate(time.Microsecond)),
		zap.String("envelope_status", env.Status),
		zap.Duration("duration", duration),
	)
	if !env.IsSuccess() && env.HTTPStatus >= 500 {
		log.Error("API server error", zap.Int("status_code", env.HTTPStatus), zap.String("message", env.Message))
	}

	return env
}

// build assembles the HTTP request without running interceptors
func (c *Client) build(ctx context.Context, r *Request) (*http.Request, error) {
	path, err := r.expandPath()
	if err != nil {
		return nil, err
	}

	target := c.baseURL + path
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case r.Form != nil:
		buf, ct, err := r.Form.encode()
		if err != nil {
			return nil, err
		}
		body = buf
		ctx = markMultipart(ctx, ct)
	case r.Body != nil:
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	case r.Raw != nil:
		body = r.Raw
		contentType = r.ContentType
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, v := range c.defaultHeaders {
		req.Header.Set(k, v)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range r.Header {
		req.Header.Set(k, v)
	}

	return req, nil
}

// interpret applies the status-validation policy and normalizes the body
func (c *Client) interpret(path string, status int, body []byte) *domain.Envelope {
	var env domain.Envelope
	isEnvelope := json.Unmarshal(body, &env) == nil && env.Status != ""

	if c.exempt.AcceptStatus(path, status) {
		switch {
		case isEnvelope:
			env.HTTPStatus = status
			if env.Data == nil {
				env.Data = json.RawMessage("null")
			}
			return &env
		case status >= 300:
			return domain.ErrorEnvelope(status, domain.CodeBadRequest, "")
		case len(bytes.TrimSpace(body)) == 0:
			return &domain.Envelope{Status: domain.StatusSuccess, Data: json.RawMessage("null"), HTTPStatus: status}
		case json.Valid(body):
			// Bare payloads are treated as the data of a successful call
			return &domain.Envelope{Status: domain.StatusSuccess, Data: json.RawMessage(body), HTTPStatus: status}
		default:
			return domain.ErrorEnvelope(status, domain.CodeBadPayload, "")
		}
	}

	code := domain.CodeBadResponse
	if status >= 400 && status < 500 {
		code = domain.CodeBadRequest
	}
	message := ""
	if isEnvelope {
		if env.Code != "" {
			code = env.Code
		}
		message = env.Message
	}
	return domain.ErrorEnvelope(status, code, message)
}

// Decode returns the typed payload of a successful envelope or its error
func Decode[T any](env *domain.Envelope) (T, error) {
	var out T
	if err := env.Err(); err != nil {
		return out, err
	}
	if err := env.DecodeData(&out); err != nil {
		return out, &domain.APIError{Status: env.HTTPStatus, Code: domain.CodeBadPayload, Message: err.Error()}
	}
	return out, nil
}
