package api

import (
	"context"
	"fmt"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// loginPayload covers backends that return the token in the body as well
// as in the Authorization header
type loginPayload struct {
	AccessToken string `json:"accessToken"`
}

// AuthAPI handles sign-in, sign-up and password recovery
type AuthAPI struct {
	client Client
}

// NewAuthAPI creates a new AuthAPI
func NewAuthAPI(client Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Login signs in and stores the member profile in the session. Any previous
// session is dropped first, so the token comes from the rotated header or,
// failing that, from the response body.
func (a *AuthAPI) Login(ctx context.Context, req domain.LoginRequest) (*domain.Member, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	store := a.client.Store()
	if err := store.Clear(); err != nil {
		return nil, fmt.Errorf("failed to clear previous session: %w", err)
	}

	env := a.client.Do(ctx, apiclient.Post("/login", req))
	if err := env.Err(); err != nil {
		return nil, err
	}

	if store.Token() == "" {
		var payload loginPayload
		if err := env.DecodeData(&payload); err == nil && payload.AccessToken != "" {
			if err := store.SetToken(payload.AccessToken); err != nil {
				return nil, fmt.Errorf("failed to store token: %w", err)
			}
		}
	}
	if store.Token() == "" {
		return nil, &domain.APIError{Status: env.HTTPStatus, Code: domain.CodeBadPayload, Message: "login response carried no token"}
	}

	member, err := fetch[domain.Member](ctx, a.client, apiclient.Get("/members/me"))
	if err != nil {
		return nil, err
	}
	if err := store.SetUser(&member); err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}
	return &member, nil
}

// Logout tears down the local session
func (a *AuthAPI) Logout() error {
	if err := a.client.Store().Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Signup registers a new account
func (a *AuthAPI) Signup(ctx context.Context, req domain.SignupRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, a.client, apiclient.Post("/signup", req))
}

// SendCode asks the backend to mail a verification code
func (a *AuthAPI) SendCode(ctx context.Context, req domain.SendCodeRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, a.client, apiclient.Post("/members/verification", req))
}

// VerifyCode checks a mailed code. The envelope is returned as received so
// callers can show a wrong-code message inline instead of treating it as a
// session failure.
func (a *AuthAPI) VerifyCode(ctx context.Context, req domain.VerifyCodeRequest) (*domain.Envelope, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	return a.client.Do(ctx, apiclient.Post("/verify-code", req)), nil
}

// ResetPassword sets a new password using a verified code
func (a *AuthAPI) ResetPassword(ctx context.Context, req domain.ResetPasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, a.client, apiclient.Patch("/members/password/reset", req))
}
