package api

import (
	"context"
	"fmt"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// UserAPI manages the signed-in member's own account
type UserAPI struct {
	client Client
}

// NewUserAPI creates a new UserAPI
func NewUserAPI(client Client) *UserAPI {
	return &UserAPI{client: client}
}

// Me fetches the current member and refreshes the stored profile
func (u *UserAPI) Me(ctx context.Context) (*domain.Member, error) {
	member, err := fetch[domain.Member](ctx, u.client, apiclient.Get("/members/me"))
	if err != nil {
		return nil, err
	}
	if err := u.client.Store().SetUser(&member); err != nil {
		return nil, fmt.Errorf("failed to store user: %w", err)
	}
	return &member, nil
}

// UpdateProfile edits the current member's contact details
func (u *UserAPI) UpdateProfile(ctx context.Context, req domain.UpdateProfileRequest) (*domain.Member, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	member, err := fetch[domain.Member](ctx, u.client, apiclient.Put("/members/me", req))
	if err != nil {
		return nil, err
	}
	if member.ID != 0 {
		if err := u.client.Store().SetUser(&member); err != nil {
			return nil, fmt.Errorf("failed to store user: %w", err)
		}
	}
	return &member, nil
}

// ChangePassword replaces the current member's password
func (u *UserAPI) ChangePassword(ctx context.Context, req domain.ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, u.client, apiclient.Patch("/members/me/password", req))
}
