// Package api provides one typed adapter per backend resource. Adapters
// validate payloads, send them through the shared client and return the
// backend's error unchanged; they never retry.
package api

import (
	"context"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/session"
)

// Client is the part of *apiclient.Client the adapters depend on
type Client interface {
	Do(ctx context.Context, r *apiclient.Request) *domain.Envelope
	Store() session.Store
}

// Services aggregates every resource adapter
type Services struct {
	Auth      *AuthAPI
	Users     *UserAPI
	Admin     *AdminAPI
	Companies *CompanyAPI
	Projects  *ProjectAPI
	Stages    *StageAPI
	Tasks     *TaskAPI
	Requests  *RequestAPI
}

// New wires all adapters to one client
func New(client Client) *Services {
	return &Services{
		Auth:      NewAuthAPI(client),
		Users:     NewUserAPI(client),
		Admin:     NewAdminAPI(client),
		Companies: NewCompanyAPI(client),
		Projects:  NewProjectAPI(client),
		Stages:    NewStageAPI(client),
		Tasks:     NewTaskAPI(client),
		Requests:  NewRequestAPI(client),
	}
}

// fetch sends r and decodes the payload into T
func fetch[T any](ctx context.Context, c Client, r *apiclient.Request) (T, error) {
	return apiclient.Decode[T](c.Do(ctx, r))
}

// send sends r and reports only whether it succeeded
func send(ctx context.Context, c Client, r *apiclient.Request) error {
	return c.Do(ctx, r).Err()
}

// withPage adds the page and size query parameters
func withPage(r *apiclient.Request, p domain.PageParams) *apiclient.Request {
	return r.WithInt("page", int64(p.Page)).WithInt("size", int64(p.Size))
}

// normalizePage applies the default size to an unset page
func normalizePage(p *domain.PageParams) {
	if p.Size == 0 {
		p.Size = domain.DefaultPageParams().Size
	}
}
