package api

import (
	"context"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// AdminAPI covers account administration and the audit log
type AdminAPI struct {
	client Client
}

// NewAdminAPI creates a new AdminAPI
func NewAdminAPI(client Client) *AdminAPI {
	return &AdminAPI{client: client}
}

// ListUsers returns a page of accounts matching the filter
func (a *AdminAPI) ListUsers(ctx context.Context, filter domain.MemberFilter) (*domain.Page[domain.Member], error) {
	normalizePage(&filter.PageParams)
	if err := validateStruct(filter); err != nil {
		return nil, err
	}

	req := apiclient.Get("/admin/users").
		With("keyword", filter.Keyword).
		With("role", string(filter.Role))
	page, err := fetch[domain.Page[domain.Member]](ctx, a.client, withPage(req, filter.PageParams))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetUser fetches one account
func (a *AdminAPI) GetUser(ctx context.Context, id int64) (*domain.Member, error) {
	member, err := fetch[domain.Member](ctx, a.client, apiclient.Get("/admin/users/{id}").ID(id))
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// CreateUser registers an account on behalf of someone else
func (a *AdminAPI) CreateUser(ctx context.Context, req domain.CreateMemberRequest) (*domain.Member, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	member, err := fetch[domain.Member](ctx, a.client, apiclient.Post("/admin/users", req))
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateUser edits an account
func (a *AdminAPI) UpdateUser(ctx context.Context, id int64, req domain.UpdateMemberRequest) (*domain.Member, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	member, err := fetch[domain.Member](ctx, a.client, apiclient.Put("/admin/users/{id}", req).ID(id))
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// SetUserStatus soft-disables (deleted=true) or re-enables an account
func (a *AdminAPI) SetUserStatus(ctx context.Context, id int64, deleted bool) error {
	req := apiclient.Patch("/admin/users/{id}/status", domain.MemberStatusRequest{Deleted: deleted}).ID(id)
	return send(ctx, a.client, req)
}

// ListLogs returns a page of audit records
func (a *AdminAPI) ListLogs(ctx context.Context, filter domain.LogFilter) (*domain.Page[domain.Log], error) {
	normalizePage(&filter.PageParams)
	if err := validateStruct(filter); err != nil {
		return nil, err
	}

	req := apiclient.Get("/logs").
		With("entityName", filter.EntityName).
		With("action", string(filter.Action))
	page, err := fetch[domain.Page[domain.Log]](ctx, a.client, withPage(req, filter.PageParams))
	if err != nil {
		return nil, err
	}
	return &page, nil
}
