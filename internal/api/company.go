package api

import (
	"context"
	"fmt"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// CompanyAPI manages client and developer companies
type CompanyAPI struct {
	client Client
}

// NewCompanyAPI creates a new CompanyAPI
func NewCompanyAPI(client Client) *CompanyAPI {
	return &CompanyAPI{client: client}
}

// List returns a page of companies in the given view; an empty view means ALL
func (c *CompanyAPI) List(ctx context.Context, view domain.CompanyView, page domain.PageParams) (*domain.Page[domain.Company], error) {
	if view == "" {
		view = domain.CompanyViewAll
	}
	if !view.Valid() {
		return nil, fmt.Errorf("%w: company view %q", domain.ErrInvalidEnum, view)
	}
	normalizePage(&page)
	if err := validateStruct(page); err != nil {
		return nil, err
	}

	req := withPage(apiclient.Get("/companies").With("view", string(view)), page)
	result, err := fetch[domain.Page[domain.Company]](ctx, c.client, req)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Get fetches one company
func (c *CompanyAPI) Get(ctx context.Context, id int64) (*domain.Company, error) {
	company, err := fetch[domain.Company](ctx, c.client, apiclient.Get("/companies/{id}").ID(id))
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Create registers a company
func (c *CompanyAPI) Create(ctx context.Context, req domain.CreateCompanyRequest) (*domain.Company, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	company, err := fetch[domain.Company](ctx, c.client, apiclient.Post("/companies", req))
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Update edits a company
func (c *CompanyAPI) Update(ctx context.Context, id int64, req domain.UpdateCompanyRequest) (*domain.Company, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	company, err := fetch[domain.Company](ctx, c.client, apiclient.Put("/companies/{id}", req).ID(id))
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// SetStatus activates or deactivates a company
func (c *CompanyAPI) SetStatus(ctx context.Context, id int64, status domain.CompanyStatus) error {
	req := domain.CompanyStatusRequest{Status: status}
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, c.client, apiclient.Patch("/companies/{id}/status", req).ID(id))
}

// Members lists the accounts belonging to a company
func (c *CompanyAPI) Members(ctx context.Context, id int64) ([]domain.Member, error) {
	return fetch[[]domain.Member](ctx, c.client, apiclient.Get("/companies/{id}/members").ID(id))
}
