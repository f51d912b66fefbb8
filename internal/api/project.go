package api

import (
	"context"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// ProjectAPI manages projects
type ProjectAPI struct {
	client Client
}

// NewProjectAPI creates a new ProjectAPI
func NewProjectAPI(client Client) *ProjectAPI {
	return &ProjectAPI{client: client}
}

// List returns a page of projects visible to the current member
func (p *ProjectAPI) List(ctx context.Context, filter domain.ProjectFilter) (*domain.Page[domain.Project], error) {
	normalizePage(&filter.PageParams)
	if err := validateStruct(filter); err != nil {
		return nil, err
	}

	req := apiclient.Get("/projects").
		With("keyword", filter.Keyword).
		With("status", string(filter.Status))
	page, err := fetch[domain.Page[domain.Project]](ctx, p.client, withPage(req, filter.PageParams))
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// Get fetches one project with its members
func (p *ProjectAPI) Get(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := fetch[domain.Project](ctx, p.client, apiclient.Get("/projects/{id}").ID(id))
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Create opens a project
func (p *ProjectAPI) Create(ctx context.Context, req domain.CreateProjectRequest) (*domain.Project, error) {
	if err := validateProjectDates(req, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	project, err := fetch[domain.Project](ctx, p.client, apiclient.Post("/projects", req))
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Update edits a project
func (p *ProjectAPI) Update(ctx context.Context, id int64, req domain.UpdateProjectRequest) (*domain.Project, error) {
	if err := validateProjectDates(req, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	project, err := fetch[domain.Project](ctx, p.client, apiclient.Put("/projects/{id}", req).ID(id))
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project
func (p *ProjectAPI) Delete(ctx context.Context, id int64) error {
	return send(ctx, p.client, apiclient.Delete("/projects/{id}").ID(id))
}

// Requests lists every approval request raised inside a project
func (p *ProjectAPI) Requests(ctx context.Context, id int64) ([]domain.ApprovalRequest, error) {
	return fetch[[]domain.ApprovalRequest](ctx, p.client, apiclient.Get("/projects/{id}/requests").ID(id))
}

// validateProjectDates runs field validation, then checks the date range
func validateProjectDates(req interface{}, start, end string) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if !domain.DateRangeOrdered(start, end) {
		return &domain.ValidationError{Fields: map[string]string{
			"endDate": "End date must not be before start date",
		}}
	}
	return nil
}
