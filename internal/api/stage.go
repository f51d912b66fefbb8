package api

import (
	"context"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// StageAPI manages the ordered stages of a project board
type StageAPI struct {
	client Client
}

// NewStageAPI creates a new StageAPI
func NewStageAPI(client Client) *StageAPI {
	return &StageAPI{client: client}
}

// List returns the stages of a project in board order
func (s *StageAPI) List(ctx context.Context, projectID int64) ([]domain.Stage, error) {
	return fetch[[]domain.Stage](ctx, s.client, apiclient.Get("/stages").WithInt("projectId", projectID))
}

// Create appends a stage to a project
func (s *StageAPI) Create(ctx context.Context, req domain.CreateStageRequest) (*domain.Stage, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	stage, err := fetch[domain.Stage](ctx, s.client, apiclient.Post("/stages", req))
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// Update renames a stage
func (s *StageAPI) Update(ctx context.Context, id int64, req domain.UpdateStageRequest) (*domain.Stage, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	stage, err := fetch[domain.Stage](ctx, s.client, apiclient.Put("/stages/{id}", req).ID(id))
	if err != nil {
		return nil, err
	}
	return &stage, nil
}

// Delete removes a stage
func (s *StageAPI) Delete(ctx context.Context, id int64) error {
	return send(ctx, s.client, apiclient.Delete("/stages/{id}").ID(id))
}

// Move places a stage at a new zero-based position
func (s *StageAPI) Move(ctx context.Context, id int64, req domain.MoveStageRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, s.client, apiclient.Patch("/stages/{id}/order", req).ID(id))
}
