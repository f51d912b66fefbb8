package api

import (
	"context"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// RequestAPI records decisions on approval requests
type RequestAPI struct {
	client Client
}

// NewRequestAPI creates a new RequestAPI
func NewRequestAPI(client Client) *RequestAPI {
	return &RequestAPI{client: client}
}

// Approve accepts a request
func (r *RequestAPI) Approve(ctx context.Context, requestID int64, req domain.DecisionRequest) (*domain.ApprovalResponse, error) {
	return r.decide(ctx, "/requests/{id}/approval", requestID, req)
}

// Reject turns a request down
func (r *RequestAPI) Reject(ctx context.Context, requestID int64, req domain.DecisionRequest) (*domain.ApprovalResponse, error) {
	return r.decide(ctx, "/requests/{id}/rejection", requestID, req)
}

func (r *RequestAPI) decide(ctx context.Context, path string, requestID int64, req domain.DecisionRequest) (*domain.ApprovalResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	form, err := attachmentForm("response", formPayload{Content: req.Content, Links: req.Links}, req.Files)
	if err != nil {
		return nil, err
	}

	resp, err := fetch[domain.ApprovalResponse](ctx, r.client, apiclient.Post(path, nil).ID(requestID).Multipart(form))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Response fetches one decision
func (r *RequestAPI) Response(ctx context.Context, id int64) (*domain.ApprovalResponse, error) {
	resp, err := fetch[domain.ApprovalResponse](ctx, r.client, apiclient.Get("/responses/{id}").ID(id))
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteResponse withdraws a decision
func (r *RequestAPI) DeleteResponse(ctx context.Context, id int64) error {
	return send(ctx, r.client, apiclient.Delete("/responses/{id}").ID(id))
}
