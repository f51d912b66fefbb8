package api

import (
	"context"

	"github.com/straye-as/projecthub/internal/apiclient"
	"github.com/straye-as/projecthub/internal/domain"
)

// TaskAPI manages tasks and the approval requests raised on them
type TaskAPI struct {
	client Client
}

// NewTaskAPI creates a new TaskAPI
func NewTaskAPI(client Client) *TaskAPI {
	return &TaskAPI{client: client}
}

// List returns the tasks of a stage in board order
func (t *TaskAPI) List(ctx context.Context, stageID int64) ([]domain.Task, error) {
	return fetch[[]domain.Task](ctx, t.client, apiclient.Get("/tasks").WithInt("stageId", stageID))
}

// Get fetches one task
func (t *TaskAPI) Get(ctx context.Context, id int64) (*domain.Task, error) {
	task, err := fetch[domain.Task](ctx, t.client, apiclient.Get("/tasks/{id}").ID(id))
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Create adds a task to a stage
func (t *TaskAPI) Create(ctx context.Context, req domain.CreateTaskRequest) (*domain.Task, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	task, err := fetch[domain.Task](ctx, t.client, apiclient.Post("/tasks", req))
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update edits a task
func (t *TaskAPI) Update(ctx context.Context, id int64, req domain.UpdateTaskRequest) (*domain.Task, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	task, err := fetch[domain.Task](ctx, t.client, apiclient.Put("/tasks/{id}", req).ID(id))
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Delete removes a task
func (t *TaskAPI) Delete(ctx context.Context, id int64) error {
	return send(ctx, t.client, apiclient.Delete("/tasks/{id}").ID(id))
}

// Move places a task at a position, possibly in another stage
func (t *TaskAPI) Move(ctx context.Context, id int64, req domain.MoveTaskRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	return send(ctx, t.client, apiclient.Patch("/tasks/{id}/order", req).ID(id))
}

// Requests lists the approval requests raised on a task
func (t *TaskAPI) Requests(ctx context.Context, id int64) ([]domain.ApprovalRequest, error) {
	return fetch[[]domain.ApprovalRequest](ctx, t.client, apiclient.Get("/tasks/{id}/requests").ID(id))
}

// CreateRequest asks for approval of a task, uploading any attachments
func (t *TaskAPI) CreateRequest(ctx context.Context, id int64, req domain.CreateApprovalRequest) (*domain.ApprovalRequest, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	form, err := attachmentForm("request", formPayload{Title: req.Title, Content: req.Content, Links: req.Links}, req.Files)
	if err != nil {
		return nil, err
	}

	created, err := fetch[domain.ApprovalRequest](ctx, t.client, apiclient.Post("/tasks/{id}/requests", nil).ID(id).Multipart(form))
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// formPayload is the JSON part of a request or response upload
type formPayload struct {
	Title   string             `json:"title,omitempty"`
	Content string             `json:"content"`
	Links   []domain.LinkInput `json:"links"`
}

// attachmentForm builds a multipart body with the payload as a JSON part
// named partName and one "files" part per attachment
func attachmentForm(partName string, payload formPayload, files []domain.Attachment) (*apiclient.Multipart, error) {
	if payload.Links == nil {
		payload.Links = []domain.LinkInput{}
	}

	form := apiclient.NewMultipart()
	if err := form.JSONField(partName, payload); err != nil {
		return nil, err
	}
	for _, f := range files {
		form.File("files", f.FileName, f.Content)
	}
	return form, nil
}
