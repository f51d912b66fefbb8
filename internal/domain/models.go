package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// enum is implemented by every closed string type in this package
type enum interface {
	~string
	Valid() bool
}

func parseEnum[E enum](kind, raw string) (E, error) {
	e := E(strings.ToUpper(strings.TrimSpace(raw)))
	if !e.Valid() {
		return "", fmt.Errorf("%w: %s %q", ErrInvalidEnum, kind, raw)
	}
	return e, nil
}

// CompanyStatus represents whether a company is active
type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "ACTIVE"
	CompanyStatusInactive CompanyStatus = "INACTIVE"
)

func (s CompanyStatus) Valid() bool {
	return s == CompanyStatusActive || s == CompanyStatusInactive
}

// ParseCompanyStatus converts user input to a CompanyStatus
func ParseCompanyStatus(raw string) (CompanyStatus, error) {
	return parseEnum[CompanyStatus]("company status", raw)
}

// CompanyView filters company listings
type CompanyView string

const (
	CompanyViewActive   CompanyView = "ACTIVE"
	CompanyViewInactive CompanyView = "INACTIVE"
	CompanyViewAll      CompanyView = "ALL"
)

func (v CompanyView) Valid() bool {
	switch v {
	case CompanyViewActive, CompanyViewInactive, CompanyViewAll:
		return true
	}
	return false
}

// ParseCompanyView converts user input to a CompanyView
func ParseCompanyView(raw string) (CompanyView, error) {
	return parseEnum[CompanyView]("company view", raw)
}

// ProjectStatus represents the contractual phase of a project
type ProjectStatus string

const (
	ProjectStatusContract    ProjectStatus = "CONTRACT"
	ProjectStatusInProgress  ProjectStatus = "IN_PROGRESS"
	ProjectStatusDelivered   ProjectStatus = "DELIVERED"
	ProjectStatusMaintenance ProjectStatus = "MAINTENANCE"
	ProjectStatusOnHold      ProjectStatus = "ON_HOLD"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusContract, ProjectStatusInProgress, ProjectStatusDelivered,
		ProjectStatusMaintenance, ProjectStatusOnHold:
		return true
	}
	return false
}

// ParseProjectStatus converts user input to a ProjectStatus
func ParseProjectStatus(raw string) (ProjectStatus, error) {
	return parseEnum[ProjectStatus]("project status", raw)
}

// TaskStatus represents where a task is in its approval cycle
type TaskStatus string

const (
	TaskStatusPending         TaskStatus = "PENDING"
	TaskStatusWaitingApproval TaskStatus = "WAITING_APPROVAL"
	TaskStatusApproved        TaskStatus = "APPROVED"
	TaskStatusRejected        TaskStatus = "REJECTED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusWaitingApproval, TaskStatusApproved, TaskStatusRejected:
		return true
	}
	return false
}

// ParseTaskStatus converts user input to a TaskStatus
func ParseTaskStatus(raw string) (TaskStatus, error) {
	return parseEnum[TaskStatus]("task status", raw)
}

// RequestStatus represents the outcome of an approval request
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "PENDING"
	RequestStatusApproved RequestStatus = "APPROVED"
	RequestStatusRejected RequestStatus = "REJECTED"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return true
	}
	return false
}

// ParseRequestStatus converts user input to a RequestStatus
func ParseRequestStatus(raw string) (RequestStatus, error) {
	return parseEnum[RequestStatus]("request status", raw)
}

// MemberRole is the system-wide role of an account
type MemberRole string

const (
	MemberRoleUser  MemberRole = "USER"
	MemberRoleAdmin MemberRole = "ADMIN"
)

func (r MemberRole) Valid() bool {
	return r == MemberRoleUser || r == MemberRoleAdmin
}

// ParseMemberRole converts user input to a MemberRole
func ParseMemberRole(raw string) (MemberRole, error) {
	return parseEnum[MemberRole]("member role", raw)
}

// ProjectRole is the role a member holds inside one project
type ProjectRole string

const (
	ProjectRoleManager     ProjectRole = "MANAGER"
	ProjectRoleParticipant ProjectRole = "PARTICIPANT"
)

func (r ProjectRole) Valid() bool {
	return r == ProjectRoleManager || r == ProjectRoleParticipant
}

// ParseProjectRole converts user input to a ProjectRole
func ParseProjectRole(raw string) (ProjectRole, error) {
	return parseEnum[ProjectRole]("project role", raw)
}

// LogAction is the kind of change recorded in the audit log
type LogAction string

const (
	LogActionCreate LogAction = "CREATE"
	LogActionUpdate LogAction = "UPDATE"
	LogActionDelete LogAction = "DELETE"
)

func (a LogAction) Valid() bool {
	switch a {
	case LogActionCreate, LogActionUpdate, LogActionDelete:
		return true
	}
	return false
}

// ParseLogAction converts user input to a LogAction
func ParseLogAction(raw string) (LogAction, error) {
	return parseEnum[LogAction]("log action", raw)
}

// Company is a client or developer organisation
type Company struct {
	ID             int64         `json:"id"`
	Name           string        `json:"name"`
	BusinessNumber string        `json:"businessNumber,omitempty"`
	CEOName        string        `json:"ceoName,omitempty"`
	Phone          string        `json:"phoneNumber,omitempty"`
	Email          string        `json:"email,omitempty"`
	Address        string        `json:"address,omitempty"`
	Status         CompanyStatus `json:"status"`
	CreatedAt      Timestamp     `json:"createdAt"`
}

// ProjectMember links a member to a project with a role
type ProjectMember struct {
	MemberID    int64       `json:"memberId"`
	Name        string      `json:"name"`
	CompanyID   int64       `json:"companyId,omitempty"`
	CompanyName string      `json:"companyName,omitempty"`
	Role        ProjectRole `json:"role"`
}

// Project is a contract between a client company and a developer company
type Project struct {
	ID                int64           `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	StartDate         string          `json:"startDate,omitempty"`
	EndDate           string          `json:"endDate,omitempty"`
	Status            ProjectStatus   `json:"status"`
	ClientCompanyID   int64           `json:"clientCompanyId"`
	ClientCompanyName string          `json:"clientCompanyName,omitempty"`
	DevCompanyID      int64           `json:"devCompanyId"`
	DevCompanyName    string          `json:"devCompanyName,omitempty"`
	Members           []ProjectMember `json:"members,omitempty"`
	CreatedAt         Timestamp       `json:"createdAt"`
}

// Managers returns the members holding the manager role
func (p *Project) Managers() []ProjectMember {
	return p.membersWithRole(ProjectRoleManager)
}

// Participants returns the members holding the participant role
func (p *Project) Participants() []ProjectMember {
	return p.membersWithRole(ProjectRoleParticipant)
}

func (p *Project) membersWithRole(role ProjectRole) []ProjectMember {
	var out []ProjectMember
	for _, m := range p.Members {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// Stage is an ordered column of tasks inside a project
type Stage struct {
	ID        int64  `json:"id"`
	ProjectID int64  `json:"projectId"`
	Name      string `json:"name"`
	Order     int    `json:"order"`
	Tasks     []Task `json:"tasks,omitempty"`
}

// Task is a unit of work inside a stage
type Task struct {
	ID        int64      `json:"id"`
	StageID   int64      `json:"stageId"`
	Title     string     `json:"title"`
	Content   string     `json:"content,omitempty"`
	Status    TaskStatus `json:"status"`
	Order     int        `json:"order"`
	CreatedAt Timestamp  `json:"createdAt"`
}

// Link is a URL attached to a request or response
type Link struct {
	ID    int64  `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url"`
}

// FileRef is a file stored by the backend
type FileRef struct {
	ID       int64  `json:"id"`
	FileName string `json:"fileName"`
	FileURL  string `json:"fileUrl"`
	Size     int64  `json:"fileSize,omitempty"`
}

// Author identifies who wrote a request or response
type Author struct {
	MemberID int64  `json:"memberId"`
	Name     string `json:"name"`
}

// ApprovalRequest asks the client side to approve the work done on a task
type ApprovalRequest struct {
	ID        int64              `json:"id"`
	TaskID    int64              `json:"taskId"`
	ProjectID int64              `json:"projectId,omitempty"`
	Title     string             `json:"title"`
	Content   string             `json:"content,omitempty"`
	Status    RequestStatus      `json:"status"`
	Author    Author             `json:"author"`
	Links     []Link             `json:"links,omitempty"`
	Files     []FileRef          `json:"files,omitempty"`
	Responses []ApprovalResponse `json:"responses,omitempty"`
	CreatedAt Timestamp          `json:"createdAt"`
}

// ApprovalResponse is an approval or rejection of a request
type ApprovalResponse struct {
	ID        int64         `json:"id"`
	RequestID int64         `json:"requestId"`
	Status    RequestStatus `json:"status"`
	Content   string        `json:"content,omitempty"`
	Author    Author        `json:"author"`
	Links     []Link        `json:"links,omitempty"`
	Files     []FileRef     `json:"files,omitempty"`
	CreatedAt Timestamp     `json:"createdAt"`
}

// Member is a user account
type Member struct {
	ID          int64      `json:"id"`
	AuthID      string     `json:"authId"`
	Name        string     `json:"name"`
	Email       string     `json:"email,omitempty"`
	Phone       string     `json:"phoneNumber,omitempty"`
	Role        MemberRole `json:"role"`
	CompanyID   int64      `json:"companyId,omitempty"`
	CompanyName string     `json:"companyName,omitempty"`
	Position    string     `json:"position,omitempty"`
	Deleted     bool       `json:"deleted"`
	CreatedAt   Timestamp  `json:"createdAt"`
}

// IsAdmin reports whether the member holds the admin role
func (m *Member) IsAdmin() bool {
	return m != nil && m.Role == MemberRoleAdmin
}

// Log is an append-only audit record kept by the backend
type Log struct {
	ID         int64           `json:"id"`
	EntityName string          `json:"entityName"`
	EntityID   int64           `json:"entityId"`
	Action     LogAction       `json:"action"`
	ActorID    int64           `json:"actorId,omitempty"`
	ActorName  string          `json:"actorName,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Diff       json.RawMessage `json:"diff,omitempty"`
	CreatedAt  Timestamp       `json:"createdAt"`
}

// Page is one slice of a paginated listing
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	Last          bool  `json:"last"`
}

// PageParams selects a page of a listing; Page is zero-based
type PageParams struct {
	Page int `validate:"gte=0"`
	Size int `validate:"gte=1,lte=100"`
}

// DefaultPageParams returns the first page with the default size
func DefaultPageParams() PageParams {
	return PageParams{Page: 0, Size: 10}
}
