package domain

import (
	"io"
	"time"
)

// Auth

type LoginRequest struct {
	AuthID   string `json:"authId" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

type SignupRequest struct {
	AuthID    string `json:"authId" validate:"required,min=4,max=50"`
	Password  string `json:"password" validate:"required,min=8,max=100"`
	Name      string `json:"name" validate:"required,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phoneNumber,omitempty" validate:"max=20"`
	CompanyID int64  `json:"companyId,omitempty" validate:"gte=0"`
	Position  string `json:"position,omitempty" validate:"max=50"`
}

type SendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,max=10"`
}

type ResetPasswordRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Code            string `json:"code" validate:"required,max=10"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=100"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// Members

type UpdateProfileRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phoneNumber,omitempty" validate:"max=20"`
	Position string `json:"position,omitempty" validate:"max=50"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=100,nefield=CurrentPassword"`
}

type CreateMemberRequest struct {
	AuthID    string     `json:"authId" validate:"required,min=4,max=50"`
	Password  string     `json:"password" validate:"required,min=8,max=100"`
	Name      string     `json:"name" validate:"required,max=50"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phoneNumber,omitempty" validate:"max=20"`
	Role      MemberRole `json:"role" validate:"required,enum"`
	CompanyID int64      `json:"companyId" validate:"required,gt=0"`
	Position  string     `json:"position,omitempty" validate:"max=50"`
}

type UpdateMemberRequest struct {
	Name      string     `json:"name" validate:"required,max=50"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phoneNumber,omitempty" validate:"max=20"`
	Role      MemberRole `json:"role" validate:"required,enum"`
	CompanyID int64      `json:"companyId" validate:"required,gt=0"`
	Position  string     `json:"position,omitempty" validate:"max=50"`
}

// MemberStatusRequest toggles the soft-disable flag
type MemberStatusRequest struct {
	Deleted bool `json:"deleted"`
}

// MemberFilter narrows the admin account listing
type MemberFilter struct {
	Keyword string
	Role    MemberRole `validate:"omitempty,enum"`
	PageParams
}

// Companies

type CreateCompanyRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	BusinessNumber string `json:"businessNumber" validate:"required,max=20"`
	CEOName        string `json:"ceoName,omitempty" validate:"max=50"`
	Phone          string `json:"phoneNumber,omitempty" validate:"max=20"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Address        string `json:"address,omitempty" validate:"max=200"`
}

type UpdateCompanyRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	BusinessNumber string `json:"businessNumber" validate:"required,max=20"`
	CEOName        string `json:"ceoName,omitempty" validate:"max=50"`
	Phone          string `json:"phoneNumber,omitempty" validate:"max=20"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	Address        string `json:"address,omitempty" validate:"max=200"`
}

type CompanyStatusRequest struct {
	Status CompanyStatus `json:"status" validate:"required,enum"`
}

// Projects

type ProjectMemberInput struct {
	MemberID int64       `json:"memberId" validate:"required,gt=0"`
	Role     ProjectRole `json:"role" validate:"required,enum"`
}

type CreateProjectRequest struct {
	Title           string               `json:"title" validate:"required,max=100"`
	Description     string               `json:"description,omitempty" validate:"max=2000"`
	StartDate       string               `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate         string               `json:"endDate" validate:"required,datetime=2006-01-02"`
	Status          ProjectStatus        `json:"status" validate:"required,enum"`
	ClientCompanyID int64                `json:"clientCompanyId" validate:"required,gt=0"`
	DevCompanyID    int64                `json:"devCompanyId" validate:"required,gt=0"`
	Members         []ProjectMemberInput `json:"members,omitempty" validate:"dive"`
}

type UpdateProjectRequest struct {
	Title           string               `json:"title" validate:"required,max=100"`
	Description     string               `json:"description,omitempty" validate:"max=2000"`
	StartDate       string               `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate         string               `json:"endDate" validate:"required,datetime=2006-01-02"`
	Status          ProjectStatus        `json:"status" validate:"required,enum"`
	ClientCompanyID int64                `json:"clientCompanyId" validate:"required,gt=0"`
	DevCompanyID    int64                `json:"devCompanyId" validate:"required,gt=0"`
	Members         []ProjectMemberInput `json:"members,omitempty" validate:"dive"`
}

// ProjectFilter narrows the project listing
type ProjectFilter struct {
	Keyword string
	Status  ProjectStatus `validate:"omitempty,enum"`
	PageParams
}

// DateRangeOrdered reports whether end is not before start; unparsable
// dates are left to field validation
func DateRangeOrdered(start, end string) bool {
	s, err1 := time.Parse("2006-01-02", start)
	e, err2 := time.Parse("2006-01-02", end)
	if err1 != nil || err2 != nil {
		return true
	}
	return !e.Before(s)
}

// Stages

type CreateStageRequest struct {
	ProjectID int64  `json:"projectId" validate:"required,gt=0"`
	Name      string `json:"name" validate:"required,max=50"`
}

type UpdateStageRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}

type MoveStageRequest struct {
	Order int `json:"order" validate:"gte=0"`
}

// Tasks

type CreateTaskRequest struct {
	StageID int64  `json:"stageId" validate:"required,gt=0"`
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content,omitempty" validate:"max=5000"`
}

type UpdateTaskRequest struct {
	Title   string `json:"title" validate:"required,max=100"`
	Content string `json:"content,omitempty" validate:"max=5000"`
}

type MoveTaskRequest struct {
	StageID int64 `json:"stageId" validate:"required,gt=0"`
	Order   int   `json:"order" validate:"gte=0"`
}

// Approval requests and responses

// Attachment is a file sent with a multipart request
type Attachment struct {
	FileName string    `validate:"required"`
	Content  io.Reader `validate:"required"`
}

type LinkInput struct {
	Title string `json:"title,omitempty" validate:"max=100"`
	URL   string `json:"url" validate:"required,url"`
}

type CreateApprovalRequest struct {
	Title   string       `validate:"required,max=100"`
	Content string       `validate:"required,max=5000"`
	Links   []LinkInput  `validate:"dive"`
	Files   []Attachment `validate:"dive"`
}

// DecisionRequest is the body of an approval or a rejection
type DecisionRequest struct {
	Content string       `validate:"required,max=5000"`
	Links   []LinkInput  `validate:"dive"`
	Files   []Attachment `validate:"dive"`
}

// Logs

// LogFilter narrows the audit log listing
type LogFilter struct {
	EntityName string
	Action     LogAction `validate:"omitempty,enum"`
	PageParams
}
