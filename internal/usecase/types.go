package usecase

import (
	"context"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/model"
)

// ProfileReader returns the profile with canvas, experiences and stories.
// A missing profile is reported as (nil, nil).
type ProfileReader interface {
	GetProfileForTailoring(ctx context.Context, userID string) (*domain.TailoringProfile, error)
}

type CompanyReader interface {
	GetCompany(ctx context.Context, companyID string) (*domain.Company, error)
}

// JobReader reports a missing job as (nil, nil) or as ErrJobNotFound.
type JobReader interface {
	GetFullJobDescription(ctx context.Context, jobID string) (*domain.JobDescription, error)
}

// MatchingSummaryReader returns (nil, nil) when the job has not been scored yet.
type MatchingSummaryReader interface {
	GetByContext(ctx context.Context, userID, jobID string) (*domain.MatchingSummary, error)
}

// MaterialsReader lists what already exists for a job. Used for the
// "generate a matching summary first" hint.
type MaterialsReader interface {
	ListByJob(ctx context.Context, userID, jobID string) (domain.TailoredMaterials, error)
}

// Generator is the AI generation capability.
type Generator interface {
	GenerateCV(ctx context.Context, in *model.GenerationInput) (string, error)
	GenerateCoverLetter(ctx context.Context, in *model.GenerationInput) (string, error)
	GenerateSpeech(ctx context.Context, in *model.GenerationInput) (*domain.Speech, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, kind domain.MaterialKind, content string) (*domain.ApplicationStrengthEvaluation, error)
}

type Improver interface {
	Improve(ctx context.Context, req model.ImproveRequest) (string, error)
}

type CVStore interface {
	Create(ctx context.Context, p CreateCVParams) (*domain.CVDocument, error)
	Update(ctx context.Context, p UpdateCVParams) (*domain.CVDocument, error)
}

type CoverLetterStore interface {
	Create(ctx context.Context, p CreateCoverLetterParams) (*domain.CoverLetter, error)
	Update(ctx context.Context, p UpdateCoverLetterParams) (*domain.CoverLetter, error)
}

type SpeechStore interface {
	Create(ctx context.Context, p CreateSpeechParams) (*domain.SpeechBlock, error)
	Update(ctx context.Context, p UpdateSpeechParams) (*domain.SpeechBlock, error)
}

// EventPublisher receives domain events after successful writes. Failures
// are logged by the caller and never abort the operation.
type EventPublisher interface {
	Publish(ctx context.Context, event MaterialEvent) error
}

type MaterialEvent struct {
	Type   string              `json:"type"`
	Kind   domain.MaterialKind `json:"kind"`
	ID     string              `json:"id"`
	UserID string              `json:"userId"`
	JobID  string              `json:"jobId"`
}

const (
	EventMaterialGenerated   = "material.generated"
	EventMaterialRegenerated = "material.regenerated"
)

type CreateCVParams struct {
	UserID           string
	JobID            *string
	Name             string
	TemplateID       *string
	IsTailored       bool
	Content          string
	ShowProfilePhoto bool
}

// UpdateCVParams leaves nil fields untouched.
type UpdateCVParams struct {
	ID               string
	JobID            *string
	Name             *string
	TemplateID       *string
	IsTailored       *bool
	Content          *string
	ShowProfilePhoto *bool
}

type CreateCoverLetterParams struct {
	UserID     string
	JobID      *string
	Name       string
	Tone       string
	IsTailored bool
	Content    string
}

type UpdateCoverLetterParams struct {
	ID         string
	JobID      *string
	Name       *string
	Tone       *string
	IsTailored *bool
	Content    *string
}

type CreateSpeechParams struct {
	UserID        string
	JobID         *string
	Name          string
	IsTailored    bool
	ElevatorPitch string
	CareerStory   string
	WhyMe         string
}

type UpdateSpeechParams struct {
	ID            string
	JobID         *string
	Name          *string
	IsTailored    *bool
	ElevatorPitch *string
	CareerStory   *string
	WhyMe         *string
}

// CVOptions are caller-supplied overrides for CV generation. Zero values
// mean "use the default" on generate and "leave unchanged" on regenerate.
type CVOptions struct {
	Name             string            `json:"name,omitempty"`
	TemplateID       *string           `json:"templateId,omitempty"`
	ShowProfilePhoto *bool             `json:"showProfilePhoto,omitempty"`
	Sections         *model.CVSections `json:"sections,omitempty"`
}

type CoverLetterOptions struct {
	Name string `json:"name,omitempty"`
	Tone string `json:"tone,omitempty"`
}

type SpeechOptions struct {
	Name string `json:"name,omitempty"`
}

// JobParams identifies the job being tailored to and the user it belongs to.
type JobParams struct {
	UserID          string
	Job             *domain.JobDescription
	MatchingSummary *domain.MatchingSummary
}

type RegenerateParams struct {
	JobParams
	ID string
}
