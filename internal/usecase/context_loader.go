package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/platform/logger"
)

// TailoringContext is the job a user is tailoring materials to, with its
// fit analysis and company when available.
type TailoringContext struct {
	Job             *domain.JobDescription  `json:"job"`
	MatchingSummary *domain.MatchingSummary `json:"matchingSummary"`
	Company         *domain.Company         `json:"company"`
}

// CanRegenerate gates the regenerate actions: both the job and its matching
// summary must be loaded.
func (c *TailoringContext) CanRegenerate() bool {
	return c != nil && c.Job != nil && c.MatchingSummary != nil
}

// NeedsMatchingSummary is true when the job has not been scored and nothing
// has been generated for it yet.
func (c *TailoringContext) NeedsMatchingSummary(existing domain.TailoredMaterials) bool {
	return c != nil && c.MatchingSummary == nil && existing.Empty()
}

type ContextLoader struct {
	jobs      JobReader
	summaries MatchingSummaryReader
	companies CompanyReader
	log       *logger.Logger
}

func NewContextLoader(jobs JobReader, summaries MatchingSummaryReader, companies CompanyReader, log *logger.Logger) *ContextLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &ContextLoader{jobs: jobs, summaries: summaries, companies: companies, log: log}
}

// Load resolves the job and its matching summary concurrently, then the
// company when the job links one. An empty jobID clears the context and
// returns (nil, nil) without touching any reader. Only a failed job lookup
// is an error.
func (l *ContextLoader) Load(ctx context.Context, userID, jobID string) (*TailoringContext, error) {
	if jobID == "" {
		return nil, nil
	}
	ctx, span := tracer.Start(ctx, "tailoring.load_context")
	defer span.End()
	span.SetAttributes(attribute.String("job.id", jobID))

	var (
		job     *domain.JobDescription
		summary *domain.MatchingSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		j, err := l.jobs.GetFullJobDescription(gctx, jobID)
		if err != nil {
			return fmt.Errorf("load job %s: %w", jobID, err)
		}
		if j == nil {
			return fmt.Errorf("load job %s: %w", jobID, ErrJobNotFound)
		}
		job = j
		return nil
	})
	g.Go(func() error {
		s, err := l.summaries.GetByContext(gctx, userID, jobID)
		if err != nil {
			l.log.Warn("matching summary lookup failed (non-fatal)", "job_id", jobID, "error", err)
			return nil
		}
		summary = s
		return nil
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}

	return &TailoringContext{
		Job:             job,
		MatchingSummary: summary,
		Company:         bestEffortCompany(ctx, l.companies, job, l.log),
	}, nil
}

func lookupCompany(ctx context.Context, r CompanyReader, job *domain.JobDescription) (*domain.Company, error) {
	if r == nil || !job.HasCompany() {
		return nil, nil
	}
	return r.GetCompany(ctx, *job.CompanyID)
}

// bestEffortCompany never fails: a lookup error yields nil.
func bestEffortCompany(ctx context.Context, r CompanyReader, job *domain.JobDescription, log *logger.Logger) *domain.Company {
	c, err := lookupCompany(ctx, r, job)
	if err != nil {
		log.Warn("unable to load company context (non-fatal)", "job_id", job.ID, "company_id", *job.CompanyID, "error", err)
		return nil
	}
	return c
}
