package repository

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"tailoring-engine/internal/domain"
)

// JobsRepo reads job descriptions. Missing jobs are reported as (nil, nil);
// the context loader turns that into usecase.ErrJobNotFound.
type JobsRepo struct {
	pool *pgxpool.Pool
}

func NewJobsRepo(pool *pgxpool.Pool) *JobsRepo {
	return &JobsRepo{pool: pool}
}

func (r *JobsRepo) GetFullJobDescription(ctx context.Context, jobID string) (*domain.JobDescription, error) {
	var j domain.JobDescription
	found, err := queryJSON(ctx, r.pool, &j, `SELECT to_jsonb(j) FROM job_descriptions j WHERE j.id::text=$1 LIMIT 1`, jobID)
	if err != nil || !found {
		return nil, err
	}
	return &j, nil
}

type MatchingSummaryRepo struct {
	pool *pgxpool.Pool
}

func NewMatchingSummaryRepo(pool *pgxpool.Pool) *MatchingSummaryRepo {
	return &MatchingSummaryRepo{pool: pool}
}

// GetByContext returns the latest summary for the (user, job) pair.
func (r *MatchingSummaryRepo) GetByContext(ctx context.Context, userID, jobID string) (*domain.MatchingSummary, error) {
	var s domain.MatchingSummary
	found, err := queryJSON(ctx, r.pool, &s,
		`SELECT to_jsonb(m) FROM matching_summaries m WHERE m.user_id::text=$1 AND m.job_id::text=$2 ORDER BY m.updated_at DESC LIMIT 1`,
		userID, jobID)
	if err != nil || !found {
		return nil, err
	}
	return &s, nil
}

type CompanyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *CompanyRepo {
	return &CompanyRepo{pool: pool}
}

func (r *CompanyRepo) GetCompany(ctx context.Context, companyID string) (*domain.Company, error) {
	var c domain.Company
	found, err := queryJSON(ctx, r.pool, &c, `SELECT to_jsonb(c) FROM companies c WHERE c.id::text=$1 LIMIT 1`, companyID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &c, nil
}
