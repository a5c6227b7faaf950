package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/sync/errgroup"

	"tailoring-engine/internal/domain"
	"tailoring-engine/internal/usecase"
)

// Material rows are written and returned as to_jsonb(row) so the json tags
// on the domain types are the only column mapping.

type CVRepo struct {
	pool *pgxpool.Pool
}

func NewCVRepo(pool *pgxpool.Pool) *CVRepo {
	return &CVRepo{pool: pool}
}

func (r *CVRepo) Create(ctx context.Context, p usecase.CreateCVParams) (*domain.CVDocument, error) {
	var doc domain.CVDocument
	_, err := queryJSON(ctx, r.pool, &doc, `INSERT INTO cv_documents AS d (id, user_id, job_id, name, template_id, is_tailored, content, show_profile_photo, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
		RETURNING to_jsonb(d)`,
		uuid.New().String(), p.UserID, p.JobID, p.Name, p.TemplateID, p.IsTailored, p.Content, p.ShowProfilePhoto)
	if err != nil {
		return nil, fmt.Errorf("insert cv_documents: %w", err)
	}
	return &doc, nil
}

func (r *CVRepo) Update(ctx context.Context, p usecase.UpdateCVParams) (*domain.CVDocument, error) {
	var doc domain.CVDocument
	found, err := queryJSON(ctx, r.pool, &doc, `UPDATE cv_documents AS d SET
			job_id = COALESCE($2, d.job_id),
			name = COALESCE($3, d.name),
			template_id = COALESCE($4, d.template_id),
			is_tailored = COALESCE($5, d.is_tailored),
			content = COALESCE($6, d.content),
			show_profile_photo = COALESCE($7, d.show_profile_photo),
			updated_at = now()
		WHERE d.id::text = $1
		RETURNING to_jsonb(d)`,
		p.ID, p.JobID, p.Name, p.TemplateID, p.IsTailored, p.Content, p.ShowProfilePhoto)
	if err != nil {
		return nil, fmt.Errorf("update cv_documents: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &doc, nil
}

// Get scopes the lookup to the owner; another user's material is not found.
func (r *CVRepo) Get(ctx context.Context, userID, id string) (*domain.CVDocument, error) {
	var doc domain.CVDocument
	found, err := queryJSON(ctx, r.pool, &doc, `SELECT to_jsonb(d) FROM cv_documents d WHERE d.id::text=$1 AND d.user_id=$2`, id, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &doc, nil
}

type CoverLetterRepo struct {
	pool *pgxpool.Pool
}

func NewCoverLetterRepo(pool *pgxpool.Pool) *CoverLetterRepo {
	return &CoverLetterRepo{pool: pool}
}

func (r *CoverLetterRepo) Create(ctx context.Context, p usecase.CreateCoverLetterParams) (*domain.CoverLetter, error) {
	var cl domain.CoverLetter
	_, err := queryJSON(ctx, r.pool, &cl, `INSERT INTO cover_letters AS c (id, user_id, job_id, name, tone, is_tailored, content, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now())
		RETURNING to_jsonb(c)`,
		uuid.New().String(), p.UserID, p.JobID, p.Name, p.Tone, p.IsTailored, p.Content)
	if err != nil {
		return nil, fmt.Errorf("insert cover_letters: %w", err)
	}
	return &cl, nil
}

func (r *CoverLetterRepo) Update(ctx context.Context, p usecase.UpdateCoverLetterParams) (*domain.CoverLetter, error) {
	var cl domain.CoverLetter
	found, err := queryJSON(ctx, r.pool, &cl, `UPDATE cover_letters AS c SET
			job_id = COALESCE($2, c.job_id),
			name = COALESCE($3, c.name),
			tone = COALESCE($4, c.tone),
			is_tailored = COALESCE($5, c.is_tailored),
			content = COALESCE($6, c.content),
			updated_at = now()
		WHERE c.id::text = $1
		RETURNING to_jsonb(c)`,
		p.ID, p.JobID, p.Name, p.Tone, p.IsTailored, p.Content)
	if err != nil {
		return nil, fmt.Errorf("update cover_letters: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &cl, nil
}

func (r *CoverLetterRepo) Get(ctx context.Context, userID, id string) (*domain.CoverLetter, error) {
	var cl domain.CoverLetter
	found, err := queryJSON(ctx, r.pool, &cl, `SELECT to_jsonb(c) FROM cover_letters c WHERE c.id::text=$1 AND c.user_id=$2`, id, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &cl, nil
}

type SpeechRepo struct {
	pool *pgxpool.Pool
}

func NewSpeechRepo(pool *pgxpool.Pool) *SpeechRepo {
	return &SpeechRepo{pool: pool}
}

func (r *SpeechRepo) Create(ctx context.Context, p usecase.CreateSpeechParams) (*domain.SpeechBlock, error) {
	var sb domain.SpeechBlock
	_, err := queryJSON(ctx, r.pool, &sb, `INSERT INTO speech_blocks AS s (id, user_id, job_id, name, is_tailored, elevator_pitch, career_story, why_me, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now(),now())
		RETURNING to_jsonb(s)`,
		uuid.New().String(), p.UserID, p.JobID, p.Name, p.IsTailored, p.ElevatorPitch, p.CareerStory, p.WhyMe)
	if err != nil {
		return nil, fmt.Errorf("insert speech_blocks: %w", err)
	}
	return &sb, nil
}

func (r *SpeechRepo) Update(ctx context.Context, p usecase.UpdateSpeechParams) (*domain.SpeechBlock, error) {
	var sb domain.SpeechBlock
	found, err := queryJSON(ctx, r.pool, &sb, `UPDATE speech_blocks AS s SET
			job_id = COALESCE($2, s.job_id),
			name = COALESCE($3, s.name),
			is_tailored = COALESCE($4, s.is_tailored),
			elevator_pitch = COALESCE($5, s.elevator_pitch),
			career_story = COALESCE($6, s.career_story),
			why_me = COALESCE($7, s.why_me),
			updated_at = now()
		WHERE s.id::text = $1
		RETURNING to_jsonb(s)`,
		p.ID, p.JobID, p.Name, p.IsTailored, p.ElevatorPitch, p.CareerStory, p.WhyMe)
	if err != nil {
		return nil, fmt.Errorf("update speech_blocks: %w", err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return &sb, nil
}

func (r *SpeechRepo) Get(ctx context.Context, userID, id string) (*domain.SpeechBlock, error) {
	var sb domain.SpeechBlock
	found, err := queryJSON(ctx, r.pool, &sb, `SELECT to_jsonb(s) FROM speech_blocks s WHERE s.id::text=$1 AND s.user_id=$2`, id, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return &sb, nil
}

// MaterialsRepo lists everything tailored to one job.
type MaterialsRepo struct {
	pool *pgxpool.Pool
}

func NewMaterialsRepo(pool *pgxpool.Pool) *MaterialsRepo {
	return &MaterialsRepo{pool: pool}
}

func (r *MaterialsRepo) ListByJob(ctx context.Context, userID, jobID string) (domain.TailoredMaterials, error) {
	out := domain.TailoredMaterials{
		CVs:          []domain.CVDocument{},
		CoverLetters: []domain.CoverLetter{},
		Speeches:     []domain.SpeechBlock{},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := queryJSON(gctx, r.pool, &out.CVs,
			`SELECT coalesce(json_agg(row_to_json(d) ORDER BY d.updated_at DESC), '[]') FROM cv_documents d WHERE d.user_id=$1 AND d.job_id=$2`, userID, jobID)
		return err
	})
	g.Go(func() error {
		_, err := queryJSON(gctx, r.pool, &out.CoverLetters,
			`SELECT coalesce(json_agg(row_to_json(c) ORDER BY c.updated_at DESC), '[]') FROM cover_letters c WHERE c.user_id=$1 AND c.job_id=$2`, userID, jobID)
		return err
	})
	g.Go(func() error {
		_, err := queryJSON(gctx, r.pool, &out.Speeches,
			`SELECT coalesce(json_agg(row_to_json(s) ORDER BY s.updated_at DESC), '[]') FROM speech_blocks s WHERE s.user_id=$1 AND s.job_id=$2`, userID, jobID)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.TailoredMaterials{}, fmt.Errorf("list materials for job %s: %w", jobID, err)
	}
	return out, nil
}
