package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations creates the material tables owned by this service. The
// profile, job, company and matching summary tables belong to other services
// and are only read.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.SQL); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration is one idempotent schema step.
type Migration struct {
	Name string
	SQL  string
}

var migrations = []Migration{
	{
		Name: "create_cv_documents",
		SQL: `
		CREATE TABLE IF NOT EXISTS cv_documents (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			job_id TEXT,
			name TEXT NOT NULL,
			template_id TEXT,
			is_tailored BOOLEAN NOT NULL DEFAULT false,
			content TEXT NOT NULL DEFAULT '',
			show_profile_photo BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "create_cover_letters",
		SQL: `
		CREATE TABLE IF NOT EXISTS cover_letters (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			job_id TEXT,
			name TEXT NOT NULL,
			tone TEXT NOT NULL DEFAULT '',
			is_tailored BOOLEAN NOT NULL DEFAULT false,
			content TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "create_speech_blocks",
		SQL: `
		CREATE TABLE IF NOT EXISTS speech_blocks (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			job_id TEXT,
			name TEXT NOT NULL,
			is_tailored BOOLEAN NOT NULL DEFAULT false,
			elevator_pitch TEXT NOT NULL DEFAULT '',
			career_story TEXT NOT NULL DEFAULT '',
			why_me TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	},
	{
		Name: "index_materials_by_job",
		SQL: `
		CREATE INDEX IF NOT EXISTS idx_cv_documents_user_job ON cv_documents (user_id, job_id);
		CREATE INDEX IF NOT EXISTS idx_cover_letters_user_job ON cover_letters (user_id, job_id);
		CREATE INDEX IF NOT EXISTS idx_speech_blocks_user_job ON speech_blocks (user_id, job_id);`,
	},
}
