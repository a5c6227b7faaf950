package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/sync/errgroup"

	"tailoring-engine/internal/domain"
)

// ErrNotFound is returned by the material stores when the row does not exist.
var ErrNotFound = errors.New("record not found")

// queryJSON runs a SQL that returns a single json value and unmarshals it
// into dst. found is false when no row, or a SQL null, came back.
func queryJSON(ctx context.Context, pool *pgxpool.Pool, dst interface{}, sql string, args ...interface{}) (found bool, err error) {
	var raw []byte
	if err := pool.QueryRow(ctx, sql, args...).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

// ProfileRepo assembles the tailoring profile from the profile service
// tables: profile, canvas, experiences and STAR stories.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetProfileForTailoring returns (nil, nil) when the user has no profile.
// The canvas is optional; experiences come back most recent first.
func (r *ProfileRepo) GetProfileForTailoring(ctx context.Context, userID string) (*domain.TailoringProfile, error) {
	var profile domain.UserProfile
	found, err := queryJSON(ctx, r.pool, &profile,
		`SELECT to_jsonb(p) FROM user_profiles p WHERE p.user_id::text=$1 LIMIT 1`, userID)
	if err != nil || !found {
		return nil, err
	}

	out := &domain.TailoringProfile{Profile: profile}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var canvas domain.PersonalCanvas
		ok, err := queryJSON(gctx, r.pool, &canvas,
			`SELECT to_jsonb(c) FROM personal_canvases c WHERE c.user_id::text=$1 LIMIT 1`, userID)
		if ok {
			out.PersonalCanvas = &canvas
		}
		return err
	})
	g.Go(func() error {
		_, err := queryJSON(gctx, r.pool, &out.Experiences,
			`SELECT coalesce(json_agg(row_to_json(e) ORDER BY e.start_date DESC NULLS LAST), '[]') FROM experiences e WHERE e.user_id::text=$1`, userID)
		return err
	})
	g.Go(func() error {
		_, err := queryJSON(gctx, r.pool, &out.Stories,
			`SELECT coalesce(json_agg(row_to_json(s) ORDER BY s.created_at), '[]') FROM star_stories s WHERE s.user_id::text=$1`, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
