package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"

	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/pkg/dbutil"
	appErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/pkg/timeutil"
)

type SegmentRepo struct {
	db *sql.DB
}

func NewSegmentRepo(db *sql.DB) *SegmentRepo {
	return &SegmentRepo{db: db}
}

// Upsert returns the id of the segment tracking searchURL, creating it if
// needed. An existing segment keeps its name and category; the operation
// is idempotent on the search url.
func (r *SegmentRepo) Upsert(ctx context.Context, searchURL, name, category string) (string, error) {
	const insert = `
		INSERT INTO segments (id, search_url, name, category, ctime)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (search_url) DO NOTHING
	`
	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx, insert, id, searchURL, name, category, timeutil.NowUnix()); err != nil {
		return "", err
	}
	const query = `SELECT id FROM segments WHERE search_url = $1`
	row := r.db.QueryRowContext(ctx, query, searchURL)
	var existing string
	if err := row.Scan(&existing); err != nil {
		return "", err
	}
	return existing, nil
}

func (r *SegmentRepo) GetByID(ctx context.Context, id string) (*model.Segment, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("segments", where, []string{"id", "search_url", "name", "category", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		return nil, appErr.ErrNotFound
	}
	var seg model.Segment
	if err := rows.Scan(&seg.ID, &seg.SearchURL, &seg.Name, &seg.Category, &seg.Ctime); err != nil {
		return nil, err
	}
	return &seg, nil
}

func (r *SegmentRepo) List(ctx context.Context, limit, offset uint) ([]model.Segment, error) {
	where := map[string]interface{}{
		"_orderby": "ctime desc",
		"_limit":   []uint{offset, limit},
	}
	sqlStr, args, err := builder.BuildSelect("segments", where, []string{"id", "search_url", "name", "category", "ctime"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var segments []model.Segment
	for rows.Next() {
		var seg model.Segment
		if err := rows.Scan(&seg.ID, &seg.SearchURL, &seg.Name, &seg.Category, &seg.Ctime); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return segments, rows.Err()
}
