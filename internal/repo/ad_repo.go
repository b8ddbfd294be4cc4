package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/google/uuid"

	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/pkg/dbutil"
	appErr "github.com/sivanlg/homeradar/internal/pkg/errors"
	"github.com/sivanlg/homeradar/internal/pkg/timeutil"
)

type AdRepo struct {
	db *sql.DB
}

func NewAdRepo(db *sql.DB) *AdRepo {
	return &AdRepo{db: db}
}

// SaveWithSnapshot upserts the ad and appends its history snapshot in one
// transaction; the pair never persists independently. On conflict by id
// only last_seen, title, description and the raw payload are overwritten:
// first_seen, status and the segment assignment are preserved. The
// snapshot is appended unconditionally; history is a time series and
// equal values still record an observation.
func (r *AdRepo) SaveWithSnapshot(ctx context.Context, ad *model.Ad, snap *model.AdSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := timeutil.NowUnix()
	const upsert = `
		INSERT INTO ads (id, segment_id, status, title, description, city, neighborhood, property_type, raw_data, first_seen, last_seen)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $10)
		ON CONFLICT (id) DO UPDATE SET
			last_seen = GREATEST(ads.last_seen, EXCLUDED.last_seen),
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			raw_data = EXCLUDED.raw_data
	`
	if _, err := tx.ExecContext(ctx, upsert,
		ad.ID,
		ad.SegmentID,
		ad.Status,
		ad.Title,
		ad.Description,
		ad.City,
		ad.Neighborhood,
		ad.PropertyType,
		[]byte(ad.RawData),
		now,
	); err != nil {
		return fmt.Errorf("upsert ad: %w", err)
	}

	const insertSnap = `
		INSERT INTO ad_snapshots (id, ad_id, price, rooms, square_meters, floor, attributes, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, insertSnap,
		uuid.NewString(),
		ad.ID,
		snap.Price,
		snap.Rooms,
		snap.SquareMeters,
		snap.Floor,
		[]byte(snap.Attributes),
		now,
	); err != nil {
		return fmt.Errorf("append snapshot: %w", err)
	}

	return tx.Commit()
}

func (r *AdRepo) GetByID(ctx context.Context, id string) (*model.Ad, error) {
	where := map[string]interface{}{"id": id}
	sqlStr, args, err := builder.BuildSelect("ads", where, adColumns())
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
	return scanAd(rows)
}

func (r *AdRepo) UpdateStatus(ctx context.Context, id, status string) error {
	where := map[string]interface{}{"id": id}
	update := map[string]interface{}{"status": status}
	sqlStr, args, err := builder.BuildUpdate("ads", where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}

func adColumns() []string {
	return []string{"id", "COALESCE(segment_id, '') AS segment_id", "status", "title", "description", "city", "neighborhood", "property_type", "raw_data", "first_seen", "last_seen"}
}

func scanAd(rows *sql.Rows) (*model.Ad, error) {
	var ad model.Ad
	var raw []byte
	if err := rows.Scan(&ad.ID, &ad.SegmentID, &ad.Status, &ad.Title, &ad.Description, &ad.City, &ad.Neighborhood, &ad.PropertyType, &raw, &ad.FirstSeen, &ad.LastSeen); err != nil {
		return nil, err
	}
	ad.RawData = raw
	return &ad, nil
}
