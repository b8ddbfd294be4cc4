package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/sivanlg/homeradar/internal/model"
	"github.com/sivanlg/homeradar/internal/pkg/dbutil"
)

// SnapshotRepo is the read side of the ad history time series; writes
// happen only through AdRepo.SaveWithSnapshot so the ad/snapshot pair
// stays atomic. Snapshots are never updated or deleted.
type SnapshotRepo struct {
	db *sql.DB
}

func NewSnapshotRepo(db *sql.DB) *SnapshotRepo {
	return &SnapshotRepo{db: db}
}

func (r *SnapshotRepo) ListByAd(ctx context.Context, adID string, limit uint) ([]model.AdSnapshot, error) {
	where := map[string]interface{}{
		"ad_id":    adID,
		"_orderby": "observed_at asc",
	}
	if limit > 0 {
		where["_limit"] = []uint{0, limit}
	}
	sqlStr, args, err := builder.BuildSelect("ad_snapshots", where, []string{"id", "ad_id", "price", "rooms", "square_meters", "floor", "attributes", "observed_at"})
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var snaps []model.AdSnapshot
	for rows.Next() {
		var snap model.AdSnapshot
		var attrs []byte
		if err := rows.Scan(&snap.ID, &snap.AdID, &snap.Price, &snap.Rooms, &snap.SquareMeters, &snap.Floor, &attrs, &snap.ObservedAt); err != nil {
			return nil, err
		}
		snap.Attributes = attrs
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (r *SnapshotRepo) CountByAd(ctx context.Context, adID string) (int, error) {
	const query = `SELECT COUNT(*) FROM ad_snapshots WHERE ad_id = $1`
	row := r.db.QueryRowContext(ctx, query, adID)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
