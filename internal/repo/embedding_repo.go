package repo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"

	"github.com/sivanlg/homeradar/internal/model"
)

type EmbeddingRepo struct {
	db *sql.DB
}

func NewEmbeddingRepo(db *sql.DB) *EmbeddingRepo {
	return &EmbeddingRepo{db: db}
}

// GetContentHash returns the hash of the document whose vector is
// currently stored for the ad, if any. The pipeline compares it against
// the hash of the freshly normalized document to decide whether an
// embedding call is needed at all.
func (r *EmbeddingRepo) GetContentHash(ctx context.Context, adID string) (string, bool, error) {
	const query = `SELECT content_hash FROM ad_embeddings WHERE ad_id = $1`
	row := r.db.QueryRowContext(ctx, query, adID)
	var hash string
	if err := row.Scan(&hash); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return hash, true, nil
}

// Upsert replaces the ad's embedding wholesale: vector, hash, metadata
// and timestamp move together, never partially.
func (r *EmbeddingRepo) Upsert(ctx context.Context, emb *model.AdEmbedding) error {
	const query = `
		INSERT INTO ad_embeddings (ad_id, embedding, content_hash, meta_price, meta_rooms, meta_city, ctime)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (ad_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			content_hash = EXCLUDED.content_hash,
			meta_price = EXCLUDED.meta_price,
			meta_rooms = EXCLUDED.meta_rooms,
			meta_city = EXCLUDED.meta_city,
			ctime = EXCLUDED.ctime
	`
	_, err := r.db.ExecContext(ctx, query,
		emb.AdID,
		pgvector.NewVector(emb.Embedding),
		emb.ContentHash,
		emb.MetaPrice,
		emb.MetaRooms,
		emb.MetaCity,
		emb.Ctime,
	)
	return err
}

// ListAdsMissingEmbedding returns ads with no embedding row, for backfill.
func (r *EmbeddingRepo) ListAdsMissingEmbedding(ctx context.Context, limit int) ([]model.Ad, error) {
	const query = `
		SELECT a.id, COALESCE(a.segment_id, ''), a.status, a.title, a.description, a.city, a.neighborhood, a.property_type, a.raw_data, a.first_seen, a.last_seen
		FROM ads a
		LEFT JOIN ad_embeddings e ON a.id = e.ad_id
		WHERE e.ad_id IS NULL
		ORDER BY a.last_seen DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var ads []model.Ad
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, *ad)
	}
	return ads, rows.Err()
}

// SearchSimilar ranks embeddings by cosine distance to queryVector after
// applying the exact filters. Filters are ANDed; absent filters add no
// predicate. No matching rows is an empty result, not an error.
func (r *EmbeddingRepo) SearchSimilar(ctx context.Context, queryVector []float32, limit int, filters model.SearchFilters) ([]model.SearchResult, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT a.id, a.title, a.description, e.meta_price, a.city, e.meta_rooms,
		       1 - (e.embedding <=> $1) AS score
		FROM ad_embeddings e
		JOIN ads a ON a.id = e.ad_id
	`)
	args := []interface{}{pgvector.NewVector(queryVector)}
	var preds []string
	if filters.City != "" {
		args = append(args, filters.City)
		preds = append(preds, fmt.Sprintf("a.city = $%d", len(args)))
	}
	if filters.MinPrice != nil {
		args = append(args, *filters.MinPrice)
		preds = append(preds, fmt.Sprintf("e.meta_price >= $%d", len(args)))
	}
	if filters.MaxPrice != nil {
		args = append(args, *filters.MaxPrice)
		preds = append(preds, fmt.Sprintf("e.meta_price <= $%d", len(args)))
	}
	if filters.MinRooms != nil {
		args = append(args, *filters.MinRooms)
		preds = append(preds, fmt.Sprintf("e.meta_rooms >= $%d", len(args)))
	}
	if filters.MaxRooms != nil {
		args = append(args, *filters.MaxRooms)
		preds = append(preds, fmt.Sprintf("e.meta_rooms <= $%d", len(args)))
	}
	if len(preds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(preds, " AND "))
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY e.embedding <=> $1 LIMIT $%d", len(args)))

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	results := make([]model.SearchResult, 0, limit)
	for rows.Next() {
		var res model.SearchResult
		if err := rows.Scan(&res.AdID, &res.Title, &res.Description, &res.Price, &res.City, &res.Rooms, &res.Score); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}
