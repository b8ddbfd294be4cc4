package model

import "encoding/json"

// AdSnapshot is one immutable observation of an ad's analytical fields.
// Rows are append-only; a snapshot is written on every ingestion of an ad
// even when nothing changed.
type AdSnapshot struct {
	ID           string          `json:"id"`
	AdID         string          `json:"ad_id"`
	Price        int64           `json:"price"`
	Rooms        float64         `json:"rooms"`
	SquareMeters int             `json:"square_meters"`
	Floor        int             `json:"floor"`
	Attributes   json.RawMessage `json:"attributes"`
	ObservedAt   int64           `json:"observed_at"`
}
