package model

import "encoding/json"

const (
	AdStatusActive  = "active"
	AdStatusSold    = "sold"
	AdStatusRemoved = "removed"
)

// Ad is one tracked listing, identified by the marketplace-assigned id.
// SegmentID is empty for ads ingested outside a tracked segment.
type Ad struct {
	ID           string          `json:"id"`
	SegmentID    string          `json:"segment_id"`
	Status       string          `json:"status"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	City         string          `json:"city"`
	Neighborhood string          `json:"neighborhood"`
	PropertyType string          `json:"property_type"`
	RawData      json.RawMessage `json:"raw_data"`
	FirstSeen    int64           `json:"first_seen"`
	LastSeen     int64           `json:"last_seen"`
}
