package model

// SegmentCriteria describes what a tracked segment should watch for,
// expressed in caller terms; the scraper package translates it to the
// marketplace's query-string encoding.
type SegmentCriteria struct {
	MinRooms     *float64 `json:"min_rooms"`
	MaxRooms     *float64 `json:"max_rooms"`
	MinPrice     *int64   `json:"min_price"`
	MaxPrice     *int64   `json:"max_price"`
	MinFloor     *int     `json:"min_floor"`
	MaxFloor     *int     `json:"max_floor"`
	MinSize      *int     `json:"min_size"`
	MaxSize      *int     `json:"max_size"`
	PropertyType string   `json:"property_type"`
	Condition    string   `json:"condition"`
	Parking      bool     `json:"parking"`
	Elevator     bool     `json:"elevator"`
	Balcony      bool     `json:"balcony"`
	SafeRoom     bool     `json:"safe_room"`
}
