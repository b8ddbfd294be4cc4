package model

// SearchFilters are exact predicates applied alongside vector ranking.
// Nil/empty fields are no-ops; present fields are combined with AND.
type SearchFilters struct {
	City     string   `json:"city"`
	MinPrice *int64   `json:"min_price"`
	MaxPrice *int64   `json:"max_price"`
	MinRooms *float64 `json:"min_rooms"`
	MaxRooms *float64 `json:"max_rooms"`
}

type SearchResult struct {
	AdID        string  `json:"ad_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       int64   `json:"price"`
	City        string  `json:"city"`
	Rooms       float64 `json:"rooms"`
	Score       float64 `json:"score"`
}
