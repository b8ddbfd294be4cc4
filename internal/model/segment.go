package model

type Segment struct {
	ID        string `json:"id"`
	SearchURL string `json:"search_url"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Ctime     int64  `json:"ctime"`
}
