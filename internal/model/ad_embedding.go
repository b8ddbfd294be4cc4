package model

// AdEmbedding holds the vector for an ad's semantic document, at most one
// row per ad. ContentHash is the digest of the document the vector was
// generated from; MetaPrice/MetaRooms/MetaCity are denormalized at
// embedding time so similarity search can filter without extra joins.
type AdEmbedding struct {
	AdID        string    `json:"ad_id"`
	Embedding   []float32 `json:"embedding"`
	ContentHash string    `json:"content_hash"`
	MetaPrice   int64     `json:"meta_price"`
	MetaRooms   float64   `json:"meta_rooms"`
	MetaCity    string    `json:"meta_city"`
	Ctime       int64     `json:"ctime"`
}
