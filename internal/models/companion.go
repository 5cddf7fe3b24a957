package models

// Companion is a participant sharing ride costs.
type Companion struct {
	// ID is derived from the display name at creation time (uppercased,
	// whitespace runs replaced by "_"). It never changes afterwards.
	ID string `json:"id"`

	// Name is the display name. Unique case-insensitively among companions.
	Name string `json:"name"`

	// CreatedAt is the Unix timestamp when the companion was added.
	CreatedAt int64 `json:"createdAt"`
}
