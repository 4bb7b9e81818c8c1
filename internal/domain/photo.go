package domain

import "time"

// Photo is one uploaded memory. URL and Key come back opaque from the
// object store; Key is what we need to delete or re-sign the object later.
type Photo struct {
	ID          string
	UserID      string
	URL         string
	Key         string
	Caption     string
	Description *string
	TakenAt     time.Time // defaults to upload time; drives timeline order
	IsFavorite  bool
	Story       *string
	HasStory    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PhotoUpdate is a partial-field update. Nil means "leave unchanged".
type PhotoUpdate struct {
	Caption     *string
	Description *string
	TakenAt     *time.Time
}
