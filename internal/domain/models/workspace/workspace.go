package workspace

import "time"

// Workspace is a single diagram owned by one user.
// CollectionID nil means the workspace lives in the user's root listing.
type Workspace struct {
	ID           int64     `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Type         string    `json:"type" db:"type"`
	Icon         string    `json:"icon" db:"icon"`
	UserID       string    `json:"userId" db:"user_id"`
	CollectionID *int64    `json:"collectionId" db:"collection_id"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
