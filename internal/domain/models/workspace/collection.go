package workspace

import "time"

// Collection is a folder in a user's collection tree
type Collection struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	UserID      string    `json:"userId" db:"user_id"`
	ParentID    *int64    `json:"parentId" db:"parent_id"` // NULL = root level
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
