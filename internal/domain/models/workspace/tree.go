package workspace

import "time"

// Tree represents the root of a user's collection tree
type Tree struct {
	Collections []*CollectionTreeNode `json:"collections"`
	Workspaces  []WorkspaceTreeNode   `json:"workspaces"`
}

// CollectionTreeNode represents a collection in the tree with nested children
type CollectionTreeNode struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	ParentID    *int64                `json:"parentId"`
	CreatedAt   time.Time             `json:"createdAt"`
	Collections []*CollectionTreeNode `json:"collections"` // Pointers for proper nesting
	Workspaces  []WorkspaceTreeNode   `json:"workspaces"`
}

// WorkspaceTreeNode represents a workspace in the tree (metadata only, no graph)
type WorkspaceTreeNode struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Type         string    `json:"type"`
	Icon         string    `json:"icon"`
	CollectionID *int64    `json:"collectionId"`
	CreatedAt    time.Time `json:"createdAt"`
}
