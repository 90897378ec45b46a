package canvas

import "encoding/json"

// Position is a node's location on the canvas
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one visual element of a workspace diagram.
// ID is generated by the client and stays stable across saves.
type Node struct {
	ID          string          `json:"id" db:"id"`
	WorkspaceID int64           `json:"workspaceId" db:"workspace_id"`
	Type        string          `json:"type,omitempty" db:"type"`
	Position    Position        `json:"position"`
	Data        json.RawMessage `json:"data,omitempty" db:"data"`          // Opaque to the backend
	ParentID    *string         `json:"parentId,omitempty" db:"parent_id"` // Grouped/nested nodes
	Extent      *string         `json:"extent,omitempty" db:"extent"`
}
