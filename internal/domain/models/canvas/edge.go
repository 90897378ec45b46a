package canvas

import "encoding/json"

// Edge connects two nodes of the same workspace.
// Source and Target are not checked against the stored node set.
type Edge struct {
	ID           string          `json:"id" db:"id"`
	WorkspaceID  int64           `json:"workspaceId" db:"workspace_id"`
	Source       string          `json:"source" db:"source"`
	Target       string          `json:"target" db:"target"`
	SourceHandle *string         `json:"sourceHandle,omitempty" db:"source_handle"`
	TargetHandle *string         `json:"targetHandle,omitempty" db:"target_handle"`
	Type         string          `json:"type,omitempty" db:"type"`
	Data         json.RawMessage `json:"data,omitempty" db:"data"`
	Animated     bool            `json:"animated" db:"animated"`
}
