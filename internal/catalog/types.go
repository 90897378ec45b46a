package catalog

import "encoding/json"

// WorkspaceType is one of the closed set of workspace template categories
type WorkspaceType struct {
	ID          string        `yaml:"id" json:"id"`
	Label       string        `yaml:"label" json:"label"`
	Description string        `yaml:"description" json:"description"`
	Tag         string        `yaml:"tag" json:"tag"`
	Icon        string        `yaml:"icon" json:"icon"` // Suggested icon for new workspaces of this type
	Starter     *StarterGraph `yaml:"starter,omitempty" json:"-"`
	HasStarter  bool          `yaml:"-" json:"hasStarter"`
}

// StarterGraph is the graph written into a new workspace of a template type.
// Keys are local to the template; real node ids are generated on instantiation.
type StarterGraph struct {
	Nodes []StarterNode `yaml:"nodes"`
	Edges []StarterEdge `yaml:"edges"`
}

// StarterNode is a template node
type StarterNode struct {
	Key    string                 `yaml:"key"`
	Type   string                 `yaml:"type"`
	X      float64                `yaml:"x"`
	Y      float64                `yaml:"y"`
	Data   map[string]interface{} `yaml:"data"`
	Parent string                 `yaml:"parent,omitempty"`
	Extent string                 `yaml:"extent,omitempty"`
}

// StarterEdge is a template edge between two starter node keys
type StarterEdge struct {
	Source   string `yaml:"source"`
	Target   string `yaml:"target"`
	Type     string `yaml:"type,omitempty"`
	Label    string `yaml:"label,omitempty"`
	Animated bool   `yaml:"animated,omitempty"`
}

// Catalog is the decoded catalog file
type Catalog struct {
	DefaultType string          `yaml:"default_type" json:"defaultType"`
	DefaultIcon string          `yaml:"default_icon" json:"defaultIcon"`
	Types       []WorkspaceType `yaml:"types" json:"types"`
	Icons       []string        `yaml:"icons" json:"icons"`
}

// labelData renders the data payload of a starter edge
func (e StarterEdge) labelData() (json.RawMessage, error) {
	if e.Label == "" {
		return nil, nil
	}
	return json.Marshal(map[string]string{"label": e.Label})
}
