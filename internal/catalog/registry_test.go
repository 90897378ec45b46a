package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Embedded(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	assert.Equal(t, "system", r.DefaultType())
	assert.Equal(t, "box", r.DefaultIcon())
	assert.Equal(t, []string{
		"system", "architecture", "app", "presentation", "realtime",
		"template:ecommerce", "template:ai-platform", "template:enterprise-k8s", "template:fintech-saas",
	}, r.TypeIDs())
	assert.Len(t, r.Icons(), 15)

	for _, icon := range []string{"server", "globe", "box", "database", "shield", "git", "zap", "cpu", "network", "cloud", "lock", "chart", "code", "wifi", "grid"} {
		assert.True(t, r.HasIcon(icon), icon)
	}
	assert.False(t, r.HasIcon("rocket"))

	blank, ok := r.GetType("system")
	require.True(t, ok)
	assert.False(t, blank.HasStarter)

	shop, ok := r.GetType("template:ecommerce")
	require.True(t, ok)
	assert.True(t, shop.HasStarter)

	_, ok = r.GetType("template:unknown")
	assert.False(t, ok)
}

func TestNewRegistryFromYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "missing default type",
			yaml: "default_type: nope\ndefault_icon: box\nicons: [box]\ntypes:\n  - id: system\n",
		},
		{
			name: "missing default icon",
			yaml: "default_type: system\ndefault_icon: box\nicons: [server]\ntypes:\n  - id: system\n",
		},
		{
			name: "duplicate type",
			yaml: "default_type: system\ndefault_icon: box\nicons: [box]\ntypes:\n  - id: system\n  - id: system\n",
		},
		{
			name: "type without id",
			yaml: "default_type: system\ndefault_icon: box\nicons: [box]\ntypes:\n  - label: Blank\n",
		},
		{
			name: "edge to unknown key",
			yaml: `default_type: system
default_icon: box
icons: [box]
types:
  - id: system
    starter:
      nodes:
        - { key: a, x: 0, y: 0 }
      edges:
        - { source: a, target: b }
`,
		},
		{
			name: "unknown parent",
			yaml: `default_type: system
default_icon: box
icons: [box]
types:
  - id: system
    starter:
      nodes:
        - { key: a, x: 0, y: 0, parent: group }
`,
		},
		{
			name: "malformed yaml",
			yaml: "types: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistryFromYAML([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestStarterGraph_Instantiate(t *testing.T) {
	r, err := NewRegistry()
	require.NoError(t, err)

	k8s, ok := r.GetType("template:enterprise-k8s")
	require.True(t, ok)

	nodes, edges, err := k8s.Starter.Instantiate(42)
	require.NoError(t, err)
	require.Len(t, nodes, len(k8s.Starter.Nodes))
	require.Len(t, edges, len(k8s.Starter.Edges))

	ids := make(map[string]bool)
	for _, n := range nodes {
		assert.Equal(t, int64(42), n.WorkspaceID)
		assert.Regexp(t, `^n-[A-Za-z0-9]{12}$`, n.ID)
		assert.False(t, ids[n.ID], "node ids must be unique")
		ids[n.ID] = true
		assert.True(t, json.Valid(n.Data))
	}

	var children int
	for _, n := range nodes {
		if n.ParentID != nil {
			children++
			assert.True(t, ids[*n.ParentID], "parent must point at a generated node")
			require.NotNil(t, n.Extent)
			assert.Equal(t, "parent", *n.Extent)
		}
	}
	assert.Equal(t, 3, children)

	for _, e := range edges {
		assert.Regexp(t, `^e-[A-Za-z0-9]{12}$`, e.ID)
		assert.True(t, ids[e.Source])
		assert.True(t, ids[e.Target])
	}
}

func TestStarterGraph_InstantiateFreshIDs(t *testing.T) {
	g := &StarterGraph{
		Nodes: []StarterNode{{Key: "a"}, {Key: "b"}},
		Edges: []StarterEdge{{Source: "a", Target: "b", Label: "calls", Animated: true}},
	}

	n1, e1, err := g.Instantiate(1)
	require.NoError(t, err)
	n2, _, err := g.Instantiate(2)
	require.NoError(t, err)

	assert.NotEqual(t, n1[0].ID, n2[0].ID)
	assert.JSONEq(t, `{}`, string(n1[0].Data))
	assert.JSONEq(t, `{"label":"calls"}`, string(e1[0].Data))
	assert.True(t, e1[0].Animated)
}
