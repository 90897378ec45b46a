package canvas

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"meshwork/internal/config"
	models "meshwork/internal/domain/models/canvas"
	canvasSvc "meshwork/internal/domain/services/canvas"
)

// validateSyncRequest checks sizes and id integrity of a sync payload.
// Both arrays must be present: a missing or null field is not an empty graph.
func (s *canvasService) validateSyncRequest(req *canvasSvc.SyncCanvasRequest) error {
	if req == nil {
		return errors.New("request body is required")
	}

	return validation.ValidateStruct(req,
		validation.Field(&req.Nodes,
			validation.NotNil.Error("is required; send [] to clear the canvas"),
			validation.Length(0, config.MaxCanvasNodes),
			validation.By(validateNodeIDs),
		),
		validation.Field(&req.Edges,
			validation.NotNil.Error("is required; send [] to clear the canvas"),
			validation.Length(0, config.MaxCanvasEdges),
			validation.By(s.edgeRule(req.Nodes)),
		),
	)
}

// validateNodeIDs requires non-empty ids, unique within the payload
func validateNodeIDs(value interface{}) error {
	nodes, _ := value.([]models.Node)
	seen := make(map[string]bool, len(nodes))
	for i, n := range nodes {
		if err := checkID(n.ID); err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}

// edgeRule requires unique edge ids and non-empty endpoints. In strict
// mode both endpoints must also be nodes of the payload.
func (s *canvasService) edgeRule(nodes []models.Node) validation.RuleFunc {
	return func(value interface{}) error {
		edges, _ := value.([]models.Edge)

		var nodeIDs map[string]bool
		if s.opts.StrictEdges {
			nodeIDs = make(map[string]bool, len(nodes))
			for _, n := range nodes {
				nodeIDs[n.ID] = true
			}
		}

		seen := make(map[string]bool, len(edges))
		for i, e := range edges {
			if err := checkID(e.ID); err != nil {
				return fmt.Errorf("edge %d: %w", i, err)
			}
			if seen[e.ID] {
				return fmt.Errorf("duplicate edge id %q", e.ID)
			}
			seen[e.ID] = true

			if e.Source == "" || e.Target == "" {
				return fmt.Errorf("edge %q: source and target are required", e.ID)
			}
			if nodeIDs != nil {
				if !nodeIDs[e.Source] {
					return fmt.Errorf("edge %q: source %q is not a node of this canvas", e.ID, e.Source)
				}
				if !nodeIDs[e.Target] {
					return fmt.Errorf("edge %q: target %q is not a node of this canvas", e.ID, e.Target)
				}
			}
		}
		return nil
	}
}

func checkID(id string) error {
	if id == "" {
		return errors.New("id is required")
	}
	if len(id) > config.MaxGraphIDLength {
		return fmt.Errorf("id exceeds %d characters", config.MaxGraphIDLength)
	}
	return nil
}
