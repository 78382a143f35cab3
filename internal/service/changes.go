package service

import (
	"context"

	"mindmap/internal/domain"
	"mindmap/internal/metrics"
)

// ChangeType names a canvas change
type ChangeType string

const (
	ChangePosition ChangeType = "position"
	ChangeRemove   ChangeType = "remove"
)

// NodeChange is one entry of a canvas node change list
type NodeChange struct {
	Type     ChangeType       `json:"type" validate:"required,oneof=position remove"`
	ID       string           `json:"id" validate:"required"`
	Position *domain.Position `json:"position,omitempty" validate:"required_if=Type position"`
}

// EdgeChange is one entry of a canvas edge change list
type EdgeChange struct {
	Type ChangeType `json:"type" validate:"required,oneof=remove"`
	ID   string     `json:"id" validate:"required"`
}

// ChangeResult summarizes an applied change list
type ChangeResult struct {
	Moved        int      `json:"moved"`
	RemovedNodes []string `json:"removed_nodes"`
	RemovedEdges []string `json:"removed_edges"`
	Ignored      int      `json:"ignored"`
}

// ApplyNodeChanges applies a canvas change list as one operation. Changes
// naming unknown nodes are ignored. Removals cascade to edges.
func (s *GraphService) ApplyNodeChanges(ctx context.Context, changes []NodeChange) (*ChangeResult, error) {
	result := &ChangeResult{RemovedNodes: []string{}, RemovedEdges: []string{}}
	err := s.exec(ctx, "node_changes", func() ([]Event, error) {
		var events []Event
		moved := make([]domain.NodePosition, 0)

		for _, c := range changes {
			switch c.Type {
			case ChangePosition:
				if c.Position == nil {
					result.Ignored++
					continue
				}
				if _, err := s.reg.SetPosition(c.ID, *c.Position); err != nil {
					result.Ignored++
					continue
				}
				moved = append(moved, domain.NodePosition{NodeID: c.ID, X: c.Position.X, Y: c.Position.Y})
			case ChangeRemove:
				edges, ok := s.reg.DeleteNode(c.ID)
				if !ok {
					result.Ignored++
					continue
				}
				result.RemovedNodes = append(result.RemovedNodes, c.ID)
				result.RemovedEdges = append(result.RemovedEdges, edges...)
				events = append(events, s.nodeDeleted(c.ID, edges)...)
			default:
				result.Ignored++
			}
		}

		result.Moved = len(moved)
		if len(moved) > 0 {
			events = append([]Event{{Type: EventPositionsUpdated, Payload: moved}}, events...)
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ApplyEdgeChanges applies a canvas edge change list as one operation
func (s *GraphService) ApplyEdgeChanges(ctx context.Context, changes []EdgeChange) (*ChangeResult, error) {
	result := &ChangeResult{RemovedNodes: []string{}, RemovedEdges: []string{}}
	err := s.exec(ctx, "edge_changes", func() ([]Event, error) {
		var events []Event
		for _, c := range changes {
			if c.Type != ChangeRemove || !s.reg.RemoveEdge(c.ID) {
				result.Ignored++
				continue
			}
			s.metrics.Inc(metrics.EdgesDeleted)
			result.RemovedEdges = append(result.RemovedEdges, c.ID)
			events = append(events, Event{Type: EventEdgeDeleted, Payload: EdgeDeletedPayload{EdgeID: c.ID}})
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
