package canvas

import (
	"context"
	"fmt"
	"log/slog"

	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/canvas"
	"meshwork/internal/domain/repositories"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
	"meshwork/internal/domain/services"
	canvasSvc "meshwork/internal/domain/services/canvas"
)

// Options tunes payload validation
type Options struct {
	// StrictEdges rejects a sync when an edge endpoint is not in its node set
	StrictEdges bool
}

type canvasService struct {
	canvasRepo canvasRepo.CanvasRepository
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	opts       Options
	logger     *slog.Logger
}

// NewCanvasService creates a new canvas service
func NewCanvasService(
	canvasRepo canvasRepo.CanvasRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	opts Options,
	logger *slog.Logger,
) canvasSvc.CanvasService {
	return &canvasService{
		canvasRepo: canvasRepo,
		txManager:  txManager,
		authorizer: authorizer,
		opts:       opts,
		logger:     logger,
	}
}

// GetCanvas reads nodes and edges inside one read transaction, so a
// concurrent sync is seen either not at all or completely
func (s *canvasService) GetCanvas(ctx context.Context, userID string, workspaceID int64) (*models.Canvas, error) {
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	var canvas models.Canvas
	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		nodes, err := s.canvasRepo.GetNodes(ctx, workspaceID)
		if err != nil {
			return err
		}
		edges, err := s.canvasRepo.GetEdges(ctx, workspaceID)
		if err != nil {
			return err
		}
		canvas.Nodes = nodes
		canvas.Edges = edges
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &canvas, nil
}

// GetNodes returns the nodes of a workspace
func (s *canvasService) GetNodes(ctx context.Context, userID string, workspaceID int64) ([]models.Node, error) {
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.canvasRepo.GetNodes(ctx, workspaceID)
}

// GetEdges returns the edges of a workspace
func (s *canvasService) GetEdges(ctx context.Context, userID string, workspaceID int64) ([]models.Edge, error) {
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.canvasRepo.GetEdges(ctx, workspaceID)
}

// SyncCanvas replaces the stored graph with the request's full snapshot.
// Empty node and edge sets clear the canvas.
func (s *canvasService) SyncCanvas(ctx context.Context, userID string, workspaceID int64, req *canvasSvc.SyncCanvasRequest) (*canvasSvc.SyncResult, error) {
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, workspaceID); err != nil {
		return nil, err
	}

	if err := s.validateSyncRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.canvasRepo.ReplaceGraph(ctx, workspaceID, req.Nodes, req.Edges)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("canvas synced",
		"workspace_id", workspaceID,
		"user_id", userID,
		"nodes", len(req.Nodes),
		"edges", len(req.Edges),
	)

	return &canvasSvc.SyncResult{
		Success: true,
		Nodes:   len(req.Nodes),
		Edges:   len(req.Edges),
	}, nil
}

// DuplicateCanvas copies every node and edge of fromID into toID. Ids are
// kept, so copying into a workspace that already holds them is a conflict.
func (s *canvasService) DuplicateCanvas(ctx context.Context, userID string, fromID, toID int64) error {
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, fromID); err != nil {
		return err
	}
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, toID); err != nil {
		return err
	}
	if fromID == toID {
		return domain.Invalid("cannot duplicate a canvas into itself")
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		return s.canvasRepo.DuplicateGraph(ctx, fromID, toID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("canvas duplicated",
		"from_workspace_id", fromID,
		"to_workspace_id", toID,
		"user_id", userID,
	)

	return nil
}
