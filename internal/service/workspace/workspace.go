package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"meshwork/internal/catalog"
	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	"meshwork/internal/domain/repositories"
	canvasRepo "meshwork/internal/domain/repositories/canvas"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	"meshwork/internal/domain/services"
	wsSvc "meshwork/internal/domain/services/workspace"
)

// copySuffix is appended to the title of a duplicate when no title is given
const copySuffix = " (Copy)"

type workspaceService struct {
	workspaceRepo wsRepo.WorkspaceRepository
	canvasRepo    canvasRepo.CanvasRepository
	txManager     repositories.TransactionManager
	authorizer    services.ResourceAuthorizer
	catalog       *catalog.Registry
	logger        *slog.Logger
}

// NewWorkspaceService creates a new workspace service
func NewWorkspaceService(
	workspaceRepo wsRepo.WorkspaceRepository,
	canvasRepo canvasRepo.CanvasRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	registry *catalog.Registry,
	logger *slog.Logger,
) wsSvc.WorkspaceService {
	return &workspaceService{
		workspaceRepo: workspaceRepo,
		canvasRepo:    canvasRepo,
		txManager:     txManager,
		authorizer:    authorizer,
		catalog:       registry,
		logger:        logger,
	}
}

// ListWorkspaces lists the user's workspaces in one collection. A nil
// collectionID is the root listing, not every workspace.
func (s *workspaceService) ListWorkspaces(ctx context.Context, userID string, collectionID *int64) ([]models.Workspace, error) {
	if collectionID != nil {
		if err := s.authorizer.CanAccessCollection(ctx, userID, *collectionID); err != nil {
			return nil, err
		}
	}
	return s.workspaceRepo.ListByUser(ctx, userID, collectionID)
}

// GetWorkspace retrieves a workspace owned by the user
func (s *workspaceService) GetWorkspace(ctx context.Context, userID string, id int64) (*models.Workspace, error) {
	ws, err := s.workspaceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws.UserID != userID {
		return nil, fmt.Errorf("workspace %d: %w", id, domain.ErrUnauthorized)
	}
	return ws, nil
}

// CreateWorkspace creates a workspace. Template types get their starter
// graph written in the same transaction.
func (s *workspaceService) CreateWorkspace(ctx context.Context, req *wsSvc.CreateWorkspaceRequest) (*models.Workspace, error) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Type == "" {
		req.Type = s.catalog.DefaultType()
	}
	if req.Icon == "" {
		req.Icon = s.catalog.DefaultIcon()
	}

	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.CollectionID != nil {
		if err := s.authorizer.CanAccessCollection(ctx, req.UserID, *req.CollectionID); err != nil {
			return nil, err
		}
	}

	wsType, _ := s.catalog.GetType(req.Type)

	ws := &models.Workspace{
		Title:        req.Title,
		Type:         req.Type,
		Icon:         req.Icon,
		UserID:       req.UserID,
		CollectionID: req.CollectionID,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.workspaceRepo.Create(ctx, ws); err != nil {
			return err
		}
		if wsType.Starter == nil {
			return nil
		}

		nodes, edges, err := wsType.Starter.Instantiate(ws.ID)
		if err != nil {
			return fmt.Errorf("instantiate starter graph: %w", err)
		}
		return s.canvasRepo.ReplaceGraph(ctx, ws.ID, nodes, edges)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workspace created",
		"id", ws.ID,
		"title", ws.Title,
		"type", ws.Type,
		"user_id", ws.UserID,
		"collection_id", ws.CollectionID,
		"starter", wsType.Starter != nil,
	)

	return ws, nil
}

// UpdateWorkspace applies the fields present in req
func (s *workspaceService) UpdateWorkspace(ctx context.Context, userID string, id int64, req *wsSvc.UpdateWorkspaceRequest) (*models.Workspace, error) {
	ws, err := s.GetWorkspace(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	trimPtr(req.Title)
	if err := s.validateUpdateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.Title != nil {
		ws.Title = *req.Title
	}
	if req.Type != nil {
		ws.Type = *req.Type
	}
	if req.Icon != nil {
		ws.Icon = *req.Icon
	}

	// Tri-state: only re-file if the field was present in the request
	if req.CollectionID.Present {
		if req.CollectionID.Value != nil {
			if err := s.authorizer.CanAccessCollection(ctx, userID, *req.CollectionID.Value); err != nil {
				return nil, err
			}
		}
		ws.CollectionID = req.CollectionID.Value
	}

	if err := s.workspaceRepo.Update(ctx, ws); err != nil {
		return nil, err
	}

	s.logger.Info("workspace updated",
		"id", ws.ID,
		"title", ws.Title,
		"collection_id", ws.CollectionID,
	)

	return ws, nil
}

// DeleteWorkspace deletes the graph and the workspace in one transaction,
// so no orphaned nodes or edges can remain
func (s *workspaceService) DeleteWorkspace(ctx context.Context, userID string, id int64) error {
	if err := s.authorizer.CanAccessWorkspace(ctx, userID, id); err != nil {
		return err
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.canvasRepo.DeleteGraph(ctx, id); err != nil {
			return err
		}
		return s.workspaceRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.Info("workspace deleted", "id", id, "user_id", userID)
	return nil
}

// DuplicateWorkspace copies metadata and graph in one transaction. Without
// a non-blank title the copy is named "<original> (Copy)".
func (s *workspaceService) DuplicateWorkspace(ctx context.Context, userID string, id int64, req *wsSvc.DuplicateWorkspaceRequest) (*models.Workspace, error) {
	src, err := s.GetWorkspace(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	title := src.Title + copySuffix
	if req != nil && req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		title = strings.TrimSpace(*req.Title)
		if err := validation.Validate(title, workspaceTitleRules()...); err != nil {
			return nil, fmt.Errorf("%w: title: %v", domain.ErrValidation, err)
		}
	}

	var dup *models.Workspace
	err = s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		dup, err = s.workspaceRepo.Duplicate(ctx, id, title)
		if err != nil {
			return err
		}
		return s.canvasRepo.DuplicateGraph(ctx, id, dup.ID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("workspace duplicated",
		"source_id", id,
		"id", dup.ID,
		"title", dup.Title,
		"user_id", userID,
	)

	return dup, nil
}

// validateCreateRequest validates a workspace creation request
func (s *workspaceService) validateCreateRequest(req *wsSvc.CreateWorkspaceRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, workspaceTitleRules()...),
		validation.Field(&req.Type, typeRule(s.catalog)),
		validation.Field(&req.Icon, iconRule(s.catalog)),
	)
}

// validateUpdateRequest validates a workspace update request
func (s *workspaceService) validateUpdateRequest(req *wsSvc.UpdateWorkspaceRequest) error {
	// At least one field must be provided
	if req.Title == nil && req.Type == nil && req.Icon == nil && !req.CollectionID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Title != nil {
		rules = append(rules, validation.Field(&req.Title, workspaceTitleRules()...))
	}
	if req.Type != nil {
		rules = append(rules, validation.Field(&req.Type, typeRule(s.catalog)))
	}
	if req.Icon != nil {
		rules = append(rules, validation.Field(&req.Icon, iconRule(s.catalog)))
	}

	return validation.ValidateStruct(req, rules...)
}
