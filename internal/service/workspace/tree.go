package workspace

import (
	"context"
	"log/slog"

	models "meshwork/internal/domain/models/workspace"
	"meshwork/internal/domain/repositories"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	wsSvc "meshwork/internal/domain/services/workspace"
)

// treeService implements the TreeService interface
type treeService struct {
	collectionRepo wsRepo.CollectionRepository
	workspaceRepo  wsRepo.WorkspaceRepository
	txManager      repositories.TransactionManager
	logger         *slog.Logger
}

// NewTreeService creates a new tree service
func NewTreeService(
	collectionRepo wsRepo.CollectionRepository,
	workspaceRepo wsRepo.WorkspaceRepository,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) wsSvc.TreeService {
	return &treeService{
		collectionRepo: collectionRepo,
		workspaceRepo:  workspaceRepo,
		txManager:      txManager,
		logger:         logger,
	}
}

// GetTree builds the nested collection/workspace tree of a user from two
// flat reads taken in one snapshot
func (s *treeService) GetTree(ctx context.Context, userID string) (*models.Tree, error) {
	var allCollections []models.Collection
	var allWorkspaces []models.Workspace

	err := s.txManager.ExecReadTx(ctx, func(ctx context.Context) error {
		var err error
		if allCollections, err = s.collectionRepo.ListAllByUser(ctx, userID); err != nil {
			return err
		}
		allWorkspaces, err = s.workspaceRepo.ListAllByUser(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}

	collectionMap := make(map[int64]*models.CollectionTreeNode, len(allCollections))
	var rootCollectionIDs []int64

	// First pass: create all collection nodes
	for _, c := range allCollections {
		collectionMap[c.ID] = &models.CollectionTreeNode{
			ID:          c.ID,
			Title:       c.Title,
			ParentID:    c.ParentID,
			CreatedAt:   c.CreatedAt,
			Collections: []*models.CollectionTreeNode{},
			Workspaces:  []models.WorkspaceTreeNode{},
		}
	}

	// Second pass: attach children to parents
	for _, c := range allCollections {
		node := collectionMap[c.ID]
		if c.ParentID == nil {
			rootCollectionIDs = append(rootCollectionIDs, c.ID)
			continue
		}
		if parent, exists := collectionMap[*c.ParentID]; exists {
			parent.Collections = append(parent.Collections, node)
		}
	}

	// Third pass: file workspaces
	rootWorkspaces := make([]models.WorkspaceTreeNode, 0)
	for _, ws := range allWorkspaces {
		wsNode := models.WorkspaceTreeNode{
			ID:           ws.ID,
			Title:        ws.Title,
			Type:         ws.Type,
			Icon:         ws.Icon,
			CollectionID: ws.CollectionID,
			CreatedAt:    ws.CreatedAt,
		}

		if ws.CollectionID == nil {
			rootWorkspaces = append(rootWorkspaces, wsNode)
		} else if parent, exists := collectionMap[*ws.CollectionID]; exists {
			parent.Workspaces = append(parent.Workspaces, wsNode)
		}
	}

	rootCollections := make([]*models.CollectionTreeNode, 0, len(rootCollectionIDs))
	for _, id := range rootCollectionIDs {
		rootCollections = append(rootCollections, collectionMap[id])
	}

	s.logger.Debug("collection tree built",
		"user_id", userID,
		"collection_count", len(allCollections),
		"workspace_count", len(allWorkspaces),
	)

	return &models.Tree{
		Collections: rootCollections,
		Workspaces:  rootWorkspaces,
	}, nil
}
