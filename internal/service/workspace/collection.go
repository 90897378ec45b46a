package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"meshwork/internal/config"
	"meshwork/internal/domain"
	models "meshwork/internal/domain/models/workspace"
	"meshwork/internal/domain/repositories"
	wsRepo "meshwork/internal/domain/repositories/workspace"
	"meshwork/internal/domain/services"
	wsSvc "meshwork/internal/domain/services/workspace"
)

type collectionService struct {
	collectionRepo wsRepo.CollectionRepository
	txManager      repositories.TransactionManager
	authorizer     services.ResourceAuthorizer
	logger         *slog.Logger
}

// NewCollectionService creates a new collection service
func NewCollectionService(
	collectionRepo wsRepo.CollectionRepository,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) wsSvc.CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		txManager:      txManager,
		authorizer:     authorizer,
		logger:         logger,
	}
}

// ListCollections lists one level of the tree
func (s *collectionService) ListCollections(ctx context.Context, userID string, parentID *int64) ([]models.Collection, error) {
	if parentID != nil {
		if err := s.authorizer.CanAccessCollection(ctx, userID, *parentID); err != nil {
			return nil, err
		}
	}
	return s.collectionRepo.ListChildren(ctx, userID, parentID)
}

// GetCollection retrieves a collection owned by the user
func (s *collectionService) GetCollection(ctx context.Context, userID string, id int64) (*models.Collection, error) {
	c, err := s.collectionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, fmt.Errorf("collection %d: %w", id, domain.ErrUnauthorized)
	}
	return c, nil
}

// CreateCollection creates a collection at the root or under an owned parent
func (s *collectionService) CreateCollection(ctx context.Context, req *wsSvc.CreateCollectionRequest) (*models.Collection, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if req.ParentID != nil {
		if err := s.authorizer.CanAccessCollection(ctx, req.UserID, *req.ParentID); err != nil {
			return nil, err
		}
	}

	c := &models.Collection{
		Title:       req.Title,
		Description: req.Description,
		UserID:      req.UserID,
		ParentID:    req.ParentID,
	}
	if err := s.collectionRepo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("collection created",
		"id", c.ID,
		"title", c.Title,
		"parent_id", c.ParentID,
		"user_id", c.UserID,
	)

	return c, nil
}

// UpdateCollection renames, re-describes or moves a collection. A move
// holds the user's tree lock from the ancestor walk until the write commits,
// so two crossing moves cannot both pass the cycle check.
func (s *collectionService) UpdateCollection(ctx context.Context, userID string, id int64, req *wsSvc.UpdateCollectionRequest) (*models.Collection, error) {
	var c *models.Collection
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if req.ParentID.Present {
			if err := s.collectionRepo.LockTree(ctx, userID); err != nil {
				return err
			}
		}

		var err error
		c, err = s.GetCollection(ctx, userID, id)
		if err != nil {
			return err
		}

		trimPtr(req.Title)
		if err := s.validateUpdateRequest(req); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}

		if req.Title != nil {
			c.Title = *req.Title
		}
		if req.Description.Present {
			c.Description = req.Description.Value
		}

		// Tri-state: only move if the field was present in the request
		if req.ParentID.Present {
			if req.ParentID.Value != nil {
				if err := s.authorizer.CanAccessCollection(ctx, userID, *req.ParentID.Value); err != nil {
					return err
				}
				if err := s.validateNoCircularReference(ctx, id, *req.ParentID.Value); err != nil {
					return err
				}
				s.logger.Debug("moving collection", "id", id, "new_parent_id", *req.ParentID.Value)
			} else {
				s.logger.Debug("moving collection to root", "id", id)
			}
			c.ParentID = req.ParentID.Value
		}

		return s.collectionRepo.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("collection updated",
		"id", c.ID,
		"title", c.Title,
		"parent_id", c.ParentID,
	)

	return c, nil
}

// DeleteCollection deletes a collection. Sub-collections go with it;
// workspaces filed anywhere below it move to the root listing.
func (s *collectionService) DeleteCollection(ctx context.Context, userID string, id int64) error {
	if err := s.authorizer.CanAccessCollection(ctx, userID, id); err != nil {
		return err
	}

	if err := s.collectionRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("collection deleted", "id", id, "user_id", userID)
	return nil
}

// validateNoCircularReference walks up from newParentID and rejects the
// move if collectionID is on the path to the root
func (s *collectionService) validateNoCircularReference(ctx context.Context, collectionID, newParentID int64) error {
	current := &newParentID
	for depth := 0; current != nil; depth++ {
		if *current == collectionID {
			return domain.Invalid("cannot move a collection into itself or one of its descendants")
		}
		if depth >= config.MaxCollectionDepth {
			return domain.Invalid("collection tree exceeds %d levels", config.MaxCollectionDepth)
		}

		parent, err := s.collectionRepo.GetByID(ctx, *current)
		if err != nil {
			return fmt.Errorf("walk collection ancestors: %w", err)
		}
		current = parent.ParentID
	}
	return nil
}

// validateCreateRequest validates a collection creation request
func (s *collectionService) validateCreateRequest(req *wsSvc.CreateCollectionRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Title, collectionTitleRules()...),
		validation.Field(&req.Description, validation.RuneLength(0, config.MaxCollectionDescriptionLength)),
	)
}

// validateUpdateRequest validates a collection update request
func (s *collectionService) validateUpdateRequest(req *wsSvc.UpdateCollectionRequest) error {
	if req.Title == nil && !req.Description.Present && !req.ParentID.Present {
		return fmt.Errorf("at least one field must be provided")
	}

	var rules []*validation.FieldRules
	if req.Title != nil {
		rules = append(rules, validation.Field(&req.Title, collectionTitleRules()...))
	}
	if req.Description.Value != nil {
		if n := len([]rune(*req.Description.Value)); n > config.MaxCollectionDescriptionLength {
			return fmt.Errorf("description: the length must be no more than %d", config.MaxCollectionDescriptionLength)
		}
	}

	return validation.ValidateStruct(req, rules...)
}
