package categories

import (
	"context"
	"strings"

	"github.com/harlowprint/backoffice-backend/pkg/db/models"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

// Store is the catalogue persistence surface the service needs.
type Store interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	Create(ctx context.Context, entry *models.Category) error
	Update(ctx context.Context, id int64, name string, position int) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// Platform is the slice of the platform client collection sync needs.
type Platform interface {
	ListSmartCollections(ctx context.Context) ([]shopify.SmartCollection, error)
	CreateSmartCollection(ctx context.Context, collection shopify.SmartCollection) (*shopify.SmartCollection, error)
	UpdateSmartCollection(ctx context.Context, collection shopify.SmartCollection) error
}

// CreateInput is a new catalogue entry.
type CreateInput struct {
	Name     string `json:"name" validate:"required"`
	Kind     string `json:"kind" validate:"required,oneof=category subcategory"`
	Position int    `json:"position"`
}

// SyncResult reports a collection sync.
type SyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Total   int `json:"total"`
}

// ServiceParams groups dependencies for the categories service.
type ServiceParams struct {
	Store    Store
	Platform Platform
	Logger   *logger.Logger
}

// Service manages the category catalogue and mirrors it to platform
// collections.
type Service interface {
	List(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, input CreateInput) (*models.Category, error)
	Update(ctx context.Context, id int64, name string, position int) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
	SyncCollections(ctx context.Context) (*SyncResult, error)
}

type service struct {
	store    Store
	platform Platform
	log      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.Platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{store: params.Store, platform: params.Platform, log: params.Logger}, nil
}

func (s *service) List(ctx context.Context) ([]models.Category, error) {
	return s.store.List(ctx)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	kind := strings.ToLower(strings.TrimSpace(input.Kind))
	if kind != models.CategoryKindCategory && kind != models.CategoryKindSubcategory {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kind must be category or subcategory")
	}
	entry := &models.Category{Name: name, Kind: kind, Position: input.Position}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Update(ctx context.Context, id int64, name string, position int) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	return s.store.Update(ctx, id, name, position)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// SyncCollections mirrors every catalogue entry to a smart collection
// holding a single tag rule equal to the entry's name. Collections are
// matched by title, case-insensitively; existing ones get their rules
// rewritten, missing ones are created.
func (s *service) SyncCollections(ctx context.Context) (*SyncResult, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.platform.ListSmartCollections(ctx)
	if err != nil {
		return nil, err
	}

	byTitle := make(map[string]shopify.SmartCollection, len(existing))
	for _, collection := range existing {
		byTitle[strings.ToLower(collection.Title)] = collection
	}

	result := &SyncResult{Total: len(entries)}
	for _, entry := range entries {
		desired := shopify.SmartCollection{
			Title: entry.Name,
			Rules: []shopify.CollectionRule{{
				Column:    "tag",
				Relation:  "equals",
				Condition: entry.Name,
			}},
		}

		if current, ok := byTitle[strings.ToLower(entry.Name)]; ok {
			desired.ID = current.ID
			if err := s.platform.UpdateSmartCollection(ctx, desired); err != nil {
				s.log.Error(s.log.WithField(ctx, "collection", entry.Name), "collection update failed", err)
				return result, err
			}
			result.Updated++
			continue
		}

		if _, err := s.platform.CreateSmartCollection(ctx, desired); err != nil {
			s.log.Error(s.log.WithField(ctx, "collection", entry.Name), "collection create failed", err)
			return result, err
		}
		result.Created++
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"created": result.Created,
		"updated": result.Updated,
	}), "collection sync finished")
	return result, nil
}
