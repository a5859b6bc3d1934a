package metafields

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
)

const listCacheTTL = 30 * time.Second

// Cache keeps recent metafield listings off the platform API. Optional;
// cache failures degrade to a direct fetch.
type Cache interface {
	CacheKey(parts ...string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// ServiceParams groups dependencies for the metafield editor service.
type ServiceParams struct {
	Platform Platform
	Cache    Cache
	Logger   *logger.Logger
}

// Service exposes the metafield editor operations used by the admin UI.
type Service interface {
	List(ctx context.Context, productID int64) ([]shopify.Metafield, error)
	Set(ctx context.Context, productID int64, namespace, key string, value Value) (*shopify.Metafield, error)
	Delete(ctx context.Context, productID int64, namespace, key string) error
}

type service struct {
	platform Platform
	cache    Cache
	log      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{platform: params.Platform, cache: params.Cache, log: params.Logger}, nil
}

// List returns every metafield on the product across all namespaces.
// Listings are cached briefly so the editor UI can re-render choice
// lists without re-hitting the platform.
func (s *service) List(ctx context.Context, productID int64) ([]shopify.Metafield, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, s.listCacheKey(productID)); err == nil {
			var cached []shopify.Metafield
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}
	fields, err := s.platform.ListProductMetafields(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.cacheList(ctx, productID, fields)
	return fields, nil
}

func (s *service) listCacheKey(productID int64) string {
	return s.cache.CacheKey("metafields", strconv.FormatInt(productID, 10))
}

func (s *service) cacheList(ctx context.Context, productID int64, fields []shopify.Metafield) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.listCacheKey(productID), string(raw), listCacheTTL); err != nil {
		s.log.Warn(ctx, "failed to cache metafield listing")
	}
}

func (s *service) invalidateList(ctx context.Context, productID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, s.listCacheKey(productID)); err != nil {
		s.log.Warn(ctx, "failed to drop cached metafield listing")
	}
}

// Set creates or updates one metafield by namespace and key.
func (s *service) Set(ctx context.Context, productID int64, namespace, key string, value Value) (*shopify.Metafield, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if namespace == "" || key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "namespace and key are required")
	}
	encoded, platformType, err := value.Encode()
	if err != nil {
		return nil, err
	}

	existing, err := s.find(ctx, productID, namespace, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.platform.UpdateMetafield(ctx, existing.ID, encoded, platformType); err != nil {
			return nil, err
		}
		existing.Value = encoded
		existing.Type = platformType
		s.invalidateList(ctx, productID)
		return existing, nil
	}
	created, err := s.platform.CreateMetafield(ctx, productID, namespace, key, encoded, platformType)
	if err != nil {
		return nil, err
	}
	s.invalidateList(ctx, productID)
	return created, nil
}

// Delete removes one metafield by namespace and key.
func (s *service) Delete(ctx context.Context, productID int64, namespace, key string) error {
	if productID <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	existing, err := s.find(ctx, productID, namespace, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("metafield %s.%s not found on product %d", namespace, key, productID))
	}
	if err := s.platform.DeleteMetafield(ctx, existing.ID); err != nil {
		return err
	}
	s.invalidateList(ctx, productID)
	return nil
}

func (s *service) find(ctx context.Context, productID int64, namespace, key string) (*shopify.Metafield, error) {
	all, err := s.platform.ListProductMetafields(ctx, productID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Namespace == namespace && all[i].Key == key {
			return &all[i], nil
		}
	}
	return nil, nil
}
