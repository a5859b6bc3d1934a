package files

import (
	"context"
	"fmt"
	"strings"

	"github.com/harlowprint/backoffice-backend/internal/metafields"
	"github.com/harlowprint/backoffice-backend/pkg/config"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/shopify"
	"github.com/harlowprint/backoffice-backend/pkg/types"
)

// Platform is the slice of the platform client the files service needs.
type Platform interface {
	ListFiles(ctx context.Context) ([]shopify.File, error)
	CreateStagedUpload(ctx context.Context, filename, mimeType string) (*shopify.StagedUploadTarget, error)
	UploadToStagedTarget(ctx context.Context, target *shopify.StagedUploadTarget, filename string, content []byte) error
	CreateFileFromStaged(ctx context.Context, resourceURL, altText string) (string, error)
	DeleteFiles(ctx context.Context, fileGIDs []string) error
	ListProducts(ctx context.Context) ([]shopify.Product, error)
	metafields.Platform
}

// TemplateUpload reports a completed template zip upload.
type TemplateUpload struct {
	FileGID  string `json:"file_gid"`
	Filename string `json:"filename"`
	Version  int    `json:"version"`
}

// ServiceParams groups dependencies for the files service.
type ServiceParams struct {
	Platform Platform
	Cfg      config.FilesConfig
	Logger   *logger.Logger
}

// Service manages artwork files living on the platform.
type Service interface {
	List(ctx context.Context) ([]shopify.File, error)
	UploadTemplatesZip(ctx context.Context, productID int64, name string, entries []ZipEntry, explicitVersion int) (*TemplateUpload, error)
	AssignProductsToFile(ctx context.Context, targetFilename, column string) (*types.OperationResult, error)
	Delete(ctx context.Context, fileGIDs []string) error
}

type service struct {
	platform Platform
	cfg      config.FilesConfig
	log      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "platform client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{platform: params.Platform, cfg: params.Cfg, log: params.Logger}, nil
}

func (s *service) List(ctx context.Context) ([]shopify.File, error) {
	return s.platform.ListFiles(ctx)
}

func (s *service) Delete(ctx context.Context, fileGIDs []string) error {
	if len(fileGIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "file ids are required")
	}
	return s.platform.DeleteFiles(ctx, fileGIDs)
}

// UploadTemplatesZip zips the entries in memory, uploads the archive
// through the staged upload protocol and points the product's template
// metafield at the created file. The stored filename carries a version
// suffix, bumped past any existing version of the same base name.
func (s *service) UploadTemplatesZip(ctx context.Context, productID int64, name string, entries []ZipEntry, explicitVersion int) (*TemplateUpload, error) {
	if productID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if len(entries) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one file is required")
	}
	archive, err := zipEntries(entries)
	if err != nil {
		return nil, err
	}
	if max := s.cfg.MaxUploadMB; max > 0 && len(archive) > max<<20 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("archive exceeds the %dMB upload limit", max))
	}

	base := sanitizeBaseName(name)
	version := explicitVersion
	if version < 1 {
		existing, err := s.platform.ListFiles(ctx)
		if err != nil {
			s.log.Warn(ctx, "could not list files for version detection, starting at 1")
			version = 1
		} else {
			version = nextVersion(existing, base)
		}
	}
	filename := fmt.Sprintf("%s_%d.zip", base, version)

	target, err := s.platform.CreateStagedUpload(ctx, filename, "application/zip")
	if err != nil {
		return nil, err
	}
	if err := s.platform.UploadToStagedTarget(ctx, target, filename, archive); err != nil {
		return nil, err
	}
	fileGID, err := s.platform.CreateFileFromStaged(ctx, target.ResourceURL, "")
	if err != nil {
		return nil, err
	}

	if err := s.setFileMetafield(ctx, productID, s.cfg.TemplatesKey, fileGID); err != nil {
		return nil, err
	}
	s.log.Info(s.log.WithFields(ctx, map[string]any{"filename": filename, "file_gid": fileGID}),
		"template archive uploaded")
	return &TemplateUpload{FileGID: fileGID, Filename: filename, Version: version}, nil
}

// AssignProductsToFile points every product that already references an
// artwork file in the given column at the named file, and reports how
// many were touched.
func (s *service) AssignProductsToFile(ctx context.Context, targetFilename, column string) (*types.OperationResult, error) {
	if targetFilename == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target filename is required")
	}
	key, err := s.columnKey(column)
	if err != nil {
		return nil, err
	}

	allFiles, err := s.platform.ListFiles(ctx)
	if err != nil {
		return nil, err
	}
	targetGID := ""
	for _, f := range allFiles {
		if strings.EqualFold(f.Filename, targetFilename) {
			targetGID = f.GID
			break
		}
	}
	if targetGID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("file %q not found", targetFilename))
	}

	products, err := s.platform.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	updated := 0
	for _, product := range products {
		refs, err := metafields.FetchByKeys(ctx, s.platform, product.ID, key)
		if err != nil {
			s.log.Warn(s.log.WithProductID(ctx, product.ID), "could not fetch artwork metafields")
			continue
		}
		ref, ok := refs[key]
		if !ok || !strings.HasPrefix(ref.Value, "gid://shopify/") {
			continue
		}
		if ref.Value == targetGID {
			updated++
			continue
		}
		if err := s.platform.UpdateMetafield(ctx, ref.ID, targetGID, ""); err != nil {
			s.log.Warn(s.log.WithProductID(ctx, product.ID), "artwork metafield update failed")
			continue
		}
		updated++
	}

	return &types.OperationResult{
		UpdatedCount: updated,
		TotalCount:   len(products),
		Message:      fmt.Sprintf("updated %d of %d products to %s", updated, len(products), targetFilename),
	}, nil
}

func (s *service) columnKey(column string) (string, error) {
	keys := strings.Split(s.cfg.ArtworkColumns, ",")
	for _, key := range keys {
		if strings.TrimSpace(key) == column {
			return column, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("unknown artwork column %q", column))
}

// setFileMetafield writes a file_reference metafield, updating in place
// when the key already exists.
func (s *service) setFileMetafield(ctx context.Context, productID int64, key, fileGID string) error {
	refs, err := metafields.FetchByKeys(ctx, s.platform, productID, key)
	if err != nil {
		return err
	}
	if ref, ok := refs[key]; ok && ref.ID != 0 {
		return s.platform.UpdateMetafield(ctx, ref.ID, fileGID, shopify.MetafieldTypeFileReference)
	}
	_, err = s.platform.CreateMetafield(ctx, productID, metafields.Namespace, key, fileGID, shopify.MetafieldTypeFileReference)
	return err
}
