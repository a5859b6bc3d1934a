package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/harlowprint/backoffice-backend/api/responses"
	"github.com/harlowprint/backoffice-backend/api/validators"
	"github.com/harlowprint/backoffice-backend/internal/files"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
)

type assignFileRequest struct {
	Filename string `json:"filename" validate:"required"`
	Column   string `json:"column" validate:"required"`
}

type deleteFilesRequest struct {
	FileGIDs []string `json:"file_gids" validate:"required,min=1"`
}

func ListFiles(svc files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

// UploadTemplates accepts a multipart form holding the template files,
// zips them and uploads the archive through the staged upload protocol.
// Form fields: product_id, name, optional version; file parts under
// "files".
func UploadTemplates(svc files.Service, maxUploadMB int, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := int64(maxUploadMB) << 20
		if limit <= 0 {
			limit = 100 << 20
		}
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form"))
			return
		}

		productID, err := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
		if err != nil || productID <= 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "product_id form field must be a positive integer"))
			return
		}
		name := r.FormValue("name")
		version := 0
		if raw := r.FormValue("version"); raw != "" {
			version, err = strconv.Atoi(raw)
			if err != nil || version < 1 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "version form field must be a positive integer"))
				return
			}
		}

		var entries []files.ZipEntry
		if r.MultipartForm != nil {
			for _, header := range r.MultipartForm.File["files"] {
				part, err := header.Open()
				if err != nil {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file"))
					return
				}
				content, err := io.ReadAll(part)
				part.Close()
				if err != nil {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file"))
					return
				}
				entries = append(entries, files.ZipEntry{Filename: header.Filename, Content: content})
			}
		}

		result, err := svc.UploadTemplatesZip(r.Context(), productID, name, entries, version)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// AssignFile points artwork metafields across the catalogue at one file.
func AssignFile(svc files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assignFileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.AssignProductsToFile(r.Context(), req.Filename, req.Column)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func DeleteFiles(svc files.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteFilesRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), req.FileGIDs); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
