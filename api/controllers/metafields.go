package controllers

import (
	"net/http"

	"github.com/harlowprint/backoffice-backend/api/responses"
	"github.com/harlowprint/backoffice-backend/api/validators"
	"github.com/harlowprint/backoffice-backend/internal/metafields"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
)

type setMetafieldRequest struct {
	ProductID int64            `json:"product_id" validate:"required,gt=0"`
	Namespace string           `json:"namespace"`
	Key       string           `json:"key" validate:"required"`
	Value     metafields.Value `json:"value"`
}

type deleteMetafieldRequest struct {
	ProductID int64  `json:"product_id" validate:"required,gt=0"`
	Namespace string `json:"namespace"`
	Key       string `json:"key" validate:"required"`
}

func ListMetafields(svc metafields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseQueryInt64(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if productID <= 0 {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "product_id query parameter is required"))
			return
		}
		fields, err := svc.List(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fields)
	}
}

// SetMetafield creates or updates a metafield by namespace+key.
func SetMetafield(svc metafields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setMetafieldRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		namespace := req.Namespace
		if namespace == "" {
			namespace = metafields.Namespace
		}
		field, err := svc.Set(r.Context(), req.ProductID, namespace, req.Key, req.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, field)
	}
}

func DeleteMetafield(svc metafields.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req deleteMetafieldRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		namespace := req.Namespace
		if namespace == "" {
			namespace = metafields.Namespace
		}
		if err := svc.Delete(r.Context(), req.ProductID, namespace, req.Key); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
