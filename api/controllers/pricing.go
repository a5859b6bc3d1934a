package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/harlowprint/backoffice-backend/api/responses"
	"github.com/harlowprint/backoffice-backend/api/validators"
	"github.com/harlowprint/backoffice-backend/internal/pricing"
	"github.com/harlowprint/backoffice-backend/internal/runstream"
	"github.com/harlowprint/backoffice-backend/pkg/db/models"
	pkgerrors "github.com/harlowprint/backoffice-backend/pkg/errors"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
	"github.com/harlowprint/backoffice-backend/pkg/types"
)

// RunHistory is the read surface for past pricing runs.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]models.PricingRun, error)
}

type runRequest struct {
	ProductID  int64   `json:"product_id"`
	ProductIDs []int64 `json:"product_ids"`
	Filter     string  `json:"filter"`
	Async      bool    `json:"async"`
}

// RunPricing starts a pricing run. A single product runs inline and
// returns its result. A batch runs inline too unless async is set, in
// which case the run continues in the background and the caller follows
// it on the run's SSE stream.
func RunPricing(svc pricing.Service, hub *runstream.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req runRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if req.ProductID > 0 {
			runID := uuid.NewString()
			sink := hub.Sink(runID)
			result, err := svc.RunForProduct(r.Context(), req.ProductID, sink)
			hub.Finish(runID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, singleRunPayload(runID, result))
			return
		}

		opts := pricing.BatchOptions{
			ProductIDs: req.ProductIDs,
			Filter:     req.Filter,
			RunID:      uuid.NewString(),
		}
		sink := hub.Sink(opts.RunID)

		if req.Async {
			ctx := context.WithoutCancel(r.Context())
			go func() {
				defer hub.Finish(opts.RunID)
				if _, err := svc.RunBatch(ctx, opts, sink); err != nil {
					sink(fmt.Sprintf("run aborted: %v", err))
					if logg != nil {
						logg.Error(logg.WithRunID(ctx, opts.RunID), "background pricing run failed", err)
					}
				}
			}()
			responses.WriteSuccessStatus(w, http.StatusAccepted, map[string]string{
				"run_id": opts.RunID,
				"stream": "/api/v1/pricing/runs/" + opts.RunID + "/stream",
			})
			return
		}

		summary, err := svc.RunBatch(r.Context(), opts, sink)
		hub.Finish(opts.RunID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.BatchResult{
			Successful: summary.Successful,
			Failed:     summary.Failed,
			Total:      summary.Total,
			Message:    fmt.Sprintf("run %s finished", summary.RunID),
		})
	}
}

// StreamRun replays and follows a run's log over SSE.
func StreamRun(hub *runstream.Hub, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := chi.URLParam(r, "runID")
		if runID == "" || !hub.Known(runID) {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, "unknown run"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		sub, cancel := hub.Subscribe(runID)
		defer cancel()

		for {
			select {
			case line, open := <-sub.Lines:
				if !open {
					fmt.Fprint(w, "event: done\ndata: run finished\n\n")
					flusher.Flush()
					return
				}
				fmt.Fprintf(w, "data: %s\n\n", line)
				flusher.Flush()
			case <-time.After(30 * time.Second):
				fmt.Fprint(w, ": ping\n\n")
				flusher.Flush()
			case <-r.Context().Done():
				return
			}
		}
	}
}

// ListRuns returns recent run history rows.
func ListRuns(history RunHistory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if history == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "run history store is not configured"))
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		runs, err := history.ListRuns(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, runs)
	}
}

func singleRunPayload(runID string, result *pricing.ProductRunResult) map[string]any {
	payload := map[string]any{
		"run_id":     runID,
		"product_id": result.ProductID,
		"title":      result.Title,
		"skipped":    result.Skipped,
	}
	if result.Skipped {
		payload["reason"] = result.Reason
	} else {
		payload["variant_count"] = result.VariantCount
	}
	return payload
}
