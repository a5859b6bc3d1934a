package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/harlowprint/backoffice-backend/api/responses"
	"github.com/harlowprint/backoffice-backend/pkg/config"
	"github.com/harlowprint/backoffice-backend/pkg/logger"
)

// Pinger is the reachability surface every dependency exposes.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backoffice-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports per-dependency reachability. Any failing
// dependency turns the overall answer into a 503.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis, platform Pinger) http.HandlerFunc {
	deps := map[string]Pinger{
		"database": db,
		"redis":    redis,
		"shopify":  platform,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Backoffice-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		statuses := make(map[string]string, len(deps))
		ready := true
		for name, dep := range deps {
			if dep == nil {
				statuses[name] = "not configured"
				continue
			}
			if err := dep.Ping(ctx); err != nil {
				statuses[name] = "unreachable"
				ready = false
				if logg != nil {
					logg.Error(logg.WithField(ctx, "dependency", name), "readiness check failed", err)
				}
				continue
			}
			statuses[name] = "ok"
		}

		payload := map[string]any{"status": "ready", "dependencies": statuses}
		if !ready {
			payload["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}
