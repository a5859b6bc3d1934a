package api

import (
	"net/http"
	"time"

	"github.com/harlowprint/backoffice-backend/pkg/config"
)

// NewServer builds the HTTP server cmd/api runs. WriteTimeout stays
// unset: the run stream endpoint holds its response open for as long
// as a pricing run takes.
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
