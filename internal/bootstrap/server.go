// Package bootstrap assembles process-level infrastructure.
package bootstrap

import (
	"net/http"
	"time"

	"github.com/xrasdas/sharelink/internal/config"
)

// NewHTTPServer constructs a baseline http.Server with conservative
// timeouts around the provided handler.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MiB
	}
}
