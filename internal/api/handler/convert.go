package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/xrasdas/sharelink/internal/cache"
	"github.com/xrasdas/sharelink/internal/convert"
)

// ConvertHandler serves the conversion endpoint. Conversion is pure and
// deterministic, so responses are memoized by payload digest.
type ConvertHandler struct {
	store  cache.Store
	logger *slog.Logger
}

// NewConvertHandler builds the handler around the given response cache.
func NewConvertHandler(store cache.Store, logger *slog.Logger) *ConvertHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConvertHandler{store: store, logger: logger}
}

// Convert handles POST /api/convert. The request body is the raw Xray
// configuration JSON (a single object or an array). With ?format=base64
// the response is a v2rayN-style subscription payload instead of JSON.
func (h *ConvertHandler) Convert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "convert",
				fmt.Errorf("request body exceeds %d bytes", maxErr.Limit))
			return
		}
		respondError(w, http.StatusBadRequest, "convert", err)
		return
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "convert", errors.New("empty request body"))
		return
	}

	format := r.URL.Query().Get("format")

	// The format participates in the cache key so JSON and subscription
	// renderings of the same payload never collide.
	key := cache.Key(body) + ":" + format
	if cached, ok := h.store.Get(key); ok {
		h.logger.Debug("convert cache hit", "key", key)
		writeConvertResponse(w, format, cached)
		return
	}

	result := convert.Convert(string(body))

	var rendered []byte
	if format == "base64" {
		rendered = []byte(convert.Subscription(result.Links))
	} else {
		rendered = mustMarshal(result)
	}

	h.store.Set(key, rendered)
	h.logger.Info("conversion completed",
		"links", len(result.Links),
		"errors", len(result.Errors),
		"format", format,
	)
	writeConvertResponse(w, format, rendered)
}

func writeConvertResponse(w http.ResponseWriter, format string, payload []byte) {
	if format == "base64" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(payload); err != nil {
		slog.Warn("failed to write convert response", "error", err)
	}
}
