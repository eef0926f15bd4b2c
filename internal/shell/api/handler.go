// Package api provides HTTP handlers for the URL shortener API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/igorobed/hw3-api/internal/core/shorturl"
	"github.com/igorobed/hw3-api/internal/shell/cache"
	"github.com/igorobed/hw3-api/internal/shell/store"
)

// =============================================================================
// Handler
// =============================================================================

// Handler provides HTTP handlers for the API.
type Handler struct {
	store  store.Store
	cache  cache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, c cache.Cache, l *slog.Logger) *Handler {
	if l == nil {
		l = slog.Default()
	}
	return &Handler{
		store:  s,
		cache:  c,
		logger: l,
		now:    time.Now,
	}
}

// Routes returns the router with all routes configured.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(h.jsonContentType)
	r.Use(h.requestIDHeader)

	// Health endpoints
	r.Get("/health", h.handleHealth)
	r.Get("/ready", h.handleReady)

	// Link routes. The literal "search" route must be registered before the
	// {short_code} wildcard.
	r.Route("/links", func(r chi.Router) {
		r.Get("/search", h.handleSearch)
		r.Post("/shorten", h.handleShorten)
		r.Get("/{short_code}", h.handleResolve)
		r.Put("/{short_code}", h.handleUpdate)
		r.Delete("/{short_code}", h.handleDelete)
		r.Get("/{short_code}/stats", h.handleStats)
	})

	return r
}

// =============================================================================
// Middleware
// =============================================================================

// jsonContentType sets Content-Type header to application/json.
func (h *Handler) jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestIDHeader copies the request ID to the response header.
func (h *Handler) requestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reqID := middleware.GetReqID(r.Context()); reqID != "" {
			w.Header().Set("X-Request-ID", reqID)
		}
		next.ServeHTTP(w, r)
	})
}

// =============================================================================
// Health Handlers
// =============================================================================

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, HealthResponse{Status: "healthy"})
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	ready := true

	if err := h.store.Ping(r.Context()); err != nil {
		checks["database"] = "failed"
		ready = false
	} else {
		checks["database"] = "ok"
	}

	if err := h.cache.Ping(r.Context()); err != nil {
		checks["cache"] = "failed"
		ready = false
	} else {
		checks["cache"] = "ok"
	}

	if !ready {
		h.writeJSON(w, http.StatusServiceUnavailable, ReadyResponse{Status: "not_ready", Checks: checks})
		return
	}
	h.writeJSON(w, http.StatusOK, ReadyResponse{Status: "ready", Checks: checks})
}

// =============================================================================
// Link Handlers
// =============================================================================

// handleShorten creates a short link. A user-supplied alias takes the place
// of a generated code and conflicts with 409.
func (h *Handler) handleShorten(w http.ResponseWriter, r *http.Request) {
	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	if err := shorturl.ValidateOriginal(req.OrigURL); err != nil {
		h.writeError(w, http.StatusBadRequest, "orig_url must be an absolute http(s) URL", "validation_error")
		return
	}

	var code string
	if req.AliasURL != nil {
		if err := shorturl.ValidateAlias(*req.AliasURL); err != nil {
			h.writeError(w, http.StatusBadRequest, "alias_url must be 1-64 characters of [A-Za-z0-9_-]", "validation_error")
			return
		}
		code = *req.AliasURL
	} else {
		code = shorturl.GenerateCode()
	}

	link := shorturl.NewLink(code, req.OrigURL, h.now())
	if err := h.store.CreateLink(r.Context(), &link); err != nil {
		if errors.Is(err, store.ErrDuplicateCode) {
			h.writeError(w, http.StatusConflict, "alias is already taken", "alias_taken")
			return
		}
		h.logger.Error("failed to create link", "code", code, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to create link", "internal_error")
		return
	}

	h.invalidate(r.Context(), code)

	h.writeJSON(w, http.StatusOK, LinkResponse{
		OrigURL:      link.Original,
		ShortURL:     link.Code,
		RegisteredAt: link.RegisteredAt,
	})
}

// handleResolve returns the original URL for a short code. Cache hits skip
// the database entirely, so lookups served from cache do not count as hits.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "short_code")
	if err := shorturl.ValidateCode(code); err != nil {
		h.writeError(w, http.StatusNotFound, "short URL not found", "link_not_found")
		return
	}

	if original, found, err := h.cache.GetOriginal(r.Context(), code); err == nil && found {
		h.writeJSON(w, http.StatusOK, RedirectResponse{RedirectURL: original})
		return
	} else if err != nil {
		h.logger.Warn("cache lookup failed", "code", code, "error", err)
	}

	link, err := h.store.RecordHit(r.Context(), code, h.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "short URL not found", "link_not_found")
			return
		}
		h.logger.Error("failed to resolve link", "code", code, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to resolve link", "internal_error")
		return
	}

	if err := h.cache.SetOriginal(r.Context(), code, link.Original); err != nil {
		h.logger.Warn("failed to cache link", "code", code, "error", err)
	}

	h.writeJSON(w, http.StatusOK, RedirectResponse{RedirectURL: link.Original})
}

// handleUpdate replaces the original URL of a link.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "short_code")

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}
	if err := shorturl.ValidateOriginal(req.OrigURL); err != nil {
		h.writeError(w, http.StatusBadRequest, "orig_url must be an absolute http(s) URL", "validation_error")
		return
	}

	link, err := h.store.UpdateOriginal(r.Context(), code, req.OrigURL)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "short URL not found", "link_not_found")
			return
		}
		h.logger.Error("failed to update link", "code", code, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to update link", "internal_error")
		return
	}

	h.invalidate(r.Context(), code)

	h.writeJSON(w, http.StatusOK, LinkResponse{
		OrigURL:      link.Original,
		ShortURL:     link.Code,
		RegisteredAt: link.RegisteredAt,
	})
}

// handleDelete removes a link.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "short_code")

	if err := h.store.DeleteLink(r.Context(), code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "short URL not found", "link_not_found")
			return
		}
		h.logger.Error("failed to delete link", "code", code, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to delete link", "internal_error")
		return
	}

	h.invalidate(r.Context(), code)

	h.writeJSON(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}

// handleStats returns lookup statistics for a link.
func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "short_code")

	link, err := h.store.GetLink(r.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "short URL not found", "link_not_found")
			return
		}
		h.logger.Error("failed to get link", "code", code, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to get link", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, StatsResponse{
		OrigURL:      link.Original,
		ShortURL:     link.Code,
		RegisteredAt: link.RegisteredAt,
		Hits:         link.Hits,
		LastAccessAt: link.LastAccessAt,
	})
}

// handleSearch returns every link registered for an original URL.
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	original := r.URL.Query().Get("original_url")
	if original == "" {
		h.writeError(w, http.StatusBadRequest, "original_url query parameter is required", "validation_error")
		return
	}

	links, err := h.store.FindByOriginal(r.Context(), original)
	if err != nil {
		h.logger.Error("failed to search links", "original_url", original, "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to search links", "internal_error")
		return
	}
	if len(links) == 0 {
		h.writeError(w, http.StatusNotFound, "no links found", "links_not_found")
		return
	}

	resp := make([]LinkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, LinkResponse{
			OrigURL:      link.Original,
			ShortURL:     link.Code,
			RegisteredAt: link.RegisteredAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// invalidate drops a cache entry after a mutation. Failures are logged, not
// surfaced: the TTL bounds how long a stale entry can live.
func (h *Handler) invalidate(ctx context.Context, code string) {
	if err := h.cache.Invalidate(ctx, code); err != nil {
		h.logger.Warn("failed to invalidate cache", "code", code, "error", err)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode JSON", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message, code string) {
	h.writeJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}
