// Package http serves stored containers over HTTP.
//
// Request paths have the form /{authority}/{resource-path}; the
// authority selects a loaded container and the remainder is resolved
// against its manifest's resource map.
package http

import (
	"errors"
	"log/slog"
	nethttp "net/http"
	"strings"

	"github.com/tilefmt/tile"
)

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger used for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// Handler serves resources from a tile.Store.
//
// Responses carry the resource's declared content type (defaulting to
// application/octet-stream), a permissive CORS header, and every other
// header declared by the resource, forwarded verbatim.
type Handler struct {
	store  *tile.Store
	logger *slog.Logger
}

// Interface compliance.
var _ nethttp.Handler = (*Handler)(nil)

// NewHandler creates a Handler serving containers from store.
func NewHandler(store *tile.Store, opts ...Option) *Handler {
	h := &Handler{store: store}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// log returns the logger, falling back to a discard logger if nil.
func (h *Handler) log() *slog.Logger {
	if h.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return h.logger
}

// ServeHTTP implements net/http.Handler.
func (h *Handler) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	authority, path := splitRequest(r.URL.Path)
	if authority == "" {
		nethttp.Error(w, "missing authority", nethttp.StatusNotFound)
		return
	}
	h.serve(w, authority, path)
}

// serve resolves (authority, path) per the resource-request interface:
// 404 for a missing container or resource, 500 for a missing src or a
// block-read failure, 200 with the resolved bytes otherwise.
func (h *Handler) serve(w nethttp.ResponseWriter, authority, path string) {
	res, data, err := h.store.Resolve(authority, path)
	switch {
	case err == nil:
	case errors.Is(err, tile.ErrNotLoaded):
		nethttp.Error(w, "tile not loaded", nethttp.StatusNotFound)
		return
	case errors.Is(err, tile.ErrResourceNotFound):
		nethttp.Error(w, "no resource at "+path, nethttp.StatusNotFound)
		return
	default:
		// Missing src, unindexed CID, or I/O failure: the container is
		// loaded but cannot serve this resource.
		h.log().Error("resolve failed", "authority", authority, "path", path, "error", err)
		nethttp.Error(w, err.Error(), nethttp.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", res.ContentType())
	header.Set("Access-Control-Allow-Origin", "*")
	for k, v := range res.Headers() {
		header.Set(k, v)
	}
	w.WriteHeader(nethttp.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log().Debug("write response", "authority", authority, "path", path, "error", err)
	}
}

// splitRequest splits a request URL path into the authority (first
// segment) and the resource path within the container. The resource
// path always starts with "/".
func splitRequest(urlPath string) (authority, path string) {
	trimmed := strings.TrimPrefix(urlPath, "/")
	authority, path, found := strings.Cut(trimmed, "/")
	if !found {
		return authority, "/"
	}
	return authority, "/" + path
}
