// Package server exposes placements and headless scenario runs over HTTP.
//
// Routes:
//
//	GET  /healthz             liveness
//	GET  /version             build information
//	GET  /placements          the placement table
//	GET  /placements/{name}   one placement
//	POST /simulate            run a TOML scenario, respond with its trace
//	POST /graph?format=svg    render a scenario's nesting graph (dot or svg),
//	                          cached by body, format and run flag
package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/overlay/pkg/align"
	"github.com/matzehuels/overlay/pkg/buildinfo"
	"github.com/matzehuels/overlay/pkg/cache"
	"github.com/matzehuels/overlay/pkg/errors"
	"github.com/matzehuels/overlay/pkg/scenario"
)

// DefaultMaxBody limits scenario uploads.
const DefaultMaxBody = 1 << 20

// Config configures the router.
type Config struct {
	// Placements defaults to align.DefaultPlacements().
	Placements align.Placements

	// MaxBody defaults to DefaultMaxBody.
	MaxBody int64

	// Cache holds rendered graphs. Defaults to cache.NullCache.
	Cache cache.Cache

	// CacheTTL defaults to cache.DefaultTTL.
	CacheTTL time.Duration

	Logger *log.Logger
}

type handler struct {
	placements align.Placements
	maxBody    int64
	cache      cache.Cache
	ttl        time.Duration
	logger     *log.Logger
}

// NewRouter builds the HTTP handler.
func NewRouter(cfg Config) http.Handler {
	if cfg.Placements == nil {
		cfg.Placements = align.DefaultPlacements()
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = DefaultMaxBody
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NullCache{}
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	h := &handler{
		placements: cfg.Placements,
		maxBody:    cfg.MaxBody,
		cache:      cfg.Cache,
		ttl:        cfg.CacheTTL,
		logger:     cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.healthz)
	r.Get("/version", h.version)
	r.Get("/placements", h.listPlacements)
	r.Get("/placements/{name}", h.getPlacement)
	r.Post("/simulate", h.simulate)
	r.Post("/graph", h.graph)
	return r
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Header().Set("Server", buildinfo.UserAgent())
		next.ServeHTTP(ww, r)
		h.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start).Round(time.Microsecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type versionResponse struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func (h *handler) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Version: buildinfo.Version,
		Commit:  buildinfo.Commit,
		Date:    buildinfo.Date,
	})
}

type placementEntry struct {
	Name string `json:"name"`
	align.Placement
}

func (h *handler) listPlacements(w http.ResponseWriter, _ *http.Request) {
	out := make([]placementEntry, 0, len(h.placements))
	for _, name := range h.placements.Names() {
		out = append(out, placementEntry{Name: name, Placement: h.placements[name]})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *handler) getPlacement(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	p, ok := h.placements[name]
	if !ok {
		writeError(w, errors.New(errors.ErrCodeNotFound, "unknown placement %q", name))
		return
	}
	writeJSON(w, http.StatusOK, placementEntry{Name: name, Placement: p})
}

func (h *handler) simulate(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	sc, err := scenario.Load(bytes.NewReader(body))
	if err != nil {
		writeError(w, err)
		return
	}
	tr, err := scenario.Run(sc, h.logger)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

var graphTypes = map[string]string{
	"dot": "text/vnd.graphviz",
	"svg": "image/svg+xml",
}

func (h *handler) graph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "dot"
	}
	contentType, ok := graphTypes[format]
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "unsupported format %q (want dot or svg)", format))
		return
	}
	run := r.URL.Query().Get("run") != "false"

	body, err := h.readBody(w, r)
	if err != nil {
		writeError(w, err)
		return
	}
	key := cache.GraphKey(body, format, run)
	if data, hit, err := h.cache.Get(r.Context(), key); err != nil {
		h.logger.Warn("graph cache read failed", "err", err)
	} else if hit {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("X-Cache", "hit")
		w.Write(data)
		return
	}

	data, err := h.renderGraph(r, body, format, run)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.cache.Set(r.Context(), key, data, h.ttl); err != nil {
		h.logger.Warn("graph cache write failed", "err", err)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Cache", "miss")
	w.Write(data)
}

func (h *handler) renderGraph(r *http.Request, body []byte, format string, run bool) ([]byte, error) {
	sc, err := scenario.Load(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	var tr *scenario.Trace
	if run {
		if tr, err = scenario.Run(sc, h.logger); err != nil {
			return nil, err
		}
	}
	dot := scenario.ToDOT(sc, tr)
	if format == "dot" {
		return []byte(dot), nil
	}
	svg, err := scenario.RenderSVG(r.Context(), dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render graph")
	}
	return svg, nil
}

func (h *handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	return body, nil
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInternal:
		return http.StatusInternalServerError
	case "":
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
		Detail:  err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("encode JSON response", "err", err)
	}
}
