package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// RoutesHandler serves voyage scenario endpoints.
type RoutesHandler struct {
	deps Dependencies
}

// NewRoutesHandler creates a new routes handler.
func NewRoutesHandler(deps Dependencies) *RoutesHandler {
	return &RoutesHandler{deps: deps}
}

// HandleList handles GET /routes.
func (h *RoutesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	routes, err := h.deps.Routes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if routes == nil {
		routes = []compliance.Route{}
	}
	writeJSON(w, http.StatusOK, routes)
}

// HandleCreate handles POST /routes.
func (h *RoutesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var route compliance.Route
	if err := json.NewDecoder(r.Body).Decode(&route); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(route.RouteID) == "" {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, errors.New("missing route_id")))
		return
	}
	id, err := h.deps.CreateRoute(r.Context(), route)
	if err != nil {
		writeError(w, err)
		return
	}
	route.ID = id
	writeJSON(w, http.StatusCreated, route)
}

// HandleSetBaseline handles POST /routes/{routeID}/baseline.
func (h *RoutesHandler) HandleSetBaseline(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "routeID"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid route id", ErrBadRequest))
		return
	}
	if err := h.deps.SetBaselineRoute(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleComparison handles GET /routes/comparison.
func (h *RoutesHandler) HandleComparison(w http.ResponseWriter, r *http.Request) {
	comparison, err := h.deps.CompareRoutes(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comparison)
}
