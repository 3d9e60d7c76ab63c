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

// PoolsHandler serves pool allocation endpoints.
type PoolsHandler struct {
	deps Dependencies
}

// NewPoolsHandler creates a new pools handler.
func NewPoolsHandler(deps Dependencies) *PoolsHandler {
	return &PoolsHandler{deps: deps}
}

// allocateRequest mirrors the POST /pools body.
type allocateRequest struct {
	Year    int                        `json:"year"`
	Members []compliance.PoolMemberRef `json:"members"`
}

func (a allocateRequest) validate() error {
	if a.Year == 0 {
		return errors.New("missing year")
	}
	if len(a.Members) == 0 {
		return errors.New("members must contain at least one entry")
	}
	for i, m := range a.Members {
		if strings.TrimSpace(m.ShipID) == "" {
			return fmt.Errorf("member %d: missing shipId", i)
		}
		if m.Year == 0 {
			return fmt.Errorf("member %d: missing year", i)
		}
	}
	return nil
}

// HandleAllocate handles POST /pools.
func (h *PoolsHandler) HandleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	result, err := h.deps.AllocatePool(r.Context(), req.Year, req.Members)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleList handles GET /pools?year=.
func (h *PoolsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	year := 0
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, fmt.Errorf("%w: invalid year", ErrBadRequest))
			return
		}
		year = parsed
	}
	pools, err := h.deps.Pools(r.Context(), year)
	if err != nil {
		writeError(w, err)
		return
	}
	if pools == nil {
		pools = []compliance.Pool{}
	}
	writeJSON(w, http.StatusOK, pools)
}

// poolResponse is the GET /pools/{poolID} shape.
type poolResponse struct {
	Pool    *compliance.Pool        `json:"pool"`
	Members []compliance.PoolMember `json:"members"`
}

// HandleGet handles GET /pools/{poolID}.
func (h *PoolsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	poolID, err := strconv.ParseInt(chi.URLParam(r, "poolID"), 10, 64)
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid pool id", ErrBadRequest))
		return
	}
	pool, members, err := h.deps.Pool(r.Context(), poolID)
	if err != nil {
		writeError(w, err)
		return
	}
	if members == nil {
		members = []compliance.PoolMember{}
	}
	writeJSON(w, http.StatusOK, poolResponse{Pool: pool, Members: members})
}
