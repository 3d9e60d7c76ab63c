package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/formula"
)

// ComplianceHandler serves compliance calculation and lookup endpoints.
type ComplianceHandler struct {
	deps Dependencies
}

// NewComplianceHandler creates a new compliance handler.
func NewComplianceHandler(deps Dependencies) *ComplianceHandler {
	return &ComplianceHandler{deps: deps}
}

// calculateRequest mirrors the POST /compliance/calculate body.
type calculateRequest struct {
	ShipID      string              `json:"shipId"`
	Year        int                 `json:"year"`
	Fuels       []formula.FuelInput `json:"fuels"`
	OpsEnergyMJ float64             `json:"opsEnergyMJ"`
}

func (c calculateRequest) validate() error {
	switch {
	case strings.TrimSpace(c.ShipID) == "":
		return errors.New("missing shipId")
	case c.Year == 0:
		return errors.New("missing year")
	case len(c.Fuels) == 0:
		return errors.New("fuels must contain at least one entry")
	case c.OpsEnergyMJ < 0:
		return errors.New("opsEnergyMJ must not be negative")
	}
	return formula.ValidateFuels(c.Fuels)
}

// HandleCalculate handles POST /compliance/calculate.
func (h *ComplianceHandler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}

	result, err := h.deps.CalculateCompliance(r.Context(), req.ShipID, req.Year, req.Fuels, req.OpsEnergyMJ)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleBaseCB handles GET /compliance/base-cb?shipId=&year=.
func (h *ComplianceHandler) HandleBaseCB(w http.ResponseWriter, r *http.Request) {
	shipID, year, err := shipYearParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.deps.ComplianceRecord(r.Context(), shipID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusOK, map[string]any{})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleAdjustedCB handles GET /compliance/adjusted-cb?shipId=&year=.
func (h *ComplianceHandler) HandleAdjustedCB(w http.ResponseWriter, r *http.Request) {
	shipID, year, err := shipYearParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.deps.ComputeAdjustedCB(r.Context(), shipID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleVerifiedCB handles GET /compliance/verified-cb?shipId=&year=.
func (h *ComplianceHandler) HandleVerifiedCB(w http.ResponseWriter, r *http.Request) {
	shipID, year, err := shipYearParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := h.deps.ComplianceRecord(r.Context(), shipID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	var verified *int64
	if rec != nil {
		verified = rec.VerifiedCB
	}
	writeJSON(w, http.StatusOK, map[string]*int64{"verifiedCB": verified})
}

// HandlePenalty handles GET /compliance/penalty?shipId=&year=.
func (h *ComplianceHandler) HandlePenalty(w http.ResponseWriter, r *http.Request) {
	shipID, year, err := shipYearParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.deps.CalculatePenalty(r.Context(), shipID, year)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleShips handles GET /compliance/ships.
func (h *ComplianceHandler) HandleShips(w http.ResponseWriter, r *http.Request) {
	ships, err := h.deps.Ships(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if ships == nil {
		ships = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"ships": ships})
}

// HandleYears handles GET /compliance/years.
func (h *ComplianceHandler) HandleYears(w http.ResponseWriter, r *http.Request) {
	years, err := h.deps.Years(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if years == nil {
		years = []int{}
	}
	writeJSON(w, http.StatusOK, map[string][]int{"years": years})
}

// shipYearParams extracts the shipId and year query parameters.
func shipYearParams(r *http.Request) (string, int, error) {
	shipID := strings.TrimSpace(r.URL.Query().Get("shipId"))
	if shipID == "" {
		return "", 0, fmt.Errorf("%w: missing shipId", ErrBadRequest)
	}
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year <= 0 {
		return "", 0, fmt.Errorf("%w: invalid year", ErrBadRequest)
	}
	return shipID, year, nil
}
