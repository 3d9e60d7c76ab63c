package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// BankingHandler serves banking ledger endpoints.
type BankingHandler struct {
	deps Dependencies
}

// NewBankingHandler creates a new banking handler.
func NewBankingHandler(deps Dependencies) *BankingHandler {
	return &BankingHandler{deps: deps}
}

// bankRequest mirrors the POST /banking/bank and /banking/apply bodies.
type bankRequest struct {
	ShipID string `json:"shipId"`
	Year   int    `json:"year"`
	Amount int64  `json:"amount_gco2eq"`
}

func (b bankRequest) validate() error {
	switch {
	case strings.TrimSpace(b.ShipID) == "":
		return errors.New("missing shipId")
	case b.Year == 0:
		return errors.New("missing year")
	case b.Amount <= 0:
		return errors.New("amount_gco2eq must be positive")
	}
	return nil
}

// HandleAvailable handles GET /banking/available?shipId=.
func (h *BankingHandler) HandleAvailable(w http.ResponseWriter, r *http.Request) {
	shipID := strings.TrimSpace(r.URL.Query().Get("shipId"))
	if shipID == "" {
		writeError(w, fmt.Errorf("%w: missing shipId", ErrBadRequest))
		return
	}
	total, err := h.deps.TotalBankedSurplus(r.Context(), shipID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_gco2eq": total})
}

// HandleRecords handles GET /banking/records?shipId=.
func (h *BankingHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	shipID := strings.TrimSpace(r.URL.Query().Get("shipId"))
	if shipID == "" {
		writeError(w, fmt.Errorf("%w: missing shipId", ErrBadRequest))
		return
	}
	entries, err := h.deps.BankEntries(r.Context(), shipID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []compliance.BankEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleBank handles POST /banking/bank.
func (h *BankingHandler) HandleBank(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	banked, err := h.deps.BankSurplus(r.Context(), req.ShipID, req.Year, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"banked": banked})
}

// HandleApply handles POST /banking/apply.
func (h *BankingHandler) HandleApply(w http.ResponseWriter, r *http.Request) {
	var req bankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %s", ErrBadRequest, err))
		return
	}
	result, err := h.deps.ApplyBankedSurplus(r.Context(), req.ShipID, req.Year, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
