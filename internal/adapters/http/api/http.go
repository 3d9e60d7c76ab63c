// Package api declares the HTTP contracts and route registration for the
// compliance service.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Anshuman123-dev/Varuna-task/internal/app"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/formula"
)

// Dependencies bundles the engine operations the handlers need. Keeping an
// interface here decouples the handler layer from the app package's
// concrete Engine.
type Dependencies interface {
	CalculateCompliance(ctx context.Context, shipID string, year int, fuels []formula.FuelInput, opsEnergyMJ float64) (app.CalculationResult, error)
	ComputeAdjustedCB(ctx context.Context, shipID string, year int) (app.AdjustedResult, error)
	ComplianceRecord(ctx context.Context, shipID string, year int) (*compliance.Record, error)
	CalculatePenalty(ctx context.Context, shipID string, year int) (app.PenaltyResult, error)
	Ships(ctx context.Context) ([]string, error)
	Years(ctx context.Context) ([]int, error)

	TotalBankedSurplus(ctx context.Context, shipID string) (int64, error)
	BankEntries(ctx context.Context, shipID string) ([]compliance.BankEntry, error)
	BankSurplus(ctx context.Context, shipID string, year int, amount int64) (int64, error)
	ApplyBankedSurplus(ctx context.Context, shipID string, year int, amount int64) (app.ApplyResult, error)

	AllocatePool(ctx context.Context, year int, members []compliance.PoolMemberRef) (app.PoolResult, error)
	Pools(ctx context.Context, year int) ([]compliance.Pool, error)
	Pool(ctx context.Context, poolID int64) (*compliance.Pool, []compliance.PoolMember, error)

	Routes(ctx context.Context) ([]compliance.Route, error)
	CreateRoute(ctx context.Context, r compliance.Route) (int64, error)
	SetBaselineRoute(ctx context.Context, id int64) error
	CompareRoutes(ctx context.Context) (app.RouteComparison, error)
}

// Server wires HTTP routes for the compliance API.
type Server struct {
	compliance *ComplianceHandler
	banking    *BankingHandler
	pools      *PoolsHandler
	routes     *RoutesHandler
	health     *HealthHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		compliance: NewComplianceHandler(deps),
		banking:    NewBankingHandler(deps),
		pools:      NewPoolsHandler(deps),
		routes:     NewRoutesHandler(deps),
		health:     NewHealthHandler(),
	}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)

	r.Get("/healthz", instrument("healthz", s.health.HandleHealth))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/compliance", func(r chi.Router) {
		r.Post("/calculate", instrument("compliance_calculate", s.compliance.HandleCalculate))
		r.Get("/base-cb", instrument("compliance_base", s.compliance.HandleBaseCB))
		r.Get("/adjusted-cb", instrument("compliance_adjusted", s.compliance.HandleAdjustedCB))
		r.Get("/verified-cb", instrument("compliance_verified", s.compliance.HandleVerifiedCB))
		r.Get("/penalty", instrument("compliance_penalty", s.compliance.HandlePenalty))
		r.Get("/ships", instrument("compliance_ships", s.compliance.HandleShips))
		r.Get("/years", instrument("compliance_years", s.compliance.HandleYears))
	})

	r.Route("/banking", func(r chi.Router) {
		r.Get("/available", instrument("banking_available", s.banking.HandleAvailable))
		r.Get("/records", instrument("banking_records", s.banking.HandleRecords))
		r.Post("/bank", instrument("banking_bank", s.banking.HandleBank))
		r.Post("/apply", instrument("banking_apply", s.banking.HandleApply))
	})

	r.Route("/pools", func(r chi.Router) {
		r.Post("/", instrument("pools_create", s.pools.HandleAllocate))
		r.Get("/", instrument("pools_list", s.pools.HandleList))
		r.Get("/{poolID}", instrument("pools_get", s.pools.HandleGet))
	})

	r.Route("/routes", func(r chi.Router) {
		r.Get("/", instrument("routes_list", s.routes.HandleList))
		r.Post("/", instrument("routes_create", s.routes.HandleCreate))
		r.Get("/comparison", instrument("routes_comparison", s.routes.HandleComparison))
		r.Post("/{routeID}/baseline", instrument("routes_baseline", s.routes.HandleSetBaseline))
	})

	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
