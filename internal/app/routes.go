package app

import (
	"context"

	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

// RouteDelta pairs a route with its GHG intensity difference against the
// baseline, in percent.
type RouteDelta struct {
	Route       compliance.Route `json:"route"`
	PercentDiff float64          `json:"percentDiff"`
}

// RouteComparison holds the baseline route and every other route's relative
// intensity. Baseline is nil when no route is marked.
type RouteComparison struct {
	Baseline *compliance.Route `json:"baseline"`
	Others   []RouteDelta      `json:"others"`
}

// Routes lists stored voyage scenarios.
func (e *Engine) Routes(ctx context.Context) ([]compliance.Route, error) {
	return e.routes.ListRoutes(ctx)
}

// CreateRoute stores a voyage scenario.
func (e *Engine) CreateRoute(ctx context.Context, r compliance.Route) (int64, error) {
	return e.routes.CreateRoute(ctx, r)
}

// SetBaselineRoute marks the comparison baseline.
func (e *Engine) SetBaselineRoute(ctx context.Context, id int64) error {
	return e.routes.SetBaseline(ctx, id)
}

// CompareRoutes computes each route's GHG intensity relative to the
// baseline route.
func (e *Engine) CompareRoutes(ctx context.Context) (RouteComparison, error) {
	routes, err := e.routes.ListRoutes(ctx)
	if err != nil {
		return RouteComparison{}, err
	}

	var baseline *compliance.Route
	for i := range routes {
		if routes[i].IsBaseline {
			baseline = &routes[i]
			break
		}
	}
	if baseline == nil {
		return RouteComparison{Others: []RouteDelta{}}, nil
	}

	others := make([]RouteDelta, 0, len(routes)-1)
	for i := range routes {
		if routes[i].ID == baseline.ID {
			continue
		}
		var pct float64
		if baseline.GHGIntensity != 0 {
			pct = (routes[i].GHGIntensity - baseline.GHGIntensity) / baseline.GHGIntensity * 100
		}
		others = append(others, RouteDelta{Route: routes[i], PercentDiff: pct})
	}
	return RouteComparison{Baseline: baseline, Others: others}, nil
}
