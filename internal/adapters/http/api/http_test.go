package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/http/api"
	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/repository"
	"github.com/Anshuman123-dev/Varuna-task/internal/app"
	"github.com/Anshuman123-dev/Varuna-task/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestServer(t *testing.T) (http.Handler, *repository.SQLiteStore) {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("init logger: %v", err)
	}
	ctx := context.Background()
	store, err := repository.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	engine := app.New(store, store, store, store)
	return api.NewServer(engine).Handler(), store
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestComplianceEndpoints(t *testing.T) {
	Convey("Given the API over a fresh store", t, func() {
		handler, _ := newTestServer(t)

		Convey("When a valid calculation is posted", func() {
			rec := do(handler, http.MethodPost, "/compliance/calculate", `{
				"shipId": "SHIP-B", "year": 2025, "opsEnergyMJ": 0,
				"fuels": [{"mass_g": 50000000, "lcv_mj_per_g": 0.041, "ghg_intensity": 94.0}]
			}`)

			Convey("Then it returns the computed figures", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var result app.CalculationResult
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.GHGIActual, ShouldEqual, 94.0)
				So(result.ComplianceBalance, ShouldEqual, -9_559_560)
			})

			Convey("And the record is readable back", func() {
				rec := do(handler, http.MethodGet, "/compliance/base-cb?shipId=SHIP-B&year=2025", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "-9559560")
			})

			Convey("And the ship shows up in the listings", func() {
				rec := do(handler, http.MethodGet, "/compliance/ships", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "SHIP-B")

				rec = do(handler, http.MethodGet, "/compliance/years", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "2025")
			})
		})

		Convey("When the body is not valid JSON", func() {
			rec := do(handler, http.MethodPost, "/compliance/calculate", `{not json`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_input")
			})
		})

		Convey("When a fuel has a non-positive mass", func() {
			rec := do(handler, http.MethodPost, "/compliance/calculate", `{
				"shipId": "SHIP-B", "year": 2025,
				"fuels": [{"mass_g": 0, "lcv_mj_per_g": 0.041, "ghg_intensity": 94.0}]
			}`)

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When a penalty is requested for an unknown ship-year", func() {
			rec := do(handler, http.MethodGet, "/compliance/penalty?shipId=GHOST&year=2025", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
				So(rec.Body.String(), ShouldContainSubstring, "not_found")
			})
		})

		Convey("When shipId or year is missing from a query", func() {
			rec := do(handler, http.MethodGet, "/compliance/penalty?shipId=SHIP-B", "")

			Convey("Then it is a bad request", func() {
				So(rec.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestBankingEndpoints(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ship with a verified surplus", t, func() {
		handler, store := newTestServer(t)
		So(store.UpsertBase(ctx, "SHIP-A", 2025, 88.5, 1_500_000, 1_000_000), ShouldBeNil)
		So(store.SetVerified(ctx, "SHIP-A", 2025, 800_000), ShouldBeNil)

		Convey("When part of the surplus is banked", func() {
			rec := do(handler, http.MethodPost, "/banking/bank",
				`{"shipId": "SHIP-A", "year": 2025, "amount_gco2eq": 300000}`)
			So(rec.Code, ShouldEqual, http.StatusOK)

			Convey("Then the available balance reflects it", func() {
				rec := do(handler, http.MethodGet, "/banking/available?shipId=SHIP-A", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "300000")
			})

			Convey("And banking the same year again conflicts", func() {
				rec := do(handler, http.MethodPost, "/banking/bank",
					`{"shipId": "SHIP-A", "year": 2025, "amount_gco2eq": 100}`)
				So(rec.Code, ShouldEqual, http.StatusConflict)
				So(rec.Body.String(), ShouldContainSubstring, "invalid_state")
			})

			Convey("And the ledger records endpoint lists the entry", func() {
				rec := do(handler, http.MethodGet, "/banking/records?shipId=SHIP-A", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, `"year_banked":2025`)
			})
		})

		Convey("When more than the verified CB is banked", func() {
			rec := do(handler, http.MethodPost, "/banking/bank",
				`{"shipId": "SHIP-A", "year": 2025, "amount_gco2eq": 900000}`)

			Convey("Then the balance is insufficient", func() {
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(rec.Body.String(), ShouldContainSubstring, "insufficient_balance")
			})
		})
	})

	Convey("Given a deficit year and a banked surplus", t, func() {
		handler, store := newTestServer(t)
		So(store.UpsertBase(ctx, "SHIP-B", 2025, 94.0, 2_050_000, -9_559_560), ShouldBeNil)
		So(store.Bank(ctx, "SHIP-B", 2024, 5_000_000), ShouldBeNil)

		Convey("When the surplus is applied", func() {
			rec := do(handler, http.MethodPost, "/banking/apply",
				`{"shipId": "SHIP-B", "year": 2025, "amount_gco2eq": 5000000}`)

			Convey("Then the adjusted CB rises", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)

				var result app.ApplyResult
				So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)
				So(result.Applied, ShouldEqual, 5_000_000)
				So(result.CBAfter, ShouldEqual, -4_559_560)
			})
		})
	})
}

func TestPoolEndpoints(t *testing.T) {
	ctx := context.Background()

	Convey("Given two ships that can pool", t, func() {
		handler, store := newTestServer(t)
		So(store.UpsertBase(ctx, "SHIP-A", 2025, 88.5, 1, 100), ShouldBeNil)
		So(store.UpsertBase(ctx, "SHIP-B", 2025, 94.0, 1, -40), ShouldBeNil)

		Convey("When a pool is created", func() {
			rec := do(handler, http.MethodPost, "/pools/", `{
				"year": 2025,
				"members": [{"shipId": "SHIP-A", "year": 2025}, {"shipId": "SHIP-B", "year": 2025}]
			}`)
			So(rec.Code, ShouldEqual, http.StatusOK)

			var result app.PoolResult
			So(json.Unmarshal(rec.Body.Bytes(), &result), ShouldBeNil)

			Convey("Then listing and fetching the pool work", func() {
				list := do(handler, http.MethodGet, "/pools/?year=2025", "")
				So(list.Code, ShouldEqual, http.StatusOK)

				get := do(handler, http.MethodGet, "/pools/1", "")
				So(get.Code, ShouldEqual, http.StatusOK)
				So(get.Body.String(), ShouldContainSubstring, "SHIP-A")
			})
		})

		Convey("When the pool sum would be negative", func() {
			So(store.UpsertBase(ctx, "SHIP-C", 2025, 94.0, 1, -200), ShouldBeNil)
			rec := do(handler, http.MethodPost, "/pools/", `{
				"year": 2025,
				"members": [{"shipId": "SHIP-A", "year": 2025}, {"shipId": "SHIP-C", "year": 2025}]
			}`)

			Convey("Then the invariant violation maps to 422", func() {
				So(rec.Code, ShouldEqual, http.StatusUnprocessableEntity)
				So(rec.Body.String(), ShouldContainSubstring, "invariant_violation")
			})
		})

		Convey("When an unknown pool is fetched", func() {
			rec := do(handler, http.MethodGet, "/pools/999", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRouteEndpoints(t *testing.T) {
	Convey("Given the API over a fresh store", t, func() {
		handler, _ := newTestServer(t)

		Convey("When two routes are created", func() {
			rec := do(handler, http.MethodPost, "/routes/", `{
				"route_id": "R-001", "vessel_type": "container", "fuel_type": "HFO",
				"year": 2025, "ghg_intensity": 94.0, "fuel_consumption_g": 50000000,
				"lcv_mj_per_g": 0.041, "distance_km": 12000, "is_baseline": true
			}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			rec = do(handler, http.MethodPost, "/routes/", `{
				"route_id": "R-002", "vessel_type": "container", "fuel_type": "LNG",
				"year": 2025, "ghg_intensity": 88.5, "fuel_consumption_g": 42000000,
				"lcv_mj_per_g": 0.049, "distance_km": 12000
			}`)
			So(rec.Code, ShouldEqual, http.StatusCreated)

			Convey("Then the list returns both", func() {
				rec := do(handler, http.MethodGet, "/routes/", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "R-001")
				So(rec.Body.String(), ShouldContainSubstring, "R-002")
			})

			Convey("And the comparison measures against the baseline", func() {
				rec := do(handler, http.MethodGet, "/routes/comparison", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "R-002")
			})

			Convey("And the baseline can be moved", func() {
				rec := do(handler, http.MethodPost, "/routes/2/baseline", "")
				So(rec.Code, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When the baseline target does not exist", func() {
			rec := do(handler, http.MethodPost, "/routes/999/baseline", "")

			Convey("Then it is not found", func() {
				So(rec.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestHealthAndRequestID(t *testing.T) {
	Convey("Given the API", t, func() {
		handler, _ := newTestServer(t)

		Convey("When the health endpoint is hit", func() {
			rec := do(handler, http.MethodGet, "/healthz", "")

			Convey("Then it reports ok with a generated request id", func() {
				So(rec.Code, ShouldEqual, http.StatusOK)
				So(rec.Body.String(), ShouldContainSubstring, "ok")
				So(rec.Header().Get("X-Request-ID"), ShouldNotBeEmpty)
			})
		})

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set("X-Request-ID", "req-123")
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			Convey("Then it is echoed back", func() {
				So(rec.Header().Get("X-Request-ID"), ShouldEqual, "req-123")
			})
		})
	})
}
