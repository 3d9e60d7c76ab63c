package app_test

import (
	"context"
	"testing"

	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/repository"
	"github.com/Anshuman123-dev/Varuna-task/internal/app"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/formula"
	"github.com/Anshuman123-dev/Varuna-task/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newTestEngine(t *testing.T) (*app.Engine, *repository.SQLiteStore) {
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
	return app.New(store, store, store, store), store
}

// deficitFuel is 50 tonnes of a 94.0 gCO2e/MJ fuel, 2,050,000 MJ of energy,
// which lands 2025 at a -9,559,560 gCO2e balance.
var deficitFuel = []formula.FuelInput{
	{MassGrams: 50_000_000, LCVMJPerGram: 0.041, GHGIntensity: 94.0},
}

var surplusFuel = []formula.FuelInput{
	{MassGrams: 50_000_000, LCVMJPerGram: 0.041, GHGIntensity: 88.5},
}

func TestCalculateCompliance(t *testing.T) {
	ctx := context.Background()

	Convey("Given a settlement engine", t, func() {
		engine, store := newTestEngine(t)

		Convey("When a deficit year is calculated", func() {
			result, err := engine.CalculateCompliance(ctx, "SHIP-B", 2025, deficitFuel, 0)
			So(err, ShouldBeNil)

			Convey("Then the formula figures come back", func() {
				So(result.GHGIActual, ShouldEqual, 94.0)
				So(result.TotalEnergyMJ, ShouldEqual, 2_050_000.0)
				So(result.ComplianceBalance, ShouldEqual, -9_559_560)
				So(result.PenaltyEUR, ShouldBeGreaterThan, 0)
			})

			Convey("And the base record is persisted", func() {
				rec, err := store.GetBase(ctx, "SHIP-B", 2025)
				So(err, ShouldBeNil)
				So(rec, ShouldNotBeNil)
				So(rec.BaseCB, ShouldEqual, -9_559_560)
				So(rec.PenaltyEUR, ShouldNotBeNil)
			})
		})

		Convey("When a surplus year is calculated", func() {
			result, err := engine.CalculateCompliance(ctx, "SHIP-A", 2025, surplusFuel, 0)
			So(err, ShouldBeNil)

			Convey("Then the balance is positive and no penalty accrues", func() {
				So(result.ComplianceBalance, ShouldBeGreaterThan, 0)
				So(result.PenaltyEUR, ShouldEqual, 0)
			})
		})

		Convey("When the fuel set is invalid", func() {
			_, err := engine.CalculateCompliance(ctx, "SHIP-B", 2025, nil, 0)

			Convey("Then the input is rejected", func() {
				So(err, ShouldWrap, compliance.ErrInputValidation)
			})
		})

		Convey("When ops energy is negative", func() {
			_, err := engine.CalculateCompliance(ctx, "SHIP-B", 2025, deficitFuel, -1)

			Convey("Then the input is rejected", func() {
				So(err, ShouldWrap, compliance.ErrInputValidation)
			})
		})
	})
}

func TestComputeAdjustedCB(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ship with a banked surplus", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-A", 2025, 88.5, 1_500_000, 1_000_000), ShouldBeNil)
		So(store.Bank(ctx, "SHIP-A", 2024, 250_000), ShouldBeNil)

		Convey("When the adjusted CB is computed", func() {
			result, err := engine.ComputeAdjustedCB(ctx, "SHIP-A", 2025)
			So(err, ShouldBeNil)

			Convey("Then it snapshots base plus available banked surplus", func() {
				So(result.BaseCB, ShouldEqual, 1_000_000)
				So(result.BankedSurplus, ShouldEqual, 250_000)
				So(result.AdjustedCB, ShouldEqual, 1_250_000)
			})

			Convey("And recomputing is idempotent", func() {
				again, err := engine.ComputeAdjustedCB(ctx, "SHIP-A", 2025)
				So(err, ShouldBeNil)
				So(again, ShouldResemble, result)

				rec, err := store.GetBase(ctx, "SHIP-A", 2025)
				So(err, ShouldBeNil)
				So(*rec.AdjustedCB, ShouldEqual, 1_250_000)
			})
		})

		Convey("When the ship-year has no record", func() {
			result, err := engine.ComputeAdjustedCB(ctx, "SHIP-Z", 2025)

			Convey("Then only the banked surplus contributes", func() {
				So(err, ShouldBeNil)
				So(result.BaseCB, ShouldEqual, 0)
				So(result.AdjustedCB, ShouldEqual, 0)
			})
		})
	})
}

func TestBankSurplus(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ship with a positive verified CB", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-A", 2025, 88.5, 1_500_000, 1_000_000), ShouldBeNil)
		So(store.SetVerified(ctx, "SHIP-A", 2025, 800_000), ShouldBeNil)

		Convey("When part of the surplus is banked", func() {
			banked, err := engine.BankSurplus(ctx, "SHIP-A", 2025, 300_000)
			So(err, ShouldBeNil)
			So(banked, ShouldEqual, 300_000)

			Convey("Then the ledger holds one entry for the year", func() {
				entries, err := engine.BankEntries(ctx, "SHIP-A")
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
				So(entries[0].YearBanked, ShouldEqual, 2025)
				So(entries[0].Remaining, ShouldEqual, 300_000)
			})

			Convey("And banking the same year again is refused", func() {
				_, err := engine.BankSurplus(ctx, "SHIP-A", 2025, 100_000)
				So(err, ShouldWrap, compliance.ErrState)

				entries, err := engine.BankEntries(ctx, "SHIP-A")
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When the amount exceeds the verified CB", func() {
			_, err := engine.BankSurplus(ctx, "SHIP-A", 2025, 900_000)

			Convey("Then the balance is insufficient", func() {
				So(err, ShouldWrap, compliance.ErrInsufficientBalance)
			})
		})

		Convey("When the amount is not positive", func() {
			_, err := engine.BankSurplus(ctx, "SHIP-A", 2025, 0)
			So(err, ShouldWrap, compliance.ErrInputValidation)
		})

		Convey("When the ship-year has no record", func() {
			_, err := engine.BankSurplus(ctx, "SHIP-Z", 2025, 100)
			So(err, ShouldWrap, compliance.ErrRecordNotFound)
		})
	})

	Convey("Given a ship whose CB is not verified yet", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-A", 2025, 88.5, 1_500_000, 1_000_000), ShouldBeNil)

		Convey("When banking is attempted", func() {
			_, err := engine.BankSurplus(ctx, "SHIP-A", 2025, 100)

			Convey("Then the state is rejected", func() {
				So(err, ShouldWrap, compliance.ErrState)
			})
		})
	})

	Convey("Given a ship with a verified deficit", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-B", 2025, 94.0, 2_050_000, -9_559_560), ShouldBeNil)
		So(store.SetVerified(ctx, "SHIP-B", 2025, -9_559_560), ShouldBeNil)

		Convey("When banking is attempted", func() {
			_, err := engine.BankSurplus(ctx, "SHIP-B", 2025, 100)

			Convey("Then only a positive verified CB may be banked", func() {
				So(err, ShouldWrap, compliance.ErrState)
			})
		})
	})
}

func TestApplyBankedSurplus(t *testing.T) {
	ctx := context.Background()

	Convey("Given a deficit year and an older banked surplus", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-B", 2025, 94.0, 2_050_000, -9_559_560), ShouldBeNil)
		So(store.Bank(ctx, "SHIP-B", 2023, 4_000_000), ShouldBeNil)
		So(store.Bank(ctx, "SHIP-B", 2024, 4_000_000), ShouldBeNil)

		Convey("When part of the surplus is applied", func() {
			result, err := engine.ApplyBankedSurplus(ctx, "SHIP-B", 2025, 5_000_000)
			So(err, ShouldBeNil)

			Convey("Then the adjusted CB rises by the applied amount", func() {
				So(result.CBBefore, ShouldEqual, -9_559_560)
				So(result.Applied, ShouldEqual, 5_000_000)
				So(result.CBAfter, ShouldEqual, -4_559_560)

				rec, err := store.GetBase(ctx, "SHIP-B", 2025)
				So(err, ShouldBeNil)
				So(*rec.AdjustedCB, ShouldEqual, -4_559_560)
			})

			Convey("And the oldest vintage drained first", func() {
				entries, err := engine.BankEntries(ctx, "SHIP-B")
				So(err, ShouldBeNil)
				// Newest vintage first.
				So(entries[0].YearBanked, ShouldEqual, 2024)
				So(entries[0].Remaining, ShouldEqual, 3_000_000)
				So(entries[1].Remaining, ShouldEqual, 0)
			})
		})

		Convey("When more than the available surplus is requested", func() {
			_, err := engine.ApplyBankedSurplus(ctx, "SHIP-B", 2025, 9_000_000)

			Convey("Then the balance is insufficient and nothing is consumed", func() {
				So(err, ShouldWrap, compliance.ErrInsufficientBalance)

				total, err := engine.TotalBankedSurplus(ctx, "SHIP-B")
				So(err, ShouldBeNil)
				So(total, ShouldEqual, 8_000_000)
			})
		})
	})

	Convey("Given a ship without a deficit", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-A", 2025, 88.5, 1_500_000, 1_000_000), ShouldBeNil)
		So(store.Bank(ctx, "SHIP-A", 2024, 100), ShouldBeNil)

		Convey("When applying banked surplus", func() {
			_, err := engine.ApplyBankedSurplus(ctx, "SHIP-A", 2025, 100)

			Convey("Then the state is rejected", func() {
				So(err, ShouldWrap, compliance.ErrState)
			})
		})
	})
}

func TestCalculatePenalty(t *testing.T) {
	ctx := context.Background()

	Convey("Given a ship with a first-time deficit", t, func() {
		engine, store := newTestEngine(t)
		So(store.UpsertBase(ctx, "SHIP-B", 2025, 94.0, 1, -94), ShouldBeNil)

		Convey("When the penalty is calculated", func() {
			result, err := engine.CalculatePenalty(ctx, "SHIP-B", 2025)
			So(err, ShouldBeNil)

			Convey("Then the base multiplier applies", func() {
				So(result.ConsecutiveYears, ShouldEqual, 1)
				So(result.PenaltyEUR, ShouldEqual, 98_400_000)
				So(result.VerifiedCB, ShouldEqual, -94)
			})

			Convey("And the penalty is persisted", func() {
				rec, err := store.GetBase(ctx, "SHIP-B", 2025)
				So(err, ShouldBeNil)
				So(*rec.PenaltyEUR, ShouldEqual, 98_400_000.0)
			})
		})

		Convey("When the previous year was also a deficit", func() {
			So(store.UpsertBase(ctx, "SHIP-B", 2024, 94.0, 1, -94), ShouldBeNil)
			result, err := engine.CalculatePenalty(ctx, "SHIP-B", 2025)
			So(err, ShouldBeNil)

			Convey("Then the escalation multiplier applies", func() {
				So(result.ConsecutiveYears, ShouldEqual, 2)
				So(result.PenaltyEUR, ShouldEqual, 108_240_000)
			})
		})

		Convey("When a surplus year breaks the streak", func() {
			So(store.UpsertBase(ctx, "SHIP-B", 2024, 88.5, 1, 50), ShouldBeNil)
			So(store.UpsertBase(ctx, "SHIP-B", 2023, 94.0, 1, -94), ShouldBeNil)
			result, err := engine.CalculatePenalty(ctx, "SHIP-B", 2025)
			So(err, ShouldBeNil)

			Convey("Then only the unbroken run counts", func() {
				So(result.ConsecutiveYears, ShouldEqual, 1)
			})
		})

		Convey("When the deficit was settled via pooling", func() {
			So(store.SetVerified(ctx, "SHIP-B", 2025, 0), ShouldBeNil)
			result, err := engine.CalculatePenalty(ctx, "SHIP-B", 2025)
			So(err, ShouldBeNil)

			Convey("Then the verified CB governs and no penalty accrues", func() {
				So(result.PenaltyEUR, ShouldEqual, 0)
				So(result.VerifiedCB, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a ship-year with no record", t, func() {
		engine, _ := newTestEngine(t)

		Convey("When the penalty is calculated", func() {
			_, err := engine.CalculatePenalty(ctx, "SHIP-Z", 2025)

			Convey("Then the record is not found", func() {
				So(err, ShouldWrap, compliance.ErrRecordNotFound)
			})
		})
	})
}
