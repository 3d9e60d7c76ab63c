package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Anshuman123-dev/Varuna-task/internal/adapters/repository"
	"github.com/Anshuman123-dev/Varuna-task/internal/config"
	"github.com/Anshuman123-dev/Varuna-task/internal/domain/compliance"
)

func init() {
	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo routes and compliance fixtures",
	Long: `Load a small demo dataset: five voyage scenarios, a surplus ship
(SHIP-A) and a deficit ship (SHIP-B) for the 2025 reporting year.`,
	RunE: runSeed,
}

// demoRoutes mirrors the reference dataset. Fuel mass in grams.
var demoRoutes = []compliance.Route{
	{RouteID: "R-001", VesselType: "container", FuelType: "VLSFO", Year: 2025, GHGIntensity: 94.0, FuelMassGrams: 50_000_000, LCVMJPerGram: 0.041, DistanceKM: 1200, IsBaseline: true},
	{RouteID: "R-002", VesselType: "container", FuelType: "VLSFO", Year: 2025, GHGIntensity: 88.5, FuelMassGrams: 35_000_000, LCVMJPerGram: 0.041, DistanceKM: 900},
	{RouteID: "R-003", VesselType: "ro-ro", FuelType: "MGO", Year: 2025, GHGIntensity: 92.0, FuelMassGrams: 18_500_000, LCVMJPerGram: 0.043, DistanceKM: 600},
	{RouteID: "R-004", VesselType: "bulk", FuelType: "VLSFO", Year: 2025, GHGIntensity: 90.1, FuelMassGrams: 70_000_000, LCVMJPerGram: 0.041, DistanceKM: 1800},
	{RouteID: "R-005", VesselType: "tanker", FuelType: "LNG", Year: 2025, GHGIntensity: 75.0, FuelMassGrams: 22_000_000, LCVMJPerGram: 0.055, DistanceKM: 1100},
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	store, err := repository.Open(ctx, cfg.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	for _, r := range demoRoutes {
		if _, err := store.CreateRoute(ctx, r); err != nil {
			return fmt.Errorf("seed route %s: %w", r.RouteID, err)
		}
	}

	if err := seedShip(ctx, store, "SHIP-A", 2025, 88.5, 1_500_000, 1_000_000, 1_000_000, 800_000); err != nil {
		return err
	}
	if err := seedShip(ctx, store, "SHIP-B", 2025, 94.0, 2_050_000, -9_559_560, -9_559_560, -9_559_560); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "seeded %d routes and 2 ships into %s\n", len(demoRoutes), cfg.DSN)
	return nil
}

func seedShip(ctx context.Context, store *repository.SQLiteStore, shipID string, year int, ghgi, energy float64, base, adjusted, verified int64) error {
	if err := store.UpsertBase(ctx, shipID, year, ghgi, energy, base); err != nil {
		return fmt.Errorf("seed %s: %w", shipID, err)
	}
	if err := store.SetAdjusted(ctx, shipID, year, adjusted); err != nil {
		return fmt.Errorf("seed %s: %w", shipID, err)
	}
	if err := store.SetVerified(ctx, shipID, year, verified); err != nil {
		return fmt.Errorf("seed %s: %w", shipID, err)
	}
	return nil
}
