package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mobilyasoft/configurator/internal/core/catalog"
	"github.com/mobilyasoft/configurator/internal/core/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load a catalog seed file (products, options, rules) into the database",
	Args:  cobra.ExactArgs(1),
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	store, err := catalog.NewStore(queries)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	seed, err := catalog.LoadSeedFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	if err := store.Seed(context.Background(), seed); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Printf("Seeded %d products and %d rules", len(seed.Products), len(seed.Rules))
	return nil
}
