package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mobilyasoft/configurator/internal/core/api"
	"github.com/mobilyasoft/configurator/internal/core/catalog"
	"github.com/mobilyasoft/configurator/internal/core/config"
	"github.com/mobilyasoft/configurator/internal/core/db"
	"github.com/mobilyasoft/configurator/internal/core/pricing"
	"github.com/mobilyasoft/configurator/internal/core/server"
	"github.com/mobilyasoft/configurator/internal/core/session"
)

const Version = "0.1.0"

var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the HTTP configurator service",
	RunE:  runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
	apiCmd.Flags().String("host", "0.0.0.0", "HTTP server host")
	apiCmd.Flags().Int("port", 8080, "HTTP server port")
	apiCmd.Flags().String("pricing-url", "", "pricing system base URL")
}

func runAPI(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("host") {
		host, _ := cmd.Flags().GetString("host")
		cfg.Host = host
	}
	if cmd.Flags().Changed("port") {
		port, _ := cmd.Flags().GetInt("port")
		cfg.Port = port
	}
	if cmd.Flags().Changed("pricing-url") {
		pricingURL, _ := cmd.Flags().GetString("pricing-url")
		cfg.PricingBaseURL = pricingURL
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}

	if cfg.PricingBaseURL == "" {
		return fmt.Errorf("pricing base URL required (--pricing-url or CFG_CONFIGURATOR_PRICING_BASE_URL)")
	}

	database, err := db.Open(cfg.DatabaseURL)
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

	cache, err := catalog.NewRuleCache(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}

	secret, err := config.PricingSecret()
	if err != nil {
		return fmt.Errorf("failed to load pricing secret: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("no pricing secret configured (set CFG_PRICING_SECRET environment variable)")
	}

	pricingClient, err := pricing.NewClient(cfg.PricingBaseURL, cfg.PricingAPIKey, secret, cfg.PricingTimeout)
	if err != nil {
		return fmt.Errorf("failed to create pricing client: %w", err)
	}

	manager, err := session.NewManager(pricingClient, store)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}

	service, err := api.NewConfiguratorService(manager, store, cache, cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	httpServer, err := server.NewHTTPServer(cfg, service)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Printf("Starting configurator API v%s on %s:%d", Version, cfg.Host, cfg.Port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- httpServer.Start(ctx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-sigChan:
		log.Println("Shutting down gracefully...")
		return httpServer.Shutdown(ctx)
	}
}
