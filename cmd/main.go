package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"water-delivery/internal/config"
	"water-delivery/internal/database"
	"water-delivery/internal/logger"
	"water-delivery/internal/messaging"
	"water-delivery/internal/services/auth"
	"water-delivery/internal/services/catalog"
	"water-delivery/internal/services/notification"
)

const serviceName = "water-delivery"

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Back office for a water and gas delivery business",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(
		serveCommand(&configFile),
		migrateCommand(&configFile),
		seedCommand(&configFile),
		eventsCommand(&configFile),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// bootstrap loads the config and builds the logger shared by every command
func bootstrap(configFile, mode string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, logger.New(mode, cfg.Log.Level), nil
}

func connectDatabase(ctx context.Context, cfg *config.Config, log *logger.Logger) (*database.DB, error) {
	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("db_connected", "Connected to PostgreSQL database", "startup", nil)
	return db, nil
}

func migrateCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile, "migrate")
			if err != nil {
				return err
			}

			db, err := connectDatabase(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RunMigrations(cmd.Context()); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			return nil
		},
	}
}

func seedCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "create the default catalog and the bootstrap administrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(*configFile, "seed")
			if err != nil {
				return err
			}

			db, err := connectDatabase(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.RunMigrations(ctx); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			products, err := catalog.NewService(catalog.NewPostgresStore(db), log).SeedDefaults(ctx)
			if err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}

			authService := auth.NewService(auth.NewPostgresStore(db), log, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)
			created, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminUser, cfg.Auth.BootstrapAdminPassword)
			if err != nil {
				return fmt.Errorf("failed to create bootstrap admin: %w", err)
			}

			log.Info("seed_completed", "Seed completed", "startup", map[string]any{
				"products_created": products,
				"admin_created":    created,
			})
			return nil
		},
	}
}

func eventsCommand(configFile *string) *cobra.Command {
	var (
		queue    string
		binding  string
		prefetch int
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "print a live feed of order events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, log, err := bootstrap(*configFile, "events")
			if err != nil {
				return err
			}
			if !cfg.RabbitMQ.Enabled {
				return fmt.Errorf("rabbitmq is disabled in %s", *configFile)
			}

			conn, err := messaging.New(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize messaging: %w", err)
			}

			consumer := messaging.NewConsumer(conn, log, queue, binding, "events-"+logger.GenerateRequestID(), prefetch)
			return notification.NewSubscriber(consumer, log, cmd.OutOrStdout()).Start(ctx)
		},
	}

	cmd.Flags().StringVar(&queue, "queue", "", "durable queue name; empty uses a temporary queue")
	cmd.Flags().StringVar(&binding, "binding", "order.#", "routing key pattern to subscribe to")
	cmd.Flags().IntVar(&prefetch, "prefetch", 10, "RabbitMQ prefetch count")
	return cmd
}
