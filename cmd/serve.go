package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"water-delivery/internal/config"
	"water-delivery/internal/database"
	"water-delivery/internal/httpx"
	"water-delivery/internal/logger"
	"water-delivery/internal/messaging"
	"water-delivery/internal/services/auth"
	"water-delivery/internal/services/catalog"
	"water-delivery/internal/services/customer"
	"water-delivery/internal/services/order"
	"water-delivery/internal/services/report"
)

func serveCommand(configFile *string) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile, serviceName)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.HTTP.Port = port
			}
			return runServer(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (overrides config)")
	return cmd
}

// runServer wires stores, services and handlers and serves until ctx is done
func runServer(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	defaultStatus, err := report.ParseStatusFilter(cfg.Reports.DefaultStatus, report.StatusFilter{})
	if err != nil {
		return fmt.Errorf("reports.default_status: %w", err)
	}

	db, err := connectDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	var publisher order.EventPublisher
	if cfg.RabbitMQ.Enabled {
		conn, err := messaging.New(ctx, cfg, log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		defer conn.Close()

		log.Info("rabbitmq_connected", "Connected to RabbitMQ", requestID, nil)
		publisher = messaging.NewPublisher(conn, log)
	}

	authService := auth.NewService(auth.NewPostgresStore(db), log, cfg.Auth.SessionTTL, cfg.Auth.BcryptCost)
	catalogService := catalog.NewService(catalog.NewPostgresStore(db), log)
	customerService := customer.NewService(customer.NewPostgresStore(db), log)
	orderService := order.NewService(order.NewPostgresRepository(db), catalogService, authService, publisher, log)
	reportService := report.NewService(report.NewPostgresSource(db), defaultStatus, log)

	if created, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapAdminUser, cfg.Auth.BootstrapAdminPassword); err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	} else if created {
		log.Warn("bootstrap_admin_created", "Bootstrap administrator created; change its password", requestID, map[string]any{
			"username": cfg.Auth.BootstrapAdminUser,
		})
	}

	authn := auth.NewAuthenticator(authService, log)
	rt := httpx.NewRouter(httpx.WithLogging(log), httpx.WithTimeout(cfg.HTTP.RequestTimeout))

	rt.Handle("GET /health", healthCheck(db))
	auth.NewHandler(authService, log).Register(rt, authn)
	catalog.NewHandler(catalogService, log).Register(rt, authn)
	customer.NewHandler(customerService, log).Register(rt, authn)
	order.NewHandler(orderService, log).Register(rt, authn)
	report.NewHandler(reportService, cfg.Location(), log).Register(rt, authn)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           rt,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("service_started", fmt.Sprintf("HTTP API started on port %d", cfg.HTTP.Port), requestID, map[string]any{
			"port":           cfg.HTTP.Port,
			"rabbitmq":       cfg.RabbitMQ.Enabled,
			"report_default": defaultStatus.String(),
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("graceful_shutdown", "Shutting down HTTP server", requestID, nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
	return nil
}

func healthCheck(db *database.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status, code := "ok", http.StatusOK
		if err := db.Ping(ctx); err != nil {
			status, code = "unavailable", http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, map[string]any{
			"status":    status,
			"service":   serviceName,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
