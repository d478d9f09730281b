package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "carshare-escrow/internal/api/grpc"
	"carshare-escrow/internal/api/grpc/interceptor"
	httpapi "carshare-escrow/internal/api/http"
	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/config"
	"carshare-escrow/internal/domain"
	"carshare-escrow/internal/events"
	"carshare-escrow/internal/jobs"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/payout"
	"carshare-escrow/internal/repository"
	"carshare-escrow/internal/repository/memory"
	"carshare-escrow/internal/repository/postgres"
	"carshare-escrow/internal/scheduler"
	"carshare-escrow/internal/security"
	"carshare-escrow/internal/service"
	"carshare-escrow/migrations"

	_ "github.com/lib/pq"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting carshare escrow engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "grpc_address", cfg.GetServerAddress(), "http_address", cfg.GetHTTPAddress())

	ctx := context.Background()

	// Initialize Store
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "type", cfg.Storage.Type)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	// Initialize custody
	vault := payout.NewVault(store)
	for p, amount := range cfg.Wallet.Seed {
		opened, err := vault.Seed(ctx, domain.MustPrincipal(p), amount)
		if err != nil {
			log.Fatalf("Failed to seed wallet %s: %v", p, err)
		}
		if opened {
			logger.Info("Opened custody account", "principal", p, "amount", amount.String())
		}
	}

	// Initialize engine
	hub := events.NewHub()
	clk := clock.NewSystem()
	engine := service.NewEngine(store, vault, clk, hub)
	if err := engine.Bootstrap(ctx, cfg.Roles()); err != nil {
		logger.Error("Failed to bootstrap roles", "error", err)
		log.Fatalf("Failed to bootstrap roles: %v", err)
	}
	services := service.NewServices(engine)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	authInterceptor := interceptor.NewAuthInterceptor(tokenManager)

	// Set up gRPC server
	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}
	grpcServer := api.NewServer(api.NewHandler(services), interceptor.UnaryLogging(), authInterceptor.Unary())

	// Set up HTTP server for queries and the event feed
	router := httpapi.NewRouter(
		httpapi.NewQueryHandler(services),
		httpapi.NewEventStream(hub, cfg.HTTP.AllowedOrigins),
		cfg.HTTP.AllowedOrigins,
	)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetHTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	// Optional in-process jobs
	var cronScheduler *scheduler.Scheduler
	if cfg.Scheduler.InProcess {
		cronScheduler, err = scheduler.NewScheduler(jobs.NewJobRunner(jobs.FromServices(services), clk, cfg))
		if err != nil {
			log.Fatalf("Failed to create scheduler: %v", err)
		}
		cronScheduler.Start()
	}

	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("Failed to serve gRPC", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if cronScheduler != nil {
		cronScheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}

// openStore returns the configured store and a function releasing it.
func openStore(ctx context.Context, cfg *config.Config) (*repository.Store, func(), error) {
	if cfg.Storage.Type == config.StorageMemory {
		logger.Info("Using in-memory store")
		return memory.NewStore(memory.NewDB()), func() {}, nil
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	logger.Info("Database connection established")

	if cfg.Database.Migrate {
		if err := migrations.Apply(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	return postgres.NewStore(db), func() { db.Close() }, nil
}
