package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "carshare-escrow/internal/api/grpc"
	"carshare-escrow/internal/clock"
	"carshare-escrow/internal/config"
	"carshare-escrow/internal/jobs"
	"carshare-escrow/internal/logger"
	"carshare-escrow/internal/scheduler"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	target := flag.String("target", "", "gRPC address of the engine (defaults to the configured server address)")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'reconcile', 'report-overdue', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting carshare cronjob runner...", "log_level", cfg.Log.Level)

	// The jobs only read, so they talk to the running engine over its public queries.
	addr := *target
	if addr == "" {
		addr = cfg.GetServerAddress()
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logger.Error("Failed to create engine client", "error", err, "target", addr)
		log.Fatalf("Failed to create engine client: %v", err)
	}
	defer conn.Close()
	logger.Info("Engine client ready", "target", addr)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(api.NewClient(conn), clock.NewSystem(), cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if !runJobOnce(jobRunner, *runOnce) {
			os.Exit(2)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once. It reports false for an unknown name.
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) bool {
	switch jobName {
	case "reconcile":
		jobRunner.ReconcileEscrow()
	case "report-overdue":
		jobRunner.ReportOverdueBookings()
	case "all":
		jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - reconcile\n")
		fmt.Printf("  - report-overdue\n")
		fmt.Printf("  - all\n")
		return false
	}
	return true
}
