// Package main implements the Pod Manager process entry point.
package main

import (
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/pod-control/pcm/internal/audit"
	"github.com/pod-control/pcm/internal/config"
	"github.com/pod-control/pcm/internal/exchange/fake"
	"github.com/pod-control/pcm/internal/manager"
	"github.com/pod-control/pcm/internal/nonce"
	"github.com/pod-control/pcm/internal/pod"
	"github.com/pod-control/pcm/internal/registry"
	"github.com/pod-control/pcm/internal/repository"
)

const Version = "1.0.0"

func main() {
	log.Printf("Starting Pod Manager v%s", Version)

	// Step 1: Load configuration.
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Println("Configuration loaded successfully")

	// Step 2: Initialize audit logger.
	auditLogPath := getAuditLogPath()
	if err := os.MkdirAll(filepath.Dir(auditLogPath), 0o755); err != nil {
		log.Fatalf("Failed to create audit log directory: %v", err)
	}
	auditLogger := audit.NewLogger(audit.DefaultConfig(auditLogPath))
	log.Println("Audit logger initialized")

	// Step 3: Initialize repository.
	dbPath := getDBPath()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	repo, err := repository.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open repository: %v", err)
	}
	log.Println("Repository opened and migrated")

	// Step 4: Create pod registry.
	reg := registry.New()
	log.Println("Pod registry initialized")

	// Step 5: Register a single simulated pod for standalone operation. A
	// real deployment registers pods as they are discovered over the
	// radio link; without a production MessageExchangeProvider this
	// process drives the fake.Simulator so the wiring above can be
	// exercised end to end.
	registerSimulatedPod(reg, repo, auditLogger, cfg)

	// Step 6: Wait for shutdown signal.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	sig := <-shutdown
	log.Printf("Received signal %v, shutting down", sig)

	if err := auditLogger.Close(); err != nil {
		log.Printf("Error closing audit logger: %v", err)
	}
	if err := repo.Close(); err != nil {
		log.Printf("Error closing repository: %v", err)
	}
	log.Println("Pod Manager shutdown complete")
}

func registerSimulatedPod(reg *registry.Registry, repo *repository.SQLiteRepository, auditLogger *audit.Logger, cfg *config.PollConfig) {
	sim := fake.NewSimulator()
	provider := fake.NewProvider(sim.Respond)

	record := pod.NewRecord("pod-sim-1", 0x00001234)
	gen := nonce.New(0, 0)

	m := manager.New(record, provider, repo, gen, auditLogger,
		cfg.ConversationAcquireTimeoutMs,
		cfg.BolusWaitBaseMs, cfg.BolusWaitPerUnitMs,
		cfg.PrimeWaitBaseMs, cfg.PrimeWaitPerUnitMs,
	)
	reg.Register(record, m)
	log.Printf("Registered simulated pod %s", record.ID)
}

func getConfigPath() string {
	if p := os.Getenv("PODMGR_CONFIG_PATH"); p != "" {
		return p
	}
	return ""
}

func getAuditLogPath() string {
	if p := os.Getenv("PODMGR_AUDIT_LOG_PATH"); p != "" {
		return p
	}
	return filepath.Join("logs", "audit.jsonl")
}

func getDBPath() string {
	if p := os.Getenv("PODMGR_DB_PATH"); p != "" {
		return p
	}
	return filepath.Join("data", "podmanager.db")
}
