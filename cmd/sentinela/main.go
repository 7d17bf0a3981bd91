// sentinela runs one investigation end-to-end against the configured API
// registry and prints the resulting InvestigationResult as JSON. It is an
// example entrypoint, not a service: no HTTP surface, no long-running
// process — one query in, one result out (HTTP/WebSocket delivery is an
// explicit out-of-scope collaborator).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"runtime/debug"
	"time"

	"github.com/joho/godotenv"

	"github.com/cidadaoai/sentinela/pkg/apiclient"
	"github.com/cidadaoai/sentinela/pkg/config"
	"github.com/cidadaoai/sentinela/pkg/entity"
	"github.com/cidadaoai/sentinela/pkg/federation"
	"github.com/cidadaoai/sentinela/pkg/intent"
	"github.com/cidadaoai/sentinela/pkg/orchestrator"
	"github.com/cidadaoai/sentinela/pkg/plan"
	"github.com/cidadaoai/sentinela/pkg/progress"
	"github.com/cidadaoai/sentinela/pkg/registry"
	"github.com/cidadaoai/sentinela/pkg/resilience"
	"github.com/cidadaoai/sentinela/pkg/storage"
	"github.com/cidadaoai/sentinela/pkg/storage/postgres"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configPath := flag.String("config", getEnv("SENTINELA_CONFIG", ""), "path to a YAML config file (optional; built-in defaults otherwise)")
	query := flag.String("query", "quero investigar contratos suspeitos de superfaturamento", "investigation query, in Portuguese")
	userID := flag.String("user-id", "", "optional user id, recorded for traceability")
	envPath := flag.String("env-file", getEnv("SENTINELA_ENV_FILE", ".env"), "path to a .env file for local secrets (e.g. DB password)")
	flag.Parse()

	slog.Info("starting", "build", buildTag())

	if err := godotenv.Load(*envPath); err != nil {
		slog.Info("no .env file loaded, continuing with existing environment", "path", *envPath, "error", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	reg, err := registry.New(cfg.Endpoints)
	if err != nil {
		slog.Error("failed to build API registry", "error", err)
		os.Exit(1)
	}

	client := apiclient.NewHTTPClient(nil)
	breakers := resilience.NewBreakerRegistry(cfg.Circuit.BreakerConfig())
	limiters := resilience.NewLimiterRegistry()
	executor := federation.New(cfg.FederationConfig(), reg, client, breakers, limiters)

	orch := orchestrator.New(entity.New(), intent.New(), plan.New(reg), executor, cfg.Analyzer)

	repo := buildRepository()

	sink := cfg.Progress.NewBoundedSink()
	defer sink.Close()
	go drainProgress(sink)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	result := orch.Investigate(ctx, *query, *userID, "", sink)
	if err := repo.Save(ctx, &result); err != nil {
		slog.Error("failed to persist investigation result", "error", err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		slog.Error("failed to encode investigation result", "error", err)
		os.Exit(1)
	}
}

// buildTag identifies the running binary in logs as "sentinela@<commit>",
// falling back to "sentinela@dev" outside a VCS checkout (e.g. `go test`).
// Go 1.18+ stamps this into the binary automatically, so there's nothing to
// wire through -ldflags.
func buildTag() string {
	commit := "dev"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				commit = s.Value
				if len(commit) > 8 {
					commit = commit[:8]
				}
				break
			}
		}
	}
	return "sentinela@" + commit
}

// buildRepository returns the Postgres adapter when SENTINELA_DB_PASSWORD
// is set, otherwise an in-memory repository — the example entrypoint never
// requires a database to run.
func buildRepository() storage.InvestigationRepository {
	if os.Getenv("SENTINELA_DB_PASSWORD") == "" {
		return storage.NewInMemoryRepository()
	}

	dbCfg, err := postgres.LoadConfigFromEnv()
	if err != nil {
		slog.Warn("invalid Postgres configuration, falling back to in-memory storage", "error", err)
		return storage.NewInMemoryRepository()
	}
	pool, err := postgres.NewPool(context.Background(), dbCfg)
	if err != nil {
		slog.Warn("could not connect to Postgres, falling back to in-memory storage", "error", err)
		return storage.NewInMemoryRepository()
	}
	return postgres.NewRepository(pool)
}

// drainProgress logs each progress event as it arrives, giving the example
// a live trace of plan/stage/analyzer lifecycle (spec §4.10). Returns once
// the sink is closed.
func drainProgress(sink *progress.BoundedSink) {
	for ev := range sink.Events() {
		slog.Info("progress", "kind", ev.Kind, "investigation_id", ev.InvestigationID, "stage_id", ev.StageID, "status", ev.Status)
	}
}
