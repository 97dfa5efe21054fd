// Package bootstrap wires storage adapters and core services from config.
// Both the HTTP server and govctl start from here.
package bootstrap

import (
	"context"
	"fmt"

	"model-governance-service/internal/adapters/primary/http/handlers"
	"model-governance-service/internal/adapters/secondary/filestore"
	"model-governance-service/internal/adapters/secondary/llm"
	"model-governance-service/internal/adapters/secondary/memory"
	"model-governance-service/internal/adapters/secondary/postgres"
	"model-governance-service/internal/adapters/secondary/recordstore"
	"model-governance-service/internal/adapters/secondary/sqlite"
	"model-governance-service/internal/config"
	ports "model-governance-service/internal/core/ports/output"
	"model-governance-service/internal/core/services"
	"model-governance-service/internal/telemetry"

	log "github.com/sirupsen/logrus"
)

// Storage is an opened record log with its artifact store.
type Storage struct {
	Log       ports.RecordLog
	Artifacts ports.ArtifactStore
	// Ping reports whether the backing store is reachable.
	Ping func(ctx context.Context) error
}

func (s *Storage) Close() error {
	return s.Log.Close()
}

// OpenStorage opens the record log selected by cfg.Storage.Driver. Every
// driver except memory keeps pack artifacts under the artifacts directory.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	var (
		recordLog ports.RecordLog
		ping      func(ctx context.Context) error
	)

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		return &Storage{
			Log:       memory.NewRecordLog(),
			Artifacts: memory.NewArtifactStore(),
		}, nil

	case config.DriverFile:
		fl, err := filestore.Open(cfg.Storage.DataDir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		recordLog = fl

	case config.DriverSQLite:
		sl, err := sqlite.Open(cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		recordLog = sl

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pl, err := postgres.NewRecordLog(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		recordLog = pl
		ping = pool.Ping
		log.Info("database connection established")

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	artifacts, err := filestore.NewArtifactStore(cfg.Storage.ArtifactsDir)
	if err != nil {
		_ = recordLog.Close()
		return nil, err
	}
	if ping == nil {
		ping = func(ctx context.Context) error {
			_, err := recordLog.Head(ctx)
			return err
		}
	}
	return &Storage{Log: recordLog, Artifacts: artifacts, Ping: ping}, nil
}

// Services is the wired application core.
type Services struct {
	Models      *services.ModelService
	Lineage     *services.LineageService
	Evaluations *services.EvaluationService
	Summaries   *services.SummaryService
	Risk        *services.RiskService
	Controls    *services.ControlService
	Philosophy  *services.PhilosophyService
	Packs       *services.EvidencePackService
	Audit       *services.AuditService
}

// NewServices builds every service over store. metrics may be nil. The text
// completer is only created when LLM support is enabled.
func NewServices(store *Storage, cfg *config.Config, metrics *telemetry.Metrics) (*Services, error) {
	// ============================================================================
	// Secondary Adapters (Output Ports - Repositories)
	// ============================================================================

	models := recordstore.NewModelRepository(store.Log)
	evals := recordstore.NewEvaluationRepository(store.Log)
	lineage := recordstore.NewLineageRepository(store.Log)
	controls, err := recordstore.NewControlCatalogRepository(store.Log)
	if err != nil {
		return nil, fmt.Errorf("load control catalog: %w", err)
	}
	philosophy := recordstore.NewPhilosophyRepository(store.Log)
	audit := recordstore.NewAuditLogRepository(store.Log)
	packs := recordstore.NewEvidencePackRepository(store.Log)

	var completer ports.TextCompleter
	if cfg.LLM.Enabled {
		completer = llm.NewChatClient(&cfg.LLM)
		log.WithField("model", cfg.LLM.Model).Info("text completion enabled")
	} else {
		log.Info("text completion disabled")
	}

	// ============================================================================
	// Core Services (Application Layer)
	// ============================================================================

	recorder := services.NewAuditRecorder(store.Log, audit, cfg.Audit.DefaultActor, metrics)
	summaries := services.NewSummaryService(store.Log, models, evals, lineage, controls)
	scorer := services.NewRiskScorer()
	evalSvc := services.NewEvaluationService(models, evals, controls, recorder, metrics)
	packDeps := services.EvidencePackDeps{
		Log:        store.Log,
		Models:     models,
		Evals:      evals,
		Lineage:    lineage,
		Controls:   controls,
		Philosophy: philosophy,
		Audit:      audit,
		Packs:      packs,
		Artifacts:  store.Artifacts,
	}

	return &Services{
		Models:      services.NewModelService(models, recorder),
		Lineage:     services.NewLineageService(models, lineage, recorder),
		Evaluations: evalSvc,
		Summaries:   summaries,
		Risk:        services.NewRiskService(summaries, scorer, evalSvc, metrics),
		Controls:    services.NewControlService(controls, recorder),
		Philosophy:  services.NewPhilosophyService(philosophy, models, recorder, completer, metrics),
		Packs:       services.NewEvidencePackService(packDeps, summaries, scorer, recorder, metrics, cfg.Audit.SummaryLimit),
		Audit:       services.NewAuditService(audit),
	}, nil
}

// Handler builds the HTTP primary adapter over s.
func (s *Services) Handler() *handlers.Handler {
	return handlers.New(
		s.Models,
		s.Lineage,
		s.Evaluations,
		s.Summaries,
		s.Risk,
		s.Controls,
		s.Philosophy,
		s.Packs,
		s.Audit,
	)
}
