package main

import (
	"context"
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	"github.com/mjkeller/geosurvey/internal/adapters/fetch"
	"github.com/mjkeller/geosurvey/internal/adapters/jsonstore"
	"github.com/mjkeller/geosurvey/internal/adapters/postgres"
	"github.com/mjkeller/geosurvey/internal/core/ports"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
	"github.com/mjkeller/geosurvey/internal/pkg/config"
	"github.com/mjkeller/geosurvey/internal/pkg/logging"
	"github.com/mjkeller/geosurvey/internal/workflows"
)

func main() {
	cfg, err := config.Load("geosurvey-updater")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("info", "json")

	var knowledgeRepo ports.KnowledgeRepository
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := postgres.New(context.Background(), cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		knowledgeRepo = postgres.NewKnowledgeRepo(db)
	default:
		knowledgeRepo, err = jsonstore.NewKnowledgeRepo(cfg.Storage.DataDir)
		if err != nil {
			log.Fatalf("knowledge store: %v", err)
		}
	}

	knowledgeSvc := usecases.NewKnowledgeService(knowledgeRepo, nil)
	source := fetch.NewWikipediaSource(cfg.Updater.MineralSource, cfg.Updater.RockSource)
	updaterSvc := usecases.NewUpdaterService(source, knowledgeSvc)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort: cfg.Temporal.HostPort,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.KnowledgeUpdateWorkflow)
	w.RegisterActivity(&workflows.UpdateActivities{
		Source:  source,
		Updater: updaterSvc,
	})

	log.Println("knowledge updater worker started")
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
