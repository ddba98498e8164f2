package http

import (
	"github.com/nats-io/nats.go"

	"github.com/mjkeller/geosurvey/internal/adapters/postgres"
	"github.com/mjkeller/geosurvey/internal/adapters/valkey"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Surveys   *usecases.SurveyService
	Knowledge *usecases.KnowledgeService
	Maps      *usecases.MapService
	Identify  *usecases.IdentifyService
	Updater   *usecases.UpdaterService
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
