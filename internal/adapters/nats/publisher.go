package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// Event is the envelope for every published survey event.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SurveyID  string    `json:"survey_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:      "GEO_SURVEYS",
			Subjects:  []string{"geo.survey.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
		{
			Name:      "GEO_MAPS",
			Subjects:  []string{"geo.map.>"},
			Retention: nats.InterestPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

func (p *Publisher) PublishSurveyCreated(ctx context.Context, survey *domain.Survey) error {
	return p.publish("geo.survey.created", Event{
		ID:        uuid.NewString(),
		Type:      "survey.created",
		SurveyID:  survey.ID,
		Timestamp: time.Now().UTC(),
		Payload:   survey,
	})
}

func (p *Publisher) PublishDescriptionAdded(ctx context.Context, surveyID string, desc domain.Description) error {
	return p.publish("geo.survey.description."+surveyID, Event{
		ID:        uuid.NewString(),
		Type:      "survey.description_added",
		SurveyID:  surveyID,
		Timestamp: time.Now().UTC(),
		Payload:   desc,
	})
}

func (p *Publisher) PublishMapGenerated(ctx context.Context, surveyID, artifactPath string) error {
	return p.publish("geo.map.generated."+surveyID, Event{
		ID:        uuid.NewString(),
		Type:      "map.generated",
		SurveyID:  surveyID,
		Timestamp: time.Now().UTC(),
		Payload:   map[string]string{"path": artifactPath},
	})
}

func (p *Publisher) PublishBroadcast(ctx context.Context, data []byte) error {
	return p.conn.Publish("geo.updates.broadcast", data)
}

func (p *Publisher) publish(subject string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data)
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
