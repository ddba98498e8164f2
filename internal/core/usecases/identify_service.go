package usecases

import (
	"context"
	"fmt"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/ports"
)

// Class label tables. The classifier returns an index into these; anything
// out of range maps to "Unknown".
var (
	mineralLabels = []string{"Quartz", "Feldspar", "Mica", "Calcite"}
	rockLabels    = []string{"Granite", "Basalt", "Sandstone", "Limestone"}
)

// IdentifyService identifies a rock or mineral sample from an image. The
// mineral classifier is consulted first, then the rock classifier, matching
// the field tool's behavior.
type IdentifyService struct {
	classifier ports.ImageClassifier
	knowledge  *KnowledgeService
}

// NewIdentifyService creates a new IdentifyService.
func NewIdentifyService(classifier ports.ImageClassifier, knowledge *KnowledgeService) *IdentifyService {
	return &IdentifyService{classifier: classifier, knowledge: knowledge}
}

// Identify predicts a label for the image and resolves it against the
// knowledge base. It returns domain.ErrNotFound when neither prediction
// resolves to a known record.
func (s *IdentifyService) Identify(ctx context.Context, image []byte) (*domain.TypeDetails, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	if name, err := s.predict(ctx, image, domain.KindMineral, mineralLabels); err == nil {
		if rec, err := s.knowledge.GetMineral(ctx, name); err == nil {
			return &domain.TypeDetails{Kind: domain.KindMineral, Data: rec}, nil
		}
	}
	if name, err := s.predict(ctx, image, domain.KindRock, rockLabels); err == nil {
		if rec, err := s.knowledge.GetRock(ctx, name); err == nil {
			return &domain.TypeDetails{Kind: domain.KindRock, Data: rec}, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *IdentifyService) predict(ctx context.Context, image []byte, kind domain.RecordKind, labels []string) (string, error) {
	idx, err := s.classifier.Predict(ctx, image, kind, len(labels))
	if err != nil {
		return "", fmt.Errorf("predict %s class: %w", kind, err)
	}
	return labelFor(labels, idx), nil
}

// labelFor maps a class index to its label, or "Unknown" when out of range.
func labelFor(labels []string, idx int) string {
	if idx < 0 || idx >= len(labels) {
		return "Unknown"
	}
	return labels[idx]
}
