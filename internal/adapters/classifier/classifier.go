// Package classifier provides the placeholder image classification model.
package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/mjkeller/geosurvey/internal/core/domain"
)

// Stub is a deterministic stand-in for a trained vision model. It derives a
// class index from a digest of the image bytes, so the same image always
// classifies the same way. Swap it out behind ports.ImageClassifier once a
// real model is available.
type Stub struct{}

func New() *Stub {
	return &Stub{}
}

// Predict returns a class index in [0, numClasses).
func (s *Stub) Predict(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error) {
	if len(image) == 0 {
		return 0, fmt.Errorf("empty image")
	}
	if numClasses <= 0 {
		return 0, fmt.Errorf("numClasses must be positive, got %d", numClasses)
	}

	h := sha256.New()
	h.Write([]byte(kind))
	h.Write(image)
	sum := h.Sum(nil)

	idx := binary.BigEndian.Uint32(sum[:4]) % uint32(numClasses)
	return int(idx), nil
}
