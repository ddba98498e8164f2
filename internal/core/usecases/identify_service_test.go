package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mjkeller/geosurvey/internal/core/domain"
	"github.com/mjkeller/geosurvey/internal/core/usecases"
)

func newIdentifyService(c *mockImageClassifier) *usecases.IdentifyService {
	knowledge := usecases.NewKnowledgeService(testKnowledgeRepo(), nil)
	return usecases.NewIdentifyService(c, knowledge)
}

func TestIdentify_MineralFirst(t *testing.T) {
	// Index 0 maps to Quartz for minerals and Granite for rocks; the mineral
	// resolution wins.
	svc := newIdentifyService(&mockImageClassifier{})

	d, err := svc.Identify(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if d.Kind != domain.KindMineral || d.Data.Name() != "Quartz" {
		t.Errorf("identified %s/%s, want mineral/Quartz", d.Kind, d.Data.Name())
	}
}

func TestIdentify_FallsBackToRock(t *testing.T) {
	// Mineral index 2 is Mica, which the test knowledge base does not seed,
	// so the mineral lookup misses and the rock prediction (Basalt) resolves.
	svc := newIdentifyService(&mockImageClassifier{
		predictFn: func(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error) {
			if kind == domain.KindMineral {
				return 2, nil // Mica, not seeded
			}
			return 1, nil // Basalt
		},
	})

	d, err := svc.Identify(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if d.Kind != domain.KindRock || d.Data.Name() != "Basalt" {
		t.Errorf("identified %s/%s, want rock/Basalt", d.Kind, d.Data.Name())
	}
}

func TestIdentify_OutOfRangeIndexIsUnknown(t *testing.T) {
	svc := newIdentifyService(&mockImageClassifier{
		predictFn: func(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error) {
			return numClasses + 5, nil
		},
	})

	_, err := svc.Identify(context.Background(), []byte("image-bytes"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIdentify_ClassifierError(t *testing.T) {
	svc := newIdentifyService(&mockImageClassifier{
		predictFn: func(ctx context.Context, image []byte, kind domain.RecordKind, numClasses int) (int, error) {
			return 0, errors.New("model unavailable")
		},
	})

	_, err := svc.Identify(context.Background(), []byte("image-bytes"))
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound when both predictions fail", err)
	}
}

func TestIdentify_EmptyImage(t *testing.T) {
	svc := newIdentifyService(&mockImageClassifier{})

	if _, err := svc.Identify(context.Background(), nil); err == nil {
		t.Error("nil image accepted")
	}
	if _, err := svc.Identify(context.Background(), []byte{}); err == nil {
		t.Error("empty image accepted")
	}
}
