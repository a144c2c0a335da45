package pipeline

import (
	"context"

	"github.com/couchcryptid/active-fire-etl/internal/domain"
)

// DetectionTransformer implements Transformer using the domain extraction
// functions.
type DetectionTransformer struct{}

// NewTransformer creates a DetectionTransformer.
func NewTransformer() *DetectionTransformer {
	return &DetectionTransformer{}
}

func (t *DetectionTransformer) Transform(_ context.Context, pm domain.Placemark) (domain.Detection, error) {
	return domain.BuildDetection(pm)
}

// Loaders runs each loader in order with the same detections and stops at the
// first failure.
type Loaders []Loader

func (ls Loaders) Load(ctx context.Context, detections []domain.Detection) error {
	for _, l := range ls {
		if err := l.Load(ctx, detections); err != nil {
			return err
		}
	}
	return nil
}
