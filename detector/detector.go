// Package detector talks to the external road damage detection service. The
// model itself (an SSD object detector) runs behind an HTTP endpoint; this
// package only ships the client and a deterministic stub for tests.
package detector

import (
	"context"

	"road-condition-service/models"
)

// Detector returns per-image damage detections. Implementations must be safe
// for concurrent use. Detections arrive already filtered by the detector's
// own confidence threshold (0.4); callers never re-filter.
type Detector interface {
	Detect(ctx context.Context, image []byte, mimeType string) ([]models.Detection, error)
	SourceName() string
}
