package detector

import (
	"context"
	"crypto/sha256"

	"road-condition-service/models"
)

// Stub is a deterministic, no-network detector intended for CI and local
// end-to-end runs. Detections depend only on the image bytes so the pipeline
// is stable across runs.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) SourceName() string { return "stub-detector" }

var stubClasses = []string{
	models.ClassLongitudinalWheelMark,
	models.ClassLateralInterval,
	models.ClassAlligator,
	models.ClassPothole,
	models.ClassWhiteLineBlur,
}

func (s *Stub) Detect(_ context.Context, image []byte, _ string) ([]models.Detection, error) {
	if len(image) == 0 {
		return nil, nil
	}

	sum := sha256.Sum256(image)
	n := int(sum[0])%3 + 1
	detections := make([]models.Detection, 0, n)
	for i := 0; i < n; i++ {
		cls := stubClasses[int(sum[i+1])%len(stubClasses)]
		// Confidence in [0.4, 1.0), matching the detector's threshold
		conf := 0.4 + 0.6*float64(sum[i+4])/256
		detections = append(detections, models.Detection{Class: cls, Confidence: conf})
	}
	return detections, nil
}
