// Package vision derives the detection-based score vector for a report. It
// runs the external detector over each image, folds all detections into one
// set and hands that set to the category scorers.
package vision

import (
	"context"

	"github.com/apex/log"

	"road-condition-service/detector"
	"road-condition-service/models"
	"road-condition-service/scoring"
)

// Result is the full vision-estimator output for one report. The raw
// detections and the per-class summary ride along for transparency.
type Result struct {
	Scores          models.ScoreVector `json:"scores"`
	Detections      []models.Detection `json:"detections"`
	Summary         map[string]int     `json:"summary"`
	TotalDetections int                `json:"total_detections"`
	FailedImages    int                `json:"failed_images,omitempty"`
}

// Estimator orchestrates detector calls and scoring.
type Estimator struct {
	detector detector.Detector
}

func NewEstimator(d detector.Detector) *Estimator {
	return &Estimator{detector: d}
}

// Score runs the detector once per image and scores the combined detection
// set. A single undecodable or failing image is dropped and logged; the rest
// of the report still gets scored. With no usable images at all the detection
// scores are zero and only the text-driven waterlogging score can be non-zero.
func (e *Estimator) Score(ctx context.Context, images []models.Image, textDescr string) *Result {
	var allDetections []models.Detection
	failed := 0

	for i, img := range images {
		detections, err := e.detector.Detect(ctx, img.Data, img.MimeType)
		if err != nil {
			log.WithError(err).Errorf("Dropping image %d of %d from report", i+1, len(images))
			failed++
			continue
		}
		allDetections = append(allDetections, detections...)
	}

	return &Result{
		Scores:          scoring.Score(allDetections, textDescr),
		Detections:      allDetections,
		Summary:         scoring.Summarize(allDetections),
		TotalDetections: len(allDetections),
		FailedImages:    failed,
	}
}
