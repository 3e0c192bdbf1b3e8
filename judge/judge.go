// Package judge wraps the multimodal language model that produces the second,
// independent score vector per report.
package judge

import (
	"context"

	"road-condition-service/models"
)

// Judge assesses a report's images and text in one call and returns the raw
// model response. Parsing into a ScoreVector is the caller's job (see the
// parser package); a failed call or unparseable output makes this estimator
// unavailable for the report, it never degrades to zeros.
type Judge interface {
	Assess(ctx context.Context, images []models.Image, textDescr string) (string, error)
	SourceName() string
}
