// Package fusion combines the vision and judge score vectors into the single
// per-report vector that gets persisted.
package fusion

import (
	"math"

	"road-condition-service/models"
)

// Fuse merges the two estimator outputs per category. When both estimators
// ran, each category is the arithmetic mean of the two. A nil vector means
// that estimator did not run; its counterpart's scores are used unchanged
// rather than averaged against zero, so a judge outage does not silently
// halve every score.
func Fuse(vision, judge *models.ScoreVector) models.ScoreVector {
	switch {
	case vision == nil && judge == nil:
		return models.ScoreVector{}
	case judge == nil:
		return *vision
	case vision == nil:
		return *judge
	}

	return models.ScoreVector{
		SurfaceDamage:     mean(vision.SurfaceDamage, judge.SurfaceDamage),
		TrafficSafetyRisk: mean(vision.TrafficSafetyRisk, judge.TrafficSafetyRisk),
		RideDiscomfort:    mean(vision.RideDiscomfort, judge.RideDiscomfort),
		Waterlogging:      mean(vision.Waterlogging, judge.Waterlogging),
		UrgencyForRepair:  mean(vision.UrgencyForRepair, judge.UrgencyForRepair),
	}
}

func mean(a, b float64) float64 {
	return math.Round((a+b)/2*100) / 100
}
