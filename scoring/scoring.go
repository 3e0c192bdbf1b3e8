package scoring

import (
	"math"
	"strings"

	"road-condition-service/models"
)

// Per-category weight tables. Each table reflects how much a damage class
// matters for that category; classes missing from a table fall back to the
// table's default so a class the model adds later still registers.
var surfaceDamageWeights = map[string]float64{
	models.ClassLongitudinalWheelMark: 8,
	models.ClassLongitudinalJoint:     8,
	models.ClassLateralInterval:       10,
	models.ClassLateralJoint:          10,
	models.ClassAlligator:             25,
	models.ClassPothole:               40,
	models.ClassCrosswalkBlur:         5,
	models.ClassWhiteLineBlur:         5,
}

var trafficSafetyWeights = map[string]float64{
	models.ClassPothole:               50,
	models.ClassAlligator:             30,
	models.ClassCrosswalkBlur:         15,
	models.ClassWhiteLineBlur:         10,
	models.ClassLongitudinalWheelMark: 5,
	models.ClassLongitudinalJoint:     5,
	models.ClassLateralInterval:       5,
	models.ClassLateralJoint:          5,
}

var rideDiscomfortWeights = map[string]float64{
	models.ClassLongitudinalWheelMark: 5,
	models.ClassLongitudinalJoint:     5,
	models.ClassLateralInterval:       8,
	models.ClassLateralJoint:          8,
	models.ClassAlligator:             20,
	models.ClassPothole:               45,
	models.ClassCrosswalkBlur:         2,
	models.ClassWhiteLineBlur:         2,
}

var urgencyWeights = map[string]float64{
	models.ClassPothole:               100,
	models.ClassAlligator:             70,
	models.ClassLateralInterval:       25,
	models.ClassLateralJoint:          25,
	models.ClassLongitudinalWheelMark: 15,
	models.ClassLongitudinalJoint:     15,
	models.ClassCrosswalkBlur:         20,
	models.ClassWhiteLineBlur:         10,
}

// Phrases that explicitly describe waterlogging versus a bare water mention.
var waterloggingKeywords = []string{
	"waterlog",
	"water logged",
	"flood",
	"flooded",
	"puddle",
	"standing water",
	"water accumulation",
}

// Summarize counts detections per damage class. The detector already filtered
// by confidence; the summary is for transparency alongside the raw detections.
func Summarize(detections []models.Detection) map[string]int {
	summary := make(map[string]int)
	for _, d := range detections {
		summary[d.Class]++
	}
	return summary
}

// weightedMean computes the confidence-weighted mean of the given weight table
// over all detections, scales it by multiplier onto 0-100 and clamps at 100.
// The divisor is the detection count, not the weight sum, so a set of low
// confidence detections scores lower than the same set at full confidence.
func weightedMean(detections []models.Detection, weights map[string]float64, defaultWeight, multiplier float64) float64 {
	if len(detections) == 0 {
		return 0
	}
	total := 0.0
	for _, d := range detections {
		w, ok := weights[d.Class]
		if !ok {
			w = defaultWeight
		}
		total += w * d.Confidence
	}
	score := math.Min(100, total/float64(len(detections))*multiplier)
	return round2(score)
}

// SurfaceDamageScore scores visible structural damage. The raw means sit in
// roughly the 0-50 range for the surface table, hence the x2 scale-up.
func SurfaceDamageScore(detections []models.Detection) float64 {
	return weightedMean(detections, surfaceDamageWeights, 5, 2)
}

// TrafficSafetyScore scores how dangerous the section is for vehicles,
// pedestrians and cyclists. Unknown classes carry no safety signal.
func TrafficSafetyScore(detections []models.Detection) float64 {
	return weightedMean(detections, trafficSafetyWeights, 0, 1)
}

// RideDiscomfortScore scores ride smoothness.
func RideDiscomfortScore(detections []models.Detection) float64 {
	return weightedMean(detections, rideDiscomfortWeights, 2, 1.8)
}

// UrgencyScore scores how soon the section needs repair.
func UrgencyScore(detections []models.Detection) float64 {
	return weightedMean(detections, urgencyWeights, 10, 1)
}

// WaterloggingScore scores drainage problems from the report text. The
// detector cannot see standing water reliably, so this is keyword matching,
// not NLP: an explicit waterlogging phrase scores 80, a bare "water" mention
// 40, anything else 0.
func WaterloggingScore(textDescr string) float64 {
	if textDescr == "" {
		return 0
	}
	lower := strings.ToLower(textDescr)
	for _, kw := range waterloggingKeywords {
		if strings.Contains(lower, kw) {
			return 80
		}
	}
	if strings.Contains(lower, "water") {
		return 40
	}
	return 0
}

// Score runs all five category scorers over one report's detections and text.
func Score(detections []models.Detection, textDescr string) models.ScoreVector {
	return models.ScoreVector{
		SurfaceDamage:     SurfaceDamageScore(detections),
		TrafficSafetyRisk: TrafficSafetyScore(detections),
		RideDiscomfort:    RideDiscomfortScore(detections),
		Waterlogging:      WaterloggingScore(textDescr),
		UrgencyForRepair:  UrgencyScore(detections),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
