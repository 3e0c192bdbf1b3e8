package models

import "time"

// Damage class codes emitted by the road damage detector. The taxonomy follows
// the RDD damage classes the detection model was trained on.
const (
	ClassLongitudinalWheelMark = "D00" // Longitudinal crack (wheel mark part)
	ClassLongitudinalJoint     = "D01" // Longitudinal crack (construction joint)
	ClassLateralInterval       = "D10" // Lateral crack (equal interval)
	ClassLateralJoint          = "D11" // Lateral crack (construction joint)
	ClassAlligator             = "D20" // Alligator crack
	ClassPothole               = "D40" // Rutting / bump / pothole / separation
	ClassCrosswalkBlur         = "D43" // Crosswalk blur
	ClassWhiteLineBlur         = "D44" // White line blur
)

// Detection is a single finding from one image. The detector applies its own
// confidence threshold before returning detections, so no re-filtering happens
// downstream.
type Detection struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

// Image is one uploaded photo with its mime type.
type Image struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mime_type"`
}

// ScoreVector holds the five condition scores for a report or a location
// average. All scores are on a 0-100 scale, 100 being the worst condition.
// All five fields are always present; a category that could not be assessed
// is 0, never absent.
type ScoreVector struct {
	SurfaceDamage     float64 `json:"surface_damage"`
	TrafficSafetyRisk float64 `json:"traffic_safety_risk"`
	RideDiscomfort    float64 `json:"ride_discomfort"`
	Waterlogging      float64 `json:"waterlogging"`
	UrgencyForRepair  float64 `json:"urgency_for_repair"`
}

// Add returns the element-wise sum of v and o.
func (v ScoreVector) Add(o ScoreVector) ScoreVector {
	return ScoreVector{
		SurfaceDamage:     v.SurfaceDamage + o.SurfaceDamage,
		TrafficSafetyRisk: v.TrafficSafetyRisk + o.TrafficSafetyRisk,
		RideDiscomfort:    v.RideDiscomfort + o.RideDiscomfort,
		Waterlogging:      v.Waterlogging + o.Waterlogging,
		UrgencyForRepair:  v.UrgencyForRepair + o.UrgencyForRepair,
	}
}

// DivideBy returns v scaled by 1/n. n must be > 0.
func (v ScoreVector) DivideBy(n float64) ScoreVector {
	return ScoreVector{
		SurfaceDamage:     v.SurfaceDamage / n,
		TrafficSafetyRisk: v.TrafficSafetyRisk / n,
		RideDiscomfort:    v.RideDiscomfort / n,
		Waterlogging:      v.Waterlogging / n,
		UrgencyForRepair:  v.UrgencyForRepair / n,
	}
}

// Clamped returns v with every score forced into [0, 100]. The judge can
// occasionally return values outside the scale; callers clamp rather than
// reject.
func (v ScoreVector) Clamped() ScoreVector {
	return ScoreVector{
		SurfaceDamage:     clamp(v.SurfaceDamage),
		TrafficSafetyRisk: clamp(v.TrafficSafetyRisk),
		RideDiscomfort:    clamp(v.RideDiscomfort),
		Waterlogging:      clamp(v.Waterlogging),
		UrgencyForRepair:  clamp(v.UrgencyForRepair),
	}
}

func clamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// Report is one user submission with its per-estimator and fused scores.
// Reports are append-only; there is no edit or delete path.
type Report struct {
	Seq          int          `json:"seq"`
	PostedBy     string       `json:"posted_by"`
	LocationID   string       `json:"location_id"`
	TextDescr    string       `json:"text_descr"`
	ImageRefs    []string     `json:"image_refs"`
	VisionScores ScoreVector  `json:"vision_scores"`
	JudgeScores  *ScoreVector `json:"judge_scores,omitempty"`
	FusedScores  ScoreVector  `json:"fused_scores"`
	CreatedAt    time.Time    `json:"created_at"`
}

// LocationAverage is the per-location running average answered by the
// aggregator.
type LocationAverage struct {
	LocationID string      `json:"location_id"`
	Scores     ScoreVector `json:"scores"`
	Posts      int         `json:"posts"`
}

// User mirrors the users table.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Reputation int       `json:"reputation"`
	CreatedAt  time.Time `json:"created_at"`
}
