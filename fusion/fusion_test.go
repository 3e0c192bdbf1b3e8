package fusion

import (
	"testing"

	"road-condition-service/models"
)

func TestFuseBothEstimators(t *testing.T) {
	vision := &models.ScoreVector{
		SurfaceDamage:     60,
		TrafficSafetyRisk: 40,
		RideDiscomfort:    50,
		Waterlogging:      0,
		UrgencyForRepair:  70,
	}
	judge := &models.ScoreVector{
		SurfaceDamage:     80,
		TrafficSafetyRisk: 60,
		RideDiscomfort:    55,
		Waterlogging:      20,
		UrgencyForRepair:  90,
	}

	got := Fuse(vision, judge)
	want := models.ScoreVector{
		SurfaceDamage:     70,
		TrafficSafetyRisk: 50,
		RideDiscomfort:    52.5,
		Waterlogging:      10,
		UrgencyForRepair:  80,
	}
	if got != want {
		t.Errorf("Fuse() = %+v, want %+v", got, want)
	}
}

// A missing estimator is "not run", not zero: the available vector passes
// through unchanged instead of being halved against an implicit zero.
func TestFuseMissingJudgeUsesVisionUnchanged(t *testing.T) {
	vision := &models.ScoreVector{SurfaceDamage: 60, UrgencyForRepair: 45}

	got := Fuse(vision, nil)
	if got.SurfaceDamage != 60 {
		t.Errorf("SurfaceDamage = %v, want 60", got.SurfaceDamage)
	}
	if got.UrgencyForRepair != 45 {
		t.Errorf("UrgencyForRepair = %v, want 45", got.UrgencyForRepair)
	}
}

func TestFuseMissingVisionUsesJudgeUnchanged(t *testing.T) {
	judge := &models.ScoreVector{RideDiscomfort: 33, Waterlogging: 80}

	got := Fuse(nil, judge)
	if got.RideDiscomfort != 33 || got.Waterlogging != 80 {
		t.Errorf("Fuse(nil, judge) = %+v, want judge passthrough", got)
	}
}

func TestFuseBothMissing(t *testing.T) {
	if got := Fuse(nil, nil); got != (models.ScoreVector{}) {
		t.Errorf("Fuse(nil, nil) = %+v, want zero vector", got)
	}
}
