package vision

import (
	"context"
	"errors"
	"testing"

	"road-condition-service/models"
)

// fakeDetector returns canned detections keyed by the first image byte, or an
// error for images starting with 0xFF.
type fakeDetector struct {
	byKey map[byte][]models.Detection
	calls int
}

func (f *fakeDetector) SourceName() string { return "fake" }

func (f *fakeDetector) Detect(_ context.Context, image []byte, _ string) ([]models.Detection, error) {
	f.calls++
	if len(image) > 0 && image[0] == 0xFF {
		return nil, errors.New("could not decode image")
	}
	return f.byKey[image[0]], nil
}

func TestScoreConcatenatesAllImages(t *testing.T) {
	fake := &fakeDetector{byKey: map[byte][]models.Detection{
		1: {{Class: models.ClassPothole, Confidence: 0.9}},
		2: {{Class: models.ClassAlligator, Confidence: 0.5}},
	}}
	e := NewEstimator(fake)

	result := e.Score(context.Background(), []models.Image{
		{Data: []byte{1}, MimeType: "image/jpeg"},
		{Data: []byte{2}, MimeType: "image/jpeg"},
	}, "")

	if fake.calls != 2 {
		t.Errorf("detector called %d times, want 2", fake.calls)
	}
	if result.TotalDetections != 2 {
		t.Errorf("TotalDetections = %d, want 2", result.TotalDetections)
	}
	// surface: ((40*0.9 + 25*0.5) / 2) * 2 = 48.5
	if result.Scores.SurfaceDamage != 48.5 {
		t.Errorf("SurfaceDamage = %v, want 48.5", result.Scores.SurfaceDamage)
	}
	if result.Summary[models.ClassPothole] != 1 || result.Summary[models.ClassAlligator] != 1 {
		t.Errorf("unexpected summary: %v", result.Summary)
	}
}

func TestScoreDropsFailedImage(t *testing.T) {
	fake := &fakeDetector{byKey: map[byte][]models.Detection{
		1: {{Class: models.ClassPothole, Confidence: 0.8}},
	}}
	e := NewEstimator(fake)

	result := e.Score(context.Background(), []models.Image{
		{Data: []byte{0xFF, 0x00}, MimeType: "image/jpeg"}, // undecodable
		{Data: []byte{1}, MimeType: "image/jpeg"},
	}, "")

	if result.FailedImages != 1 {
		t.Errorf("FailedImages = %d, want 1", result.FailedImages)
	}
	if result.TotalDetections != 1 {
		t.Errorf("TotalDetections = %d, want 1 (bad image dropped, good one kept)", result.TotalDetections)
	}
}

func TestScoreAllImagesFailed(t *testing.T) {
	fake := &fakeDetector{}
	e := NewEstimator(fake)

	result := e.Score(context.Background(), []models.Image{
		{Data: []byte{0xFF, 0x01}, MimeType: "image/jpeg"},
		{Data: []byte{0xFF, 0x02}, MimeType: "image/jpeg"},
	}, "flooded underpass")

	if result.TotalDetections != 0 {
		t.Errorf("TotalDetections = %d, want 0", result.TotalDetections)
	}
	if result.Scores.SurfaceDamage != 0 || result.Scores.UrgencyForRepair != 0 {
		t.Errorf("detection scores should be 0 with no usable images: %+v", result.Scores)
	}
	// Waterlogging comes from the text and survives total image failure.
	if result.Scores.Waterlogging != 80 {
		t.Errorf("Waterlogging = %v, want 80", result.Scores.Waterlogging)
	}
}

func TestScoreNoImages(t *testing.T) {
	e := NewEstimator(&fakeDetector{})

	result := e.Score(context.Background(), nil, "water near the curb")
	if result.TotalDetections != 0 {
		t.Errorf("TotalDetections = %d, want 0", result.TotalDetections)
	}
	if result.Scores.Waterlogging != 40 {
		t.Errorf("Waterlogging = %v, want 40", result.Scores.Waterlogging)
	}
}
