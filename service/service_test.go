package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"road-condition-service/detector"
	"road-condition-service/models"
	"road-condition-service/vision"
)

type fakeDetector struct {
	detections []models.Detection
	err        error
}

func (f *fakeDetector) Detect(_ context.Context, _ []byte, _ string) ([]models.Detection, error) {
	return f.detections, f.err
}

func (f *fakeDetector) SourceName() string { return "fake" }

type fakeJudge struct {
	raw string
	err error
}

func (f *fakeJudge) Assess(_ context.Context, _ []models.Image, _ string) (string, error) {
	return f.raw, f.err
}

func (f *fakeJudge) SourceName() string { return "fake" }

// fakeStore folds scores in memory the same way the SQL aggregator does:
// cumulative sums plus a post count per location.
type fakeStore struct {
	mu      sync.Mutex
	saved   []*models.Report
	sums    map[string]models.ScoreVector
	posts   map[string]int
	saveErr error
	foldErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sums:  make(map[string]models.ScoreVector),
		posts: make(map[string]int),
	}
}

func (f *fakeStore) SaveReport(_ context.Context, report *models.Report) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	f.saved = append(f.saved, report)
	return len(f.saved), nil
}

func (f *fakeStore) FoldInLocation(_ context.Context, locationID string, fused models.ScoreVector) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.foldErr != nil {
		return f.foldErr
	}
	f.sums[locationID] = f.sums[locationID].Add(fused)
	f.posts[locationID]++
	return nil
}

func (f *fakeStore) average(locationID string) models.ScoreVector {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sums[locationID].DivideBy(float64(f.posts[locationID]))
}

type fakeBlobs struct {
	refs []string
	err  error
}

func (f *fakeBlobs) Store(_ []byte, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	ref := fmt.Sprintf("blob-%d", len(f.refs))
	f.refs = append(f.refs, ref)
	return ref, nil
}

func (f *fakeBlobs) Read(_ string) ([]byte, error) { return nil, errors.New("not implemented") }

type fakePublisher struct {
	mu       sync.Mutex
	messages []interface{}
}

func (f *fakePublisher) Publish(message interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

func newTestService(d detector.Detector, j *fakeJudge, store *fakeStore, pub Publisher) *Service {
	return NewService(vision.NewEstimator(d), j, store, &fakeBlobs{}, pub)
}

const judgeRaw = `{"surface_damage": 40, "traffic_safety_risk": 20, "ride_discomfort": 10, "waterlogging": 60, "urgency_for_repair": 30}`

func TestScoreAndRecordRejectsEmptyReport(t *testing.T) {
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, newFakeStore(), nil)

	_, err := svc.ScoreAndRecord(context.Background(), nil, "", "loc-1", "user-1")
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestScoreReportRejectsEmptyReport(t *testing.T) {
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, newFakeStore(), nil)

	_, err := svc.ScoreReport(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrEmptyReport)
}

func TestScoreReportFusesBothEstimators(t *testing.T) {
	// Text-only report: vision gives waterlogging 80, everything else 0.
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, newFakeStore(), nil)

	res, err := svc.ScoreReport(context.Background(), nil, "There is standing water here")
	require.NoError(t, err)
	require.NotNil(t, res.Judge)

	assert.Equal(t, 80.0, res.Vision.Scores.Waterlogging)
	assert.Equal(t, 60.0, res.Judge.Waterlogging)
}

func TestScoreAndRecordJudgeUnavailableUsesVisionScores(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(&fakeDetector{}, &fakeJudge{err: errors.New("judge down")}, store, nil)

	report, err := svc.ScoreAndRecord(context.Background(), nil, "There is standing water here", "loc-1", "user-1")
	require.NoError(t, err)

	assert.Nil(t, report.JudgeScores)
	assert.Equal(t, report.VisionScores, report.FusedScores)
	assert.Equal(t, 80.0, report.FusedScores.Waterlogging)
}

func TestScoreAndRecordFusesAsMean(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, store, nil)

	report, err := svc.ScoreAndRecord(context.Background(), nil, "There is standing water here", "loc-1", "user-1")
	require.NoError(t, err)
	require.NotNil(t, report.JudgeScores)

	assert.Equal(t, models.ScoreVector{
		SurfaceDamage:     20,
		TrafficSafetyRisk: 10,
		RideDiscomfort:    5,
		Waterlogging:      70,
		UrgencyForRepair:  15,
	}, report.FusedScores)
}

func TestScoreAndRecordScoresDetections(t *testing.T) {
	store := newFakeStore()
	d := &fakeDetector{detections: []models.Detection{
		{Class: models.ClassPothole, Confidence: 0.9},
		{Class: models.ClassAlligator, Confidence: 0.5},
	}}
	svc := newTestService(d, &fakeJudge{err: errors.New("judge down")}, store, nil)

	images := []models.Image{{Data: []byte{0x01}, MimeType: "image/jpeg"}}
	report, err := svc.ScoreAndRecord(context.Background(), images, "", "loc-1", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 48.5, report.FusedScores.SurfaceDamage)
	assert.Equal(t, 30.0, report.FusedScores.TrafficSafetyRisk)
	assert.Equal(t, 62.5, report.FusedScores.UrgencyForRepair)
	assert.Len(t, report.ImageRefs, 1)
}

func TestFoldInAveragesMatchSavedReports(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, store, nil)

	texts := []string{
		"There is standing water here",
		"water on the road",
		"very rough surface",
	}
	var sum models.ScoreVector
	for _, text := range texts {
		report, err := svc.ScoreAndRecord(context.Background(), nil, text, "loc-1", "user-1")
		require.NoError(t, err)
		sum = sum.Add(report.FusedScores)
	}

	assert.Equal(t, len(texts), store.posts["loc-1"])
	assert.Equal(t, sum.DivideBy(float64(len(texts))), store.average("loc-1"))
}

func TestScoreAndRecordPropagatesFoldInFailure(t *testing.T) {
	store := newFakeStore()
	store.foldErr = errors.New("db down")
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, store, nil)

	_, err := svc.ScoreAndRecord(context.Background(), nil, "bumpy road", "loc-1", "user-1")
	assert.Error(t, err)
}

func TestScoreAndRecordPublishes(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	svc := newTestService(&fakeDetector{}, &fakeJudge{raw: judgeRaw}, store, pub)

	report, err := svc.ScoreAndRecord(context.Background(), nil, "bumpy road", "loc-1", "user-1")
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	msg, ok := pub.messages[0].(ScoredReport)
	require.True(t, ok)
	assert.Equal(t, report.Seq, msg.Report.Seq)
}

func TestScoreAndRecordBlobFailureStillRecords(t *testing.T) {
	store := newFakeStore()
	d := &fakeDetector{detections: []models.Detection{{Class: models.ClassPothole, Confidence: 0.9}}}
	svc := NewService(vision.NewEstimator(d), &fakeJudge{raw: judgeRaw}, store, &fakeBlobs{err: errors.New("disk full")}, nil)

	images := []models.Image{{Data: []byte{0x01}, MimeType: "image/jpeg"}}
	report, err := svc.ScoreAndRecord(context.Background(), images, "", "loc-1", "user-1")
	require.NoError(t, err)
	assert.Empty(t, report.ImageRefs)
	assert.Len(t, store.saved, 1)
}
