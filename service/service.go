// Package service wires the two estimators, fusion and persistence into the
// report-scoring pipeline exposed to the HTTP layer.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/apex/log"

	"road-condition-service/fusion"
	"road-condition-service/judge"
	"road-condition-service/metrics"
	"road-condition-service/models"
	"road-condition-service/parser"
	"road-condition-service/storage"
	"road-condition-service/vision"
)

// ErrEmptyReport is returned when a submission carries neither images nor
// text. Rejected before any estimator runs.
var ErrEmptyReport = errors.New("report has no images and no text")

// Store is the slice of the persistence layer the pipeline needs.
type Store interface {
	SaveReport(ctx context.Context, report *models.Report) (int, error)
	FoldInLocation(ctx context.Context, locationID string, fused models.ScoreVector) error
}

// Publisher fans a scored report out to downstream consumers.
type Publisher interface {
	Publish(message interface{}) error
}

// PreviewResult is the response of the no-persistence scoring path. Judge is
// nil when that estimator was unavailable.
type PreviewResult struct {
	Vision     *vision.Result      `json:"vision"`
	Judge      *models.ScoreVector `json:"judge,omitempty"`
	Detections []models.Detection  `json:"detections"`
	Summary    map[string]int      `json:"summary"`
}

// ScoredReport is the message published after a report is recorded.
type ScoredReport struct {
	Report     models.Report      `json:"report"`
	Detections []models.Detection `json:"detections"`
	Summary    map[string]int     `json:"summary"`
}

// Service runs the scoring pipeline.
type Service struct {
	vision    *vision.Estimator
	judge     judge.Judge
	store     Store
	blobs     storage.BlobStore
	publisher Publisher
}

// NewService creates the pipeline service. publisher may be nil; fanout is
// then skipped.
func NewService(visionEst *vision.Estimator, j judge.Judge, store Store, blobs storage.BlobStore, publisher Publisher) *Service {
	return &Service{
		vision:    visionEst,
		judge:     j,
		store:     store,
		blobs:     blobs,
		publisher: publisher,
	}
}

// runEstimators runs the vision and judge estimators concurrently. The two
// are independent; fusion needs both to have finished (or failed). The judge
// result is nil when the call failed or its output did not parse; that
// estimator is then "not run" for this report, never zero.
func (s *Service) runEstimators(ctx context.Context, images []models.Image, textDescr string) (*vision.Result, *models.ScoreVector) {
	var (
		wg          sync.WaitGroup
		visionRes   *vision.Result
		judgeScores *models.ScoreVector
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		visionRes = s.vision.Score(ctx, images, textDescr)
		metrics.EstimatorDurationSeconds.WithLabelValues("vision").Observe(time.Since(start).Seconds())
		if visionRes.FailedImages > 0 {
			metrics.ImagesDroppedTotal.Add(float64(visionRes.FailedImages))
		}
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		raw, err := s.judge.Assess(ctx, images, textDescr)
		metrics.EstimatorDurationSeconds.WithLabelValues("judge").Observe(time.Since(start).Seconds())
		if err != nil {
			log.WithError(err).Error("Judge call failed, scoring without judge vector")
			metrics.JudgeUnavailableTotal.Inc()
			return
		}
		scores, err := parser.ParseScores(raw)
		if err != nil {
			log.WithError(err).Error("Judge returned unparseable output, scoring without judge vector")
			metrics.JudgeUnavailableTotal.Inc()
			return
		}
		judgeScores = scores
	}()
	wg.Wait()

	return visionRes, judgeScores
}

// ScoreReport scores a submission without persisting anything. Used by the
// preview upload path.
func (s *Service) ScoreReport(ctx context.Context, images []models.Image, textDescr string) (*PreviewResult, error) {
	if len(images) == 0 && textDescr == "" {
		return nil, ErrEmptyReport
	}

	visionRes, judgeScores := s.runEstimators(ctx, images, textDescr)

	return &PreviewResult{
		Vision:     visionRes,
		Judge:      judgeScores,
		Detections: visionRes.Detections,
		Summary:    visionRes.Summary,
	}, nil
}

// ScoreAndRecord runs the full pipeline: estimate, fuse, persist the report
// and fold it into the location aggregate. Returns the stored report.
func (s *Service) ScoreAndRecord(ctx context.Context, images []models.Image, textDescr, locationID, postedBy string) (*models.Report, error) {
	if len(images) == 0 && textDescr == "" {
		metrics.ReportsProcessedTotal.WithLabelValues("rejected").Inc()
		return nil, ErrEmptyReport
	}

	visionRes, judgeScores := s.runEstimators(ctx, images, textDescr)
	fused := fusion.Fuse(&visionRes.Scores, judgeScores)

	// Blob storage is best effort; a failed write loses the image file but
	// not the report scores.
	refs := make([]string, 0, len(images))
	for _, img := range images {
		ref, err := s.blobs.Store(img.Data, img.MimeType)
		if err != nil {
			log.WithError(err).Error("Failed to store report image")
			continue
		}
		refs = append(refs, ref)
	}

	report := &models.Report{
		PostedBy:     postedBy,
		LocationID:   locationID,
		TextDescr:    textDescr,
		ImageRefs:    refs,
		VisionScores: visionRes.Scores,
		JudgeScores:  judgeScores,
		FusedScores:  fused,
		CreatedAt:    time.Now(),
	}

	seq, err := s.store.SaveReport(ctx, report)
	if err != nil {
		metrics.ReportsProcessedTotal.WithLabelValues("persistence_error").Inc()
		return nil, err
	}
	report.Seq = seq

	if err := s.store.FoldInLocation(ctx, locationID, fused); err != nil {
		metrics.FoldInFailuresTotal.Inc()
		metrics.ReportsProcessedTotal.WithLabelValues("persistence_error").Inc()
		return nil, err
	}

	metrics.ReportsProcessedTotal.WithLabelValues("ok").Inc()
	s.publishScoredReport(report, visionRes)

	return report, nil
}

func (s *Service) publishScoredReport(report *models.Report, visionRes *vision.Result) {
	if s.publisher == nil {
		return
	}

	msg := ScoredReport{
		Report:     *report,
		Detections: visionRes.Detections,
		Summary:    visionRes.Summary,
	}
	if err := s.publisher.Publish(msg); err != nil {
		log.WithError(err).Errorf("Failed to publish scored report %d", report.Seq)
	} else {
		log.Infof("Published scored report %d for location %s", report.Seq, report.LocationID)
	}
}
