package api

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"journal-risk-eval/backend/internal/domaintrust"
	"journal-risk-eval/backend/internal/match"
	"journal-risk-eval/backend/internal/scoring"
	"journal-risk-eval/backend/internal/store"
	"journal-risk-eval/backend/internal/util"
)

const assessmentThrottle = 500 * time.Millisecond

// assessmentJob tracks the state of a running batch.
type assessmentJob struct {
	id        string
	cancel    context.CancelFunc
	startedAt time.Time
	total     int
}

type bundleOutcome struct {
	row              store.Assessment
	report           scoring.Result
	analysis         *domaintrust.Analysis
	analysisDuration time.Duration
	totalDuration    time.Duration
	err              error
}

// startBatch launches a new asynchronous batch job. The caller must hold
// s.jobMu prior to invoking this function.
func (s *Server) startBatch(items []scoring.Bundle) (*assessmentJob, error) {
	if s.activeJob != nil {
		return nil, errors.New("batch assessment already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &assessmentJob{
		id:        uuid.NewString(),
		cancel:    cancel,
		startedAt: time.Now().UTC(),
		total:     len(items),
	}

	s.activeJob = job
	go s.runBatch(ctx, job, items)
	return job, nil
}

// cancelBatch aborts the active job if present.
func (s *Server) cancelBatch() {
	if s.activeJob == nil {
		return
	}
	s.activeJob.cancel()
}

func (s *Server) runBatch(ctx context.Context, job *assessmentJob, items []scoring.Bundle) {
	defer func() {
		s.jobMu.Lock()
		s.activeJob = nil
		s.jobMu.Unlock()
	}()

	logrus.WithFields(logrus.Fields{
		"job":   job.id,
		"total": job.total,
	}).Info("batch assessment started")

	s.notifier.Broadcast(AssessmentEvent{
		Type:    "started",
		JobID:   job.id,
		Total:   job.total,
		Message: "batch assessment started",
	})

	workerCount := determineWorkerCount()
	logrus.WithFields(logrus.Fields{
		"job":     job.id,
		"workers": workerCount,
	}).Info("assessment worker pool configured")

	taskCh := make(chan scoring.Bundle, workerCount*4)
	resultCh := make(chan bundleOutcome, workerCount*4)

	var (
		lastEmit     time.Time
		hasPending   bool
		pendingEvent AssessmentEvent
	)

	flush := func(force bool) {
		if !hasPending {
			return
		}
		if !force && !lastEmit.IsZero() && time.Since(lastEmit) < assessmentThrottle {
			return
		}
		ev := pendingEvent
		s.notifier.Broadcast(ev)
		lastEmit = time.Now()
		logrus.WithFields(logrus.Fields{
			"job":       job.id,
			"type":      ev.Type,
			"processed": ev.Processed,
			"total":     job.total,
		}).Debug("broadcast assessment event")
		hasPending = false
	}

	var workerWG sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		workerWG.Add(1)
		go func() {
			defer workerWG.Done()
			for bundle := range taskCh {
				select {
				case <-ctx.Done():
					return
				default:
				}
				res := s.assessBundle(ctx, bundle)
				select {
				case resultCh <- res:
				case <-ctx.Done():
					return
				}
				if res.err != nil {
					return
				}
			}
		}()
	}

	go func() {
		workerWG.Wait()
		close(resultCh)
	}()

	go func() {
		defer close(taskCh)
		for _, bundle := range items {
			select {
			case taskCh <- bundle:
			case <-ctx.Done():
				return
			}
		}
	}()

	processed := 0

collect:
	for {
		select {
		case <-ctx.Done():
			flush(true)
			s.notifier.Broadcast(AssessmentEvent{
				Type:      "cancelled",
				JobID:     job.id,
				Total:     job.total,
				Processed: processed,
				Message:   "batch assessment cancelled",
			})
			logrus.WithField("job", job.id).Warn("batch assessment cancelled via context")
			return
		case res, ok := <-resultCh:
			if !ok {
				break collect
			}
			if res.err != nil {
				flush(true)
				s.notifier.Broadcast(AssessmentEvent{
					Type:    "error",
					JobID:   job.id,
					Message: fmt.Sprintf("assess bundle: %v", res.err),
				})
				logrus.WithError(res.err).Error("assess bundle")
				job.cancel()
				return
			}

			saveStart := time.Now()
			row := res.row
			if err := s.db.SaveAssessment(&row); err != nil {
				flush(true)
				s.notifier.Broadcast(AssessmentEvent{
					Type:    "error",
					JobID:   job.id,
					Message: fmt.Sprintf("save assessment: %v", err),
				})
				logrus.WithError(err).Error("save assessment")
				job.cancel()
				return
			}
			saveDuration := time.Since(saveStart)

			dto := FromModel(row)
			processed++

			pendingEvent = AssessmentEvent{
				Type:       "assessment",
				JobID:      job.id,
				Total:      job.total,
				Processed:  processed,
				Assessment: &dto,
			}
			hasPending = true
			logrus.WithFields(logrus.Fields{
				"job":           job.id,
				"domain":        row.Domain,
				"analysis_ms":   res.analysisDuration.Milliseconds(),
				"save_ms":       saveDuration.Milliseconds(),
				"processing_ms": row.ProcessingTimeMs,
				"total_ms":      (res.totalDuration + saveDuration).Milliseconds(),
			}).Debug("assessment timings")
			flush(false)
		}
	}

	job.cancel()
	flush(true)

	duration := time.Since(job.startedAt).Round(time.Millisecond)
	s.notifier.Broadcast(AssessmentEvent{
		Type:      "complete",
		JobID:     job.id,
		Total:     job.total,
		Processed: processed,
		Message:   fmt.Sprintf("batch assessment finished in %s", duration),
	})
	logrus.WithFields(logrus.Fields{
		"job":       job.id,
		"processed": processed,
		"duration":  duration,
	}).Info("batch assessment completed")
}

func determineWorkerCount() int {
	workers := runtime.NumCPU()
	if workers < 2 {
		workers = 2
	}
	if workers > 12 {
		workers = 12
	}
	return workers
}

// assessBundle runs the full pipeline for one bundle: domain analysis when
// an analyzer is wired, deterministic scoring, and the persisted row. A
// failed analysis falls back to scoring without the domain dimension.
func (s *Server) assessBundle(ctx context.Context, bundle scoring.Bundle) bundleOutcome {
	out := bundleOutcome{}

	if err := ctx.Err(); err != nil {
		out.err = err
		return out
	}

	start := time.Now()
	timer := util.StartTimer()

	name, err := resolveBundleDomain(bundle)
	if err != nil {
		out.err = err
		return out
	}
	if strings.TrimSpace(bundle.Domain) == "" {
		bundle.Domain = name.Host
	}

	var analysis *domaintrust.Analysis
	if s.analyzer != nil {
		analysisStart := time.Now()
		analysis, err = s.analyzer.Analyze(ctx, name.Host)
		out.analysisDuration = time.Since(analysisStart)
		if err != nil {
			if ctx.Err() != nil {
				out.err = ctx.Err()
				return out
			}
			logrus.WithError(err).WithField("domain", name.Host).Warn("domain analysis failed; scoring without domain dimension")
			analysis = nil
		}
	}

	report := s.engine.Assess(ctx, bundle, analysis)

	out.row = buildAssessment(bundle, name, analysis, report, timer.ElapsedMs())
	out.report = report
	out.analysis = analysis
	out.totalDuration = time.Since(start)
	return out
}

// resolveBundleDomain extracts the host to assess from the bundle, falling
// back to the URL when no explicit domain was supplied.
func resolveBundleDomain(bundle scoring.Bundle) (match.Name, error) {
	raw := strings.TrimSpace(bundle.Domain)
	if raw == "" {
		raw = strings.TrimSpace(bundle.URL)
	}
	return match.NormalizeDomain(raw)
}

func buildAssessment(bundle scoring.Bundle, name match.Name, analysis *domaintrust.Analysis, report scoring.Result, elapsedMs int64) store.Assessment {
	row := store.Assessment{
		ID:               uuid.NewString(),
		URL:              strings.TrimSpace(bundle.URL),
		Domain:           name.Host,
		Title:            strings.TrimSpace(bundle.Title),
		OverallScore:     report.OverallScore,
		RiskLevel:        string(report.RiskLevel),
		Confidence:       report.Confidence,
		Recommendation:   report.Recommendation,
		CriticalCount:    len(report.CriticalIssues),
		WarningCount:     len(report.WarningFlags),
		PositiveCount:    len(report.PositiveIndicators),
		ProcessingTimeMs: elapsedMs,
	}
	if analysis != nil {
		row.DomainRiskScore = analysis.RiskScore
	}
	if report.ML != nil {
		score := report.ML.PredatoryScore
		row.MLScore = &score
		row.MLLabel = report.ML.EnsemblePrediction
	}
	row.SetResult(report)
	return row
}
