package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"go.uber.org/zap"
)

// ReportSink receives coalesced progress reports
type ReportSink interface {
	SendReport(ctx context.Context, report *domain.ProgressReport) error
}

// ReportSinkFunc adapter to use plain functions as sinks
type ReportSinkFunc func(ctx context.Context, report *domain.ProgressReport) error

func (f ReportSinkFunc) SendReport(ctx context.Context, report *domain.ProgressReport) error {
	return f(ctx, report)
}

type reportKey struct {
	lessonID string
	partID   string
}

// deferFunc schedules fn after d and returns a cancel func. Swapped out in
// tests so the debounce window can be fired by hand.
type deferFunc func(d time.Duration, fn func()) (cancel func())

// Reporter coalesces frequent tracker updates into one report per debounce
// window. Accumulation keeps the max reached value per (lesson, part), so a
// burst of updates inside the window produces exactly one network report and
// re-sent values can never regress server state.
type Reporter struct {
	mu      sync.Mutex
	pending map[reportKey]*domain.ProgressReport
	cancel  func()

	window   time.Duration
	sink     ReportSink
	logger   *zap.Logger
	schedule deferFunc
}

// NewReporter create a reporter flushing into sink after window of quiet
func NewReporter(sink ReportSink, window time.Duration, logger *zap.Logger) *Reporter {
	return &Reporter{
		pending: make(map[reportKey]*domain.ProgressReport),
		window:  window,
		sink:    sink,
		logger:  logger,
		schedule: func(d time.Duration, fn func()) func() {
			timer := time.AfterFunc(d, fn)
			return func() { timer.Stop() }
		},
	}
}

// Update accumulate a tracker update and (re)arm the debounce timer
func (r *Reporter) Update(lessonID, partID string, maxReached, videoDuration float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := reportKey{lessonID, partID}
	if acc, ok := r.pending[key]; ok {
		if maxReached > acc.MaxReached {
			acc.MaxReached = maxReached
		}
		acc.VideoDuration = videoDuration
	} else {
		r.pending[key] = &domain.ProgressReport{
			LessonID:      lessonID,
			PartID:        partID,
			MaxReached:    maxReached,
			VideoDuration: videoDuration,
		}
	}

	if r.cancel != nil {
		r.cancel()
	}
	r.cancel = r.schedule(r.window, r.Flush)
}

// Flush send everything accumulated, best effort. Also called on teardown so
// the final state of a viewing session is at least attempted.
func (r *Reporter) Flush() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	batch := r.pending
	r.pending = make(map[reportKey]*domain.ProgressReport)
	r.mu.Unlock()

	for _, report := range batch {
		if err := r.sink.SendReport(context.Background(), report); err != nil {
			// delivery is not guaranteed; the monotone merge upstream makes
			// a lost report harmless once a later one lands
			r.logger.Warn("Dropped progress report",
				zap.String("lesson.id", report.LessonID),
				zap.String("lesson.part", report.PartID),
				zap.Float64("progress.max_reached", report.MaxReached),
				zap.Error(err),
			)
		}
	}
}

// PendingCount reports currently accumulated and not yet flushed
func (r *Reporter) PendingCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
