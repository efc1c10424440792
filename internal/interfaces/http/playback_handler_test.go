package http

import (
	"context"
	"testing"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"go.uber.org/zap"
)

type fakeProgressUseCase struct {
	rows    map[string]*domain.LessonProgressModel
	reports []*domain.ProgressReport
}

func (f *fakeProgressUseCase) ReportProgress(ctx context.Context, learner *domain.LearnerModel, report *domain.ProgressReport) (*domain.LessonProgressModel, error) {
	f.reports = append(f.reports, report)
	row, ok := f.rows[report.LessonID]
	if !ok {
		row = &domain.LessonProgressModel{
			LearnerID:       learner.ID,
			LessonID:        report.LessonID,
			DurationSeconds: report.VideoDuration,
		}
		f.rows[report.LessonID] = row
	}
	if report.MaxReached > row.FurthestSeconds {
		row.FurthestSeconds = report.MaxReached
	}
	return row, nil
}

func (f *fakeProgressUseCase) GetLearnerProgress(ctx context.Context, learner *domain.LearnerModel) ([]*domain.LessonProgressModel, error) {
	var result []*domain.LessonProgressModel
	for _, row := range f.rows {
		result = append(result, row)
	}
	return result, nil
}

func (f *fakeProgressUseCase) GetLessonProgress(ctx context.Context, learner *domain.LearnerModel, lessonID string) (*domain.LessonProgressModel, error) {
	return f.rows[lessonID], nil
}

func newFeedSession(usecase domain.ProgressUseCase) *feedSession {
	feed := NewPlaybackFeed(usecase, nil, zap.NewNop(), time.Hour, 2, 0.5)
	return feed.newSession(&domain.LearnerModel{ID: "learner-1"})
}

// A learner who watched up to 500s in an earlier session reconnects. Seeks
// inside the already-watched footage must pass through unclamped.
func TestPlaybackResumedSessionSeekWithinWatched(t *testing.T) {
	usecase := &fakeProgressUseCase{rows: map[string]*domain.LessonProgressModel{
		"lesson-1": {LearnerID: "learner-1", LessonID: "lesson-1", FurthestSeconds: 500, DurationSeconds: 900},
	}}
	session := newFeedSession(usecase)

	ack := session.handleEvent(context.Background(), &playbackEvent{
		Kind: eventSeek, LessonID: "lesson-1", PartID: "part-1", Position: 400, Duration: 900,
	})
	if ack.Position != 400 {
		t.Errorf("seek to 400 got clamped to %v with 500s already watched", ack.Position)
	}
	if ack.MaxWatched != 500 {
		t.Errorf("MaxWatched = %v, want the stored 500", ack.MaxWatched)
	}
}

func TestPlaybackResumedSessionSeekBeyondWatched(t *testing.T) {
	usecase := &fakeProgressUseCase{rows: map[string]*domain.LessonProgressModel{
		"lesson-1": {LearnerID: "learner-1", LessonID: "lesson-1", FurthestSeconds: 500, DurationSeconds: 900},
	}}
	session := newFeedSession(usecase)

	ack := session.handleEvent(context.Background(), &playbackEvent{
		Kind: eventSeek, LessonID: "lesson-1", PartID: "part-1", Position: 600, Duration: 900,
	})
	if ack.Position != 500 {
		t.Errorf("seek to 600 landed on %v, want clamp to the watched 500", ack.Position)
	}
}

func TestPlaybackFreshLessonStartsAtZero(t *testing.T) {
	usecase := &fakeProgressUseCase{rows: map[string]*domain.LessonProgressModel{}}
	session := newFeedSession(usecase)

	ack := session.handleEvent(context.Background(), &playbackEvent{
		Kind: eventSeek, LessonID: "lesson-9", PartID: "part-1", Position: 100, Duration: 900,
	})
	if ack.Position != 0 {
		t.Errorf("seek to 100 on an unwatched lesson landed on %v, want 0", ack.Position)
	}
}

// Samples after a resume continue from the stored furthest point, and the
// flushed report carries the advanced value.
func TestPlaybackResumedSessionSampleAndFlush(t *testing.T) {
	usecase := &fakeProgressUseCase{rows: map[string]*domain.LessonProgressModel{
		"lesson-1": {LearnerID: "learner-1", LessonID: "lesson-1", FurthestSeconds: 500, DurationSeconds: 900},
	}}
	session := newFeedSession(usecase)

	ack := session.handleEvent(context.Background(), &playbackEvent{
		Kind: eventSample, LessonID: "lesson-1", PartID: "part-1", Position: 501, Duration: 900,
	})
	if ack.MaxWatched != 501 {
		t.Fatalf("MaxWatched = %v, want 501", ack.MaxWatched)
	}

	session.handleEvent(context.Background(), &playbackEvent{
		Kind: eventFlush, LessonID: "lesson-1", PartID: "part-1", Duration: 900,
	})
	if len(usecase.reports) != 1 {
		t.Fatalf("flushed %d reports, want 1", len(usecase.reports))
	}
	if got := usecase.reports[0].MaxReached; got != 501 {
		t.Errorf("flushed MaxReached = %v, want 501", got)
	}
}
