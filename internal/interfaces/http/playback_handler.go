package http

import (
	"context"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/auth"
	"github.com/athena-edu/learning-engine/internal/tracker"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// playback event kinds
const (
	eventSample   = "sample"
	eventSeek     = "seek"
	eventSeekDone = "seek_done"
	eventFlush    = "flush"
)

// playbackEvent inbound playback message
type playbackEvent struct {
	Kind     string  `json:"kind"`
	LessonID string  `json:"lesson_id"`
	PartID   string  `json:"part_id"`
	Position float64 `json:"position_seconds"`
	Duration float64 `json:"duration_seconds"`
}

// playbackAck reply carrying the effective position after clamping
type playbackAck struct {
	Kind       string  `json:"kind"`
	LessonID   string  `json:"lesson_id"`
	PartID     string  `json:"part_id"`
	Position   float64 `json:"position_seconds"`
	MaxWatched float64 `json:"max_watched_seconds"`
	Percent    float64 `json:"progress_percent"`
}

// PlaybackFeed live playback event stream. Each connection keeps one tracker
// per lesson part and a debounced reporter, so a burst of samples turns into
// a single merge on the store.
type PlaybackFeed struct {
	progressUseCase  domain.ProgressUseCase
	jwtUtil          *auth.JWTUtil
	logger           *zap.Logger
	window           time.Duration
	forwardTolerance float64
	seekEpsilon      float64
}

func NewPlaybackFeed(
	ProgressUseCase domain.ProgressUseCase,
	JWTUtil *auth.JWTUtil,
	Logger *zap.Logger,
	window time.Duration,
	forwardTolerance, seekEpsilon float64,
) *PlaybackFeed {
	return &PlaybackFeed{
		progressUseCase:  ProgressUseCase,
		jwtUtil:          JWTUtil,
		logger:           Logger,
		window:           window,
		forwardTolerance: forwardTolerance,
		seekEpsilon:      seekEpsilon,
	}
}

type feedKey struct {
	lessonID string
	partID   string
}

// feedSession per-connection playback state: one tracker per lesson part
// plus the shared debounced reporter.
type feedSession struct {
	feed     *PlaybackFeed
	learner  *domain.LearnerModel
	reporter *tracker.Reporter
	trackers map[feedKey]*tracker.PlaybackTracker
}

func (pf *PlaybackFeed) newSession(learner *domain.LearnerModel) *feedSession {
	sink := tracker.ReportSinkFunc(func(ctx context.Context, report *domain.ProgressReport) error {
		_, err := pf.progressUseCase.ReportProgress(ctx, learner, report)
		return err
	})
	return &feedSession{
		feed:     pf,
		learner:  learner,
		reporter: tracker.NewReporter(sink, pf.window, pf.logger),
		trackers: make(map[feedKey]*tracker.PlaybackTracker),
	}
}

// trackerFor lazily creates the part tracker, seeded from the stored
// progress row. Without the seed a learner who resumes a half-watched
// video would get every seek inside already-watched footage clamped back
// to zero. A failed lookup degrades to a zero seed; the monotone merge
// keeps the store itself safe either way.
func (s *feedSession) trackerFor(ctx context.Context, event *playbackEvent) *tracker.PlaybackTracker {
	key := feedKey{event.LessonID, event.PartID}
	if t, ok := s.trackers[key]; ok {
		return t
	}

	var seed float64
	row, err := s.feed.progressUseCase.GetLessonProgress(ctx, s.learner, event.LessonID)
	if err != nil {
		s.feed.logger.Warn("failed to load stored progress, tracker starts at zero",
			zap.Error(err),
			zap.String("lesson_id", event.LessonID),
			zap.String("learner_id", s.learner.ID))
	} else if row != nil {
		seed = row.FurthestSeconds
	}

	t := tracker.NewPlaybackTracker(seed, event.Duration,
		tracker.WithForwardTolerance(s.feed.forwardTolerance),
		tracker.WithSeekEpsilon(s.feed.seekEpsilon),
	)
	s.trackers[key] = t
	return t
}

// handleEvent apply one playback event, returning the ack to send back.
// Unknown kinds return nil and are ignored.
func (s *feedSession) handleEvent(ctx context.Context, event *playbackEvent) *playbackAck {
	t := s.trackerFor(ctx, event)

	position := event.Position
	switch event.Kind {
	case eventSample:
		if t.Sample(event.Position, event.Duration) {
			s.reporter.Update(event.LessonID, event.PartID, t.MaxWatched(), event.Duration)
		}
	case eventSeek:
		position = t.RequestSeek(event.Position)
	case eventSeekDone:
		t.SeekCompleted()
	case eventFlush:
		s.reporter.Flush()
	default:
		return nil
	}

	return &playbackAck{
		Kind:       event.Kind,
		LessonID:   event.LessonID,
		PartID:     event.PartID,
		Position:   position,
		MaxWatched: t.MaxWatched(),
		Percent:    t.Percent(),
	}
}

// HandleFeed per-connection playback loop
func (pf *PlaybackFeed) HandleFeed(c echo.Context, conn *websocket.Conn) error {
	session := pf.newSession(claimedLearner(pf.jwtUtil, c))
	defer session.reporter.Flush()

	ctx := c.Request().Context()
	for {
		event := new(playbackEvent)
		if err := conn.ReadJSON(event); err != nil {
			return err
		}

		ack := session.handleEvent(ctx, event)
		if ack == nil {
			continue
		}
		if err := conn.WriteJSON(ack); err != nil {
			return err
		}
	}
}
