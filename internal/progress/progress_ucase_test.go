package progress

import (
	"context"
	"testing"

	"github.com/athena-edu/learning-engine/internal/domain"
)

// memoryProgressRepo implements the repository contract in memory: a
// monotone max-merge keyed by (learner, lesson), same rule the SQL layer
// applies with GREATEST.
type memoryProgressRepo struct {
	rows map[string]*domain.LessonProgressModel
}

func newMemoryProgressRepo() *memoryProgressRepo {
	return &memoryProgressRepo{rows: map[string]*domain.LessonProgressModel{}}
}

func (m *memoryProgressRepo) key(learnerID, lessonID string) string {
	return learnerID + "|" + lessonID
}

func (m *memoryProgressRepo) MergeProgress(ctx context.Context, learnerID string, report *domain.ProgressReport) (*domain.LessonProgressModel, error) {
	row, ok := m.rows[m.key(learnerID, report.LessonID)]
	if !ok {
		row = &domain.LessonProgressModel{LearnerID: learnerID, LessonID: report.LessonID}
		m.rows[m.key(learnerID, report.LessonID)] = row
	}
	if report.MaxReached > row.FurthestSeconds {
		row.FurthestSeconds = report.MaxReached
	}
	row.DurationSeconds = report.VideoDuration
	row.Percent = domain.ProgressPercent(row.FurthestSeconds, row.DurationSeconds)
	copied := *row
	return &copied, nil
}

func (m *memoryProgressRepo) GetProgress(ctx context.Context, learnerID, lessonID string) (*domain.LessonProgressModel, error) {
	row, ok := m.rows[m.key(learnerID, lessonID)]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (m *memoryProgressRepo) GetProgressByLearner(ctx context.Context, learnerID string) ([]*domain.LessonProgressModel, error) {
	var result []*domain.LessonProgressModel
	for _, row := range m.rows {
		if row.LearnerID == learnerID {
			copied := *row
			result = append(result, &copied)
		}
	}
	return result, nil
}

var learner = &domain.LearnerModel{ID: "learner-1"}

func report(lessonID string, maxReached, duration float64) *domain.ProgressReport {
	return &domain.ProgressReport{LessonID: lessonID, MaxReached: maxReached, VideoDuration: duration}
}

func TestReportProgressMonotonic(t *testing.T) {
	usecase := NewProgressUseCase(newMemoryProgressRepo())
	ctx := context.Background()

	// out of order, duplicated; stored value must equal the max ever reported
	sequence := []float64{10, 40, 25, 40, 5, 39.9}
	for _, v := range sequence {
		if _, err := usecase.ReportProgress(ctx, learner, report("lesson-1", v, 100)); err != nil {
			t.Fatalf("ReportProgress() error = %v", err)
		}
	}

	row, _ := usecase.ProgressRepository.GetProgress(ctx, learner.ID, "lesson-1")
	if row.FurthestSeconds != 40 {
		t.Errorf("FurthestSeconds = %v, want 40", row.FurthestSeconds)
	}
	if row.Percent != 40 {
		t.Errorf("Percent = %v, want 40", row.Percent)
	}
}

func TestReportProgressIdempotent(t *testing.T) {
	usecase := NewProgressUseCase(newMemoryProgressRepo())
	ctx := context.Background()

	first, err := usecase.ReportProgress(ctx, learner, report("lesson-1", 30, 100))
	if err != nil {
		t.Fatalf("ReportProgress() error = %v", err)
	}
	second, err := usecase.ReportProgress(ctx, learner, report("lesson-1", 30, 100))
	if err != nil {
		t.Fatalf("ReportProgress() error = %v", err)
	}
	if first.FurthestSeconds != second.FurthestSeconds || first.Percent != second.Percent {
		t.Errorf("duplicate report changed state: %+v vs %+v", first, second)
	}
}

func TestProgressPercentBounds(t *testing.T) {
	tests := []struct {
		name     string
		furthest float64
		duration float64
		want     float64
	}{
		{name: "zero duration", furthest: 50, duration: 0, want: 0},
		{name: "negative duration", furthest: 50, duration: -1, want: 0},
		{name: "overshoot capped", furthest: 120, duration: 100, want: 100},
		{name: "negative furthest floored", furthest: -5, duration: 100, want: 0},
		{name: "exact end", furthest: 100, duration: 100, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.ProgressPercent(tt.furthest, tt.duration); got != tt.want {
				t.Errorf("ProgressPercent(%v, %v) = %v, want %v", tt.furthest, tt.duration, got, tt.want)
			}
		})
	}
}

func TestGetLearnerProgress(t *testing.T) {
	usecase := NewProgressUseCase(newMemoryProgressRepo())
	ctx := context.Background()

	usecase.ReportProgress(ctx, learner, report("lesson-1", 90, 100))
	usecase.ReportProgress(ctx, learner, report("lesson-2", 10, 200))
	usecase.ReportProgress(ctx, &domain.LearnerModel{ID: "other"}, report("lesson-1", 50, 100))

	rows, err := usecase.GetLearnerProgress(ctx, learner)
	if err != nil {
		t.Fatalf("GetLearnerProgress() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("got %d rows, want 2 (ownership: other learners' rows excluded)", len(rows))
	}
}
