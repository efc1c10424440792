package domain

import "context"

// ProgressReport incoming watch-time report. Reports may arrive out of
// order or duplicated; the store must converge to the maximum either way.
type ProgressReport struct {
	LessonID        string  `json:"lesson_id" validate:"required"`
	PartID          string  `json:"part_id"`
	MaxReached      float64 `json:"max_reached_seconds" validate:"min=0"`
	VideoDuration   float64 `json:"video_duration_seconds" validate:"min=0"`
}

type ProgressRepository interface {
	// MergeProgress apply a monotone max-merge on the stored row,
	// creating it on first report. Never regresses the stored value.
	MergeProgress(ctx context.Context, learnerID string, report *ProgressReport) (*LessonProgressModel, error)
	GetProgress(ctx context.Context, learnerID, lessonID string) (*LessonProgressModel, error)
	GetProgressByLearner(ctx context.Context, learnerID string) ([]*LessonProgressModel, error)
}

type ProgressUseCase interface {
	ReportProgress(ctx context.Context, learner *LearnerModel, report *ProgressReport) (*LessonProgressModel, error)
	GetLearnerProgress(ctx context.Context, learner *LearnerModel) ([]*LessonProgressModel, error)
	// GetLessonProgress single-lesson row, nil when nothing was reported yet
	GetLessonProgress(ctx context.Context, learner *LearnerModel, lessonID string) (*LessonProgressModel, error)
}
