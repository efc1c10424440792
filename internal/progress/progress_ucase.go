package progress

import (
	"context"

	"github.com/athena-edu/learning-engine/internal/domain"
	"go.elastic.co/apm"
)

// ProgressUseCaseImpl ...
type ProgressUseCaseImpl struct {
	ProgressRepository domain.ProgressRepository
}

var _ domain.ProgressUseCase = &ProgressUseCaseImpl{}

// NewProgressUseCase ...
func NewProgressUseCase(
	ProgressRepository domain.ProgressRepository,
) *ProgressUseCaseImpl {
	return &ProgressUseCaseImpl{ProgressRepository}
}

// ReportProgress merge one watch-time report into the learner's record and
// return the updated row so callers can react without a second read.
// Reports are commutative and idempotent: the repository applies a monotone
// max, so duplicates, retries and concurrent tabs all converge to the true
// furthest point.
func (pu *ProgressUseCaseImpl) ReportProgress(ctx context.Context, learner *domain.LearnerModel, report *domain.ProgressReport) (*domain.LessonProgressModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.ReportProgress", "service")
	defer apmSpan.End()

	return pu.ProgressRepository.MergeProgress(ctx, learner.ID, report)
}

// GetLessonProgress fetch the stored row for one lesson, nil when the
// learner never reported on it
func (pu *ProgressUseCaseImpl) GetLessonProgress(ctx context.Context, learner *domain.LearnerModel, lessonID string) (*domain.LessonProgressModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.GetLessonProgress", "service")
	defer apmSpan.End()

	return pu.ProgressRepository.GetProgress(ctx, learner.ID, lessonID)
}

// GetLearnerProgress list watch progress for every lesson the learner touched
func (pu *ProgressUseCaseImpl) GetLearnerProgress(ctx context.Context, learner *domain.LearnerModel) ([]*domain.LessonProgressModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "ProgressUseCaseImpl.GetLearnerProgress", "service")
	defer apmSpan.End()

	return pu.ProgressRepository.GetProgressByLearner(ctx, learner.ID)
}
