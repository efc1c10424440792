package eligibility

import (
	"context"
	"fmt"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"go.elastic.co/apm"
)

// Rules gate thresholds, wired from config
type Rules struct {
	// CompletionProgress watch percent that marks a lesson completed
	CompletionProgress float64
	// MinExamProgress watch percent required before the exam can start
	MinExamProgress float64
	// MaxTriesPerCycle attempts allowed per cycle
	MaxTriesPerCycle int
}

// DefaultRules 90% completion and exam thresholds, 3 tries per cycle
func DefaultRules() Rules {
	return Rules{CompletionProgress: 90, MinExamProgress: 90, MaxTriesPerCycle: 3}
}

// EligibilityUseCaseImpl decides whether a lesson or its exam may be
// accessed: enrollment period, company assignment, prerequisite order and
// watch progress, in that order. The first failing rule wins.
type EligibilityUseCaseImpl struct {
	LessonRepository     domain.LessonRepository
	EnrollmentRepository domain.EnrollmentRepository
	ProgressRepository   domain.ProgressRepository
	AttemptRepository    domain.AttemptRepository
	Rules                Rules

	nowFunc func() time.Time
}

var _ domain.EligibilityUseCase = &EligibilityUseCaseImpl{}

// NewEligibilityUseCase ...
func NewEligibilityUseCase(
	LessonRepository domain.LessonRepository,
	EnrollmentRepository domain.EnrollmentRepository,
	ProgressRepository domain.ProgressRepository,
	AttemptRepository domain.AttemptRepository,
	Rules Rules,
) *EligibilityUseCaseImpl {
	return &EligibilityUseCaseImpl{
		LessonRepository:     LessonRepository,
		EnrollmentRepository: EnrollmentRepository,
		ProgressRepository:   ProgressRepository,
		AttemptRepository:    AttemptRepository,
		Rules:                Rules,
		nowFunc:              time.Now,
	}
}

// CanAccessLesson nil means the lesson is unlocked for the learner
func (eu *EligibilityUseCaseImpl) CanAccessLesson(ctx context.Context, learner *domain.LearnerModel, lessonID string) error {
	apmSpan, _ := apm.StartSpan(ctx, "EligibilityUseCaseImpl.CanAccessLesson", "service")
	defer apmSpan.End()

	lesson, err := eu.LessonRepository.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson == nil {
		return domain.ErrLessonNotFound
	}
	if err := eu.checkEnrollment(ctx, learner, lesson); err != nil {
		return err
	}
	return eu.checkPrerequisites(ctx, learner, lesson)
}

// CanStartExam lesson access plus progress threshold and cycle state
func (eu *EligibilityUseCaseImpl) CanStartExam(ctx context.Context, learner *domain.LearnerModel, lessonID string) error {
	apmSpan, _ := apm.StartSpan(ctx, "EligibilityUseCaseImpl.CanStartExam", "service")
	defer apmSpan.End()

	lesson, err := eu.LessonRepository.GetLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if lesson == nil {
		return domain.ErrLessonNotFound
	}
	if !lesson.HasExam {
		return domain.ErrNotEnoughQuestions
	}
	if err := eu.checkEnrollment(ctx, learner, lesson); err != nil {
		return err
	}
	if err := eu.checkPrerequisites(ctx, learner, lesson); err != nil {
		return err
	}

	percent, err := eu.lessonPercent(ctx, learner.ID, lessonID)
	if err != nil {
		return err
	}
	if percent < eu.Rules.MinExamProgress {
		return domain.ErrProgressNotEnough
	}

	passed, err := eu.AttemptRepository.HasPassed(ctx, learner.ID, lessonID)
	if err != nil {
		return err
	}
	if passed {
		return domain.ErrAlreadyPassed
	}

	cycle, err := eu.AttemptRepository.GetLatestCycle(ctx, learner.ID, lessonID)
	if err != nil {
		return err
	}
	if cycle != nil && cycle.Closed() && !cycle.Passed {
		// exhausted without a pass; only a retake opens a new cycle
		return domain.ErrAttemptLimit
	}
	return nil
}

// LessonStatus aggregate view: progress, lock state, blockers, remaining tries
func (eu *EligibilityUseCaseImpl) LessonStatus(ctx context.Context, learner *domain.LearnerModel, lessonID string) (*domain.LessonStatusModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "EligibilityUseCaseImpl.LessonStatus", "service")
	defer apmSpan.End()

	lesson, err := eu.LessonRepository.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, domain.ErrLessonNotFound
	}

	status := &domain.LessonStatusModel{LessonID: lessonID, Blockers: []string{}}

	percent, err := eu.lessonPercent(ctx, learner.ID, lessonID)
	if err != nil {
		return nil, err
	}
	status.Percent = percent

	if err := eu.CanAccessLesson(ctx, learner, lessonID); err != nil {
		engineErr, ok := err.(*domain.EngineError)
		if !ok {
			return nil, err
		}
		status.Blockers = append(status.Blockers, engineErr.Code)
	}
	status.Unlocked = len(status.Blockers) == 0

	status.RemainingTries, err = eu.remainingTries(ctx, learner.ID, lessonID)
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (eu *EligibilityUseCaseImpl) checkEnrollment(ctx context.Context, learner *domain.LearnerModel, lesson *domain.LessonModel) error {
	enrollment, err := eu.EnrollmentRepository.GetEnrollment(ctx, learner.ID)
	if err != nil {
		return err
	}
	if enrollment == nil || !enrollment.ActiveAt(eu.nowFunc()) {
		return domain.ErrPeriodNotActive
	}

	assigned, err := eu.LessonRepository.IsSubjectAssigned(ctx, enrollment.CompanyID, lesson.SubjectID)
	if err != nil {
		return err
	}
	if !assigned {
		return domain.ErrNotAssigned
	}

	active, err := eu.LessonRepository.IsLessonActive(ctx, enrollment.CompanyID, lesson.ID)
	if err != nil {
		return err
	}
	if !active {
		return domain.ErrLessonNotActive
	}
	return nil
}

// checkPrerequisites every lesson with a smaller order in the subject must be
// completed: watch progress at the completion threshold and, when the lesson
// carries an exam, that exam passed. Reports the first blocking lesson.
func (eu *EligibilityUseCaseImpl) checkPrerequisites(ctx context.Context, learner *domain.LearnerModel, lesson *domain.LessonModel) error {
	siblings, err := eu.LessonRepository.GetSubjectLessons(ctx, lesson.SubjectID)
	if err != nil {
		return err
	}
	for _, prior := range siblings {
		if prior.Order >= lesson.Order {
			continue
		}
		percent, err := eu.lessonPercent(ctx, learner.ID, prior.ID)
		if err != nil {
			return err
		}
		if percent < eu.Rules.CompletionProgress {
			return blockedBy(prior)
		}
		if prior.HasExam {
			passed, err := eu.AttemptRepository.HasPassed(ctx, learner.ID, prior.ID)
			if err != nil {
				return err
			}
			if !passed {
				return blockedBy(prior)
			}
		}
	}
	return nil
}

func (eu *EligibilityUseCaseImpl) lessonPercent(ctx context.Context, learnerID, lessonID string) (float64, error) {
	row, err := eu.ProgressRepository.GetProgress(ctx, learnerID, lessonID)
	if err != nil {
		return 0, err
	}
	if row == nil {
		return 0, nil
	}
	return row.Percent, nil
}

func (eu *EligibilityUseCaseImpl) remainingTries(ctx context.Context, learnerID, lessonID string) (int, error) {
	cycle, err := eu.AttemptRepository.GetLatestCycle(ctx, learnerID, lessonID)
	if err != nil {
		return 0, err
	}
	if cycle == nil {
		return eu.Rules.MaxTriesPerCycle, nil
	}
	if cycle.Closed() {
		return 0, nil
	}
	remaining := eu.Rules.MaxTriesPerCycle - cycle.TryIndex
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func blockedBy(prior *domain.LessonModel) error {
	return domain.NewEngineError(domain.ErrLessonLocked.Code,
		fmt.Sprintf("Lesson is locked until lesson %q is completed", prior.ID))
}
