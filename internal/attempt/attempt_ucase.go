package attempt

import (
	"context"
	"math/rand"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/uuid"
	"github.com/athena-edu/learning-engine/internal/scoring"
	"go.elastic.co/apm"
)

// Policy attempt lifecycle tunables, wired from config
type Policy struct {
	MaxTriesPerCycle int
	QuestionCount    int
	MinExamProgress  float64
}

// DefaultPolicy 3 tries per cycle, 10 questions, 90% progress for a retake
func DefaultPolicy() Policy {
	return Policy{MaxTriesPerCycle: 3, QuestionCount: 10, MinExamProgress: 90}
}

// AttemptUseCaseImpl drives the per-lesson exam state machine:
// NoActiveAttempt -> AttemptInProgress -> AttemptSubmitted. Tries are grouped
// in cycles; a cycle closes on a pass or when its tries run out, and only a
// retake opens the next one.
type AttemptUseCaseImpl struct {
	Eligibility        domain.EligibilityUseCase
	AttemptRepository  domain.AttemptRepository
	QuestionRepository domain.QuestionRepository
	ProgressRepository domain.ProgressRepository
	LessonRepository   domain.LessonRepository
	Scorer             *scoring.Engine
	UUIDGenerator      uuid.Generator
	Policy             Policy

	nowFunc     func() time.Time
	shuffleFunc func(n int, swap func(i, j int))
}

var _ domain.AttemptUseCase = &AttemptUseCaseImpl{}

// NewAttemptUseCase ...
func NewAttemptUseCase(
	Eligibility domain.EligibilityUseCase,
	AttemptRepository domain.AttemptRepository,
	QuestionRepository domain.QuestionRepository,
	ProgressRepository domain.ProgressRepository,
	LessonRepository domain.LessonRepository,
	Scorer *scoring.Engine,
	UUIDGenerator uuid.Generator,
	Policy Policy,
) *AttemptUseCaseImpl {
	return &AttemptUseCaseImpl{
		Eligibility:        Eligibility,
		AttemptRepository:  AttemptRepository,
		QuestionRepository: QuestionRepository,
		ProgressRepository: ProgressRepository,
		LessonRepository:   LessonRepository,
		Scorer:             Scorer,
		UUIDGenerator:      UUIDGenerator,
		Policy:             Policy,
		nowFunc:            time.Now,
		shuffleFunc:        rand.Shuffle,
	}
}

// Start open a new attempt in the current cycle, creating the first cycle on
// demand. The returned question set never contains answer keys.
func (au *AttemptUseCaseImpl) Start(ctx context.Context, learner *domain.LearnerModel, lessonID string) (*domain.StartedExam, error) {
	apmSpan, _ := apm.StartSpan(ctx, "AttemptUseCaseImpl.Start", "service")
	defer apmSpan.End()

	if err := au.Eligibility.CanStartExam(ctx, learner, lessonID); err != nil {
		return nil, err
	}

	repo := au.AttemptRepository
	cycle, err := repo.GetLatestCycle(ctx, learner.ID, lessonID)
	if err != nil {
		return nil, err
	}
	switch {
	case cycle == nil:
		cycle = &domain.AttemptCycleModel{LearnerID: learner.ID, LessonID: lessonID, Number: 1}
		if cycle.ID, err = au.UUIDGenerator.Generate(); err != nil {
			return nil, err
		}
		if err := repo.CreateCycle(ctx, cycle); err != nil {
			return nil, err
		}
	case cycle.Closed():
		// the gate rejects closed cycles; a racing retake could still
		// land here, treat it the same way
		return nil, domain.ErrAttemptLimit
	default:
		open, err := repo.GetOpenAttempt(ctx, cycle.ID)
		if err != nil {
			return nil, err
		}
		if open != nil {
			return nil, domain.ErrAttemptInProgress
		}
		if cycle.TryIndex >= au.Policy.MaxTriesPerCycle {
			return nil, domain.ErrAttemptLimit
		}
	}

	if err := repo.BumpTry(ctx, cycle.ID); err != nil {
		return nil, err
	}
	tryIndex := cycle.TryIndex + 1

	questions, err := au.selectQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}

	attempt := &domain.ExamAttemptModel{
		CycleID:   cycle.ID,
		LearnerID: learner.ID,
		LessonID:  lessonID,
		Status:    domain.AttemptStatusInProgress,
		StartedAt: au.nowFunc(),
	}
	if attempt.ID, err = au.UUIDGenerator.Generate(); err != nil {
		return nil, err
	}
	for _, q := range questions {
		attempt.QuestionIDs = append(attempt.QuestionIDs, q.ID)
	}
	if err := repo.CreateAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	return &domain.StartedExam{
		AttemptID: attempt.ID,
		Cycle:     cycle.Number,
		TryIndex:  tryIndex,
		Questions: sanitize(questions),
	}, nil
}

// Submit grade the attempt and transition it to submitted exactly once. The
// repository performs the status flip as a conditional update, so of two
// concurrent submits one wins and the other gets ErrDuplicateSubmission.
func (au *AttemptUseCaseImpl) Submit(ctx context.Context, learner *domain.LearnerModel, attemptID string, answers []domain.AnswerModel) (*domain.ExamResultModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "AttemptUseCaseImpl.Submit", "service")
	defer apmSpan.End()

	repo := au.AttemptRepository
	attempt, err := repo.GetAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	// ownership: a learner must not see that another learner's attempt exists
	if attempt == nil || attempt.LearnerID != learner.ID {
		return nil, domain.ErrAttemptNotFound
	}
	if attempt.Status == domain.AttemptStatusSubmitted {
		return nil, domain.ErrDuplicateSubmission
	}

	questions, err := au.attemptQuestions(ctx, attempt)
	if err != nil {
		return nil, err
	}

	percent := 0.0
	if row, err := au.ProgressRepository.GetProgress(ctx, learner.ID, attempt.LessonID); err != nil {
		return nil, err
	} else if row != nil {
		percent = row.Percent
	}

	result, err := au.Scorer.Score(questions, answers, percent)
	if err != nil {
		return nil, err
	}

	submitted, err := repo.SubmitAttempt(ctx, attemptID, answers, result, au.nowFunc())
	if err != nil {
		return nil, err
	}
	if !submitted {
		return nil, domain.ErrDuplicateSubmission
	}

	cycle, err := repo.GetLatestCycle(ctx, learner.ID, attempt.LessonID)
	if err != nil {
		return nil, err
	}
	if cycle != nil && cycle.ID == attempt.CycleID && !cycle.Closed() {
		if result.Passed {
			if err := repo.CloseCycle(ctx, cycle.ID, true, au.nowFunc()); err != nil {
				return nil, err
			}
		} else if cycle.TryIndex >= au.Policy.MaxTriesPerCycle {
			if err := repo.CloseCycle(ctx, cycle.ID, false, au.nowFunc()); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// Retake open the next cycle once the current one is closed without a pass
// and watch progress is back at the exam threshold.
func (au *AttemptUseCaseImpl) Retake(ctx context.Context, learner *domain.LearnerModel, lessonID string) (*domain.RetakeModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "AttemptUseCaseImpl.Retake", "service")
	defer apmSpan.End()

	repo := au.AttemptRepository
	cycle, err := repo.GetLatestCycle(ctx, learner.ID, lessonID)
	if err != nil {
		return nil, err
	}
	if cycle == nil || !cycle.Closed() {
		return nil, domain.ErrAttemptNotClosed
	}
	if cycle.Passed {
		return nil, domain.ErrAlreadyPassed
	}

	percent := 0.0
	if row, err := au.ProgressRepository.GetProgress(ctx, learner.ID, lessonID); err != nil {
		return nil, err
	} else if row != nil {
		percent = row.Percent
	}
	if percent < au.Policy.MinExamProgress {
		return nil, domain.ErrProgressNotEnough
	}

	next := &domain.AttemptCycleModel{
		LearnerID: learner.ID,
		LessonID:  lessonID,
		Number:    cycle.Number + 1,
	}
	if next.ID, err = au.UUIDGenerator.Generate(); err != nil {
		return nil, err
	}
	if err := repo.CreateCycle(ctx, next); err != nil {
		return nil, err
	}

	return &domain.RetakeModel{
		Allowed:        true,
		Cycle:          next.Number,
		TryIndex:       1, // the upcoming try
		RemainingTries: au.Policy.MaxTriesPerCycle,
	}, nil
}

// selectQuestions fixed-size question set per lesson policy: position order,
// optionally shuffled
func (au *AttemptUseCaseImpl) selectQuestions(ctx context.Context, lessonID string) ([]*domain.QuestionModel, error) {
	lesson, err := au.LessonRepository.GetLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, domain.ErrLessonNotFound
	}
	questions, err := au.QuestionRepository.GetExamQuestions(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if len(questions) < au.Policy.QuestionCount {
		return nil, domain.ErrNotEnoughQuestions
	}
	selected := append([]*domain.QuestionModel(nil), questions...)
	if lesson.ShuffleQuestions {
		au.shuffleFunc(len(selected), func(i, j int) {
			selected[i], selected[j] = selected[j], selected[i]
		})
	}
	return selected[:au.Policy.QuestionCount], nil
}

// attemptQuestions resolve the attempt's frozen question set, keys included
func (au *AttemptUseCaseImpl) attemptQuestions(ctx context.Context, attempt *domain.ExamAttemptModel) ([]*domain.QuestionModel, error) {
	all, err := au.QuestionRepository.GetExamQuestions(ctx, attempt.LessonID)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.QuestionModel, len(all))
	for _, q := range all {
		byID[q.ID] = q
	}
	questions := make([]*domain.QuestionModel, 0, len(attempt.QuestionIDs))
	for _, id := range attempt.QuestionIDs {
		if q, ok := byID[id]; ok {
			questions = append(questions, q)
		}
	}
	return questions, nil
}

// sanitize strip answer keys before the set leaves the server
func sanitize(questions []*domain.QuestionModel) []*domain.QuestionModel {
	out := make([]*domain.QuestionModel, 0, len(questions))
	for _, q := range questions {
		copied := *q
		copied.CorrectChoiceID = ""
		out = append(out, &copied)
	}
	return out
}
