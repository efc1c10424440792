package attempt

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/scoring"
)

// fakeBackend in-memory stand-in for every repository the lifecycle touches
type fakeBackend struct {
	lessons   map[string]*domain.LessonModel
	questions map[string][]*domain.QuestionModel
	percent   map[string]float64 // learnerID|lessonID
	cycles    []*domain.AttemptCycleModel
	attempts  map[string]*domain.ExamAttemptModel
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		lessons:   map[string]*domain.LessonModel{},
		questions: map[string][]*domain.QuestionModel{},
		percent:   map[string]float64{},
		attempts:  map[string]*domain.ExamAttemptModel{},
	}
}

func (f *fakeBackend) GetLesson(ctx context.Context, lessonID string) (*domain.LessonModel, error) {
	return f.lessons[lessonID], nil
}

func (f *fakeBackend) GetSubjectLessons(ctx context.Context, subjectID string) ([]*domain.LessonModel, error) {
	return nil, nil
}

func (f *fakeBackend) IsSubjectAssigned(ctx context.Context, companyID, subjectID string) (bool, error) {
	return true, nil
}

func (f *fakeBackend) IsLessonActive(ctx context.Context, companyID, lessonID string) (bool, error) {
	return true, nil
}

func (f *fakeBackend) GetExamQuestions(ctx context.Context, lessonID string) ([]*domain.QuestionModel, error) {
	return f.questions[lessonID], nil
}

func (f *fakeBackend) MergeProgress(ctx context.Context, learnerID string, report *domain.ProgressReport) (*domain.LessonProgressModel, error) {
	return nil, nil
}

func (f *fakeBackend) GetProgress(ctx context.Context, learnerID, lessonID string) (*domain.LessonProgressModel, error) {
	percent, ok := f.percent[learnerID+"|"+lessonID]
	if !ok {
		return nil, nil
	}
	return &domain.LessonProgressModel{LearnerID: learnerID, LessonID: lessonID, Percent: percent}, nil
}

func (f *fakeBackend) GetProgressByLearner(ctx context.Context, learnerID string) ([]*domain.LessonProgressModel, error) {
	return nil, nil
}

func (f *fakeBackend) GetLatestCycle(ctx context.Context, learnerID, lessonID string) (*domain.AttemptCycleModel, error) {
	var latest *domain.AttemptCycleModel
	for _, c := range f.cycles {
		if c.LearnerID == learnerID && c.LessonID == lessonID {
			if latest == nil || c.Number > latest.Number {
				latest = c
			}
		}
	}
	if latest == nil {
		return nil, nil
	}
	copied := *latest
	return &copied, nil
}

func (f *fakeBackend) HasPassed(ctx context.Context, learnerID, lessonID string) (bool, error) {
	for _, c := range f.cycles {
		if c.LearnerID == learnerID && c.LessonID == lessonID && c.Passed {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBackend) CreateCycle(ctx context.Context, cycle *domain.AttemptCycleModel) error {
	copied := *cycle
	f.cycles = append(f.cycles, &copied)
	return nil
}

func (f *fakeBackend) BumpTry(ctx context.Context, cycleID string) error {
	for _, c := range f.cycles {
		if c.ID == cycleID {
			c.TryIndex++
		}
	}
	return nil
}

func (f *fakeBackend) CloseCycle(ctx context.Context, cycleID string, passed bool, at time.Time) error {
	for _, c := range f.cycles {
		if c.ID == cycleID {
			closedAt := at
			c.ClosedAt = &closedAt
			c.Passed = passed
		}
	}
	return nil
}

func (f *fakeBackend) CreateAttempt(ctx context.Context, attempt *domain.ExamAttemptModel) error {
	copied := *attempt
	f.attempts[attempt.ID] = &copied
	return nil
}

func (f *fakeBackend) GetAttempt(ctx context.Context, attemptID string) (*domain.ExamAttemptModel, error) {
	attempt, ok := f.attempts[attemptID]
	if !ok {
		return nil, nil
	}
	copied := *attempt
	return &copied, nil
}

func (f *fakeBackend) GetOpenAttempt(ctx context.Context, cycleID string) (*domain.ExamAttemptModel, error) {
	for _, a := range f.attempts {
		if a.CycleID == cycleID && a.Status == domain.AttemptStatusInProgress {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) SubmitAttempt(ctx context.Context, attemptID string, answers []domain.AnswerModel, result *domain.ExamResultModel, at time.Time) (bool, error) {
	attempt, ok := f.attempts[attemptID]
	if !ok || attempt.Status != domain.AttemptStatusInProgress {
		return false, nil
	}
	attempt.Status = domain.AttemptStatusSubmitted
	attempt.Answers = answers
	attempt.ExamScore = result.ExamScore
	attempt.FinalScore = result.FinalScore
	attempt.Passed = result.Passed
	submittedAt := at
	attempt.SubmittedAt = &submittedAt
	return true, nil
}

// openGate eligibility stub that lets every exam start through
type openGate struct{}

func (openGate) CanAccessLesson(ctx context.Context, learner *domain.LearnerModel, lessonID string) error {
	return nil
}
func (openGate) CanStartExam(ctx context.Context, learner *domain.LearnerModel, lessonID string) error {
	return nil
}
func (openGate) LessonStatus(ctx context.Context, learner *domain.LearnerModel, lessonID string) (*domain.LessonStatusModel, error) {
	return nil, nil
}

type seqIDs struct{ n int }

func (s *seqIDs) Generate() (string, error) {
	s.n++
	return fmt.Sprintf("id-%d", s.n), nil
}

var examLearner = &domain.LearnerModel{ID: "learner-1", CompanyID: "acme"}

func seededBackend() *fakeBackend {
	backend := newFakeBackend()
	backend.lessons["lesson-1"] = &domain.LessonModel{
		ID: "lesson-1", SubjectID: "subject-1", Order: 1, DurationSeconds: 100, HasExam: true,
	}
	for i := 1; i <= 12; i++ {
		question := &domain.QuestionModel{
			ID:       fmt.Sprintf("q%d", i),
			LessonID: "lesson-1",
			Position: i,
			Stem:     fmt.Sprintf("question %d", i),
			Choices: []domain.ChoiceModel{
				{ID: fmt.Sprintf("q%d-c1", i), Label: "a"},
				{ID: fmt.Sprintf("q%d-c2", i), Label: "b"},
			},
			CorrectChoiceID: fmt.Sprintf("q%d-c1", i),
		}
		backend.questions["lesson-1"] = append(backend.questions["lesson-1"], question)
	}
	backend.percent[examLearner.ID+"|lesson-1"] = 95
	return backend
}

func newUseCase(backend *fakeBackend) *AttemptUseCaseImpl {
	return NewAttemptUseCase(openGate{}, backend, backend, backend, backend,
		scoring.NewEngine(scoring.DefaultWeights()), &seqIDs{}, DefaultPolicy())
}

func answersFor(started *domain.StartedExam, correct int) []domain.AnswerModel {
	var answers []domain.AnswerModel
	for i, q := range started.Questions {
		choice := q.ID + "-c2"
		if i < correct {
			choice = q.ID + "-c1"
		}
		answers = append(answers, domain.AnswerModel{QuestionID: q.ID, ChoiceID: choice})
	}
	return answers
}

func TestStartFirstAttempt(t *testing.T) {
	usecase := newUseCase(seededBackend())
	ctx := context.Background()

	started, err := usecase.Start(ctx, examLearner, "lesson-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if started.Cycle != 1 || started.TryIndex != 1 {
		t.Errorf("Cycle = %d, TryIndex = %d, want 1 and 1", started.Cycle, started.TryIndex)
	}
	if len(started.Questions) != 10 {
		t.Fatalf("got %d questions, want 10", len(started.Questions))
	}
	for _, q := range started.Questions {
		if q.CorrectChoiceID != "" {
			t.Fatalf("question %s leaked its answer key", q.ID)
		}
	}
}

func TestStartWhileAttemptOpen(t *testing.T) {
	usecase := newUseCase(seededBackend())
	ctx := context.Background()

	if _, err := usecase.Start(ctx, examLearner, "lesson-1"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := usecase.Start(ctx, examLearner, "lesson-1"); err != domain.ErrAttemptInProgress {
		t.Errorf("second Start() error = %v, want ErrAttemptInProgress", err)
	}
}

func TestStartWithTooFewQuestions(t *testing.T) {
	backend := seededBackend()
	backend.questions["lesson-1"] = backend.questions["lesson-1"][:5]
	usecase := newUseCase(backend)

	if _, err := usecase.Start(context.Background(), examLearner, "lesson-1"); err != domain.ErrNotEnoughQuestions {
		t.Errorf("Start() error = %v, want ErrNotEnoughQuestions", err)
	}
}

func TestSubmitPassClosesCycle(t *testing.T) {
	backend := seededBackend()
	usecase := newUseCase(backend)
	ctx := context.Background()

	started, err := usecase.Start(ctx, examLearner, "lesson-1")
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	result, err := usecase.Submit(ctx, examLearner, started.AttemptID, answersFor(started, 10))
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	// 10/10 at 95% progress: 100*0.8 + 95*0.2 = 99
	if !result.Passed || result.FinalScore != 99 {
		t.Errorf("Passed = %v, FinalScore = %v, want pass with 99", result.Passed, result.FinalScore)
	}

	cycle, _ := backend.GetLatestCycle(ctx, examLearner.ID, "lesson-1")
	if !cycle.Closed() || !cycle.Passed {
		t.Errorf("cycle Closed = %v, Passed = %v, want closed and passed", cycle.Closed(), cycle.Passed)
	}
}

func TestSubmitTwiceIsRejected(t *testing.T) {
	usecase := newUseCase(seededBackend())
	ctx := context.Background()

	started, _ := usecase.Start(ctx, examLearner, "lesson-1")
	if _, err := usecase.Submit(ctx, examLearner, started.AttemptID, answersFor(started, 10)); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if _, err := usecase.Submit(ctx, examLearner, started.AttemptID, answersFor(started, 10)); err != domain.ErrDuplicateSubmission {
		t.Errorf("second Submit() error = %v, want ErrDuplicateSubmission", err)
	}
}

func TestSubmitOwnership(t *testing.T) {
	usecase := newUseCase(seededBackend())
	ctx := context.Background()

	started, _ := usecase.Start(ctx, examLearner, "lesson-1")
	intruder := &domain.LearnerModel{ID: "learner-2", CompanyID: "acme"}
	if _, err := usecase.Submit(ctx, intruder, started.AttemptID, nil); err != domain.ErrAttemptNotFound {
		t.Errorf("Submit() error = %v, want ErrAttemptNotFound", err)
	}
}

func TestSubmitForeignAnswerSet(t *testing.T) {
	usecase := newUseCase(seededBackend())
	ctx := context.Background()

	started, _ := usecase.Start(ctx, examLearner, "lesson-1")
	answers := []domain.AnswerModel{{QuestionID: "not-in-attempt", ChoiceID: "x"}}
	if _, err := usecase.Submit(ctx, examLearner, started.AttemptID, answers); err != domain.ErrInvalidAnswerSet {
		t.Errorf("Submit() error = %v, want ErrInvalidAnswerSet", err)
	}
}

func TestCycleExhaustionAndRetake(t *testing.T) {
	backend := seededBackend()
	usecase := newUseCase(backend)
	ctx := context.Background()

	// retake before any cycle exists
	if _, err := usecase.Retake(ctx, examLearner, "lesson-1"); err != domain.ErrAttemptNotClosed {
		t.Fatalf("Retake() error = %v, want ErrAttemptNotClosed", err)
	}

	// burn all three tries with failing submissions
	for try := 1; try <= 3; try++ {
		started, err := usecase.Start(ctx, examLearner, "lesson-1")
		if err != nil {
			t.Fatalf("Start() try %d error = %v", try, err)
		}
		if started.TryIndex != try {
			t.Fatalf("TryIndex = %d, want %d", started.TryIndex, try)
		}
		result, err := usecase.Submit(ctx, examLearner, started.AttemptID, answersFor(started, 0))
		if err != nil {
			t.Fatalf("Submit() try %d error = %v", try, err)
		}
		if result.Passed {
			t.Fatalf("try %d passed with zero correct answers", try)
		}
	}

	// the cycle is spent
	if _, err := usecase.Start(ctx, examLearner, "lesson-1"); err != domain.ErrAttemptLimit {
		t.Fatalf("Start() after exhaustion error = %v, want ErrAttemptLimit", err)
	}

	// retake opens cycle 2 with a full try budget
	retake, err := usecase.Retake(ctx, examLearner, "lesson-1")
	if err != nil {
		t.Fatalf("Retake() error = %v", err)
	}
	if !retake.Allowed || retake.Cycle != 2 || retake.RemainingTries != 3 {
		t.Errorf("retake = %+v, want allowed cycle 2 with 3 tries", retake)
	}
	if started, err := usecase.Start(ctx, examLearner, "lesson-1"); err != nil {
		t.Errorf("Start() after retake error = %v", err)
	} else if started.Cycle != 2 || started.TryIndex != 1 {
		t.Errorf("Cycle = %d, TryIndex = %d, want 2 and 1", started.Cycle, started.TryIndex)
	}
}

func TestRetakeGates(t *testing.T) {
	ctx := context.Background()

	t.Run("open cycle", func(t *testing.T) {
		backend := seededBackend()
		usecase := newUseCase(backend)
		if _, err := usecase.Start(ctx, examLearner, "lesson-1"); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if _, err := usecase.Retake(ctx, examLearner, "lesson-1"); err != domain.ErrAttemptNotClosed {
			t.Errorf("Retake() error = %v, want ErrAttemptNotClosed", err)
		}
	})
	t.Run("passed cycle", func(t *testing.T) {
		backend := seededBackend()
		usecase := newUseCase(backend)
		started, _ := usecase.Start(ctx, examLearner, "lesson-1")
		if _, err := usecase.Submit(ctx, examLearner, started.AttemptID, answersFor(started, 10)); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if _, err := usecase.Retake(ctx, examLearner, "lesson-1"); err != domain.ErrAlreadyPassed {
			t.Errorf("Retake() error = %v, want ErrAlreadyPassed", err)
		}
	})
	t.Run("progress dropped below threshold", func(t *testing.T) {
		backend := seededBackend()
		usecase := newUseCase(backend)
		for try := 1; try <= 3; try++ {
			started, _ := usecase.Start(ctx, examLearner, "lesson-1")
			usecase.Submit(ctx, examLearner, started.AttemptID, answersFor(started, 0))
		}
		backend.percent[examLearner.ID+"|lesson-1"] = 50
		if _, err := usecase.Retake(ctx, examLearner, "lesson-1"); err != domain.ErrProgressNotEnough {
			t.Errorf("Retake() error = %v, want ErrProgressNotEnough", err)
		}
	})
}
