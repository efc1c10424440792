package domain

import (
	"context"
	"time"
)

type ChoiceModel struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// QuestionModel static exam content, owned by the content-management side.
// CorrectChoiceID is never serialized to clients.
type QuestionModel struct {
	ID              string        `json:"id"`
	LessonID        string        `json:"-"`
	Position        int           `json:"-"`
	Stem            string        `json:"stem"`
	Choices         []ChoiceModel `json:"choices"`
	CorrectChoiceID string        `json:"-"`
}

// attempt status values
const (
	AttemptStatusInProgress = "in_progress"
	AttemptStatusSubmitted  = "submitted"
)

// AttemptCycleModel bounded group of exam attempts for one lesson.
// TryIndex counts attempts started within the cycle. A cycle closes when an
// attempt passes or when TryIndex reaches the configured maximum without one.
type AttemptCycleModel struct {
	ID        string     `json:"id"`
	LearnerID string     `json:"-"`
	LessonID  string     `json:"lesson_id"`
	Number    int        `json:"cycle"`
	TryIndex  int        `json:"try_index"`
	Passed    bool       `json:"passed"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

// Closed whether the cycle no longer accepts attempts
func (c *AttemptCycleModel) Closed() bool {
	return c.ClosedAt != nil
}

type AnswerModel struct {
	QuestionID string `json:"question_id" validate:"required"`
	ChoiceID   string `json:"choice_id" validate:"required"`
}

// ExamAttemptModel one exam session. Immutable once submitted.
type ExamAttemptModel struct {
	ID          string        `json:"id"`
	CycleID     string        `json:"-"`
	LearnerID   string        `json:"-"`
	LessonID    string        `json:"lesson_id"`
	Status      string        `json:"status"`
	QuestionIDs []string      `json:"-"`
	Answers     []AnswerModel `json:"-"`
	ExamScore   float64       `json:"exam_score"`
	FinalScore  float64       `json:"final_score"`
	Passed      bool          `json:"passed"`
	StartedAt   time.Time     `json:"started_at"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
}

// ExamResultModel derived at submission time, not mutable state
type ExamResultModel struct {
	ExamScore       float64 `json:"exam_score"`
	ProgressPercent float64 `json:"progress_percent"`
	FinalScore      float64 `json:"final_score"`
	Passed          bool    `json:"passed"`
	CorrectCount    int     `json:"correct_count"`
	TotalCount      int     `json:"total_count"`
}

// StartedExam attempt plus the sanitized question set handed to the client
type StartedExam struct {
	AttemptID string           `json:"attempt_id"`
	Cycle     int              `json:"cycle"`
	TryIndex  int              `json:"try_index"`
	Questions []*QuestionModel `json:"questions"`
}

// RetakeModel response of a retake request
type RetakeModel struct {
	Allowed        bool `json:"allowed"`
	Cycle          int  `json:"cycle"`
	TryIndex       int  `json:"try_index"`
	RemainingTries int  `json:"remaining_tries"`
}

type QuestionRepository interface {
	// GetExamQuestions full question rows for a lesson, answer keys included,
	// ordered by position
	GetExamQuestions(ctx context.Context, lessonID string) ([]*QuestionModel, error)
}

type AttemptRepository interface {
	// GetLatestCycle most recent cycle for the pair, nil if none exists
	GetLatestCycle(ctx context.Context, learnerID, lessonID string) (*AttemptCycleModel, error)
	HasPassed(ctx context.Context, learnerID, lessonID string) (bool, error)
	CreateCycle(ctx context.Context, cycle *AttemptCycleModel) error
	// BumpTry increment the cycle's try counter
	BumpTry(ctx context.Context, cycleID string) error
	CloseCycle(ctx context.Context, cycleID string, passed bool, at time.Time) error

	CreateAttempt(ctx context.Context, attempt *ExamAttemptModel) error
	GetAttempt(ctx context.Context, attemptID string) (*ExamAttemptModel, error)
	// GetOpenAttempt the single in-progress attempt of a cycle, nil if none
	GetOpenAttempt(ctx context.Context, cycleID string) (*ExamAttemptModel, error)
	// SubmitAttempt conditional in_progress -> submitted transition, atomic
	// with the result write. Returns false when the row was already
	// submitted, so exactly one of two concurrent submits wins.
	SubmitAttempt(ctx context.Context, attemptID string, answers []AnswerModel, result *ExamResultModel, at time.Time) (bool, error)
}

type AttemptUseCase interface {
	Start(ctx context.Context, learner *LearnerModel, lessonID string) (*StartedExam, error)
	Submit(ctx context.Context, learner *LearnerModel, attemptID string, answers []AnswerModel) (*ExamResultModel, error)
	Retake(ctx context.Context, learner *LearnerModel, lessonID string) (*RetakeModel, error)
}

type EligibilityUseCase interface {
	// CanAccessLesson nil error means unlocked; a coded error names the
	// first blocking rule
	CanAccessLesson(ctx context.Context, learner *LearnerModel, lessonID string) error
	CanStartExam(ctx context.Context, learner *LearnerModel, lessonID string) error
	LessonStatus(ctx context.Context, learner *LearnerModel, lessonID string) (*LessonStatusModel, error)
}
