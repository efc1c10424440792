package domain

// EngineError domain error carrying a stable machine-readable code.
//
// The code is part of the API contract; clients branch on it, so it must
// never change once published.
type EngineError struct {
	Code   string
	Reason string
}

func (e *EngineError) Error() string {
	return e.Reason
}

// NewEngineError create a coded domain error
func NewEngineError(code, reason string) *EngineError {
	return &EngineError{Code: code, Reason: reason}
}

// eligibility errors, recoverable by the learner (watch more / wait)
var (
	ErrPeriodNotActive   = NewEngineError("PERIOD_NOT_ACTIVE", "Enrollment period is not active")
	ErrNotAssigned       = NewEngineError("NOT_ASSIGNED_TO_SUBJECT", "Subject is not assigned to the learner's company")
	ErrLessonNotActive   = NewEngineError("LESSON_NOT_ACTIVE_FOR_COMPANY", "Lesson is not active for the learner's company")
	ErrProgressNotEnough = NewEngineError("PROGRESS_NOT_ENOUGH", "Watch progress has not reached the exam threshold")
	ErrLessonLocked      = NewEngineError("LESSON_LOCKED", "A previous lesson must be completed first")
)

// attempt-state errors, recoverable by waiting for the next cycle or a client bug
var (
	ErrAttemptLimit        = NewEngineError("ATTEMPT_LIMIT", "All tries in the current attempt cycle are used up")
	ErrAlreadyPassed       = NewEngineError("ALREADY_PASSED", "The exam has already been passed")
	ErrAttemptNotClosed    = NewEngineError("ATTEMPT_NOT_CLOSED", "The current attempt cycle is still open")
	ErrAttemptInProgress   = NewEngineError("ATTEMPT_IN_PROGRESS", "An attempt is already in progress for the open cycle")
	ErrDuplicateSubmission = NewEngineError("DUPLICATE_SUBMISSION", "The attempt has already been submitted")
)

// data validity errors, not retryable with the same payload
var (
	ErrInvalidAnswerSet   = NewEngineError("INVALID_ANSWER_SET", "Answers reference questions or choices outside the attempt")
	ErrNotEnoughQuestions = NewEngineError("NOT_ENOUGH_QUESTIONS", "The lesson does not have enough exam questions")
)

// lookup errors
var (
	ErrLessonNotFound  = NewEngineError("LESSON_NOT_FOUND", "No such lesson")
	ErrAttemptNotFound = NewEngineError("ATTEMPT_NOT_FOUND", "No such attempt")
)
