package http

import (
	"net/http"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/auth"
	"github.com/athena-edu/learning-engine/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

// ExamHandler exam attempt lifecycle endpoints
type ExamHandler struct {
	attemptUseCase domain.AttemptUseCase
	validator      validate.Validator
	jwtUtil        *auth.JWTUtil
}

func NewExamHandler(
	AttemptUseCase domain.AttemptUseCase,
	JWTUtil *auth.JWTUtil,
	Validator validate.Validator,
) *ExamHandler {
	handler := &ExamHandler{AttemptUseCase, Validator, JWTUtil}
	return handler
}

// submissionPost answers for one attempt
type submissionPost struct {
	Answers []domain.AnswerModel `json:"answers" validate:"dive"`
}

// HandleStartAttempt open a new attempt in the current cycle. The question
// set in the response carries no answer keys.
func (eh *ExamHandler) HandleStartAttempt(c echo.Context) (err error) {
	learner := claimedLearner(eh.jwtUtil, c)
	lessonID := c.Param("lesson_id")

	started, err := eh.attemptUseCase.Start(c.Request().Context(), learner, lessonID)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusCreated, started)
}

// HandleSubmitAttempt grade the attempt, exactly once. A second submission of
// the same attempt gets a conflict, not a second grading.
func (eh *ExamHandler) HandleSubmitAttempt(c echo.Context) (err error) {
	learner := claimedLearner(eh.jwtUtil, c)
	attemptID := c.Param("attempt_id")

	post := new(submissionPost)
	if err = c.Bind(&post); err != nil {
		internal := err.(*echo.HTTPError).Internal
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, internal.Error()))
	}
	if err := eh.validator.Struct(post); err != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", err))
	}

	result, err := eh.attemptUseCase.Submit(c.Request().Context(), learner, attemptID, post.Answers)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// HandleRetake open the next attempt cycle after the current one closed
// without a pass
func (eh *ExamHandler) HandleRetake(c echo.Context) (err error) {
	learner := claimedLearner(eh.jwtUtil, c)
	lessonID := c.Param("lesson_id")

	retake, err := eh.attemptUseCase.Retake(c.Request().Context(), learner, lessonID)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, retake)
}
