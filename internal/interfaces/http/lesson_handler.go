package http

import (
	"net/http"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/auth"
	"github.com/labstack/echo/v4"
)

// LessonHandler lesson status and progress listing
type LessonHandler struct {
	progressUseCase    domain.ProgressUseCase
	eligibilityUseCase domain.EligibilityUseCase
	jwtUtil            *auth.JWTUtil
}

func NewLessonHandler(
	ProgressUseCase domain.ProgressUseCase,
	EligibilityUseCase domain.EligibilityUseCase,
	JWTUtil *auth.JWTUtil,
) *LessonHandler {
	handler := &LessonHandler{ProgressUseCase, EligibilityUseCase, JWTUtil}
	return handler
}

// HandleGetLessonProgress watch progress for every lesson the learner touched
func (lh *LessonHandler) HandleGetLessonProgress(c echo.Context) (err error) {
	learner := claimedLearner(lh.jwtUtil, c)

	progress, err := lh.progressUseCase.GetLearnerProgress(c.Request().Context(), learner)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, progress)
}

// HandleGetLessonStatus aggregated lock state, blockers and remaining tries
// for one lesson
func (lh *LessonHandler) HandleGetLessonStatus(c echo.Context) (err error) {
	learner := claimedLearner(lh.jwtUtil, c)
	lessonID := c.Param("lesson_id")

	status, err := lh.eligibilityUseCase.LessonStatus(c.Request().Context(), learner, lessonID)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}
