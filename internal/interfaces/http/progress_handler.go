package http

import (
	"net/http"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/auth"
	"github.com/athena-edu/learning-engine/internal/infrastructure/validate"
	"github.com/labstack/echo/v4"
)

// ProgressHandler watch-time reporting endpoints
type ProgressHandler struct {
	progressUseCase domain.ProgressUseCase
	validator       validate.Validator
	jwtUtil         *auth.JWTUtil
}

func NewProgressHandler(
	ProgressUseCase domain.ProgressUseCase,
	JWTUtil *auth.JWTUtil,
	Validator validate.Validator,
) *ProgressHandler {
	handler := &ProgressHandler{ProgressUseCase, Validator, JWTUtil}
	return handler
}

// HandleReportProgress merge one watch-time report. The merge is monotone, so
// clients may retry freely; a stale or duplicated report never shrinks the
// stored record.
func (ph *ProgressHandler) HandleReportProgress(c echo.Context) (err error) {
	learner := claimedLearner(ph.jwtUtil, c)

	report := new(domain.ProgressReport)
	if err = c.Bind(&report); err != nil {
		internal := err.(*echo.HTTPError).Internal
		return c.JSON(http.StatusUnprocessableEntity,
			NewRESTStandardError(http.StatusUnprocessableEntity, internal.Error()))
	}
	if err := ph.validator.Struct(report); err != nil {
		return c.JSON(http.StatusBadRequest,
			NewRESTValidationError(http.StatusBadRequest, "Failed to validate fields", err))
	}

	row, err := ph.progressUseCase.ReportProgress(c.Request().Context(), learner, report)
	if err != nil {
		return writeEngineError(c, err)
	}
	return c.JSON(http.StatusOK, row)
}

// claimedLearner learner identity carried by the verified token
func claimedLearner(ju *auth.JWTUtil, c echo.Context) *domain.LearnerModel {
	claims := ju.GetContextToken(c)
	return &domain.LearnerModel{
		ID:        claims.UID,
		Username:  claims.Name,
		Email:     claims.Email,
		CompanyID: claims.CompanyID,
	}
}
