package domain

import (
	"context"
	"time"
)

// EnrollmentModel learner membership in a company cohort with an access window
type EnrollmentModel struct {
	LearnerID string
	CompanyID string
	StartAt   time.Time
	EndAt     time.Time
}

// ActiveAt whether the enrollment window covers the given instant
func (e *EnrollmentModel) ActiveAt(at time.Time) bool {
	return !at.Before(e.StartAt) && !at.After(e.EndAt)
}

type EnrollmentRepository interface {
	GetEnrollment(ctx context.Context, learnerID string) (*EnrollmentModel, error)
}
