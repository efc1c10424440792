package domain

import (
	"context"
	"errors"
)

type LearnerModel struct {
	ID         string `json:"id"`
	Username   string `json:"username" validate:"required,min=3"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password,omitempty" validate:"required,min=8"`
	CompanyID  string `json:"company_id"`
	LoginRetry int    `json:"-"`
	LastLogin  int64  `json:"-"`
}

// ErrNoSuchLearner failed to validate the credential
var ErrNoSuchLearner = errors.New("No such learner or password is incorrect")

// ErrDuplicatedLearner unique key constraint violation
var ErrDuplicatedLearner = errors.New("Username or email is already registered")

// ErrLearnerTooManyRetry login attempts exceeded the configured maximum
var ErrLearnerTooManyRetry = errors.New("Too many login attempts, account is locked")

type LearnerUseCase interface {
	SignUp(ctx context.Context, post *LearnerModel) (*LearnerModel, error)
	Exists(ctx context.Context, post *LearnerModel) (bool, error)
}

type LearnerRepository interface {
	FindByCredential(ctx context.Context, post *LearnerModel) (*LearnerModel, error)
	UpdateLearner(ctx context.Context, post *LearnerModel) error
	SaveLearner(ctx context.Context, post *LearnerModel) error
}
