package learner

import (
	"context"

	"github.com/athena-edu/learning-engine/internal/domain"
	"go.elastic.co/apm"
)

// LearnerUseCaseImpl ...
type LearnerUseCaseImpl struct {
	LearnerRepository domain.LearnerRepository
}

var _ domain.LearnerUseCase = &LearnerUseCaseImpl{}

// NewLearnerUseCase ...
func NewLearnerUseCase(
	LearnerRepository domain.LearnerRepository,
) *LearnerUseCaseImpl {
	return &LearnerUseCaseImpl{
		LearnerRepository: LearnerRepository,
	}
}

// SignUp create a learner account
func (lu *LearnerUseCaseImpl) SignUp(ctx context.Context, post *domain.LearnerModel) (*domain.LearnerModel, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LearnerUseCaseImpl.SignUp", "service")
	defer apmSpan.End()

	lr := lu.LearnerRepository
	// search for existence
	if m, err := lr.FindByCredential(ctx, post); err != nil {
		return nil, err
	} else if m != nil {
		return nil, domain.ErrDuplicatedLearner
	}

	if err := lr.SaveLearner(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Exists find if learner exists in database
func (lu *LearnerUseCaseImpl) Exists(ctx context.Context, post *domain.LearnerModel) (bool, error) {
	apmSpan, _ := apm.StartSpan(ctx, "LearnerUseCaseImpl.Exists", "service")
	defer apmSpan.End()

	existing, err := lu.LearnerRepository.FindByCredential(ctx, post)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, nil
	}
	return true, nil
}
