package scoring

import (
	"github.com/athena-edu/learning-engine/internal/domain"
)

// Weights final score composition and pass cutoff
type Weights struct {
	ExamWeight     float64
	ProgressWeight float64
	PassThreshold  float64
}

// DefaultWeights 80/20 split with a 70 point cutoff
func DefaultWeights() Weights {
	return Weights{ExamWeight: 0.8, ProgressWeight: 0.2, PassThreshold: 70}
}

// Engine grades submitted answers against the attempt's question set and
// folds the watch-progress percent into the final verdict.
type Engine struct {
	weights Weights
}

func NewEngine(weights Weights) *Engine {
	return &Engine{weights: weights}
}

// Score grade answers against questions. Unanswered questions count as
// incorrect. Answers referencing a question or choice outside the set are
// rejected as a whole with ErrInvalidAnswerSet.
func (e *Engine) Score(questions []*domain.QuestionModel, answers []domain.AnswerModel, progressPercent float64) (*domain.ExamResultModel, error) {
	if len(questions) == 0 {
		return nil, domain.ErrNotEnoughQuestions
	}

	byQuestion := make(map[string]*domain.QuestionModel, len(questions))
	for _, q := range questions {
		byQuestion[q.ID] = q
	}

	picked := make(map[string]string, len(answers))
	for _, a := range answers {
		q, ok := byQuestion[a.QuestionID]
		if !ok {
			return nil, domain.ErrInvalidAnswerSet
		}
		if !hasChoice(q, a.ChoiceID) {
			return nil, domain.ErrInvalidAnswerSet
		}
		picked[a.QuestionID] = a.ChoiceID
	}

	correct := 0
	for _, q := range questions {
		if picked[q.ID] == q.CorrectChoiceID {
			correct++
		}
	}

	examScore := 100 * float64(correct) / float64(len(questions))
	finalScore := examScore*e.weights.ExamWeight + progressPercent*e.weights.ProgressWeight
	return &domain.ExamResultModel{
		ExamScore:       examScore,
		ProgressPercent: progressPercent,
		FinalScore:      finalScore,
		Passed:          finalScore >= e.weights.PassThreshold,
		CorrectCount:    correct,
		TotalCount:      len(questions),
	}, nil
}

func hasChoice(q *domain.QuestionModel, choiceID string) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}
