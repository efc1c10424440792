package scoring

import (
	"errors"
	"fmt"
	"testing"

	"github.com/athena-edu/learning-engine/internal/domain"
)

func buildQuestions(n int) []*domain.QuestionModel {
	questions := make([]*domain.QuestionModel, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("q%d", i)
		questions = append(questions, &domain.QuestionModel{
			ID:       id,
			Position: i,
			Stem:     "stem " + id,
			Choices: []domain.ChoiceModel{
				{ID: id + "-a", Label: "A"},
				{ID: id + "-b", Label: "B"},
				{ID: id + "-c", Label: "C"},
			},
			CorrectChoiceID: id + "-a",
		})
	}
	return questions
}

func answerFirst(questions []*domain.QuestionModel, correct int) []domain.AnswerModel {
	var answers []domain.AnswerModel
	for i, q := range questions {
		choice := q.CorrectChoiceID
		if i >= correct {
			choice = q.ID + "-b"
		}
		answers = append(answers, domain.AnswerModel{QuestionID: q.ID, ChoiceID: choice})
	}
	return answers
}

func TestScore(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	questions := buildQuestions(10)

	tests := []struct {
		name      string
		answers   []domain.AnswerModel
		progress  float64
		examScore float64
		final     float64
		passed    bool
	}{
		{name: "8 of 10 with high progress", answers: answerFirst(questions, 8), progress: 95, examScore: 80, final: 80*0.8 + 95*0.2, passed: true},
		{name: "all correct no progress", answers: answerFirst(questions, 10), progress: 0, examScore: 100, final: 80, passed: true},
		{name: "all wrong", answers: answerFirst(questions, 0), progress: 100, examScore: 0, final: 20, passed: false},
		{name: "boundary exactly at threshold", answers: answerFirst(questions, 7), progress: 70, examScore: 70, final: 70, passed: true},
		{name: "unanswered count as incorrect", answers: answerFirst(questions, 8)[:8], progress: 95, examScore: 80, final: 83, passed: true},
		{name: "no answers at all", answers: nil, progress: 90, examScore: 0, final: 18, passed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := engine.Score(questions, tt.answers, tt.progress)
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if result.ExamScore != tt.examScore {
				t.Errorf("ExamScore = %v, want %v", result.ExamScore, tt.examScore)
			}
			if result.FinalScore != tt.final {
				t.Errorf("FinalScore = %v, want %v", result.FinalScore, tt.final)
			}
			if result.Passed != tt.passed {
				t.Errorf("Passed = %v, want %v", result.Passed, tt.passed)
			}
		})
	}
}

func TestScoreInvalidAnswerSet(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	questions := buildQuestions(3)

	tests := []struct {
		name    string
		answers []domain.AnswerModel
	}{
		{name: "foreign question", answers: []domain.AnswerModel{{QuestionID: "ghost", ChoiceID: "q0-a"}}},
		{name: "foreign choice", answers: []domain.AnswerModel{{QuestionID: "q0", ChoiceID: "q1-a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := engine.Score(questions, tt.answers, 100); !errors.Is(err, domain.ErrInvalidAnswerSet) {
				t.Errorf("Score() error = %v, want ErrInvalidAnswerSet", err)
			}
		})
	}
}

func TestScoreEmptyQuestionSet(t *testing.T) {
	engine := NewEngine(DefaultWeights())
	if _, err := engine.Score(nil, nil, 100); !errors.Is(err, domain.ErrNotEnoughQuestions) {
		t.Errorf("Score() error = %v, want ErrNotEnoughQuestions", err)
	}
}
