package lesson

import (
	"context"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
)

// QuestionRepository read-only view over content owned by the CMS side
type QuestionRepository struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ domain.QuestionRepository = &QuestionRepository{}

func NewQuestionRepository(Conn driver.ITransactionalDB) *QuestionRepository {
	return &QuestionRepository{
		Conn: Conn,
	}
}

func (repo *QuestionRepository) GetExamQuestions(ctx context.Context, lessonID string) ([]*domain.QuestionModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    q.id, q.lesson_id, q.position, q.stem, q.correct_choice_id,
    c.id, c.label
FROM
    question q
        LEFT JOIN
    choice c ON (c.question_id = q.id)
WHERE
    q.lesson_id = $1
ORDER BY q.position ASC, c.position ASC
	`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []*domain.QuestionModel
		last   *domain.QuestionModel
	)
	for rows.Next() {
		var (
			question domain.QuestionModel
			choice   domain.ChoiceModel
		)
		if err := rows.Scan(&question.ID, &question.LessonID, &question.Position,
			&question.Stem, &question.CorrectChoiceID, &choice.ID, &choice.Label); err != nil {
			return nil, err
		}
		if last == nil || last.ID != question.ID {
			item := question
			result = append(result, &item)
			last = result[len(result)-1]
		}
		if choice.ID != "" {
			last.Choices = append(last.Choices, choice)
		}
	}
	return result, nil
}
