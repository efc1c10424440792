package lesson

import (
	"context"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
)

type LessonRepository struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ domain.LessonRepository = &LessonRepository{}

func NewLessonRepository(Conn driver.ITransactionalDB) *LessonRepository {
	return &LessonRepository{
		Conn: Conn,
	}
}

func (repo *LessonRepository) GetLesson(ctx context.Context, lessonID string) (*domain.LessonModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    id, subject_id, title, "order", duration_seconds, has_exam, shuffle_questions
FROM
    lesson
WHERE
    id = $1
	`, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		item := new(domain.LessonModel)
		if err := rows.Scan(&item.ID, &item.SubjectID, &item.Title, &item.Order,
			&item.DurationSeconds, &item.HasExam, &item.ShuffleQuestions); err != nil {
			return nil, err
		}
		return item, nil
	}
	return nil, nil
}

func (repo *LessonRepository) GetSubjectLessons(ctx context.Context, subjectID string) ([]*domain.LessonModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    id, subject_id, title, "order", duration_seconds, has_exam, shuffle_questions
FROM
    lesson
WHERE
    subject_id = $1
ORDER BY "order" ASC
	`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LessonModel
	for rows.Next() {
		item := new(domain.LessonModel)
		if err := rows.Scan(&item.ID, &item.SubjectID, &item.Title, &item.Order,
			&item.DurationSeconds, &item.HasExam, &item.ShuffleQuestions); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

func (repo *LessonRepository) IsSubjectAssigned(ctx context.Context, companyID, subjectID string) (bool, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    1
FROM
    company_subject
WHERE
    company_id = $1 AND subject_id = $2
LIMIT 1
	`, companyID, subjectID)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}

func (repo *LessonRepository) IsLessonActive(ctx context.Context, companyID, lessonID string) (bool, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    1
FROM
    company_lesson
WHERE
    company_id = $1 AND lesson_id = $2 AND active = TRUE
LIMIT 1
	`, companyID, lessonID)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}
