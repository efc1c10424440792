package attempt

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
)

type AttemptRepository struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ domain.AttemptRepository = &AttemptRepository{}

func NewAttemptRepository(Conn driver.ITransactionalDB) *AttemptRepository {
	return &AttemptRepository{
		Conn: Conn,
	}
}

func (repo *AttemptRepository) GetLatestCycle(ctx context.Context, learnerID, lessonID string) (*domain.AttemptCycleModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    id, learner_id, lesson_id, "number", try_index, passed, closed_at
FROM
    attempt_cycle
WHERE
    learner_id = $1 AND lesson_id = $2
ORDER BY "number" DESC
LIMIT 1
	`, learnerID, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		return scanCycle(rows)
	}
	return nil, nil
}

func (repo *AttemptRepository) HasPassed(ctx context.Context, learnerID, lessonID string) (bool, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    1
FROM
    attempt_cycle
WHERE
    learner_id = $1 AND lesson_id = $2 AND passed = TRUE
LIMIT 1
	`, learnerID, lessonID)
	if err != nil {
		return false, err
	}
	defer rows.Close()
	return rows.Next(), nil
}

func (repo *AttemptRepository) CreateCycle(ctx context.Context, cycle *domain.AttemptCycleModel) error {
	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `
INSERT INTO attempt_cycle (id, learner_id, lesson_id, "number", try_index, passed)
VALUES ($1, $2, $3, $4, $5, FALSE)
	`, cycle.ID, cycle.LearnerID, cycle.LessonID, cycle.Number, cycle.TryIndex)
	return err
}

func (repo *AttemptRepository) BumpTry(ctx context.Context, cycleID string) error {
	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `
UPDATE attempt_cycle SET try_index = try_index + 1 WHERE id = $1
	`, cycleID)
	return err
}

func (repo *AttemptRepository) CloseCycle(ctx context.Context, cycleID string, passed bool, at time.Time) error {
	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `
UPDATE attempt_cycle SET passed = $2, closed_at = $3 WHERE id = $1 AND closed_at IS NULL
	`, cycleID, passed, at.Unix())
	return err
}

func (repo *AttemptRepository) CreateAttempt(ctx context.Context, attempt *domain.ExamAttemptModel) error {
	conn := repo.Conn
	questionIDs, err := json.Marshal(attempt.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = conn.ExecContext(ctx, `
INSERT INTO exam_attempt (id, cycle_id, learner_id, lesson_id, status, question_ids_json, started_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, attempt.ID, attempt.CycleID, attempt.LearnerID, attempt.LessonID,
		attempt.Status, string(questionIDs), attempt.StartedAt.Unix())
	return err
}

func (repo *AttemptRepository) GetAttempt(ctx context.Context, attemptID string) (*domain.ExamAttemptModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    id, cycle_id, learner_id, lesson_id, status, question_ids_json, answers_json,
    exam_score, final_score, passed, started_at, submitted_at
FROM
    exam_attempt
WHERE
    id = $1
	`, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		return scanAttempt(rows)
	}
	return nil, nil
}

func (repo *AttemptRepository) GetOpenAttempt(ctx context.Context, cycleID string) (*domain.ExamAttemptModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    id, cycle_id, learner_id, lesson_id, status, question_ids_json, answers_json,
    exam_score, final_score, passed, started_at, submitted_at
FROM
    exam_attempt
WHERE
    cycle_id = $1 AND status = 'in_progress'
LIMIT 1
	`, cycleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		return scanAttempt(rows)
	}
	return nil, nil
}

// SubmitAttempt conditional in_progress -> submitted flip, atomic with the
// result write. Zero affected rows means another submit got there first.
func (repo *AttemptRepository) SubmitAttempt(ctx context.Context, attemptID string, answers []domain.AnswerModel, result *domain.ExamResultModel, at time.Time) (bool, error) {
	conn := repo.Conn
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return false, err
	}
	res, err := conn.ExecContext(ctx, `
UPDATE exam_attempt
SET
    status = 'submitted',
    answers_json = $2,
    exam_score = $3,
    final_score = $4,
    passed = $5,
    submitted_at = $6
WHERE
    id = $1 AND status = 'in_progress'
	`, attemptID, string(answersJSON), result.ExamScore, result.FinalScore, result.Passed, at.Unix())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func scanCycle(rows driver.ISQLRows) (*domain.AttemptCycleModel, error) {
	item := new(domain.AttemptCycleModel)
	var closedAt sql.NullInt64
	if err := rows.Scan(&item.ID, &item.LearnerID, &item.LessonID, &item.Number,
		&item.TryIndex, &item.Passed, &closedAt); err != nil {
		return nil, err
	}
	if closedAt.Valid {
		t := time.Unix(closedAt.Int64, 0)
		item.ClosedAt = &t
	}
	return item, nil
}

func scanAttempt(rows driver.ISQLRows) (*domain.ExamAttemptModel, error) {
	item := new(domain.ExamAttemptModel)
	var (
		questionIDs string
		answers     sql.NullString
		startedAt   int64
		submittedAt sql.NullInt64
	)
	if err := rows.Scan(&item.ID, &item.CycleID, &item.LearnerID, &item.LessonID, &item.Status,
		&questionIDs, &answers, &item.ExamScore, &item.FinalScore, &item.Passed,
		&startedAt, &submittedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(questionIDs), &item.QuestionIDs); err != nil {
		return nil, err
	}
	if answers.Valid && answers.String != "" {
		if err := json.Unmarshal([]byte(answers.String), &item.Answers); err != nil {
			return nil, err
		}
	}
	item.StartedAt = time.Unix(startedAt, 0)
	if submittedAt.Valid {
		t := time.Unix(submittedAt.Int64, 0)
		item.SubmittedAt = &t
	}
	return item, nil
}
