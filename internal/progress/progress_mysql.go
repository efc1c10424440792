package progress

import (
	"context"
	"strings"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
)

type ProgressRepository struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ domain.ProgressRepository = &ProgressRepository{}

func NewProgressRepository(Conn driver.ITransactionalDB) *ProgressRepository {
	return &ProgressRepository{
		Conn: Conn,
	}
}

// MergeProgress monotone max-merge on the (learner, lesson) row.
//
// The UPDATE applies GREATEST against the stored value in a single
// statement, so two concurrent reports both land on the larger of the two
// no matter how the database interleaves them. The row is created lazily on
// first report; a duplicate-key race on the INSERT is resolved by falling
// through to the UPDATE path.
func (repo *ProgressRepository) MergeProgress(ctx context.Context, learnerID string, report *domain.ProgressReport) (*domain.LessonProgressModel, error) {
	conn := repo.Conn

	existing, err := repo.GetProgress(ctx, learnerID, report.LessonID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		_, err := conn.ExecContext(ctx, `
INSERT INTO lesson_progress (learner_id, lesson_id, furthest_seconds, duration_seconds)
VALUES ($1, $2, 0, $3)
		`, learnerID, report.LessonID, report.VideoDuration)
		if err != nil && !isDuplicateKey(err) {
			return nil, err
		}
	}

	_, err = conn.ExecContext(ctx, `
UPDATE lesson_progress
SET
    furthest_seconds = GREATEST(furthest_seconds, $3),
    duration_seconds = $4
WHERE
    learner_id = $1 AND lesson_id = $2
	`, learnerID, report.LessonID, report.MaxReached, report.VideoDuration)
	if err != nil {
		return nil, err
	}
	return repo.GetProgress(ctx, learnerID, report.LessonID)
}

func (repo *ProgressRepository) GetProgress(ctx context.Context, learnerID, lessonID string) (*domain.LessonProgressModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    learner_id, lesson_id, furthest_seconds, duration_seconds
FROM
    lesson_progress
WHERE
    learner_id = $1 AND lesson_id = $2
	`, learnerID, lessonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		item := new(domain.LessonProgressModel)
		if err := rows.Scan(&item.LearnerID, &item.LessonID, &item.FurthestSeconds, &item.DurationSeconds); err != nil {
			return nil, err
		}
		item.Percent = domain.ProgressPercent(item.FurthestSeconds, item.DurationSeconds)
		return item, nil
	}
	return nil, nil
}

func (repo *ProgressRepository) GetProgressByLearner(ctx context.Context, learnerID string) ([]*domain.LessonProgressModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    lp.learner_id, lp.lesson_id, lp.furthest_seconds, lp.duration_seconds, l.title
FROM
    lesson_progress lp
        LEFT JOIN
    lesson l ON (l.id = lp.lesson_id)
WHERE
    lp.learner_id = $1
	`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.LessonProgressModel
	for rows.Next() {
		item := new(domain.LessonProgressModel)
		if err := rows.Scan(&item.LearnerID, &item.LessonID, &item.FurthestSeconds, &item.DurationSeconds, &item.Title); err != nil {
			return nil, err
		}
		item.Percent = domain.ProgressPercent(item.FurthestSeconds, item.DurationSeconds)
		result = append(result, item)
	}
	return result, nil
}

// isDuplicateKey match unique violations across mysql (1062) and postgres (23505)
func isDuplicateKey(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "23505")
}
