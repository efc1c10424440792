package enrollment

import (
	"context"
	"time"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
)

type EnrollmentRepository struct {
	Conn driver.ITransactionalDB `dep:""`
}

var _ domain.EnrollmentRepository = &EnrollmentRepository{}

func NewEnrollmentRepository(Conn driver.ITransactionalDB) *EnrollmentRepository {
	return &EnrollmentRepository{
		Conn: Conn,
	}
}

func (repo *EnrollmentRepository) GetEnrollment(ctx context.Context, learnerID string) (*domain.EnrollmentModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    learner_id, company_id, start_at, end_at
FROM
    enrollment
WHERE
    learner_id = $1
LIMIT 1
	`, learnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		item := new(domain.EnrollmentModel)
		var startAt, endAt int64
		if err := rows.Scan(&item.LearnerID, &item.CompanyID, &startAt, &endAt); err != nil {
			return nil, err
		}
		item.StartAt = time.Unix(startAt, 0)
		item.EndAt = time.Unix(endAt, 0)
		return item, nil
	}
	return nil, nil
}
