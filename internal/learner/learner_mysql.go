package learner

import (
	"context"

	"github.com/athena-edu/learning-engine/internal/domain"
	"github.com/athena-edu/learning-engine/internal/infrastructure/driver"
	"github.com/athena-edu/learning-engine/internal/infrastructure/uuid"
	"github.com/go-sql-driver/mysql"
)

type LearnerRepository struct {
	Conn          driver.ITransactionalDB
	UUIDGenerator uuid.Generator
}

var _ domain.LearnerRepository = &LearnerRepository{}

func NewLearnerRepository(Conn driver.ITransactionalDB, UUIDGenerator uuid.Generator) *LearnerRepository {
	return &LearnerRepository{
		Conn:          Conn,
		UUIDGenerator: UUIDGenerator,
	}
}

// FindByCredential query learner with provided credential
func (repo *LearnerRepository) FindByCredential(ctx context.Context, post *domain.LearnerModel) (*domain.LearnerModel, error) {
	conn := repo.Conn
	rows, err := conn.QueryContext(ctx, `
SELECT
    id, username, password, email, company_id, login_retry
FROM
    learner
WHERE
    username = $1 OR email = $2
	`, post.Username, post.Email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if rows.Next() {
		item := new(domain.LearnerModel)
		if err := rows.Scan(&item.ID, &item.Username, &item.Password, &item.Email,
			&item.CompanyID, &item.LoginRetry); err != nil {
			return nil, err
		}
		return item, nil
	}
	return nil, nil
}

func (repo *LearnerRepository) SaveLearner(ctx context.Context, post *domain.LearnerModel) error {
	conn := repo.Conn
	UUIDGenerator := repo.UUIDGenerator
	if id, err := UUIDGenerator.Generate(); err == nil {
		post.ID = id
	} else {
		return err
	}

	_, err := conn.ExecContext(ctx, `
INSERT INTO learner (id, username, password, email, company_id)
VALUES ($1, $2, $3, $4, $5)
	`, post.ID, post.Username, post.Password, post.Email, post.CompanyID)

	if err, ok := err.(*mysql.MySQLError); ok && err.Number == 1062 {
		return domain.ErrDuplicatedLearner
	}
	return err
}

func (repo *LearnerRepository) UpdateLearner(ctx context.Context, post *domain.LearnerModel) error {
	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `
UPDATE learner
SET
    login_retry = $2, last_login = $3
WHERE
    id = $1
	`, post.ID, post.LoginRetry, post.LastLogin)
	return err
}
