package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

// TeachingRepository links teachers to session instances.
type TeachingRepository struct {
	db *sqlx.DB
}

// NewTeachingRepository constructs the repository.
func NewTeachingRepository(db *sqlx.DB) *TeachingRepository {
	return &TeachingRepository{db: db}
}

func (r *TeachingRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkCreate inserts teaching assignments inside the caller's transaction.
func (r *TeachingRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, teachings []models.Teaching) error {
	if len(teachings) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `INSERT INTO teachings (session_id, teacher_id, comments) VALUES (:session_id, :teacher_id, :comments)`
	for i := range teachings {
		if _, err := sqlx.NamedExecContext(ctx, target, query, &teachings[i]); err != nil {
			return fmt.Errorf("insert teaching: %w", err)
		}
	}
	return nil
}

// ListBySession returns all teachers assigned to one session.
func (r *TeachingRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Teaching, error) {
	const query = `SELECT session_id, teacher_id, comments FROM teachings WHERE session_id = $1`
	var teachings []models.Teaching
	if err := r.db.SelectContext(ctx, &teachings, query, sessionID); err != nil {
		return nil, fmt.Errorf("list teachings: %w", err)
	}
	return teachings, nil
}
