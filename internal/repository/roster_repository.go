package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

// RosterRepository persists taking_classes rows: a student's planned or
// actual participation in one session instance.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs the repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

func (r *RosterRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkCreatePlanned inserts planned roster rows (attended=false) inside the
// caller's transaction. Duplicate plans for the same (session, student) are
// ignored so re-running a scheduling request stays safe.
func (r *RosterRepository) BulkCreatePlanned(ctx context.Context, exec sqlx.ExtContext, rows []models.TakingClass) error {
	if len(rows) == 0 {
		return nil
	}
	target := r.exec(exec)

	const query = `INSERT INTO taking_classes (session_id, student_id, attended, comments)
VALUES (:session_id, :student_id, FALSE, :comments)
ON CONFLICT (session_id, student_id) DO NOTHING`
	for i := range rows {
		if _, err := sqlx.NamedExecContext(ctx, target, query, &rows[i]); err != nil {
			return fmt.Errorf("insert roster row: %w", err)
		}
	}
	return nil
}

// UpsertAttended records a student's outcome for a session, creating the
// roster row when the student was not on the planned roster.
func (r *RosterRepository) UpsertAttended(ctx context.Context, exec sqlx.ExtContext, row models.TakingClass) error {
	target := r.exec(exec)

	const query = `INSERT INTO taking_classes (session_id, student_id, attended, comments)
VALUES (:session_id, :student_id, :attended, :comments)
ON CONFLICT (session_id, student_id) DO UPDATE
SET attended = EXCLUDED.attended, comments = EXCLUDED.comments`
	if _, err := sqlx.NamedExecContext(ctx, target, query, &row); err != nil {
		return fmt.Errorf("upsert roster row: %w", err)
	}
	return nil
}

// Find returns one roster row, or sql.ErrNoRows when absent.
func (r *RosterRepository) Find(ctx context.Context, sessionID, studentID string) (*models.TakingClass, error) {
	const query = `SELECT session_id, student_id, attended, comments
FROM taking_classes WHERE session_id = $1 AND student_id = $2`
	var row models.TakingClass
	if err := r.db.GetContext(ctx, &row, query, sessionID, studentID); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListBySession returns all roster rows for one session.
func (r *RosterRepository) ListBySession(ctx context.Context, sessionID string) ([]models.TakingClass, error) {
	const query = `SELECT session_id, student_id, attended, comments
FROM taking_classes WHERE session_id = $1 ORDER BY student_id ASC`
	var rows []models.TakingClass
	if err := r.db.SelectContext(ctx, &rows, query, sessionID); err != nil {
		return nil, fmt.Errorf("list roster rows: %w", err)
	}
	return rows, nil
}
