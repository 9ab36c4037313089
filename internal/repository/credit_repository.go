package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

// CreditRepository owns the credit ledger: an append-only entry table plus
// a materialized per-(student, course) balance kept in step within the
// same transaction.
type CreditRepository struct {
	db *sqlx.DB
}

// NewCreditRepository constructs the repository.
func NewCreditRepository(db *sqlx.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ApplyDelta appends a ledger entry and folds its delta into the
// materialized balance, creating the balance row lazily. Both writes run
// against the caller's transaction; balances have no floor or ceiling.
func (r *CreditRepository) ApplyDelta(ctx context.Context, exec sqlx.ExtContext, entry *models.CreditEntry) error {
	target := r.exec(exec)
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	const insertEntry = `INSERT INTO credit_entries (id, student_id, course_id, delta, reason, session_id, created_at)
VALUES (:id, :student_id, :course_id, :delta, :reason, :session_id, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insertEntry, entry); err != nil {
		return fmt.Errorf("append credit entry: %w", err)
	}

	const upsertBalance = `INSERT INTO course_credits (student_id, course_id, credit, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (student_id, course_id) DO UPDATE
SET credit = course_credits.credit + EXCLUDED.credit, updated_at = EXCLUDED.updated_at`
	if _, err := target.ExecContext(ctx, upsertBalance, entry.StudentID, entry.CourseID, entry.Delta, entry.CreatedAt); err != nil {
		return fmt.Errorf("apply credit delta: %w", err)
	}
	return nil
}

// GetBalance returns the materialized balance, or sql.ErrNoRows when no
// entry has ever been applied for the pair.
func (r *CreditRepository) GetBalance(ctx context.Context, studentID, courseID string) (*models.CourseCredit, error) {
	const query = `SELECT student_id, course_id, credit, updated_at
FROM course_credits WHERE student_id = $1 AND course_id = $2`
	var balance models.CourseCredit
	if err := r.db.GetContext(ctx, &balance, query, studentID, courseID); err != nil {
		return nil, err
	}
	return &balance, nil
}

// HasSessionDebit reports whether a student was already charged for a
// session. The amend flow uses this to avoid double debits.
func (r *CreditRepository) HasSessionDebit(ctx context.Context, sessionID, studentID string) (bool, error) {
	const query = `SELECT 1 FROM credit_entries WHERE session_id = $1 AND student_id = $2 LIMIT 1`
	var exists int
	err := r.db.GetContext(ctx, &exists, query, sessionID, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check session debit: %w", err)
	}
	return true, nil
}

// ListBalancesByStudent returns all course balances for a student.
func (r *CreditRepository) ListBalancesByStudent(ctx context.Context, studentID string) ([]models.CourseCreditSummary, error) {
	const query = `SELECT cc.course_id, c.name AS course_name, cc.credit
FROM course_credits cc
JOIN courses c ON c.id = cc.course_id
WHERE cc.student_id = $1
ORDER BY c.name ASC`
	var summaries []models.CourseCreditSummary
	if err := r.db.SelectContext(ctx, &summaries, query, studentID); err != nil {
		return nil, fmt.Errorf("list student balances: %w", err)
	}
	return summaries, nil
}

// ListEntriesByStudent returns the student's ledger entries, newest first.
func (r *CreditRepository) ListEntriesByStudent(ctx context.Context, studentID string) ([]models.CreditEntry, error) {
	const query = `SELECT id, student_id, course_id, delta, reason, session_id, created_at
FROM credit_entries WHERE student_id = $1 ORDER BY created_at DESC`
	var entries []models.CreditEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list credit entries: %w", err)
	}
	return entries, nil
}
