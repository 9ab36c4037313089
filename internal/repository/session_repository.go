package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

// SessionRepository persists class session instances.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// BulkCreate inserts session instances, participating in the caller's
// transaction when exec is provided. The scheduler relies on this running
// inside one transaction so a partial series never becomes visible.
func (r *SessionRepository) BulkCreate(ctx context.Context, exec sqlx.ExtContext, sessions []models.ClassSession) error {
	if len(sessions) == 0 {
		return nil
	}
	target := r.exec(exec)
	now := time.Now().UTC()

	const query = `
INSERT INTO class_sessions (id, series_id, course_id, start_time, duration_minutes, info, attendance_taken, deleted, created_at)
VALUES (:id, :series_id, :course_id, :start_time, :duration_minutes, :info, FALSE, FALSE, :created_at)`

	for i := range sessions {
		session := &sessions[i]
		if session.ID == "" {
			session.ID = uuid.NewString()
		}
		if session.CreatedAt.IsZero() {
			session.CreatedAt = now
		}
		if _, err := sqlx.NamedExecContext(ctx, target, query, session); err != nil {
			return fmt.Errorf("insert class session: %w", err)
		}
	}
	return nil
}

// FindByID returns a non-deleted session by its ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.ClassSession, error) {
	const query = `SELECT id, series_id, course_id, start_time, duration_minutes, info,
        attendance_taken, attendance_teacher_id, attendance_time, deleted, created_at
        FROM class_sessions WHERE id = $1 AND deleted = FALSE`
	var session models.ClassSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// MarkAttendanceTaken transitions a session from NotTaken to Taken. The
// conditional update doubles as a compare-and-swap: only one concurrent
// caller observes rows affected = 1.
func (r *SessionRepository) MarkAttendanceTaken(ctx context.Context, id, teacherID string, at time.Time) (bool, error) {
	const query = `UPDATE class_sessions
        SET attendance_taken = TRUE, attendance_teacher_id = $2, attendance_time = $3
        WHERE id = $1 AND deleted = FALSE AND attendance_taken = FALSE`
	result, err := r.db.ExecContext(ctx, query, id, teacherID, at)
	if err != nil {
		return false, fmt.Errorf("mark attendance taken: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark attendance taken: %w", err)
	}
	return affected == 1, nil
}

// RestampAttendance updates the attendance stamp on an already taken
// session. Used by the amend flow only.
func (r *SessionRepository) RestampAttendance(ctx context.Context, id, teacherID string, at time.Time) error {
	const query = `UPDATE class_sessions
        SET attendance_teacher_id = $2, attendance_time = $3
        WHERE id = $1 AND deleted = FALSE AND attendance_taken = TRUE`
	if _, err := r.db.ExecContext(ctx, query, id, teacherID, at); err != nil {
		return fmt.Errorf("restamp attendance: %w", err)
	}
	return nil
}

// ListByTeacher returns a teacher's sessions within a time window.
func (r *SessionRepository) ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.SessionDetail, error) {
	const query = `SELECT cs.id, cs.series_id, cs.course_id, cs.start_time, cs.duration_minutes, cs.info,
        cs.attendance_taken, cs.attendance_teacher_id, cs.attendance_time, cs.deleted, cs.created_at,
        c.name AS course_name
        FROM class_sessions cs
        JOIN teachings t ON t.session_id = cs.id
        JOIN courses c ON c.id = cs.course_id
        WHERE cs.deleted = FALSE AND t.teacher_id = $1
          AND cs.start_time >= $2 AND cs.start_time <= $3
        ORDER BY cs.start_time ASC`
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, teacherID, from, to); err != nil {
		return nil, fmt.Errorf("list teacher sessions: %w", err)
	}
	return sessions, nil
}

// ListByStudent returns a student's sessions within a time window,
// including the roster attended flag.
func (r *SessionRepository) ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.StudentSessionDetail, error) {
	const query = `SELECT cs.id, cs.series_id, cs.course_id, cs.start_time, cs.duration_minutes, cs.info,
        cs.attendance_taken, cs.attendance_teacher_id, cs.attendance_time, cs.deleted, cs.created_at,
        c.name AS course_name, tc.attended
        FROM class_sessions cs
        JOIN taking_classes tc ON tc.session_id = cs.id
        JOIN courses c ON c.id = cs.course_id
        WHERE cs.deleted = FALSE AND tc.student_id = $1
          AND cs.start_time >= $2 AND cs.start_time <= $3
        ORDER BY cs.start_time ASC`
	var sessions []models.StudentSessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student sessions: %w", err)
	}
	return sessions, nil
}
