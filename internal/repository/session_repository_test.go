package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSessionRepositoryBulkCreateInTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO class_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO class_sessions`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	seriesID := "series-1"
	sessions := []models.ClassSession{
		{CourseID: "math", SeriesID: &seriesID, StartTime: time.Now().UTC(), DurationMinutes: 60},
		{CourseID: "math", SeriesID: &seriesID, StartTime: time.Now().UTC().Add(48 * time.Hour), DurationMinutes: 60},
	}
	require.NoError(t, repo.BulkCreate(context.Background(), tx, sessions))
	require.NoError(t, tx.Commit())

	// ids are minted during insert
	require.NotEmpty(t, sessions[0].ID)
	require.NotEmpty(t, sessions[1].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryMarkAttendanceTaken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	at := time.Now().UTC()
	mock.ExpectExec(`UPDATE class_sessions`).
		WithArgs("sess-1", "teacher-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	claimed, err := repo.MarkAttendanceTaken(context.Background(), "sess-1", "teacher-1", at)
	require.NoError(t, err)
	require.True(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryMarkAttendanceTakenAlreadyTaken(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	at := time.Now().UTC()
	// Conditional update matches no rows once attendance_taken flipped.
	mock.ExpectExec(`UPDATE class_sessions`).
		WithArgs("sess-1", "teacher-2", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := repo.MarkAttendanceTaken(context.Background(), "sess-1", "teacher-2", at)
	require.NoError(t, err)
	require.False(t, claimed)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	from := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2023, 4, 30, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "series_id", "course_id", "start_time", "duration_minutes", "info", "attendance_taken", "attendance_teacher_id", "attendance_time", "deleted", "created_at", "course_name"}).
		AddRow("sess-1", nil, "math", from.Add(24*time.Hour), 60, "", false, nil, nil, false, from, "Math")
	mock.ExpectQuery(`SELECT cs\.id, cs\.series_id`).
		WithArgs("teacher-1", from, to).
		WillReturnRows(rows)

	sessions, err := repo.ListByTeacher(context.Background(), "teacher-1", from, to)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "Math", sessions[0].CourseName)
	require.NoError(t, mock.ExpectationsWereMet())
}
