package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/class-ledger-api/internal/models"
)

func TestRosterRepositoryBulkCreatePlanned(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO taking_classes`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO taking_classes`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	rows := []models.TakingClass{
		{SessionID: "sess-1", StudentID: "s1"},
		{SessionID: "sess-1", StudentID: "s2"},
	}
	require.NoError(t, repo.BulkCreatePlanned(context.Background(), tx, rows))
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryBulkCreatePlannedEmpty(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	// No SQL expected for an empty batch.
	require.NoError(t, repo.BulkCreatePlanned(context.Background(), nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRosterRepositoryUpsertAttended(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewRosterRepository(db)

	mock.ExpectExec(`INSERT INTO taking_classes`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	row := models.TakingClass{SessionID: "sess-1", StudentID: "s1", Attended: true, Comments: "on time"}
	require.NoError(t, repo.UpsertAttended(context.Background(), nil, row))
	require.NoError(t, mock.ExpectationsWereMet())
}
