package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

type attendanceSessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.ClassSession, error)
	MarkAttendanceTaken(ctx context.Context, id, teacherID string, at time.Time) (bool, error)
	RestampAttendance(ctx context.Context, id, teacherID string, at time.Time) error
}

type rosterWriter interface {
	UpsertAttended(ctx context.Context, exec sqlx.ExtContext, row models.TakingClass) error
}

type creditDebiter interface {
	ApplyDelta(ctx context.Context, exec sqlx.ExtContext, entry *models.CreditEntry) error
	HasSessionDebit(ctx context.Context, sessionID, studentID string) (bool, error)
}

type balanceCacheInvalidator interface {
	InvalidateStudentBalances(studentID string)
}

type attendanceRecorder interface {
	AttendanceCall()
	CreditDebits(count int)
}

// AttendanceService records attendance calls and drives the credit ledger.
// A take is a one-shot state transition per session; amendments go through
// a separate path that never charges twice.
type AttendanceService struct {
	sessions  attendanceSessionRepository
	roster    rosterWriter
	credits   creditDebiter
	tx        txProvider
	cache     balanceCacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	metrics   attendanceRecorder
}

// NewAttendanceService wires the service dependencies.
func NewAttendanceService(
	sessions attendanceSessionRepository,
	roster rosterWriter,
	credits creditDebiter,
	tx txProvider,
	cache balanceCacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics attendanceRecorder,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		sessions:  sessions,
		roster:    roster,
		credits:   credits,
		tx:        tx,
		cache:     cache,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
	}
}

// TakeAttendance records the roster outcomes for a session and debits one
// credit from every listed student, attended or not. The conditional state
// flip guarantees a session is only ever charged once; each student's debit
// and roster row commit together so a mid-call failure leaves no student
// half-charged.
func (s *AttendanceService) TakeAttendance(ctx context.Context, teacherID, sessionID string, req dto.TakeAttendanceRequest) (*dto.AttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	claimed, err := s.sessions.MarkAttendanceTaken(ctx, sessionID, teacherID, time.Now().UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to claim attendance")
	}
	if !claimed {
		return nil, appErrors.ErrAttendanceTaken
	}

	result := &dto.AttendanceResult{SessionID: sessionID}
	for _, outcome := range req.Outcomes {
		if err := s.recordOutcome(ctx, session, outcome, true); err != nil {
			s.logger.Error("attendance outcome failed",
				zap.String("session_id", sessionID),
				zap.String("student_id", outcome.StudentID),
				zap.Error(err),
			)
			return nil, err
		}
		result.StudentsDebited++
		result.RosterRowsWritten++
		if s.cache != nil {
			s.cache.InvalidateStudentBalances(outcome.StudentID)
		}
	}

	if s.metrics != nil {
		s.metrics.AttendanceCall()
		s.metrics.CreditDebits(result.StudentsDebited)
	}
	s.logger.Info("attendance taken",
		zap.String("session_id", sessionID),
		zap.String("teacher_id", teacherID),
		zap.Int("students", result.StudentsDebited),
	)
	return result, nil
}

// AmendAttendance corrects roster outcomes on an already taken session.
// Students never charged for the session are debited now; students with an
// existing ledger entry only get their roster row updated.
func (s *AttendanceService) AmendAttendance(ctx context.Context, teacherID, sessionID string, req dto.AmendAttendanceRequest) (*dto.AttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if !session.AttendanceTaken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance has not been taken for this session")
	}

	result := &dto.AttendanceResult{SessionID: sessionID}
	for _, outcome := range req.Outcomes {
		debited, err := s.credits.HasSessionDebit(ctx, sessionID, outcome.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to check ledger")
		}
		if err := s.recordOutcome(ctx, session, outcome, !debited); err != nil {
			return nil, err
		}
		result.RosterRowsWritten++
		if !debited {
			result.StudentsDebited++
		}
		if s.cache != nil {
			s.cache.InvalidateStudentBalances(outcome.StudentID)
		}
	}

	if err := s.sessions.RestampAttendance(ctx, sessionID, teacherID, time.Now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to restamp attendance")
	}

	if s.metrics != nil && result.StudentsDebited > 0 {
		s.metrics.CreditDebits(result.StudentsDebited)
	}
	s.logger.Info("attendance amended",
		zap.String("session_id", sessionID),
		zap.String("teacher_id", teacherID),
		zap.Int("roster_rows", result.RosterRowsWritten),
		zap.Int("new_debits", result.StudentsDebited),
	)
	return result, nil
}

// recordOutcome writes one student's roster row, and their debit when
// charge is set, in a single transaction.
func (s *AttendanceService) recordOutcome(ctx context.Context, session *models.ClassSession, outcome dto.AttendanceOutcome, charge bool) (err error) {
	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin attendance transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if charge {
		sessionID := session.ID
		entry := models.CreditEntry{
			StudentID: outcome.StudentID,
			CourseID:  session.CourseID,
			Delta:     -1,
			Reason:    models.CreditReasonAttendance,
			SessionID: &sessionID,
		}
		if err = s.credits.ApplyDelta(ctx, tx, &entry); err != nil {
			err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to debit credit")
			return err
		}
	}

	row := models.TakingClass{
		SessionID: session.ID,
		StudentID: outcome.StudentID,
		Attended:  outcome.Attended,
		Comments:  outcome.Comments,
	}
	if err = s.roster.UpsertAttended(ctx, tx, row); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to write roster row")
		return err
	}

	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit attendance transaction")
		return err
	}
	return nil
}
