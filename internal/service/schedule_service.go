package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tutorhub/class-ledger-api/internal/civiltime"
	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

const defaultMaxWindowDays = 365

type sessionScheduleRepository interface {
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, sessions []models.ClassSession) error
	ListByTeacher(ctx context.Context, teacherID string, from, to time.Time) ([]models.SessionDetail, error)
	ListByStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.StudentSessionDetail, error)
}

type teachingWriter interface {
	BulkCreate(ctx context.Context, exec sqlx.ExtContext, teachings []models.Teaching) error
}

type rosterPlanner interface {
	BulkCreatePlanned(ctx context.Context, exec sqlx.ExtContext, rows []models.TakingClass) error
}

type scheduleCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type scheduleRecorder interface {
	SessionsGenerated(count int)
}

// ScheduleServiceConfig bounds the expander.
type ScheduleServiceConfig struct {
	MaxWindowDays int
}

// ScheduleService expands scheduling requests into concrete session
// instances. Expansion is deterministic and side-effect free until the
// single commit at the end, so a failed request can simply be retried.
type ScheduleService struct {
	sessions      sessionScheduleRepository
	teachings     teachingWriter
	roster        rosterPlanner
	courses       scheduleCourseReader
	tx            txProvider
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       scheduleRecorder
	maxWindowDays int
}

// NewScheduleService wires the expander's dependencies.
func NewScheduleService(
	sessions sessionScheduleRepository,
	teachings teachingWriter,
	roster rosterPlanner,
	courses scheduleCourseReader,
	tx txProvider,
	validate *validator.Validate,
	logger *zap.Logger,
	metrics scheduleRecorder,
	cfg ScheduleServiceConfig,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = defaultMaxWindowDays
	}
	return &ScheduleService{
		sessions:      sessions,
		teachings:     teachings,
		roster:        roster,
		courses:       courses,
		tx:            tx,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
		maxWindowDays: cfg.MaxWindowDays,
	}
}

// ScheduleSessions creates one session or a full weekly series, together
// with teaching assignments and planned roster rows, in one transaction.
func (s *ScheduleService) ScheduleSessions(ctx context.Context, teacherID string, req dto.ScheduleSessionsRequest) (*dto.ScheduleSessionsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scheduling payload")
	}
	if req.DurationMinutes <= 0 {
		return nil, appErrors.ErrInvalidDuration
	}

	start, err := civiltime.ParseCivil(req.StartTime)
	if err != nil {
		return nil, err
	}

	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrCourseNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	instants, seriesID, err := s.expand(start, req)
	if err != nil {
		return nil, err
	}

	sessions := make([]models.ClassSession, 0, len(instants))
	teachings := make([]models.Teaching, 0, len(instants))
	rosterRows := make([]models.TakingClass, 0, len(instants)*len(req.StudentIDs))
	now := time.Now().UTC()
	for _, instant := range instants {
		session := models.ClassSession{
			ID:              uuid.NewString(),
			SeriesID:        seriesID,
			CourseID:        req.CourseID,
			StartTime:       instant,
			DurationMinutes: req.DurationMinutes,
			Info:            req.Info,
			CreatedAt:       now,
		}
		sessions = append(sessions, session)
		teachings = append(teachings, models.Teaching{SessionID: session.ID, TeacherID: teacherID})
		for _, studentID := range req.StudentIDs {
			rosterRows = append(rosterRows, models.TakingClass{SessionID: session.ID, StudentID: studentID})
		}
	}

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to begin scheduling transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.sessions.BulkCreate(ctx, tx, sessions); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist sessions")
		return nil, err
	}
	if err = s.teachings.BulkCreate(ctx, tx, teachings); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist teaching assignments")
		return nil, err
	}
	if err = s.roster.BulkCreatePlanned(ctx, tx, rosterRows); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist roster rows")
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to commit scheduling transaction")
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.SessionsGenerated(len(sessions))
	}
	s.logger.Info("sessions scheduled",
		zap.String("course_id", req.CourseID),
		zap.String("teacher_id", teacherID),
		zap.Int("count", len(sessions)),
		zap.Bool("recurring", seriesID != nil),
	)

	ids := make([]string, len(sessions))
	for i, session := range sessions {
		ids[i] = session.ID
	}
	return &dto.ScheduleSessionsResponse{CreatedSessionIDs: ids, SeriesID: seriesID}, nil
}

// expand resolves the request into UTC instants, minting a series id for
// recurring requests.
func (s *ScheduleService) expand(start time.Time, req dto.ScheduleSessionsRequest) ([]time.Time, *string, error) {
	if !req.RepeatWeekly {
		return []time.Time{civiltime.ToUTC(start)}, nil, nil
	}

	if len(req.RepeatWeekdays) == 0 || req.RepeatUntil == "" {
		return nil, nil, appErrors.ErrMissingRecurrenceFields
	}

	until, err := civiltime.ParseCivil(req.RepeatUntil)
	if err != nil {
		return nil, nil, err
	}
	if until.Before(start) {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "repeat_until precedes start_time")
	}
	window := until.Sub(start)
	if window > time.Duration(s.maxWindowDays)*24*time.Hour {
		return nil, nil, appErrors.ErrWindowTooLong
	}

	weekdays, err := civiltime.NewWeekdaySet(req.RepeatWeekdays)
	if err != nil {
		return nil, nil, err
	}

	instants := civiltime.ExpandWeekly(start, until, weekdays)
	if len(instants) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "recurrence produces no sessions in the window")
	}

	seriesID := uuid.NewString()
	return instants, &seriesID, nil
}

// ListTeacherSessions returns a teacher's sessions within a civil time window.
func (s *ScheduleService) ListTeacherSessions(ctx context.Context, teacherID string, query dto.SessionWindowQuery) ([]models.SessionDetail, error) {
	from, to, err := s.parseWindow(query)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByTeacher(ctx, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher sessions")
	}
	return sessions, nil
}

// ListStudentSessions returns a student's sessions within a civil time window.
func (s *ScheduleService) ListStudentSessions(ctx context.Context, studentID string, query dto.SessionWindowQuery) ([]models.StudentSessionDetail, error) {
	from, to, err := s.parseWindow(query)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student sessions")
	}
	return sessions, nil
}

func (s *ScheduleService) parseWindow(query dto.SessionWindowQuery) (time.Time, time.Time, error) {
	if err := s.validator.Struct(query); err != nil {
		return time.Time{}, time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "from and to are required")
	}
	from, err := civiltime.ParseCivil(query.From)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := civiltime.ParseCivil(query.To)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return civiltime.ToUTC(from), civiltime.ToUTC(to), nil
}
