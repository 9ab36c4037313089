package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
	"github.com/tutorhub/class-ledger-api/pkg/jobs"
)

const balanceCacheKeyFormat = "credits:student:%s"

type creditLedgerRepository interface {
	ApplyDelta(ctx context.Context, exec sqlx.ExtContext, entry *models.CreditEntry) error
	ListBalancesByStudent(ctx context.Context, studentID string) ([]models.CourseCreditSummary, error)
	ListEntriesByStudent(ctx context.Context, studentID string) ([]models.CreditEntry, error)
}

type creditCourseReader interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type balanceCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type statementRenderer interface {
	Render(studentID string, balances []models.CourseCreditSummary, entries []models.CreditEntry) ([]byte, error)
}

// CreditServiceConfig tunes the read-side cache.
type CreditServiceConfig struct {
	CacheTTL time.Duration
}

// CreditService exposes the credit ledger: cached balance reads, admin
// top-ups, ledger listings and PDF statements. It also owns the
// invalidation queue other services signal through.
type CreditService struct {
	credits   creditLedgerRepository
	courses   creditCourseReader
	cache     balanceCache
	exporter  statementRenderer
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration

	invalidations *jobs.Queue
}

// NewCreditService wires the service and its background invalidation queue.
// Call StartInvalidationQueue before serving traffic and StopInvalidationQueue
// on shutdown.
func NewCreditService(
	credits creditLedgerRepository,
	courses creditCourseReader,
	cache balanceCache,
	exporter statementRenderer,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg CreditServiceConfig,
) *CreditService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	s := &CreditService{
		credits:   credits,
		courses:   courses,
		cache:     cache,
		exporter:  exporter,
		validator: validate,
		logger:    logger,
		cacheTTL:  cfg.CacheTTL,
	}
	s.invalidations = jobs.NewQueue("balance-cache-invalidation", s.handleInvalidation, jobs.QueueConfig{
		Workers: 2,
		Logger:  logger,
	})
	return s
}

// StartInvalidationQueue starts the background invalidation workers.
func (s *CreditService) StartInvalidationQueue(ctx context.Context) {
	s.invalidations.Start(ctx)
}

// StopInvalidationQueue drains and stops the background workers.
func (s *CreditService) StopInvalidationQueue() {
	s.invalidations.Stop()
}

// InvalidateStudentBalances queues a cache invalidation for the student.
// Failures only delay cache freshness, the ledger itself is unaffected, so
// enqueue errors are logged and swallowed.
func (s *CreditService) InvalidateStudentBalances(studentID string) {
	task := jobs.Task{
		ID:      uuid.NewString(),
		Kind:    "invalidate-balances",
		Payload: studentID,
	}
	if err := s.invalidations.Enqueue(task); err != nil {
		s.logger.Warn("failed to queue balance invalidation",
			zap.String("student_id", studentID),
			zap.Error(err),
		)
	}
}

func (s *CreditService) handleInvalidation(ctx context.Context, task jobs.Task) error {
	studentID, ok := task.Payload.(string)
	if !ok {
		s.logger.Error("invalid invalidation payload", zap.String("task_id", task.ID))
		return nil
	}
	return s.cache.DeleteByPattern(ctx, fmt.Sprintf(balanceCacheKeyFormat, studentID))
}

// GetStudentBalances returns the student's per-course balances, served from
// cache when fresh.
func (s *CreditService) GetStudentBalances(ctx context.Context, studentID string) ([]models.CourseCreditSummary, error) {
	key := fmt.Sprintf(balanceCacheKeyFormat, studentID)

	var cached []models.CourseCreditSummary
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	} else if err != appErrors.ErrCacheMiss {
		s.logger.Warn("balance cache read failed", zap.String("student_id", studentID), zap.Error(err))
	}

	balances, err := s.credits.ListBalancesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list balances")
	}
	if balances == nil {
		balances = []models.CourseCreditSummary{}
	}

	if err := s.cache.Set(ctx, key, balances, s.cacheTTL); err != nil {
		s.logger.Warn("balance cache write failed", zap.String("student_id", studentID), zap.Error(err))
	}
	return balances, nil
}

// TopUp appends a positive ledger entry for a student and course.
func (s *CreditService) TopUp(ctx context.Context, studentID string, req dto.TopUpCreditRequest) (*models.CreditEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid top-up payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.ErrCourseNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	entry := models.CreditEntry{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Delta:     req.Amount,
		Reason:    models.CreditReasonTopUp,
	}
	if err := s.credits.ApplyDelta(ctx, nil, &entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to apply top-up")
	}

	s.InvalidateStudentBalances(studentID)
	s.logger.Info("credit top-up applied",
		zap.String("student_id", studentID),
		zap.String("course_id", req.CourseID),
		zap.Int("amount", req.Amount),
	)
	return &entry, nil
}

// ListLedger returns the student's ledger entries, newest first.
func (s *CreditService) ListLedger(ctx context.Context, studentID string) ([]models.CreditEntry, error) {
	entries, err := s.credits.ListEntriesByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list ledger entries")
	}
	if entries == nil {
		entries = []models.CreditEntry{}
	}
	return entries, nil
}

// StatementPDF renders the student's balances and ledger as a PDF document.
func (s *CreditService) StatementPDF(ctx context.Context, studentID string) ([]byte, error) {
	balances, err := s.GetStudentBalances(ctx, studentID)
	if err != nil {
		return nil, err
	}
	entries, err := s.ListLedger(ctx, studentID)
	if err != nil {
		return nil, err
	}

	payload, err := s.exporter.Render(studentID, balances, entries)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render statement")
	}
	return payload, nil
}
