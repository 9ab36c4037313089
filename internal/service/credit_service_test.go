package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

type mockCreditLedgerRepo struct {
	balances  map[string][]models.CourseCreditSummary
	entries   map[string][]models.CreditEntry
	applied   []models.CreditEntry
	listCalls int
}

func (m *mockCreditLedgerRepo) ApplyDelta(ctx context.Context, exec sqlx.ExtContext, entry *models.CreditEntry) error {
	m.applied = append(m.applied, *entry)
	return nil
}

func (m *mockCreditLedgerRepo) ListBalancesByStudent(ctx context.Context, studentID string) ([]models.CourseCreditSummary, error) {
	m.listCalls++
	return m.balances[studentID], nil
}

func (m *mockCreditLedgerRepo) ListEntriesByStudent(ctx context.Context, studentID string) ([]models.CreditEntry, error) {
	return m.entries[studentID], nil
}

type mockBalanceCache struct {
	mu      sync.Mutex
	store   map[string][]byte
	deleted []string
}

func newMockBalanceCache() *mockBalanceCache {
	return &mockBalanceCache{store: map[string][]byte{}}
}

func (m *mockBalanceCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	raw, ok := m.store[key]
	m.mu.Unlock()
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockBalanceCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.store[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *mockBalanceCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, pattern)
	for key := range m.store {
		delete(m.store, key)
	}
	return nil
}

func (m *mockBalanceCache) deletedPatterns() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

func (m *mockBalanceCache) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.store)
}

type mockStatementRenderer struct {
	rendered bool
}

func (m *mockStatementRenderer) Render(studentID string, balances []models.CourseCreditSummary, entries []models.CreditEntry) ([]byte, error) {
	m.rendered = true
	return []byte("%PDF-1.4"), nil
}

func newCreditFixture() (*CreditService, *mockCreditLedgerRepo, *mockBalanceCache, *mockStatementRenderer) {
	repo := &mockCreditLedgerRepo{
		balances: map[string][]models.CourseCreditSummary{
			"s1": {{CourseID: "math", CourseName: "Math", Credit: -2}},
		},
		entries: map[string][]models.CreditEntry{
			"s1": {{ID: "e1", StudentID: "s1", CourseID: "math", Delta: -1, Reason: models.CreditReasonAttendance}},
		},
	}
	courses := &mockCourseReader{courses: map[string]*models.Course{"math": {ID: "math", Name: "Math"}}}
	cache := newMockBalanceCache()
	exporter := &mockStatementRenderer{}
	svc := NewCreditService(repo, courses, cache, exporter, validator.New(), zap.NewNop(), CreditServiceConfig{})
	return svc, repo, cache, exporter
}

func TestGetStudentBalancesCachesReads(t *testing.T) {
	svc, repo, _, _ := newCreditFixture()

	balances, err := svc.GetStudentBalances(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, -2, balances[0].Credit)
	assert.Equal(t, 1, repo.listCalls)

	// Second read is served from the cache.
	balances, err = svc.GetStudentBalances(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestGetStudentBalancesEmpty(t *testing.T) {
	svc, _, _, _ := newCreditFixture()

	balances, err := svc.GetStudentBalances(context.Background(), "unknown")
	require.NoError(t, err)
	assert.NotNil(t, balances)
	assert.Empty(t, balances)
}

func TestTopUpAppendsPositiveEntry(t *testing.T) {
	svc, repo, _, _ := newCreditFixture()

	entry, err := svc.TopUp(context.Background(), "s1", dto.TopUpCreditRequest{CourseID: "math", Amount: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, entry.Delta)
	assert.Equal(t, models.CreditReasonTopUp, entry.Reason)
	assert.Nil(t, entry.SessionID)

	require.Len(t, repo.applied, 1)
	assert.Equal(t, "s1", repo.applied[0].StudentID)
}

func TestTopUpRejectsNonPositiveAmount(t *testing.T) {
	svc, repo, _, _ := newCreditFixture()

	_, err := svc.TopUp(context.Background(), "s1", dto.TopUpCreditRequest{CourseID: "math", Amount: 0})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", appErrors.FromError(err).Code)
	assert.Empty(t, repo.applied)
}

func TestTopUpUnknownCourse(t *testing.T) {
	svc, _, _, _ := newCreditFixture()

	_, err := svc.TopUp(context.Background(), "s1", dto.TopUpCreditRequest{CourseID: "missing", Amount: 5})
	require.Error(t, err)
	assert.Equal(t, "COURSE_NOT_FOUND", appErrors.FromError(err).Code)
}

func TestListLedgerNewestFirst(t *testing.T) {
	svc, _, _, _ := newCreditFixture()

	entries, err := svc.ListLedger(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "e1", entries[0].ID)

	entries, err = svc.ListLedger(context.Background(), "unknown")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestStatementPDF(t *testing.T) {
	svc, _, _, exporter := newCreditFixture()

	payload, err := svc.StatementPDF(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, exporter.rendered)
	assert.NotEmpty(t, payload)
}

func TestInvalidationQueueClearsCache(t *testing.T) {
	svc, _, cache, _ := newCreditFixture()
	svc.StartInvalidationQueue(context.Background())
	defer svc.StopInvalidationQueue()

	_, err := svc.GetStudentBalances(context.Background(), "s1")
	require.NoError(t, err)
	require.NotZero(t, cache.size())

	svc.InvalidateStudentBalances("s1")
	require.Eventually(t, func() bool {
		return len(cache.deletedPatterns()) > 0
	}, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, cache.deletedPatterns(), "credits:student:s1")
	assert.Zero(t, cache.size())
}
