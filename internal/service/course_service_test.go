package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

type mockCourseRepo struct {
	courses map[string]*models.Course
	names   map[string]bool
	deleted []string
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{courses: map[string]*models.Course{}, names: map[string]bool{}}
}

func (m *mockCourseRepo) FindByID(ctx context.Context, id string) (*models.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return m.names[name], nil
}

func (m *mockCourseRepo) List(ctx context.Context) ([]models.Course, error) {
	var list []models.Course
	for _, c := range m.courses {
		list = append(list, *c)
	}
	return list, nil
}

func (m *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = "new-course"
	}
	m.courses[course.ID] = course
	m.names[course.Name] = true
	return nil
}

func (m *mockCourseRepo) UpdateName(ctx context.Context, id, name string) error {
	c, ok := m.courses[id]
	if !ok {
		return sql.ErrNoRows
	}
	c.Name = name
	return nil
}

func (m *mockCourseRepo) SoftDelete(ctx context.Context, id string) error {
	if _, ok := m.courses[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.courses, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCourseServiceCreate(t *testing.T) {
	repo := newMockCourseRepo()
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	course, err := svc.Create(context.Background(), dto.CreateCourseRequest{Name: "Piano"})
	require.NoError(t, err)
	assert.NotEmpty(t, course.ID)
	assert.Equal(t, "Piano", course.Name)
}

func TestCourseServiceCreateDuplicateName(t *testing.T) {
	repo := newMockCourseRepo()
	repo.names["Piano"] = true
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), dto.CreateCourseRequest{Name: "Piano"})
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", appErrors.FromError(err).Code)
}

func TestCourseServiceRenameMissing(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), validator.New(), zap.NewNop())

	err := svc.Rename(context.Background(), "missing", dto.UpdateCourseRequest{Name: "Violin"})
	require.Error(t, err)
	assert.Equal(t, "COURSE_NOT_FOUND", appErrors.FromError(err).Code)
}

func TestCourseServiceDelete(t *testing.T) {
	repo := newMockCourseRepo()
	repo.courses["c1"] = &models.Course{ID: "c1", Name: "Piano"}
	svc := NewCourseService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "c1"))
	assert.Contains(t, repo.deleted, "c1")

	err := svc.Delete(context.Background(), "c1")
	require.Error(t, err)
	assert.Equal(t, "COURSE_NOT_FOUND", appErrors.FromError(err).Code)
}

func TestCourseServiceListEmpty(t *testing.T) {
	svc := NewCourseService(newMockCourseRepo(), validator.New(), zap.NewNop())

	courses, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}
