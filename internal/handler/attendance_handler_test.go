package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/middleware"
	"github.com/tutorhub/class-ledger-api/internal/models"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
)

type attendanceServiceMock struct {
	takeErr error
	taken   []string
}

func (m *attendanceServiceMock) TakeAttendance(ctx context.Context, teacherID, sessionID string, req dto.TakeAttendanceRequest) (*dto.AttendanceResult, error) {
	if m.takeErr != nil {
		return nil, m.takeErr
	}
	m.taken = append(m.taken, sessionID)
	return &dto.AttendanceResult{SessionID: sessionID, StudentsDebited: len(req.Outcomes), RosterRowsWritten: len(req.Outcomes)}, nil
}

func (m *attendanceServiceMock) AmendAttendance(ctx context.Context, teacherID, sessionID string, req dto.AmendAttendanceRequest) (*dto.AttendanceResult, error) {
	return &dto.AttendanceResult{SessionID: sessionID, RosterRowsWritten: len(req.Outcomes)}, nil
}

func attendanceTestContext(t *testing.T, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/sessions/sess-1/attendance", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: "sess-1"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "teacher-1", Role: models.RoleTeacher})
	return c, w
}

func TestAttendanceHandlerTake(t *testing.T) {
	mock := &attendanceServiceMock{}
	handler := NewAttendanceHandler(mock)

	c, w := attendanceTestContext(t, `{"outcomes":[{"student_id":"s1","attended":true}]}`)
	handler.Take(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, mock.taken, "sess-1")
}

func TestAttendanceHandlerTakeInvalidBody(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{})

	c, w := attendanceTestContext(t, `{not json`)
	handler.Take(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerTakeConflict(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{takeErr: appErrors.ErrAttendanceTaken})

	c, w := attendanceTestContext(t, `{"outcomes":[{"student_id":"s1"}]}`)
	handler.Take(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAttendanceHandlerRequiresClaims(t *testing.T) {
	handler := NewAttendanceHandler(&attendanceServiceMock{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/sessions/sess-1/attendance", strings.NewReader(`{}`))
	require.NoError(t, err)
	c.Request = req

	handler.Take(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
