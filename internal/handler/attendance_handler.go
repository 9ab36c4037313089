package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
	"github.com/tutorhub/class-ledger-api/pkg/response"
)

type attendanceCaller interface {
	TakeAttendance(ctx context.Context, teacherID, sessionID string, req dto.TakeAttendanceRequest) (*dto.AttendanceResult, error)
	AmendAttendance(ctx context.Context, teacherID, sessionID string, req dto.AmendAttendanceRequest) (*dto.AttendanceResult, error)
}

// AttendanceHandler exposes the attendance call endpoints.
type AttendanceHandler struct {
	attendance attendanceCaller
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance attendanceCaller) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// Take godoc
// @Summary Take attendance for a session and debit credits
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.TakeAttendanceRequest true "Attendance outcomes"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /sessions/{id}/attendance [post]
func (h *AttendanceHandler) Take(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.TakeAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.attendance.TakeAttendance(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Amend godoc
// @Summary Amend a previously taken attendance call
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.AmendAttendanceRequest true "Corrected outcomes"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/attendance [put]
func (h *AttendanceHandler) Amend(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.AmendAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	result, err := h.attendance.AmendAttendance(c.Request.Context(), claims.UserID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
