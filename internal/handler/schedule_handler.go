package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/service"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
	"github.com/tutorhub/class-ledger-api/pkg/response"
)

// ScheduleHandler exposes session scheduling and listing endpoints.
type ScheduleHandler struct {
	schedule *service.ScheduleService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedule: schedule}
}

// Create godoc
// @Summary Schedule one session or a weekly series
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleSessionsRequest true "Scheduling payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ScheduleSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	resp, err := h.schedule.ScheduleSessions(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// ListMine godoc
// @Summary List the calling teacher's sessions in a window
// @Tags Sessions
// @Produce json
// @Param from query string true "Window start, civil timestamp with offset"
// @Param to query string true "Window end, civil timestamp with offset"
// @Success 200 {object} response.Envelope
// @Router /sessions/mine [get]
func (h *ScheduleHandler) ListMine(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var query dto.SessionWindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	sessions, err := h.schedule.ListTeacherSessions(c.Request.Context(), claims.UserID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// ListForStudent godoc
// @Summary List a student's sessions in a window
// @Tags Sessions
// @Produce json
// @Param id path string true "Student ID"
// @Param from query string true "Window start, civil timestamp with offset"
// @Param to query string true "Window end, civil timestamp with offset"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/sessions [get]
func (h *ScheduleHandler) ListForStudent(c *gin.Context) {
	var query dto.SessionWindowQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}

	sessions, err := h.schedule.ListStudentSessions(c.Request.Context(), c.Param("id"), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}
