package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tutorhub/class-ledger-api/internal/dto"
	"github.com/tutorhub/class-ledger-api/internal/service"
	appErrors "github.com/tutorhub/class-ledger-api/pkg/errors"
	"github.com/tutorhub/class-ledger-api/pkg/response"
)

// CreditHandler exposes credit balance, ledger and statement endpoints.
type CreditHandler struct {
	credits *service.CreditService
}

// NewCreditHandler constructs CreditHandler.
func NewCreditHandler(credits *service.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

// Balances godoc
// @Summary List a student's per-course credit balances
// @Tags Credits
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/credits [get]
func (h *CreditHandler) Balances(c *gin.Context) {
	balances, err := h.credits.GetStudentBalances(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, balances, nil)
}

// TopUp godoc
// @Summary Top up a student's credits for a course
// @Tags Credits
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body dto.TopUpCreditRequest true "Top-up payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/credits [post]
func (h *CreditHandler) TopUp(c *gin.Context) {
	var req dto.TopUpCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	entry, err := h.credits.TopUp(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// Ledger godoc
// @Summary List a student's credit ledger entries
// @Tags Credits
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/credits/ledger [get]
func (h *CreditHandler) Ledger(c *gin.Context) {
	entries, err := h.credits.ListLedger(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Statement godoc
// @Summary Download a student's credit statement as PDF
// @Tags Credits
// @Produce application/pdf
// @Param id path string true "Student ID"
// @Success 200 {file} binary
// @Router /students/{id}/credits/statement [get]
func (h *CreditHandler) Statement(c *gin.Context) {
	studentID := c.Param("id")
	payload, err := h.credits.StatementPDF(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="credit-statement-%s.pdf"`, studentID))
	c.Data(http.StatusOK, "application/pdf", payload)
}
