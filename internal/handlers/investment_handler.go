package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfall/internal/errors"
	"bondfall/internal/pagination"
	"bondfall/internal/services"
)

// InvestmentHandler handles tranche investment requests.
type InvestmentHandler struct {
	investmentService services.InvestmentServicer
	auditService      services.AuditServicer
}

// NewInvestmentHandler creates a new InvestmentHandler.
func NewInvestmentHandler(investmentService services.InvestmentServicer, auditService services.AuditServicer) *InvestmentHandler {
	return &InvestmentHandler{investmentService: investmentService, auditService: auditService}
}

// InvestRequest represents the request payload for investing into a tranche.
type InvestRequest struct {
	TrancheIndex int   `json:"tranche_index" binding:"tranche_index"`
	Amount       int64 `json:"amount" binding:"required,gt=0"`
}

// InvestmentResponse represents a position in the response.
type InvestmentResponse struct {
	ID           string `json:"id"`
	BondID       string `json:"bond_id"`
	TrancheIndex int    `json:"tranche_index"`
	InvestorID   string `json:"investor_id"`
	Principal    int64  `json:"principal"`
}

// Invest handles investment into a bond tranche
// @Summary     Invest in a tranche
// @Description Place funds into one tranche of an active bond
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Param       request body InvestRequest true "Investment details"
// @Success     201 {object} InvestmentResponse "Position created or increased"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bond or tranche not found"
// @Failure     409 {object} ErrorResponse "Bond not active, matured, or cap exceeded"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id}/invest [post]
func (h *InvestmentHandler) Invest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req InvestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	investment, err := h.investmentService.Invest(userID, c.Param("id"), req.TrancheIndex, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "INVEST", "investment", investment.ID, c.ClientIP(),
		map[string]interface{}{"bond_id": investment.BondID, "tranche_index": req.TrancheIndex, "amount": req.Amount})

	c.JSON(http.StatusCreated, gin.H{"investment": investment})
}

// GetPositions lists the authenticated investor's positions
// @Summary     List positions
// @Description List the authenticated investor's positions across all bonds
// @Tags        investments
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[InvestmentResponse] "Positions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /positions [get]
func (h *InvestmentHandler) GetPositions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var pageReq pagination.PageRequest
	if err := c.ShouldBindQuery(&pageReq); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.investmentService.GetInvestorPositions(userID, pageReq)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}
