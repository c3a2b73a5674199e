package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfall/internal/errors"
	"bondfall/internal/services"
)

// RedemptionHandler handles payout requests for matured positions.
type RedemptionHandler struct {
	redemptionService services.RedemptionServicer
	auditService      services.AuditServicer
}

// NewRedemptionHandler creates a new RedemptionHandler.
func NewRedemptionHandler(redemptionService services.RedemptionServicer, auditService services.AuditServicer) *RedemptionHandler {
	return &RedemptionHandler{redemptionService: redemptionService, auditService: auditService}
}

// RedeemRequest represents the request payload for redeeming a position.
type RedeemRequest struct {
	TrancheIndex int `json:"tranche_index" binding:"tranche_index"`
}

// RedemptionResponse represents a settled redemption in the response.
type RedemptionResponse struct {
	ID           string `json:"id"`
	BondID       string `json:"bond_id"`
	TrancheIndex int    `json:"tranche_index"`
	InvestorID   string `json:"investor_id"`
	Principal    int64  `json:"principal"`
	Yield        int64  `json:"yield"`
	Payout       int64  `json:"payout"`
}

// Redeem settles the caller's position in a matured bond tranche
// @Summary     Redeem a position
// @Description Withdraw principal plus realized yield from a matured bond tranche
// @Tags        redemptions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Param       request body RedeemRequest true "Tranche to redeem"
// @Success     200 {object} RedemptionResponse "Position settled"
// @Failure     400 {object} ErrorResponse "Invalid input or nothing to redeem"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bond or tranche not found"
// @Failure     409 {object} ErrorResponse "Bond not matured"
// @Failure     502 {object} ErrorResponse "Ledger transfer failed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id}/redeem [post]
func (h *RedemptionHandler) Redeem(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	redemption, err := h.redemptionService.Redeem(c.Request.Context(), userID, c.Param("id"), req.TrancheIndex)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "REDEEM", "redemption", redemption.ID, c.ClientIP(),
		map[string]interface{}{"bond_id": redemption.BondID, "tranche_index": req.TrancheIndex, "payout": redemption.Payout})

	c.JSON(http.StatusOK, gin.H{"redemption": redemption})
}
