package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "bondfall/internal/errors"
	"bondfall/internal/services"
)

// DistributionHandler receives revenue events from the external settlement
// pipeline and applies them to bond waterfalls.
type DistributionHandler struct {
	distributionService services.DistributionServicer
	auditService        services.AuditServicer
}

// NewDistributionHandler creates a new DistributionHandler.
func NewDistributionHandler(distributionService services.DistributionServicer, auditService services.AuditServicer) *DistributionHandler {
	return &DistributionHandler{distributionService: distributionService, auditService: auditService}
}

// DistributeRequest represents one incoming revenue event.
type DistributeRequest struct {
	BondID string `json:"bond_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// DistributionResponse represents an applied distribution in the response.
type DistributionResponse struct {
	ID               string `json:"id"`
	BondID           string `json:"bond_id"`
	Amount           int64  `json:"amount"`
	SeniorApplied    int64  `json:"senior_applied"`
	MezzanineApplied int64  `json:"mezzanine_applied"`
	JuniorApplied    int64  `json:"junior_applied"`
	Remainder        int64  `json:"remainder"`
}

// Distribute applies a revenue event to a bond's waterfall (pipeline)
// @Summary     Distribute revenue (pipeline)
// @Description Apply an incoming revenue amount to a bond's tranches in priority order
// @Tags        pipeline
// @Accept      json
// @Produce     json
// @Security    ApiKeyAuth
// @Param       request body DistributeRequest true "Revenue event"
// @Success     200 {object} DistributionResponse "Distribution applied"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid API key"
// @Failure     404 {object} ErrorResponse "Bond not found"
// @Failure     409 {object} ErrorResponse "Bond not active"
// @Failure     503 {object} ErrorResponse "Pipeline not configured"
// @Router      /pipeline/distributions [post]
func (h *DistributionHandler) Distribute(c *gin.Context) {
	var req DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	distribution, err := h.distributionService.Distribute(req.BondID, req.Amount)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", "DISTRIBUTE_REVENUE", "distribution", distribution.ID, c.ClientIP(),
		map[string]interface{}{"bond_id": req.BondID, "amount": req.Amount})

	c.JSON(http.StatusOK, gin.H{"distribution": distribution})
}
