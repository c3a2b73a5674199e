package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "bondfall/internal/errors"
	"bondfall/internal/models"
	"bondfall/internal/pagination"
	"bondfall/internal/services"
)

// BondHandler handles bond issuance, queries, and lifecycle transitions.
type BondHandler struct {
	bondService      services.BondServicer
	lifecycleService services.LifecycleServicer
	auditService     services.AuditServicer
}

// NewBondHandler creates a new BondHandler.
func NewBondHandler(bondService services.BondServicer, lifecycleService services.LifecycleServicer, auditService services.AuditServicer) *BondHandler {
	return &BondHandler{bondService: bondService, lifecycleService: lifecycleService, auditService: auditService}
}

// IssueBondRequest represents the request payload for issuing a bond.
type IssueBondRequest struct {
	BondID       string    `json:"bond_id" binding:"omitempty,max=64"`
	AssetRef     string    `json:"asset_ref" binding:"required,max=255"`
	TotalValue   int64     `json:"total_value" binding:"required,gt=0"`
	MaturityDate time.Time `json:"maturity_date" binding:"required"`
	Allocations  *[3]int64 `json:"allocations"`
	RatesBps     [3]int64  `json:"rates_bps" binding:"dive,rate_bps"`
}

// TrancheResponse represents a tranche in the response.
type TrancheResponse struct {
	Index            int    `json:"index"`
	Name             string `json:"name"`
	AllocationCap    int64  `json:"allocation_cap"`
	RateBps          int64  `json:"rate_bps"`
	TotalInvested    int64  `json:"total_invested"`
	TotalRedeemed    int64  `json:"total_redeemed"`
	AccumulatedYield int64  `json:"accumulated_yield"`
}

// BondResponse represents a bond with its tranches in the response.
type BondResponse struct {
	ID                      string            `json:"id"`
	IssuerID                string            `json:"issuer_id"`
	AssetRef                string            `json:"asset_ref"`
	TotalValue              int64             `json:"total_value"`
	MaturityDate            time.Time         `json:"maturity_date"`
	IssuedAt                time.Time         `json:"issued_at"`
	Status                  models.BondStatus `json:"status"`
	TotalRevenueDistributed int64             `json:"total_revenue_distributed"`
	Tranches                []TrancheResponse `json:"tranches"`
}

// ListBondsQuery holds the query parameters for listing bonds.
type ListBondsQuery struct {
	pagination.PageRequest
	Status string `form:"status" binding:"omitempty,bond_status"`
}

// IssueBond handles bond issuance
// @Summary     Issue a bond
// @Description Issue a new bond with three tranches (issuer or admin only)
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body IssueBondRequest true "Bond details"
// @Success     201 {object} BondResponse "Bond issued"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller is not an issuer"
// @Failure     409 {object} ErrorResponse "Bond ID already exists"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds [post]
func (h *BondHandler) IssueBond(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req IssueBondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	bond, err := h.bondService.IssueBond(userID, services.IssueBondInput{
		BondID:       req.BondID,
		AssetRef:     req.AssetRef,
		TotalValue:   req.TotalValue,
		MaturityDate: req.MaturityDate,
		Allocations:  req.Allocations,
		RatesBps:     req.RatesBps,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "ISSUE_BOND", "bond", bond.ID, c.ClientIP(),
		map[string]interface{}{"asset_ref": req.AssetRef, "total_value": req.TotalValue})

	c.JSON(http.StatusCreated, gin.H{"bond": bond})
}

// GetBond returns a single bond with its tranches
// @Summary     Get a bond
// @Description Get a bond and its three tranches by ID
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Success     200 {object} BondResponse "Bond details"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bond not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id} [get]
func (h *BondHandler) GetBond(c *gin.Context) {
	bond, err := h.bondService.GetBond(c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bond": bond})
}

// ListBonds returns a paginated list of bonds
// @Summary     List bonds
// @Description List bonds, optionally filtered by lifecycle status
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Param       status query string false "Lifecycle status filter" Enums(ACTIVE, MATURED, DEFAULTED)
// @Success     200 {object} pagination.PageResponse[BondResponse] "Bonds"
// @Failure     400 {object} ErrorResponse "Invalid query"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds [get]
func (h *BondHandler) ListBonds(c *gin.Context) {
	var query ListBondsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var status *models.BondStatus
	if query.Status != "" {
		s := models.BondStatus(query.Status)
		status = &s
	}

	page, err := h.bondService.ListBonds(query.PageRequest, status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTranche returns one tranche of a bond
// @Summary     Get a tranche
// @Description Get one tranche of a bond by index (0=Senior, 1=Mezzanine, 2=Junior)
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Param       index path int true "Tranche index"
// @Success     200 {object} TrancheResponse "Tranche details"
// @Failure     400 {object} ErrorResponse "Invalid index"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bond or tranche not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id}/tranches/{index} [get]
func (h *BondHandler) GetTranche(c *gin.Context) {
	index, err := parseTrancheIndex(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	tranche, err := h.bondService.GetTranche(c.Param("id"), index)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tranche": tranche})
}

// ListDistributions returns a bond's revenue distribution history
// @Summary     List distributions
// @Description List a bond's revenue distribution history, most recent first
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.RevenueDistribution] "Distributions"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Bond not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id}/distributions [get]
func (h *BondHandler) ListDistributions(c *gin.Context) {
	var pageReq pagination.PageRequest
	if err := c.ShouldBindQuery(&pageReq); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	page, err := h.bondService.ListDistributions(c.Param("id"), pageReq)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// MatureBond transitions a bond to Matured
// @Summary     Mature a bond
// @Description Transition an active bond to Matured once its maturity date has passed
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Success     200 {object} BondResponse "Bond matured"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller may not mature this bond"
// @Failure     404 {object} ErrorResponse "Bond not found"
// @Failure     409 {object} ErrorResponse "Bond not active or not yet at maturity"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id}/mature [post]
func (h *BondHandler) MatureBond(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bond, err := h.lifecycleService.MatureBond(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "MATURE_BOND", "bond", bond.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"bond": bond})
}

// DefaultBond transitions a bond to Defaulted
// @Summary     Default a bond
// @Description Transition an active bond to Defaulted (admin only)
// @Tags        bonds
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Bond ID"
// @Success     200 {object} BondResponse "Bond defaulted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     403 {object} ErrorResponse "Caller is not an admin"
// @Failure     404 {object} ErrorResponse "Bond not found"
// @Failure     409 {object} ErrorResponse "Bond not active"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /bonds/{id}/default [post]
func (h *BondHandler) DefaultBond(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	bond, err := h.lifecycleService.DefaultBond(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DEFAULT_BOND", "bond", bond.ID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"bond": bond})
}
