package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/lavadero/carwash_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// promotionHandler handles HTTP requests for promotions and survey benefits.
type promotionHandler struct {
	promotionService portssvc.PromotionSvcFacade
}

// newPromotionHandler creates a new promotionHandler.
func newPromotionHandler(ps portssvc.PromotionSvcFacade) *promotionHandler {
	return &promotionHandler{
		promotionService: ps,
	}
}

// registerPromotionRoutes registers promotion and benefit routes nested under a branch.
func registerPromotionRoutes(rg *gin.RouterGroup, promotionService portssvc.PromotionSvcFacade) {
	h := newPromotionHandler(promotionService)

	promotions := rg.Group("/promotions")
	{
		promotions.POST("", h.createPromotion)
		promotions.GET("", h.listPromotions)
		promotions.GET("/:promotion_id", h.getPromotion)
		promotions.PUT("/:promotion_id", h.updatePromotion)
	}

	benefits := rg.Group("/benefits")
	{
		benefits.POST("", h.grantBenefit)
		benefits.GET("", h.listPendingBenefits)
		benefits.GET("/:benefit_id", h.getBenefit)
		benefits.POST("/:benefit_id/redeem", h.redeemBenefit)
	}
}

// createPromotion godoc
// @Summary Create a promotion (admin)
// @Description Creates a percent or fixed-amount promotion, optionally scoped to service kinds and a validity window.
// @Tags promotions
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   promotion body dto.CreatePromotionRequest true "Promotion details"
// @Success 201 {object} dto.PromotionResponse
// @Failure 400 {object} ErrorResponse "Both or neither discount modes set"
// @Security BearerAuth
// @Router /branches/{branch_id}/promotions [post]
func (h *promotionHandler) createPromotion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePromotion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	promo, err := h.promotionService.CreatePromotion(c.Request.Context(), branchID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create promotion")
		return
	}

	logger.Info("Promotion created", slog.String("promotion_id", promo.PromotionID), slog.String("branch_id", branchID))
	c.JSON(http.StatusCreated, dto.ToPromotionResponse(promo))
}

// listPromotions godoc
// @Summary List promotions of a branch
// @Tags promotions
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   includeInactive query bool false "Include deactivated promotions" default(false)
// @Success 200 {array} dto.PromotionResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/promotions [get]
func (h *promotionHandler) listPromotions(c *gin.Context) {
	branchID := c.Param("branch_id")
	includeInactive := c.Query("includeInactive") == "true"

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	promos, err := h.promotionService.ListPromotions(c.Request.Context(), branchID, userID, includeInactive)
	if err != nil {
		respondServiceError(c, err, "Failed to list promotions")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPromotionResponse(promos))
}

// getPromotion godoc
// @Summary Get a promotion
// @Tags promotions
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   promotion_id path string true "Promotion ID"
// @Success 200 {object} dto.PromotionResponse
// @Failure 404 {object} ErrorResponse "Promotion not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/promotions/{promotion_id} [get]
func (h *promotionHandler) getPromotion(c *gin.Context) {
	branchID := c.Param("branch_id")
	promotionID := c.Param("promotion_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	promo, err := h.promotionService.GetPromotionByID(c.Request.Context(), branchID, promotionID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve promotion")
		return
	}
	c.JSON(http.StatusOK, dto.ToPromotionResponse(promo))
}

// updatePromotion godoc
// @Summary Update a promotion (admin)
// @Description Edits promotion fields; setting isActive false retires it without touching past records.
// @Tags promotions
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   promotion_id path string true "Promotion ID"
// @Param   promotion body dto.UpdatePromotionRequest true "Fields to update"
// @Success 200 {object} dto.PromotionResponse
// @Failure 404 {object} ErrorResponse "Promotion not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/promotions/{promotion_id} [put]
func (h *promotionHandler) updatePromotion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	promotionID := c.Param("promotion_id")

	var req dto.UpdatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdatePromotion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	promo, err := h.promotionService.UpdatePromotion(c.Request.Context(), branchID, promotionID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update promotion")
		return
	}
	c.JSON(http.StatusOK, dto.ToPromotionResponse(promo))
}

// grantBenefit godoc
// @Summary Grant a survey benefit
// @Description Grants a one-shot discount to a client's phone as a survey completion reward.
// @Tags benefits
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   benefit body dto.GrantBenefitRequest true "Benefit details"
// @Success 201 {object} dto.BenefitResponse
// @Failure 409 {object} ErrorResponse "Survey response already rewarded"
// @Security BearerAuth
// @Router /branches/{branch_id}/benefits [post]
func (h *promotionHandler) grantBenefit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.GrantBenefitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GrantBenefit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	benefit, err := h.promotionService.GrantBenefit(c.Request.Context(), branchID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to grant benefit")
		return
	}

	logger.Info("Benefit granted",
		slog.String("benefit_id", benefit.BenefitID),
		slog.String("client_phone", benefit.ClientPhone))
	c.JSON(http.StatusCreated, dto.ToBenefitResponse(benefit))
}

// listPendingBenefits godoc
// @Summary List pending benefits for a phone
// @Tags benefits
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   phone query string true "Client phone"
// @Success 200 {array} dto.BenefitResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/benefits [get]
func (h *promotionHandler) listPendingBenefits(c *gin.Context) {
	branchID := c.Param("branch_id")
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "phone query parameter is required"})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	benefits, err := h.promotionService.ListPendingBenefits(c.Request.Context(), branchID, phone, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list pending benefits")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBenefitResponse(benefits))
}

// getBenefit godoc
// @Summary Get a survey benefit
// @Tags benefits
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   benefit_id path string true "Benefit ID"
// @Success 200 {object} dto.BenefitResponse
// @Failure 404 {object} ErrorResponse "Benefit not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/benefits/{benefit_id} [get]
func (h *promotionHandler) getBenefit(c *gin.Context) {
	branchID := c.Param("branch_id")
	benefitID := c.Param("benefit_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	benefit, err := h.promotionService.GetBenefitByID(c.Request.Context(), branchID, benefitID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve benefit")
		return
	}
	c.JSON(http.StatusOK, dto.ToBenefitResponse(benefit))
}

// redeemBenefit godoc
// @Summary Redeem a benefit manually
// @Description Marks a pending benefit redeemed. Intake redeems applied benefits automatically; this endpoint covers off-record redemptions.
// @Tags benefits
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   benefit_id path string true "Benefit ID"
// @Success 200 {object} dto.BenefitResponse
// @Failure 409 {object} ErrorResponse "Benefit no longer pending"
// @Security BearerAuth
// @Router /branches/{branch_id}/benefits/{benefit_id}/redeem [post]
func (h *promotionHandler) redeemBenefit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	benefitID := c.Param("benefit_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	benefit, err := h.promotionService.RedeemBenefit(c.Request.Context(), branchID, benefitID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to redeem benefit")
		return
	}

	logger.Info("Benefit redeemed", slog.String("benefit_id", benefitID))
	c.JSON(http.StatusOK, dto.ToBenefitResponse(benefit))
}
