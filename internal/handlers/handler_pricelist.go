package handlers

import (
	"log/slog"
	"net/http"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/lavadero/carwash_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// priceListHandler handles HTTP requests related to price lists.
type priceListHandler struct {
	priceListService portssvc.PriceListSvcFacade
}

// newPriceListHandler creates a new priceListHandler.
func newPriceListHandler(ps portssvc.PriceListSvcFacade) *priceListHandler {
	return &priceListHandler{
		priceListService: ps,
	}
}

// registerPriceListRoutes registers price list routes nested under a branch.
func registerPriceListRoutes(rg *gin.RouterGroup, priceListService portssvc.PriceListSvcFacade) {
	h := newPriceListHandler(priceListService)

	priceLists := rg.Group("/pricelists")
	{
		priceLists.POST("", h.createPriceList)
		priceLists.GET("", h.listPriceLists)
		priceLists.POST("/:pricelist_id/default", h.setDefault)
		priceLists.PUT("/:pricelist_id/entries", h.upsertEntry)
		priceLists.DELETE("/:pricelist_id/entries", h.deleteEntry)
	}
}

// createPriceList godoc
// @Summary Create a price list (admin)
// @Tags pricelists
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   pricelist body dto.CreatePriceListRequest true "Price list details"
// @Success 201 {object} dto.PriceListResponse
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Security BearerAuth
// @Router /branches/{branch_id}/pricelists [post]
func (h *priceListHandler) createPriceList(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.CreatePriceListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreatePriceList", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.priceListService.CreatePriceList(c.Request.Context(), branchID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create price list")
		return
	}

	logger.Info("Price list created", slog.String("price_list_id", list.PriceListID), slog.String("branch_id", branchID))
	c.JSON(http.StatusCreated, dto.ToPriceListResponse(list))
}

// listPriceLists godoc
// @Summary List price lists of a branch
// @Tags pricelists
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Success 200 {array} dto.PriceListResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/pricelists [get]
func (h *priceListHandler) listPriceLists(c *gin.Context) {
	branchID := c.Param("branch_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	lists, err := h.priceListService.ListPriceLists(c.Request.Context(), branchID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list price lists")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPriceListResponse(lists))
}

// setDefault godoc
// @Summary Flag a price list as the branch default (admin)
// @Description The default list's entries override the built-in price matrix at intake.
// @Tags pricelists
// @Param   branch_id path string true "Branch ID"
// @Param   pricelist_id path string true "Price list ID"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Price list not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/pricelists/{pricelist_id}/default [post]
func (h *priceListHandler) setDefault(c *gin.Context) {
	branchID := c.Param("branch_id")
	priceListID := c.Param("pricelist_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.priceListService.SetDefault(c.Request.Context(), branchID, priceListID, userID); err != nil {
		respondServiceError(c, err, "Failed to set default price list")
		return
	}
	c.Status(http.StatusNoContent)
}

// upsertEntry godoc
// @Summary Configure one price cell (admin)
// @Description Inserts or replaces the unit price of a (category, kind) cell. A zero price is a valid configuration.
// @Tags pricelists
// @Accept  json
// @Param   branch_id path string true "Branch ID"
// @Param   pricelist_id path string true "Price list ID"
// @Param   entry body dto.UpsertEntryRequest true "Cell configuration"
// @Success 204 "No Content"
// @Failure 400 {object} ErrorResponse "Negative price"
// @Security BearerAuth
// @Router /branches/{branch_id}/pricelists/{pricelist_id}/entries [put]
func (h *priceListHandler) upsertEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	priceListID := c.Param("pricelist_id")

	var req dto.UpsertEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpsertEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.priceListService.UpsertEntry(c.Request.Context(), branchID, priceListID, req, userID); err != nil {
		respondServiceError(c, err, "Failed to configure price entry")
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteEntry godoc
// @Summary Remove one price cell (admin)
// @Description Deletes a configured cell; the resolver falls back to the built-in matrix for it.
// @Tags pricelists
// @Param   branch_id path string true "Branch ID"
// @Param   pricelist_id path string true "Price list ID"
// @Param   category query string true "Vehicle category"
// @Param   kind query string true "Service kind"
// @Success 204 "No Content"
// @Failure 404 {object} ErrorResponse "Cell not configured"
// @Security BearerAuth
// @Router /branches/{branch_id}/pricelists/{pricelist_id}/entries [delete]
func (h *priceListHandler) deleteEntry(c *gin.Context) {
	branchID := c.Param("branch_id")
	priceListID := c.Param("pricelist_id")

	category := domain.VehicleCategory(c.Query("category"))
	kind := domain.ServiceKind(c.Query("kind"))
	if category == "" || kind == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "category and kind query parameters are required"})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.priceListService.DeleteEntry(c.Request.Context(), branchID, priceListID, category, kind, userID); err != nil {
		respondServiceError(c, err, "Failed to delete price entry")
		return
	}
	c.Status(http.StatusNoContent)
}
