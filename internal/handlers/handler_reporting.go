package handlers

import (
	"net/http"
	"time"

	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests for sales reports.
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler.
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers report routes nested under a branch.
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reports := rg.Group("/reports")
	{
		reports.GET("/daily-sales", h.dailySales)
		reports.GET("/hourly-sales", h.hourlySales)
		reports.GET("/payment-breakdown", h.paymentBreakdown)
		reports.GET("/inactive-clients", h.inactiveClients)
	}
}

// bindDateRange parses the from/to query params. The range is inclusive of
// both days; the service receives [from, to+24h) in UTC.
func bindDateRange(c *gin.Context) (from, to time.Time, ok bool) {
	var params dto.ReportRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}

	from, err := time.Parse("2006-01-02", params.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from must be a YYYY-MM-DD date"})
		return time.Time{}, time.Time{}, false
	}
	to, err = time.Parse("2006-01-02", params.To)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to must be a YYYY-MM-DD date"})
		return time.Time{}, time.Time{}, false
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "to must not precede from"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// dailySales godoc
// @Summary Daily sales report
// @Description Record count and revenue per day. Cancelled and annulled records are excluded.
// @Tags reports
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   from query string true "Start date (YYYY-MM-DD)"
// @Param   to query string true "End date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} dto.DailySalesResponse
// @Failure 400 {object} ErrorResponse "Malformed date range"
// @Security BearerAuth
// @Router /branches/{branch_id}/reports/daily-sales [get]
func (h *reportingHandler) dailySales(c *gin.Context) {
	branchID := c.Param("branch_id")

	from, to, ok := bindDateRange(c)
	if !ok {
		return
	}
	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.DailySales(c.Request.Context(), branchID, from, to, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to generate daily sales report")
		return
	}
	c.JSON(http.StatusOK, dto.ToDailySalesResponse(rows, from, to))
}

// hourlySales godoc
// @Summary Hourly sales report
// @Description Intake volume per hour of day, for staffing decisions.
// @Tags reports
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   from query string true "Start date (YYYY-MM-DD)"
// @Param   to query string true "End date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} dto.HourlySalesResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/reports/hourly-sales [get]
func (h *reportingHandler) hourlySales(c *gin.Context) {
	branchID := c.Param("branch_id")

	from, to, ok := bindDateRange(c)
	if !ok {
		return
	}
	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.HourlySales(c.Request.Context(), branchID, from, to, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to generate hourly sales report")
		return
	}
	c.JSON(http.StatusOK, dto.ToHourlySalesResponse(rows, from, to))
}

// paymentBreakdown godoc
// @Summary Payment method breakdown
// @Description Revenue per payment method; account-settled records count under CURRENT_ACCOUNT.
// @Tags reports
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   from query string true "Start date (YYYY-MM-DD)"
// @Param   to query string true "End date, inclusive (YYYY-MM-DD)"
// @Success 200 {object} dto.PaymentBreakdownResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/reports/payment-breakdown [get]
func (h *reportingHandler) paymentBreakdown(c *gin.Context) {
	branchID := c.Param("branch_id")

	from, to, ok := bindDateRange(c)
	if !ok {
		return
	}
	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.PaymentBreakdown(c.Request.Context(), branchID, from, to, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to generate payment breakdown")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentBreakdownResponse(rows, from, to))
}

// inactiveClients godoc
// @Summary Clients with no recent visits
// @Description Lists clients whose last non-voided record predates the cutoff, for win-back campaigns.
// @Tags reports
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   since query string true "Cutoff date (YYYY-MM-DD)"
// @Success 200 {object} dto.InactiveClientsResponse
// @Failure 400 {object} ErrorResponse "Malformed cutoff date"
// @Security BearerAuth
// @Router /branches/{branch_id}/reports/inactive-clients [get]
func (h *reportingHandler) inactiveClients(c *gin.Context) {
	branchID := c.Param("branch_id")

	sinceStr := c.Query("since")
	if sinceStr == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "since query parameter is required"})
		return
	}
	since, err := time.Parse("2006-01-02", sinceStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "since must be a YYYY-MM-DD date"})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	rows, err := h.reportingService.InactiveClients(c.Request.Context(), branchID, since, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to generate inactive clients report")
		return
	}
	c.JSON(http.StatusOK, dto.ToInactiveClientsResponse(rows, since))
}
