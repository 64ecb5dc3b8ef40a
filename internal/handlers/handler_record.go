package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/lavadero/carwash_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// recordHandler handles HTTP requests related to service records.
type recordHandler struct {
	recordService portssvc.RecordSvcFacade
}

// newRecordHandler creates a new recordHandler.
func newRecordHandler(rs portssvc.RecordSvcFacade) *recordHandler {
	return &recordHandler{
		recordService: rs,
	}
}

// RegisterRecordRoutes registers record lifecycle routes nested under a branch.
func RegisterRecordRoutes(rg *gin.RouterGroup, recordService portssvc.RecordSvcFacade) {
	h := newRecordHandler(recordService)

	records := rg.Group("/records")
	{
		records.POST("", h.intakeRecord)
		records.GET("", h.listRecords)
		records.GET("/:record_id", h.getRecord)
		records.POST("/:record_id/ready", h.markReady)
		records.POST("/:record_id/deliver", h.markDelivered)
		records.POST("/:record_id/payment", h.registerPayment)
		records.POST("/:record_id/cancel", h.cancelRecord)
		records.POST("/:record_id/annul", h.annulRecord)
		records.DELETE("/:record_id", h.deleteRecord)
	}
}

// intakeRecord godoc
// @Summary Register a vehicle at intake
// @Description Creates a service record with the price resolved, discounts stacked and the total frozen. Optionally debits the client's current account.
// @Tags records
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record body dto.CreateRecordRequest true "Intake details"
// @Success 201 {object} dto.RecordResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Benefit already redeemed"
// @Security BearerAuth
// @Router /branches/{branch_id}/records [post]
func (h *recordHandler) intakeRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.CreateRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for IntakeRecord", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.IntakeRecord(c.Request.Context(), branchID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to register intake")
		return
	}

	logger.Info("Record created at intake",
		slog.String("record_id", record.RecordID),
		slog.String("branch_id", branchID),
		slog.String("total_price", record.TotalPrice.String()))
	c.JSON(http.StatusCreated, dto.ToRecordResponse(record))
}

// listRecords godoc
// @Summary List records of a branch
// @Description Retrieves a paginated list of service records, newest first. Voided records are hidden unless includeVoided is set.
// @Tags records
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Param   includeVoided query bool false "Include cancelled/annulled records"
// @Success 200 {object} dto.ListRecordsResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /branches/{branch_id}/records [get]
func (h *recordHandler) listRecords(c *gin.Context) {
	branchID := c.Param("branch_id")

	var params dto.ListRecordsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.recordService.ListRecords(c.Request.Context(), branchID, userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list records")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getRecord godoc
// @Summary Get a service record
// @Tags records
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Success 200 {object} dto.RecordResponse
// @Failure 404 {object} ErrorResponse "Record not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id} [get]
func (h *recordHandler) getRecord(c *gin.Context) {
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.GetRecordByID(c.Request.Context(), branchID, recordID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve record")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// markReady godoc
// @Summary Mark a record as ready for pickup
// @Description Transitions IN_PROGRESS -> READY.
// @Tags records
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Success 200 {object} dto.RecordResponse
// @Failure 409 {object} ErrorResponse "Record is not in progress"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id}/ready [post]
func (h *recordHandler) markReady(c *gin.Context) {
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.MarkReady(c.Request.Context(), branchID, recordID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to mark record ready")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// markDelivered godoc
// @Summary Deliver a vehicle to its owner
// @Description Transitions READY -> DELIVERED. Unpaid records without account settlement are rejected with 409 until a payment is registered.
// @Tags records
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Success 200 {object} dto.RecordResponse
// @Failure 409 {object} ErrorResponse "Payment pending or record not ready"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id}/deliver [post]
func (h *recordHandler) markDelivered(c *gin.Context) {
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.MarkDelivered(c.Request.Context(), branchID, recordID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to deliver record")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// registerPayment godoc
// @Summary Register a cash or transfer payment
// @Tags records
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Param   payment body dto.RegisterPaymentRequest true "Payment method"
// @Success 200 {object} dto.RecordResponse
// @Failure 409 {object} ErrorResponse "Record already settled or voided"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id}/payment [post]
func (h *recordHandler) registerPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	var req dto.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.RegisterPayment(c.Request.Context(), branchID, recordID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to register payment")
		return
	}
	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// cancelRecord godoc
// @Summary Cancel an in-progress record
// @Description Transitions IN_PROGRESS -> CANCELLED with a mandatory reason. Any current-account debit is credited back.
// @Tags records
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Param   reason body dto.VoidRecordRequest true "Cancellation reason"
// @Success 200 {object} dto.RecordResponse
// @Failure 409 {object} ErrorResponse "Record is not in progress"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id}/cancel [post]
func (h *recordHandler) cancelRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	var req dto.VoidRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CancelRecord", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordService.CancelRecord(c.Request.Context(), branchID, recordID, req.Reason, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to cancel record")
		return
	}

	logger.Info("Record cancelled", slog.String("record_id", recordID))
	c.JSON(http.StatusOK, dto.ToRecordResponse(record))
}

// annulRecord godoc
// @Summary Annul a record (admin)
// @Description Voids a record from any non-annulled state and reverses any current-account debit. Requires the branch admin role.
// @Tags records
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Param   reason body dto.VoidRecordRequest true "Annulment reason"
// @Success 200 {object} dto.AnnulRecordResponse
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Failure 409 {object} ErrorResponse "Record already annulled"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id}/annul [post]
func (h *recordHandler) annulRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	var req dto.VoidRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AnnulRecord", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	record, reversed, err := h.recordService.AnnulRecord(c.Request.Context(), branchID, recordID, req.Reason, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to annul record")
		return
	}

	logger.Info("Record annulled",
		slog.String("record_id", recordID),
		slog.String("reversed_amount", reversed.String()))
	c.JSON(http.StatusOK, dto.AnnulRecordResponse{
		Record:         dto.ToRecordResponse(record),
		ReversedAmount: reversed,
	})
}

// deleteRecord godoc
// @Summary Physically delete a record (admin)
// @Description Fires the same debit reversal as annulment, then removes the record.
// @Tags records
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   record_id path string true "Record ID"
// @Success 200 {object} dto.DeleteRecordResponse
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Failure 404 {object} ErrorResponse "Record not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/records/{record_id} [delete]
func (h *recordHandler) deleteRecord(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	recordID := c.Param("record_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	reversed, err := h.recordService.DeleteRecord(c.Request.Context(), branchID, recordID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to delete record")
		return
	}

	logger.Info("Record deleted",
		slog.String("record_id", recordID),
		slog.String("reversed_amount", reversed.String()))
	c.JSON(http.StatusOK, dto.DeleteRecordResponse{
		RecordID:       recordID,
		ReversedAmount: reversed,
	})
}
