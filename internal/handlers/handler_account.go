package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/lavadero/carwash_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to current accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
	}
}

// registerAccountRoutes registers current-account routes nested under a branch.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/lookup", h.lookupByPhone)
		accounts.GET("/:account_id", h.getAccount)
		accounts.PUT("/:account_id", h.updateAccount)
		accounts.POST("/:account_id/topup", h.topUp)
		accounts.DELETE("/:account_id", h.deactivateAccount)
		accounts.GET("/:account_id/movements", h.listMovements)
	}
}

// createAccount godoc
// @Summary Open a current account
// @Description Creates a prepaid account for a client, keyed by phone number within the branch.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Phone already has an account"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), branchID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("branch_id", branchID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts of a branch
// @Tags accounts
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListAccountsResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	branchID := c.Param("branch_id")

	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), branchID, userID, params.Limit, params.Offset)
	if err != nil {
		respondServiceError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ListAccountsResponse{Accounts: dto.ToListAccountResponse(accounts)})
}

// lookupByPhone godoc
// @Summary Look up an account by phone
// @Description Resolves a client's account by exact phone match. Returns 404 when the phone has no account.
// @Tags accounts
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   phone query string true "Client phone"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "No account for this phone"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts/lookup [get]
func (h *accountHandler) lookupByPhone(c *gin.Context) {
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

	account, err := h.accountService.LookupByPhone(c.Request.Context(), branchID, phone, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to look up account")
		return
	}
	if account == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No account for this phone"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccount godoc
// @Summary Get a current account
// @Tags accounts
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   account_id path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts/{account_id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	branchID := c.Param("branch_id")
	accountID := c.Param("account_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), branchID, accountID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// updateAccount godoc
// @Summary Update account details
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   account_id path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts/{account_id} [put]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	accountID := c.Param("account_id")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), branchID, accountID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// topUp godoc
// @Summary Deposit money into an account
// @Description Appends a TOP_UP movement and credits the balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   account_id path string true "Account ID"
// @Param   deposit body dto.TopUpRequest true "Deposit amount"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} ErrorResponse "Non-positive amount or inactive account"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts/{account_id}/topup [post]
func (h *accountHandler) topUp(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	accountID := c.Param("account_id")

	var req dto.TopUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for TopUp", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	account, err := h.accountService.TopUp(c.Request.Context(), branchID, accountID, req, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to top up account")
		return
	}

	logger.Info("Account topped up",
		slog.String("account_id", accountID),
		slog.String("amount", req.Amount.String()))
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// deactivateAccount godoc
// @Summary Deactivate an account (admin)
// @Description Marks the account inactive; its movement history stays intact.
// @Tags accounts
// @Param   branch_id path string true "Branch ID"
// @Param   account_id path string true "Account ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts/{account_id} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	branchID := c.Param("branch_id")
	accountID := c.Param("account_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.accountService.DeactivateAccount(c.Request.Context(), branchID, accountID, userID); err != nil {
		respondServiceError(c, err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

// listMovements godoc
// @Summary List ledger movements of an account
// @Description Retrieves the append-only movement log, newest first.
// @Tags accounts
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Param   account_id path string true "Account ID"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListMovementsResponse
// @Failure 404 {object} ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /branches/{branch_id}/accounts/{account_id}/movements [get]
func (h *accountHandler) listMovements(c *gin.Context) {
	branchID := c.Param("branch_id")
	accountID := c.Param("account_id")

	var params dto.ListMovementsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.accountService.ListMovements(c.Request.Context(), branchID, accountID, userID, params)
	if err != nil {
		respondServiceError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, resp)
}
