package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/lavadero/carwash_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// branchHandler handles HTTP requests related to branches and membership.
type branchHandler struct {
	branchService portssvc.BranchSvcFacade
}

// newBranchHandler creates a new branchHandler.
func newBranchHandler(bs portssvc.BranchSvcFacade) *branchHandler {
	return &branchHandler{
		branchService: bs,
	}
}

// registerBranchRoutes registers branch routes and nests all branch-scoped
// resources (records, accounts, price lists, promotions, reports) under
// /branches/:branch_id.
func registerBranchRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newBranchHandler(services.Branch)

	branches := rg.Group("/branches")
	{
		branches.POST("", h.createBranch)
		branches.GET("", h.listBranches)

		branch := branches.Group("/:branch_id")
		{
			branch.GET("", h.getBranch)
			branch.POST("/deactivate", h.deactivateBranch)
			branch.POST("/activate", h.activateBranch)

			branch.POST("/users", h.addUser)
			branch.GET("/users", h.listUsers)
			branch.PUT("/users/:user_id", h.updateUserRole)
			branch.DELETE("/users/:user_id", h.removeUser)

			RegisterRecordRoutes(branch, services.Record)
			registerAccountRoutes(branch, services.Account)
			registerPriceListRoutes(branch, services.PriceList)
			registerPromotionRoutes(branch, services.Promotion)
			registerReportingRoutes(branch, services.Reporting)
		}
	}
}

// createBranch godoc
// @Summary Create a branch
// @Description Creates a branch and makes the creator its admin.
// @Tags branches
// @Accept  json
// @Produce  json
// @Param   branch body dto.CreateBranchRequest true "Branch details"
// @Success 201 {object} dto.BranchResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Security BearerAuth
// @Router /branches [post]
func (h *branchHandler) createBranch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateBranch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	branch, err := h.branchService.CreateBranch(c.Request.Context(), req.Name, req.Address, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to create branch")
		return
	}

	logger.Info("Branch created", slog.String("branch_id", branch.BranchID))
	c.JSON(http.StatusCreated, dto.ToBranchResponse(branch))
}

// listBranches godoc
// @Summary List the caller's branches
// @Tags branches
// @Produce  json
// @Param   includeDisabled query bool false "Include deactivated branches" default(false)
// @Success 200 {object} dto.ListBranchesResponse
// @Security BearerAuth
// @Router /branches [get]
func (h *branchHandler) listBranches(c *gin.Context) {
	includeDisabled := c.Query("includeDisabled") == "true"

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	branches, err := h.branchService.ListUserBranches(c.Request.Context(), userID, includeDisabled)
	if err != nil {
		respondServiceError(c, err, "Failed to list branches")
		return
	}
	c.JSON(http.StatusOK, dto.ToListBranchesResponse(branches))
}

// getBranch godoc
// @Summary Get a branch
// @Tags branches
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Success 200 {object} dto.BranchResponse
// @Failure 404 {object} ErrorResponse "Branch not found"
// @Security BearerAuth
// @Router /branches/{branch_id} [get]
func (h *branchHandler) getBranch(c *gin.Context) {
	branchID := c.Param("branch_id")

	branch, err := h.branchService.FindBranchByID(c.Request.Context(), branchID)
	if err != nil {
		respondServiceError(c, err, "Failed to retrieve branch")
		return
	}
	c.JSON(http.StatusOK, dto.ToBranchResponse(branch))
}

// deactivateBranch godoc
// @Summary Deactivate a branch (admin)
// @Tags branches
// @Param   branch_id path string true "Branch ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Security BearerAuth
// @Router /branches/{branch_id}/deactivate [post]
func (h *branchHandler) deactivateBranch(c *gin.Context) {
	branchID := c.Param("branch_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.branchService.DeactivateBranch(c.Request.Context(), branchID, userID); err != nil {
		respondServiceError(c, err, "Failed to deactivate branch")
		return
	}
	c.Status(http.StatusNoContent)
}

// activateBranch godoc
// @Summary Reactivate a branch (admin)
// @Tags branches
// @Param   branch_id path string true "Branch ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Security BearerAuth
// @Router /branches/{branch_id}/activate [post]
func (h *branchHandler) activateBranch(c *gin.Context) {
	branchID := c.Param("branch_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.branchService.ActivateBranch(c.Request.Context(), branchID, userID); err != nil {
		respondServiceError(c, err, "Failed to activate branch")
		return
	}
	c.Status(http.StatusNoContent)
}

// addUser godoc
// @Summary Add a user to a branch (admin)
// @Tags branches
// @Accept  json
// @Param   branch_id path string true "Branch ID"
// @Param   membership body dto.AddUserToBranchRequest true "User and role"
// @Success 204 "No Content"
// @Failure 409 {object} ErrorResponse "User already a member"
// @Security BearerAuth
// @Router /branches/{branch_id}/users [post]
func (h *branchHandler) addUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")

	var req dto.AddUserToBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AddUserToBranch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.branchService.AddUserToBranch(c.Request.Context(), userID, req.UserID, branchID, req.Role); err != nil {
		respondServiceError(c, err, "Failed to add user to branch")
		return
	}

	logger.Info("User added to branch",
		slog.String("branch_id", branchID),
		slog.String("target_user_id", req.UserID),
		slog.String("role", string(req.Role)))
	c.Status(http.StatusNoContent)
}

// listUsers godoc
// @Summary List branch members
// @Tags branches
// @Produce  json
// @Param   branch_id path string true "Branch ID"
// @Success 200 {array} dto.UserBranchResponse
// @Security BearerAuth
// @Router /branches/{branch_id}/users [get]
func (h *branchHandler) listUsers(c *gin.Context) {
	branchID := c.Param("branch_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	members, err := h.branchService.ListBranchUsers(c.Request.Context(), branchID, userID)
	if err != nil {
		respondServiceError(c, err, "Failed to list branch users")
		return
	}
	c.JSON(http.StatusOK, dto.ToListUserBranchResponse(members))
}

// updateUserRole godoc
// @Summary Change a member's role (admin)
// @Tags branches
// @Accept  json
// @Param   branch_id path string true "Branch ID"
// @Param   user_id path string true "Target user ID"
// @Param   role body dto.UpdateUserBranchRoleRequest true "New role"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Security BearerAuth
// @Router /branches/{branch_id}/users/{user_id} [put]
func (h *branchHandler) updateUserRole(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	targetUserID := c.Param("user_id")

	var req dto.UpdateUserBranchRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateUserBranchRole", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.branchService.UpdateUserBranchRole(c.Request.Context(), userID, targetUserID, branchID, req.Role); err != nil {
		respondServiceError(c, err, "Failed to update user role")
		return
	}
	c.Status(http.StatusNoContent)
}

// removeUser godoc
// @Summary Remove a user from a branch (admin)
// @Tags branches
// @Param   branch_id path string true "Branch ID"
// @Param   user_id path string true "Target user ID"
// @Success 204 "No Content"
// @Failure 403 {object} ErrorResponse "Caller is not a branch admin"
// @Security BearerAuth
// @Router /branches/{branch_id}/users/{user_id} [delete]
func (h *branchHandler) removeUser(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	branchID := c.Param("branch_id")
	targetUserID := c.Param("user_id")

	userID, ok := mustGetUserID(c)
	if !ok {
		return
	}

	if err := h.branchService.RemoveUserFromBranch(c.Request.Context(), userID, targetUserID, branchID); err != nil {
		respondServiceError(c, err, "Failed to remove user from branch")
		return
	}

	logger.Info("User removed from branch",
		slog.String("branch_id", branchID),
		slog.String("target_user_id", targetUserID))
	c.Status(http.StatusNoContent)
}
