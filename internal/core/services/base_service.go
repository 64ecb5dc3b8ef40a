package services

import (
	"context"
	"log/slog"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	BranchAuthorizer portssvc.BranchAuthorizerSvc
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	logger.Debug(msg, keyvals...)
}

// AuthorizeUser checks if a user has the required role for a branch
func (s *BaseService) AuthorizeUser(ctx context.Context, userID, branchID string, requiredRole domain.UserBranchRole) error {
	if s.BranchAuthorizer != nil {
		return s.BranchAuthorizer.AuthorizeUserAction(ctx, userID, branchID, requiredRole)
	}
	s.LogDebug(ctx, "No branch authorizer provided, access granted by default",
		slog.String("user_id", userID),
		slog.String("branch_id", branchID),
		slog.String("required_role", string(requiredRole)))
	return nil
}
