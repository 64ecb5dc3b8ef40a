package services

import (
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Branch service first: it is the authorizer every other service leans on.
	container.Branch = NewBranchService(repos.BranchRepo, repos.UserRepo)
	branchAuthorizer := container.Branch.(portssvc.BranchAuthorizerSvc)

	container.PriceList = NewPriceListService(
		repos.PriceListRepo,
		WithPriceListBranchAuthorizer(branchAuthorizer),
	)
	container.Promotion = NewPromotionService(
		repos.PromotionRepo,
		WithPromotionBranchAuthorizer(branchAuthorizer),
	)
	container.Account = NewAccountService(
		repos.AccountRepo,
		WithAccountBranchAuthorizer(branchAuthorizer),
	)
	container.Record = NewRecordService(
		repos.RecordRepo,
		container.Account,
		container.PriceList,
		container.Promotion,
		WithRecordBranchAuthorizer(branchAuthorizer),
	)

	container.User = NewUserService(repos.UserRepo)
	container.Reporting = NewReportingService(
		repos.ReportingRepo,
		WithReportingBranchAuthorizer(branchAuthorizer),
	)
	container.TokenService = NewTokenService(cfg, container.User)

	return container
}
