package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	RecordRepo    RecordRepositoryFacade
	AccountRepo   AccountRepositoryFacade
	PriceListRepo PriceListRepositoryFacade
	PromotionRepo PromotionRepositoryFacade
	BranchRepo    BranchRepositoryFacade
	UserRepo      UserRepositoryFacade
	ReportingRepo ReportingRepository
}
