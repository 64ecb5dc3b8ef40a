package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Record    RecordSvcFacade
	Account   AccountSvcFacade
	PriceList PriceListSvcFacade
	Promotion PromotionSvcFacade
	Branch    BranchSvcFacade
	User      UserSvcFacade
	Reporting ReportingService

	// TokenService handles the generation and validation of access and refresh tokens.
	TokenService TokenSvcFacade
}
