package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/lavadero/carwash_backend/internal/apperrors"
	"github.com/lavadero/carwash_backend/internal/core/domain"
	portsrepo "github.com/lavadero/carwash_backend/internal/core/ports/repositories"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	"github.com/lavadero/carwash_backend/internal/core/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RecordRepository ---
type MockRecordRepository struct {
	mock.Mock
}

var _ portsrepo.RecordRepositoryFacade = (*MockRecordRepository)(nil)

func (m *MockRecordRepository) FindRecordByID(ctx context.Context, recordID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}

func (m *MockRecordRepository) ListRecordsByBranch(ctx context.Context, branchID string, limit int, nextToken *string, includeVoided bool) ([]domain.ServiceRecord, *string, error) {
	args := m.Called(ctx, branchID, limit, nextToken, includeVoided)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.ServiceRecord), returnedNextToken, args.Error(2)
}

func (m *MockRecordRepository) SaveRecord(ctx context.Context, record domain.ServiceRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateRecordState(ctx context.Context, recordID string, expectedState, newState domain.RecordState, voidReason *string, readyAt, deliveredAt *time.Time, userID string, now time.Time) error {
	args := m.Called(ctx, recordID, expectedState, newState, voidReason, readyAt, deliveredAt, userID, now)
	return args.Error(0)
}

func (m *MockRecordRepository) UpdateRecordPayment(ctx context.Context, recordID string, method domain.PaymentMethod, userID string, now time.Time) error {
	args := m.Called(ctx, recordID, method, userID, now)
	return args.Error(0)
}

func (m *MockRecordRepository) DeleteRecord(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

// --- Mock AccountSvcFacade (as used by the record service) ---
type MockAccountService struct {
	mock.Mock
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

func (m *MockAccountService) GetAccountByID(ctx context.Context, branchID string, accountID string, userID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountService) LookupByPhone(ctx context.Context, branchID string, phone string, userID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, phone, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context, branchID string, userID string, limit int, offset int) ([]domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountService) ListMovements(ctx context.Context, branchID string, accountID string, userID string, params dto.ListMovementsParams) (*dto.ListMovementsResponse, error) {
	args := m.Called(ctx, branchID, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListMovementsResponse), args.Error(1)
}

func (m *MockAccountService) CreateAccount(ctx context.Context, branchID string, req dto.CreateAccountRequest, userID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountService) UpdateAccount(ctx context.Context, branchID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountService) TopUp(ctx context.Context, branchID string, accountID string, req dto.TopUpRequest, userID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountService) DeactivateAccount(ctx context.Context, branchID string, accountID string, userID string) error {
	args := m.Called(ctx, branchID, accountID, userID)
	return args.Error(0)
}

func (m *MockAccountService) DebitForRecord(ctx context.Context, branchID string, accountID string, recordID string, amount decimal.Decimal, userID string) error {
	args := m.Called(ctx, branchID, accountID, recordID, amount, userID)
	return args.Error(0)
}

func (m *MockAccountService) ReverseRecordDebit(ctx context.Context, branchID string, recordID string, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, branchID, recordID, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock PriceListSvcFacade ---
type MockPriceListService struct {
	mock.Mock
}

var _ portssvc.PriceListSvcFacade = (*MockPriceListService)(nil)

func (m *MockPriceListService) CreatePriceList(ctx context.Context, branchID string, req dto.CreatePriceListRequest, userID string) (*domain.PriceList, error) {
	args := m.Called(ctx, branchID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PriceList), args.Error(1)
}

func (m *MockPriceListService) ListPriceLists(ctx context.Context, branchID string, userID string) ([]domain.PriceList, error) {
	args := m.Called(ctx, branchID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PriceList), args.Error(1)
}

func (m *MockPriceListService) SetDefault(ctx context.Context, branchID string, priceListID string, userID string) error {
	args := m.Called(ctx, branchID, priceListID, userID)
	return args.Error(0)
}

func (m *MockPriceListService) UpsertEntry(ctx context.Context, branchID string, priceListID string, req dto.UpsertEntryRequest, userID string) error {
	args := m.Called(ctx, branchID, priceListID, req, userID)
	return args.Error(0)
}

func (m *MockPriceListService) DeleteEntry(ctx context.Context, branchID string, priceListID string, category domain.VehicleCategory, kind domain.ServiceKind, userID string) error {
	args := m.Called(ctx, branchID, priceListID, category, kind, userID)
	return args.Error(0)
}

func (m *MockPriceListService) GetEffectiveSnapshot(ctx context.Context, branchID string) (domain.PriceSnapshot, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.PriceSnapshot), args.Error(1)
}

// --- Mock PromotionSvcFacade ---
type MockPromotionService struct {
	mock.Mock
}

var _ portssvc.PromotionSvcFacade = (*MockPromotionService)(nil)

func (m *MockPromotionService) CreatePromotion(ctx context.Context, branchID string, req dto.CreatePromotionRequest, userID string) (*domain.Promotion, error) {
	args := m.Called(ctx, branchID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionService) UpdatePromotion(ctx context.Context, branchID string, promotionID string, req dto.UpdatePromotionRequest, userID string) (*domain.Promotion, error) {
	args := m.Called(ctx, branchID, promotionID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionService) GetPromotionByID(ctx context.Context, branchID string, promotionID string, userID string) (*domain.Promotion, error) {
	args := m.Called(ctx, branchID, promotionID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Promotion), args.Error(1)
}

func (m *MockPromotionService) ListPromotions(ctx context.Context, branchID string, userID string, includeInactive bool) ([]domain.Promotion, error) {
	args := m.Called(ctx, branchID, userID, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Promotion), args.Error(1)
}

func (m *MockPromotionService) GrantBenefit(ctx context.Context, branchID string, req dto.GrantBenefitRequest, userID string) (*domain.SurveyBenefit, error) {
	args := m.Called(ctx, branchID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SurveyBenefit), args.Error(1)
}

func (m *MockPromotionService) GetBenefitByID(ctx context.Context, branchID string, benefitID string, userID string) (*domain.SurveyBenefit, error) {
	args := m.Called(ctx, branchID, benefitID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SurveyBenefit), args.Error(1)
}

func (m *MockPromotionService) ListPendingBenefits(ctx context.Context, branchID string, phone string, userID string) ([]domain.SurveyBenefit, error) {
	args := m.Called(ctx, branchID, phone, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SurveyBenefit), args.Error(1)
}

func (m *MockPromotionService) RedeemBenefit(ctx context.Context, branchID string, benefitID string, userID string) (*domain.SurveyBenefit, error) {
	args := m.Called(ctx, branchID, benefitID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SurveyBenefit), args.Error(1)
}

// --- Test Suite ---

type RecordServiceTestSuite struct {
	suite.Suite
	mockRecordRepo *MockRecordRepository
	mockAccountSvc *MockAccountService
	mockPriceSvc   *MockPriceListService
	mockPromoSvc   *MockPromotionService
	mockAuthorizer *MockBranchAuthorizer
	service        portssvc.RecordSvcFacade
	branchID       string
	userID         string
}

func (suite *RecordServiceTestSuite) SetupTest() {
	suite.mockRecordRepo = new(MockRecordRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockPriceSvc = new(MockPriceListService)
	suite.mockPromoSvc = new(MockPromotionService)
	suite.mockAuthorizer = new(MockBranchAuthorizer)
	suite.service = services.NewRecordService(
		suite.mockRecordRepo,
		suite.mockAccountSvc,
		suite.mockPriceSvc,
		suite.mockPromoSvc,
		services.WithRecordBranchAuthorizer(suite.mockAuthorizer),
	)

	suite.branchID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *RecordServiceTestSuite) authorize(role domain.UserBranchRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.branchID, role).Return(nil).Once()
}

func (suite *RecordServiceTestSuite) recordInState(state domain.RecordState) *domain.ServiceRecord {
	return &domain.ServiceRecord{
		RecordID:        uuid.NewString(),
		BranchID:        suite.branchID,
		VehicleCategory: domain.CategoryCompact,
		ServiceKinds:    []domain.ServiceKind{domain.KindSimple},
		TotalPrice:      decimal.NewFromInt(22000),
		PaymentMethod:   domain.PaymentNone,
		State:           state,
	}
}

// --- Intake ---

func (suite *RecordServiceTestSuite) TestIntakeRecord_FreezesDefaultMatrixPrice() {
	ctx := context.Background()
	req := dto.CreateRecordRequest{
		VehicleCategory: domain.CategoryCompact,
		ServiceKinds:    []domain.ServiceKind{domain.KindSimple, domain.KindWithWax},
		ClientName:      "Juan Perez",
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()
	suite.mockRecordRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.ServiceRecord")).Return(nil).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(record)
	suite.True(record.TotalPrice.Equal(decimal.NewFromInt(24000)), "expected 24000, got %s", record.TotalPrice)
	suite.Equal(domain.StateInProgress, record.State)
	suite.False(record.Paid)
	suite.False(record.PaidViaAccount)

	suite.mockRecordRepo.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestIntakeRecord_StacksPromotionThenBenefit() {
	ctx := context.Background()
	promotionID := uuid.NewString()
	benefitID := uuid.NewString()
	req := dto.CreateRecordRequest{
		VehicleCategory: domain.CategoryCompact,
		ServiceKinds:    []domain.ServiceKind{domain.KindSimple, domain.KindWithWax},
		ClientName:      "Juan Perez",
		ClientPhone:     "555-0101",
		PromotionID:     &promotionID,
		BenefitID:       &benefitID,
	}

	promotion := &domain.Promotion{
		PromotionID:     promotionID,
		BranchID:        suite.branchID,
		DiscountPercent: decimal.NewFromInt(15),
		IsActive:        true,
	}
	benefit := &domain.SurveyBenefit{
		BenefitID:   benefitID,
		BranchID:    suite.branchID,
		ClientPhone: "555-0101",
		Status:      domain.BenefitPending,
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()
	suite.mockPromoSvc.On("GetPromotionByID", ctx, suite.branchID, promotionID, suite.userID).Return(promotion, nil).Once()
	suite.mockPromoSvc.On("GetBenefitByID", ctx, suite.branchID, benefitID, suite.userID).Return(benefit, nil).Once()
	suite.mockPromoSvc.On("RedeemBenefit", ctx, suite.branchID, benefitID, suite.userID).Return(benefit, nil).Once()
	suite.mockRecordRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.ServiceRecord")).Return(nil).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().NoError(err)
	// 24000 -> 15% promotion -> 20400 -> 10% benefit -> 18360
	suite.True(record.TotalPrice.Equal(decimal.NewFromInt(18360)), "expected 18360, got %s", record.TotalPrice)

	suite.mockPromoSvc.AssertExpectations(suite.T())
	suite.mockRecordRepo.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestIntakeRecord_AccountSettlementDebitsFrozenTotal() {
	ctx := context.Background()
	account := &domain.CurrentAccount{
		AccountID: uuid.NewString(),
		BranchID:  suite.branchID,
		Phone:     "555-0101",
		IsActive:  true,
	}
	req := dto.CreateRecordRequest{
		VehicleCategory:   domain.CategoryCompact,
		ServiceKinds:      []domain.ServiceKind{domain.KindSimple},
		ClientName:        "Juan Perez",
		ClientPhone:       "555-0101",
		UseCurrentAccount: true,
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()
	suite.mockAccountSvc.On("LookupByPhone", ctx, suite.branchID, "555-0101", suite.userID).Return(account, nil).Once()
	suite.mockRecordRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.ServiceRecord")).Return(nil).Once()
	suite.mockAccountSvc.On("DebitForRecord", ctx, suite.branchID, account.AccountID, mock.AnythingOfType("string"), decimal.NewFromInt(22000), suite.userID).Return(nil).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(record.PaidViaAccount)
	suite.Equal(domain.PaymentNone, record.PaymentMethod)
	suite.Require().NotNil(record.AccountID)
	suite.Equal(account.AccountID, *record.AccountID)

	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestIntakeRecord_SaveFailureLeavesBenefitPending() {
	ctx := context.Background()
	benefitID := uuid.NewString()
	req := dto.CreateRecordRequest{
		VehicleCategory: domain.CategoryCompact,
		ServiceKinds:    []domain.ServiceKind{domain.KindSimple},
		ClientName:      "Juan Perez",
		ClientPhone:     "555-0101",
		BenefitID:       &benefitID,
	}
	benefit := &domain.SurveyBenefit{
		BenefitID:   benefitID,
		BranchID:    suite.branchID,
		ClientPhone: "555-0101",
		Status:      domain.BenefitPending,
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()
	suite.mockPromoSvc.On("GetBenefitByID", ctx, suite.branchID, benefitID, suite.userID).Return(benefit, nil).Once()
	suite.mockRecordRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.ServiceRecord")).Return(apperrors.ErrInternal).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(record)
	// A failed intake must not consume the client's benefit.
	suite.mockPromoSvc.AssertNotCalled(suite.T(), "RedeemBenefit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestIntakeRecord_RedeemFailureRollsBackRecord() {
	ctx := context.Background()
	benefitID := uuid.NewString()
	req := dto.CreateRecordRequest{
		VehicleCategory: domain.CategoryCompact,
		ServiceKinds:    []domain.ServiceKind{domain.KindSimple},
		ClientName:      "Juan Perez",
		ClientPhone:     "555-0101",
		BenefitID:       &benefitID,
	}
	benefit := &domain.SurveyBenefit{
		BenefitID:   benefitID,
		BranchID:    suite.branchID,
		ClientPhone: "555-0101",
		Status:      domain.BenefitPending,
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()
	suite.mockPromoSvc.On("GetBenefitByID", ctx, suite.branchID, benefitID, suite.userID).Return(benefit, nil).Once()
	suite.mockRecordRepo.On("SaveRecord", ctx, mock.AnythingOfType("domain.ServiceRecord")).Return(nil).Once()
	// Another intake consumed the benefit between the pending check and here.
	suite.mockPromoSvc.On("RedeemBenefit", ctx, suite.branchID, benefitID, suite.userID).Return(nil, apperrors.ErrConflict).Once()
	suite.mockRecordRepo.On("DeleteRecord", ctx, mock.AnythingOfType("string")).Return(nil).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockRecordRepo.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestIntakeRecord_NoAccountForPhone() {
	ctx := context.Background()
	req := dto.CreateRecordRequest{
		VehicleCategory:   domain.CategoryCompact,
		ServiceKinds:      []domain.ServiceKind{domain.KindSimple},
		ClientName:        "Juan Perez",
		ClientPhone:       "555-0101",
		UseCurrentAccount: true,
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()
	suite.mockAccountSvc.On("LookupByPhone", ctx, suite.branchID, "555-0101", suite.userID).Return(nil, nil).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "SaveRecord", mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestIntakeRecord_NoBillableServices() {
	ctx := context.Background()
	// Motorcycles have no wax or chassis prices anywhere in the matrix.
	req := dto.CreateRecordRequest{
		VehicleCategory: domain.CategoryMotorcycle,
		ServiceKinds:    []domain.ServiceKind{domain.KindWithWax, domain.KindChassis},
		ClientName:      "Juan Perez",
	}

	suite.authorize(domain.RoleOperator)
	suite.mockPriceSvc.On("GetEffectiveSnapshot", ctx, suite.branchID).Return(domain.PriceSnapshot{}, nil).Once()

	record, err := suite.service.IntakeRecord(ctx, suite.branchID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(record)
}

// --- Delivery gate ---

func (suite *RecordServiceTestSuite) TestMarkDelivered_PaymentPendingLeavesStateUntouched() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateReady)

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()

	updated, err := suite.service.MarkDelivered(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrPaymentPending)
	suite.Nil(updated)
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "UpdateRecordState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestMarkDelivered_PaidRecordDelivers() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateReady)
	record.Paid = true
	record.PaymentMethod = domain.PaymentCash

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateReady, domain.StateDelivered,
		(*string)(nil), (*time.Time)(nil), mock.AnythingOfType("*time.Time"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.MarkDelivered(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StateDelivered, updated.State)
	suite.NotNil(updated.DeliveredAt)
	suite.mockRecordRepo.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestMarkDelivered_AccountSettledRecordDelivers() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateReady)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateReady, domain.StateDelivered,
		(*string)(nil), (*time.Time)(nil), mock.AnythingOfType("*time.Time"), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.MarkDelivered(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StateDelivered, updated.State)
}

// --- Payment ---

func (suite *RecordServiceTestSuite) TestRegisterPayment_AlreadySettledRejected() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateReady)
	record.Paid = true
	record.PaymentMethod = domain.PaymentCash

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()

	updated, err := suite.service.RegisterPayment(ctx, suite.branchID, record.RecordID, dto.RegisterPaymentRequest{Method: domain.PaymentTransfer}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(updated)
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "UpdateRecordPayment", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Cancel ---

func (suite *RecordServiceTestSuite) TestCancelRecord_ReversesAccountDebit() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateInProgress)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true
	reason := "client left before the wash started"

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateInProgress, domain.StateCancelled,
		&reason, (*time.Time)(nil), (*time.Time)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).Return(decimal.NewFromInt(22000), nil).Once()

	cancelled, err := suite.service.CancelRecord(ctx, suite.branchID, record.RecordID, reason, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StateCancelled, cancelled.State)
	suite.Equal(reason, cancelled.VoidReason)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestCancelRecord_OnlyFromInProgress() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateReady)

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()

	cancelled, err := suite.service.CancelRecord(ctx, suite.branchID, record.RecordID, "too late", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(cancelled)
}

func (suite *RecordServiceTestSuite) TestCancelRecord_ReasonRequired() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateInProgress)

	suite.authorize(domain.RoleOperator)

	cancelled, err := suite.service.CancelRecord(ctx, suite.branchID, record.RecordID, "", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(cancelled)
}

func (suite *RecordServiceTestSuite) TestCancelRecord_ReversalFailureLeavesRecordInProgress() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateInProgress)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).
		Return(decimal.Zero, apperrors.ErrConflict).Once()

	cancelled, err := suite.service.CancelRecord(ctx, suite.branchID, record.RecordID, "client left", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(cancelled)
	// The record must stay IN_PROGRESS so a retry can still credit the debit back.
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "UpdateRecordState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- Annul ---

func (suite *RecordServiceTestSuite) TestAnnulRecord_FromDeliveredReversesDebit() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateDelivered)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true
	reason := "charged the wrong vehicle"

	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateDelivered, domain.StateAnnulled,
		&reason, (*time.Time)(nil), (*time.Time)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).Return(decimal.NewFromInt(22000), nil).Once()

	annulled, reversed, err := suite.service.AnnulRecord(ctx, suite.branchID, record.RecordID, reason, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StateAnnulled, annulled.State)
	suite.True(reversed.Equal(decimal.NewFromInt(22000)))
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestAnnulRecord_SecondAnnulmentRejected() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateAnnulled)

	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()

	annulled, reversed, err := suite.service.AnnulRecord(ctx, suite.branchID, record.RecordID, "again", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(annulled)
	suite.True(reversed.IsZero())
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ReverseRecordDebit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestAnnulRecord_ReversalFailureKeepsRecordAnnullable() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateDelivered)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true
	reason := "charged the wrong vehicle"

	// First attempt: the ledger is contended and the reversal gives up.
	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).
		Return(decimal.Zero, apperrors.ErrConflict).Once()

	annulled, reversed, err := suite.service.AnnulRecord(ctx, suite.branchID, record.RecordID, reason, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(annulled)
	suite.True(reversed.IsZero())
	// The state must not have been flipped, or the retry below would be
	// rejected at the already-annulled guard with the debit stranded.
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "UpdateRecordState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	// Retry: the record is still DELIVERED, so the annulment goes through and
	// the client gets exactly one credit.
	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).
		Return(decimal.NewFromInt(22000), nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateDelivered, domain.StateAnnulled,
		&reason, (*time.Time)(nil), (*time.Time)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	annulled, reversed, err = suite.service.AnnulRecord(ctx, suite.branchID, record.RecordID, reason, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StateAnnulled, annulled.State)
	suite.True(reversed.Equal(decimal.NewFromInt(22000)))
	suite.mockAccountSvc.AssertNumberOfCalls(suite.T(), "ReverseRecordDebit", 2)
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestAnnulRecord_MissingDebitSurfacesInternal() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateDelivered)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true

	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).
		Return(decimal.Zero, apperrors.ErrNotFound).Once()

	annulled, reversed, err := suite.service.AnnulRecord(ctx, suite.branchID, record.RecordID, "bad charge", suite.userID)

	// An account-settled record with no debit is ledger corruption, not a
	// zero-amount success.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInternal)
	suite.Nil(annulled)
	suite.True(reversed.IsZero())
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "UpdateRecordState",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RecordServiceTestSuite) TestAnnulRecord_RequiresAdmin() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateDelivered)

	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.branchID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	annulled, _, err := suite.service.AnnulRecord(ctx, suite.branchID, record.RecordID, "reason", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(annulled)
	suite.mockRecordRepo.AssertNotCalled(suite.T(), "FindRecordByID", mock.Anything, mock.Anything)
}

// --- Delete ---

func (suite *RecordServiceTestSuite) TestDeleteRecord_ReversesBeforeDeleting() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateInProgress)
	accountID := uuid.NewString()
	record.AccountID = &accountID
	record.PaidViaAccount = true

	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockAccountSvc.On("ReverseRecordDebit", ctx, suite.branchID, record.RecordID, suite.userID).Return(decimal.NewFromInt(22000), nil).Once()
	suite.mockRecordRepo.On("DeleteRecord", ctx, record.RecordID).Return(nil).Once()

	reversed, err := suite.service.DeleteRecord(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().NoError(err)
	suite.True(reversed.Equal(decimal.NewFromInt(22000)))
	suite.mockRecordRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *RecordServiceTestSuite) TestDeleteRecord_NoAccountNothingReversed() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateCancelled)

	suite.authorize(domain.RoleAdmin)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("DeleteRecord", ctx, record.RecordID).Return(nil).Once()

	reversed, err := suite.service.DeleteRecord(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().NoError(err)
	suite.True(reversed.IsZero())
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "ReverseRecordDebit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- MarkReady ---

func (suite *RecordServiceTestSuite) TestMarkReady_Success() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateInProgress)

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateInProgress, domain.StateReady,
		(*string)(nil), mock.AnythingOfType("*time.Time"), (*time.Time)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	updated, err := suite.service.MarkReady(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.StateReady, updated.State)
	suite.NotNil(updated.ReadyAt)
}

func (suite *RecordServiceTestSuite) TestMarkReady_LostRaceSurfacesConflict() {
	ctx := context.Background()
	record := suite.recordInState(domain.StateInProgress)

	suite.authorize(domain.RoleOperator)
	suite.mockRecordRepo.On("FindRecordByID", ctx, record.RecordID).Return(record, nil).Once()
	suite.mockRecordRepo.On("UpdateRecordState", ctx, record.RecordID, domain.StateInProgress, domain.StateReady,
		(*string)(nil), mock.AnythingOfType("*time.Time"), (*time.Time)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(apperrors.ErrConflict).Once()

	updated, err := suite.service.MarkReady(ctx, suite.branchID, record.RecordID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.Nil(updated)
}

func TestRecordService(t *testing.T) {
	suite.Run(t, new(RecordServiceTestSuite))
}
