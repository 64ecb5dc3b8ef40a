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

// --- Mock PromotionRepository ---

type MockPromotionRepository struct {
	mock.Mock
}

var _ portsrepo.PromotionRepositoryFacade = (*MockPromotionRepository)(nil)

func (m *MockPromotionRepository) FindPromotionByID(ctx context.Context, promotionID string) (*domain.Promotion, error) {
	args := m.Called(ctx, promotionID)
	if p, ok := args.Get(0).(*domain.Promotion); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPromotionRepository) ListPromotionsByBranch(ctx context.Context, branchID string, includeInactive bool) ([]domain.Promotion, error) {
	args := m.Called(ctx, branchID, includeInactive)
	if promos, ok := args.Get(0).([]domain.Promotion); ok {
		return promos, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPromotionRepository) SavePromotion(ctx context.Context, promotion domain.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

func (m *MockPromotionRepository) UpdatePromotion(ctx context.Context, promotion domain.Promotion) error {
	args := m.Called(ctx, promotion)
	return args.Error(0)
}

func (m *MockPromotionRepository) FindBenefitByID(ctx context.Context, benefitID string) (*domain.SurveyBenefit, error) {
	args := m.Called(ctx, benefitID)
	if b, ok := args.Get(0).(*domain.SurveyBenefit); ok {
		return b, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPromotionRepository) ListPendingBenefitsByPhone(ctx context.Context, branchID string, phone string) ([]domain.SurveyBenefit, error) {
	args := m.Called(ctx, branchID, phone)
	if benefits, ok := args.Get(0).([]domain.SurveyBenefit); ok {
		return benefits, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPromotionRepository) SaveBenefit(ctx context.Context, benefit domain.SurveyBenefit) error {
	args := m.Called(ctx, benefit)
	return args.Error(0)
}

func (m *MockPromotionRepository) MarkBenefitRedeemed(ctx context.Context, benefitID string, userID string, now time.Time) error {
	args := m.Called(ctx, benefitID, userID, now)
	return args.Error(0)
}

// --- Test Suite ---

type PromotionServiceTestSuite struct {
	suite.Suite
	mockPromotionRepo *MockPromotionRepository
	mockAuthorizer    *MockBranchAuthorizer
	service           portssvc.PromotionSvcFacade
	branchID          string
	userID            string
}

func (suite *PromotionServiceTestSuite) SetupTest() {
	suite.mockPromotionRepo = new(MockPromotionRepository)
	suite.mockAuthorizer = new(MockBranchAuthorizer)
	suite.service = services.NewPromotionService(
		suite.mockPromotionRepo,
		services.WithPromotionBranchAuthorizer(suite.mockAuthorizer),
	)
	suite.branchID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *PromotionServiceTestSuite) authorize(role domain.UserBranchRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.branchID, role).Return(nil).Once()
}

func (suite *PromotionServiceTestSuite) TestCreatePromotion_PercentDiscount() {
	suite.authorize(domain.RoleAdmin)
	percent := decimal.NewFromInt(15)
	req := dto.CreatePromotionRequest{
		Name:            "Wax Week",
		TargetKinds:     []domain.ServiceKind{domain.KindWithWax},
		DiscountPercent: &percent,
	}

	suite.mockPromotionRepo.On("SavePromotion", mock.Anything, mock.MatchedBy(func(p domain.Promotion) bool {
		return p.BranchID == suite.branchID &&
			p.DiscountPercent.Equal(percent) &&
			p.DiscountAmount.IsZero() &&
			p.IsActive
	})).Return(nil).Once()

	promo, err := suite.service.CreatePromotion(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(promo)
	suite.Equal("Wax Week", promo.Name)
	suite.mockPromotionRepo.AssertExpectations(suite.T())
}

func (suite *PromotionServiceTestSuite) TestCreatePromotion_BothDiscountModesRejected() {
	suite.authorize(domain.RoleAdmin)
	percent := decimal.NewFromInt(10)
	amount := decimal.NewFromInt(2000)
	req := dto.CreatePromotionRequest{
		Name:            "Broken",
		DiscountPercent: &percent,
		DiscountAmount:  &amount,
	}

	_, err := suite.service.CreatePromotion(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockPromotionRepo.AssertNotCalled(suite.T(), "SavePromotion", mock.Anything, mock.Anything)
}

func (suite *PromotionServiceTestSuite) TestCreatePromotion_NoDiscountRejected() {
	suite.authorize(domain.RoleAdmin)
	req := dto.CreatePromotionRequest{Name: "Empty"}

	_, err := suite.service.CreatePromotion(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PromotionServiceTestSuite) TestCreatePromotion_PercentAboveHundredRejected() {
	suite.authorize(domain.RoleAdmin)
	percent := decimal.NewFromInt(120)
	req := dto.CreatePromotionRequest{Name: "Too much", DiscountPercent: &percent}

	_, err := suite.service.CreatePromotion(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
}

func (suite *PromotionServiceTestSuite) TestCreatePromotion_RequiresAdmin() {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.branchID, domain.RoleAdmin).
		Return(apperrors.ErrForbidden).Once()
	percent := decimal.NewFromInt(10)
	req := dto.CreatePromotionRequest{Name: "Nope", DiscountPercent: &percent}

	_, err := suite.service.CreatePromotion(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockPromotionRepo.AssertNotCalled(suite.T(), "SavePromotion", mock.Anything, mock.Anything)
}

func (suite *PromotionServiceTestSuite) TestUpdatePromotion_Deactivate() {
	suite.authorize(domain.RoleAdmin)
	promotionID := uuid.NewString()
	existing := &domain.Promotion{
		PromotionID:     promotionID,
		BranchID:        suite.branchID,
		Name:            "Wax Week",
		DiscountPercent: decimal.NewFromInt(15),
		IsActive:        true,
	}
	suite.mockPromotionRepo.On("FindPromotionByID", mock.Anything, promotionID).Return(existing, nil).Once()

	inactive := false
	suite.mockPromotionRepo.On("UpdatePromotion", mock.Anything, mock.MatchedBy(func(p domain.Promotion) bool {
		return p.PromotionID == promotionID && !p.IsActive && p.LastUpdatedBy == suite.userID
	})).Return(nil).Once()

	promo, err := suite.service.UpdatePromotion(context.Background(), suite.branchID, promotionID, dto.UpdatePromotionRequest{IsActive: &inactive}, suite.userID)

	suite.Require().NoError(err)
	suite.False(promo.IsActive)
	suite.mockPromotionRepo.AssertExpectations(suite.T())
}

func (suite *PromotionServiceTestSuite) TestGetPromotionByID_WrongBranchHidden() {
	suite.authorize(domain.RoleReadOnly)
	promotionID := uuid.NewString()
	other := &domain.Promotion{PromotionID: promotionID, BranchID: uuid.NewString()}
	suite.mockPromotionRepo.On("FindPromotionByID", mock.Anything, promotionID).Return(other, nil).Once()

	_, err := suite.service.GetPromotionByID(context.Background(), suite.branchID, promotionID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *PromotionServiceTestSuite) TestGrantBenefit_DefaultPercentStoredAsZero() {
	suite.authorize(domain.RoleOperator)
	req := dto.GrantBenefitRequest{ClientPhone: "555-0101", SurveyResponseID: "resp-42"}

	suite.mockPromotionRepo.On("SaveBenefit", mock.Anything, mock.MatchedBy(func(b domain.SurveyBenefit) bool {
		return b.ClientPhone == "555-0101" &&
			b.DiscountPercent.IsZero() &&
			b.Status == domain.BenefitPending &&
			b.SurveyResponseID == "resp-42"
	})).Return(nil).Once()

	benefit, err := suite.service.GrantBenefit(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.BenefitPending, benefit.Status)
	suite.mockPromotionRepo.AssertExpectations(suite.T())
}

func (suite *PromotionServiceTestSuite) TestGrantBenefit_DuplicateSurveyResponseRejected() {
	suite.authorize(domain.RoleOperator)
	req := dto.GrantBenefitRequest{ClientPhone: "555-0101", SurveyResponseID: "resp-42"}

	suite.mockPromotionRepo.On("SaveBenefit", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.GrantBenefit(context.Background(), suite.branchID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *PromotionServiceTestSuite) TestRedeemBenefit_Success() {
	suite.authorize(domain.RoleOperator)
	benefitID := uuid.NewString()
	pending := &domain.SurveyBenefit{BenefitID: benefitID, BranchID: suite.branchID, Status: domain.BenefitPending}
	redeemed := &domain.SurveyBenefit{BenefitID: benefitID, BranchID: suite.branchID, Status: domain.BenefitRedeemed}

	suite.mockPromotionRepo.On("FindBenefitByID", mock.Anything, benefitID).Return(pending, nil).Once()
	suite.mockPromotionRepo.On("MarkBenefitRedeemed", mock.Anything, benefitID, suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockPromotionRepo.On("FindBenefitByID", mock.Anything, benefitID).Return(redeemed, nil).Once()

	benefit, err := suite.service.RedeemBenefit(context.Background(), suite.branchID, benefitID, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(domain.BenefitRedeemed, benefit.Status)
	suite.mockPromotionRepo.AssertExpectations(suite.T())
}

func (suite *PromotionServiceTestSuite) TestRedeemBenefit_LostRaceSurfacesConflict() {
	suite.authorize(domain.RoleOperator)
	benefitID := uuid.NewString()
	pending := &domain.SurveyBenefit{BenefitID: benefitID, BranchID: suite.branchID, Status: domain.BenefitPending}

	suite.mockPromotionRepo.On("FindBenefitByID", mock.Anything, benefitID).Return(pending, nil).Once()
	suite.mockPromotionRepo.On("MarkBenefitRedeemed", mock.Anything, benefitID, suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrConflict).Once()

	_, err := suite.service.RedeemBenefit(context.Background(), suite.branchID, benefitID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrConflict)
}

func TestPromotionService(t *testing.T) {
	suite.Run(t, new(PromotionServiceTestSuite))
}
