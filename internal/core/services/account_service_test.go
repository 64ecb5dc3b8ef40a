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

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByPhone(ctx context.Context, branchID string, phone string) (*domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, branchID string, limit int, offset int) ([]domain.CurrentAccount, error) {
	args := m.Called(ctx, branchID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CurrentAccount), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.CurrentAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccountDetails(ctx context.Context, account domain.CurrentAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) AppendMovement(ctx context.Context, movement domain.LedgerMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockAccountRepository) FindDebitForRecord(ctx context.Context, recordID string) (*domain.LedgerMovement, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerMovement), args.Error(1)
}

func (m *MockAccountRepository) FindReversalForRecord(ctx context.Context, recordID string) (*domain.LedgerMovement, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerMovement), args.Error(1)
}

func (m *MockAccountRepository) ListMovementsByAccount(ctx context.Context, accountID string, limit int, nextToken *string) ([]domain.LedgerMovement, *string, error) {
	args := m.Called(ctx, accountID, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.LedgerMovement), returnedNextToken, args.Error(2)
}

// --- Mock BranchAuthorizer ---
type MockBranchAuthorizer struct {
	mock.Mock
}

var _ portssvc.BranchAuthorizerSvc = (*MockBranchAuthorizer)(nil)

func (m *MockBranchAuthorizer) AuthorizeUserAction(ctx context.Context, userID, branchID string, requiredRole domain.UserBranchRole) error {
	args := m.Called(ctx, userID, branchID, requiredRole)
	return args.Error(0)
}

// --- Test Suite ---

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockAuthorizer  *MockBranchAuthorizer
	service         portssvc.AccountSvcFacade
	branchID        string
	userID          string
	account         domain.CurrentAccount
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockAuthorizer = new(MockBranchAuthorizer)
	suite.service = services.NewAccountService(
		suite.mockAccountRepo,
		services.WithAccountBranchAuthorizer(suite.mockAuthorizer),
	)

	suite.branchID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.account = domain.CurrentAccount{
		AccountID:      uuid.NewString(),
		BranchID:       suite.branchID,
		ClientName:     "Maria Lopez",
		Phone:          "555-0101",
		InitialBalance: decimal.NewFromInt(50000),
		Balance:        decimal.NewFromInt(50000),
		IsActive:       true,
	}
}

// --- CreateAccount ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{
		ClientName:     "Maria Lopez",
		Phone:          "555-0101",
		InitialBalance: decimal.NewFromInt(30000),
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleOperator).Return(nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.CurrentAccount")).Return(nil).Once()

	created, err := suite.service.CreateAccount(ctx, suite.branchID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(created)
	suite.NotEmpty(created.AccountID)
	suite.Equal(suite.branchID, created.BranchID)
	suite.True(created.Balance.Equal(req.InitialBalance))
	suite.True(created.IsActive)

	suite.mockAuthorizer.AssertExpectations(suite.T())
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_DuplicatePhone() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{ClientName: "Maria Lopez", Phone: "555-0101"}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleOperator).Return(nil).Once()
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.CurrentAccount")).Return(apperrors.ErrDuplicate).Once()

	created, err := suite.service.CreateAccount(ctx, suite.branchID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(created)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- LookupByPhone ---

func (suite *AccountServiceTestSuite) TestLookupByPhone_MissingAccountIsNotAnError() {
	ctx := context.Background()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByPhone", ctx, suite.branchID, "555-9999").Return(nil, apperrors.ErrNotFound).Once()

	account, err := suite.service.LookupByPhone(ctx, suite.branchID, "555-9999", suite.userID)

	suite.Require().NoError(err)
	suite.Nil(account)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- TopUp ---

func (suite *AccountServiceTestSuite) TestTopUp_AppendsPositiveMovement() {
	ctx := context.Background()
	req := dto.TopUpRequest{Amount: decimal.NewFromInt(20000)}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleOperator).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Twice()
	suite.mockAccountRepo.On("AppendMovement", ctx, mock.MatchedBy(func(m domain.LedgerMovement) bool {
		return m.Cause == domain.MovementTopUp &&
			m.Amount.Equal(decimal.NewFromInt(20000)) &&
			m.RecordID == nil
	})).Return(nil).Once()

	updated, err := suite.service.TopUp(ctx, suite.branchID, suite.account.AccountID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestTopUp_RejectsNonPositiveAmount() {
	ctx := context.Background()
	req := dto.TopUpRequest{Amount: decimal.Zero}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleOperator).Return(nil).Once()

	updated, err := suite.service.TopUp(ctx, suite.branchID, suite.account.AccountID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(updated)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "AppendMovement", mock.Anything, mock.Anything)
}

func (suite *AccountServiceTestSuite) TestTopUp_RetriesOnConflict() {
	ctx := context.Background()
	req := dto.TopUpRequest{Amount: decimal.NewFromInt(5000)}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleOperator).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, suite.account.AccountID).Return(&suite.account, nil).Twice()
	suite.mockAccountRepo.On("AppendMovement", ctx, mock.AnythingOfType("domain.LedgerMovement")).Return(apperrors.ErrConflict).Twice()
	suite.mockAccountRepo.On("AppendMovement", ctx, mock.AnythingOfType("domain.LedgerMovement")).Return(nil).Once()

	_, err := suite.service.TopUp(ctx, suite.branchID, suite.account.AccountID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- DebitForRecord ---

func (suite *AccountServiceTestSuite) TestDebitForRecord_AppendsNegativeMovement() {
	ctx := context.Background()
	recordID := uuid.NewString()
	amount := decimal.NewFromInt(18360)

	suite.mockAccountRepo.On("AppendMovement", ctx, mock.MatchedBy(func(m domain.LedgerMovement) bool {
		return m.Cause == domain.MovementServiceDebit &&
			m.Amount.Equal(amount.Neg()) &&
			m.RecordID != nil && *m.RecordID == recordID
	})).Return(nil).Once()

	err := suite.service.DebitForRecord(ctx, suite.branchID, suite.account.AccountID, recordID, amount, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDebitForRecord_SecondDebitRejected() {
	ctx := context.Background()
	recordID := uuid.NewString()

	suite.mockAccountRepo.On("AppendMovement", ctx, mock.AnythingOfType("domain.LedgerMovement")).Return(apperrors.ErrDuplicate).Once()

	err := suite.service.DebitForRecord(ctx, suite.branchID, suite.account.AccountID, recordID, decimal.NewFromInt(100), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

// --- ReverseRecordDebit ---

func (suite *AccountServiceTestSuite) TestReverseRecordDebit_CreditsDebitMagnitude() {
	ctx := context.Background()
	recordID := uuid.NewString()
	debit := domain.LedgerMovement{
		MovementID: uuid.NewString(),
		AccountID:  suite.account.AccountID,
		BranchID:   suite.branchID,
		Amount:     decimal.NewFromInt(-24000),
		Cause:      domain.MovementServiceDebit,
		RecordID:   &recordID,
	}

	suite.mockAccountRepo.On("FindDebitForRecord", ctx, recordID).Return(&debit, nil).Once()
	suite.mockAccountRepo.On("AppendMovement", ctx, mock.MatchedBy(func(m domain.LedgerMovement) bool {
		return m.Cause == domain.MovementDebitReversal &&
			m.Amount.Equal(decimal.NewFromInt(24000)) &&
			m.RecordID != nil && *m.RecordID == recordID
	})).Return(nil).Once()

	reversed, err := suite.service.ReverseRecordDebit(ctx, suite.branchID, recordID, suite.userID)

	suite.Require().NoError(err)
	suite.True(reversed.Equal(decimal.NewFromInt(24000)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestReverseRecordDebit_SecondCallIsNoOp() {
	ctx := context.Background()
	recordID := uuid.NewString()
	debit := domain.LedgerMovement{
		MovementID: uuid.NewString(),
		AccountID:  suite.account.AccountID,
		Amount:     decimal.NewFromInt(-24000),
		Cause:      domain.MovementServiceDebit,
		RecordID:   &recordID,
	}

	suite.mockAccountRepo.On("FindDebitForRecord", ctx, recordID).Return(&debit, nil).Once()
	// The ledger already holds the reversal; the repository reports a duplicate.
	suite.mockAccountRepo.On("AppendMovement", ctx, mock.AnythingOfType("domain.LedgerMovement")).Return(apperrors.ErrDuplicate).Once()

	reversed, err := suite.service.ReverseRecordDebit(ctx, suite.branchID, recordID, suite.userID)

	suite.Require().NoError(err)
	suite.True(reversed.Equal(decimal.NewFromInt(24000)))
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestReverseRecordDebit_MissingDebitIsAnError() {
	ctx := context.Background()
	recordID := uuid.NewString()

	suite.mockAccountRepo.On("FindDebitForRecord", ctx, recordID).Return(nil, apperrors.ErrNotFound).Once()

	reversed, err := suite.service.ReverseRecordDebit(ctx, suite.branchID, recordID, suite.userID)

	// A reversal with nothing to reverse must be visible to the caller, not
	// reported as a successful zero credit.
	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.True(reversed.IsZero())
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "AppendMovement", mock.Anything, mock.Anything)
}

// --- Authorization ---

func (suite *AccountServiceTestSuite) TestCreateAccount_Forbidden() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{ClientName: "Maria Lopez", Phone: "555-0101"}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userID, suite.branchID, domain.RoleOperator).Return(apperrors.ErrForbidden).Once()

	created, err := suite.service.CreateAccount(ctx, suite.branchID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(created)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount", mock.Anything, mock.Anything)
}

func TestAccountService(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
