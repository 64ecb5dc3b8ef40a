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
	"github.com/lavadero/carwash_backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedBy string, now time.Time) error {
	args := m.Called(ctx, userID, deletedBy, now)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

// --- Test Suite ---
type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvcFacade
	ctx      context.Context
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockRepo)
	suite.ctx = context.Background()
}

// --- Test Cases ---

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	req := dto.CreateUserRequest{
		Name:     "Ana Lopez",
		Username: "ana.lopez",
		Password: "long-enough-pass",
	}

	suite.mockRepo.On("FindUserByUsername", suite.ctx, req.Username).
		Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", suite.ctx, mock.MatchedBy(func(u domain.User) bool {
		// Password must be stored hashed, never verbatim
		return u.Username == req.Username &&
			u.PasswordHash != req.Password &&
			utils.CheckPasswordHash(req.Password, u.PasswordHash)
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(suite.ctx, req)

	suite.NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(req.Name, user.Name)
	suite.NotEmpty(user.UserID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	req := dto.CreateUserRequest{
		Name:     "Ana Lopez",
		Username: "ana.lopez",
		Password: "long-enough-pass",
	}
	existing := &domain.User{UserID: uuid.NewString(), Username: req.Username}

	suite.mockRepo.On("FindUserByUsername", suite.ctx, req.Username).
		Return(existing, nil).Once()

	user, err := suite.service.CreateUser(suite.ctx, req)

	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(user)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser")
}

func (suite *UserServiceTestSuite) TestUpdateUser_SelfOnly() {
	userID := uuid.NewString()
	otherUserID := uuid.NewString()
	newName := "New Name"

	user, err := suite.service.UpdateUser(suite.ctx, userID, dto.UpdateUserRequest{Name: &newName}, otherUserID)

	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(user)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateUser")
}

func (suite *UserServiceTestSuite) TestDeleteUser_Success() {
	userID := uuid.NewString()

	suite.mockRepo.On("MarkUserDeleted", suite.ctx, userID, userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()

	err := suite.service.DeleteUser(suite.ctx, userID, userID)

	suite.NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	password := "long-enough-pass"
	hash, err := utils.HashPassword(password)
	suite.Require().NoError(err)

	stored := &domain.User{
		UserID:       uuid.NewString(),
		Username:     "ana.lopez",
		PasswordHash: hash,
	}

	suite.mockRepo.On("FindUserByUsername", suite.ctx, stored.Username).
		Return(stored, nil).Once()

	user, err := suite.service.AuthenticateUser(suite.ctx, stored.Username, password)

	suite.NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(stored.UserID, user.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	hash, err := utils.HashPassword("the-right-password")
	suite.Require().NoError(err)

	stored := &domain.User{
		UserID:       uuid.NewString(),
		Username:     "ana.lopez",
		PasswordHash: hash,
	}

	suite.mockRepo.On("FindUserByUsername", suite.ctx, stored.Username).
		Return(stored, nil).Once()

	user, err := suite.service.AuthenticateUser(suite.ctx, stored.Username, "the-wrong-password")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownUserSameError() {
	suite.mockRepo.On("FindUserByUsername", suite.ctx, "nobody").
		Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.AuthenticateUser(suite.ctx, "nobody", "whatever-pass")

	// Unknown user must be indistinguishable from a wrong password
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_SoftDeletedRejected() {
	hash, err := utils.HashPassword("long-enough-pass")
	suite.Require().NoError(err)
	deletedAt := time.Now().Add(-time.Hour)

	stored := &domain.User{
		UserID:       uuid.NewString(),
		Username:     "ana.lopez",
		PasswordHash: hash,
		DeletedAt:    &deletedAt,
	}

	suite.mockRepo.On("FindUserByUsername", suite.ctx, stored.Username).
		Return(stored, nil).Once()

	user, err := suite.service.AuthenticateUser(suite.ctx, stored.Username, "long-enough-pass")

	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestListUsers_NilBecomesEmptySlice() {
	suite.mockRepo.On("ListUsers", suite.ctx, 20, 0).
		Return(nil, nil).Once()

	users, err := suite.service.ListUsers(suite.ctx, 20, 0)

	suite.NoError(err)
	suite.NotNil(users)
	suite.Empty(users)
}

// --- Run Test Suite ---
func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
