package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lavadero/carwash_backend/internal/core/domain"
	portssvc "github.com/lavadero/carwash_backend/internal/core/ports/services"
	coresvc "github.com/lavadero/carwash_backend/internal/core/services"
	"github.com/lavadero/carwash_backend/internal/dto"
	"github.com/lavadero/carwash_backend/internal/handlers"
	"github.com/lavadero/carwash_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock RecordService ---
type MockRecordService struct {
	mock.Mock
}

func (m *MockRecordService) GetRecordByID(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, branchID, recordID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}
func (m *MockRecordService) ListRecords(ctx context.Context, branchID string, userID string, params dto.ListRecordsParams) (*dto.ListRecordsResponse, error) {
	args := m.Called(ctx, branchID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListRecordsResponse), args.Error(1)
}
func (m *MockRecordService) IntakeRecord(ctx context.Context, branchID string, req dto.CreateRecordRequest, userID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, branchID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}
func (m *MockRecordService) MarkReady(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, branchID, recordID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}
func (m *MockRecordService) MarkDelivered(ctx context.Context, branchID string, recordID string, userID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, branchID, recordID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}
func (m *MockRecordService) RegisterPayment(ctx context.Context, branchID string, recordID string, req dto.RegisterPaymentRequest, userID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, branchID, recordID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}
func (m *MockRecordService) CancelRecord(ctx context.Context, branchID string, recordID string, reason string, userID string) (*domain.ServiceRecord, error) {
	args := m.Called(ctx, branchID, recordID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Error(1)
}
func (m *MockRecordService) AnnulRecord(ctx context.Context, branchID string, recordID string, reason string, userID string) (*domain.ServiceRecord, decimal.Decimal, error) {
	args := m.Called(ctx, branchID, recordID, reason, userID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(*domain.ServiceRecord), args.Get(1).(decimal.Decimal), args.Error(2)
}
func (m *MockRecordService) DeleteRecord(ctx context.Context, branchID string, recordID string, userID string) (decimal.Decimal, error) {
	args := m.Called(ctx, branchID, recordID, userID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.RecordSvcFacade = (*MockRecordService)(nil)

// --- Test Suite ---
type RecordHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockRecordService *MockRecordService
	jwtSecret         string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *RecordHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "carwash-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedString, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signedString
}

func (suite *RecordHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	// Use the actual AuthMiddleware
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockRecordService = new(MockRecordService)

	// Mimic the branch-scoped grouping main wires up
	branch := suite.router.Group("/api/v1/branches/:branch_id")
	handlers.RegisterRecordRoutes(branch, suite.mockRecordService)
}

// doRequest signs a token for userID and runs the request through the router.
func (suite *RecordHandlerTestSuite) doRequest(method, url, userID string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reqBody = bytes.NewBuffer(raw)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, url, reqBody)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *RecordHandlerTestSuite) TestIntakeRecord_Success() {
	branchID := uuid.NewString()
	userID := uuid.NewString()

	reqBody := dto.CreateRecordRequest{
		VehicleCategory: domain.CategorySUV,
		ServiceKinds:    []domain.ServiceKind{domain.KindSimple, domain.KindInterior},
		ClientName:      "Maria Gomez",
		ClientPhone:     "+541155551234",
	}
	expected := &domain.ServiceRecord{
		RecordID:        uuid.NewString(),
		BranchID:        branchID,
		VehicleCategory: domain.CategorySUV,
		ServiceKinds:    reqBody.ServiceKinds,
		ClientName:      reqBody.ClientName,
		ClientPhone:     reqBody.ClientPhone,
		TotalPrice:      decimal.NewFromInt(13000),
		State:           domain.StateInProgress,
	}

	suite.mockRecordService.On("IntakeRecord",
		mock.AnythingOfType("*context.valueCtx"),
		branchID,
		mock.MatchedBy(func(r dto.CreateRecordRequest) bool {
			return r.VehicleCategory == domain.CategorySUV && len(r.ServiceKinds) == 2
		}),
		userID,
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/branches/%s/records", branchID)
	w := suite.doRequest(http.MethodPost, url, userID, reqBody)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.RecordResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.RecordID, resp.RecordID)
	suite.Equal(domain.StateInProgress, resp.State)
	suite.True(expected.TotalPrice.Equal(resp.TotalPrice))

	suite.mockRecordService.AssertExpectations(suite.T())
}

func (suite *RecordHandlerTestSuite) TestIntakeRecord_InvalidCategoryRejected() {
	branchID := uuid.NewString()
	userID := uuid.NewString()

	body := map[string]any{
		"vehicleCategory": "HOVERCRAFT",
		"serviceKinds":    []string{"SIMPLE"},
		"clientName":      "Maria Gomez",
	}

	url := fmt.Sprintf("/api/v1/branches/%s/records", branchID)
	w := suite.doRequest(http.MethodPost, url, userID, body)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRecordService.AssertNotCalled(suite.T(), "IntakeRecord")
}

func (suite *RecordHandlerTestSuite) TestMarkDelivered_PaymentPending() {
	branchID := uuid.NewString()
	recordID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockRecordService.On("MarkDelivered",
		mock.AnythingOfType("*context.valueCtx"), branchID, recordID, userID,
	).Return(nil, coresvc.ErrPaymentPending).Once()

	url := fmt.Sprintf("/api/v1/branches/%s/records/%s/deliver", branchID, recordID)
	w := suite.doRequest(http.MethodPost, url, userID, nil)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockRecordService.AssertExpectations(suite.T())
}

func (suite *RecordHandlerTestSuite) TestCancelRecord_ReasonRequired() {
	branchID := uuid.NewString()
	recordID := uuid.NewString()
	userID := uuid.NewString()

	url := fmt.Sprintf("/api/v1/branches/%s/records/%s/cancel", branchID, recordID)
	w := suite.doRequest(http.MethodPost, url, userID, map[string]any{})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRecordService.AssertNotCalled(suite.T(), "CancelRecord")
}

func (suite *RecordHandlerTestSuite) TestAnnulRecord_Success() {
	branchID := uuid.NewString()
	recordID := uuid.NewString()
	userID := uuid.NewString()
	reversed := decimal.NewFromInt(8000)

	annulled := &domain.ServiceRecord{
		RecordID:   recordID,
		BranchID:   branchID,
		State:      domain.StateAnnulled,
		VoidReason: "duplicate intake",
	}

	suite.mockRecordService.On("AnnulRecord",
		mock.AnythingOfType("*context.valueCtx"), branchID, recordID, "duplicate intake", userID,
	).Return(annulled, reversed, nil).Once()

	url := fmt.Sprintf("/api/v1/branches/%s/records/%s/annul", branchID, recordID)
	w := suite.doRequest(http.MethodPost, url, userID, dto.VoidRecordRequest{Reason: "duplicate intake"})

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.AnnulRecordResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StateAnnulled, resp.Record.State)
	suite.True(reversed.Equal(resp.ReversedAmount))

	suite.mockRecordService.AssertExpectations(suite.T())
}

func (suite *RecordHandlerTestSuite) TestListRecords_MissingToken() {
	branchID := uuid.NewString()

	url := fmt.Sprintf("/api/v1/branches/%s/records", branchID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockRecordService.AssertNotCalled(suite.T(), "ListRecords")
}

// --- Run Test Suite ---
func TestRecordHandler(t *testing.T) {
	suite.Run(t, new(RecordHandlerTestSuite))
}
