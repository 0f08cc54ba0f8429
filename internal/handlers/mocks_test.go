package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/SscSPs/rewards_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/rewards_ledger/internal/core/ports/services"
	"github.com/SscSPs/rewards_ledger/internal/dto"
	"github.com/SscSPs/rewards_ledger/internal/handlers"
	"github.com/SscSPs/rewards_ledger/internal/middleware"
	"github.com/SscSPs/rewards_ledger/internal/platform/config"
	"github.com/SscSPs/rewards_ledger/pkg/uow"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest) (*domain.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) HasReference(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerService) ListTransactions(ctx context.Context, accountID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, accountID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

func (m *MockLedgerService) Credit(ctx context.Context, entry domain.LedgerEntry) (*domain.Transaction, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) Debit(ctx context.Context, entry domain.LedgerEntry) (*domain.Transaction, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) CreditInTx(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockLedgerService) DebitInTx(ctx context.Context, tx uow.TX, entry domain.LedgerEntry) (*domain.Transaction, error) {
	args := m.Called(ctx, tx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Mock ReferralGraphService ---
type MockReferralGraphService struct {
	mock.Mock
}

func (m *MockReferralGraphService) AncestorsOf(ctx context.Context, accountID string, maxDepth int) ([]domain.Ancestor, error) {
	args := m.Called(ctx, accountID, maxDepth)
	ancestors, _ := args.Get(0).([]domain.Ancestor)
	return ancestors, args.Error(1)
}

var _ portssvc.ReferralGraphSvc = (*MockReferralGraphService)(nil)

// --- Mock CommissionScheduleService ---
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Snapshot(ctx context.Context) (*domain.CommissionSchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionSchedule), args.Error(1)
}

func (m *MockScheduleService) Reload(ctx context.Context) (*domain.CommissionSchedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionSchedule), args.Error(1)
}

func (m *MockScheduleService) Replace(ctx context.Context, req dto.ReplaceScheduleRequest, userID string) (*domain.CommissionSchedule, []string, error) {
	args := m.Called(ctx, req, userID)
	warnings, _ := args.Get(1).([]string)
	if args.Get(0) == nil {
		return nil, warnings, args.Error(2)
	}
	return args.Get(0).(*domain.CommissionSchedule), warnings, args.Error(2)
}

var _ portssvc.CommissionScheduleSvcFacade = (*MockScheduleService)(nil)

// --- Mock CommissionDistributor ---
type MockDistributor struct {
	mock.Mock
}

func (m *MockDistributor) Distribute(ctx context.Context, sourceAccountID string, baseAmount decimal.Decimal, eventID string) (*domain.Distribution, error) {
	args := m.Called(ctx, sourceAccountID, baseAmount, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Distribution), args.Error(1)
}

func (m *MockDistributor) Reverse(ctx context.Context, originalEventID string, reversalEventID string) (*domain.Distribution, error) {
	args := m.Called(ctx, originalEventID, reversalEventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Distribution), args.Error(1)
}

func (m *MockDistributor) EarningsForEvent(ctx context.Context, eventID string) ([]domain.ReferralEarning, error) {
	args := m.Called(ctx, eventID)
	earnings, _ := args.Get(0).([]domain.ReferralEarning)
	return earnings, args.Error(1)
}

var _ portssvc.CommissionDistributorSvc = (*MockDistributor)(nil)

// --- Mock EarningService ---
type MockEarningService struct {
	mock.Mock
}

func (m *MockEarningService) outcome(args mock.Arguments) (*domain.EarningOutcome, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EarningOutcome), args.Error(1)
}

func (m *MockEarningService) Record(ctx context.Context, event domain.EarningEvent, change portssvc.StateChange) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, event, change))
}

func (m *MockEarningService) ApproveTaskSubmission(ctx context.Context, req dto.TaskApprovalRequest) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, req))
}

func (m *MockEarningService) GradeQuiz(ctx context.Context, req dto.QuizGradeRequest) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, req))
}

func (m *MockEarningService) DailyCheckIn(ctx context.Context, req dto.CheckInRequest) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, req))
}

func (m *MockEarningService) RefundDispute(ctx context.Context, req dto.DisputeRefundRequest) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, req))
}

func (m *MockEarningService) AdminAdjust(ctx context.Context, req dto.AdjustmentRequest, adminID string) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, req, adminID))
}

func (m *MockEarningService) ReverseEarning(ctx context.Context, req dto.EarningReversalRequest, adminID string) (*domain.EarningOutcome, error) {
	return m.outcome(m.Called(ctx, req, adminID))
}

var _ portssvc.EarningSvcFacade = (*MockEarningService)(nil)

// --- Shared suite ---

// handlerSuite wires every route through RegisterRoutes with mocked services.
type handlerSuite struct {
	suite.Suite
	router      *gin.Engine
	jwtSecret   string
	accounts    *MockAccountService
	ledger      *MockLedgerService
	graph       *MockReferralGraphService
	schedule    *MockScheduleService
	distributor *MockDistributor
	earning     *MockEarningService
}

func (s *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.jwtSecret = "test-secret-key-that-is-long-enough"

	s.accounts = new(MockAccountService)
	s.ledger = new(MockLedgerService)
	s.graph = new(MockReferralGraphService)
	s.schedule = new(MockScheduleService)
	s.distributor = new(MockDistributor)
	s.earning = new(MockEarningService)

	cfg := &config.Config{
		JWTSecret:         s.jwtSecret,
		IsProduction:      true,
		CommissionLedger:  string(domain.PointsLedger),
		CashDecimalPlaces: 2,
		PointsPerCashUnit: decimal.NewFromInt(100),
	}
	handlers.RegisterRoutes(s.router, cfg, &portssvc.ServiceContainer{
		Account:       s.accounts,
		Ledger:        s.ledger,
		ReferralGraph: s.graph,
		Schedule:      s.schedule,
		Distributor:   s.distributor,
		Earning:       s.earning,
	})
}

func (s *handlerSuite) TearDownTest() {
	s.accounts.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
	s.graph.AssertExpectations(s.T())
	s.schedule.AssertExpectations(s.T())
	s.distributor.AssertExpectations(s.T())
	s.earning.AssertExpectations(s.T())
}

// generateTestToken creates a signed JWT for userID carrying role.
func (s *handlerSuite) generateTestToken(userID, role string) string {
	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "rewards-ledger-test",
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		s.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

// serve sends a request as userID with role and returns the recorder.
func (s *handlerSuite) serve(method, url string, body any, userID, role string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.generateTestToken(userID, role))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *handlerSuite) decode(w *httptest.ResponseRecorder, into any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), into), w.Body.String())
}
