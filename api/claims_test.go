package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/claims"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

type MockClaimUseCase struct {
	mock.Mock
}

func (m *MockClaimUseCase) CreateClaim(ctx context.Context, input claims.CreateClaimInput) (*domain.Claim, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimUseCase) GetClaim(ctx context.Context, claimID int64) (*domain.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimUseCase) Transition(ctx context.Context, claimID int64, to domain.ClaimStatus, actorID, note *string) (*domain.Claim, error) {
	args := m.Called(ctx, claimID, to, actorID, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimUseCase) BulkTransition(ctx context.Context, claimIDs []int64, to domain.ClaimStatus, actorID, note *string) []claims.BulkResult {
	args := m.Called(ctx, claimIDs, to, actorID, note)
	return args.Get(0).([]claims.BulkResult)
}

func (m *MockClaimUseCase) History(ctx context.Context, claimID int64) ([]domain.StatusHistoryEntry, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatusHistoryEntry), args.Error(1)
}

func (m *MockClaimUseCase) SubmitStaleDrafts(ctx context.Context, olderThan time.Duration) (int, error) {
	args := m.Called(ctx, olderThan)
	return args.Int(0), args.Error(1)
}

type MockEligibilityUseCase struct {
	mock.Mock
}

func (m *MockEligibilityUseCase) CheckEligibility(ctx context.Context, query domain.DisruptionQuery, disruption domain.DisruptionType) (*eligibility.Result, error) {
	args := m.Called(ctx, query, disruption)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*eligibility.Result), args.Error(1)
}

func (m *MockEligibilityUseCase) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Airport), args.Error(1)
}

func sampleClaim(status domain.ClaimStatus) *domain.Claim {
	return &domain.Claim{
		ID:                 1001,
		ClaimNumber:        "CLM-2026-000001",
		OwnerID:            "user-1",
		CurrentStatus:      status,
		DisruptionType:     domain.DisruptionDelay,
		FlightNumber:       "TK1",
		FlightDate:         time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		DepartureIATA:      "IST",
		ArrivalIATA:        "JFK",
		CompensationAmount: 600,
		Currency:           "EUR",
		CommissionRate:     0.25,
		NetPayoutAmount:    450,
	}
}

func TestClaimHandler_transition(t *testing.T) {
	claimSvc := &MockClaimUseCase{}
	handler := NewClaimHandler(claimSvc, &MockEligibilityUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1001"}}
	body, _ := json.Marshal(transitionRequest{ToStatus: "SUBMITTED"})
	c.Request = httptest.NewRequest("POST", "/claims/1001/transition", bytes.NewReader(body))

	claimSvc.On("Transition", c.Request.Context(), int64(1001), domain.ClaimStatusSubmitted, (*string)(nil), (*string)(nil)).
		Return(sampleClaim(domain.ClaimStatusSubmitted), nil)

	handler.transition(c)

	assert.Equal(t, http.StatusOK, w.Code)
	claimSvc.AssertExpectations(t)
}

func TestClaimHandler_transitionNotFound(t *testing.T) {
	claimSvc := &MockClaimUseCase{}
	handler := NewClaimHandler(claimSvc, &MockEligibilityUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "404"}}
	body, _ := json.Marshal(transitionRequest{ToStatus: "SUBMITTED"})
	c.Request = httptest.NewRequest("POST", "/claims/404/transition", bytes.NewReader(body))

	claimSvc.On("Transition", c.Request.Context(), int64(404), domain.ClaimStatusSubmitted, (*string)(nil), (*string)(nil)).
		Return(nil, domain.ErrClaimNotFound)

	handler.transition(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClaimHandler_transitionInvalidEdge(t *testing.T) {
	claimSvc := &MockClaimUseCase{}
	handler := NewClaimHandler(claimSvc, &MockEligibilityUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1001"}}
	body, _ := json.Marshal(transitionRequest{ToStatus: "PAID"})
	c.Request = httptest.NewRequest("POST", "/claims/1001/transition", bytes.NewReader(body))

	claimSvc.On("Transition", c.Request.Context(), int64(1001), domain.ClaimStatusPaid, (*string)(nil), (*string)(nil)).
		Return(nil, domain.ErrInvalidTransition)

	handler.transition(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestClaimHandler_bulkTransition(t *testing.T) {
	claimSvc := &MockClaimUseCase{}
	handler := NewClaimHandler(claimSvc, &MockEligibilityUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(bulkTransitionRequest{ClaimIDs: []int64{1, 2, 3}, ToStatus: "UNDER_REVIEW"})
	c.Request = httptest.NewRequest("POST", "/claims/bulk-transition", bytes.NewReader(body))

	claimSvc.On("BulkTransition", c.Request.Context(), []int64{1, 2, 3}, domain.ClaimStatusUnderReview, (*string)(nil), (*string)(nil)).
		Return([]claims.BulkResult{
			{ClaimID: 1},
			{ClaimID: 2, Err: domain.ErrClaimNotFound},
			{ClaimID: 3},
		})

	handler.bulkTransition(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp bulkTransitionResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.SucceededCount)
	assert.Len(t, resp.Results, 3)
	assert.False(t, resp.Results[1].OK)
}

func TestClaimHandler_bulkTransitionRejectsUnknownStatus(t *testing.T) {
	claimSvc := &MockClaimUseCase{}
	handler := NewClaimHandler(claimSvc, &MockEligibilityUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(bulkTransitionRequest{ClaimIDs: []int64{1}, ToStatus: "LOST"})
	c.Request = httptest.NewRequest("POST", "/claims/bulk-transition", bytes.NewReader(body))

	handler.bulkTransition(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	claimSvc.AssertNotCalled(t, "BulkTransition")
}

func TestClaimHandler_history(t *testing.T) {
	claimSvc := &MockClaimUseCase{}
	handler := NewClaimHandler(claimSvc, &MockEligibilityUseCase{})

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "1001"}}
	c.Request = httptest.NewRequest("GET", "/claims/1001/history", nil)

	draft := domain.ClaimStatusDraft
	claimSvc.On("History", c.Request.Context(), int64(1001)).Return([]domain.StatusHistoryEntry{
		{ClaimID: 1001, ToStatus: domain.ClaimStatusDraft, OccurredAt: time.Now().UTC()},
		{ClaimID: 1001, FromStatus: &draft, ToStatus: domain.ClaimStatusSubmitted, OccurredAt: time.Now().UTC()},
	}, nil)

	handler.history(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var entries []historyEntryResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 2)
	assert.Nil(t, entries[0].FromStatus)
	assert.Equal(t, "SUBMITTED", entries[1].ToStatus)
}
