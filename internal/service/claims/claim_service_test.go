package claims

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
	"github.com/thorrangonak/ucustazminati-sub002/internal/repository"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(t *testing.T, repo repository.ClaimRepository) *ClaimService {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return NewClaimService(repo, nil, node, "CLM", "", nil)
}

func acceptedOutcome() eligibility.Result {
	return eligibility.Result{
		Verdict: domain.CompensationVerdict{
			Eligible:         true,
			AmountMajorUnits: 600,
			Currency:         "EUR",
			CommissionRate:   0.25,
			NetPayout:        450,
			DistanceKm:       8000,
			DistanceCategory: domain.DistanceCategoryLong,
		},
		Facts: domain.FlightFacts{
			AirlineName: "Turkish Airlines",
			Provenance:  domain.ProvenanceLive,
		},
		DistanceKm: 8000,
	}
}

func createTestClaim(t *testing.T, svc *ClaimService) *domain.Claim {
	t.Helper()
	claim, err := svc.CreateClaim(context.Background(), CreateClaimInput{
		OwnerID:    "user-1",
		Disruption: domain.DisruptionDelay,
		Query: domain.DisruptionQuery{
			FlightNumber:  "TK1",
			DepartureIATA: "IST",
			ArrivalIATA:   "JFK",
			FlightDate:    time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		},
		Outcome: acceptedOutcome(),
	})
	require.NoError(t, err)
	return claim
}

func TestCreateClaim_SeedsFromVerdictAndWritesInitialHistory(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)

	claim := createTestClaim(t, svc)

	assert.Equal(t, domain.ClaimStatusDraft, claim.CurrentStatus)
	assert.Equal(t, 600.0, claim.CompensationAmount)
	assert.Equal(t, 450.0, claim.NetPayoutAmount)
	assert.Equal(t, 0.25, claim.CommissionRate)
	assert.Regexp(t, `^CLM-\d{4}-\d{6}$`, claim.ClaimNumber)

	history, err := svc.History(context.Background(), claim.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].FromStatus)
	assert.Equal(t, domain.ClaimStatusDraft, history[0].ToStatus)
	assert.Nil(t, history[0].ActorID)
}

func TestCreateClaim_SequentialClaimNumbers(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)

	first := createTestClaim(t, svc)
	second := createTestClaim(t, svc)

	assert.NotEqual(t, first.ClaimNumber, second.ClaimNumber)
	assert.Regexp(t, `-000001$`, first.ClaimNumber)
	assert.Regexp(t, `-000002$`, second.ClaimNumber)
}

func TestTransition_LegalEdgeAppendsHistory(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	actor := "agent-7"
	note := "passenger submitted the claim"
	updated, err := svc.Transition(context.Background(), claim.ID, domain.ClaimStatusSubmitted, &actor, &note)

	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusSubmitted, updated.CurrentStatus)

	history, err := svc.History(context.Background(), claim.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	last := history[1]
	require.NotNil(t, last.FromStatus)
	assert.Equal(t, domain.ClaimStatusDraft, *last.FromStatus)
	assert.Equal(t, domain.ClaimStatusSubmitted, last.ToStatus)
	assert.Equal(t, "agent-7", *last.ActorID)
	assert.Equal(t, note, *last.Note)
}

func TestTransition_IllegalEdgeRejectedWithoutWrite(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	_, err := svc.Transition(context.Background(), claim.ID, domain.ClaimStatusPaid, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.GetClaim(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusDraft, got.CurrentStatus)

	history, _ := svc.History(context.Background(), claim.ID)
	assert.Len(t, history, 1)
}

func TestTransition_BackwardsFromTerminalRejected(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	walkTo(t, svc, claim.ID, domain.ClaimStatusSubmitted, domain.ClaimStatusUnderReview, domain.ClaimStatusRejected)

	_, err := svc.Transition(context.Background(), claim.ID, domain.ClaimStatusDraft, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = svc.Transition(context.Background(), claim.ID, domain.ClaimStatusUnderReview, nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestTransition_InvalidStatusRejectedBeforeRead(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)

	_, err := svc.Transition(context.Background(), 12345, domain.ClaimStatus("LOST"), nil, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestTransition_MissingClaim(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)

	_, err := svc.Transition(context.Background(), 99999, domain.ClaimStatusSubmitted, nil, nil)
	assert.ErrorIs(t, err, domain.ErrClaimNotFound)
}

func TestTransition_ApprovalStampsResolvedAt(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	walkTo(t, svc, claim.ID, domain.ClaimStatusSubmitted, domain.ClaimStatusUnderReview)

	updated, err := svc.Transition(context.Background(), claim.ID, domain.ClaimStatusApproved, nil, nil)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	assert.WithinDuration(t, time.Now().UTC(), *updated.ResolvedAt, 5*time.Second)

	stored, err := svc.GetClaim(context.Background(), claim.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResolvedAt)
}

func TestTransition_PaidOnlyFromApproved(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	walkTo(t, svc, claim.ID,
		domain.ClaimStatusSubmitted, domain.ClaimStatusUnderReview, domain.ClaimStatusApproved, domain.ClaimStatusPaid)

	stored, err := svc.GetClaim(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusPaid, stored.CurrentStatus)
}

func TestBulkTransition_PartialFailure(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)

	a := createTestClaim(t, svc)
	b := createTestClaim(t, svc)
	missing := int64(424242)

	results := svc.BulkTransition(context.Background(), []int64{a.ID, missing, b.ID}, domain.ClaimStatusSubmitted, nil, nil)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, domain.ErrClaimNotFound)
	assert.NoError(t, results[2].Err)

	for _, id := range []int64{a.ID, b.ID} {
		claim, err := svc.GetClaim(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.ClaimStatusSubmitted, claim.CurrentStatus)

		history, err := svc.History(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, history, 2)
	}
}

func TestHistoryReplay_ReconstructsCurrentStatus(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	walkTo(t, svc, claim.ID,
		domain.ClaimStatusSubmitted,
		domain.ClaimStatusUnderReview,
		domain.ClaimStatusDocumentsRequested,
		domain.ClaimStatusUnderReview,
		domain.ClaimStatusAirlineContacted,
		domain.ClaimStatusApproved,
		domain.ClaimStatusPaid)

	history, err := svc.History(context.Background(), claim.ID)
	require.NoError(t, err)
	require.Len(t, history, 8)

	replayed, ok := domain.ReplayStatus(history)
	require.True(t, ok)

	stored, err := svc.GetClaim(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.CurrentStatus, replayed)
}

func TestTransition_AtomicityUnderInjectedFailure(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	boom := errors.New("storage failed between status write and history append")
	repo.FailBeforeHistoryAppend(func() error { return boom })

	_, err := svc.Transition(context.Background(), claim.ID, domain.ClaimStatusSubmitted, nil, nil)
	assert.ErrorIs(t, err, boom)

	// Neither the status change nor a history row may be visible.
	stored, err := svc.GetClaim(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusDraft, stored.CurrentStatus)

	history, err := svc.History(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	replayed, _ := domain.ReplayStatus(history)
	assert.Equal(t, stored.CurrentStatus, replayed)
}

func TestTransition_ConcurrentCallsSerialize(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)
	claim := createTestClaim(t, svc)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Transition(context.Background(), claim.ID, domain.ClaimStatusSubmitted, nil, nil)
		}(i)
	}
	wg.Wait()

	// Exactly one submission can win; the rest fail the edge check after
	// the claim has already left DRAFT.
	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		}
	}
	assert.Equal(t, 1, wins)

	history, err := svc.History(context.Background(), claim.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	replayed, _ := domain.ReplayStatus(history)
	stored, _ := svc.GetClaim(context.Background(), claim.ID)
	assert.Equal(t, stored.CurrentStatus, replayed)
}

func TestSubmitStaleDrafts(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	svc := newTestService(t, repo)

	stale := createTestClaim(t, svc)
	fresh := createTestClaim(t, svc)
	walkTo(t, svc, fresh.ID, domain.ClaimStatusSubmitted)

	// All drafts qualify with a zero cutoff; only the stale one is still
	// in DRAFT.
	count, err := svc.SubmitStaleDrafts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.GetClaim(context.Background(), stale.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusSubmitted, got.CurrentStatus)
}

func TestCreateClaim_PublishesEvent(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	producer := &MockProducer{}
	producer.On("Publish", mock.Anything, "claims.events", mock.Anything, mock.Anything).Return(nil)

	svc := NewClaimService(repo, producer, node, "CLM", "claims.events", nil)
	_, err = svc.CreateClaim(context.Background(), CreateClaimInput{
		OwnerID:    "user-1",
		Disruption: domain.DisruptionCancellation,
		Query:      domain.DisruptionQuery{FlightNumber: "TK1"},
		Outcome:    acceptedOutcome(),
	})
	require.NoError(t, err)
	producer.AssertExpectations(t)
}

func TestTransition_PublishFailureDoesNotFailTransition(t *testing.T) {
	repo := repository.NewMemClaimRepository()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	producer := &MockProducer{}
	producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	svc := NewClaimService(repo, producer, node, "CLM", "claims.events", nil)
	claim, err := svc.CreateClaim(context.Background(), CreateClaimInput{
		OwnerID:    "user-1",
		Disruption: domain.DisruptionDelay,
		Query:      domain.DisruptionQuery{FlightNumber: "TK1"},
		Outcome:    acceptedOutcome(),
	})
	require.NoError(t, err)

	updated, err := svc.Transition(context.Background(), claim.ID, domain.ClaimStatusSubmitted, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.ClaimStatusSubmitted, updated.CurrentStatus)
}

func walkTo(t *testing.T, svc *ClaimService, claimID int64, path ...domain.ClaimStatus) {
	t.Helper()
	for _, status := range path {
		_, err := svc.Transition(context.Background(), claimID, status, nil, nil)
		require.NoError(t, err)
	}
}
