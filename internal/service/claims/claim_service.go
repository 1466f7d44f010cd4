package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
	"github.com/thorrangonak/ucustazminati-sub002/internal/kafka"
	"github.com/thorrangonak/ucustazminati-sub002/internal/repository"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

type ClaimUseCase interface {
	CreateClaim(ctx context.Context, input CreateClaimInput) (*domain.Claim, error)
	GetClaim(ctx context.Context, claimID int64) (*domain.Claim, error)
	Transition(ctx context.Context, claimID int64, to domain.ClaimStatus, actorID, note *string) (*domain.Claim, error)
	BulkTransition(ctx context.Context, claimIDs []int64, to domain.ClaimStatus, actorID, note *string) []BulkResult
	History(ctx context.Context, claimID int64) ([]domain.StatusHistoryEntry, error)
	SubmitStaleDrafts(ctx context.Context, olderThan time.Duration) (int, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateClaimInput struct {
	OwnerID    string
	Disruption domain.DisruptionType
	Query      domain.DisruptionQuery
	Outcome    eligibility.Result
}

// BulkResult is the per-claim outcome of a batch transition. Claims are
// independent units of failure; one miss never rolls back the rest.
type BulkResult struct {
	ClaimID int64
	Err     error
}

// allowedTransitions is the lifecycle graph. Only edges listed here are
// legal; REJECTED and PAID have no outgoing edges and APPROVED permits only
// the payout.
var allowedTransitions = map[domain.ClaimStatus][]domain.ClaimStatus{
	domain.ClaimStatusDraft:              {domain.ClaimStatusSubmitted},
	domain.ClaimStatusSubmitted:          {domain.ClaimStatusUnderReview},
	domain.ClaimStatusUnderReview:        {domain.ClaimStatusDocumentsRequested, domain.ClaimStatusAirlineContacted, domain.ClaimStatusApproved, domain.ClaimStatusRejected},
	domain.ClaimStatusDocumentsRequested: {domain.ClaimStatusUnderReview, domain.ClaimStatusApproved, domain.ClaimStatusRejected},
	domain.ClaimStatusAirlineContacted:   {domain.ClaimStatusUnderReview, domain.ClaimStatusApproved, domain.ClaimStatusRejected},
	domain.ClaimStatusApproved:           {domain.ClaimStatusPaid},
	domain.ClaimStatusRejected:           {},
	domain.ClaimStatusPaid:               {},
}

func transitionAllowed(from, to domain.ClaimStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionRetries bounds the compare-and-swap loop when another actor
// moves the claim between our read and write.
const transitionRetries = 3

type ClaimService struct {
	repo               repository.ClaimRepository
	producer           Producer
	genID              *snowflake.Node
	claimPrefix        string
	claimsTopic        string
	notificationsTopic string
	log                *zap.Logger
}

type ClaimServiceOption func(*ClaimService)

func WithNotificationsTopic(topic string) ClaimServiceOption {
	return func(s *ClaimService) {
		s.notificationsTopic = topic
	}
}

func NewClaimService(
	repo repository.ClaimRepository,
	producer Producer,
	genID *snowflake.Node,
	claimPrefix string,
	claimsTopic string,
	log *zap.Logger,
	opts ...ClaimServiceOption,
) *ClaimService {
	if log == nil {
		log = zap.NewNop()
	}
	service := &ClaimService{
		repo:        repo,
		producer:    producer,
		genID:       genID,
		claimPrefix: claimPrefix,
		claimsTopic: claimsTopic,
		log:         log,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateClaim seeds a claim from an accepted eligibility outcome and writes
// it together with its initial history entry in one atomic unit.
func (s *ClaimService) CreateClaim(ctx context.Context, input CreateClaimInput) (*domain.Claim, error) {
	if !input.Disruption.Valid() {
		return nil, domain.ErrInvalidDisruption
	}

	seq, err := s.repo.NextClaimSequence(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	verdict := input.Outcome.Verdict
	claim := &domain.Claim{
		ID:                 s.genID.Generate().Int64(),
		ClaimNumber:        fmt.Sprintf("%s-%d-%06d", s.claimPrefix, now.Year(), seq),
		OwnerID:            input.OwnerID,
		CurrentStatus:      domain.ClaimStatusDraft,
		DisruptionType:     input.Disruption,
		FlightNumber:       input.Query.FlightNumber,
		FlightDate:         input.Query.FlightDate,
		DepartureIATA:      input.Query.DepartureIATA,
		ArrivalIATA:        input.Query.ArrivalIATA,
		AirlineName:        input.Outcome.Facts.AirlineName,
		FlightDistanceKm:   input.Outcome.DistanceKm,
		CompensationAmount: verdict.AmountMajorUnits,
		Currency:           verdict.Currency,
		CommissionRate:     verdict.CommissionRate,
		NetPayoutAmount:    verdict.NetPayout,
	}

	entry := &domain.StatusHistoryEntry{
		ID:         s.genID.Generate().Int64(),
		ClaimID:    claim.ID,
		FromStatus: nil,
		ToStatus:   claim.CurrentStatus,
		OccurredAt: now,
	}

	if err := s.repo.InsertWithHistory(ctx, claim, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, "claim_created", claim, "", nil)
	return claim, nil
}

func (s *ClaimService) GetClaim(ctx context.Context, claimID int64) (*domain.Claim, error) {
	return s.repo.GetByID(ctx, claimID)
}

// Transition moves a claim along the lifecycle graph. The status write and
// the history append land in one atomic unit; APPROVED and REJECTED stamp
// ResolvedAt in the same write.
func (s *ClaimService) Transition(ctx context.Context, claimID int64, to domain.ClaimStatus, actorID, note *string) (*domain.Claim, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, to)
	}

	var lastErr error
	for attempt := 0; attempt < transitionRetries; attempt++ {
		claim, err := s.repo.GetByID(ctx, claimID)
		if err != nil {
			return nil, err
		}
		from := claim.CurrentStatus

		if !transitionAllowed(from, to) {
			return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
		}

		now := time.Now().UTC()
		var resolvedAt *time.Time
		if to == domain.ClaimStatusApproved || to == domain.ClaimStatusRejected {
			resolvedAt = &now
		}

		entry := &domain.StatusHistoryEntry{
			ID:         s.genID.Generate().Int64(),
			ClaimID:    claimID,
			FromStatus: &from,
			ToStatus:   to,
			ActorID:    actorID,
			Note:       note,
			OccurredAt: now,
		}

		err = s.repo.UpdateStatusAndAppendHistory(ctx, claimID, from, to, resolvedAt, entry)
		if err == nil {
			claim.CurrentStatus = to
			claim.ResolvedAt = resolvedAt
			claim.UpdatedAt = now
			s.publish(ctx, "claim_transitioned", claim, string(from), actorID)
			return claim, nil
		}
		if err != repository.ErrStatusChanged {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// BulkTransition applies Transition independently per claim, best effort.
func (s *ClaimService) BulkTransition(ctx context.Context, claimIDs []int64, to domain.ClaimStatus, actorID, note *string) []BulkResult {
	results := make([]BulkResult, 0, len(claimIDs))
	for _, id := range claimIDs {
		_, err := s.Transition(ctx, id, to, actorID, note)
		if err != nil {
			s.log.Warn("bulk transition skipped claim",
				zap.Int64("claim_id", id),
				zap.String("to", string(to)),
				zap.Error(err))
		}
		results = append(results, BulkResult{ClaimID: id, Err: err})
	}
	return results
}

func (s *ClaimService) History(ctx context.Context, claimID int64) ([]domain.StatusHistoryEntry, error) {
	if _, err := s.repo.GetByID(ctx, claimID); err != nil {
		return nil, err
	}
	return s.repo.FindHistory(ctx, claimID)
}

// SubmitStaleDrafts moves drafts older than the cutoff to SUBMITTED so
// abandoned checks do not linger forever. Returns the number submitted.
func (s *ClaimService) SubmitStaleDrafts(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := s.repo.FindStaleDrafts(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	note := "auto-submitted after draft timeout"
	results := s.BulkTransition(ctx, ids, domain.ClaimStatusSubmitted, nil, &note)
	count := 0
	for _, r := range results {
		if r.Err == nil {
			count++
		}
	}
	return count, nil
}

func (s *ClaimService) publish(ctx context.Context, eventType string, claim *domain.Claim, from string, actorID *string) {
	if s.producer == nil || s.claimsTopic == "" {
		return
	}
	event := kafka.ClaimEvent{
		Type:        eventType,
		ClaimID:     claim.ID,
		ClaimNumber: claim.ClaimNumber,
		OwnerID:     claim.OwnerID,
		FromStatus:  from,
		ToStatus:    string(claim.CurrentStatus),
		Amount:      claim.CompensationAmount,
		Currency:    claim.Currency,
		OccurredAt:  time.Now().UTC(),
	}
	if actorID != nil {
		event.ActorID = *actorID
	}

	key := uuid.NewString()
	if err := s.producer.Publish(ctx, s.claimsTopic, key, event); err != nil {
		s.log.Warn("failed to publish claim event",
			zap.String("type", eventType),
			zap.String("claim_number", claim.ClaimNumber),
			zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			s.log.Warn("failed to publish notification event",
				zap.String("claim_number", claim.ClaimNumber),
				zap.Error(err))
		}
	}
}

var _ ClaimUseCase = (*ClaimService)(nil)
