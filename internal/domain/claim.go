package domain

import (
	"errors"
	"time"
)

type ClaimStatus string

const (
	ClaimStatusDraft              ClaimStatus = "DRAFT"
	ClaimStatusSubmitted          ClaimStatus = "SUBMITTED"
	ClaimStatusUnderReview        ClaimStatus = "UNDER_REVIEW"
	ClaimStatusDocumentsRequested ClaimStatus = "DOCUMENTS_REQUESTED"
	ClaimStatusAirlineContacted   ClaimStatus = "AIRLINE_CONTACTED"
	ClaimStatusApproved           ClaimStatus = "APPROVED"
	ClaimStatusRejected           ClaimStatus = "REJECTED"
	ClaimStatusPaid               ClaimStatus = "PAID"
)

// AllClaimStatuses is the closed set of lifecycle states.
var AllClaimStatuses = []ClaimStatus{
	ClaimStatusDraft,
	ClaimStatusSubmitted,
	ClaimStatusUnderReview,
	ClaimStatusDocumentsRequested,
	ClaimStatusAirlineContacted,
	ClaimStatusApproved,
	ClaimStatusRejected,
	ClaimStatusPaid,
}

func (s ClaimStatus) Valid() bool {
	for _, known := range AllClaimStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further business transition leaves the
// state. APPROVED still permits the payout transition to PAID.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusRejected || s == ClaimStatusPaid
}

type DisruptionType string

const (
	DisruptionDelay          DisruptionType = "DELAY"
	DisruptionCancellation   DisruptionType = "CANCELLATION"
	DisruptionDeniedBoarding DisruptionType = "DENIED_BOARDING"
	DisruptionDowngrade      DisruptionType = "DOWNGRADE"
)

func (d DisruptionType) Valid() bool {
	switch d {
	case DisruptionDelay, DisruptionCancellation, DisruptionDeniedBoarding, DisruptionDowngrade:
		return true
	}
	return false
}

var (
	ErrClaimNotFound     = errors.New("claim not found")
	ErrInvalidStatus     = errors.New("invalid claim status")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrClaimNumberTaken  = errors.New("claim number already exists")
	ErrAirportNotFound   = errors.New("airport not found")
	ErrInvalidDisruption = errors.New("invalid disruption type")
)

type Claim struct {
	ID                 int64
	ClaimNumber        string
	OwnerID            string
	CurrentStatus      ClaimStatus
	DisruptionType     DisruptionType
	FlightNumber       string
	FlightDate         time.Time
	DepartureIATA      string
	ArrivalIATA        string
	AirlineName        string
	FlightDistanceKm   float64
	CompensationAmount float64
	Currency           string
	CommissionRate     float64
	NetPayoutAmount    float64
	ResolvedAt         *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// StatusHistoryEntry is one append-only audit row. FromStatus is nil only
// for the entry written at claim creation; ActorID nil means the system
// acted on its own.
type StatusHistoryEntry struct {
	ID         int64
	ClaimID    int64
	FromStatus *ClaimStatus
	ToStatus   ClaimStatus
	ActorID    *string
	Note       *string
	OccurredAt time.Time
}

// ReplayStatus folds history in order and returns the resulting status.
// For a well-formed trail this equals the claim's CurrentStatus.
func ReplayStatus(history []StatusHistoryEntry) (ClaimStatus, bool) {
	if len(history) == 0 {
		return "", false
	}
	return history[len(history)-1].ToStatus, true
}
