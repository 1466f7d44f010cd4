package flightdata

import (
	"context"
	"errors"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// FactSource answers one flight-status query. Implementations may fail;
// the Resolver is what guarantees a usable result to callers.
type FactSource interface {
	QueryFlight(ctx context.Context, q domain.DisruptionQuery) (domain.FlightFacts, error)
}

// ErrNoRecords signals a source that answered but matched nothing. The
// resolver treats it exactly like a transport failure.
var ErrNoRecords = errors.New("no matching flight records")
