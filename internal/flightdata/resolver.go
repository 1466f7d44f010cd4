package flightdata

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// Resolver turns a disruption query into flight facts without ever failing
// outward. It makes exactly one attempt against the live source, bounded by
// the configured timeout, and otherwise answers from the synthetic source.
// Retry policy, if any, belongs to the caller.
type Resolver struct {
	live      FactSource
	synthetic FactSource
	timeout   time.Duration
	log       *zap.Logger
}

func NewResolver(live, synthetic FactSource, timeout time.Duration, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{live: live, synthetic: synthetic, timeout: timeout, log: log}
}

func (r *Resolver) Resolve(ctx context.Context, q domain.DisruptionQuery) domain.FlightFacts {
	if r.live != nil {
		liveCtx, cancel := context.WithTimeout(ctx, r.timeout)
		facts, err := r.live.QueryFlight(liveCtx, q)
		cancel()
		if err == nil {
			facts.Provenance = domain.ProvenanceLive
			return facts
		}
		r.log.Warn("live flight lookup failed, using synthetic facts",
			zap.String("flight", q.FlightNumber),
			zap.String("date", q.FlightDate.Format("2006-01-02")),
			zap.Error(err))
	}

	facts, err := r.synthetic.QueryFlight(ctx, q)
	if err != nil {
		// The synthetic source cannot fail today; guard the contract anyway.
		r.log.Error("synthetic source failed", zap.Error(err))
		return domain.FlightFacts{
			FlightNumber:  q.FlightNumber,
			FlightDate:    q.FlightDate,
			DepartureIATA: q.DepartureIATA,
			ArrivalIATA:   q.ArrivalIATA,
			Status:        domain.FlightStatusUnknown,
			Provenance:    domain.ProvenanceSynthetic,
		}
	}
	facts.Provenance = domain.ProvenanceSynthetic
	return facts
}
