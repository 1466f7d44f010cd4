package eligibility

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
	"github.com/thorrangonak/ucustazminati-sub002/internal/geo"
	"github.com/thorrangonak/ucustazminati-sub002/internal/rules"
)

type EligibilityUseCase interface {
	CheckEligibility(ctx context.Context, query domain.DisruptionQuery, disruption domain.DisruptionType) (*Result, error)
	ListAirports(ctx context.Context) ([]domain.Airport, error)
}

// Result is everything a caller needs to present the outcome and, if the
// passenger accepts, seed a new claim.
type Result struct {
	Verdict    domain.CompensationVerdict
	Facts      domain.FlightFacts
	DistanceKm float64
}

type Catalog interface {
	FindByIATA(ctx context.Context, code string) (*domain.Airport, error)
	List(ctx context.Context) ([]domain.Airport, error)
}

type Cache interface {
	GetAirport(ctx context.Context, iata string) (*domain.Airport, error)
	SetAirport(ctx context.Context, airport domain.Airport) error
	GetAirports(ctx context.Context) ([]domain.Airport, error)
	SetAirports(ctx context.Context, airports []domain.Airport) error
}

type FactResolver interface {
	Resolve(ctx context.Context, q domain.DisruptionQuery) domain.FlightFacts
}

// Home-country airports used when the catalog cannot answer. Lookup misses
// fall back to these codes plus a rough distance instead of rejecting the
// request.
var domesticIATACodes = map[string]struct{}{
	"IST": {}, "SAW": {}, "ESB": {}, "ADB": {}, "AYT": {}, "DLM": {},
	"BJV": {}, "TZX": {}, "ASR": {}, "GZT": {}, "ADA": {}, "SZF": {},
	"VAN": {}, "ERZ": {}, "DIY": {}, "KYA": {}, "GZP": {}, "NAV": {},
}

const (
	estimatedDomesticKm      = 800.0
	estimatedInternationalKm = 2000.0
)

type EligibilityService struct {
	catalog     Catalog
	cache       Cache
	resolver    FactResolver
	engine      *rules.Engine
	homeCountry string
	log         *zap.Logger
}

func NewEligibilityService(catalog Catalog, cache Cache, resolver FactResolver, engine *rules.Engine, homeCountry string, log *zap.Logger) *EligibilityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EligibilityService{
		catalog:     catalog,
		cache:       cache,
		resolver:    resolver,
		engine:      engine,
		homeCountry: homeCountry,
		log:         log,
	}
}

// CheckEligibility is side-effect-free and idempotent: live facts for the
// same query may change between calls, but the rule logic applied to them
// never does.
func (s *EligibilityService) CheckEligibility(ctx context.Context, query domain.DisruptionQuery, disruption domain.DisruptionType) (*Result, error) {
	if !disruption.Valid() {
		return nil, domain.ErrInvalidDisruption
	}

	query.DepartureIATA = strings.ToUpper(strings.TrimSpace(query.DepartureIATA))
	query.ArrivalIATA = strings.ToUpper(strings.TrimSpace(query.ArrivalIATA))

	dep := s.lookupAirport(ctx, query.DepartureIATA)
	arr := s.lookupAirport(ctx, query.ArrivalIATA)

	var (
		distanceKm float64
		isDomestic bool
		estimated  bool
	)
	if dep != nil && arr != nil {
		distanceKm = geo.DistanceKm(dep.Coordinate, arr.Coordinate)
		isDomestic = geo.IsDomestic(*dep, *arr, s.homeCountry)
	} else {
		distanceKm, isDomestic = estimateRoute(query.DepartureIATA, query.ArrivalIATA)
		estimated = true
		s.log.Info("airport catalog miss, estimating route",
			zap.String("departure", query.DepartureIATA),
			zap.String("arrival", query.ArrivalIATA),
			zap.Float64("estimated_km", distanceKm))
	}

	facts := s.resolver.Resolve(ctx, query)

	// The resolved record is authoritative about cancellation: a passenger
	// reporting a delay on a flight that was in fact cancelled is judged on
	// the cancellation branch.
	if facts.IsCancelled && disruption == domain.DisruptionDelay {
		disruption = domain.DisruptionCancellation
	}

	verdict := s.engine.Evaluate(distanceKm, isDomestic, disruption, facts.EffectiveDelayMinutes())
	if estimated {
		verdict.DistanceEstimated = true
	}

	return &Result{Verdict: verdict, Facts: facts, DistanceKm: verdict.DistanceKm}, nil
}

func (s *EligibilityService) ListAirports(ctx context.Context) ([]domain.Airport, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetAirports(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	airports, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetAirports(ctx, airports)
	}
	return airports, nil
}

// lookupAirport never errors; a missing or failing catalog degrades to the
// heuristic path.
func (s *EligibilityService) lookupAirport(ctx context.Context, iata string) *domain.Airport {
	if s.cache != nil {
		if cached, err := s.cache.GetAirport(ctx, iata); err == nil && cached != nil {
			return cached
		}
	}

	airport, err := s.catalog.FindByIATA(ctx, iata)
	if err != nil {
		if err != domain.ErrAirportNotFound {
			s.log.Warn("airport lookup failed", zap.String("iata", iata), zap.Error(err))
		}
		return nil
	}
	if s.cache != nil {
		_ = s.cache.SetAirport(ctx, *airport)
	}
	return airport
}

func estimateRoute(depIATA, arrIATA string) (float64, bool) {
	_, depDomestic := domesticIATACodes[depIATA]
	_, arrDomestic := domesticIATACodes[arrIATA]
	if depDomestic && arrDomestic {
		return estimatedDomesticKm, true
	}
	return estimatedInternationalKm, false
}

var _ EligibilityUseCase = (*EligibilityService)(nil)
