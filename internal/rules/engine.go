package rules

import (
	"fmt"
	"math"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// Thresholds and tier amounts fixed by the SHY-Passenger regulation.
const (
	MinDelayMinutes      = 180
	reductionCapMinutes  = 240
	shortHaulMaxKm       = 1500.0
	mediumHaulMaxKm      = 3500.0
	amountDomestic       = 100.0
	amountShortHaul      = 250.0
	amountMediumHaul     = 400.0
	amountLongHaul       = 600.0
	regulationCode       = "SHY-YOLCU"
)

// Engine maps resolved disruption facts to a compensation verdict. Pure and
// deterministic: same inputs, same verdict, no I/O.
type Engine struct {
	commissionRate float64
	currency       string
}

func NewEngine(commissionRate float64, currency string) *Engine {
	if currency == "" {
		currency = "EUR"
	}
	return &Engine{commissionRate: commissionRate, currency: currency}
}

func (e *Engine) CommissionRate() float64 { return e.commissionRate }

// Evaluate applies the tiered compensation policy. An unknown (NaN or
// negative) distance is judged at the long-haul tier so an incomplete
// catalog can never under-pay a passenger.
func (e *Engine) Evaluate(distanceKm float64, isDomestic bool, disruption domain.DisruptionType, delayMinutes int) domain.CompensationVerdict {
	estimated := false
	if math.IsNaN(distanceKm) || distanceKm < 0 {
		distanceKm = mediumHaulMaxKm + 1
		isDomestic = false
		estimated = true
	}

	category := classify(distanceKm, isDomestic)

	verdict := domain.CompensationVerdict{
		Currency:          e.currency,
		CommissionRate:    e.commissionRate,
		DistanceKm:        distanceKm,
		DistanceCategory:  category,
		DistanceEstimated: estimated,
		RegulationCode:    regulationCode,
	}

	if disruption == domain.DisruptionDelay && delayMinutes < MinDelayMinutes {
		verdict.Reason = fmt.Sprintf("delay of %d minutes is below the %d-minute minimum; %d more minutes required",
			delayMinutes, MinDelayMinutes, MinDelayMinutes-delayMinutes)
		return verdict
	}

	amount := baseAmount(category)

	// Long-route delays mitigated to under four hours pay half. Applies to
	// delays only, and 240 minutes itself is not reduced.
	if disruption == domain.DisruptionDelay &&
		delayMinutes >= MinDelayMinutes && delayMinutes < reductionCapMinutes &&
		longRoute(distanceKm, isDomestic) {
		amount /= 2
	}

	verdict.Eligible = true
	verdict.AmountMajorUnits = amount
	verdict.NetPayout = amount * (1 - e.commissionRate)
	verdict.Reason = reasonFor(disruption, category, amount, delayMinutes)
	return verdict
}

func classify(distanceKm float64, isDomestic bool) domain.DistanceCategory {
	switch {
	case isDomestic:
		return domain.DistanceCategoryDomestic
	case distanceKm <= shortHaulMaxKm:
		return domain.DistanceCategoryShort
	case distanceKm <= mediumHaulMaxKm:
		return domain.DistanceCategoryMedium
	}
	return domain.DistanceCategoryLong
}

func baseAmount(category domain.DistanceCategory) float64 {
	switch category {
	case domain.DistanceCategoryDomestic:
		return amountDomestic
	case domain.DistanceCategoryShort:
		return amountShortHaul
	case domain.DistanceCategoryMedium:
		return amountMediumHaul
	}
	return amountLongHaul
}

// longRoute reports whether the reduction rule can apply: anything over
// 3500 km, or any international route over 1500 km.
func longRoute(distanceKm float64, isDomestic bool) bool {
	if distanceKm > mediumHaulMaxKm {
		return true
	}
	return !isDomestic && distanceKm > shortHaulMaxKm
}

func reasonFor(disruption domain.DisruptionType, category domain.DistanceCategory, amount float64, delayMinutes int) string {
	switch disruption {
	case domain.DisruptionCancellation:
		return fmt.Sprintf("flight cancelled; %s route qualifies for %.0f", category, amount)
	case domain.DisruptionDeniedBoarding:
		return fmt.Sprintf("denied boarding; %s route qualifies for %.0f", category, amount)
	case domain.DisruptionDowngrade:
		return fmt.Sprintf("involuntary downgrade; %s route qualifies for %.0f", category, amount)
	}
	return fmt.Sprintf("delay of %d minutes on %s route qualifies for %.0f", delayMinutes, category, amount)
}
