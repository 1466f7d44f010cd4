package domain

type DistanceCategory string

const (
	DistanceCategoryDomestic DistanceCategory = "domestic"
	DistanceCategoryShort    DistanceCategory = "short"
	DistanceCategoryMedium   DistanceCategory = "medium"
	DistanceCategoryLong     DistanceCategory = "long"
)

// CompensationVerdict is the immutable outcome of one rule evaluation.
// Recomputed on every check, never mutated in place.
type CompensationVerdict struct {
	Eligible          bool
	AmountMajorUnits  float64
	Currency          string
	CommissionRate    float64
	NetPayout         float64
	DistanceKm        float64
	DistanceCategory  DistanceCategory
	DistanceEstimated bool
	RegulationCode    string
	Reason            string
}
