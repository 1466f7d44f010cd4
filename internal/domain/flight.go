package domain

import "time"

// Coordinate is an immutable geographic point in degrees.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Airport is read-only reference data maintained by the catalog, never by
// the engine itself.
type Airport struct {
	IATACode    string
	Name        string
	City        string
	CountryCode string
	Coordinate  Coordinate
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type FlightStatus string

const (
	FlightStatusOnTime    FlightStatus = "on-time"
	FlightStatusDelayed   FlightStatus = "delayed"
	FlightStatusCancelled FlightStatus = "cancelled"
	FlightStatusDiverted  FlightStatus = "diverted"
	FlightStatusUnknown   FlightStatus = "unknown"
)

type Provenance string

const (
	ProvenanceLive      Provenance = "live"
	ProvenanceSynthetic Provenance = "synthetic"
)

// DisruptionQuery identifies the flight a passenger is checking. Built per
// eligibility request, never persisted here.
type DisruptionQuery struct {
	FlightNumber  string
	DepartureIATA string
	ArrivalIATA   string
	FlightDate    time.Time
}

// FlightFacts is the normalized delay/cancellation record for one flight on
// one date. Produced fresh on every resolution, never cached by the engine.
type FlightFacts struct {
	FlightNumber       string
	FlightDate         time.Time
	DepartureIATA      string
	ArrivalIATA        string
	AirlineName        string
	Status             FlightStatus
	ScheduledDeparture *time.Time
	ActualDeparture    *time.Time
	ScheduledArrival   *time.Time
	ActualArrival      *time.Time
	DepartureDelayMin  *int
	ArrivalDelayMin    *int
	IsCancelled        bool
	IsDiverted         bool
	Provenance         Provenance
}

// EffectiveDelayMinutes derives the delay the rule engine should judge.
// Cancellation has its own branch there, so the value is meaningless and
// zero when IsCancelled is set. Otherwise it is the worse of the two known
// delays, or whichever one is known, or zero.
func (f FlightFacts) EffectiveDelayMinutes() int {
	if f.IsCancelled {
		return 0
	}
	switch {
	case f.DepartureDelayMin != nil && f.ArrivalDelayMin != nil:
		if *f.DepartureDelayMin > *f.ArrivalDelayMin {
			return *f.DepartureDelayMin
		}
		return *f.ArrivalDelayMin
	case f.DepartureDelayMin != nil:
		return *f.DepartureDelayMin
	case f.ArrivalDelayMin != nil:
		return *f.ArrivalDelayMin
	}
	return 0
}
