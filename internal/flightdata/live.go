package flightdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
)

// HTTPSource queries an aviationstack-style flight status API.
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPSource(baseURL, apiKey string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type flightRecord struct {
	Airline struct {
		Name string `json:"name"`
	} `json:"airline"`
	FlightStatus string `json:"flight_status"`
	Departure    struct {
		IATA      string     `json:"iata"`
		Scheduled *time.Time `json:"scheduled"`
		Actual    *time.Time `json:"actual"`
		Delay     *int       `json:"delay"`
	} `json:"departure"`
	Arrival struct {
		IATA      string     `json:"iata"`
		Scheduled *time.Time `json:"scheduled"`
		Actual    *time.Time `json:"actual"`
		Delay     *int       `json:"delay"`
	} `json:"arrival"`
}

type flightResponse struct {
	Data []flightRecord `json:"data"`
}

func (s *HTTPSource) QueryFlight(ctx context.Context, q domain.DisruptionQuery) (domain.FlightFacts, error) {
	params := url.Values{}
	params.Set("access_key", s.apiKey)
	params.Set("flight_iata", q.FlightNumber)
	params.Set("dep_iata", q.DepartureIATA)
	params.Set("arr_iata", q.ArrivalIATA)
	params.Set("flight_date", q.FlightDate.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/flights?"+params.Encode(), nil)
	if err != nil {
		return domain.FlightFacts{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.FlightFacts{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.FlightFacts{}, fmt.Errorf("flight api returned status %d", resp.StatusCode)
	}

	var payload flightResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return domain.FlightFacts{}, fmt.Errorf("decode flight api response: %w", err)
	}
	if len(payload.Data) == 0 {
		return domain.FlightFacts{}, ErrNoRecords
	}

	return mapRecord(payload.Data[0], q), nil
}

func mapRecord(rec flightRecord, q domain.DisruptionQuery) domain.FlightFacts {
	facts := domain.FlightFacts{
		FlightNumber:       q.FlightNumber,
		FlightDate:         q.FlightDate,
		DepartureIATA:      q.DepartureIATA,
		ArrivalIATA:        q.ArrivalIATA,
		AirlineName:        rec.Airline.Name,
		ScheduledDeparture: rec.Departure.Scheduled,
		ActualDeparture:    rec.Departure.Actual,
		ScheduledArrival:   rec.Arrival.Scheduled,
		ActualArrival:      rec.Arrival.Actual,
		DepartureDelayMin:  rec.Departure.Delay,
		ArrivalDelayMin:    rec.Arrival.Delay,
		Provenance:         domain.ProvenanceLive,
	}

	switch rec.FlightStatus {
	case "cancelled":
		facts.Status = domain.FlightStatusCancelled
		facts.IsCancelled = true
	case "diverted":
		facts.Status = domain.FlightStatusDiverted
		facts.IsDiverted = true
	case "active", "landed", "scheduled":
		if facts.EffectiveDelayMinutes() > 0 {
			facts.Status = domain.FlightStatusDelayed
		} else {
			facts.Status = domain.FlightStatusOnTime
		}
	default:
		facts.Status = domain.FlightStatusUnknown
	}
	return facts
}

var _ FactSource = (*HTTPSource)(nil)
