package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

type EligibilityHandler struct {
	service eligibility.EligibilityUseCase
}

type checkEligibilityRequest struct {
	FlightNumber   string `json:"flight_number" binding:"required"`
	DepartureIATA  string `json:"departure_iata" binding:"required"`
	ArrivalIATA    string `json:"arrival_iata" binding:"required"`
	FlightDate     string `json:"flight_date" binding:"required"`
	DisruptionType string `json:"disruption_type" binding:"required"`
}

type verdictResponse struct {
	Eligible          bool    `json:"eligible"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	CommissionRate    float64 `json:"commission_rate"`
	NetPayout         float64 `json:"net_payout"`
	DistanceKm        float64 `json:"distance_km"`
	DistanceCategory  string  `json:"distance_category"`
	DistanceEstimated bool    `json:"distance_estimated"`
	RegulationCode    string  `json:"regulation_code"`
	Reason            string  `json:"reason"`
}

type checkEligibilityResponse struct {
	Verdict      verdictResponse `json:"verdict"`
	FlightStatus string          `json:"flight_status"`
	AirlineName  string          `json:"airline_name"`
	DelayMinutes int             `json:"delay_minutes"`
	Provenance   string          `json:"provenance"`
}

func NewEligibilityHandler(service eligibility.EligibilityUseCase) *EligibilityHandler {
	return &EligibilityHandler{service: service}
}

func (h *EligibilityHandler) Register(router *gin.RouterGroup) {
	router.POST("/check", h.check)
}

func (h *EligibilityHandler) check(c *gin.Context) {
	var req checkEligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flightDate, err := time.Parse("2006-01-02", req.FlightDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flight_date must be YYYY-MM-DD"})
		return
	}

	result, err := h.service.CheckEligibility(c.Request.Context(), domain.DisruptionQuery{
		FlightNumber:  req.FlightNumber,
		DepartureIATA: req.DepartureIATA,
		ArrivalIATA:   req.ArrivalIATA,
		FlightDate:    flightDate,
	}, domain.DisruptionType(req.DisruptionType))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, checkEligibilityResponse{
		Verdict: verdictResponse{
			Eligible:          result.Verdict.Eligible,
			Amount:            result.Verdict.AmountMajorUnits,
			Currency:          result.Verdict.Currency,
			CommissionRate:    result.Verdict.CommissionRate,
			NetPayout:         result.Verdict.NetPayout,
			DistanceKm:        result.Verdict.DistanceKm,
			DistanceCategory:  string(result.Verdict.DistanceCategory),
			DistanceEstimated: result.Verdict.DistanceEstimated,
			RegulationCode:    result.Verdict.RegulationCode,
			Reason:            result.Verdict.Reason,
		},
		FlightStatus: string(result.Facts.Status),
		AirlineName:  result.Facts.AirlineName,
		DelayMinutes: result.Facts.EffectiveDelayMinutes(),
		Provenance:   string(result.Facts.Provenance),
	})
}
