package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thorrangonak/ucustazminati-sub002/internal/domain"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/claims"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

type ClaimHandler struct {
	claims      claims.ClaimUseCase
	eligibility eligibility.EligibilityUseCase
}

type createClaimRequest struct {
	OwnerID        string `json:"owner_id" binding:"required"`
	FlightNumber   string `json:"flight_number" binding:"required"`
	DepartureIATA  string `json:"departure_iata" binding:"required"`
	ArrivalIATA    string `json:"arrival_iata" binding:"required"`
	FlightDate     string `json:"flight_date" binding:"required"`
	DisruptionType string `json:"disruption_type" binding:"required"`
}

type transitionRequest struct {
	ToStatus string  `json:"to_status" binding:"required"`
	ActorID  *string `json:"actor_id"`
	Note     *string `json:"note"`
}

type bulkTransitionRequest struct {
	ClaimIDs []int64 `json:"claim_ids" binding:"required"`
	ToStatus string  `json:"to_status" binding:"required"`
	ActorID  *string `json:"actor_id"`
	Note     *string `json:"note"`
}

type claimResponse struct {
	ID                 int64      `json:"id"`
	ClaimNumber        string     `json:"claim_number"`
	OwnerID            string     `json:"owner_id"`
	Status             string     `json:"status"`
	DisruptionType     string     `json:"disruption_type"`
	FlightNumber       string     `json:"flight_number"`
	FlightDate         string     `json:"flight_date"`
	DepartureIATA      string     `json:"departure_iata"`
	ArrivalIATA        string     `json:"arrival_iata"`
	AirlineName        string     `json:"airline_name"`
	FlightDistanceKm   float64    `json:"flight_distance_km"`
	CompensationAmount float64    `json:"compensation_amount"`
	Currency           string     `json:"currency"`
	CommissionRate     float64    `json:"commission_rate"`
	NetPayoutAmount    float64    `json:"net_payout_amount"`
	ResolvedAt         *time.Time `json:"resolved_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

type historyEntryResponse struct {
	FromStatus *string   `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	ActorID    *string   `json:"actor_id"`
	Note       *string   `json:"note"`
	OccurredAt time.Time `json:"occurred_at"`
}

type bulkResultResponse struct {
	ClaimID int64  `json:"claim_id"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}

type bulkTransitionResponse struct {
	SucceededCount int                  `json:"succeeded_count"`
	Results        []bulkResultResponse `json:"results"`
}

func NewClaimHandler(claimSvc claims.ClaimUseCase, eligibilitySvc eligibility.EligibilityUseCase) *ClaimHandler {
	return &ClaimHandler{claims: claimSvc, eligibility: eligibilitySvc}
}

func (h *ClaimHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.GET("/:id/history", h.history)
	router.POST("/:id/transition", h.transition)
	router.POST("/bulk-transition", h.bulkTransition)
}

func (h *ClaimHandler) create(c *gin.Context) {
	var req createClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	flightDate, err := time.Parse("2006-01-02", req.FlightDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "flight_date must be YYYY-MM-DD"})
		return
	}

	query := domain.DisruptionQuery{
		FlightNumber:  req.FlightNumber,
		DepartureIATA: req.DepartureIATA,
		ArrivalIATA:   req.ArrivalIATA,
		FlightDate:    flightDate,
	}
	disruption := domain.DisruptionType(req.DisruptionType)

	outcome, err := h.eligibility.CheckEligibility(c.Request.Context(), query, disruption)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.claims.CreateClaim(c.Request.Context(), claims.CreateClaimInput{
		OwnerID:    req.OwnerID,
		Disruption: disruption,
		Query:      query,
		Outcome:    *outcome,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toClaimResponse(claim))
}

func (h *ClaimHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	claim, err := h.claims.GetClaim(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *ClaimHandler) history(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	history, err := h.claims.History(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	out := make([]historyEntryResponse, 0, len(history))
	for _, e := range history {
		entry := historyEntryResponse{
			ToStatus:   string(e.ToStatus),
			ActorID:    e.ActorID,
			Note:       e.Note,
			OccurredAt: e.OccurredAt,
		}
		if e.FromStatus != nil {
			from := string(*e.FromStatus)
			entry.FromStatus = &from
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, out)
}

func (h *ClaimHandler) transition(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claim, err := h.claims.Transition(c.Request.Context(), id, domain.ClaimStatus(req.ToStatus), req.ActorID, req.Note)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toClaimResponse(claim))
}

func (h *ClaimHandler) bulkTransition(c *gin.Context) {
	var req bulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	toStatus := domain.ClaimStatus(req.ToStatus)
	if !toStatus.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidStatus.Error()})
		return
	}

	results := h.claims.BulkTransition(c.Request.Context(), req.ClaimIDs, toStatus, req.ActorID, req.Note)

	resp := bulkTransitionResponse{Results: make([]bulkResultResponse, 0, len(results))}
	for _, r := range results {
		item := bulkResultResponse{ClaimID: r.ClaimID, OK: r.Err == nil}
		if r.Err != nil {
			item.Error = r.Err.Error()
		} else {
			resp.SucceededCount++
		}
		resp.Results = append(resp.Results, item)
	}
	c.JSON(http.StatusOK, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrClaimNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidStatus), errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrInvalidDisruption):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func toClaimResponse(claim *domain.Claim) claimResponse {
	return claimResponse{
		ID:                 claim.ID,
		ClaimNumber:        claim.ClaimNumber,
		OwnerID:            claim.OwnerID,
		Status:             string(claim.CurrentStatus),
		DisruptionType:     string(claim.DisruptionType),
		FlightNumber:       claim.FlightNumber,
		FlightDate:         claim.FlightDate.Format("2006-01-02"),
		DepartureIATA:      claim.DepartureIATA,
		ArrivalIATA:        claim.ArrivalIATA,
		AirlineName:        claim.AirlineName,
		FlightDistanceKm:   claim.FlightDistanceKm,
		CompensationAmount: claim.CompensationAmount,
		Currency:           claim.Currency,
		CommissionRate:     claim.CommissionRate,
		NetPayoutAmount:    claim.NetPayoutAmount,
		ResolvedAt:         claim.ResolvedAt,
		CreatedAt:          claim.CreatedAt,
	}
}
