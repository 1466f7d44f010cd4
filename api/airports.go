package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thorrangonak/ucustazminati-sub002/internal/service/eligibility"
)

type AirportHandler struct {
	service eligibility.EligibilityUseCase
}

type airportResponse struct {
	IATACode    string  `json:"iata_code"`
	Name        string  `json:"name"`
	City        string  `json:"city"`
	CountryCode string  `json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
}

func NewAirportHandler(service eligibility.EligibilityUseCase) *AirportHandler {
	return &AirportHandler{service: service}
}

func (h *AirportHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
}

func (h *AirportHandler) list(c *gin.Context) {
	airports, err := h.service.ListAirports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]airportResponse, 0, len(airports))
	for _, a := range airports {
		out = append(out, airportResponse{
			IATACode:    a.IATACode,
			Name:        a.Name,
			City:        a.City,
			CountryCode: a.CountryCode,
			Latitude:    a.Coordinate.Latitude,
			Longitude:   a.Coordinate.Longitude,
		})
	}
	c.JSON(http.StatusOK, out)
}
