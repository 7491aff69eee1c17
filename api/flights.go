package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type flightRequest struct {
	Name          string       `json:"name" binding:"required,max=60"`
	Origin        *locationRef `json:"origin"`
	Destination   *locationRef `json:"destination"`
	DepartureTime *time.Time   `json:"departure_time"`
	ArrivalTime   *time.Time   `json:"arrival_time"`
	Gate          string       `json:"gate" binding:"max=60"`
}

type flightPatchRequest struct {
	Name          *string      `json:"name" binding:"omitempty,min=1,max=60"`
	Origin        *locationRef `json:"origin"`
	Destination   *locationRef `json:"destination"`
	DepartureTime *time.Time   `json:"departure_time"`
	ArrivalTime   *time.Time   `json:"arrival_time"`
	Gate          *string      `json:"gate" binding:"omitempty,max=60"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", RequireStaff(), h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id", RequireStaff(), h.update)
	router.DELETE("/:id", RequireSuperuser(), h.delete)
}

func (h *FlightHandler) list(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	staff := currentUser(c).IsStaff
	c.JSON(http.StatusOK, paginate(result, func(f *domain.Flight) flightResponse {
		return newFlightResponse(f, staff)
	}))
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	flight, err := h.service.Create(c.Request.Context(), currentUser(c), flights.FlightInput{
		Name:          req.Name,
		Origin:        req.Origin.toDomain(),
		Destination:   req.Destination.toDomain(),
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Gate:          req.Gate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newFlightResponse(flight, true))
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	flight, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight, currentUser(c).IsStaff))
}

func (h *FlightHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req flightPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	flight, err := h.service.Update(c.Request.Context(), id, flights.FlightPatch{
		Name:          req.Name,
		Origin:        req.Origin.toDomain(),
		Destination:   req.Destination.toDomain(),
		DepartureTime: req.DepartureTime,
		ArrivalTime:   req.ArrivalTime,
		Gate:          req.Gate,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFlightResponse(flight, true))
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
