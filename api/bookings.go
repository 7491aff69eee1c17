package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/service/booking"
	"github.com/gin-gonic/gin"
)

const msgFlightAssigned = "Flight assigned to first bookings based on number of seats."

type BookingHandler struct {
	service booking.BookingUseCase
}

type seatChoiceRequest struct {
	Row        int    `json:"row" binding:"required"`
	Letter     string `json:"letter" binding:"required"`
	ClassGroup string `json:"class_group"`
}

func (r *seatChoiceRequest) toInput() *booking.SeatChoice {
	if r == nil {
		return nil
	}
	return &booking.SeatChoice{Row: r.Row, Letter: r.Letter, ClassGroup: r.ClassGroup}
}

type bookingRequest struct {
	Origin      *locationRef       `json:"origin"`
	Destination *locationRef       `json:"destination"`
	TravelDate  *string            `json:"travel_date" binding:"omitempty,datetime=2006-01-02"`
	Flight      *string            `json:"flight" binding:"omitempty,min=1"`
	Seat        *seatChoiceRequest `json:"seat"`
}

func (r bookingRequest) toInput() booking.BookingInput {
	input := booking.BookingInput{
		Origin:      r.Origin.toDomain(),
		Destination: r.Destination.toDomain(),
		Flight:      r.Flight,
		Seat:        r.Seat.toInput(),
	}
	if r.TravelDate != nil {
		// The binding tag has already checked the layout.
		day, _ := time.Parse(domain.DateLayout, *r.TravelDate)
		input.TravelDate = &day
	}
	return input
}

type flightBookingRequest struct {
	BookedBy struct {
		Email string `json:"email" binding:"required,email"`
	} `json:"booked_by"`
	Seat *seatChoiceRequest `json:"seat"`
}

type assignedResponse struct {
	Message  string `json:"message"`
	Assigned int64  `json:"assigned"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

// RegisterFlightBookings mounts the staff-only bookings of a flight under
// the flights group.
func (h *BookingHandler) RegisterFlightBookings(router *gin.RouterGroup) {
	staff := router.Group("/:id/bookings", RequireStaff())
	staff.GET("", h.listForFlight)
	staff.POST("", h.createForFlight)
	staff.POST("/assign-flight-to-bookings", h.assignFlight)
}

func (h *BookingHandler) list(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	var travelDate *time.Time
	if raw := c.Query("travel_date"); raw != "" {
		day, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			writeError(c, domain.Validation(map[string][]string{"travel_date": {msgDateFormat}}))
			return
		}
		travelDate = &day
	}

	result, err := h.service.List(c.Request.Context(), currentUser(c), travelDate, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(result, newBookingResponse))
}

func (h *BookingHandler) create(c *gin.Context) {
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), currentUser(c), req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(created))
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	found, err := h.service.Get(c.Request.Context(), currentUser(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(found))
}

func (h *BookingHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req bookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	updated, err := h.service.Update(c.Request.Context(), currentUser(c), id, req.toInput())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newBookingResponse(updated))
}

func (h *BookingHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BookingHandler) listForFlight(c *gin.Context) {
	flightID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	page, err := pageFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.service.ListForFlight(c.Request.Context(), flightID, page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(result, newBookingResponse))
}

func (h *BookingHandler) createForFlight(c *gin.Context) {
	flightID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req flightBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	created, err := h.service.CreateForFlight(c.Request.Context(), flightID, booking.FlightBookingInput{
		Email: req.BookedBy.Email,
		Seat:  req.Seat.toInput(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newBookingResponse(created))
}

func (h *BookingHandler) assignFlight(c *gin.Context) {
	flightID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	n, err := h.service.AssignFlight(c.Request.Context(), flightID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignedResponse{Message: msgFlightAssigned, Assigned: n})
}
