package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/service/flights"
	"github.com/gin-gonic/gin"
)

// SeatHandler serves the seats nested under /flights/:id.
type SeatHandler struct {
	service flights.SeatUseCase
}

type seatRequest struct {
	Row        int    `json:"row" binding:"required"`
	Letter     string `json:"letter" binding:"required"`
	ClassGroup string `json:"class_group" binding:"max=60"`
}

type bulkSeatRequest struct {
	Rows       []int    `json:"rows" binding:"required,min=1,max=100,dive,gte=1"`
	Letters    []string `json:"letters" binding:"required,min=1,max=26,dive,required"`
	ClassGroup string   `json:"class_group" binding:"max=60"`
}

func NewSeatHandler(service flights.SeatUseCase) *SeatHandler {
	return &SeatHandler{service: service}
}

func (h *SeatHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/seats", h.list)
	router.POST("/:id/seats", RequireStaff(), h.create)
	router.POST("/:id/seats/bulk", RequireStaff(), h.bulkCreate)
	router.GET("/:id/seats/:seat_id", h.get)
}

// list serves ?available=true with only the unbooked seats, optionally
// narrowed by ?class_group.
func (h *SeatHandler) list(c *gin.Context) {
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

	var result domain.PageResult[domain.Seat]
	if available, _ := strconv.ParseBool(c.Query("available")); available {
		result, err = h.service.ListAvailable(c.Request.Context(), flightID, c.Query("class_group"), page)
	} else {
		result, err = h.service.List(c.Request.Context(), flightID, page)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(result, newSeatResponse))
}

func (h *SeatHandler) create(c *gin.Context) {
	flightID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req seatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	seat, err := h.service.Create(c.Request.Context(), flightID, domain.SeatRef{Row: req.Row, Letter: req.Letter, ClassGroup: req.ClassGroup})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSeatResponse(seat))
}

func (h *SeatHandler) bulkCreate(c *gin.Context) {
	flightID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req bulkSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	seats, err := h.service.BulkCreate(c.Request.Context(), flightID, flights.BulkSeatInput{
		Rows:       req.Rows,
		Letters:    req.Letters,
		ClassGroup: req.ClassGroup,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]seatResponse, 0, len(seats))
	for i := range seats {
		out = append(out, newSeatResponse(&seats[i]))
	}
	c.JSON(http.StatusCreated, out)
}

func (h *SeatHandler) get(c *gin.Context) {
	flightID, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	seatID, err := pathID(c, "seat_id")
	if err != nil {
		writeError(c, err)
		return
	}

	seat, err := h.service.Get(c.Request.Context(), flightID, seatID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSeatResponse(seat))
}
