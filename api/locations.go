package api

import (
	"net/http"

	"github.com/Domenick1991/airtech/internal/service/flights"
	"github.com/gin-gonic/gin"
)

type LocationHandler struct {
	service flights.LocationUseCase
}

type locationPatchRequest struct {
	Country *string `json:"country" binding:"omitempty,min=1,max=60"`
	City    *string `json:"city" binding:"omitempty,min=1,max=60"`
	Airport *string `json:"airport" binding:"omitempty,min=1,max=60"`
}

func NewLocationHandler(service flights.LocationUseCase) *LocationHandler {
	return &LocationHandler{service: service}
}

func (h *LocationHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", RequireStaff(), h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id", RequireStaff(), h.update)
}

func (h *LocationHandler) list(c *gin.Context) {
	page, err := pageFrom(c)
	if err != nil {
		writeError(c, err)
		return
	}

	locations, err := h.service.List(c.Request.Context(), page)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paginate(locations, newLocationResponse))
}

func (h *LocationHandler) create(c *gin.Context) {
	var req locationRef
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	location, err := h.service.Create(c.Request.Context(), *req.toDomain())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newLocationResponse(location))
}

func (h *LocationHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	location, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLocationResponse(location))
}

func (h *LocationHandler) update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}
	var req locationPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}

	location, err := h.service.Update(c.Request.Context(), id, flights.LocationPatch{
		Country: req.Country,
		City:    req.City,
		Airport: req.Airport,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newLocationResponse(location))
}
