package api

import (
	"net/http"

	"github.com/Domenick1991/airtech/config"
	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Auth      *AuthHandler
	Locations *LocationHandler
	Flights   *FlightHandler
	Seats     *SeatHandler
	Bookings  *BookingHandler
}

// NewRouter builds the gin engine serving the versioned JSON API.
func NewRouter(cfg config.HTTPConfig, log logrus.FieldLogger, auth Authenticator, h Handlers) *gin.Engine {
	gin.SetMode(cfg.Mode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))
	router.Use(Metrics())
	router.Use(Timeout(cfg.RequestTimeout()))
	router.NoRoute(func(c *gin.Context) {
		writeError(c, domain.NotFound())
	})
	router.NoMethod(func(c *gin.Context) {
		c.AbortWithStatusJSON(http.StatusMethodNotAllowed, errorResponse{Error: "MethodNotAllowed", ErrorDescription: "Method not allowed."})
	})
	router.HandleMethodNotAllowed = true

	authenticated := Authenticate(auth)
	v1 := router.Group(cfg.APIPrefix)
	h.Auth.Register(v1.Group("/auth"), authenticated)

	private := v1.Group("", authenticated)
	h.Locations.Register(private.Group("/allowed-destinations"))

	flightRoutes := private.Group("/flights")
	h.Flights.Register(flightRoutes)
	h.Seats.Register(flightRoutes)
	h.Bookings.RegisterFlightBookings(flightRoutes)

	h.Bookings.Register(private.Group("/bookings"))
	return router
}
