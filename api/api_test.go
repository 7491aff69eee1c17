package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/Domenick1991/airtech/config"
	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/repository/memory"
	"github.com/Domenick1991/airtech/internal/service/auth"
	"github.com/Domenick1991/airtech/internal/service/booking"
	"github.com/Domenick1991/airtech/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const password = "correct-horse"

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	auth   *auth.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store := memory.NewStore()
	log := quietLogger()

	authService := auth.NewAuthService(store.Users(), store.Tokens(), store, 0, log, auth.WithBcryptCost(bcrypt.MinCost))
	locations := flights.NewLocationService(store.Locations(), nil, log)
	flightService := flights.NewFlightService(store.Flights(), store.Seats(), locations, store, nil, log)
	seatService := flights.NewSeatService(store.Seats(), store.Flights(), store, log)
	bookingService := booking.NewBookingService(store.Bookings(), store.Flights(), store.Seats(), store.Locations(), store.Users(), store, log)

	router := NewRouter(config.HTTPConfig{APIPrefix: "/v1", Mode: gin.TestMode, RequestTimeoutSeconds: 5}, log, authService, Handlers{
		Auth:      NewAuthHandler(authService),
		Locations: NewLocationHandler(locations),
		Flights:   NewFlightHandler(flightService),
		Seats:     NewSeatHandler(seatService),
		Bookings:  NewBookingHandler(bookingService),
	})
	return &testAPI{t: t, router: router, auth: authService}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, "/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// user registers a user with the given roles and signs them in over HTTP.
func (a *testAPI) user(email string, staff, superuser bool) string {
	a.t.Helper()
	_, err := a.auth.CreateUser(context.Background(), auth.SignUpInput{Email: email, FirstName: "Test", Password: password}, staff, superuser)
	require.NoError(a.t, err)

	w := a.do(http.MethodPost, "/auth/sign-in", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var session sessionResponse
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &session))
	return session.Token
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, kind string, detail any) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	resp := decode[struct {
		Error            string `json:"error"`
		ErrorDescription any    `json:"error_description"`
	}](t, w)
	assert.Equal(t, kind, resp.Error)
	assert.Equal(t, detail, resp.ErrorDescription)
}

var (
	nairobi = gin.H{"country": "kenya", "city": "nairobi", "airport": "jkia"}
	lagos   = gin.H{"country": "Nigeria", "city": "Lagos", "airport": "Murtala"}
)

func TestAPI_BookingScenario(t *testing.T) {
	api := newTestAPI(t)
	staff := api.user("staff@airtech.io", true, true)
	alice := api.user("alice@example.com", false, false)
	bob := api.user("bob@example.com", false, false)

	w := api.do(http.MethodPost, "/allowed-destinations", alice, nairobi)
	assertError(t, w, http.StatusForbidden, "PermissionDenied", "You do not have permission to perform this action.")

	for _, loc := range []gin.H{nairobi, lagos} {
		w = api.do(http.MethodPost, "/allowed-destinations", staff, loc)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	w = api.do(http.MethodPost, "/allowed-destinations", staff, gin.H{"country": "KENYA", "city": "Nairobi", "airport": "JKIA"})
	assertError(t, w, http.StatusBadRequest, "ValidationError", domain.MsgLocationExists)

	w = api.do(http.MethodPost, "/flights", staff, gin.H{
		"name":           "kq100",
		"origin":         nairobi,
		"destination":    lagos,
		"departure_time": "2026-05-01T09:30:00Z",
		"gate":           "A4",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	flight := decode[flightResponse](t, w)
	assert.Equal(t, "KQ100", flight.Name)
	require.NotNil(t, flight.CreatedBy)
	assert.Equal(t, "staff@airtech.io", flight.CreatedBy.Email)

	flightPath := "/flights/" + itoa(flight.ID)
	w = api.do(http.MethodPost, flightPath+"/seats", staff, gin.H{"row": 1, "letter": "a"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "KQ100", decode[seatResponse](t, w).Flight)

	request := gin.H{
		"origin":      nairobi,
		"destination": lagos,
		"travel_date": "2026-05-01",
		"flight":      "KQ100",
		"seat":        gin.H{"row": 1, "letter": "A"},
	}
	w = api.do(http.MethodPost, "/bookings", alice, request)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[bookingResponse](t, w)
	require.NotNil(t, created.Seat)
	assert.Equal(t, "1A", created.Seat.Seat)
	assert.True(t, created.Seat.Booked)
	assert.Equal(t, "2026-05-01", *created.TravelDate)
	assert.Nil(t, created.Flight.CreatedBy)

	w = api.do(http.MethodPost, "/bookings", bob, request)
	assertError(t, w, http.StatusBadRequest, "ValidationError", domain.MsgInvalidSeat)

	w = api.do(http.MethodGet, flightPath+"/seats?available=true", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, decode[pageResponse[seatResponse]](t, w).TotalCount)

	w = api.do(http.MethodGet, "/bookings", bob, nil)
	assert.Zero(t, decode[pageResponse[bookingResponse]](t, w).TotalCount)
	w = api.do(http.MethodGet, "/bookings?travel_date=2026-05-01", alice, nil)
	assert.Equal(t, 1, decode[pageResponse[bookingResponse]](t, w).TotalCount)
	w = api.do(http.MethodGet, "/bookings/"+itoa(created.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, flightPath+"/bookings", staff, nil)
	assert.Equal(t, 1, decode[pageResponse[bookingResponse]](t, w).TotalCount)

	w = api.do(http.MethodGet, "/flights", alice, nil)
	listed := decode[pageResponse[flightResponse]](t, w)
	require.Len(t, listed.Results, 1)
	assert.Nil(t, listed.Results[0].CreatedBy)
	assert.Equal(t, 1, listed.TotalPages)
}

func TestAPI_BookingCancelFreesSeat(t *testing.T) {
	api := newTestAPI(t)
	staff := api.user("staff@airtech.io", true, false)
	alice := api.user("alice@example.com", false, false)

	api.do(http.MethodPost, "/allowed-destinations", staff, nairobi)
	api.do(http.MethodPost, "/allowed-destinations", staff, lagos)
	w := api.do(http.MethodPost, "/flights", staff, gin.H{"name": "KQ7", "origin": nairobi, "destination": lagos})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	flightPath := "/flights/" + itoa(decode[flightResponse](t, w).ID)

	w = api.do(http.MethodPost, flightPath+"/seats/bulk", staff, gin.H{"rows": []int{1, 2}, "letters": []string{"A", "B"}, "class_group": "business"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, decode[[]seatResponse](t, w), 4)

	w = api.do(http.MethodPost, "/bookings", alice, gin.H{"origin": nairobi, "destination": lagos, "flight": "KQ7", "seat": gin.H{"row": 2, "letter": "b"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[bookingResponse](t, w).ID

	w = api.do(http.MethodGet, flightPath+"/seats?available=true&class_group=business", alice, nil)
	assert.Equal(t, 3, decode[pageResponse[seatResponse]](t, w).TotalCount)

	w = api.do(http.MethodDelete, "/bookings/"+itoa(id), alice, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, flightPath+"/seats?available=true", alice, nil)
	assert.Equal(t, 4, decode[pageResponse[seatResponse]](t, w).TotalCount)

	w = api.do(http.MethodDelete, flightPath, staff, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "deleting needs a superuser")
}

func TestAPI_FlightDelete(t *testing.T) {
	api := newTestAPI(t)
	admin := api.user("admin@airtech.io", true, true)

	w := api.do(http.MethodPost, "/flights", admin, gin.H{"name": "KQ9"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	flightPath := "/flights/" + itoa(decode[flightResponse](t, w).ID)

	w = api.do(http.MethodPost, "/flights", admin, gin.H{"name": "kq9"})
	assertError(t, w, http.StatusBadRequest, "ValidationError", domain.MsgFlightExists)

	w = api.do(http.MethodDelete, flightPath, admin, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = api.do(http.MethodGet, flightPath, admin, nil)
	assertError(t, w, http.StatusNotFound, "NotFound", "Item Not found.")
}

func TestAPI_Authentication(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "jane@example.com", "first_name": "Jane", "password": password})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.JSONEq(t, `{"message":"User successfully registered."}`, w.Body.String())

	w = api.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "JANE@example.com", "password": password})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{"email": []any{auth.MsgEmailTaken}})

	w = api.do(http.MethodPost, "/auth/sign-in", "", gin.H{"email": "jane@example.com", "password": "nope"})
	assertError(t, w, http.StatusBadRequest, "ValidationError", auth.MsgBadCredentials)

	w = api.do(http.MethodPost, "/auth/sign-in", "", gin.H{"email": "ghost@example.com", "password": "nope"})
	assertError(t, w, http.StatusBadRequest, "ValidationError", auth.MsgNotRegistered)

	w = api.do(http.MethodPost, "/auth/sign-in", "", gin.H{"email": "jane@example.com", "password": password})
	require.Equal(t, http.StatusOK, w.Code)
	session := decode[sessionResponse](t, w)
	assert.Len(t, session.Token, 40)
	assert.Equal(t, "jane@example.com", session.User.Email)

	w = api.do(http.MethodGet, "/bookings", "", nil)
	assertError(t, w, http.StatusUnauthorized, "AuthenticationFailed", msgNoCredentials)

	w = api.do(http.MethodGet, "/bookings", "deadbeef", nil)
	assertError(t, w, http.StatusUnauthorized, "AuthenticationFailed", auth.MsgInvalidToken)

	w = api.do(http.MethodPost, "/auth/change-password", session.Token, gin.H{"old_password": "wrong", "new_password": "n3w-pass", "confirm_new_password": "n3w-pass"})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{"old_password": []any{auth.MsgWrongPassword}})

	w = api.do(http.MethodPost, "/auth/change-password", session.Token, gin.H{"old_password": password, "new_password": "n3w-pass", "confirm_new_password": "other"})
	assertError(t, w, http.StatusBadRequest, "ValidationError", auth.MsgPasswordsDiffer)

	w = api.do(http.MethodPost, "/auth/change-password", session.Token, gin.H{"old_password": password, "new_password": "n3w-pass", "confirm_new_password": "n3w-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := decode[sessionResponse](t, w).Token
	assert.NotEqual(t, session.Token, rotated)

	w = api.do(http.MethodGet, "/bookings", session.Token, nil)
	assertError(t, w, http.StatusUnauthorized, "AuthenticationFailed", auth.MsgInvalidToken)
	w = api.do(http.MethodGet, "/bookings", rotated, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_BindingErrors(t *testing.T) {
	api := newTestAPI(t)
	staff := api.user("staff@airtech.io", true, false)

	w := api.do(http.MethodPost, "/auth/signup", "", gin.H{})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"email":    []any{msgRequired},
		"password": []any{msgRequired},
	})

	w = api.do(http.MethodPost, "/bookings", staff, gin.H{"travel_date": "01/05/2026", "origin": gin.H{"country": "Kenya"}})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"travel_date":    []any{msgDateFormat},
		"origin.city":    []any{msgRequired},
		"origin.airport": []any{msgRequired},
	})

	w = api.do(http.MethodGet, "/bookings?travel_date=tomorrow", staff, nil)
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{"travel_date": []any{msgDateFormat}})

	w = api.do(http.MethodGet, "/flights?page=two", staff, nil)
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{"page": []any{msgIntegerRequired}})

	w = api.do(http.MethodGet, "/bookings?page=9223372036854775807", staff, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode[pageResponse[bookingResponse]](t, w).Results)

	w = api.do(http.MethodGet, "/flights/abc", staff, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(http.MethodGet, "/nowhere", staff, nil)
	assertError(t, w, http.StatusNotFound, "NotFound", "Item Not found.")
}

func TestAPI_PasswordTooLong(t *testing.T) {
	api := newTestAPI(t)
	long := strings.Repeat("p", 100)

	w := api.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "jane@example.com", "password": long})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"password": []any{"Ensure this field has no more than 72 characters."},
	})

	// 40 characters but 80 bytes: passes binding, rejected by the hasher.
	w = api.do(http.MethodPost, "/auth/signup", "", gin.H{"email": "jane@example.com", "password": strings.Repeat("é", 40)})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"password": []any{auth.MsgPasswordTooLong},
	})

	token := api.user("joe@example.com", false, false)
	w = api.do(http.MethodPost, "/auth/change-password", token, gin.H{"old_password": password, "new_password": long, "confirm_new_password": long})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"new_password":         []any{"Ensure this field has no more than 72 characters."},
		"confirm_new_password": []any{"Ensure this field has no more than 72 characters."},
	})
}

func TestAPI_BulkSeatLimits(t *testing.T) {
	api := newTestAPI(t)
	staff := api.user("staff@airtech.io", true, false)

	w := api.do(http.MethodPost, "/flights", staff, gin.H{"name": "KQ1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	seatsPath := "/flights/" + itoa(decode[flightResponse](t, w).ID) + "/seats"

	rows := make([]int, 101)
	for i := range rows {
		rows[i] = i + 1
	}
	w = api.do(http.MethodPost, seatsPath+"/bulk", staff, gin.H{"rows": rows, "letters": []string{"A"}})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"rows": []any{"Ensure this field has no more than 100 elements."},
	})

	w = api.do(http.MethodPost, seatsPath+"/bulk", staff, gin.H{"rows": []int{1, 0}, "letters": []string{"A"}})
	assertError(t, w, http.StatusBadRequest, "ValidationError", map[string]any{
		"rows[1]": []any{"Ensure this value is greater than or equal to 1."},
	})

	w = api.do(http.MethodGet, seatsPath, staff, nil)
	assert.Zero(t, decode[pageResponse[seatResponse]](t, w).TotalCount)
}

func TestAPI_Users(t *testing.T) {
	api := newTestAPI(t)
	root := api.user("root@airtech.io", true, true)
	jane := api.user("jane@example.com", false, false)

	w := api.do(http.MethodGet, "/auth/users?page-size=1", jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	users := decode[pageResponse[userResponse]](t, w)
	assert.Equal(t, 2, users.TotalCount)
	assert.Equal(t, 2, users.TotalPages)
	assert.Equal(t, 1, users.PageSize)

	var janeID int64
	w = api.do(http.MethodGet, "/auth/users", jane, nil)
	for _, u := range decode[pageResponse[userResponse]](t, w).Results {
		if u.Email == "jane@example.com" {
			janeID = u.ID
		}
	}
	require.NotZero(t, janeID)

	w = api.do(http.MethodGet, "/auth/users/"+itoa(janeID), jane, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "jane@example.com", decode[userResponse](t, w).Email)

	w = api.do(http.MethodPut, "/auth/users/"+itoa(janeID), jane, gin.H{"is_staff": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPut, "/auth/users/"+itoa(janeID), jane, gin.H{"first_name": "Janet"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Janet", decode[userResponse](t, w).FirstName)

	w = api.do(http.MethodPut, "/auth/users/"+itoa(janeID), root, gin.H{"is_staff": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[userResponse](t, w).IsStaff)
}
