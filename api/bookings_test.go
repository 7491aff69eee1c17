package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/Domenick1991/airtech/internal/service/booking"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Create(ctx context.Context, actor *domain.User, input booking.BookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Update(ctx context.Context, actor *domain.User, id int64, patch booking.BookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Delete(ctx context.Context, actor *domain.User, id int64) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockBookingUseCase) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context, actor *domain.User, travelDate *time.Time, page domain.Page) (domain.PageResult[domain.Booking], error) {
	args := m.Called(ctx, actor, travelDate, page)
	return args.Get(0).(domain.PageResult[domain.Booking]), args.Error(1)
}

func (m *MockBookingUseCase) ListForFlight(ctx context.Context, flightID int64, page domain.Page) (domain.PageResult[domain.Booking], error) {
	args := m.Called(ctx, flightID, page)
	return args.Get(0).(domain.PageResult[domain.Booking]), args.Error(1)
}

func (m *MockBookingUseCase) CreateForFlight(ctx context.Context, flightID int64, input booking.FlightBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, flightID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) AssignFlight(ctx context.Context, flightID int64) (int64, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingUseCase) DueForReminder(ctx context.Context, now time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func newBookingContext(method, target string, body any, user *domain.User) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(ctxUser, user)
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	user := &domain.User{ID: 7, Email: "alice@example.com"}

	c, w := newBookingContext(http.MethodPost, "/bookings", gin.H{
		"travel_date": "2026-05-01",
		"flight":      "KQ100",
		"seat":        gin.H{"row": 1, "letter": "a"},
	}, user)

	flight := "KQ100"
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	input := booking.BookingInput{
		TravelDate: &day,
		Flight:     &flight,
		Seat:       &booking.SeatChoice{Row: 1, Letter: "a"},
	}
	created := &domain.Booking{
		ID:         11,
		TravelDate: &day,
		BookedBy:   domain.UserSummary{Email: "alice@example.com"},
		Flight:     &domain.Flight{ID: 3, Name: "KQ100", CreatedBy: domain.UserSummary{Email: "staff@airtech.io"}},
		Seat:       &domain.Seat{ID: 5, Row: 1, Letter: "A", ClassGroup: domain.DefaultClassGroup, Booked: true},
	}
	mockService.On("Create", c.Request.Context(), user, input).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response bookingResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), response.ID)
	assert.Equal(t, "2026-05-01", *response.TravelDate)
	assert.Equal(t, "1A", response.Seat.Seat)
	assert.Equal(t, "alice@example.com", response.BookedBy.Email)
	assert.Nil(t, response.Flight.CreatedBy)

	mockService.AssertExpectations(t)
}

func TestBookingHandler_createRejected(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	user := &domain.User{ID: 7}

	c, w := newBookingContext(http.MethodPost, "/bookings", gin.H{"flight": "KQ100"}, user)
	flight := "KQ100"
	mockService.On("Create", c.Request.Context(), user, booking.BookingInput{Flight: &flight}).
		Return(nil, domain.Validation(domain.MsgFlightDate))

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"ValidationError","error_description":"`+domain.MsgFlightDate+`"}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestBookingHandler_list(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	user := &domain.User{ID: 7}

	c, w := newBookingContext(http.MethodGet, "/bookings?travel_date=2026-05-01&page=2&page-size=1", nil, user)
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	result := domain.PageResult[domain.Booking]{
		Items:      []domain.Booking{{ID: 2}},
		TotalCount: 3,
		PageSize:   1,
	}
	mockService.On("List", c.Request.Context(), user, &day, domain.NewPage(2, 1)).Return(result, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response pageResponse[bookingResponse]
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 3, response.TotalCount)
	assert.Equal(t, 3, response.TotalPages)
	assert.Len(t, response.Results, 1)
	assert.Nil(t, response.Results[0].TravelDate)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_getNotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	user := &domain.User{ID: 7}

	c, w := newBookingContext(http.MethodGet, "/bookings/9", nil, user)
	c.Params = gin.Params{{Key: "id", Value: "9"}}
	mockService.On("Get", c.Request.Context(), user, int64(9)).Return(nil, domain.NotFound())

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_deleteFailure(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	user := &domain.User{ID: 7}

	c, w := newBookingContext(http.MethodDelete, "/bookings/4", nil, user)
	c.Params = gin.Params{{Key: "id", Value: "4"}}
	mockService.On("Delete", c.Request.Context(), user, int64(4)).Return(errors.New("db down"))

	handler.delete(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), msgUnknownError)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_assignFlight(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newBookingContext(http.MethodPost, "/flights/3/bookings/assign-flight-to-bookings", nil, &domain.User{ID: 1, IsStaff: true})
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	mockService.On("AssignFlight", c.Request.Context(), int64(3)).Return(int64(2), nil)

	handler.assignFlight(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"`+msgFlightAssigned+`","assigned":2}`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestBookingHandler_createForFlight(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)

	c, w := newBookingContext(http.MethodPost, "/flights/3/bookings", gin.H{
		"booked_by": gin.H{"email": "bob@example.com"},
		"seat":      gin.H{"row": 2, "letter": "B"},
	}, &domain.User{ID: 1, IsStaff: true})
	c.Params = gin.Params{{Key: "id", Value: "3"}}
	input := booking.FlightBookingInput{Email: "bob@example.com", Seat: &booking.SeatChoice{Row: 2, Letter: "B"}}
	mockService.On("CreateForFlight", c.Request.Context(), int64(3), input).
		Return(&domain.Booking{ID: 8, BookedBy: domain.UserSummary{Email: "bob@example.com"}}, nil)

	handler.createForFlight(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}
