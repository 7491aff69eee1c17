package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLocation(t *testing.T) {
	got := NormalizeLocation(LocationRef{Country: "  united   KINGDOM ", City: "london", Airport: "HEATHROW"})

	assert.Equal(t, LocationRef{Country: "United Kingdom", City: "London", Airport: "Heathrow"}, got)
}

func TestNormalizeHelpers(t *testing.T) {
	assert.Equal(t, "KQ100", NormalizeFlightName(" kq100 "))
	assert.Equal(t, "C", NormalizeSeatLetter("c "))
	assert.Equal(t, "Economy", NormalizeClassGroup(""))
	assert.Equal(t, "First Class", NormalizeClassGroup("first CLASS"))
	assert.Equal(t, "jane@example.com", NormalizeEmail(" Jane@Example.COM "))
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name         string
		number, size int
		want         Page
	}{
		{"defaults", 0, 0, Page{Number: 1, Size: DefaultPageSize}},
		{"capped", 3, 1000, Page{Number: 3, Size: MaxPageSize}},
		{"as given", 2, 25, Page{Number: 2, Size: 25}},
		{"huge page number", math.MaxInt, 100, Page{Number: MaxPageNumber, Size: MaxPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPage(tt.number, tt.size))
		})
	}

	assert.Equal(t, 50, NewPage(3, 25).Offset())
	assert.Positive(t, NewPage(math.MaxInt, MaxPageSize).Offset())
}

func TestPageResult_TotalPages(t *testing.T) {
	assert.Equal(t, 0, PageResult[int]{PageSize: 10}.TotalPages())
	assert.Equal(t, 1, PageResult[int]{TotalCount: 10, PageSize: 10}.TotalPages())
	assert.Equal(t, 3, PageResult[int]{TotalCount: 21, PageSize: 10}.TotalPages())
}

func TestFlight_DepartsOn(t *testing.T) {
	departure := time.Date(2026, 5, 1, 23, 30, 0, 0, time.UTC)
	flight := &Flight{DepartureTime: &departure}

	assert.True(t, flight.DepartsOn(time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, flight.DepartsOn(time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)))
	assert.True(t, (&Flight{}).DepartsOn(time.Now()))
}

func TestFlight_Serves(t *testing.T) {
	a, b := int64(1), int64(2)
	flight := &Flight{OriginID: &a, DestinationID: &b}

	assert.True(t, flight.Serves(&a, &b))
	assert.False(t, flight.Serves(&b, &a))
	assert.False(t, flight.Serves(&a, nil))
	assert.True(t, (&Flight{}).Serves(nil, nil))
}

func TestToken_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Minute), now.Add(time.Minute)

	assert.False(t, (&Token{}).Expired(now))
	assert.True(t, (&Token{ExpiresAt: &past}).Expired(now))
	assert.True(t, (&Token{ExpiresAt: &now}).Expired(now))
	assert.False(t, (&Token{ExpiresAt: &future}).Expired(now))
}

func TestSeat_Label(t *testing.T) {
	assert.Equal(t, "12C", (&Seat{Row: 12, Letter: "C"}).Label())
}

func TestErrors(t *testing.T) {
	cause := errors.New("boom")
	err := fmt.Errorf("create: %w", Validation(MsgInvalidSeat).Wrap(cause))

	de, ok := AsError(err)
	assert.True(t, ok)
	assert.Equal(t, MsgInvalidSeat, de.Detail)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(cause, KindValidation))

	assert.Equal(t, "NotFound: Item Not found.", NotFound().Error())
	assert.Equal(t, "ValidationError: Seat 1A already exists.", Validationf("Seat %s already exists.", "1A").Error())
	assert.Equal(t, KindPermission, PermissionDenied().Kind)
}
