package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindValidation     ErrorKind = "ValidationError"
	KindAuthentication ErrorKind = "AuthenticationFailed"
	KindPermission     ErrorKind = "PermissionDenied"
	KindNotFound       ErrorKind = "NotFound"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrSeatUnavailable = errors.New("seat unavailable")
	ErrDuplicate       = errors.New("duplicate record")
)

// Error is a failure the API reports to the caller as-is. Detail is either a
// message or a field -> messages map.
type Error struct {
	Kind   ErrorKind
	Detail any
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v: %v", e.Kind, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(detail any) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func AuthenticationFailed(detail string) *Error {
	return &Error{Kind: KindAuthentication, Detail: detail}
}

func PermissionDenied() *Error {
	return &Error{Kind: KindPermission, Detail: "You do not have permission to perform this action."}
}

func NotFound() *Error {
	return &Error{Kind: KindNotFound, Detail: "Item Not found."}
}

// Wrap attaches the underlying cause to an API error.
func (e *Error) Wrap(err error) *Error {
	e.Err = err
	return e
}

// AsError extracts an API error from an error chain.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reports whether err carries an API error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == kind
}

// Messages shared by the booking and inventory services.
const (
	MsgInvalidSeat           = "Invalid seat choice."
	MsgOriginUnknown         = "Origin given is not in the allowed destinations."
	MsgDestinationUnknown    = "Destination given is not in the allowed destinations."
	MsgFlightLocationUnknown = "Origin/destination given is not in the allowed destinations."
	MsgSameOriginBooking     = "Origin and destination can not be the same."
	MsgSameOriginFlight      = "Flight origin and destination can not be the same."
	MsgFlightRoute           = "Invalid flight choosen for booking information; origin/destination, given."
	MsgFlightDate            = "Invalid flight choosen for booking information; travel_date, given."
	MsgLocationExists        = "Location already exists, kindly use existing location."
	MsgFlightExists          = "Flight with same name exists, schedule existing flight."
	MsgFlightScheduleExists  = "Flight with same name and departure time exists."
)
