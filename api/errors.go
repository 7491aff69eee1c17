package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/Domenick1991/airtech/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const (
	kindInternal       = "InternalServerError"
	msgUnknownError    = "An unknown error occurred."
	msgMalformedBody   = "Malformed request body."
	msgRequired        = "This field is required."
	msgInvalidValue    = "Invalid value."
	msgInvalidEmail    = "Enter a valid email address."
	msgDateFormat      = "Date has wrong format. Use one of these formats instead: YYYY-MM-DD."
	msgIntegerRequired = "A valid integer is required."
)

type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription any    `json:"error_description"`
}

var kindStatus = map[domain.ErrorKind]int{
	domain.KindValidation:     http.StatusBadRequest,
	domain.KindAuthentication: http.StatusUnauthorized,
	domain.KindPermission:     http.StatusForbidden,
	domain.KindNotFound:       http.StatusNotFound,
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

// writeError renders err as the error envelope and aborts the chain.
// Unclassified errors are attached to the context for the request logger.
func writeError(c *gin.Context, err error) {
	if de, ok := domain.AsError(err); ok {
		status, known := kindStatus[de.Kind]
		if known {
			if de.Err != nil {
				_ = c.Error(de.Err).SetType(gin.ErrorTypePrivate)
			}
			c.AbortWithStatusJSON(status, errorResponse{Error: string(de.Kind), ErrorDescription: de.Detail})
			return
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorResponse{Error: kindInternal, ErrorDescription: msgUnknownError})
}

// bindError turns a gin binding failure into a validation error with
// per-field messages where the failure can be attributed to a field.
func bindError(err error) *domain.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			name := fieldPath(fe.Namespace())
			fields[name] = append(fields[name], fieldMessage(fe))
		}
		return domain.Validation(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.Validation(map[string][]string{typeErr.Field: {msgInvalidValue}})
	}
	return domain.Validation(msgMalformedBody).Wrap(err)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgRequired
	case "email":
		return msgInvalidEmail
	case "datetime":
		return msgDateFormat
	case "min", "gte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Ensure this field has at least %s elements.", fe.Param())
		default:
			return fmt.Sprintf("Ensure this value is greater than or equal to %s.", fe.Param())
		}
	case "max", "lte":
		switch fe.Kind() {
		case reflect.String:
			return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
		case reflect.Slice:
			return fmt.Sprintf("Ensure this field has no more than %s elements.", fe.Param())
		default:
			return fmt.Sprintf("Ensure this value is less than or equal to %s.", fe.Param())
		}
	default:
		return msgInvalidValue
	}
}

// fieldPath drops the request struct name from a validator namespace, so
// "bookingRequest.origin.city" becomes "origin.city".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func jsonName(field reflect.StructField) string {
	name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
	switch name {
	case "-":
		return ""
	case "":
		return field.Name
	default:
		return name
	}
}
