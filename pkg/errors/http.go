package errors

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ToHTTPStatus converts an error code to an HTTP status.
func ToHTTPStatus(code string) int {
	httpStatus, _ := GetCodeMapping(code)
	return httpStatus
}

// FromHTTPError converts an echo HTTP error into an AppError.
func FromHTTPError(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if As(err, &appErr) {
		return err
	}

	var echoErr *echo.HTTPError
	if As(err, &echoErr) {
		msg, ok := echoErr.Message.(string)
		if !ok {
			msg = http.StatusText(echoErr.Code)
		}
		return NewAppError(httpStatusToCode(echoErr.Code), msg, nil)
	}

	return NewAppError(ErrInternal, err.Error(), err)
}

func httpStatusToCode(status int) string {
	switch status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrInvalidArgument
	case http.StatusUnauthorized:
		return ErrUnauthenticated
	case http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	case http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusNotImplemented:
		return ErrNotImplemented
	case http.StatusTooManyRequests:
		return ErrTooManyRequests
	case http.StatusServiceUnavailable:
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
