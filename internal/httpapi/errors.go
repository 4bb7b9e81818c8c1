package httpapi

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nostella/nostella/internal/ai"
	"github.com/nostella/nostella/internal/service"
	"github.com/nostella/nostella/pkg/httpx"
)

// APIError is the uniform error body: {"error": code,
// "error_description": human text}. StatusCode never goes on the wire.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, e)
}

var (
	errBadRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_request",
		Description: "The request body could not be parsed",
	}
	errDuplicateAccount = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "duplicate_account",
		Description: "An account with this email already exists",
	}
	errUserNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        "user_not_found",
		Description: "No account exists for this email",
	}
	errAlreadyVerified = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "already_verified",
		Description: "This account is already verified",
	}
	errInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "invalid_code",
		Description: "The verification code is incorrect",
	}
	errCodeExpired = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        "code_expired",
		Description: "The verification code has expired, request a new one",
	}
	errInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        "invalid_credentials",
		Description: "Email or password is incorrect",
	}
	errNotVerified = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        "not_verified",
		Description: "Verify your email before logging in",
	}
	errNotificationFailure = &APIError{
		StatusCode:  http.StatusBadGateway,
		Code:        "notification_failure",
		Description: "Could not send the verification email, try resending",
	}
	errVIPRequired = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        "vip_required",
		Description: "This feature requires a VIP account",
	}
	errPhotoNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        "photo_not_found",
		Description: "No such photo",
	}
	errNotOwner = &APIError{
		StatusCode:  http.StatusForbidden,
		Code:        "not_owner",
		Description: "You do not own this photo",
	}
	errStoryUnavailable = &APIError{
		StatusCode:  http.StatusServiceUnavailable,
		Code:        "story_unavailable",
		Description: "Story generation is not available right now",
	}
	errServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        "server_error",
		Description: "Something went wrong",
	}
)

// writeServiceError maps service sentinels onto API errors. Anything
// unmapped is logged and reported as an opaque 500.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	var vErr *service.ValidationError
	if errors.As(err, &vErr) {
		(&APIError{
			StatusCode:  http.StatusBadRequest,
			Code:        "validation_error",
			Description: fmt.Sprintf("%s %s", vErr.Field, vErr.Message),
		}).WriteError(w)
		return
	}

	switch {
	case errors.Is(err, service.ErrDuplicateAccount):
		errDuplicateAccount.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		errUserNotFound.WriteError(w)
	case errors.Is(err, service.ErrAlreadyVerified):
		errAlreadyVerified.WriteError(w)
	case errors.Is(err, service.ErrInvalidCode):
		errInvalidCode.WriteError(w)
	case errors.Is(err, service.ErrCodeExpired):
		errCodeExpired.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		errInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrNotVerified):
		errNotVerified.WriteError(w)
	case errors.Is(err, service.ErrNotificationFailure):
		errNotificationFailure.WriteError(w)
	case errors.Is(err, service.ErrVIPRequired):
		errVIPRequired.WriteError(w)
	case errors.Is(err, service.ErrPhotoNotFound):
		errPhotoNotFound.WriteError(w)
	case errors.Is(err, service.ErrNotOwner):
		errNotOwner.WriteError(w)
	case errors.Is(err, ai.ErrUnavailable):
		errStoryUnavailable.WriteError(w)
	default:
		log.Error("unhandled service error", "err", err)
		errServerError.WriteError(w)
	}
}
