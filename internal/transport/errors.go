package transport

import (
	"errors"
	"net/http"

	"abc-retailers/internal/cart"
	"abc-retailers/internal/logger"
	"abc-retailers/internal/middleware"
	"abc-retailers/internal/order"
	"abc-retailers/internal/product"
	"abc-retailers/internal/upload"
	"abc-retailers/internal/user"

	"go.uber.org/zap"
)

// statusFor maps domain errors onto HTTP status codes. Zero means the error
// is unexpected and must not leak to the client.
func statusFor(err error) int {
	switch {
	case errors.Is(err, product.ErrProductNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrCartItemNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, user.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, product.ErrInvalidProduct),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrMissingSession),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidDetails),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, user.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized

	case errors.Is(err, order.ErrForbidden),
		errors.Is(err, user.ErrInactiveAccount):
		return http.StatusForbidden

	case errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrOrderFinalized),
		errors.Is(err, user.ErrEmailExists),
		errors.Is(err, user.ErrUsernameExists):
		return http.StatusConflict

	case errors.Is(err, upload.ErrUploadRejected),
		errors.Is(err, upload.ErrNoURL):
		return http.StatusBadGateway

	case errors.Is(err, product.ErrNoUploader):
		return http.StatusServiceUnavailable
	}
	return 0
}

// respondError writes err as a structured error response. Unknown errors
// are logged and replaced by fallback.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var changed *order.CartChangedError
	if errors.As(err, &changed) {
		middleware.RespondWithErrorDetails(w, http.StatusConflict, "your cart changed, please review it", map[string]interface{}{
			"warnings": changed.Warnings,
		})
		return
	}

	if verrs := middleware.FormatValidationErrors(err); len(verrs) > 0 {
		middleware.RespondWithValidationErrors(w, verrs)
		return
	}

	status := statusFor(err)
	if status == 0 {
		logger.FromCtx(r.Context()).Error(fallback,
			zap.String("layer", "transport"),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
		return
	}
	middleware.RespondWithError(w, status, err.Error())
}

// decode reads and validates a JSON body, writing the 400 itself on failure.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := middleware.DecodeAndValidate(r, v); err != nil {
		if verrs := middleware.FormatValidationErrors(err); len(verrs) > 0 {
			middleware.RespondWithValidationErrors(w, verrs)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
