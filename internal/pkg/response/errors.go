// internal/pkg/response/errors.go
package response

import (
	"net/http"

	xerrors "checkout-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// FromError maps a service error onto the right HTTP status and envelope.
func FromError(c *gin.Context, message string, err error) {
	Error(c, statusFor(err), message, err)
}

func statusFor(err error) int {
	switch {
	case xerrors.Is(err, xerrors.ErrNotFound):
		return http.StatusNotFound
	case xerrors.Is(err, xerrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case xerrors.Is(err, xerrors.ErrForbidden):
		return http.StatusForbidden
	case xerrors.Is(err, xerrors.ErrDuplicateEntry), xerrors.Is(err, xerrors.ErrConflict), xerrors.Is(err, xerrors.ErrSaleFinalized):
		return http.StatusConflict
	case xerrors.Is(err, xerrors.ErrInvalidInput), xerrors.Is(err, xerrors.ErrBadRequest),
		xerrors.Is(err, xerrors.ErrCouponInvalid), xerrors.Is(err, xerrors.ErrCouponExpired), xerrors.Is(err, xerrors.ErrCouponExhausted):
		return http.StatusBadRequest
	case xerrors.Is(err, xerrors.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
