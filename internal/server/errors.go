package server

import (
	"errors"
	"net/http"

	feedomain "github.com/classbill/classbill/internal/fee/domain"
	studentdomain "github.com/classbill/classbill/internal/student/domain"
	"github.com/gin-gonic/gin"
)

var errInvalidRequest = errors.New("invalid_request")

// AbortWithError translates domain sentinel errors into HTTP responses. The
// error message doubles as the stable machine-readable code.
func AbortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, feedomain.ErrFeeNotFound),
		errors.Is(err, studentdomain.ErrStudentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, feedomain.ErrPaidFeeDeletionForbidden),
		errors.Is(err, feedomain.ErrPaidFeeImmutable),
		errors.Is(err, feedomain.ErrDuplicateFee):
		status = http.StatusConflict
	case errors.Is(err, feedomain.ErrInvalidTenant):
		status = http.StatusForbidden
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, feedomain.ErrInvalidPeriod),
		errors.Is(err, feedomain.ErrInvalidStatus),
		errors.Is(err, feedomain.ErrInvalidType),
		errors.Is(err, feedomain.ErrInvalidAmount),
		errors.Is(err, feedomain.ErrInvalidID),
		errors.Is(err, studentdomain.ErrInvalidBillingConfig):
		status = http.StatusBadRequest
	}

	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
