package httpgin

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kirinyoku/dakshina/internal/domain"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindForbidden:       http.StatusForbidden,
	domain.KindStateConflict:   http.StatusBadRequest,
	domain.KindExternalFailure: http.StatusBadGateway,
	domain.KindRateLimited:     http.StatusTooManyRequests,
}

// respondErr writes the error body for err. Unknown errors are recorded on
// the context for the access log and reported as a bare 500.
func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	if de, ok := domain.AsError(err); ok {
		status, known := kindStatus[de.Kind]
		if known {
			if de.Kind == domain.KindRateLimited {
				c.Header("Retry-After", "60")
			}
			if status >= http.StatusInternalServerError {
				_ = c.Error(err)
			}
			c.JSON(status, errorBody(c, de.Code, de.Msg))
			return
		}
	}

	if errors.Is(err, context.Canceled) {
		c.Status(499)
		return
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, errorBody(c, "INTERNAL", "internal error"))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorBody(c, domain.ErrValidation.Code, msg))
}

func abortJSON(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, errorBody(c, code, msg))
}

func errorBody(c *gin.Context, code, msg string) ErrorResponse {
	return ErrorResponse{Error: msg, Code: code, RequestID: c.GetString("request_id")}
}
