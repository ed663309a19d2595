package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourname/sleepdiary/internal"
	"github.com/yourname/sleepdiary/internal/response"
	"github.com/yourname/sleepdiary/internal/service"
)

// HandleError maps a service error to its status and body. Anything
// unrecognized is logged and answered with a generic 500.
func HandleError(c *gin.Context, logger internal.Logger, err error) {
	requestID := c.GetString("request_id")

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Infof("[request_id=%s] validation failed: %v", requestID, err)
		c.JSON(http.StatusBadRequest, response.Fields(verr.Fields))
	case errors.Is(err, service.ErrMalformedJSON):
		logger.Infof("[request_id=%s] malformed body", requestID)
		c.JSON(http.StatusBadRequest, response.BadRequest(response.MsgJSONRequired))
	case errors.Is(err, service.ErrUserNotFound):
		c.JSON(http.StatusNotFound, response.NotFound(response.MsgUserNotFound))
	case errors.Is(err, service.ErrDiaryNotFound):
		c.JSON(http.StatusNotFound, response.NotFound(response.MsgDiaryNotFound))
	case errors.Is(err, service.ErrConcurrencyConflict):
		logger.Warnf("[request_id=%s] update lost a race: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, response.InternalError())
	default:
		logger.Errorf("[request_id=%s] unhandled error: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, response.InternalError())
	}
}

func HandleSuccess(c *gin.Context, logger internal.Logger, status int, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] success %d", requestID, status)
	if data == nil {
		c.Status(status)
		return
	}
	c.JSON(status, data)
}
