package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auvlab.xyz/triton-com-server/pkg/auv"
	"auvlab.xyz/triton-com-server/pkg/common"
)

func statusForKind(kind auv.ErrorKind) int {
	switch kind {
	case auv.KindInvalidPayload:
		return http.StatusBadRequest
	case auv.KindUnknownDevice, auv.KindUnknownCommand:
		return http.StatusNotFound
	case auv.KindConflict, auv.KindBadState, auv.KindPlanMismatch, auv.KindStale:
		return http.StatusConflict
	case auv.KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError maps a service error to the wire error envelope. No stack
// traces leave the process; 5xx responses are logged with the correlation
// id so the operator can grep them back.
func (rs *RestfulServer) writeError(c *gin.Context, err error) {
	kind := auv.KindOf(err)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		kind = auv.KindUnavailable
	}

	message := err.Error()
	var de *auv.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}

	status := statusForKind(kind)
	if status >= http.StatusInternalServerError {
		message = "database unavailable"
		common.GetLoggerWith(common.LoggerNameRestfulServer).Error("Request failed",
			zap.String("request_id", requestID(c)),
			zap.Error(err))
	}

	c.JSON(status, gin.H{"error": gin.H{"kind": kind, "message": message}})
}

func (rs *RestfulServer) writeInvalid(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"kind": auv.KindInvalidPayload, "message": message},
	})
}
