// Package response writes plain-text outcomes at the HTTP boundary.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seoul-transit/service-route-search/internal/domain/route"
)

// StatusFor maps a search error kind onto an HTTP status code.
func StatusFor(kind route.ErrorKind) int {
	switch kind {
	case route.KindInputValidation:
		return http.StatusBadRequest
	case route.KindResolution, route.KindNoRouteFound:
		return http.StatusNotFound
	case route.KindProvider:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Text writes msg as a plain-text body.
func Text(c *gin.Context, status int, msg string) {
	c.String(status, msg)
}

// Error renders err for the end user. Only the display message is written;
// unexpected errors always get the generic message.
func Error(c *gin.Context, err error) {
	se := route.AsSearchError(err)
	msg := se.Message
	if se.Kind == route.KindUnexpected {
		msg = route.MsgUnexpected
	}
	_ = c.Error(err)
	Text(c, StatusFor(se.Kind), msg)
}

// InternalError aborts the request with the generic failure message.
func InternalError(c *gin.Context) {
	c.Abort()
	Text(c, http.StatusInternalServerError, route.MsgUnexpected)
}
