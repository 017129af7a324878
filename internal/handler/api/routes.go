package api

import (
	"net/http"
	"strconv"

	"bookstore-choreography/internal/handler/httperr"
	"bookstore-choreography/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// RouteProvider is implemented by every handler a service mounts.
type RouteProvider interface {
	Routes() []Route
}

var errInvalidID = errs.Mark(errs.New("id must be a positive integer"), errs.ErrInvalidInput)

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		httperr.AbortWithError(c, http.StatusBadRequest, errInvalidID, "Invalid id", nil)
		return 0, false
	}
	return id, true
}
