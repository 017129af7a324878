package api

import (
	"net/http"

	resdto "bookstore-choreography/internal/handler/dto/response"
	"bookstore-choreography/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type FaultHandler struct {
	q queries.FaultQueries
}

func NewFaultHandler(q queries.FaultQueries) *FaultHandler {
	return &FaultHandler{q: q}
}

func (h *FaultHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/faults", Handler: h.List}}
}

// @Summary Recent faults
// @Description Messages that exhausted their redeliveries, newest first
// @Tags faults
// @Produce json
// @Success 200 {array} resdto.FaultResponse
// @Router /faults [get]
func (h *FaultHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, resdto.FromFaultViews(h.q.Recent(c.Request.Context())))
}
