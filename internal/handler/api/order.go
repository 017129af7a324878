package api

import (
	"net/http"
	"strconv"

	reqdto "bookstore-choreography/internal/handler/dto/request"
	resdto "bookstore-choreography/internal/handler/dto/response"
	"bookstore-choreography/internal/handler/httperr"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	cmds commands.OrderCommands
	q    queries.OrderQueries
}

func NewOrderHandler(cmds commands.OrderCommands, q queries.OrderQueries) *OrderHandler {
	return &OrderHandler{cmds: cmds, q: q}
}

func (h *OrderHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/orders", Handler: h.Create},
		{Method: http.MethodGet, Path: "/orders", Handler: h.List},
		{Method: http.MethodGet, Path: "/orders/:id", Handler: h.Get},
	}
}

// @Summary Place order
// @Description Snapshot the book price, persist a Pending order and schedule its payment
// @Tags orders
// @Accept json
// @Produce json
// @Param request body reqdto.CreateOrderRequest true "Order request"
// @Success 202 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req reqdto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	o, err := h.cmds.CreateOrder(c.Request.Context(), req.ToCommand())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/orders/"+strconv.FormatInt(o.ID(), 10))
	c.JSON(http.StatusAccepted, resdto.FromOrder(o))
}

// @Summary Get order
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} resdto.OrderResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderView(view))
}

// @Summary List orders
// @Tags orders
// @Produce json
// @Success 200 {array} resdto.OrderResponse
// @Router /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	views, err := h.q.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromOrderViews(views))
}
