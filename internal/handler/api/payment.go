package api

import (
	"net/http"

	reqdto "bookstore-choreography/internal/handler/dto/request"
	resdto "bookstore-choreography/internal/handler/dto/response"
	"bookstore-choreography/internal/handler/httperr"
	"bookstore-choreography/internal/handler/middleware"
	"bookstore-choreography/internal/pkg/errs"
	"bookstore-choreography/internal/usecase/commands"
	"bookstore-choreography/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

var errNonPositiveAmount = errs.Mark(errs.New("amount must be positive"), errs.ErrInvalidInput)

type PaymentHandler struct {
	cmds commands.PaymentCommands
	q    queries.PaymentQueries
}

func NewPaymentHandler(cmds commands.PaymentCommands, q queries.PaymentQueries) *PaymentHandler {
	return &PaymentHandler{cmds: cmds, q: q}
}

func (h *PaymentHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/payments", Handler: h.Process},
		{Method: http.MethodGet, Path: "/payments", Handler: h.List},
	}
}

// @Summary Process payment
// @Description Verify the amount against the catalog, record the payment and announce completion
// @Tags payments
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Repeated keys are accepted without reprocessing"
// @Param request body reqdto.ProcessPaymentRequest true "Payment request"
// @Success 202 {object} resdto.PaymentAcceptedResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /payments [post]
func (h *PaymentHandler) Process(c *gin.Context) {
	var req reqdto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	if !req.Amount.IsPositive() {
		httperr.AbortWithError(c, http.StatusBadRequest, errNonPositiveAmount, "Invalid request", nil)
		return
	}

	key := c.GetHeader(middleware.HeaderIdempotencyKey)
	res, err := h.cmds.ProcessPayment(c.Request.Context(), req.ToCommand(key))
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusAccepted, resdto.PaymentAcceptedResponse{
		Status:    "accepted",
		PaymentID: res.PaymentID,
		Duplicate: res.Duplicate,
	})
}

// @Summary List payments
// @Tags payments
// @Produce json
// @Success 200 {array} resdto.PaymentResponse
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	views, err := h.q.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPaymentViews(views))
}
