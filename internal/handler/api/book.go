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

type BookHandler struct {
	cmds commands.BookCommands
	q    queries.BookQueries
}

func NewBookHandler(cmds commands.BookCommands, q queries.BookQueries) *BookHandler {
	return &BookHandler{cmds: cmds, q: q}
}

func (h *BookHandler) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/books", Handler: h.List},
		{Method: http.MethodGet, Path: "/books/:id", Handler: h.Get},
		{Method: http.MethodPost, Path: "/books", Handler: h.Create},
		{Method: http.MethodPut, Path: "/books/:id", Handler: h.Update},
	}
}

// @Summary Get book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} resdto.BookResponse
// @Failure 404 {object} httperr.Response
// @Router /books/{id} [get]
func (h *BookHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), id)
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookView(view))
}

// @Summary List books
// @Tags books
// @Produce json
// @Success 200 {array} resdto.BookResponse
// @Router /books [get]
func (h *BookHandler) List(c *gin.Context) {
	views, err := h.q.List(c.Request.Context())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookViews(views))
}

// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Param request body reqdto.BookRequest true "Book"
// @Success 201 {object} resdto.BookResponse
// @Failure 400 {object} httperr.Response
// @Router /books [post]
func (h *BookHandler) Create(c *gin.Context) {
	var req reqdto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	b, err := h.cmds.CreateBook(c.Request.Context(), req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.Header("Location", "/books/"+strconv.FormatInt(b.ID(), 10))
	c.JSON(http.StatusCreated, resdto.FromBook(b))
}

// @Summary Update book
// @Description Persist title and price, then publish BookPriceUpdated
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param request body reqdto.BookRequest true "Book"
// @Success 200 {object} resdto.BookResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 503 {object} httperr.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req reqdto.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	b, err := h.cmds.UpdateBook(c.Request.Context(), id, req.ToInput())
	if err != nil {
		httperr.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBook(b))
}
