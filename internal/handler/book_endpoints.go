package handler

import (
	"net/http"
	"strconv"

	"mylibrary-server/internal/models"
	"mylibrary-server/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// list returns the acting user's books, filtered and paginated.
// Query parameters: search, status, genre, page, limit.
func (h *BookHandler) list(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}

	params := service.ListParams{
		Search: c.Query("search"),
		Status: c.Query("status"),
		Genre:  c.Query("genre"),
		Page:   parseIntQuery(c, "page"),
		Limit:  parseIntQuery(c, "limit"),
	}

	result, err := h.bookService.List(c.Request.Context(), identity.ID, params)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(result))
}

// get returns a single book owned by the acting user.
func (h *BookHandler) get(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	book, err := h.bookService.Get(c.Request.Context(), identity.ID, bookID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(book))
}

// create adds a book to the acting user's library.
func (h *BookHandler) create(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}

	var input service.CreateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Invalid request body"))
		return
	}

	book, err := h.bookService.Create(c.Request.Context(), identity.ID, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	bookWritesTotal.WithLabelValues("create").Inc()

	c.JSON(http.StatusCreated, models.OKWithMessage("Book added successfully", book))
}

// update applies a partial update to one of the acting user's books.
func (h *BookHandler) update(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	var input service.UpdateBookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.Fail("Invalid request body"))
		return
	}

	book, err := h.bookService.Update(c.Request.Context(), identity.ID, bookID, input)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	bookWritesTotal.WithLabelValues("update").Inc()

	c.JSON(http.StatusOK, models.OKWithMessage("Book updated successfully", book))
}

// delete permanently removes one of the acting user's books.
func (h *BookHandler) delete(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}
	bookID, ok := parseBookID(c)
	if !ok {
		return
	}

	if err := h.bookService.Delete(c.Request.Context(), identity.ID, bookID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	bookWritesTotal.WithLabelValues("delete").Inc()

	c.JSON(http.StatusOK, models.APIResponse{Success: true, Message: "Book deleted successfully"})
}

// stats returns the acting user's aggregate counts.
func (h *BookHandler) stats(c *gin.Context) {
	identity, ok := getIdentityFromContext(c)
	if !ok {
		return
	}

	stats, err := h.bookService.Stats(c.Request.Context(), identity.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK(stats))
}

// parseBookID reads the path parameter. An unparseable id gets the same 404
// as a missing row so malformed probes learn nothing.
func parseBookID(c *gin.Context) (uuid.UUID, bool) {
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, models.Fail("Book not found"))
		return uuid.Nil, false
	}
	return bookID, true
}

// parseIntQuery coerces a numeric query parameter; absent or malformed
// values fall back to zero, which the service replaces with its defaults.
func parseIntQuery(c *gin.Context, name string) int {
	v := c.Query(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
