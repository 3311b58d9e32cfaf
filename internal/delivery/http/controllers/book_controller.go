package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"libraryplanner/internal/delivery/http/helpers"
	"libraryplanner/internal/delivery/http/middleware"
	"libraryplanner/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type BookController struct {
	Logger  *slog.Logger
	Books   domain.BookService
	Library domain.LibraryService
}

func NewBookController(logger *slog.Logger, books domain.BookService, library domain.LibraryService) *BookController {
	return &BookController{
		Logger:  logger,
		Books:   books,
		Library: library,
	}
}

// CreateBookRequest is the request body for POST /books.
type CreateBookRequest struct {
	Title   string   `json:"title"`
	Author  string   `json:"author"`
	ISBN    *string  `json:"isbn"`
	Tags    []string `json:"tags"`
	Summary *string  `json:"summary"`
}

// Validate implements helpers.Validator.
func (b CreateBookRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(b.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(b.Author) == "" {
		errs = append(errs, "author is required")
	}
	return errs
}

// UpdateBookRequest is the request body for PATCH /books/{bookID}.
// All fields are optional; absent fields are left unchanged. Status is not
// accepted: it only changes through checkout and return.
type UpdateBookRequest struct {
	Title   *string  `json:"title"`
	Author  *string  `json:"author"`
	ISBN    *string  `json:"isbn"`
	Tags    []string `json:"tags"`
	Summary *string  `json:"summary"`
}

// Validate implements helpers.Validator.
func (b UpdateBookRequest) Validate() []string {
	var errs []string
	if b.Title != nil && strings.TrimSpace(*b.Title) == "" {
		errs = append(errs, "title must not be empty")
	}
	if b.Author != nil && strings.TrimSpace(*b.Author) == "" {
		errs = append(errs, "author must not be empty")
	}
	return errs
}

// ReturnBookRequest is the request body for POST /books/{bookID}/return.
type ReturnBookRequest struct {
	BorrowID string `json:"borrow_id"`
}

// Validate implements helpers.Validator.
func (b ReturnBookRequest) Validate() []string {
	if strings.TrimSpace(b.BorrowID) == "" {
		return []string{"borrow_id is required"}
	}
	if !uuidRegex.MatchString(strings.TrimSpace(b.BorrowID)) {
		return []string{"invalid borrow_id"}
	}
	return nil
}

// bookIDFromPath extracts and validates the bookID path value. Writes a 400
// and returns false on failure.
func bookIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	bookID := r.PathValue("bookID")
	if bookID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing bookID")
		return "", false
	}
	if !uuidRegex.MatchString(bookID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid bookID")
		return "", false
	}
	return bookID, true
}

// CreateBook godoc
// @Summary Add a book to the catalog
// @Description Create a new book. Requires the librarian or admin role. Status starts as "available".
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateBookRequest true "Book data"
// @Success 201 {object} helpers.APIResponse "data contains the created book"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books [post]
func (c *BookController) CreateBook(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateBookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	book := &domain.Book{
		Title:   strings.TrimSpace(req.Title),
		Author:  strings.TrimSpace(req.Author),
		ISBN:    req.ISBN,
		Tags:    req.Tags,
		Summary: req.Summary,
		Status:  domain.BookAvailable,
	}
	if err := c.Books.CreateBook(r.Context(), userID, book); err != nil {
		c.writeServiceError(w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, book)
}

// ListBooks godoc
// @Summary List books
// @Description List catalog books, newest first. Optional search narrows by case-insensitive substring match on title or author.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param search query string false "Substring to match against title or author"
// @Success 200 {object} helpers.APIResponse "data contains the book list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books [get]
func (c *BookController) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := c.Books.ListBooks(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	if err != nil {
		c.writeServiceError(w, r, err, "")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, books)
}

// GetBook godoc
// @Summary Get a book
// @Description Returns the book and its open borrow, if one exists.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains book and open_borrow"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books/{bookID} [get]
func (c *BookController) GetBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	result, err := c.Books.GetBook(r.Context(), bookID)
	if err != nil {
		c.writeServiceError(w, r, err, "book not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// UpdateBook godoc
// @Summary Update a book
// @Description Partially update a book's title, author, isbn, tags, or summary. Requires the librarian or admin role. Status cannot be set here.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID (UUID)"
// @Param body body UpdateBookRequest true "Fields to update"
// @Success 200 {object} helpers.APIResponse "data contains the updated book"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books/{bookID} [patch]
func (c *BookController) UpdateBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req UpdateBookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	book, err := c.Books.UpdateBook(r.Context(), userID, bookID, domain.BookUpdate{
		Title:   req.Title,
		Author:  req.Author,
		ISBN:    req.ISBN,
		Tags:    req.Tags,
		Summary: req.Summary,
	})
	if err != nil {
		c.writeServiceError(w, r, err, "book not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, book)
}

// DeleteBook godoc
// @Summary Delete a book
// @Description Delete a book and its borrow history. Requires the librarian or admin role.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID (UUID)"
// @Success 204 "No content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books/{bookID} [delete]
func (c *BookController) DeleteBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Books.DeleteBook(r.Context(), userID, bookID); err != nil {
		c.writeServiceError(w, r, err, "book not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckoutBook godoc
// @Summary Check out a book
// @Description Opens a borrow for the authenticated user and marks the book borrowed, in one transaction. Fails with 409 when the book already has an open borrow.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains the new borrow"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books/{bookID}/checkout [post]
func (c *BookController) CheckoutBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	borrow, err := c.Library.CheckoutBook(r.Context(), bookID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrBookUnavailable) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "book is already checked out")
			return
		}
		c.writeServiceError(w, r, err, "book not found")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, borrow)
}

// ReturnBook godoc
// @Summary Return a book
// @Description Closes the given borrow and marks the book available, in one transaction. The borrower, a librarian, or an admin may return; returning an already-closed borrow fails with 409.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID (UUID)"
// @Param body body ReturnBookRequest true "Borrow to close"
// @Success 204 "No content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books/{bookID}/return [post]
func (c *BookController) ReturnBook(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req ReturnBookRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Library.ReturnBook(r.Context(), bookID, strings.TrimSpace(req.BorrowID), userID); err != nil {
		if errors.Is(err, domain.ErrBorrowClosed) {
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "borrow is already closed")
			return
		}
		c.writeServiceError(w, r, err, "borrow not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetOpenBorrow godoc
// @Summary Get a book's open borrow
// @Description Returns the current open borrow for the book, or 404 when the book is available.
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param bookID path string true "Book ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the open borrow"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /books/{bookID}/borrow [get]
func (c *BookController) GetOpenBorrow(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFromPath(w, r)
	if !ok {
		return
	}
	borrow, err := c.Library.GetOpenBorrow(r.Context(), bookID)
	if err != nil {
		c.writeServiceError(w, r, err, "no open borrow for this book")
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, borrow)
}

// writeServiceError maps sentinel errors to HTTP responses and logs anything unexpected.
func (c *BookController) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if notFoundMsg == "" {
			notFoundMsg = "not found"
		}
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, notFoundMsg)
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "insufficient permissions")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
