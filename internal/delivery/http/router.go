package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"libraryplanner/internal/delivery/http/controllers"
	"libraryplanner/internal/delivery/http/middleware"
	"libraryplanner/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	logger *slog.Logger,
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	bookController *controllers.BookController,
	eventController *controllers.EventController,
	invitationController *controllers.InvitationController,
	aiController *controllers.AIController,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /me", auth(authController.Me))

	// Books
	mux.HandleFunc("POST /books", auth(bookController.CreateBook))
	mux.HandleFunc("GET /books", auth(bookController.ListBooks))
	mux.HandleFunc("GET /books/{bookID}", auth(bookController.GetBook))
	mux.HandleFunc("PATCH /books/{bookID}", auth(bookController.UpdateBook))
	mux.HandleFunc("DELETE /books/{bookID}", auth(bookController.DeleteBook))

	// Borrow lifecycle
	mux.HandleFunc("POST /books/{bookID}/checkout", auth(bookController.CheckoutBook))
	mux.HandleFunc("POST /books/{bookID}/return", auth(bookController.ReturnBook))
	mux.HandleFunc("GET /books/{bookID}/borrow", auth(bookController.GetOpenBorrow))

	// Events
	mux.HandleFunc("POST /events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /events", auth(eventController.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(eventController.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(eventController.DeleteEvent))

	// Invitations
	mux.HandleFunc("POST /events/{eventID}/invitations", auth(eventController.Invite))
	mux.HandleFunc("GET /events/{eventID}/invitations", auth(eventController.ListInvitations))
	mux.HandleFunc("GET /invites/{token}", auth(invitationController.GetByToken))
	mux.HandleFunc("POST /invitations/{invitationID}/respond", auth(invitationController.Respond))

	// AI
	mux.HandleFunc("POST /ai/extract-event", auth(aiController.ExtractEvent))
	mux.HandleFunc("POST /ai/book-metadata", auth(aiController.BookMetadata))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
