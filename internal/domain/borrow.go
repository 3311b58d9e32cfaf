package domain

import (
	"context"
	"time"
)

// Borrow represents a loan of a book. A borrow with ReturnedAt == nil is
// open; the store guarantees at most one open borrow per book.
// swagger:model Borrow
type Borrow struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	BorrowedBy string     `json:"borrowed_by"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
}

// BorrowRepository defines the interface for borrow storage. Checkout and
// Return each apply the borrow write and the cached book status update in a
// single transaction, so the status never disagrees with open-borrow
// existence after a committed call.
type BorrowRepository interface {
	// Checkout creates an open borrow and marks the book borrowed. Returns
	// ErrBookUnavailable when an open borrow already exists (concurrent
	// checkouts serialize on the store's uniqueness constraint).
	Checkout(ctx context.Context, bookID, userID string, now time.Time) (*Borrow, error)
	// Return closes the open borrow and marks the book available. Returns
	// ErrBorrowClosed when the borrow is not open.
	Return(ctx context.Context, borrowID, bookID string, now time.Time) error
	GetByID(ctx context.Context, id string) (*Borrow, error)
	GetOpenByBookID(ctx context.Context, bookID string) (*Borrow, error)
}

// LibraryService defines the borrow lifecycle operations.
type LibraryService interface {
	CheckoutBook(ctx context.Context, bookID, userID string) (*Borrow, error)
	ReturnBook(ctx context.Context, bookID, borrowID, actorID string) error
	GetOpenBorrow(ctx context.Context, bookID string) (*Borrow, error)
}
