package domain

import (
	"context"
	"time"
)

// BookStatus is the lifecycle state of a book. It is a cache of the
// open-borrow existence and is only written by the borrow lifecycle
// operations, never set directly.
type BookStatus string

const (
	BookAvailable BookStatus = "available"
	BookBorrowed  BookStatus = "borrowed"
)

// Book represents a catalog entry.
// swagger:model Book
type Book struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	ISBN      *string    `json:"isbn"`
	Tags      []string   `json:"tags"`
	Summary   *string    `json:"summary"`
	Status    BookStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewBook returns a new Book with the given fields. ID is typically set by the repository on create.
func NewBook(title, author string, isbn *string, tags []string, summary *string, createdAt, updatedAt time.Time) *Book {
	return &Book{
		Title:     title,
		Author:    author,
		ISBN:      isbn,
		Tags:      tags,
		Summary:   summary,
		Status:    BookAvailable,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// BookUpdate holds the optional fields for a partial book update.
// Nil means "leave unchanged". Status is deliberately absent.
type BookUpdate struct {
	Title   *string
	Author  *string
	ISBN    *string
	Tags    []string
	Summary *string
}

// BookRepository defines the interface for book storage.
type BookRepository interface {
	Create(ctx context.Context, book *Book) error
	GetByID(ctx context.Context, id string) (*Book, error)
	// List returns books newest first; a non-empty search narrows by
	// case-insensitive substring match on title or author.
	List(ctx context.Context, search string) ([]*Book, error)
	Update(ctx context.Context, id string, upd BookUpdate) (*Book, error)
	Delete(ctx context.Context, id string) error
}

// BookWithBorrow bundles a book with its open borrow, if any.
type BookWithBorrow struct {
	Book       *Book   `json:"book"`
	OpenBorrow *Borrow `json:"open_borrow"`
}

// BookService defines catalog CRUD. Mutations require a role that may
// manage books (librarian or admin).
type BookService interface {
	CreateBook(ctx context.Context, actorID string, book *Book) error
	GetBook(ctx context.Context, id string) (*BookWithBorrow, error)
	ListBooks(ctx context.Context, search string) ([]*Book, error)
	UpdateBook(ctx context.Context, actorID, id string, upd BookUpdate) (*Book, error)
	DeleteBook(ctx context.Context, actorID, id string) error
}
