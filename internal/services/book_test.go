package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"libraryplanner/internal/domain"
)

func TestBookService_CreateBook_RoleGating(t *testing.T) {
	tests := []struct {
		name    string
		actorID string
		roles   map[string]domain.Role
		wantErr error
	}{
		{name: "librarian may create", actorID: "staff", roles: map[string]domain.Role{"staff": domain.RoleLibrarian}},
		{name: "admin may create", actorID: "root", roles: map[string]domain.Role{"root": domain.RoleAdmin}},
		{name: "member forbidden", actorID: "u1", wantErr: domain.ErrForbidden},
		{name: "anonymous forbidden", actorID: "", roles: map[string]domain.Role{"": domain.RoleAdmin}, wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bookRepo := &mockBookRepository{}
			svc := NewBookService(bookRepo, &mockBorrowRepository{}, &mockRoleRepository{roles: tt.roles}, time.Second)

			book := &domain.Book{Title: "Dune", Author: "Frank Herbert"}
			err := svc.CreateBook(context.Background(), tt.actorID, book)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if book.Status != domain.BookAvailable {
				t.Fatalf("new book must start available, got %q", book.Status)
			}
		})
	}
}

func TestBookService_CreateBook_Validation(t *testing.T) {
	roles := map[string]domain.Role{"staff": domain.RoleLibrarian}
	svc := NewBookService(&mockBookRepository{}, &mockBorrowRepository{}, &mockRoleRepository{roles: roles}, time.Second)

	tests := []struct {
		name string
		book *domain.Book
	}{
		{"missing title", &domain.Book{Author: "Frank Herbert"}},
		{"missing author", &domain.Book{Title: "Dune"}},
		{"whitespace title", &domain.Book{Title: "   ", Author: "Frank Herbert"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.CreateBook(context.Background(), "staff", tt.book); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestBookService_GetBook(t *testing.T) {
	book := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.BookBorrowed}
	open := &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1"}
	bookRepo := &mockBookRepository{books: map[string]*domain.Book{"b1": book}}
	borrowRepo := &mockBorrowRepository{openByBook: map[string]*domain.Borrow{"b1": open}}
	svc := NewBookService(bookRepo, borrowRepo, &mockRoleRepository{}, time.Second)

	got, err := svc.GetBook(context.Background(), "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Book.ID != "b1" {
		t.Fatalf("expected book b1, got %s", got.Book.ID)
	}
	if got.OpenBorrow == nil || got.OpenBorrow.ID != "br1" {
		t.Fatalf("expected open borrow br1, got %+v", got.OpenBorrow)
	}

	if _, err := svc.GetBook(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookService_GetBook_NoOpenBorrow(t *testing.T) {
	book := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert"}
	bookRepo := &mockBookRepository{books: map[string]*domain.Book{"b1": book}}
	svc := NewBookService(bookRepo, &mockBorrowRepository{}, &mockRoleRepository{}, time.Second)

	got, err := svc.GetBook(context.Background(), "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.OpenBorrow != nil {
		t.Fatalf("expected nil open borrow, got %+v", got.OpenBorrow)
	}
}

func TestBookService_ListBooks_EmptyIsNotNil(t *testing.T) {
	svc := NewBookService(&mockBookRepository{}, &mockBorrowRepository{}, &mockRoleRepository{}, time.Second)

	books, err := svc.ListBooks(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if books == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(books) != 0 {
		t.Fatalf("expected no books, got %d", len(books))
	}
}

func TestBookService_UpdateBook(t *testing.T) {
	roles := map[string]domain.Role{"staff": domain.RoleLibrarian}
	newTitle := "Dune Messiah"
	blank := " "

	tests := []struct {
		name    string
		actorID string
		id      string
		upd     domain.BookUpdate
		wantErr error
	}{
		{name: "librarian renames", actorID: "staff", id: "b1", upd: domain.BookUpdate{Title: &newTitle}},
		{name: "member forbidden", actorID: "u1", id: "b1", upd: domain.BookUpdate{Title: &newTitle}, wantErr: domain.ErrForbidden},
		{name: "blank title invalid", actorID: "staff", id: "b1", upd: domain.BookUpdate{Title: &blank}, wantErr: domain.ErrInvalidInput},
		{name: "missing book", actorID: "staff", id: "nope", upd: domain.BookUpdate{Title: &newTitle}, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			book := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert"}
			bookRepo := &mockBookRepository{books: map[string]*domain.Book{"b1": book}}
			svc := NewBookService(bookRepo, &mockBorrowRepository{}, &mockRoleRepository{roles: roles}, time.Second)

			got, err := svc.UpdateBook(context.Background(), tt.actorID, tt.id, tt.upd)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Title != newTitle {
				t.Fatalf("title not updated: %q", got.Title)
			}
		})
	}
}

func TestBookService_DeleteBook(t *testing.T) {
	roles := map[string]domain.Role{"staff": domain.RoleLibrarian}
	book := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert"}
	bookRepo := &mockBookRepository{books: map[string]*domain.Book{"b1": book}}
	svc := NewBookService(bookRepo, &mockBorrowRepository{}, &mockRoleRepository{roles: roles}, time.Second)

	if err := svc.DeleteBook(context.Background(), "u1", "b1"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for member, got %v", err)
	}
	if err := svc.DeleteBook(context.Background(), "staff", "b1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.DeleteBook(context.Background(), "staff", "b1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
