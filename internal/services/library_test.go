package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"libraryplanner/internal/domain"
)

func TestLibraryService_CheckoutBook(t *testing.T) {
	book := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Status: domain.BookAvailable}

	tests := []struct {
		name       string
		bookRepo   *mockBookRepository
		borrowRepo *mockBorrowRepository
		bookID     string
		userID     string
		wantErr    error
	}{
		{
			name:       "success",
			bookRepo:   &mockBookRepository{books: map[string]*domain.Book{"b1": book}},
			borrowRepo: &mockBorrowRepository{},
			bookID:     "b1",
			userID:     "u1",
		},
		{
			name:       "book not found",
			bookRepo:   &mockBookRepository{},
			borrowRepo: &mockBorrowRepository{},
			bookID:     "missing",
			userID:     "u1",
			wantErr:    domain.ErrNotFound,
		},
		{
			name:     "already checked out",
			bookRepo: &mockBookRepository{books: map[string]*domain.Book{"b1": book}},
			borrowRepo: &mockBorrowRepository{
				openByBook: map[string]*domain.Borrow{"b1": {ID: "br1", BookID: "b1", BorrowedBy: "u2"}},
			},
			bookID:  "b1",
			userID:  "u1",
			wantErr: domain.ErrBookUnavailable,
		},
		{
			name:       "anonymous caller forbidden",
			bookRepo:   &mockBookRepository{books: map[string]*domain.Book{"b1": book}},
			borrowRepo: &mockBorrowRepository{},
			bookID:     "b1",
			userID:     "",
			wantErr:    domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewLibraryService(tt.bookRepo, tt.borrowRepo, &mockRoleRepository{}, time.Second)

			borrow, err := svc.CheckoutBook(context.Background(), tt.bookID, tt.userID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if borrow.BookID != tt.bookID || borrow.BorrowedBy != tt.userID {
				t.Fatalf("borrow does not reference book and user: %+v", borrow)
			}
			if borrow.ReturnedAt != nil {
				t.Fatalf("new borrow must be open, got returned_at %v", borrow.ReturnedAt)
			}
		})
	}
}

func TestLibraryService_CheckoutBook_SecondCheckoutFails(t *testing.T) {
	book := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert"}
	bookRepo := &mockBookRepository{books: map[string]*domain.Book{"b1": book}}
	borrowRepo := &mockBorrowRepository{}
	svc := NewLibraryService(bookRepo, borrowRepo, &mockRoleRepository{}, time.Second)

	if _, err := svc.CheckoutBook(context.Background(), "b1", "u1"); err != nil {
		t.Fatalf("first checkout failed: %v", err)
	}
	_, err := svc.CheckoutBook(context.Background(), "b1", "u2")
	if !errors.Is(err, domain.ErrBookUnavailable) {
		t.Fatalf("expected ErrBookUnavailable on second checkout, got %v", err)
	}
}

func TestLibraryService_ReturnBook(t *testing.T) {
	returnedAt := time.Now()

	tests := []struct {
		name    string
		borrow  *domain.Borrow
		roles   map[string]domain.Role
		bookID  string
		actorID string
		wantErr error
	}{
		{
			name:    "borrower returns their own borrow",
			borrow:  &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1"},
			bookID:  "b1",
			actorID: "u1",
		},
		{
			name:    "librarian returns someone else's borrow",
			borrow:  &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1"},
			roles:   map[string]domain.Role{"staff": domain.RoleLibrarian},
			bookID:  "b1",
			actorID: "staff",
		},
		{
			name:    "admin returns someone else's borrow",
			borrow:  &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1"},
			roles:   map[string]domain.Role{"root": domain.RoleAdmin},
			bookID:  "b1",
			actorID: "root",
		},
		{
			name:    "unrelated member forbidden",
			borrow:  &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1"},
			bookID:  "b1",
			actorID: "u2",
			wantErr: domain.ErrForbidden,
		},
		{
			name:    "borrow belongs to a different book",
			borrow:  &domain.Borrow{ID: "br1", BookID: "other", BorrowedBy: "u1"},
			bookID:  "b1",
			actorID: "u1",
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "already closed",
			borrow:  &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1", ReturnedAt: &returnedAt},
			bookID:  "b1",
			actorID: "u1",
			wantErr: domain.ErrBorrowClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			borrowRepo := &mockBorrowRepository{
				borrows: map[string]*domain.Borrow{tt.borrow.ID: tt.borrow},
			}
			svc := NewLibraryService(&mockBookRepository{}, borrowRepo, &mockRoleRepository{roles: tt.roles}, time.Second)

			err := svc.ReturnBook(context.Background(), tt.bookID, tt.borrow.ID, tt.actorID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.borrow.ReturnedAt == nil {
				t.Fatal("borrow still open after return")
			}
		})
	}
}

func TestLibraryService_ReturnBook_MissingBorrow(t *testing.T) {
	svc := NewLibraryService(&mockBookRepository{}, &mockBorrowRepository{}, &mockRoleRepository{}, time.Second)
	err := svc.ReturnBook(context.Background(), "b1", "missing", "u1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLibraryService_GetOpenBorrow(t *testing.T) {
	open := &domain.Borrow{ID: "br1", BookID: "b1", BorrowedBy: "u1"}
	borrowRepo := &mockBorrowRepository{openByBook: map[string]*domain.Borrow{"b1": open}}
	svc := NewLibraryService(&mockBookRepository{}, borrowRepo, &mockRoleRepository{}, time.Second)

	got, err := svc.GetOpenBorrow(context.Background(), "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "br1" {
		t.Fatalf("expected borrow br1, got %s", got.ID)
	}

	if _, err := svc.GetOpenBorrow(context.Background(), "b2"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for available book, got %v", err)
	}
}
