package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"libraryplanner/internal/domain"
)

type libraryService struct {
	bookRepo       domain.BookRepository
	borrowRepo     domain.BorrowRepository
	roleRepo       domain.RoleRepository
	contextTimeout time.Duration
}

// NewLibraryService creates a LibraryService with the given repositories.
func NewLibraryService(bookRepo domain.BookRepository, borrowRepo domain.BorrowRepository, roleRepo domain.RoleRepository, timeout time.Duration) domain.LibraryService {
	return &libraryService{
		bookRepo:       bookRepo,
		borrowRepo:     borrowRepo,
		roleRepo:       roleRepo,
		contextTimeout: timeout,
	}
}

func (s *libraryService) CheckoutBook(ctx context.Context, bookID, userID string) (*domain.Borrow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if userID == "" {
		return nil, domain.ErrForbidden
	}
	if _, err := s.bookRepo.GetByID(ctx, bookID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	// The repository applies both effects (borrow row + cached status) in
	// one transaction; a losing concurrent checkout surfaces as
	// ErrBookUnavailable from the one-open-borrow constraint.
	borrow, err := s.borrowRepo.Checkout(ctx, bookID, userID, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrBookUnavailable) {
			return nil, domain.ErrBookUnavailable
		}
		return nil, fmt.Errorf("checkout book: %w", err)
	}
	return borrow, nil
}

func (s *libraryService) ReturnBook(ctx context.Context, bookID, borrowID, actorID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	borrow, err := s.borrowRepo.GetByID(ctx, borrowID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get borrow: %w", err)
	}
	if borrow.BookID != bookID {
		return domain.ErrNotFound
	}

	role, err := s.roleRepo.Get(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load role: %w", err)
	}
	if !domain.CanActOnBorrow(borrow.BorrowedBy, actorID, role) {
		return domain.ErrForbidden
	}

	if err := s.borrowRepo.Return(ctx, borrowID, bookID, time.Now()); err != nil {
		if errors.Is(err, domain.ErrBorrowClosed) {
			return domain.ErrBorrowClosed
		}
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("return book: %w", err)
	}
	return nil
}

func (s *libraryService) GetOpenBorrow(ctx context.Context, bookID string) (*domain.Borrow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	borrow, err := s.borrowRepo.GetOpenByBookID(ctx, bookID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get open borrow: %w", err)
	}
	return borrow, nil
}
