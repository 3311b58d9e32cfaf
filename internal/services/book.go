package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"libraryplanner/internal/domain"
)

type bookService struct {
	bookRepo       domain.BookRepository
	borrowRepo     domain.BorrowRepository
	roleRepo       domain.RoleRepository
	contextTimeout time.Duration
}

// NewBookService creates a BookService with the given repositories.
func NewBookService(bookRepo domain.BookRepository, borrowRepo domain.BorrowRepository, roleRepo domain.RoleRepository, timeout time.Duration) domain.BookService {
	return &bookService{
		bookRepo:       bookRepo,
		borrowRepo:     borrowRepo,
		roleRepo:       roleRepo,
		contextTimeout: timeout,
	}
}

// requireBookManager resolves the actor's role and fails closed unless the
// role may manage books.
func (s *bookService) requireBookManager(ctx context.Context, actorID string) error {
	if actorID == "" {
		return domain.ErrForbidden
	}
	role, err := s.roleRepo.Get(ctx, actorID)
	if err != nil {
		return fmt.Errorf("load role: %w", err)
	}
	if !domain.CanManageBooks(role) {
		return domain.ErrForbidden
	}
	return nil
}

func (s *bookService) CreateBook(ctx context.Context, actorID string, book *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireBookManager(ctx, actorID); err != nil {
		return err
	}

	book.Title = strings.TrimSpace(book.Title)
	book.Author = strings.TrimSpace(book.Author)
	if book.Title == "" || book.Author == "" {
		return domain.ErrInvalidInput
	}

	book.Status = domain.BookAvailable
	book.CreatedAt = time.Now()
	book.UpdatedAt = book.CreatedAt

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	return nil
}

func (s *bookService) GetBook(ctx context.Context, id string) (*domain.BookWithBorrow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	book, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	open, err := s.borrowRepo.GetOpenByBookID(ctx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get open borrow: %w", err)
	}
	return &domain.BookWithBorrow{Book: book, OpenBorrow: open}, nil
}

func (s *bookService) ListBooks(ctx context.Context, search string) ([]*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	books, err := s.bookRepo.List(ctx, strings.TrimSpace(search))
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	if books == nil {
		books = []*domain.Book{}
	}
	return books, nil
}

func (s *bookService) UpdateBook(ctx context.Context, actorID, id string, upd domain.BookUpdate) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireBookManager(ctx, actorID); err != nil {
		return nil, err
	}
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return nil, domain.ErrInvalidInput
	}
	if upd.Author != nil && strings.TrimSpace(*upd.Author) == "" {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.bookRepo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return updated, nil
}

func (s *bookService) DeleteBook(ctx context.Context, actorID, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.requireBookManager(ctx, actorID); err != nil {
		return err
	}
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}
