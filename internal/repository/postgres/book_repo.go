package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"libraryplanner/internal/domain"
)

type bookRepository struct {
	DB *sql.DB
}

func NewBookRepository(db *sql.DB) domain.BookRepository {
	return &bookRepository{DB: db}
}

func (r *bookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (title, author, isbn, tags, summary, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		b.Title, b.Author, b.ISBN, pq.Array(b.Tags), b.Summary, string(b.Status), b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
}

func scanBook(scan func(dest ...any) error) (*domain.Book, error) {
	b := &domain.Book{}
	var isbnNull, summaryNull sql.NullString
	var status string
	if err := scan(&b.ID, &b.Title, &b.Author, &isbnNull, pq.Array(&b.Tags), &summaryNull, &status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if isbnNull.Valid {
		b.ISBN = &isbnNull.String
	}
	if summaryNull.Valid {
		b.Summary = &summaryNull.String
	}
	b.Status = domain.BookStatus(status)
	return b, nil
}

func (r *bookRepository) GetByID(ctx context.Context, id string) (*domain.Book, error) {
	query := `
		SELECT id, title, author, isbn, tags, summary, status, created_at, updated_at
		FROM books
		WHERE id = $1
	`
	row := r.DB.QueryRowContext(ctx, query, id)
	b, err := scanBook(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookRepository) List(ctx context.Context, search string) ([]*domain.Book, error) {
	query := `
		SELECT id, title, author, isbn, tags, summary, status, created_at, updated_at
		FROM books
	`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE title ILIKE $1 OR author ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows.Scan)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *bookRepository) Update(ctx context.Context, id string, upd domain.BookUpdate) (*domain.Book, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.Author != nil {
		setClauses = append(setClauses, fmt.Sprintf("author = $%d", n))
		args = append(args, *upd.Author)
		n++
	}
	if upd.ISBN != nil {
		setClauses = append(setClauses, fmt.Sprintf("isbn = $%d", n))
		args = append(args, *upd.ISBN)
		n++
	}
	if upd.Tags != nil {
		setClauses = append(setClauses, fmt.Sprintf("tags = $%d", n))
		args = append(args, pq.Array(upd.Tags))
		n++
	}
	if upd.Summary != nil {
		setClauses = append(setClauses, fmt.Sprintf("summary = $%d", n))
		args = append(args, *upd.Summary)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE books SET %s
		WHERE id = $%d
		RETURNING id, title, author, isbn, tags, summary, status, created_at, updated_at
	`, strings.Join(setClauses, ", "), n)

	row := r.DB.QueryRowContext(ctx, query, args...)
	b, err := scanBook(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
