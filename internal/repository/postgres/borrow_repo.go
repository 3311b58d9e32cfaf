package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"libraryplanner/internal/domain"
)

type borrowRepository struct {
	DB *sql.DB
}

func NewBorrowRepository(db *sql.DB) domain.BorrowRepository {
	return &borrowRepository{DB: db}
}

// Checkout inserts the borrow row and flips the cached book status in one
// transaction. The partial unique index on (book_id) WHERE returned_at IS
// NULL serializes concurrent checkouts: the loser gets a 23505 which we map
// to ErrBookUnavailable.
func (r *borrowRepository) Checkout(ctx context.Context, bookID, userID string, now time.Time) (*domain.Borrow, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	borrow := &domain.Borrow{
		BookID:     bookID,
		BorrowedBy: userID,
		BorrowedAt: now,
	}
	insert := `
		INSERT INTO borrows (book_id, borrowed_by, borrowed_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := tx.QueryRowContext(ctx, insert, bookID, userID, now).Scan(&borrow.ID); err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return nil, domain.ErrBookUnavailable
		}
		return nil, err
	}

	update := `UPDATE books SET status = 'borrowed', updated_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, bookID, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return borrow, nil
}

// Return closes the open borrow and flips the cached book status in one
// transaction. Closing is guarded by returned_at IS NULL so a second return
// of the same borrow affects zero rows.
func (r *borrowRepository) Return(ctx context.Context, borrowID, bookID string, now time.Time) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	close := `
		UPDATE borrows SET returned_at = $2
		WHERE id = $1 AND returned_at IS NULL
	`
	result, err := tx.ExecContext(ctx, close, borrowID, now)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrBorrowClosed
	}

	update := `UPDATE books SET status = 'available', updated_at = $2 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, bookID, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *borrowRepository) GetByID(ctx context.Context, id string) (*domain.Borrow, error) {
	query := `
		SELECT id, book_id, borrowed_by, borrowed_at, returned_at
		FROM borrows
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *borrowRepository) GetOpenByBookID(ctx context.Context, bookID string) (*domain.Borrow, error) {
	query := `
		SELECT id, book_id, borrowed_by, borrowed_at, returned_at
		FROM borrows
		WHERE book_id = $1 AND returned_at IS NULL
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, bookID))
}

func (r *borrowRepository) scanOne(row *sql.Row) (*domain.Borrow, error) {
	b := &domain.Borrow{}
	var returnedNull sql.NullTime
	err := row.Scan(&b.ID, &b.BookID, &b.BorrowedBy, &b.BorrowedAt, &returnedNull)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if returnedNull.Valid {
		b.ReturnedAt = &returnedNull.Time
	}
	return b, nil
}
