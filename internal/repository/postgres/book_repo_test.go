package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"libraryplanner/internal/domain"
)

func bookRows(books ...*domain.Book) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "title", "author", "isbn", "tags", "summary", "status", "created_at", "updated_at"})
	for _, b := range books {
		rows.AddRow(b.ID, b.Title, b.Author, nullable(b.ISBN), "{" + joinTags(b.Tags) + "}", nullable(b.Summary), string(b.Status), b.CreatedAt, b.UpdatedAt)
	}
	return rows
}

func joinTags(tags []string) string {
	out := ""
	for i, t := range tags {
		if i > 0 {
			out += ","
		}
		out += t
	}
	return out
}

func TestBookRepository_Create(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO books`).
		WithArgs("Dune", "Frank Herbert", nil, sqlmock.AnyArg(), nil, "available", now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("book-1"))

	repo := NewBookRepository(db)
	book := &domain.Book{Title: "Dune", Author: "Frank Herbert", Status: domain.BookAvailable, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, repo.Create(ctx, book))
	require.Equal(t, "book-1", book.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	dune := &domain.Book{ID: "b1", Title: "Dune", Author: "Frank Herbert", Tags: []string{"scifi"}, Status: domain.BookAvailable, CreatedAt: now, UpdatedAt: now}

	t.Run("no search lists everything newest first", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM books`).
			WillReturnRows(bookRows(dune))

		repo := NewBookRepository(db)
		books, err := repo.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, books, 1)
		require.Equal(t, []string{"scifi"}, books[0].Tags)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("search matches title or author", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE title ILIKE \$1 OR author ILIKE \$1`).
			WithArgs("%herbert%").
			WillReturnRows(bookRows(dune))

		repo := NewBookRepository(db)
		books, err := repo.List(ctx, "herbert")
		require.NoError(t, err)
		require.Len(t, books, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty catalog returns empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`FROM books`).
			WillReturnRows(bookRows())

		repo := NewBookRepository(db)
		books, err := repo.List(ctx, "")
		require.NoError(t, err)
		require.NotNil(t, books)
		require.Empty(t, books)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookRepository_Update(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)

	t.Run("renames title", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		title := "Dune Messiah"
		updated := &domain.Book{ID: "b1", Title: title, Author: "Frank Herbert", Status: domain.BookAvailable, CreatedAt: now, UpdatedAt: now}
		mock.ExpectQuery(`UPDATE books SET`).
			WithArgs(title, "b1").
			WillReturnRows(bookRows(updated))

		repo := NewBookRepository(db)
		got, err := repo.Update(ctx, "b1", domain.BookUpdate{Title: &title})
		require.NoError(t, err)
		require.Equal(t, title, got.Title)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing book", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		title := "Dune Messiah"
		mock.ExpectQuery(`UPDATE books SET`).
			WithArgs(title, "ghost").
			WillReturnError(sql.ErrNoRows)

		repo := NewBookRepository(db)
		_, err = repo.Update(ctx, "ghost", domain.BookUpdate{Title: &title})
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBookRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM books`).
			WithArgs("b1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewBookRepository(db)
		require.NoError(t, repo.Delete(ctx, "b1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing book", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`DELETE FROM books`).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewBookRepository(db)
		require.ErrorIs(t, repo.Delete(ctx, "ghost"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
