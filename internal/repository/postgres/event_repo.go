package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"libraryplanner/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `id, owner_id, title, start_time, end_time, location, description, status, created_at, updated_at`

func scanEvent(scan func(dest ...any) error) (*domain.Event, error) {
	e := &domain.Event{}
	var locationNull, descNull sql.NullString
	var status string
	if err := scan(&e.ID, &e.OwnerID, &e.Title, &e.StartTime, &e.EndTime, &locationNull, &descNull, &status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if locationNull.Valid {
		e.Location = &locationNull.String
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	e.Status = domain.EventStatus(status)
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (owner_id, title, start_time, end_time, location, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.OwnerID, e.Title, e.StartTime, e.EndTime, e.Location, e.Description, string(e.Status), e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)
	e, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// ListVisible returns events the user owns or is an accepted invitee of.
// The accepted-invitation membership is resolved in the same query so the
// two conditions combine as a single OR filter.
func (r *eventRepository) ListVisible(ctx context.Context, ownerID, inviteeEmail string, filter domain.EventFilter) ([]*domain.Event, error) {
	where := []string{`(e.owner_id = $1 OR EXISTS (
		SELECT 1 FROM event_invitations i
		WHERE i.event_id = e.id AND i.invitee_email = $2 AND i.status = 'accepted'
	))`}
	args := []interface{}{ownerID, inviteeEmail}
	n := 3
	if filter.Search != "" {
		where = append(where, fmt.Sprintf(`(e.title ILIKE $%d OR e.location ILIKE $%d)`, n, n))
		args = append(args, "%"+filter.Search+"%")
		n++
	}
	if filter.From != nil {
		where = append(where, fmt.Sprintf(`e.start_time >= $%d`, n))
		args = append(args, *filter.From)
		n++
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf(`e.start_time <= $%d`, n))
		args = append(args, *filter.To)
		n++
	}

	query := fmt.Sprintf(`
		SELECT e.id, e.owner_id, e.title, e.start_time, e.end_time, e.location, e.description, e.status, e.created_at, e.updated_at
		FROM events e
		WHERE %s
		ORDER BY e.start_time ASC
	`, strings.Join(where, " AND "))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	if upd.Title != nil {
		setClauses = append(setClauses, fmt.Sprintf("title = $%d", n))
		args = append(args, *upd.Title)
		n++
	}
	if upd.StartTime != nil {
		setClauses = append(setClauses, fmt.Sprintf("start_time = $%d", n))
		args = append(args, *upd.StartTime)
		n++
	}
	if upd.EndTime != nil {
		setClauses = append(setClauses, fmt.Sprintf("end_time = $%d", n))
		args = append(args, *upd.EndTime)
		n++
	}
	if upd.Location != nil {
		setClauses = append(setClauses, fmt.Sprintf("location = $%d", n))
		args = append(args, *upd.Location)
		n++
	}
	if upd.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", n))
		args = append(args, *upd.Description)
		n++
	}
	if upd.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", n))
		args = append(args, string(*upd.Status))
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)

	row := r.DB.QueryRowContext(ctx, query, args...)
	e, err := scanEvent(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
