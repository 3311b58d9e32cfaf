package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"libraryplanner/internal/domain"
)

type invitationRepository struct {
	DB *sql.DB
}

func NewInvitationRepository(db *sql.DB) domain.InvitationRepository {
	return &invitationRepository{DB: db}
}

const invitationColumns = `id, event_id, inviter_id, invitee_email, token, status, created_at`

func scanInvitation(scan func(dest ...any) error) (*domain.Invitation, error) {
	inv := &domain.Invitation{}
	var status string
	if err := scan(&inv.ID, &inv.EventID, &inv.InviterID, &inv.InviteeEmail, &inv.Token, &status, &inv.CreatedAt); err != nil {
		return nil, err
	}
	inv.Status = domain.InvitationStatus(status)
	return inv, nil
}

func (r *invitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	query := `
		INSERT INTO event_invitations (event_id, inviter_id, invitee_email, token, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		inv.EventID, inv.InviterID, inv.InviteeEmail, inv.Token, string(inv.Status), inv.CreatedAt,
	).Scan(&inv.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == "23505" {
			return domain.ErrAlreadyInvited
		}
		return err
	}
	return nil
}

func (r *invitationRepository) GetByEventAndEmail(ctx context.Context, eventID, email string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM event_invitations WHERE event_id = $1 AND invitee_email = $2`
	row := r.DB.QueryRowContext(ctx, query, eventID, email)
	inv, err := scanInvitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) GetByToken(ctx context.Context, token string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM event_invitations WHERE token = $1`
	row := r.DB.QueryRowContext(ctx, query, token)
	inv, err := scanInvitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListByEventID(ctx context.Context, eventID, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	countQuery := `SELECT COUNT(*) FROM event_invitations WHERE event_id = $1`
	listQuery := `SELECT ` + invitationColumns + ` FROM event_invitations WHERE event_id = $1`
	args := []interface{}{eventID}
	if search != "" {
		countQuery += ` AND invitee_email ILIKE $2`
		listQuery += ` AND invitee_email ILIKE $2`
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery += ` ORDER BY created_at DESC`
	if params.PageSize > 0 {
		listQuery += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, params.PageSize, params.Offset())
	}

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invs := make([]*domain.Invitation, 0)
	for rows.Next() {
		inv, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, 0, err
		}
		invs = append(invs, inv)
	}
	return invs, total, rows.Err()
}

// UpdateStatus transitions a pending invitation; the status guard in the
// WHERE clause makes accepted/declined terminal.
func (r *invitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) (*domain.Invitation, error) {
	query := `
		UPDATE event_invitations SET status = $2
		WHERE id = $1 AND status = 'pending'
		RETURNING ` + invitationColumns
	row := r.DB.QueryRowContext(ctx, query, id, string(status))
	inv, err := scanInvitation(row.Scan)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	// Zero rows: distinguish "missing" from "already responded".
	existing, err := r.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Status != domain.InvitationPending {
		return nil, domain.ErrAlreadyResponded
	}
	return nil, domain.ErrNotFound
}

func (r *invitationRepository) getByID(ctx context.Context, id string) (*domain.Invitation, error) {
	query := `SELECT ` + invitationColumns + ` FROM event_invitations WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, id)
	inv, err := scanInvitation(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}
