package postgres

import (
	"context"
	"database/sql"
	"errors"

	"libraryplanner/internal/domain"
)

type roleRepository struct {
	DB *sql.DB
}

func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{DB: db}
}

// Get returns the user's assigned role, defaulting to member when no row
// exists or the stored value is unknown.
func (r *roleRepository) Get(ctx context.Context, userID string) (domain.Role, error) {
	query := `
		SELECT role
		FROM user_roles
		WHERE user_id = $1
	`
	var code string
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.RoleMember, nil
		}
		return "", err
	}
	role, ok := domain.ParseRole(code)
	if !ok {
		return domain.RoleMember, nil
	}
	return role, nil
}

func (r *roleRepository) Assign(ctx context.Context, userID string, role domain.Role) error {
	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`
	_, err := r.DB.ExecContext(ctx, query, userID, string(role))
	return err
}
