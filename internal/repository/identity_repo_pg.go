package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Domenick1991/airtickets/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGIdentityRepository struct {
	db *pgxpool.Pool
}

func NewIdentityRepository(db *pgxpool.Pool) IdentityRepository {
	return &PGIdentityRepository{db: db}
}

func (r *PGIdentityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	identity.Email = normalizeEmail(identity.Email)
	err := r.db.QueryRow(ctx, `INSERT INTO identities (email, display_name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`, identity.Email, identity.DisplayName, identity.PasswordHash).
		Scan(&identity.ID, &identity.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (r *PGIdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, display_name, password_hash, created_at FROM identities WHERE email=$1`, normalizeEmail(email))
	return scanIdentity(row)
}

func (r *PGIdentityRepository) GetByID(ctx context.Context, id int64) (*domain.Identity, error) {
	row := r.db.QueryRow(ctx, `SELECT id, email, display_name, password_hash, created_at FROM identities WHERE id=$1`, id)
	return scanIdentity(row)
}

func scanIdentity(row pgx.Row) (*domain.Identity, error) {
	var i domain.Identity
	if err := row.Scan(&i.ID, &i.Email, &i.DisplayName, &i.PasswordHash, &i.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("identity: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	return &i, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var _ IdentityRepository = (*PGIdentityRepository)(nil)
