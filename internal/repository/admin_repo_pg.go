package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/tripoffice/internal/domain"
	"github.com/jackc/pgx/v5"
)

type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminUser) error
	GetByID(ctx context.Context, id string) (*domain.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.AdminUser, error)
	List(ctx context.Context) ([]domain.AdminUser, error)
	Update(ctx context.Context, admin *domain.AdminUser) error
	Delete(ctx context.Context, id string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

type PGAdminRepository struct {
	db DB
}

func NewAdminRepository(db DB) AdminRepository {
	return &PGAdminRepository{db: db}
}

const adminColumns = `id, username, email, password_hash, role, is_active, profile_picture, bio, phone_number, address, last_login, created_at, updated_at`

func scanAdmin(row pgx.Row) (*domain.AdminUser, error) {
	var a domain.AdminUser
	if err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.IsActive, &a.ProfilePicture, &a.Bio, &a.PhoneNumber, &a.Address, &a.LastLogin, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *PGAdminRepository) Create(ctx context.Context, admin *domain.AdminUser) error {
	err := r.db.QueryRow(ctx, `INSERT INTO admins (username, email, password_hash, role, is_active, profile_picture, bio, phone_number, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, last_login, created_at, updated_at`,
		admin.Username, admin.Email, admin.PasswordHash, admin.Role, admin.IsActive, admin.ProfilePicture, admin.Bio, admin.PhoneNumber, admin.Address).
		Scan(&admin.ID, &admin.LastLogin, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert admin: %w", translate(err))
	}
	return nil
}

func (r *PGAdminRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	return scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE id=$1`, id))
}

func (r *PGAdminRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email=$1`, email))
}

func (r *PGAdminRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*domain.AdminUser, error) {
	return scanAdmin(r.db.QueryRow(ctx, `SELECT `+adminColumns+` FROM admins WHERE email=$1 OR username=$2 LIMIT 1`, email, username))
}

func (r *PGAdminRepository) List(ctx context.Context) ([]domain.AdminUser, error) {
	rows, err := r.db.Query(ctx, `SELECT `+adminColumns+` FROM admins ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := make([]domain.AdminUser, 0)
	for rows.Next() {
		a, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *a)
	}
	return admins, rows.Err()
}

func (r *PGAdminRepository) Update(ctx context.Context, admin *domain.AdminUser) error {
	err := r.db.QueryRow(ctx, `UPDATE admins SET username=$1, email=$2, password_hash=$3, role=$4, is_active=$5,
		profile_picture=$6, bio=$7, phone_number=$8, address=$9, updated_at=now()
		WHERE id=$10 RETURNING updated_at`,
		admin.Username, admin.Email, admin.PasswordHash, admin.Role, admin.IsActive,
		admin.ProfilePicture, admin.Bio, admin.PhoneNumber, admin.Address, admin.ID).
		Scan(&admin.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update admin: %w", translate(err))
	}
	return nil
}

func (r *PGAdminRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM admins WHERE id=$1`, id)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGAdminRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE admins SET last_login=$1 WHERE id=$2`, at, id)
	return err
}

var _ AdminRepository = (*PGAdminRepository)(nil)
