package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

// CreateUser inserts u unless the email is taken. Emails compare case-insensitively.
func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.WithTx(ctx, func(tx *GormRepo) error {
		var n int64
		if err := tx.db(ctx).Model(&models.User{}).Where("LOWER(email) = ?", u.Email).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrAlreadyExists
		}
		if err := tx.db(ctx).Create(u).Error; err != nil {
			if db.IsUniqueViolation(err) {
				return ErrAlreadyExists
			}
			return err
		}
		return nil
	})
}

func (r *GormRepo) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := r.db(ctx).Where("LOWER(email) = ?", email).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// LockUser returns the user row locked FOR UPDATE. Writes made on a user's behalf
// take this lock so they cannot interleave with the user's removal.
func (r *GormRepo) LockUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	if err := r.db(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *GormRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) (int64, error) {
	res := r.db(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) ListUsers(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	if err := r.db(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db(ctx).Where("id = ?", id).Delete(&models.User{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	return r.db(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role).Error
}
