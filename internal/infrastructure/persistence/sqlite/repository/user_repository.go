package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkevin1491/fyp/internal/errs"
	"github.com/mkevin1491/fyp/internal/infrastructure/persistence/sqlite/model"
	"github.com/mkevin1491/fyp/internal/ports"
)

type UserRepository struct {
	db *gorm.DB
}

var _ ports.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user ports.UserCreate) (ports.User, error) {
	if ctx == nil {
		return ports.User{}, errors.New("context is required")
	}

	row := model.User{
		Name:         strings.TrimSpace(user.Name),
		Email:        normalizeEmail(user.Email),
		PasswordHash: user.PasswordHash,
		CreatedAt:    nowUTCString(),
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&row)
	if result.Error != nil {
		return ports.User{}, errs.Wrap(result.Error, "insert user")
	}
	if result.RowsAffected == 0 {
		return ports.User{}, ports.ErrEmailTaken
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (ports.User, error) {
	if ctx == nil {
		return ports.User{}, errors.New("context is required")
	}

	var row model.User
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user by email")
	}
	return mapUser(row), nil
}

func (r *UserRepository) GetUser(ctx context.Context, id uint64) (ports.User, error) {
	if ctx == nil {
		return ports.User{}, errors.New("context is required")
	}

	var row model.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.User{}, ports.ErrUserNotFound
		}
		return ports.User{}, errs.Wrap(err, "query user by id")
	}
	return mapUser(row), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapUser(row model.User) ports.User {
	return ports.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		CreatedAt:    parseTime(row.CreatedAt),
	}
}
