package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewUserRepository(db *gorm.DB, logger *slog.Logger) UserRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &userRepository{db: db, logger: logger}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	if err := mapErr(r.db.WithContext(ctx).Create(user).Error); err != nil {
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return err
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := mapErr(r.db.WithContext(ctx).First(&user, "id = ?", id).Error); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := mapErr(r.db.WithContext(ctx).First(&user, "email = ?", email).Error); err != nil {
		return nil, err
	}
	return &user, nil
}
