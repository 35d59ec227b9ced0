package repository

import (
	"context"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"gorm.io/gorm"
)

type UserRepository interface {
	FindByUID(ctx context.Context, uid string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByUID(ctx context.Context, uid string) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).First(&u, "uid = ?", uid).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}
