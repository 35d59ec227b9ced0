package repository

import (
	"context"

	"github.com/harbourbee/harbourbee-backend/internal/model"
	"gorm.io/gorm"
)

type PoolRepository interface {
	Create(ctx context.Context, p *model.Pool) error
	FindByID(ctx context.Context, id uint64) (*model.Pool, error)
	FindOpenByPort(ctx context.Context, port string) (*model.Pool, error)
	Update(ctx context.Context, p *model.Pool) error
	List(ctx context.Context, status model.PoolStatus) ([]model.Pool, error)
}

type poolRepository struct {
	db *gorm.DB
}

func NewPoolRepository(db *gorm.DB) PoolRepository {
	return &poolRepository{db: db}
}

func (r *poolRepository) Create(ctx context.Context, p *model.Pool) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *poolRepository) FindByID(ctx context.Context, id uint64) (*model.Pool, error) {
	var p model.Pool
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindOpenByPort returns the newest open pool for the port, so a pool
// that sat past its target date never shadows a fresher one.
func (r *poolRepository) FindOpenByPort(ctx context.Context, port string) (*model.Pool, error) {
	var p model.Pool
	err := r.db.WithContext(ctx).
		Where("port = ? AND status = ?", port, model.PoolStatusOpen).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *poolRepository) Update(ctx context.Context, p *model.Pool) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *poolRepository) List(ctx context.Context, status model.PoolStatus) ([]model.Pool, error) {
	var list []model.Pool
	q := r.db.WithContext(ctx).Model(&model.Pool{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
