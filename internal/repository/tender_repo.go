package repository

import (
	"context"
	"errors"

	"github.com/opentender/backend/internal/model"
	"gorm.io/gorm"
)

type tenderRepository struct {
	db *gorm.DB
}

func NewTenderRepository(db *gorm.DB) TenderRepository {
	return &tenderRepository{db: db}
}

func (r *tenderRepository) Create(ctx context.Context, tender *model.Tender) error {
	return r.db.WithContext(ctx).Create(tender).Error
}

func (r *tenderRepository) Get(ctx context.Context, id uint) (*model.Tender, error) {
	var tender model.Tender
	err := r.db.WithContext(ctx).
		Preload("Attachments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		First(&tender, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tender, nil
}
