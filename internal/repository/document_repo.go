package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentender/backend/internal/model"
	"gorm.io/gorm"
)

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

// GetOrCreateForTender 首次打开招标项目时隐式创建文档
func (r *documentRepository) GetOrCreateForTender(ctx context.Context, tender *model.Tender) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).
		Where(model.Document{TenderID: tender.ID}).
		Attrs(model.Document{
			Title:      tender.Title,
			Reference:  tender.Reference,
			ClientName: tender.ClientName,
		}).
		FirstOrCreate(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Get(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := r.db.WithContext(ctx).First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) UpdateInstructions(ctx context.Context, id uint, instructions string) error {
	result := r.db.WithContext(ctx).Model(&model.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"instructions": instructions,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
