package repository

import (
	"context"

	"github.com/opentender/backend/internal/model"
	"gorm.io/gorm"
)

type knowledgeRepository struct {
	db *gorm.DB
}

func NewKnowledgeRepository(db *gorm.DB) KnowledgeRepository {
	return &knowledgeRepository{db: db}
}

func (r *knowledgeRepository) Create(ctx context.Context, file *model.KnowledgeFile) error {
	return r.db.WithContext(ctx).Create(file).Error
}

// ListCompleted 只返回文本抽取已完成的文件
func (r *knowledgeRepository) ListCompleted(ctx context.Context) ([]model.KnowledgeFile, error) {
	var files []model.KnowledgeFile
	err := r.db.WithContext(ctx).
		Where("extraction_status = ?", model.ExtractionCompleted).
		Order("id").
		Find(&files).Error
	return files, err
}
