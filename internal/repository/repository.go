package repository

import (
	"context"
	"errors"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/model"
)

// ErrNotFound 记录不存在错误
var ErrNotFound = errors.New("record not found")

type TenderRepository interface {
	Create(ctx context.Context, tender *model.Tender) error
	Get(ctx context.Context, id uint) (*model.Tender, error)
}

type DocumentRepository interface {
	GetOrCreateForTender(ctx context.Context, tender *model.Tender) (*model.Document, error)
	Get(ctx context.Context, id uint) (*model.Document, error)
	UpdateInstructions(ctx context.Context, id uint, instructions string) error
}

// SectionRepository 章节内容的幂等存储，以 (documentID, sectionKey) 为键
type SectionRepository interface {
	Save(ctx context.Context, docID uint, section domain.Section) error
	SaveAll(ctx context.Context, docID uint, sections []domain.Section) error
	LoadAll(ctx context.Context, docID uint) ([]domain.Section, error)
	UpdateSettings(ctx context.Context, docID uint, section domain.Section) error
	Count(ctx context.Context, docID uint) (int64, error)
}

type KnowledgeRepository interface {
	Create(ctx context.Context, file *model.KnowledgeFile) error
	ListCompleted(ctx context.Context) ([]model.KnowledgeFile, error)
}

type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	Get(ctx context.Context, id string) (*model.Asset, error)
	ListDescribed(ctx context.Context) ([]model.Asset, error)
}
