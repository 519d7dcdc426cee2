package repository

import (
	"context"
	"errors"
	"time"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/model"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

type sectionRepository struct {
	db *gorm.DB
}

func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &sectionRepository{db: db}
}

// Save 幂等写入单个章节：存在则原地更新标题、内容和时间戳，否则插入
// 通过先查后写避免唯一键冲突，不依赖捕获约束错误
func (r *sectionRepository) Save(ctx context.Context, docID uint, section domain.Section) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.SectionRow
		err := tx.Where("document_id = ? AND section_key = ?", docID, section.Key).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newRow := newSectionRow(docID, section)
			return tx.Create(&newRow).Error
		}
		if err != nil {
			return err
		}
		return updateContent(tx, row.ID, section)
	})
}

// SaveAll 批量写入：一次存在性查询把候选集分为已存在/新增，
// 新增的批量插入，已存在的逐条更新，整体在一个事务内完成
func (r *sectionRepository) SaveAll(ctx context.Context, docID uint, sections []domain.Section) error {
	if len(sections) == 0 {
		return nil
	}

	// 同一 key 出现多次时以最后一次为准
	latest := make(map[string]domain.Section, len(sections))
	keys := make([]string, 0, len(sections))
	for _, s := range sections {
		if _, ok := latest[s.Key]; !ok {
			keys = append(keys, s.Key)
		}
		latest[s.Key] = s
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.SectionRow
		if err := tx.Select("id", "section_key").
			Where("document_id = ? AND section_key IN ?", docID, keys).
			Find(&existing).Error; err != nil {
			return err
		}

		existingIDs := make(map[string]uint, len(existing))
		for _, row := range existing {
			existingIDs[row.SectionKey] = row.ID
		}

		var newRows []model.SectionRow
		for _, key := range keys {
			section := latest[key]
			if id, ok := existingIDs[key]; ok {
				if err := updateContent(tx, id, section); err != nil {
					return err
				}
				continue
			}
			newRows = append(newRows, newSectionRow(docID, section))
		}

		if len(newRows) > 0 {
			if err := tx.CreateInBatches(&newRows, 100).Error; err != nil {
				return err
			}
		}

		klog.V(6).Infof("[sectionRepository.SaveAll] docID=%d, inserted=%d, updated=%d",
			docID, len(newRows), len(existing))
		return nil
	})
}

// LoadAll 返回文档已持久化的章节投影，没有行的章节不出现在结果中
func (r *sectionRepository) LoadAll(ctx context.Context, docID uint) ([]domain.Section, error) {
	var rows []model.SectionRow
	if err := r.db.WithContext(ctx).
		Where("document_id = ?", docID).
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	sections := make([]domain.Section, 0, len(rows))
	for _, row := range rows {
		sections = append(sections, domain.Section{
			Key:                 row.SectionKey,
			Title:               row.Title,
			Content:             row.Content,
			Enabled:             !row.Disabled,
			InstructionOverride: row.InstructionOverride,
			State:               domain.StateFromContent(row.Content),
		})
	}
	return sections, nil
}

// UpdateSettings 持久化启用状态和指令覆盖，行不存在时插入空内容行
func (r *sectionRepository) UpdateSettings(ctx context.Context, docID uint, section domain.Section) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row model.SectionRow
		err := tx.Where("document_id = ? AND section_key = ?", docID, section.Key).
			Take(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			newRow := newSectionRow(docID, section)
			newRow.Content = ""
			return tx.Create(&newRow).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&model.SectionRow{}).
			Where("id = ?", row.ID).
			Updates(map[string]interface{}{
				"disabled":             !section.Enabled,
				"instruction_override": section.InstructionOverride,
				"updated_at":           time.Now(),
			}).Error
	})
}

func (r *sectionRepository) Count(ctx context.Context, docID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.SectionRow{}).
		Where("document_id = ?", docID).
		Count(&count).Error
	return count, err
}

func newSectionRow(docID uint, section domain.Section) model.SectionRow {
	return model.SectionRow{
		DocumentID:          docID,
		SectionKey:          section.Key,
		Title:               section.Title,
		Content:             section.Content,
		Disabled:            !section.Enabled,
		InstructionOverride: section.InstructionOverride,
	}
}

func updateContent(tx *gorm.DB, id uint, section domain.Section) error {
	return tx.Model(&model.SectionRow{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":      section.Title,
			"content":    section.Content,
			"updated_at": time.Now(),
		}).Error
}
