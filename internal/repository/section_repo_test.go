package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/model"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db error: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db error: %v", err)
	}
	// 内存库每个连接独立，测试中固定为单连接
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&model.Tender{}, &model.TenderAttachment{}, &model.Document{},
		&model.SectionRow{}, &model.KnowledgeFile{}, &model.Asset{}); err != nil {
		t.Fatalf("migrate error: %v", err)
	}
	return db
}

func TestSectionRepositorySaveIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	first := domain.Section{Key: "approach", Title: "3. Technical Approach", Content: "first", Enabled: true}
	if err := repo.Save(ctx, 1, first); err != nil {
		t.Fatalf("Save first error: %v", err)
	}
	second := first
	second.Content = "second"
	if err := repo.Save(ctx, 1, second); err != nil {
		t.Fatalf("Save second error: %v", err)
	}

	var rows []model.SectionRow
	if err := db.Where("document_id = ? AND section_key = ?", 1, "approach").Find(&rows).Error; err != nil {
		t.Fatalf("query rows error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly 1 row, got %d", len(rows))
	}
	if rows[0].Content != "second" {
		t.Fatalf("expected second save to overwrite, got %q", rows[0].Content)
	}
}

func TestSectionRepositorySaveSeparatesDocuments(t *testing.T) {
	db := newTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	s := domain.Section{Key: "team", Title: "Team", Content: "doc one", Enabled: true}
	if err := repo.Save(ctx, 1, s); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	s.Content = "doc two"
	if err := repo.Save(ctx, 2, s); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	count, err := repo.Count(ctx, 1)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 row for doc 1, got %d (err=%v)", count, err)
	}
	count, err = repo.Count(ctx, 2)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 row for doc 2, got %d (err=%v)", count, err)
	}
}

func TestSectionRepositorySaveAllPartitions(t *testing.T) {
	db := newTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	if err := repo.Save(ctx, 7, domain.Section{Key: "company", Title: "Company", Content: "old", Enabled: true}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	batch := []domain.Section{
		{Key: "company", Title: "Company", Content: "new company", Enabled: true},
		{Key: "planning", Title: "Planning", Content: "planning", Enabled: true},
		{Key: "quality", Title: "Quality", Content: "quality", Enabled: true},
		{Key: "planning", Title: "Planning", Content: "planning v2", Enabled: true},
	}
	if err := repo.SaveAll(ctx, 7, batch); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}
	// 再次执行同一批次不能产生重复行
	if err := repo.SaveAll(ctx, 7, batch); err != nil {
		t.Fatalf("SaveAll again error: %v", err)
	}

	sections, err := repo.LoadAll(ctx, 7)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(sections))
	}
	byKey := map[string]domain.Section{}
	for _, s := range sections {
		byKey[s.Key] = s
	}
	if byKey["company"].Content != "new company" {
		t.Fatalf("expected company updated, got %q", byKey["company"].Content)
	}
	if byKey["planning"].Content != "planning v2" {
		t.Fatalf("expected last planning entry to win, got %q", byKey["planning"].Content)
	}
	if byKey["quality"].State != domain.StateGenerated {
		t.Fatalf("expected generated state, got %s", byKey["quality"].State)
	}
}

func TestSectionRepositoryUpdateSettings(t *testing.T) {
	db := newTestDB(t)
	repo := NewSectionRepository(db)
	ctx := context.Background()

	s := domain.Section{Key: "support", Title: "Support", Enabled: false, InstructionOverride: "be brief"}
	if err := repo.UpdateSettings(ctx, 3, s); err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}

	sections, err := repo.LoadAll(ctx, 3)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(sections) != 1 {
		t.Fatalf("expected 1 row, got %d", len(sections))
	}
	if sections[0].Enabled || sections[0].InstructionOverride != "be brief" {
		t.Fatalf("unexpected settings: %+v", sections[0])
	}
	if sections[0].State != domain.StateIdle {
		t.Fatalf("expected idle state for empty content, got %s", sections[0].State)
	}

	// 内容写入不影响设置
	s.Content = "generated"
	if err := repo.Save(ctx, 3, s); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	s.Enabled = true
	s.InstructionOverride = ""
	if err := repo.UpdateSettings(ctx, 3, s); err != nil {
		t.Fatalf("UpdateSettings error: %v", err)
	}
	sections, _ = repo.LoadAll(ctx, 3)
	if !sections[0].Enabled || sections[0].Content != "generated" || sections[0].InstructionOverride != "" {
		t.Fatalf("unexpected section after update: %+v", sections[0])
	}
}
