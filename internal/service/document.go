package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/eventbus"
	"github.com/opentender/backend/internal/model"
	"github.com/opentender/backend/internal/repository"
	"github.com/opentender/backend/internal/service/generation"
	"github.com/opentender/backend/internal/service/render"
	"k8s.io/klog/v2"
)

var (
	ErrTenderNotFound     = errors.New("tender not found")
	ErrFormatNotSupported = errors.New("export format not available")
)

// DocumentService 文档的打开、编辑、生成和导出入口
type DocumentService struct {
	tenders      repository.TenderRepository
	documents    repository.DocumentRepository
	sections     repository.SectionRepository
	orchestrator *generation.Orchestrator
	renderers    map[render.Format]render.Renderer
	bus          *eventbus.SectionEventBus
	now          func() time.Time
}

func NewDocumentService(
	tenders repository.TenderRepository,
	documents repository.DocumentRepository,
	sections repository.SectionRepository,
	orchestrator *generation.Orchestrator,
	bus *eventbus.SectionEventBus,
) *DocumentService {
	return &DocumentService{
		tenders:      tenders,
		documents:    documents,
		sections:     sections,
		orchestrator: orchestrator,
		renderers:    make(map[render.Format]render.Renderer),
		bus:          bus,
		now:          time.Now,
	}
}

// RegisterRenderer 注册导出格式，未注册的格式导出时返回 ErrFormatNotSupported
func (s *DocumentService) RegisterRenderer(format render.Format, r render.Renderer) {
	s.renderers[format] = r
}

// Formats 当前可用的导出格式
func (s *DocumentService) Formats() []render.Format {
	out := make([]render.Format, 0, len(s.renderers))
	for _, f := range []render.Format{render.FormatDOCX, render.FormatHTML, render.FormatPDF} {
		if _, ok := s.renderers[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// SectionUpdate 章节编辑请求，nil 字段保持不变
type SectionUpdate struct {
	Content             *string `json:"content"`
	Enabled             *bool   `json:"enabled"`
	InstructionOverride *string `json:"instruction_override"`
}

// ExportResult 导出结果
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// -----------------------------
// 打开与加载
// -----------------------------

// Open 打开招标项目对应的文档，首次打开时创建；已在内存中的文档保留当前生成状态
func (s *DocumentService) Open(ctx context.Context, tenderID uint) (domain.Document, error) {
	tender, err := s.tenders.Get(ctx, tenderID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Document{}, ErrTenderNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("load tender %d: %w", tenderID, err)
	}

	row, err := s.documents.GetOrCreateForTender(ctx, tender)
	if err != nil {
		return domain.Document{}, fmt.Errorf("open document for tender %d: %w", tenderID, err)
	}

	store := s.orchestrator.Store()
	if store.SetHeader(documentHeader(row)) {
		doc, _ := store.Get(row.ID)
		return doc, nil
	}
	return s.hydrate(ctx, row)
}

// Get 返回内存中的文档，未加载时从数据库恢复
func (s *DocumentService) Get(ctx context.Context, docID uint) (domain.Document, error) {
	if doc, ok := s.orchestrator.Store().Get(docID); ok {
		return doc, nil
	}
	row, err := s.documents.Get(ctx, docID)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Document{}, domain.ErrDocumentNotFound
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("load document %d: %w", docID, err)
	}
	return s.hydrate(ctx, row)
}

func (s *DocumentService) hydrate(ctx context.Context, row *model.Document) (domain.Document, error) {
	doc, err := s.persisted(ctx, row)
	if err != nil {
		return domain.Document{}, err
	}
	s.orchestrator.Store().Put(doc)
	klog.V(6).Infof("[DocumentService.hydrate] 文档已加载: docID=%d, sections=%d", doc.ID, len(doc.Sections))
	return doc, nil
}

// persisted 以固定目录为骨架叠加已持久化的章节，目录外的行忽略
func (s *DocumentService) persisted(ctx context.Context, row *model.Document) (domain.Document, error) {
	saved, err := s.sections.LoadAll(ctx, row.ID)
	if err != nil {
		return domain.Document{}, fmt.Errorf("load sections of document %d: %w", row.ID, err)
	}
	byKey := make(map[string]domain.Section, len(saved))
	for _, sec := range saved {
		byKey[sec.Key] = sec
	}

	doc := documentHeader(row)
	doc.Sections = domain.NewCatalogSections()
	for i, sec := range doc.Sections {
		stored, ok := byKey[sec.Key]
		if !ok {
			continue
		}
		sec.Content = stored.Content
		sec.Enabled = stored.Enabled
		sec.InstructionOverride = stored.InstructionOverride
		sec.State = stored.State
		doc.Sections[i] = sec
	}
	return doc, nil
}

func documentHeader(row *model.Document) domain.Document {
	return domain.Document{
		ID:           row.ID,
		TenderID:     row.TenderID,
		Title:        row.Title,
		Reference:    row.Reference,
		ClientName:   row.ClientName,
		Instructions: row.Instructions,
	}
}

// -----------------------------
// 编辑
// -----------------------------

// UpdateSection 手工编辑章节；生成中的章节不能编辑
func (s *DocumentService) UpdateSection(ctx context.Context, docID uint, key string, update SectionUpdate) (domain.Section, error) {
	if _, err := s.Get(ctx, docID); err != nil {
		return domain.Section{}, err
	}
	store := s.orchestrator.Store()

	var previous domain.Section
	next, err := store.Update(docID, key, func(cur domain.Section) (domain.Section, error) {
		if cur.State == domain.StateGenerating {
			return cur, generation.ErrGenerationInProgress
		}
		previous = cur
		next := cur
		if update.Content != nil {
			next.Content = *update.Content
			next.State = domain.StateFromContent(next.Content)
			next.Error = ""
		}
		if update.Enabled != nil {
			next.Enabled = *update.Enabled
		}
		if update.InstructionOverride != nil {
			next.InstructionOverride = *update.InstructionOverride
		}
		return next, nil
	})
	if err != nil {
		return domain.Section{}, err
	}

	if err := s.persistSection(ctx, docID, next, update); err != nil {
		// 持久化失败时恢复内存中的旧值
		if _, rerr := store.Update(docID, key, func(domain.Section) (domain.Section, error) { return previous, nil }); rerr != nil {
			klog.Errorf("[DocumentService.UpdateSection] 恢复章节失败: docID=%d, section=%s, error=%v", docID, key, rerr)
		}
		return domain.Section{}, err
	}
	return next, nil
}

func (s *DocumentService) persistSection(ctx context.Context, docID uint, section domain.Section, update SectionUpdate) error {
	if update.Content != nil {
		if err := s.sections.Save(ctx, docID, section); err != nil {
			return fmt.Errorf("save section %s: %w", section.Key, err)
		}
	}
	if update.Enabled != nil || update.InstructionOverride != nil {
		if err := s.sections.UpdateSettings(ctx, docID, section); err != nil {
			return fmt.Errorf("update settings of section %s: %w", section.Key, err)
		}
	}
	return nil
}

// ImportSections 批量导入外部编写的章节正文，按目录顺序一次写入；
// 任一章节不存在、正在生成或正文为空时整批拒绝
func (s *DocumentService) ImportSections(ctx context.Context, docID uint, contents map[string]string) ([]domain.Section, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return nil, err
	}
	for key := range contents {
		if _, ok := doc.Section(key); !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrSectionNotFound, key)
		}
	}

	store := s.orchestrator.Store()
	batch := make([]domain.Section, 0, len(contents))
	for _, entry := range domain.Catalog {
		content, ok := contents[entry.Key]
		if !ok {
			continue
		}
		if domain.StateFromContent(content) != domain.StateGenerated {
			return nil, fmt.Errorf("%w: %s", domain.ErrEmptyContent, entry.Key)
		}
		cur, err := store.Section(docID, entry.Key)
		if err != nil {
			return nil, err
		}
		if cur.State == domain.StateGenerating {
			return nil, fmt.Errorf("%w: %s", generation.ErrGenerationInProgress, entry.Key)
		}
		cur.Content = content
		cur.State = domain.StateGenerated
		cur.Error = ""
		batch = append(batch, cur)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	if err := s.sections.SaveAll(ctx, docID, batch); err != nil {
		return nil, fmt.Errorf("import sections of document %d: %w", docID, err)
	}

	imported := make([]domain.Section, 0, len(batch))
	for _, sec := range batch {
		next, err := store.Update(docID, sec.Key, func(cur domain.Section) (domain.Section, error) {
			// 导入期间开始的生成以生成结果为准
			if cur.State == domain.StateGenerating {
				return cur, generation.ErrGenerationInProgress
			}
			cur.Content = sec.Content
			cur.State = sec.State
			cur.Error = ""
			return cur, nil
		})
		if err != nil {
			klog.Warningf("[DocumentService.ImportSections] 跳过内存更新: docID=%d, section=%s, error=%v", docID, sec.Key, err)
			continue
		}
		imported = append(imported, next)
	}
	klog.V(6).Infof("[DocumentService.ImportSections] docID=%d, imported=%d", docID, len(imported))
	return imported, nil
}

// UpdateInstructions 更新文档级生成指令
func (s *DocumentService) UpdateInstructions(ctx context.Context, docID uint, instructions string) (domain.Document, error) {
	doc, err := s.Get(ctx, docID)
	if err != nil {
		return domain.Document{}, err
	}
	if err := s.documents.UpdateInstructions(ctx, docID, instructions); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Document{}, domain.ErrDocumentNotFound
		}
		return domain.Document{}, fmt.Errorf("update instructions of document %d: %w", docID, err)
	}
	doc.Instructions = instructions
	s.orchestrator.Store().SetHeader(doc)
	doc, _ = s.orchestrator.Store().Get(docID)
	return doc, nil
}

// -----------------------------
// 生成
// -----------------------------

// GenerateSection 生成单个章节
func (s *DocumentService) GenerateSection(ctx context.Context, docID uint, key string, opts generation.Options) (domain.Section, error) {
	if _, err := s.Get(ctx, docID); err != nil {
		return domain.Section{}, err
	}
	if _, err := s.orchestrator.GenerateOne(ctx, docID, key, opts); err != nil {
		return domain.Section{}, err
	}
	return s.orchestrator.Store().Section(docID, key)
}

// GenerateAll 生成所有待生成的启用章节
func (s *DocumentService) GenerateAll(ctx context.Context, docID uint, opts generation.Options) (generation.Summary, error) {
	if _, err := s.Get(ctx, docID); err != nil {
		return generation.Summary{}, err
	}
	return s.orchestrator.GenerateAll(ctx, docID, opts)
}

// -----------------------------
// 导出
// -----------------------------

// Export 以已持久化的内容渲染文档，生成失败的占位内容不会出现在导出文件中
func (s *DocumentService) Export(ctx context.Context, docID uint, format render.Format) (*ExportResult, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFormatNotSupported, format)
	}

	row, err := s.documents.Get(ctx, docID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load document %d: %w", docID, err)
	}
	doc, err := s.persisted(ctx, row)
	if err != nil {
		return nil, err
	}

	data, err := renderer.Render(ctx, doc)
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, eventbus.SectionEvent{
			Type:       eventbus.SectionEventExported,
			DocumentID: docID,
			Format:     string(format),
		}); err != nil {
			klog.Warningf("[DocumentService.Export] 事件处理失败: %v", err)
		}
	}

	return &ExportResult{
		Filename:    render.Filename(doc.Title, format, s.now()),
		ContentType: format.ContentType(),
		Data:        data,
	}, nil
}
