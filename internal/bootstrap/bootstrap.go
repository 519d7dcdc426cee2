// Package bootstrap 按配置组装服务依赖，供 HTTP 服务和命令行工具共用
package bootstrap

import (
	"context"
	"fmt"

	"github.com/opentender/backend/config"
	"github.com/opentender/backend/internal/eventbus"
	"github.com/opentender/backend/internal/pkg/assets"
	"github.com/opentender/backend/internal/pkg/database"
	"github.com/opentender/backend/internal/pkg/llm"
	"github.com/opentender/backend/internal/pkg/markdown"
	"github.com/opentender/backend/internal/repository"
	"github.com/opentender/backend/internal/service"
	"github.com/opentender/backend/internal/service/generation"
	"github.com/opentender/backend/internal/service/promptctx"
	"github.com/opentender/backend/internal/service/render"
	"github.com/opentender/backend/internal/subscriber"
	"gorm.io/gorm"
	"k8s.io/klog/v2"
)

// App 组装完成的服务
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Bus       *eventbus.SectionEventBus
	Tenders   repository.TenderRepository
	Knowledge repository.KnowledgeRepository
	Assets    repository.AssetRepository
	Store     *assets.MinioStore // 未配置对象存储时为 nil
	Documents *service.DocumentService
}

// New 初始化数据库、生成服务和渲染器
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	bus := eventbus.NewSectionEventBus()
	subscriber.NewSectionEventSubscriber().Register(bus)

	provider, err := llm.NewProvider(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}
	provider.OnRetry = func(attempt int, perr *llm.ProviderError) {
		if err := bus.Publish(context.Background(), eventbus.SectionEvent{
			Type:    eventbus.SectionEventRetried,
			Attempt: attempt,
			Err:     perr,
		}); err != nil {
			klog.Warningf("[bootstrap.OnRetry] 事件处理失败: %v", err)
		}
	}

	tenders := repository.NewTenderRepository(db)
	knowledge := repository.NewKnowledgeRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	sections := repository.NewSectionRepository(db)
	documents := repository.NewDocumentRepository(db)

	app := &App{
		Config:    cfg,
		DB:        db,
		Bus:       bus,
		Tenders:   tenders,
		Knowledge: knowledge,
		Assets:    assetRepo,
	}

	var signer assets.URLSigner = assets.StaticSigner{BaseURL: cfg.Asset.PublicBaseURL}
	if cfg.Asset.Endpoint != "" {
		store, err := assets.NewMinioStore(cfg.Asset)
		if err != nil {
			return nil, fmt.Errorf("init asset store: %w", err)
		}
		app.Store = store
		signer = store
	}
	resolver := assets.NewCatalogResolver(assetRepo, signer)
	lowerer := markdown.NewLowerer(resolver)

	orchestrator := generation.NewOrchestrator(generation.Dependencies{
		Tenders:   tenders,
		Knowledge: knowledge,
		Assets:    assetRepo,
		Sections:  sections,
		Provider:  provider,
		Assembler: promptctx.NewAssembler(cfg.Generation.KnowledgeTextLimit, cfg.Generation.MinKnowledgeChars),
		Bus:       bus,

		DefaultInstructions: cfg.Generation.DocumentInstructions,
	})

	docs := service.NewDocumentService(tenders, documents, sections, orchestrator, bus)
	htmlRenderer := render.NewHTMLRenderer(lowerer)
	docs.RegisterRenderer(render.FormatDOCX, render.NewDocxRenderer(lowerer, assets.NewFetcher(cfg.Asset.FetchTimeout)))
	docs.RegisterRenderer(render.FormatHTML, htmlRenderer)
	if cfg.Export.PDFEnabled {
		docs.RegisterRenderer(render.FormatPDF, render.NewPDFRenderer(htmlRenderer, cfg.Export.ChromeBin, cfg.Export.PDFTimeout))
	}
	app.Documents = docs

	klog.V(6).Infof("[bootstrap.New] 初始化完成: provider=%s, model=%s, formats=%v", cfg.LLM.Provider, cfg.LLM.Model, docs.Formats())
	return app, nil
}
