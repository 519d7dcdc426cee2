// Package generation 调度章节内容生成：单章节生成与全量并发生成
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opentender/backend/internal/domain"
	"github.com/opentender/backend/internal/eventbus"
	"github.com/opentender/backend/internal/model"
	"github.com/opentender/backend/internal/pkg/llm"
	"github.com/opentender/backend/internal/repository"
	"github.com/opentender/backend/internal/service/promptctx"
	"github.com/opentender/backend/internal/service/statemachine"
	"github.com/opentender/backend/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"k8s.io/klog/v2"
)

// -----------------------------
// 错误定义
// -----------------------------
var (
	ErrGenerationInProgress = errors.New("section generation already in progress")
)

// -----------------------------
// 选项与结果
// -----------------------------

// Options 控制提示词内容和全量生成范围
type Options struct {
	UseTender    bool
	UseKnowledge bool
	// Regenerate 为 true 时全量生成覆盖所有启用章节，否则只处理空内容或失败的章节
	Regenerate bool
}

// DefaultOptions 默认带上招标信息和知识库
func DefaultOptions() Options {
	return Options{UseTender: true, UseKnowledge: true}
}

// Summary 一次全量生成的结果计数
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Dependencies 调度器依赖的协作者
type Dependencies struct {
	Tenders   repository.TenderRepository
	Knowledge repository.KnowledgeRepository
	Assets    repository.AssetRepository
	Sections  repository.SectionRepository
	Provider  llm.Provider
	Assembler *promptctx.Assembler
	Store     *Store
	Bus       *eventbus.SectionEventBus
	// DefaultInstructions 文档未设置指令时使用
	DefaultInstructions string
}

// -----------------------------
// Orchestrator
// -----------------------------
type Orchestrator struct {
	deps  Dependencies
	sm    *statemachine.SectionStateMachine
	group singleflight.Group
	now   func() time.Time
}

func NewOrchestrator(deps Dependencies) *Orchestrator {
	if deps.Assembler == nil {
		deps.Assembler = promptctx.NewAssembler(0, 0)
	}
	if deps.Store == nil {
		deps.Store = NewStore()
	}
	return &Orchestrator{
		deps: deps,
		sm:   statemachine.NewSectionStateMachine(),
		now:  time.Now,
	}
}

// Store 返回内存章节目录
func (o *Orchestrator) Store() *Store {
	return o.deps.Store
}

// generationContext 一次生成所需的外部数据，全量生成时所有章节共用
type generationContext struct {
	tender    *model.Tender
	knowledge []model.KnowledgeFile
	assets    []model.Asset
}

// -----------------------------
// 单章节生成
// -----------------------------

// GenerateOne 生成单个章节；同一章节的并发调用合并为一次生成
func (o *Orchestrator) GenerateOne(ctx context.Context, docID uint, key string, opts Options) (string, error) {
	flightKey := fmt.Sprintf("%d/%s", docID, key)
	v, err, shared := o.group.Do(flightKey, func() (interface{}, error) {
		return o.generateOne(context.WithoutCancel(ctx), docID, key, opts)
	})
	if shared {
		klog.V(6).Infof("[generation.GenerateOne] 合并到进行中的生成: %s", flightKey)
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (o *Orchestrator) generateOne(ctx context.Context, docID uint, key string, opts Options) (string, error) {
	section, err := o.markGenerating(ctx, docID, key)
	if err != nil {
		return "", err
	}
	doc, _ := o.deps.Store.Get(docID)
	started := o.now()

	gc, err := o.loadContext(ctx, doc, opts)
	if err != nil {
		o.markFailed(ctx, docID, section, started, err)
		return "", err
	}
	return o.settle(ctx, doc, section, gc, opts, started)
}

// settle 生成并持久化一个已处于 generating 的章节，结束时写入 generated 或 failed
func (o *Orchestrator) settle(ctx context.Context, doc domain.Document, section domain.Section, gc *generationContext, opts Options, started time.Time) (string, error) {
	content, err := o.produce(ctx, doc, section, gc, opts)
	if err != nil {
		o.markFailed(ctx, doc.ID, section, started, err)
		return "", err
	}

	section.Content = content
	if err := o.deps.Sections.Save(ctx, doc.ID, section); err != nil {
		err = fmt.Errorf("persist section %s: %w", section.Key, err)
		o.markFailed(ctx, doc.ID, section, started, err)
		return "", err
	}

	o.markGenerated(ctx, doc.ID, section, started)
	return content, nil
}

// -----------------------------
// 全量生成
// -----------------------------

// GenerateAll 选出待生成的启用章节，全部置为 generating 后并发生成
// 每个任务独立完成自己章节的生成、落库和状态更新，单个章节失败或变慢不影响其它章节
func (o *Orchestrator) GenerateAll(ctx context.Context, docID uint, opts Options) (Summary, error) {
	doc, ok := o.deps.Store.Get(docID)
	if !ok {
		return Summary{}, domain.ErrDocumentNotFound
	}
	ctx = context.WithoutCancel(ctx)

	var claimed []domain.Section
	for _, s := range doc.Sections {
		if !eligible(s, opts.Regenerate) {
			continue
		}
		sec, err := o.markGenerating(ctx, docID, s.Key)
		if err != nil {
			klog.V(6).Infof("[generation.GenerateAll] 跳过章节 %s: %v", s.Key, err)
			continue
		}
		claimed = append(claimed, sec)
	}
	if len(claimed) == 0 {
		klog.V(6).Infof("[generation.GenerateAll] 没有需要生成的章节: docID=%d", docID)
		return Summary{}, nil
	}
	keys := make([]string, 0, len(claimed))
	for _, sec := range claimed {
		keys = append(keys, sec.Key)
	}
	klog.V(6).Infof("[generation.GenerateAll] 开始并发生成: docID=%d, sections=%s", docID, utils.ToJSON(keys))

	started := o.now()
	gc, ctxErr := o.loadContext(ctx, doc, opts)

	var (
		mu      sync.Mutex
		summary Summary
	)
	var g errgroup.Group
	for _, sec := range claimed {
		g.Go(func() error {
			var err error
			if ctxErr != nil {
				err = ctxErr
				o.markFailed(ctx, docID, sec, started, err)
			} else {
				_, err = o.settle(ctx, doc, sec, gc, opts, started)
			}
			mu.Lock()
			if err != nil {
				summary.Failed++
			} else {
				summary.Succeeded++
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	klog.V(6).Infof("[generation.GenerateAll] 生成结束: docID=%d, succeeded=%d, failed=%d", docID, summary.Succeeded, summary.Failed)
	return summary, nil
}

// eligible 全量生成的章节选择规则
func eligible(s domain.Section, regenerate bool) bool {
	if !s.Enabled || s.State == domain.StateGenerating {
		return false
	}
	if regenerate {
		return true
	}
	return !s.HasContent() || s.State == domain.StateFailed
}

// -----------------------------
// 生成步骤
// -----------------------------

func (o *Orchestrator) loadContext(ctx context.Context, doc domain.Document, opts Options) (*generationContext, error) {
	gc := &generationContext{}
	var (
		mu   sync.Mutex
		errs []error
	)
	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var g errgroup.Group
	if opts.UseTender && o.deps.Tenders != nil && doc.TenderID != 0 {
		g.Go(func() error {
			tender, err := o.deps.Tenders.Get(ctx, doc.TenderID)
			if err != nil {
				record(fmt.Errorf("load tender %d: %w", doc.TenderID, err))
				return nil
			}
			gc.tender = tender
			return nil
		})
	}
	if opts.UseKnowledge && o.deps.Knowledge != nil {
		g.Go(func() error {
			files, err := o.deps.Knowledge.ListCompleted(ctx)
			if err != nil {
				record(fmt.Errorf("load knowledge base: %w", err))
				return nil
			}
			gc.knowledge = files
			return nil
		})
	}
	if o.deps.Assets != nil {
		g.Go(func() error {
			assets, err := o.deps.Assets.ListDescribed(ctx)
			if err != nil {
				record(fmt.Errorf("load image library: %w", err))
				return nil
			}
			gc.assets = assets
			return nil
		})
	}
	g.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return gc, nil
}

func (o *Orchestrator) produce(ctx context.Context, doc domain.Document, section domain.Section, gc *generationContext, opts Options) (string, error) {
	prompt := o.deps.Assembler.Assemble(promptctx.Input{
		BaseInstructions: promptctx.BaseInstructions(o.documentInstructions(doc), section),
		SectionTitle:     section.Title,
		Tender:           gc.tender,
		Knowledge:        gc.knowledge,
		Assets:           gc.assets,
		UseTender:        opts.UseTender,
		UseKnowledge:     opts.UseKnowledge,
	})

	resp, err := o.deps.Provider.Complete(ctx, llm.Request{Prompt: prompt})
	if err != nil {
		return "", err
	}

	content := utils.ExtractMarkdown(resp.Text)
	if content == "" {
		return "", &llm.ProviderError{Kind: llm.KindMalformed, Err: llm.ErrEmptyResponse}
	}
	return content, nil
}

// -----------------------------
// 状态迁移
// -----------------------------

func (o *Orchestrator) markGenerating(ctx context.Context, docID uint, key string) (domain.Section, error) {
	sec, err := o.deps.Store.Update(docID, key, func(cur domain.Section) (domain.Section, error) {
		if cur.State == domain.StateGenerating {
			return cur, ErrGenerationInProgress
		}
		if err := o.sm.Transition(cur.State, domain.StateGenerating, docID, key); err != nil {
			return cur, err
		}
		next := cur
		next.State = domain.StateGenerating
		next.Error = ""
		return next, nil
	})
	if err != nil {
		return domain.Section{}, err
	}
	o.publish(ctx, eventbus.SectionEvent{Type: eventbus.SectionEventStarted, DocumentID: docID, SectionKey: key})
	return sec, nil
}

func (o *Orchestrator) markGenerated(ctx context.Context, docID uint, section domain.Section, started time.Time) {
	_, err := o.deps.Store.Update(docID, section.Key, func(cur domain.Section) (domain.Section, error) {
		if err := o.sm.Transition(cur.State, domain.StateGenerated, docID, section.Key); err != nil {
			return cur, err
		}
		next := cur
		next.Content = section.Content
		next.State = domain.StateGenerated
		next.Error = ""
		return next, nil
	})
	if err != nil {
		klog.Errorf("[generation.markGenerated] 更新章节状态失败: docID=%d, section=%s, error=%v", docID, section.Key, err)
	}
	o.publish(ctx, eventbus.SectionEvent{
		Type:       eventbus.SectionEventGenerated,
		DocumentID: docID,
		SectionKey: section.Key,
		Duration:   o.now().Sub(started),
	})
}

// markFailed 失败时在内容位置写入可见的占位说明；占位内容不落库
func (o *Orchestrator) markFailed(ctx context.Context, docID uint, section domain.Section, started time.Time, cause error) {
	_, err := o.deps.Store.Update(docID, section.Key, func(cur domain.Section) (domain.Section, error) {
		if err := o.sm.Transition(cur.State, domain.StateFailed, docID, section.Key); err != nil {
			return cur, err
		}
		next := cur
		next.Content = FailurePlaceholder(cur.Title, cause)
		next.State = domain.StateFailed
		next.Error = cause.Error()
		return next, nil
	})
	if err != nil {
		klog.Errorf("[generation.markFailed] 更新章节状态失败: docID=%d, section=%s, error=%v", docID, section.Key, err)
	}
	o.publish(ctx, eventbus.SectionEvent{
		Type:       eventbus.SectionEventFailed,
		DocumentID: docID,
		SectionKey: section.Key,
		Duration:   o.now().Sub(started),
		Err:        cause,
	})
}

func (o *Orchestrator) documentInstructions(doc domain.Document) string {
	if strings.TrimSpace(doc.Instructions) != "" {
		return doc.Instructions
	}
	return o.deps.DefaultInstructions
}

// FailurePlaceholder 生成失败时显示在章节内容位置的说明
func FailurePlaceholder(title string, cause error) string {
	msg := "unknown error"
	if cause != nil {
		msg = strings.TrimSpace(cause.Error())
	}
	return fmt.Sprintf("> **Generation failed for \"%s\"**\n>\n> %s\n>\n> Regenerate this section to try again.",
		domain.StripNumberPrefix(title), strings.ReplaceAll(msg, "\n", " "))
}

func (o *Orchestrator) publish(ctx context.Context, event eventbus.SectionEvent) {
	if o.deps.Bus == nil {
		return
	}
	if err := o.deps.Bus.Publish(ctx, event); err != nil {
		klog.Warningf("[generation.publish] 事件处理失败: type=%s, error=%v", event.Type, err)
	}
}
