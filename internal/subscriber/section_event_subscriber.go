package subscriber

import (
	"context"

	"github.com/opentender/backend/internal/eventbus"
	"github.com/opentender/backend/internal/pkg/metrics"
	"k8s.io/klog/v2"
)

// SectionEventSubscriber 把章节生命周期事件记录到日志和指标
type SectionEventSubscriber struct{}

func NewSectionEventSubscriber() *SectionEventSubscriber {
	return &SectionEventSubscriber{}
}

func (s *SectionEventSubscriber) Register(bus *eventbus.SectionEventBus) {
	if bus == nil {
		return
	}
	bus.Subscribe(eventbus.SectionEventStarted, s.handleStarted)
	bus.Subscribe(eventbus.SectionEventGenerated, s.handleGenerated)
	bus.Subscribe(eventbus.SectionEventFailed, s.handleFailed)
	bus.Subscribe(eventbus.SectionEventRetried, s.handleRetried)
	bus.Subscribe(eventbus.SectionEventExported, s.handleExported)
}

func (s *SectionEventSubscriber) handleStarted(ctx context.Context, event eventbus.SectionEvent) error {
	klog.V(6).Infof("章节开始生成: docID=%d, section=%s", event.DocumentID, event.SectionKey)
	return nil
}

func (s *SectionEventSubscriber) handleGenerated(ctx context.Context, event eventbus.SectionEvent) error {
	metrics.SectionGenerations.WithLabelValues(metrics.ResultSucceeded).Inc()
	metrics.SectionGenerationDuration.Observe(event.Duration.Seconds())
	klog.V(6).Infof("章节生成成功: docID=%d, section=%s, duration=%v", event.DocumentID, event.SectionKey, event.Duration)
	return nil
}

func (s *SectionEventSubscriber) handleFailed(ctx context.Context, event eventbus.SectionEvent) error {
	metrics.SectionGenerations.WithLabelValues(metrics.ResultFailed).Inc()
	metrics.SectionGenerationDuration.Observe(event.Duration.Seconds())
	klog.Errorf("章节生成失败: docID=%d, section=%s, error=%v", event.DocumentID, event.SectionKey, event.Err)
	return nil
}

func (s *SectionEventSubscriber) handleRetried(ctx context.Context, event eventbus.SectionEvent) error {
	metrics.ProviderRetries.Inc()
	klog.Warningf("生成服务重试: attempt=%d, error=%v", event.Attempt, event.Err)
	return nil
}

func (s *SectionEventSubscriber) handleExported(ctx context.Context, event eventbus.SectionEvent) error {
	metrics.Exports.WithLabelValues(event.Format).Inc()
	klog.V(6).Infof("文档导出: docID=%d, format=%s", event.DocumentID, event.Format)
	return nil
}
