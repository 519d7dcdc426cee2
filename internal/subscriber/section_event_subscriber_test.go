package subscriber

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opentender/backend/internal/eventbus"
	"github.com/opentender/backend/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSectionEventSubscriberUpdatesMetrics(t *testing.T) {
	bus := eventbus.NewSectionEventBus()
	NewSectionEventSubscriber().Register(bus)
	ctx := context.Background()

	succeeded := testutil.ToFloat64(metrics.SectionGenerations.WithLabelValues(metrics.ResultSucceeded))
	failed := testutil.ToFloat64(metrics.SectionGenerations.WithLabelValues(metrics.ResultFailed))
	retries := testutil.ToFloat64(metrics.ProviderRetries)
	docx := testutil.ToFloat64(metrics.Exports.WithLabelValues("docx"))

	events := []eventbus.SectionEvent{
		{Type: eventbus.SectionEventStarted, DocumentID: 1, SectionKey: "team"},
		{Type: eventbus.SectionEventGenerated, DocumentID: 1, SectionKey: "team", Duration: time.Second},
		{Type: eventbus.SectionEventFailed, DocumentID: 1, SectionKey: "quality", Err: errors.New("boom")},
		{Type: eventbus.SectionEventRetried, Attempt: 1, Err: errors.New("429")},
		{Type: eventbus.SectionEventExported, DocumentID: 1, Format: "docx"},
	}
	for _, e := range events {
		if err := bus.Publish(ctx, e); err != nil {
			t.Fatalf("publish %s: %v", e.Type, err)
		}
	}

	if got := testutil.ToFloat64(metrics.SectionGenerations.WithLabelValues(metrics.ResultSucceeded)); got != succeeded+1 {
		t.Fatalf("expected succeeded counter +1, got %v -> %v", succeeded, got)
	}
	if got := testutil.ToFloat64(metrics.SectionGenerations.WithLabelValues(metrics.ResultFailed)); got != failed+1 {
		t.Fatalf("expected failed counter +1, got %v -> %v", failed, got)
	}
	if got := testutil.ToFloat64(metrics.ProviderRetries); got != retries+1 {
		t.Fatalf("expected retries counter +1, got %v -> %v", retries, got)
	}
	if got := testutil.ToFloat64(metrics.Exports.WithLabelValues("docx")); got != docx+1 {
		t.Fatalf("expected docx exports +1, got %v -> %v", docx, got)
	}
}
