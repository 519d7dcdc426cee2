// Package metrics 定义服务暴露的 prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 生成结果标签值
const (
	ResultSucceeded = "succeeded"
	ResultFailed    = "failed"
)

var (
	SectionGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tender_section_generations_total",
		Help: "Section generations by result",
	}, []string{"result"})

	SectionGenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tender_section_generation_seconds",
		Help:    "Wall time of a single section generation",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
	})

	ProviderRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tender_provider_retries_total",
		Help: "Retries issued against the text generation provider",
	})

	AssetResolutionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tender_asset_resolution_failures_total",
		Help: "Asset references that could not be resolved or fetched",
	})

	Exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tender_exports_total",
		Help: "Rendered document exports by format",
	}, []string{"format"})
)
