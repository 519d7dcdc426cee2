package llm

import (
	"context"
	"errors"
	"time"

	"k8s.io/klog/v2"
)

const (
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 2 * time.Second
)

// RetryingProvider 在底层后端之上增加重试、退避、单次超时和输出 token 限制
type RetryingProvider struct {
	backend      Provider
	name         string
	defaultModel string
	maxTokens    int
	maxAttempts  int
	backoff      time.Duration
	timeout      time.Duration

	// sleep 可在测试中替换
	sleep func(ctx context.Context, d time.Duration) error
	// OnRetry 每次决定重试时回调，attempt 为刚失败的尝试序号
	OnRetry func(attempt int, err *ProviderError)
}

// RetryOptions 重试参数，零值使用默认值
type RetryOptions struct {
	Name         string
	DefaultModel string
	// MaxTokens 请求未指定时后端使用的输出 token 数
	MaxTokens   int
	MaxAttempts int
	Backoff     time.Duration
	Timeout     time.Duration
}

// NewRetryingProvider 包装后端
func NewRetryingProvider(backend Provider, opts RetryOptions) *RetryingProvider {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Backoff <= 0 {
		opts.Backoff = defaultRetryBackoff
	}
	return &RetryingProvider{
		backend:      backend,
		name:         opts.Name,
		defaultModel: opts.DefaultModel,
		maxTokens:    opts.MaxTokens,
		maxAttempts:  opts.MaxAttempts,
		backoff:      opts.Backoff,
		timeout:      opts.Timeout,
		sleep:        sleepContext,
	}
}

// Complete 实现 Provider 接口
func (p *RetryingProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = p.maxTokens
	}
	if req.MaxTokens > 0 {
		clamped := ClampMaxTokens(model, req.MaxTokens)
		if clamped != req.MaxTokens {
			klog.V(6).Infof("[llm.Complete] 输出 token 超过模型上限，已限制: model=%s, requested=%d, clamped=%d", model, req.MaxTokens, clamped)
		}
		req.MaxTokens = clamped
	}

	var lastErr *ProviderError
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		resp, err := p.attempt(ctx, req)
		if err == nil {
			if attempt > 1 {
				klog.V(6).Infof("[llm.Complete] 第 %d 次尝试成功: provider=%s, model=%s", attempt, p.name, model)
			}
			return resp, nil
		}

		lastErr = asProviderError(err, p.name, model)
		lastErr.Attempts = attempt
		if !lastErr.Retryable() || attempt == p.maxAttempts {
			break
		}

		wait := p.backoff << (attempt - 1)
		klog.Warningf("[llm.Complete] 第 %d 次尝试失败，%v 后重试: %v", attempt, wait, lastErr)
		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}
		if err := p.sleep(ctx, wait); err != nil {
			lastErr.Err = errors.Join(lastErr.Err, err)
			break
		}
	}

	klog.Errorf("[llm.Complete] 生成失败: %v", lastErr)
	return nil, lastErr
}

func (p *RetryingProvider) attempt(ctx context.Context, req Request) (*Response, error) {
	if p.timeout <= 0 {
		return p.backend.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.backend.Complete(attemptCtx, req)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		pe := asProviderError(err, p.name, req.Model)
		pe.Kind = KindTimeout
		return nil, pe
	}
	return resp, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
