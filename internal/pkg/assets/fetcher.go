package assets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/opentender/backend/internal/pkg/metrics"
	"k8s.io/klog/v2"
)

// 单张图片最大字节数
const maxImageBytes = 20 << 20

// Image 下载到的图片内容
type Image struct {
	Data        []byte
	ContentType string
	Extension   string
}

// Fetcher 下载图片字节，供需要内嵌图片的输出格式使用
type Fetcher struct {
	client *http.Client
}

// NewFetcher 创建下载器，timeout 为单次下载超时
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch 下载并识别图片类型，非图片内容视为失败
func (f *Fetcher) Fetch(ctx context.Context, url string) (*Image, error) {
	img, err := f.fetch(ctx, url)
	if err != nil {
		metrics.AssetResolutionFailures.Inc()
		klog.Warningf("[assets.Fetch] 图片下载失败: url=%s, error=%v", url, err)
		return nil, err
	}
	return img, nil
}

func (f *Fetcher) fetch(ctx context.Context, url string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, fmt.Errorf("unsupported content type %s", mtype.String())
	}

	return &Image{
		Data:        data,
		ContentType: mtype.String(),
		Extension:   mtype.Extension(),
	}, nil
}
