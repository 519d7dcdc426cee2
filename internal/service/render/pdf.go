package render

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/opentender/backend/internal/domain"
	"k8s.io/klog/v2"
)

// PDFRenderer 先生成打印 HTML，再交给无头 Chrome 打印
type PDFRenderer struct {
	html    *HTMLRenderer
	bin     string
	timeout time.Duration
}

// NewPDFRenderer bin 为空时使用 rod 自带的浏览器查找逻辑
func NewPDFRenderer(html *HTMLRenderer, bin string, timeout time.Duration) *PDFRenderer {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &PDFRenderer{html: html, bin: bin, timeout: timeout}
}

// Render 实现 Renderer 接口
func (r *PDFRenderer) Render(ctx context.Context, doc domain.Document) ([]byte, error) {
	page, err := r.html.Render(ctx, doc)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	l := launcher.New().Headless(true)
	if r.bin != "" {
		l = l.Bin(r.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect chrome: %w", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			klog.Warningf("[render.PDF] 关闭浏览器失败: %v", err)
		}
	}()

	tab, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	if err := tab.SetDocumentContent(string(page)); err != nil {
		return nil, fmt.Errorf("load html: %w", err)
	}
	if err := tab.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	stream, err := tab.PDF(&proto.PagePrintToPDF{
		PrintBackground:   true,
		PreferCSSPageSize: true,
	})
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read pdf stream: %w", err)
	}
	klog.V(6).Infof("[render.PDF] 打印完成: docID=%d, bytes=%d", doc.ID, len(data))
	return data, nil
}
