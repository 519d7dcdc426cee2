package markdown

import (
	"context"
	"fmt"
	"html"
	"regexp"

	"github.com/opentender/backend/internal/pkg/assets"
)

var assetMarkerPattern = regexp.MustCompile(`!\[([^\]]*)\]\(asset:([A-Za-z0-9_\-]+)\)`)

// UnavailableImage 素材无法解析时写入正文的提示文本
func UnavailableImage(id string) string {
	return fmt.Sprintf("[image unavailable: %s]", id)
}

// Lowerer 先解析素材引用，再做块级转换
type Lowerer struct {
	resolver assets.Resolver
}

// NewLowerer resolver 可以为 nil，此时所有素材引用都输出为不可用提示
func NewLowerer(resolver assets.Resolver) *Lowerer {
	return &Lowerer{resolver: resolver}
}

// Lower 转换一个章节的内容；实体先于素材引用解码，解析出的地址保持原样
func (l *Lowerer) Lower(ctx context.Context, content string) []Block {
	resolved, ids := l.resolveMarkers(ctx, html.UnescapeString(content))
	return parse(resolved, ids)
}

// resolveMarkers 把 ![alt](asset:ID) 替换为真实地址，返回地址到素材 ID 的映射
func (l *Lowerer) resolveMarkers(ctx context.Context, content string) (string, map[string]string) {
	ids := make(map[string]string)
	cache := make(map[string]*assets.Reference)

	out := assetMarkerPattern.ReplaceAllStringFunc(content, func(marker string) string {
		m := assetMarkerPattern.FindStringSubmatch(marker)
		alt, id := m[1], m[2]

		ref, ok := cache[id]
		if !ok {
			if l.resolver != nil {
				if r, err := l.resolver.Resolve(ctx, id); err == nil {
					ref = &r
					ids[r.URL] = id
				}
			}
			cache[id] = ref
		}
		if ref == nil {
			return UnavailableImage(id)
		}
		if alt == "" {
			alt = ref.Name
		}
		return fmt.Sprintf("![%s](%s)", alt, ref.URL)
	})
	return out, ids
}
