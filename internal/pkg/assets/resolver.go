// Package assets 把文档中的图片引用解析为可访问的地址或字节内容
package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/opentender/backend/internal/model"
	"github.com/opentender/backend/internal/pkg/metrics"
	"github.com/opentender/backend/internal/repository"
	"k8s.io/klog/v2"
)

// ErrAssetNotFound 素材库中不存在该 ID
var ErrAssetNotFound = errors.New("asset not found")

// Reference 解析后的图片引用
type Reference struct {
	ID   string
	URL  string
	Name string
}

// Resolver 根据素材 ID 解析图片引用
type Resolver interface {
	Resolve(ctx context.Context, id string) (Reference, error)
}

// URLSigner 根据对象 key 生成可访问地址
type URLSigner interface {
	URL(ctx context.Context, objectKey string) (string, error)
}

// ResolutionError 单个素材解析失败
type ResolutionError struct {
	ID  string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve asset %s: %v", e.ID, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// CatalogResolver 查素材表，再通过对象存储生成地址
type CatalogResolver struct {
	repo   repository.AssetRepository
	signer URLSigner
}

// NewCatalogResolver 创建解析器
func NewCatalogResolver(repo repository.AssetRepository, signer URLSigner) *CatalogResolver {
	return &CatalogResolver{repo: repo, signer: signer}
}

// Resolve 实现 Resolver 接口
func (r *CatalogResolver) Resolve(ctx context.Context, id string) (Reference, error) {
	asset, err := r.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = ErrAssetNotFound
		}
		return Reference{}, r.fail(id, err)
	}

	url, err := r.signer.URL(ctx, objectKey(asset))
	if err != nil {
		return Reference{}, r.fail(id, err)
	}

	klog.V(6).Infof("[assets.Resolve] 素材解析成功: id=%s, name=%s", id, asset.Name)
	return Reference{ID: id, URL: url, Name: asset.Name}, nil
}

func (r *CatalogResolver) fail(id string, err error) error {
	metrics.AssetResolutionFailures.Inc()
	klog.Warningf("[assets.Resolve] 素材解析失败: id=%s, error=%v", id, err)
	return &ResolutionError{ID: id, Err: err}
}

func objectKey(asset *model.Asset) string {
	if asset.ObjectKey != "" {
		return asset.ObjectKey
	}
	return asset.ID
}
