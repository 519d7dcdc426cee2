package assets

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/opentender/backend/config"
	"github.com/opentender/backend/internal/model"
	"github.com/opentender/backend/internal/repository"
)

type fakeAssetRepo struct {
	assets map[string]model.Asset
}

func (r *fakeAssetRepo) Create(ctx context.Context, asset *model.Asset) error {
	r.assets[asset.ID] = *asset
	return nil
}

func (r *fakeAssetRepo) Get(ctx context.Context, id string) (*model.Asset, error) {
	a, ok := r.assets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *fakeAssetRepo) ListDescribed(ctx context.Context) ([]model.Asset, error) {
	return nil, nil
}

func TestCatalogResolverResolve(t *testing.T) {
	repo := &fakeAssetRepo{assets: map[string]model.Asset{
		"a1": {ID: "a1", Name: "Organigramme", ObjectKey: "org/chart.png"},
		"a2": {ID: "a2", Name: "Sans clé"},
	}}
	resolver := NewCatalogResolver(repo, StaticSigner{BaseURL: "https://cdn.example.com/assets/"})

	ref, err := resolver.Resolve(context.Background(), "a1")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if ref.URL != "https://cdn.example.com/assets/org/chart.png" || ref.Name != "Organigramme" {
		t.Fatalf("unexpected reference: %+v", ref)
	}

	ref, err = resolver.Resolve(context.Background(), "a2")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if ref.URL != "https://cdn.example.com/assets/a2" {
		t.Fatalf("expected id as object key, got %s", ref.URL)
	}
}

func TestCatalogResolverNotFound(t *testing.T) {
	resolver := NewCatalogResolver(&fakeAssetRepo{assets: map[string]model.Asset{}}, StaticSigner{BaseURL: "https://cdn"})

	_, err := resolver.Resolve(context.Background(), "missing")
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("expected ErrAssetNotFound, got %v", err)
	}
	var re *ResolutionError
	if !errors.As(err, &re) || re.ID != "missing" {
		t.Fatalf("expected ResolutionError for missing, got %v", err)
	}
}

func TestCatalogResolverSignerFailure(t *testing.T) {
	repo := &fakeAssetRepo{assets: map[string]model.Asset{"a1": {ID: "a1"}}}
	resolver := NewCatalogResolver(repo, StaticSigner{})

	if _, err := resolver.Resolve(context.Background(), "a1"); err == nil {
		t.Fatal("expected error without base url")
	}
}

func TestMinioStorePublicURL(t *testing.T) {
	store, err := NewMinioStore(config.AssetConfig{
		Endpoint:      "localhost:9000",
		Bucket:        "assets",
		PublicBaseURL: "https://static.example.com/assets",
	})
	if err != nil {
		t.Fatalf("NewMinioStore error: %v", err)
	}
	url, err := store.URL(context.Background(), "/team/photo.jpg")
	if err != nil {
		t.Fatalf("URL error: %v", err)
	}
	if url != "https://static.example.com/assets/team/photo.jpg" {
		t.Fatalf("unexpected url: %s", url)
	}
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFetcherFetch(t *testing.T) {
	data := pngBytes(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write(data)
		case "/page":
			w.Write([]byte("<html><body>not an image</body></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewFetcher(time.Second)
	img, err := f.Fetch(context.Background(), server.URL+"/ok.png")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if img.ContentType != "image/png" || img.Extension != ".png" {
		t.Fatalf("unexpected detection: %s %s", img.ContentType, img.Extension)
	}
	if !bytes.Equal(img.Data, data) {
		t.Fatal("data mismatch")
	}

	if _, err := f.Fetch(context.Background(), server.URL+"/page"); err == nil {
		t.Fatal("expected html to be rejected")
	}
	if _, err := f.Fetch(context.Background(), server.URL+"/missing"); err == nil {
		t.Fatal("expected 404 to fail")
	}
}

func TestFetcherTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	if _, err := NewFetcher(50*time.Millisecond).Fetch(context.Background(), server.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}
