package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/types"
)

// fake MediaWiki endpoint that routes on the prop/list parameter.
func newWikiTestProvider() (*WikimediaProvider, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch {
		case q.Get("list") == "search":
			w.Write([]byte(`{"query": {"search": [{"pageid": 12345, "title": "Golden Gate Bridge"}]}}`))
		case q.Get("prop") == "pageimages":
			w.Write([]byte(`{"query": {"pages": {"12345": {"pageid": 12345, "thumbnail": {"source": "https://upload.example/thumb.jpg", "width": 640, "height": 480}}}}}`))
		case q.Get("prop") == "images":
			w.Write([]byte(`{"query": {"pages": {"12345": {"pageid": 12345, "images": [{"title": "File:Bridge.jpg"}, {"title": "File:Map.svg"}]}}}}`))
		case q.Get("prop") == "imageinfo":
			w.Write([]byte(`{"query": {"pages": {"-1": {"imageinfo": [{"url": "https://upload.example/full.jpg", "width": 2048, "height": 1365, "mime": "image/jpeg"}]}}}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	p := NewWikimediaProvider(zap.NewNop())
	p.baseURL = srv.URL
	return p, srv
}

func TestWikimediaSearchPage(t *testing.T) {
	p, srv := newWikiTestProvider()
	defer srv.Close()

	pageID, found, err := p.SearchPage(context.Background(), "Golden Gate Bridge")
	if err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if !found || pageID != 12345 {
		t.Errorf("SearchPage = %d found=%v, want 12345", pageID, found)
	}
}

func TestWikimediaSearchPageNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"search": []}}`))
	}))
	defer srv.Close()
	p := NewWikimediaProvider(zap.NewNop())
	p.baseURL = srv.URL

	_, found, err := p.SearchPage(context.Background(), "qqqqzzzz")
	if err != nil {
		t.Fatalf("SearchPage: %v", err)
	}
	if found {
		t.Error("SearchPage reported a match for an empty result")
	}
}

func TestWikimediaThumbnail(t *testing.T) {
	p, srv := newWikiTestProvider()
	defer srv.Close()

	url, err := p.Thumbnail(context.Background(), 12345, 640)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if url != "https://upload.example/thumb.jpg" {
		t.Errorf("Thumbnail = %q", url)
	}
}

func TestWikimediaThumbnailMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"pages": {"12345": {"pageid": 12345}}}}`))
	}))
	defer srv.Close()
	p := NewWikimediaProvider(zap.NewNop())
	p.baseURL = srv.URL

	url, err := p.Thumbnail(context.Background(), 12345, 640)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}
	if url != "" {
		t.Errorf("Thumbnail = %q, want empty for a page with no lead image", url)
	}
}

func TestWikimediaListImages(t *testing.T) {
	p, srv := newWikiTestProvider()
	defer srv.Close()

	titles, err := p.ListImages(context.Background(), 12345)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if len(titles) != 2 || titles[0] != "File:Bridge.jpg" || titles[1] != "File:Map.svg" {
		t.Errorf("ListImages = %v", titles)
	}
}

func TestWikimediaImageInfo(t *testing.T) {
	p, srv := newWikiTestProvider()
	defer srv.Close()

	info, err := p.ImageInfo(context.Background(), "File:Bridge.jpg")
	if err != nil {
		t.Fatalf("ImageInfo: %v", err)
	}
	want := ImageMeta{URL: "https://upload.example/full.jpg", Width: 2048, Height: 1365, Mime: "image/jpeg"}
	if info != want {
		t.Errorf("ImageInfo = %+v, want %+v", info, want)
	}
}

func TestWikimediaImageInfoMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"pages": {"-1": {"title": "File:Gone.jpg"}}}}`))
	}))
	defer srv.Close()
	p := NewWikimediaProvider(zap.NewNop())
	p.baseURL = srv.URL

	if _, err := p.ImageInfo(context.Background(), "File:Gone.jpg"); !types.IsProviderError(err) {
		t.Errorf("ImageInfo = %v, want a provider error", err)
	}
}
