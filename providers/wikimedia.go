package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/types"
)

const wikimediaBaseURL = "https://en.wikipedia.org/w/api.php"

// WikimediaProvider implements ImageProvider against the MediaWiki action
// API.
type WikimediaProvider struct {
	baseURL string
	client  *http.Client
	log     *zap.Logger
}

var _ ImageProvider = (*WikimediaProvider)(nil)

func NewWikimediaProvider(log *zap.Logger) *WikimediaProvider {
	return &WikimediaProvider{
		baseURL: wikimediaBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (p *WikimediaProvider) SearchPage(ctx context.Context, title string) (int64, bool, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "search")
	params.Set("srsearch", title)
	params.Set("srlimit", "1")
	params.Set("format", "json")

	var decoded types.WikiQueryResponse
	if err := p.get(ctx, params, &decoded); err != nil {
		return 0, false, err
	}
	if len(decoded.Query.Search) == 0 {
		return 0, false, nil
	}
	return decoded.Query.Search[0].PageID, true, nil
}

func (p *WikimediaProvider) Thumbnail(ctx context.Context, pageID int64, size int) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "pageimages")
	params.Set("pageids", strconv.FormatInt(pageID, 10))
	params.Set("pithumbsize", strconv.Itoa(size))
	params.Set("format", "json")

	var decoded types.WikiQueryResponse
	if err := p.get(ctx, params, &decoded); err != nil {
		return "", err
	}
	page, ok := decoded.Query.Pages[strconv.FormatInt(pageID, 10)]
	if !ok || page.Thumbnail == nil {
		return "", nil
	}
	return page.Thumbnail.Source, nil
}

func (p *WikimediaProvider) ListImages(ctx context.Context, pageID int64) ([]string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "images")
	params.Set("pageids", strconv.FormatInt(pageID, 10))
	params.Set("imlimit", "50")
	params.Set("format", "json")

	var decoded types.WikiQueryResponse
	if err := p.get(ctx, params, &decoded); err != nil {
		return nil, err
	}
	page, ok := decoded.Query.Pages[strconv.FormatInt(pageID, 10)]
	if !ok {
		return nil, nil
	}
	titles := make([]string, 0, len(page.Images))
	for _, img := range page.Images {
		titles = append(titles, img.Title)
	}
	return titles, nil
}

func (p *WikimediaProvider) ImageInfo(ctx context.Context, fileTitle string) (ImageMeta, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "imageinfo")
	params.Set("titles", fileTitle)
	params.Set("iiprop", "url|size|mime")
	params.Set("format", "json")

	var decoded types.WikiQueryResponse
	if err := p.get(ctx, params, &decoded); err != nil {
		return ImageMeta{}, err
	}
	for _, page := range decoded.Query.Pages {
		if len(page.ImageInfo) > 0 {
			info := page.ImageInfo[0]
			return ImageMeta{URL: info.URL, Width: info.Width, Height: info.Height, Mime: info.Mime}, nil
		}
	}
	return ImageMeta{}, types.NewProviderError("wikimedia", "missing imageinfo for "+fileTitle, nil)
}

func (p *WikimediaProvider) get(ctx context.Context, params url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return types.NewProviderError("wikimedia", "build request", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return types.NewProviderError("wikimedia", "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.NewProviderError("wikimedia", fmt.Sprintf("status %d", resp.StatusCode), nil)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewProviderError("wikimedia", "decode response", err)
	}
	return nil
}
