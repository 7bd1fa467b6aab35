package services

import (
	"context"
	"path"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/landmark-scout/api-go/providers"
	"github.com/landmark-scout/api-go/types"
)

// Image acceptance bounds.
const (
	minImageDim    = 100
	maxAspectRatio = 3.0
	thumbnailSize  = 640
)

// Filename substrings that mark icons and other non-photos.
var rejectedNameParts = []string{"icon", "logo", "map", "diagram", "symbol"}

// ImageResolver finds one presentable photo per landmark name. Terminal
// outcomes, a URL or a definitive "no image", are cached in memory;
// transient provider failures are not, so a later call retries. Provider
// hits share a minimum-spacing throttle across all callers.
type ImageResolver struct {
	provider providers.ImageProvider
	mirror   *ImageMirror
	log      *zap.Logger
	interval time.Duration

	mu      sync.Mutex
	results map[string]string
	next    time.Time
}

// NewImageResolver builds a resolver. mirror may be nil, in which case
// source URLs are returned directly.
func NewImageResolver(provider providers.ImageProvider, mirror *ImageMirror, interval time.Duration, log *zap.Logger) *ImageResolver {
	return &ImageResolver{
		provider: provider,
		mirror:   mirror,
		log:      log,
		interval: interval,
		results:  make(map[string]string),
	}
}

// Resolve returns an image URL for the landmark, "" when no suitable image
// exists, or an error on transient provider failure. The empty answer is
// terminal and cached; errors are not.
func (r *ImageResolver) Resolve(ctx context.Context, name string) (string, error) {
	key := normalizeName(name)
	if key == "" {
		return "", types.ErrInvalidInput
	}

	r.mu.Lock()
	cached, ok := r.results[key]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	url, err := r.lookup(ctx, name)
	if err != nil {
		return "", err
	}

	if url != "" && r.mirror != nil {
		if mirrored, merr := r.mirror.Mirror(ctx, url); merr != nil {
			r.log.Warn("image mirror failed", zap.String("name", name), zap.Error(merr))
		} else {
			url = mirrored
		}
	}

	r.mu.Lock()
	r.results[key] = url
	r.mu.Unlock()
	return url, nil
}

func (r *ImageResolver) lookup(ctx context.Context, name string) (string, error) {
	if err := r.throttle(ctx); err != nil {
		return "", err
	}
	pageID, found, err := r.provider.SearchPage(ctx, name)
	if err != nil {
		return "", err
	}
	if !found {
		return "", nil
	}

	if err := r.throttle(ctx); err != nil {
		return "", err
	}
	thumb, err := r.provider.Thumbnail(ctx, pageID, thumbnailSize)
	if err != nil {
		return "", err
	}
	if thumb != "" && !rejectedFilename(thumb) {
		return thumb, nil
	}

	if err := r.throttle(ctx); err != nil {
		return "", err
	}
	titles, err := r.provider.ListImages(ctx, pageID)
	if err != nil {
		return "", err
	}

	for _, title := range titles {
		if rejectedFilename(title) {
			r.log.Debug("image rejected by name", zap.String("file", title))
			continue
		}
		if err := r.throttle(ctx); err != nil {
			return "", err
		}
		info, err := r.provider.ImageInfo(ctx, title)
		if err != nil {
			return "", err
		}
		if reason := rejectMeta(info); reason != "" {
			r.log.Debug("image rejected",
				zap.String("file", title),
				zap.String("reason", reason))
			continue
		}
		return info.URL, nil
	}
	return "", nil
}

// throttle reserves the next provider slot and waits for it. The spacing
// is shared across concurrent resolves.
func (r *ImageResolver) throttle(ctx context.Context) error {
	r.mu.Lock()
	now := time.Now()
	wait := r.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	r.next = now.Add(wait + r.interval)
	r.mu.Unlock()

	if wait == 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// rejectedFilename filters vector and animated formats plus obvious
// non-photos by name.
func rejectedFilename(name string) bool {
	lower := strings.ToLower(name)
	switch path.Ext(lower) {
	case ".svg", ".gif":
		return true
	}
	for _, part := range rejectedNameParts {
		if strings.Contains(lower, part) {
			return true
		}
	}
	return false
}

// rejectMeta applies the dimension and aspect gates. An empty reason means
// the image is acceptable.
func rejectMeta(info providers.ImageMeta) string {
	if strings.Contains(info.Mime, "svg") || strings.Contains(info.Mime, "gif") {
		return "vector or animated format"
	}
	if info.Width < minImageDim || info.Height < minImageDim {
		return "too small"
	}
	if info.Width == info.Height {
		return "square"
	}
	ratio := float64(info.Width) / float64(info.Height)
	if ratio >= maxAspectRatio || ratio <= 1.0/maxAspectRatio {
		return "extreme aspect ratio"
	}
	return ""
}
