package assets

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/Mhdiwe/Viral/timeline"
)

// Request describes the visuals wanted for one video.
type Request struct {
	Script string
	// Query overrides the stock search terms derived from Script.
	Query string
	Count int
	// URLs are caller supplied media used as-is by the stock source.
	URLs []string
}

// Source produces the ordered visual assets for a video.
type Source interface {
	Fetch(ctx context.Context, req Request) ([]timeline.VisualAsset, error)
}

// None produces no assets; the timeline falls back to a solid background.
type None struct{}

func (None) Fetch(context.Context, Request) ([]timeline.VisualAsset, error) {
	return nil, nil
}

// Static returns caller supplied URLs, typed by file extension.
type Static struct{}

func (Static) Fetch(_ context.Context, req Request) ([]timeline.VisualAsset, error) {
	return fromURLs(req.URLs)
}

func fromURLs(urls []string) ([]timeline.VisualAsset, error) {
	var out []timeline.VisualAsset
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return nil, fmt.Errorf("asset url %q must be http(s)", u)
		}
		out = append(out, timeline.VisualAsset{Kind: kindOf(u), URL: u})
	}
	return out, nil
}

func kindOf(u string) timeline.AssetKind {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch strings.ToLower(path.Ext(u)) {
	case ".mp4", ".mov", ".webm", ".m4v":
		return timeline.AssetVideo
	default:
		return timeline.AssetImage
	}
}

func count(n int) int {
	if n <= 0 {
		return 4
	}
	return n
}
