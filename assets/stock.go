package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/Mhdiwe/Viral/timeline"
)

// Stock uses caller URLs when given, otherwise portrait clips from Pexels.
type Stock struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewStock creates a Pexels backed source.
func NewStock(baseURL, apiKey string) *Stock {
	if baseURL == "" {
		baseURL = "https://api.pexels.com"
	}
	return &Stock{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type pexelsSearch struct {
	Videos []pexelsVideo `json:"videos"`
}

type pexelsVideo struct {
	ID       int          `json:"id"`
	Duration int          `json:"duration"`
	Files    []pexelsFile `json:"video_files"`
}

type pexelsFile struct {
	Link     string `json:"link"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
}

func (s *Stock) Fetch(ctx context.Context, req Request) ([]timeline.VisualAsset, error) {
	if len(req.URLs) > 0 {
		return fromURLs(req.URLs)
	}
	if s.APIKey == "" {
		return nil, fmt.Errorf("PEXELS_API_KEY is not set and no asset urls were given")
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		query = Keywords(req.Script, 4)
	}
	if query == "" {
		return nil, fmt.Errorf("no search terms for stock footage")
	}
	n := count(req.Count)

	params := url.Values{}
	params.Set("query", query)
	params.Set("orientation", "portrait")
	params.Set("per_page", strconv.Itoa(n*2))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/videos/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", s.APIKey)

	resp, err := s.HTTP.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pexels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("pexels returned status %d: %s", resp.StatusCode, string(body))
	}

	var result pexelsSearch
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode pexels response: %w", err)
	}

	var out []timeline.VisualAsset
	for _, v := range result.Videos {
		f, ok := bestPortraitFile(v.Files)
		if !ok {
			continue
		}
		out = append(out, timeline.VisualAsset{Kind: timeline.AssetVideo, URL: f.Link, Prompt: query})
		if len(out) == n {
			break
		}
	}
	slog.Info("stock footage search", "query", query, "hits", len(result.Videos), "used", len(out))
	if len(out) == 0 {
		return nil, fmt.Errorf("no portrait footage found for %q", query)
	}
	return out, nil
}

// bestPortraitFile picks the tallest mp4 rendition at or below 1920px,
// falling back to the smallest taller one.
func bestPortraitFile(files []pexelsFile) (pexelsFile, bool) {
	var best, over pexelsFile
	for _, f := range files {
		if f.Link == "" || f.Height <= f.Width || !strings.EqualFold(f.FileType, "video/mp4") {
			continue
		}
		if f.Height <= 1920 {
			if f.Height > best.Height {
				best = f
			}
		} else if over.Link == "" || f.Height < over.Height {
			over = f
		}
	}
	if best.Link != "" {
		return best, true
	}
	return over, over.Link != ""
}

var stopWords = map[string]bool{
	"about": true, "after": true, "again": true, "their": true, "there": true,
	"these": true, "thing": true, "those": true, "which": true, "while": true,
	"would": true, "could": true, "should": true, "every": true, "other": true,
	"where": true, "when": true, "what": true, "with": true, "from": true,
	"this": true, "that": true, "have": true, "your": true, "into": true,
	"just": true, "they": true, "were": true, "will": true, "than": true,
	"then": true, "them": true, "some": true, "only": true, "also": true,
}

// Keywords returns up to max distinct lowercase content words of text.
func Keywords(text string, max int) string {
	seen := map[string]bool{}
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	}) {
		w = strings.Trim(w, "'")
		if len([]rune(w)) < 4 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		words = append(words, w)
		if len(words) == max {
			break
		}
	}
	return strings.Join(words, " ")
}
