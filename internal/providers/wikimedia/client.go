package wikimedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://commons.wikimedia.org/w/api.php"

// Commons asks API clients to stay well under their anonymous limits.
const (
	requestsPerSecond = 2
	requestBurst      = 1
)

// Client is a minimal Wikimedia Commons API client covering generator search
// with imageinfo. Requests are rate limited.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
}

// NewClient creates a Commons client.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultBaseURL,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

// SetBaseURL overrides the API endpoint. Used in tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = u
}

type searchResponse struct {
	Query struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	Title     string      `json:"title"`
	Index     int         `json:"index"`
	ImageInfo []imageInfo `json:"imageinfo"`
}

type imageInfo struct {
	URL         string                  `json:"url"`
	ThumbURL    string                  `json:"thumburl"`
	ExtMetadata map[string]extMetaValue `json:"extmetadata"`
}

type extMetaValue struct {
	Value string `json:"value"`
}

// SearchImage is one result from a Commons file search.
type SearchImage struct {
	Title    string
	URL      string
	ThumbURL string
	Credit   string
	License  string
	Index    int
}

// SearchImages runs a Commons file-namespace search and returns images with
// their license and artist metadata.
func (c *Client) SearchImages(ctx context.Context, term string, limit int) ([]SearchImage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("generator", "search")
	params.Set("gsrsearch", "filetype:bitmap "+term)
	params.Set("gsrnamespace", "6")
	params.Set("gsrlimit", strconv.Itoa(limit))
	params.Set("prop", "imageinfo")
	params.Set("iiprop", "url|extmetadata")
	params.Set("iiurlwidth", "1024")
	params.Set("format", "json")
	params.Set("origin", "*")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating search request: %w", err)
	}
	req.Header.Set("User-Agent", "artfetch/1.0 (asset resolution; non-interactive)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("searching commons: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("commons search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding commons response: %w", err)
	}

	images := make([]SearchImage, 0, len(parsed.Query.Pages))
	for _, p := range parsed.Query.Pages {
		if len(p.ImageInfo) == 0 {
			continue
		}
		info := p.ImageInfo[0]
		if info.URL == "" {
			continue
		}
		images = append(images, SearchImage{
			Title:    p.Title,
			URL:      info.URL,
			ThumbURL: info.ThumbURL,
			Credit:   extractCredit(info.ExtMetadata),
			License:  extractLicense(info.ExtMetadata),
			Index:    p.Index,
		})
	}
	return images, nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

func extractLicense(meta map[string]extMetaValue) string {
	for _, key := range []string{"LicenseShortName", "License", "UsageTerms"} {
		if v, ok := meta[key]; ok && strings.TrimSpace(v.Value) != "" {
			return stripHTML(v.Value)
		}
	}
	return ""
}

func extractCredit(meta map[string]extMetaValue) string {
	for _, key := range []string{"Artist", "Credit", "Attribution"} {
		if v, ok := meta[key]; ok {
			cleaned := stripHTML(v.Value)
			if cleaned != "" {
				return cleaned
			}
		}
	}
	return "Wikimedia Commons"
}
