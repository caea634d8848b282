package googlebooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mybooks/mybooks-server/internal/metadata/cache"
	"github.com/mybooks/mybooks-server/internal/metrics"
)

// SearchParams are the finder form fields. Each is optional.
type SearchParams struct {
	Title     string `json:"title"`
	Authors   string `json:"authors"`
	Publisher string `json:"publisher"`
	ISBN      string `json:"isbn"`
}

// IsEmpty reports whether no field has content.
func (p SearchParams) IsEmpty() bool {
	return p.Query() == ""
}

// Query builds the q parameter: every word of title, authors and publisher
// becomes an intitle:, inauthor: or inpublisher: term, and the ISBN a
// single isbn: term.
func (p SearchParams) Query() string {
	var terms []string
	for _, w := range strings.Fields(p.Title) {
		terms = append(terms, "intitle:"+w)
	}
	for _, w := range strings.Fields(p.Authors) {
		terms = append(terms, "inauthor:"+w)
	}
	for _, w := range strings.Fields(p.Publisher) {
		terms = append(terms, "inpublisher:"+w)
	}
	if isbn := strings.TrimSpace(p.ISBN); isbn != "" {
		terms = append(terms, "isbn:"+strings.ReplaceAll(isbn, " ", ""))
	}
	return strings.Join(terms, " ")
}

// Search queries the volumes endpoint. Empty params return no results
// without a request.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]Volume, error) {
	q := params.Query()
	if q == "" {
		return []Volume{}, nil
	}

	if c.cache != nil {
		if vols, err := cache.Get[[]Volume](c.cache, cacheNamespaceSearch, q); err == nil {
			metrics.RecordGoogleBooksRequest("search", "cache_hit", 0)
			return vols, nil
		}
	}

	query := url.Values{}
	query.Set("q", q)
	query.Set("maxResults", strconv.Itoa(maxResults))

	body, err := c.get(ctx, "search", "/volumes", query)
	if err != nil {
		return nil, wrapError("search", q, err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", q, fmt.Errorf("parse response: %w", err))
	}

	vols := make([]Volume, 0, len(resp.Items))
	for i := range resp.Items {
		vols = append(vols, resp.Items[i].toVolume())
	}

	c.store(cacheNamespaceSearch, q, vols)
	return vols, nil
}

// Get fetches one volume by its Google Books ID.
func (c *Client) Get(ctx context.Context, volumeID string) (*Volume, error) {
	volumeID = strings.TrimSpace(volumeID)
	if volumeID == "" || strings.ContainsAny(volumeID, "/?#") {
		return nil, wrapError("get", volumeID, ErrBadRequest)
	}

	if c.cache != nil {
		if vol, err := cache.Get[Volume](c.cache, cacheNamespaceVolume, volumeID); err == nil {
			metrics.RecordGoogleBooksRequest("get", "cache_hit", 0)
			return &vol, nil
		}
	}

	body, err := c.get(ctx, "get", "/volumes/"+url.PathEscape(volumeID), url.Values{})
	if err != nil {
		return nil, wrapError("get", volumeID, err)
	}

	var raw rawVolume
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("get", volumeID, fmt.Errorf("parse response: %w", err))
	}
	if raw.ID == "" {
		return nil, wrapError("get", volumeID, ErrNotFound)
	}

	vol := raw.toVolume()
	c.store(cacheNamespaceVolume, volumeID, vol)
	return &vol, nil
}

func (c *Client) store(namespace, key string, v any) {
	if c.cache == nil {
		return
	}
	if err := cache.Set(c.cache, namespace, key, v); err != nil {
		c.logger.Warn("failed to cache google books response", "namespace", namespace, "error", err)
	}
}
