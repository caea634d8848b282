package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search.
type Params struct {
	Query    string
	Author   string // exact author name filter
	Category string // exact category name filter
	MinYear  int
	MaxYear  int

	Limit  int
	Offset int

	IncludeFacets bool
}

// DefaultLimit is used when Params.Limit is zero.
const DefaultLimit = 20

// Result is a page of search hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
	Facets Facets `json:"facets"`
}

// Hit is a single matching book.
type Hit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Authors    []string          `json:"authors,omitempty"`
	Publisher  string            `json:"publisher,omitempty"`
	Year       int               `json:"year,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Facets holds the top author and category counts for a query.
type Facets struct {
	Authors    []FacetCount `json:"authors,omitempty"`
	Categories []FacetCount `json:"categories,omitempty"`
}

// FacetCount is one facet value and how many hits carry it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs a query against the index. An empty query with no filters
// returns no hits rather than the whole catalog.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	q := buildQuery(params)
	if q == nil {
		return &Result{Query: params.Query, Hits: []Hit{}}, nil
	}

	limit := params.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	req := bleve.NewSearchRequestOptions(q, limit, params.Offset, false)
	req.SortBy([]string{"-_score", "title"})
	req.Fields = []string{"title", "authors", "publisher", "year"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("authors")
	if params.IncludeFacets {
		req.AddFacet("author_facet", bleve.NewFacetRequest("author_facet", 10))
		req.AddFacet("category_facet", bleve.NewFacetRequest("category_facet", 10))
	}

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if t, ok := h.Fields["title"].(string); ok {
			hit.Title = t
		}
		hit.Authors = stringsField(h.Fields["authors"])
		if p, ok := h.Fields["publisher"].(string); ok {
			hit.Publisher = p
		}
		if y, ok := h.Fields["year"].(float64); ok {
			hit.Year = int(y)
		}
		if len(h.Fragments) > 0 {
			hit.Highlights = make(map[string]string, len(h.Fragments))
			for field, fragments := range h.Fragments {
				if len(fragments) > 0 {
					hit.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, hit)
	}

	if params.IncludeFacets {
		result.Facets.Authors = facetCounts(res, "author_facet")
		result.Facets.Categories = facetCounts(res, "category_facet")
	}

	return result, nil
}

// buildQuery returns nil when there is nothing to search for.
func buildQuery(params Params) query.Query {
	var must []query.Query

	if text := strings.TrimSpace(params.Query); text != "" {
		should := []query.Query{
			matchField(text, "title", 3.0),
			matchField(text, "authors", 2.0),
			matchField(text, "categories", 1.5),
			matchField(text, "publisher", 1.0),
			matchField(text, "description", 0.5),
		}

		isbn := bleve.NewTermQuery(strings.ReplaceAll(text, "-", ""))
		isbn.SetField("isbn")
		isbn.SetBoost(5.0)
		should = append(should, isbn)

		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(text))
		fuzzy.SetField("title")
		fuzzy.SetFuzziness(1)
		fuzzy.SetBoost(0.8)
		should = append(should, fuzzy)

		if len(text) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(text))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			should = append(should, prefix)
		}

		must = append(must, bleve.NewDisjunctionQuery(should...))
	}

	if params.Author != "" {
		tq := bleve.NewTermQuery(params.Author)
		tq.SetField("author_facet")
		must = append(must, tq)
	}
	if params.Category != "" {
		tq := bleve.NewTermQuery(params.Category)
		tq.SetField("category_facet")
		must = append(must, tq)
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 32767
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("year")
		must = append(must, rq)
	}

	switch len(must) {
	case 0:
		return nil
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

func matchField(text, field string, boost float64) query.Query {
	mq := bleve.NewMatchQuery(text)
	mq.SetField(field)
	mq.SetBoost(boost)
	return mq
}

// stringsField normalizes a stored field that Bleve returns as a string for
// one value and []any for several.
func stringsField(v any) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func facetCounts(res *bleve.SearchResult, name string) []FacetCount {
	facet, ok := res.Facets[name]
	if !ok || facet.Terms == nil {
		return nil
	}
	var out []FacetCount
	for _, term := range facet.Terms.Terms() {
		out = append(out, FacetCount{Value: term.Term, Count: term.Count})
	}
	return out
}
