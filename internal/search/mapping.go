package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for book documents.
// Titles and descriptions use English stemming; people and publisher names
// use the simple analyzer so "Tolkien" never stems. Facet fields keep the
// whole name as one keyword.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	textField := func(analyzer string, store, vectors bool) *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = analyzer
		fm.Store = store
		fm.IncludeTermVectors = vectors
		return fm
	}

	doc.AddFieldMappingsAt("title", textField(en.AnalyzerName, true, true))
	doc.AddFieldMappingsAt("description", textField(en.AnalyzerName, false, false))
	doc.AddFieldMappingsAt("authors", textField(simple.Name, true, true))
	doc.AddFieldMappingsAt("categories", textField(simple.Name, true, false))
	doc.AddFieldMappingsAt("publisher", textField(simple.Name, true, false))

	doc.AddFieldMappingsAt("id", textField(keyword.Name, false, false))
	doc.AddFieldMappingsAt("isbn", textField(keyword.Name, true, false))
	doc.AddFieldMappingsAt("author_facet", textField(keyword.Name, false, false))
	doc.AddFieldMappingsAt("category_facet", textField(keyword.Name, false, false))

	year := bleve.NewNumericFieldMapping()
	year.Store = true
	doc.AddFieldMappingsAt("year", year)

	addedAt := bleve.NewNumericFieldMapping()
	addedAt.Store = true
	doc.AddFieldMappingsAt("added_at", addedAt)

	indexMapping.AddDocumentMapping("_default", doc)

	return indexMapping
}
