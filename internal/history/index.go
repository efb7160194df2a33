package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/sha1n/a11y-audit/internal/domain"
)

const (
	// IndexDirName is the directory name of the findings index under the history base dir.
	IndexDirName = "findings.bleve"

	// MaxBatchSize is the maximum number of documents per batch.
	MaxBatchSize = 100

	// DefaultSearchSize is used when a search does not specify a result size.
	DefaultSearchSize = 20
)

// Index stores individual findings so they can be searched across runs.
type Index struct {
	path  string
	index bleve.Index
}

// Hit is a single search match.
type Hit struct {
	RunID      string
	Repository string
	File       string
	Line       int
	Issue      string
	Suggestion string
	Rule       string
	Score      float64
}

// SearchResult holds the matches of a search and the total match count.
type SearchResult struct {
	Total uint64
	Hits  []Hit
}

// NewIndexMapping creates the Bleve mapping for IssueDocument.
func NewIndexMapping() mapping.IndexMapping {
	docMapping := bleve.NewDocumentMapping()

	for _, field := range []string{domain.IssueFieldIssue, domain.IssueFieldSuggestion} {
		text := bleve.NewTextFieldMapping()
		text.Analyzer = standard.Name
		text.Store = true
		docMapping.AddFieldMappingsAt(field, text)
	}

	for _, field := range []string{domain.IssueFieldRunID, domain.IssueFieldRepository, domain.IssueFieldFile, domain.IssueFieldRule} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		docMapping.AddFieldMappingsAt(field, kw)
	}

	line := bleve.NewNumericFieldMapping()
	line.Store = true
	docMapping.AddFieldMappingsAt(domain.IssueFieldLine, line)

	// Stored only; the document ID is used for lookups.
	id := bleve.NewTextFieldMapping()
	id.Index = false
	id.Store = true
	docMapping.AddFieldMappingsAt(domain.IssueFieldID, id)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

// OpenIndex opens the findings index under baseDir, creating it if needed.
func OpenIndex(baseDir string) (*Index, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	path := filepath.Join(baseDir, IndexDirName)
	index, err := bleve.Open(path)
	if err != nil {
		index, err = bleve.New(path, NewIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("failed to create index: %w", err)
		}
	}

	return &Index{path: path, index: index}, nil
}

// Path returns the index directory.
func (x *Index) Path() string {
	return x.path
}

// Add indexes every finding of run under runID and returns the number of documents
// written.
func (x *Index) Add(runID, repository string, run *domain.AuditRun) (int, error) {
	batch := x.index.NewBatch()
	pending := 0
	total := 0

	for _, res := range run.Results {
		file := res.Location
		if file == "" {
			file = res.File
		}

		for n, issue := range res.Issues {
			doc := domain.IssueDocument{
				ID:         runID + "/" + file + "#" + strconv.Itoa(n),
				RunID:      runID,
				Repository: repository,
				File:       file,
				Line:       issue.Line,
				Issue:      issue.Issue,
				Suggestion: issue.Suggestion,
				Rule:       issue.Rule,
			}
			if err := batch.Index(doc.ID, doc); err != nil {
				return total, fmt.Errorf("failed to index finding %s: %w", doc.ID, err)
			}
			pending++

			if pending >= MaxBatchSize {
				if err := x.index.Batch(batch); err != nil {
					return total, fmt.Errorf("batch index failed: %w", err)
				}
				total += pending
				batch = x.index.NewBatch()
				pending = 0
			}
		}
	}

	if pending > 0 {
		if err := x.index.Batch(batch); err != nil {
			return total, fmt.Errorf("final batch index failed: %w", err)
		}
		total += pending
	}

	return total, nil
}

// Search matches text against issue and suggestion fields. An empty text matches every
// finding. A non-empty repository restricts hits to that repository (github.com/org/repo).
func (x *Index) Search(ctx context.Context, text, repository string, size int) (*SearchResult, error) {
	if size <= 0 {
		size = DefaultSearchSize
	}

	req := bleve.NewSearchRequestOptions(buildQuery(text, repository), size, 0, false)
	req.Fields = []string{
		domain.IssueFieldRunID,
		domain.IssueFieldRepository,
		domain.IssueFieldFile,
		domain.IssueFieldLine,
		domain.IssueFieldIssue,
		domain.IssueFieldSuggestion,
		domain.IssueFieldRule,
	}

	res, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	out := &SearchResult{Total: res.Total, Hits: make([]Hit, 0, len(res.Hits))}
	for _, h := range res.Hits {
		hit := Hit{
			RunID:      stringField(h.Fields, domain.IssueFieldRunID),
			Repository: stringField(h.Fields, domain.IssueFieldRepository),
			File:       stringField(h.Fields, domain.IssueFieldFile),
			Issue:      stringField(h.Fields, domain.IssueFieldIssue),
			Suggestion: stringField(h.Fields, domain.IssueFieldSuggestion),
			Rule:       stringField(h.Fields, domain.IssueFieldRule),
			Score:      h.Score,
		}
		if line, ok := h.Fields[domain.IssueFieldLine].(float64); ok {
			hit.Line = int(line)
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// Count returns the number of indexed findings.
func (x *Index) Count() (uint64, error) {
	return x.index.DocCount()
}

// Close closes the underlying index.
func (x *Index) Close() error {
	return x.index.Close()
}

func buildQuery(text, repository string) query.Query {
	var textQuery query.Query
	if text == "" {
		textQuery = bleve.NewMatchAllQuery()
	} else {
		issueQuery := bleve.NewMatchQuery(text)
		issueQuery.SetField(domain.IssueFieldIssue)
		issueQuery.SetBoost(2.0)

		suggestionQuery := bleve.NewMatchQuery(text)
		suggestionQuery.SetField(domain.IssueFieldSuggestion)

		textQuery = bleve.NewDisjunctionQuery(issueQuery, suggestionQuery)
	}

	if repository == "" {
		return textQuery
	}

	repoQuery := bleve.NewTermQuery(repository)
	repoQuery.SetField(domain.IssueFieldRepository)
	return bleve.NewConjunctionQuery(textQuery, repoQuery)
}

func stringField(fields map[string]any, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}
