package research

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
)

// DefaultArxivBaseURL is the public arXiv Atom query endpoint.
const DefaultArxivBaseURL = "https://export.arxiv.org/api/query"

// Paper holds the stored metadata of a single arXiv paper. Field names
// mirror the on-disk papers_info.json format.
type Paper struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"`
	Summary   string   `json:"summary"`
	PDFURL    string   `json:"pdf_url"`
	Published string   `json:"published"`
}

// SearchResult pairs a short arXiv ID with its paper metadata.
type SearchResult struct {
	ID    string
	Paper Paper
}

// ArxivClient queries the arXiv Atom API.
type ArxivClient struct {
	baseURL string
	http    *http.Client
}

// NewArxivClient creates a client against the public API. baseURL overrides
// the endpoint when non-empty; tests point it at a local server.
func NewArxivClient(baseURL string) *ArxivClient {
	if baseURL == "" {
		baseURL = DefaultArxivBaseURL
	}
	return &ArxivClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type atomFeed struct {
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	ID        string       `xml:"id"`
	Title     string       `xml:"title"`
	Summary   string       `xml:"summary"`
	Published string       `xml:"published"`
	Authors   []atomAuthor `xml:"author"`
	Links     []atomLink   `xml:"link"`
}

type atomAuthor struct {
	Name string `xml:"name"`
}

type atomLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// Search runs a relevance-sorted query and returns up to maxResults papers.
func (c *ArxivClient) Search(ctx context.Context, topic string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	query := url.Values{}
	query.Set("search_query", "all:"+topic)
	query.Set("max_results", fmt.Sprintf("%d", maxResults))
	query.Set("sortBy", "relevance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeToolExecutionFailed, "cannot build arXiv request", apperrors.CategorySystem)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.Temporary(apperrors.CodeToolExecutionFailed,
			fmt.Sprintf("arXiv query failed: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Temporary(apperrors.CodeToolExecutionFailed,
			fmt.Sprintf("arXiv returned status %d", resp.StatusCode))
	}

	var feed atomFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeToolExecutionFailed, "cannot parse arXiv feed", apperrors.CategoryTemporary)
	}

	results := make([]SearchResult, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		results = append(results, SearchResult{
			ID:    shortID(entry.ID),
			Paper: entryToPaper(entry),
		})
	}
	return results, nil
}

func entryToPaper(entry atomEntry) Paper {
	authors := make([]string, 0, len(entry.Authors))
	for _, author := range entry.Authors {
		authors = append(authors, author.Name)
	}

	pdfURL := ""
	for _, link := range entry.Links {
		if link.Title == "pdf" || link.Type == "application/pdf" {
			pdfURL = link.Href
			break
		}
	}
	if pdfURL == "" {
		pdfURL = strings.Replace(entry.ID, "/abs/", "/pdf/", 1)
	}

	published := entry.Published
	if len(published) >= 10 {
		published = published[:10]
	}

	return Paper{
		Title:     strings.Join(strings.Fields(entry.Title), " "),
		Authors:   authors,
		Summary:   strings.TrimSpace(entry.Summary),
		PDFURL:    pdfURL,
		Published: published,
	}
}

// shortID strips the abs URL prefix from an Atom entry ID, so
// "http://arxiv.org/abs/2301.00001v1" becomes "2301.00001v1".
func shortID(entryID string) string {
	if idx := strings.LastIndex(entryID, "/abs/"); idx >= 0 {
		return entryID[idx+len("/abs/"):]
	}
	return entryID
}
