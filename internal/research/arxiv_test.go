package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
)

const atomFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Attention Is
     All You Need</title>
    <summary>
      We propose a new architecture.
    </summary>
    <published>2023-01-15T18:30:00Z</published>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
    <link href="http://arxiv.org/abs/2301.00001v1" rel="alternate" type="text/html"/>
    <link href="http://arxiv.org/pdf/2301.00001v1" rel="related" title="pdf" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2302.99999v2</id>
    <title>Second Paper</title>
    <summary>Another summary.</summary>
    <published>2023-02-01T00:00:00Z</published>
    <author><name>Grace Hopper</name></author>
    <link href="http://arxiv.org/abs/2302.99999v2" rel="alternate" type="text/html"/>
  </entry>
</feed>`

func TestSearchParsesAtomFeed(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(atomFixture))
	}))
	t.Cleanup(server.Close)

	client := NewArxivClient(server.URL)
	results, err := client.Search(context.Background(), "machine learning", 2)
	require.NoError(t, err)

	assert.Equal(t, "all:machine learning", query.Get("search_query"))
	assert.Equal(t, "2", query.Get("max_results"))
	assert.Equal(t, "relevance", query.Get("sortBy"))

	require.Len(t, results, 2)
	first := results[0]
	assert.Equal(t, "2301.00001v1", first.ID)
	assert.Equal(t, "Attention Is All You Need", first.Paper.Title, "title whitespace collapsed")
	assert.Equal(t, "We propose a new architecture.", first.Paper.Summary)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, first.Paper.Authors)
	assert.Equal(t, "http://arxiv.org/pdf/2301.00001v1", first.Paper.PDFURL)
	assert.Equal(t, "2023-01-15", first.Paper.Published)

	// No pdf link in the feed: derived from the abs URL.
	assert.Equal(t, "http://arxiv.org/pdf/2302.99999v2", results[1].Paper.PDFURL)
}

func TestSearchDefaultsMaxResults(t *testing.T) {
	var query url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(atomFixture))
	}))
	t.Cleanup(server.Close)

	_, err := NewArxivClient(server.URL).Search(context.Background(), "ai", 0)
	require.NoError(t, err)
	assert.Equal(t, "5", query.Get("max_results"))
}

func TestSearchReportsServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	_, err := NewArxivClient(server.URL).Search(context.Background(), "ai", 5)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeToolExecutionFailed))
}

func TestSearchReportsMalformedFeed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<feed><entry>"))
	}))
	t.Cleanup(server.Close)

	_, err := NewArxivClient(server.URL).Search(context.Background(), "ai", 5)
	require.Error(t, err)
}
