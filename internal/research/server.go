// Package research implements the paper research MCP server: arXiv search
// tools, stored-paper resources, and a search prompt.
package research

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/paperchat-ai/paperchat/internal/config"
)

type searchPapersArgs struct {
	Topic      string `json:"topic" jsonschema:"the topic to search for"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"maximum number of results to retrieve"`
}

type extractInfoArgs struct {
	PaperID string `json:"paper_id" jsonschema:"the ID of the paper to look for"`
}

// Server wires the arXiv client and paper store into an MCP server that
// serves over stdio or streamable HTTP depending on configuration.
type Server struct {
	cfg    *config.Config
	store  *Store
	arxiv  *ArxivClient
	logger *zap.Logger
	mcp    *mcp.Server
}

// NewServer builds the research server with all tools, resources, and
// prompts registered.
func NewServer(cfg *config.Config, store *Store, arxiv *ArxivClient, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		arxiv:  arxiv,
		logger: logger,
		mcp:    mcp.NewServer(&mcp.Implementation{Name: "research", Version: "0.1.0"}, nil),
	}
	s.register()
	return s
}

func (s *Server) register() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_papers",
		Description: "Search for papers on arXiv based on a topic and store their information. Returns the list of paper IDs found.",
	}, s.searchPapers)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "extract_info",
		Description: "Search for information about a specific paper across all topic directories. Returns a JSON string with paper information if found.",
	}, s.extractInfo)

	s.mcp.AddResource(&mcp.Resource{
		URI:         "papers://folders",
		Name:        "folders",
		Description: "List all available topic folders in the papers directory.",
		MIMEType:    "text/markdown",
	}, s.readFolders)

	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "papers://{topic}",
		Name:        "topic",
		Description: "Detailed information about papers on a specific topic.",
		MIMEType:    "text/markdown",
	}, s.readTopic)

	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        "generate_search_prompt",
		Description: "Generate a prompt to find and discuss academic papers on a specific topic.",
		Arguments: []*mcp.PromptArgument{
			{Name: "topic", Description: "The topic to search for.", Required: true},
			{Name: "num_papers", Description: "The number of papers to search for."},
		},
	}, s.searchPrompt)
}

// Run serves until ctx is cancelled: over stdio when running locally, over
// streamable HTTP otherwise.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Runtime.RunLocally {
		s.logger.Info("serving over stdio")
		return s.mcp.Run(ctx, &mcp.StdioTransport{})
	}
	return s.serveHTTP(ctx)
}

func (s *Server) serveHTTP(ctx context.Context) error {
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return s.mcp }, nil)

	addr := fmt.Sprintf(":%d", s.cfg.Runtime.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.logRequests(handler),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("serving over streamable HTTP", zap.String("addr", addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("elapsed", time.Since(start)))
	})
}

func (s *Server) searchPapers(ctx context.Context, req *mcp.CallToolRequest, args searchPapersArgs) (*mcp.CallToolResult, any, error) {
	results, err := s.arxiv.Search(ctx, args.Topic, args.MaxResults)
	if err != nil {
		s.logger.Warn("arXiv search failed", zap.String("topic", args.Topic), zap.Error(err))
		return nil, nil, err
	}

	ids, err := s.store.Save(args.Topic, results)
	if err != nil {
		return nil, nil, err
	}

	text, err := json.Marshal(ids)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(text)}},
	}, ids, nil
}

func (s *Server) extractInfo(ctx context.Context, req *mcp.CallToolRequest, args extractInfoArgs) (*mcp.CallToolResult, any, error) {
	text, ok := s.store.Extract(args.PaperID)
	if !ok {
		text = fmt.Sprintf("There's no saved information related to paper %s.", args.PaperID)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}

func (s *Server) readFolders(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	topics := s.store.Topics()

	var b strings.Builder
	b.WriteString("# Available Topics\n\n")
	if len(topics) == 0 {
		b.WriteString("No topics found.\n")
	} else {
		for _, topic := range topics {
			fmt.Fprintf(&b, "- %s\n", topic)
		}
		b.WriteString("\nUse @<topic> to access papers in that topic.\n")
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     b.String(),
		}},
	}, nil
}

func (s *Server) readTopic(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	topic := strings.TrimPrefix(req.Params.URI, "papers://")

	papers, err := s.store.Topic(topic)
	text := ""
	if err != nil {
		text = fmt.Sprintf("# No papers found for topic: %s\n\nTry searching for papers on this topic first.", topic)
	} else {
		text = renderTopic(topic, papers)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     text,
		}},
	}, nil
}

func renderTopic(topic string, papers map[string]Paper) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Papers on %s\n\n", titleCase(strings.ReplaceAll(topic, "_", " ")))
	fmt.Fprintf(&b, "Total papers: %d\n\n", len(papers))

	for id, paper := range papers {
		fmt.Fprintf(&b, "## %s\n", paper.Title)
		fmt.Fprintf(&b, "- **Paper ID**: %s\n", id)
		fmt.Fprintf(&b, "- **Authors**: %s\n", strings.Join(paper.Authors, ", "))
		fmt.Fprintf(&b, "- **Published**: %s\n", paper.Published)
		fmt.Fprintf(&b, "- **PDF URL**: [%s](%s)\n\n", paper.PDFURL, paper.PDFURL)

		summary := paper.Summary
		if len(summary) > 500 {
			summary = summary[:500] + "..."
		}
		fmt.Fprintf(&b, "### Summary\n%s\n\n---\n\n", summary)
	}
	return b.String()
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func (s *Server) searchPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	numPapers := req.Params.Arguments["num_papers"]
	if numPapers == "" {
		numPapers = "5"
	}

	text := fmt.Sprintf(`Search for %s academic papers about '%s' using the search_papers tool.
Follow these instructions:
1. First, search for papers using search_papers(topic='%s', max_results=%s)
2. For each paper found, extract and organize the following information:
   - Paper title
   - Authors
   - Publication date
   - Brief summary of the key findings
   - Main contributions or innovations
   - Methodologies used
   - Relevance to the topic '%s'
3. Provide a comprehensive summary that includes:
   - Overview of the current state of research in '%s'
   - Common themes and trends across the papers
   - Key research gaps or areas for future investigation
   - Most impactful or influential papers in this area
4. Organize your findings in a clear, structured format with headings and bullet points for easy readability.

Please present both detailed information about each paper and a high-level synthesis of the research landscape in %s.`,
		numPapers, topic, topic, numPapers, topic, topic, topic)

	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}, nil
}
