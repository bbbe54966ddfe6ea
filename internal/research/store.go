package research

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const paperInfoFile = "papers_info.json"

// Store persists paper metadata under one directory per topic, each holding
// a papers_info.json keyed by short arXiv ID.
type Store struct {
	dir    string
	logger *zap.Logger
}

// NewStore creates a store rooted at dir.
func NewStore(dir string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{dir: dir, logger: logger}
}

// TopicDir normalizes a topic to its directory name.
func TopicDir(topic string) string {
	return strings.ReplaceAll(strings.ToLower(topic), " ", "_")
}

// Save merges the search results into the topic's papers_info.json and
// returns the IDs that were saved. Existing entries for the same ID are
// overwritten; other entries survive.
func (s *Store) Save(topic string, results []SearchResult) ([]string, error) {
	dir := filepath.Join(s.dir, TopicDir(topic))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create topic directory: %w", err)
	}

	path := filepath.Join(dir, paperInfoFile)
	papers, err := readPaperFile(path)
	if err != nil {
		// A missing or corrupted file starts the topic over.
		s.logger.Warn("starting topic with empty paper set", zap.String("path", path), zap.Error(err))
		papers = map[string]Paper{}
	}

	ids := make([]string, 0, len(results))
	for _, result := range results {
		papers[result.ID] = result.Paper
		ids = append(ids, result.ID)
	}

	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cannot encode paper info: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("cannot write %s: %w", path, err)
	}

	s.logger.Info("papers saved", zap.String("path", path), zap.Int("count", len(ids)))
	return ids, nil
}

// Extract scans every topic directory for the given paper ID and returns
// its metadata as indented JSON. ok is false when no topic has it.
func (s *Store) Extract(paperID string) (string, bool) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", false
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		papers, err := readPaperFile(filepath.Join(s.dir, entry.Name(), paperInfoFile))
		if err != nil {
			s.logger.Debug("skipping unreadable topic", zap.String("topic", entry.Name()), zap.Error(err))
			continue
		}
		if paper, ok := papers[paperID]; ok {
			data, err := json.MarshalIndent(paper, "", "  ")
			if err != nil {
				continue
			}
			return string(data), true
		}
	}
	return "", false
}

// Topics lists the topic directories that contain a paper file, sorted.
func (s *Store) Topics() []string {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}

	var topics []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(filepath.Join(s.dir, entry.Name(), paperInfoFile)); err == nil {
			topics = append(topics, entry.Name())
		}
	}
	sort.Strings(topics)
	return topics
}

// Topic loads the papers stored for one topic.
func (s *Store) Topic(topic string) (map[string]Paper, error) {
	return readPaperFile(filepath.Join(s.dir, TopicDir(topic), paperInfoFile))
}

func readPaperFile(path string) (map[string]Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	papers := map[string]Paper{}
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("corrupted paper file %s: %w", path, err)
	}
	return papers, nil
}
