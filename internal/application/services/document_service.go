// Package services contains the application orchestration layer: lesson
// content, session state, editing, rendering, and export.
package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/LodestarLearning/lodestar-go/internal/domain/entities/lesson"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/logging"
	"github.com/LodestarLearning/lodestar-go/internal/infrastructure/observability/performance"
)

// DocumentService loads and caches lesson documents from the content
// directory. Documents are immutable once loaded; authors' pending edits
// live in the session ledger, never in the document.
type DocumentService struct {
	directory   string
	mu          sync.RWMutex
	documents   map[string]*lesson.Document
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewDocumentService creates a document service over the given directory.
func NewDocumentService(directory string, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DocumentService {
	return &DocumentService{
		directory:   directory,
		documents:   make(map[string]*lesson.Document),
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// LoadAll reads every lesson file in the directory. Called at startup and
// on reload; individual file failures are logged and skipped so one broken
// lesson never takes the engine down.
func (s *DocumentService) LoadAll() error {
	marker := s.perfTracker.StartOperation("content:load_all", "")
	defer s.perfTracker.CompleteOperation(marker)

	entries, err := os.ReadDir(s.directory)
	if err != nil {
		marker.SetError(err)
		return fmt.Errorf("read lesson directory %s: %w", s.directory, err)
	}

	loaded := make(map[string]*lesson.Document)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		doc, err := s.loadFile(filepath.Join(s.directory, name))
		if err != nil {
			s.logger.Content().Error("Failed to load lesson file", "file", name, "error", err.Error())
			continue
		}
		if _, dup := loaded[doc.ID]; dup {
			s.logger.Content().Error("Duplicate lesson id, file skipped", "file", name, "documentId", doc.ID)
			continue
		}
		loaded[doc.ID] = doc
	}

	s.mu.Lock()
	s.documents = loaded
	s.mu.Unlock()

	s.logger.Content().Info("Lesson documents loaded", "count", len(loaded), "directory", s.directory)
	return nil
}

func (s *DocumentService) loadFile(path string) (*lesson.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc lesson.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", filepath.Base(path), err)
	}
	return &doc, nil
}

// GetDocument retrieves a loaded document by id.
func (s *DocumentService) GetDocument(id string) (*lesson.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	return doc, ok
}

// ListDocuments returns summaries of all loaded documents.
func (s *DocumentService) ListDocuments() []DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	summaries := make([]DocumentSummary, 0, len(s.documents))
	for _, doc := range s.documents {
		summaries = append(summaries, DocumentSummary{
			ID:         doc.ID,
			Title:      doc.Title,
			BlockCount: len(doc.Blocks),
			Variables:  len(doc.Variables),
		})
	}
	return summaries
}

// DocumentSummary is the list-view projection of a document.
type DocumentSummary struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	BlockCount int    `json:"blockCount"`
	Variables  int    `json:"variables"`
}
