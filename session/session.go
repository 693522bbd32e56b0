// Package session owns the state of one user session: the document corpus
// and its search history. Every exported method is one atomic user action.
package session

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/meghashyamc/docsearch/config"
	"github.com/meghashyamc/docsearch/db/corpus"
	"github.com/meghashyamc/docsearch/db/kvdb"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/services/history"
	"github.com/meghashyamc/docsearch/services/ingest"
	"github.com/meghashyamc/docsearch/services/search"
)

type Session struct {
	id       string
	logger   logger.Logger
	mu       sync.Mutex
	docs     *corpus.Corpus
	kvDB     kvdb.DB
	history  *history.Service
	ingester *ingest.Service
	searcher *search.Service
}

// Open builds a session from configuration. The history store it opens is
// released by Close.
func Open(logger logger.Logger, cfg *config.Config) (*Session, error) {
	kvDB, err := kvdb.New(logger, cfg.GetHistoryPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return New(
		logger,
		ingest.New(logger, ingest.OptionsFromConfig(cfg)),
		search.New(logger),
		kvDB,
		cfg.GetHistoryLimit(),
	), nil
}

func New(logger logger.Logger, ingester *ingest.Service, searcher *search.Service, kvDB kvdb.DB, historyLimit int) *Session {
	id := uuid.New().String()
	logger.Info("session started", "session_id", id)

	return &Session{
		id:       id,
		logger:   logger,
		docs:     corpus.New(),
		kvDB:     kvDB,
		history:  history.New(logger, kvDB, historyLimit),
		ingester: ingester,
		searcher: searcher,
	}
}

func (s *Session) ID() string {
	return s.id
}

// Add ingests one uploaded file and stores it, replacing any document with
// the same sanitized name. A rejected file leaves the corpus unchanged.
func (s *Session) Add(filename string, content []byte) (*corpus.Document, error) {
	return s.store(s.ingester.Ingest(filename, content))
}

func (s *Session) AddReader(filename string, r io.Reader) (*corpus.Document, error) {
	return s.store(s.ingester.IngestReader(filename, r))
}

func (s *Session) AddFile(path string) (*corpus.Document, error) {
	return s.store(s.ingester.IngestFile(path))
}

func (s *Session) store(doc *corpus.Document, err error) (*corpus.Document, error) {
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs.Put(doc)

	return doc, nil
}

func (s *Session) Document(id string) (*corpus.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Get(id)
}

func (s *Session) Documents() []*corpus.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Documents()
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Len()
}

func (s *Session) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.docs.Remove(id); err != nil {
		s.logger.Warn("could not remove document", "id", id, "err", err.Error())
		return err
	}
	s.logger.Info("removed document", "id", id)

	return nil
}

// Clear drops every document and the search history.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs.Clear()
	if err := s.history.Clear(); err != nil {
		s.logger.Error("could not clear search history", "err", err.Error())
		return err
	}
	s.logger.Info("session cleared", "session_id", s.id)

	return nil
}

// Search runs query against a snapshot of the corpus and, on success,
// remembers the query text.
func (s *Session) Search(query search.Query) (*search.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.searcher.Search(s.docs.Snapshot(), query)
	if err != nil {
		return nil, err
	}

	if err := s.history.Record(query.Text); err != nil {
		s.logger.Warn("search succeeded but query was not recorded", "err", err.Error())
	}

	return result, nil
}

func (s *Session) History() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Recent()
}

// Snapshot returns a copy of the corpus that later actions do not affect.
func (s *Session) Snapshot() *corpus.Corpus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs.Snapshot()
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs.Clear()
	if err := s.kvDB.Close(); err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}
	s.logger.Info("session closed", "session_id", s.id)

	return nil
}
