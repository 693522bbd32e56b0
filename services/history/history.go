package history

import (
	"fmt"

	"github.com/meghashyamc/docsearch/db/kvdb"
	"github.com/meghashyamc/docsearch/logger"
)

const DefaultLimit = 10

// Keys are zero-padded sequence numbers so the store's byte-wise ordering
// is also recording order.
const keyFormat = "%020d"

type Service struct {
	logger logger.Logger
	kvDB   kvdb.DB
	limit  int
	seq    uint64
}

func New(logger logger.Logger, kvDB kvdb.DB, limit int) *Service {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Service{logger: logger, kvDB: kvDB, limit: limit}
}

// Record remembers query unless it is empty or already remembered. A
// repeated query keeps its original place.
func (s *Service) Record(query string) error {
	if query == "" {
		return nil
	}

	queries, err := s.Recent()
	if err != nil {
		return err
	}
	for _, existing := range queries {
		if existing == query {
			return nil
		}
	}

	s.seq++
	if err := s.kvDB.Set(kvdb.HistoryBucket, fmt.Sprintf(keyFormat, s.seq), query); err != nil {
		s.logger.Error("failed to record query", "err", err.Error())
		return fmt.Errorf("failed to record query: %w", err)
	}

	return s.trim()
}

// Recent returns remembered queries, newest first.
func (s *Service) Recent() ([]string, error) {
	keys, err := s.kvDB.GetAllKeys(kvdb.HistoryBucket)
	if err != nil {
		s.logger.Error("failed to list history", "err", err.Error())
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	queries := make([]string, 0, len(keys))
	for i := len(keys) - 1; i >= 0; i-- {
		query, err := s.kvDB.Get(kvdb.HistoryBucket, keys[i])
		if err != nil {
			s.logger.Error("failed to read history entry", "key", keys[i], "err", err.Error())
			return nil, fmt.Errorf("failed to read history entry: %w", err)
		}
		queries = append(queries, query)
	}

	return queries, nil
}

func (s *Service) Clear() error {
	if err := s.kvDB.ClearBucket(kvdb.HistoryBucket); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *Service) trim() error {
	keys, err := s.kvDB.GetAllKeys(kvdb.HistoryBucket)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	for len(keys) > s.limit {
		if err := s.kvDB.Delete(kvdb.HistoryBucket, keys[0]); err != nil {
			s.logger.Error("failed to drop oldest query", "key", keys[0], "err", err.Error())
			return fmt.Errorf("failed to drop oldest query: %w", err)
		}
		keys = keys[1:]
	}

	return nil
}
