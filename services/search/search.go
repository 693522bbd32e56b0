package search

import (
	"github.com/meghashyamc/docsearch/db/corpus"
	"github.com/meghashyamc/docsearch/logger"
)

type FileResult struct {
	DocumentID string      `json:"filename"`
	Kind       corpus.Kind `json:"file_type"`
	Matches    []Match     `json:"matches"`
	MatchCount int         `json:"match_count"`
}

type Result struct {
	Files        []FileResult `json:"files"`
	TotalMatches int          `json:"total_matches"`
}

type Service struct {
	logger logger.Logger
}

func New(logger logger.Logger) *Service {
	return &Service{
		logger: logger,
	}
}

// Search runs query over the documents of docs selected by query.Targets,
// in corpus order. Documents without matches are left out. On error no
// partial result is returned.
func (s *Service) Search(docs *corpus.Corpus, query Query) (*Result, error) {
	result := &Result{Files: []FileResult{}}

	if query.Text == "" {
		return result, nil
	}

	matcher, err := Compile(query)
	if err != nil {
		s.logger.Warn("could not compile search query", "err", err.Error())
		return nil, err
	}

	targets := targetSet(query.Targets)

	for _, doc := range docs.Documents() {
		if targets != nil {
			if _, ok := targets[doc.ID]; !ok {
				continue
			}
		}

		matches := matcher.FindAll(doc.Content)
		if len(matches) == 0 {
			continue
		}

		result.Files = append(result.Files, FileResult{
			DocumentID: doc.ID,
			Kind:       doc.Kind,
			Matches:    matches,
			MatchCount: len(matches),
		})
		result.TotalMatches += len(matches)
	}

	s.logger.Debug("search completed", "files", len(result.Files), "total_matches", result.TotalMatches)

	return result, nil
}

// targetSet returns nil when every document should be searched. Only a nil
// slice means every document; an empty one selects nothing.
func targetSet(targets []string) map[string]struct{} {
	if targets == nil {
		return nil
	}
	set := make(map[string]struct{}, len(targets))
	for _, id := range targets {
		set[id] = struct{}{}
	}
	return set
}
