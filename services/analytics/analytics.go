package analytics

import (
	"sort"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/meghashyamc/docsearch/db/corpus"
	"github.com/meghashyamc/docsearch/logger"
)

const (
	topWordsLimit    = 25
	largestDocsLimit = 10
)

type Totals struct {
	Files int `json:"files"`
	Chars int `json:"chars"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// WordFrequency counts one lowercased word. Percentage is relative to all
// word tokens in the corpus.
type WordFrequency struct {
	Word       string  `json:"word"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// DocumentSize describes one document in the size comparison. Ratio is
// Chars relative to the largest document.
type DocumentSize struct {
	ID    string  `json:"id"`
	Chars int     `json:"chars"`
	Words int     `json:"words"`
	Ratio float64 `json:"ratio"`
}

type Summary struct {
	Totals   Totals          `json:"totals"`
	TopWords []WordFrequency `json:"top_words"`
	Largest  []DocumentSize  `json:"largest"`
}

type Service struct {
	logger    logger.Logger
	tokenizer analysis.Tokenizer
	filter    analysis.TokenFilter
}

func New(logger logger.Logger) *Service {
	return &Service{
		logger:    logger,
		tokenizer: unicode.NewUnicodeTokenizer(),
		filter:    lowercase.NewLowerCaseFilter(),
	}
}

// Summarize computes corpus analytics over docs, which are expected in
// corpus order. Ties are broken by that order.
func (s *Service) Summarize(docs []*corpus.Document) *Summary {
	summary := &Summary{
		TopWords: []WordFrequency{},
		Largest:  []DocumentSize{},
	}

	for _, doc := range docs {
		summary.Totals.Files++
		summary.Totals.Chars += doc.Metrics.Chars
		summary.Totals.Words += doc.Metrics.Words
		summary.Totals.Lines += doc.Metrics.Lines
	}

	summary.TopWords = s.topWords(docs)
	summary.Largest = largest(docs)

	s.logger.Debug("computed analytics", "files", summary.Totals.Files, "distinct_top_words", len(summary.TopWords))

	return summary
}

func (s *Service) topWords(docs []*corpus.Document) []WordFrequency {
	counts := make(map[string]int)
	var firstSeen []string
	total := 0

	for _, doc := range docs {
		input := []byte(doc.Content)
		for _, token := range s.filter.Filter(joinHyphenated(input, s.tokenizer.Tokenize(input))) {
			word := string(token.Term)
			if counts[word] == 0 {
				firstSeen = append(firstSeen, word)
			}
			counts[word]++
			total++
		}
	}

	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})
	if len(firstSeen) > topWordsLimit {
		firstSeen = firstSeen[:topWordsLimit]
	}

	frequencies := make([]WordFrequency, 0, len(firstSeen))
	for _, word := range firstSeen {
		frequencies = append(frequencies, WordFrequency{
			Word:       word,
			Count:      counts[word],
			Percentage: float64(counts[word]) / float64(total) * 100,
		})
	}

	return frequencies
}

// joinHyphenated merges tokens separated only by hyphens or apostrophes, so
// "well-known" counts as one word instead of two.
func joinHyphenated(input []byte, stream analysis.TokenStream) analysis.TokenStream {
	if len(stream) < 2 {
		return stream
	}

	joined := make(analysis.TokenStream, 0, len(stream))
	for _, token := range stream {
		if n := len(joined); n > 0 && isJoiner(input[joined[n-1].End:token.Start]) {
			last := joined[n-1]
			last.Term = input[last.Start:token.End]
			last.End = token.End
			continue
		}
		joined = append(joined, token)
	}

	for i, token := range joined {
		token.Position = i + 1
	}

	return joined
}

func isJoiner(gap []byte) bool {
	if len(gap) == 0 {
		return false
	}
	for _, b := range gap {
		if b != '-' && b != '\'' {
			return false
		}
	}
	return true
}

func largest(docs []*corpus.Document) []DocumentSize {
	sorted := make([]*corpus.Document, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Metrics.Chars > sorted[j].Metrics.Chars
	})
	if len(sorted) > largestDocsLimit {
		sorted = sorted[:largestDocsLimit]
	}

	sizes := make([]DocumentSize, 0, len(sorted))
	if len(sorted) == 0 {
		return sizes
	}

	maxChars := sorted[0].Metrics.Chars
	for _, doc := range sorted {
		size := DocumentSize{
			ID:    doc.ID,
			Chars: doc.Metrics.Chars,
			Words: doc.Metrics.Words,
		}
		if maxChars > 0 {
			size.Ratio = float64(doc.Metrics.Chars) / float64(maxChars)
		}
		sizes = append(sizes, size)
	}

	return sizes
}
