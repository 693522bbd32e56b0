package search

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxQueryLength is the longest accepted query, counted in runes.
const MaxQueryLength = 1000

const highlightMarker = "**"

type Query struct {
	Text          string
	CaseSensitive bool
	WholeWord     bool
	// ContextRadius is the number of runes kept on each side of a match.
	// Zero disables the context window.
	ContextRadius int
	// Targets restricts the search to these document IDs. Nil means all
	// documents, while an empty non-nil slice searches none.
	Targets []string
}

// Match is one occurrence of the query. All offsets and lengths are in
// bytes of the original document text.
type Match struct {
	Offset        int    `json:"position"`
	End           int    `json:"end"`
	Line          int    `json:"line"`
	LineText      string `json:"line_text"`
	Exact         string `json:"exact_match"`
	Context       string `json:"context"`
	ContextOffset int    `json:"context_offset"`
	Length        int    `json:"match_length"`
}

// PlainContext returns the context window without highlight markers.
func (m Match) PlainContext() string {
	if len(m.Context) == m.Length {
		return m.Context
	}
	markerLen := len(highlightMarker)
	matchStart := m.ContextOffset + markerLen
	afterMatch := matchStart + m.Length + markerLen
	if afterMatch > len(m.Context) {
		return m.Context
	}
	return m.Context[:m.ContextOffset] + m.Context[matchStart:matchStart+m.Length] + m.Context[afterMatch:]
}

// Matcher finds literal occurrences of a compiled query. It holds no
// per-scan state and can be reused across documents.
type Matcher struct {
	pattern       *regexp.Regexp
	wholeWord     bool
	contextRadius int
}

func CheckQueryLength(text string) error {
	if length := utf8.RuneCountInString(text); length > MaxQueryLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrQueryTooLong, length, MaxQueryLength)
	}
	return nil
}

// Compile builds a Matcher for query. The query text is always treated as
// literal content. Case-insensitive matching folds case inside the regexp
// engine instead of lowercasing the text, so reported offsets always index
// the original text.
func Compile(query Query) (*Matcher, error) {
	if query.Text == "" {
		return nil, ErrEmptyQuery
	}
	if err := CheckQueryLength(query.Text); err != nil {
		return nil, err
	}

	expr := regexp.QuoteMeta(query.Text)
	if !query.CaseSensitive {
		expr = "(?i)" + expr
	}

	pattern, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	return &Matcher{
		pattern:       pattern,
		wholeWord:     query.WholeWord,
		contextRadius: max(0, query.ContextRadius),
	}, nil
}

// FindAll returns every non-overlapping match in text, ascending by offset.
func (m *Matcher) FindAll(text string) []Match {
	var matches []Match

	line := 1
	lineStart := 0
	lineEnd := lineEndAt(text, 0)

	for pos := 0; pos <= len(text); {
		loc := m.pattern.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if m.wholeWord && !isWordBounded(text, start, end) {
			// Resume one rune after the rejected start so overlapping
			// candidates are still considered.
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + max(size, 1)
			continue
		}

		// Line bounds only move forward.
		for start > lineEnd {
			lineStart = lineEnd + 1
			lineEnd = lineEndAt(text, lineStart)
			line++
		}

		matches = append(matches, m.newMatch(text, start, end, line, text[lineStart:lineEnd]))

		if end == start {
			end++
		}
		pos = end
	}

	return matches
}

func (m *Matcher) newMatch(text string, start int, end int, line int, lineText string) Match {
	exact := text[start:end]
	match := Match{
		Offset:   start,
		End:      end,
		Line:     line,
		LineText: lineText,
		Exact:    exact,
		Context:  exact,
		Length:   len(exact),
	}

	if m.contextRadius > 0 {
		windowStart := runesBefore(text, start, m.contextRadius)
		windowEnd := runesAfter(text, end, m.contextRadius)
		match.Context = text[windowStart:start] + highlightMarker + exact + highlightMarker + text[end:windowEnd]
		match.ContextOffset = start - windowStart
	}

	return match
}

// lineEndAt returns the offset of the first newline at or after lineStart,
// or len(text) on the final line.
func lineEndAt(text string, lineStart int) int {
	if i := strings.IndexByte(text[lineStart:], '\n'); i >= 0 {
		return lineStart + i
	}
	return len(text)
}

func runesBefore(text string, offset int, n int) int {
	for ; n > 0 && offset > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(text[:offset])
		offset -= size
	}
	return offset
}

func runesAfter(text string, offset int, n int) int {
	for ; n > 0 && offset < len(text); n-- {
		_, size := utf8.DecodeRuneInString(text[offset:])
		offset += size
	}
	return offset
}

func isWordBounded(text string, start int, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

// isWordRune reports whether r is a letter, number or underscore. Non-ASCII
// letters count as word runes.
func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
