package viewer

import (
	"fmt"
	"strings"

	"github.com/meghashyamc/docsearch/db/corpus"
)

type Mode string

const (
	ModeFull      Mode = "full"
	ModeNumbered  Mode = "numbered"
	ModePaginated Mode = "paginated"
)

const (
	DefaultLinesPerPage = 100
	MinLinesPerPage     = 50
	MaxLinesPerPage     = 200
)

func (m Mode) IsValid() bool {
	switch m {
	case ModeFull, ModeNumbered, ModePaginated:
		return true
	}
	return false
}

// Page is one slice of a document's lines. FirstLine and LastLine are
// 1-based and inclusive.
type Page struct {
	Number       int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	LinesPerPage int    `json:"lines_per_page"`
	TotalLines   int    `json:"total_lines"`
	FirstLine    int    `json:"first_line"`
	LastLine     int    `json:"last_line"`
	Content      string `json:"content"`
}

const downloadSuffix = "_extracted.txt"

func Full(doc *corpus.Document) string {
	return doc.Content
}

// DownloadFilename names the plain-text download of a document's extracted
// content.
func DownloadFilename(doc *corpus.Document) string {
	return doc.ID + downloadSuffix
}

// Numbered prefixes every line with its right-aligned 1-based number.
func Numbered(doc *corpus.Document) string {
	var b strings.Builder
	for i, line := range strings.Split(doc.Content, "\n") {
		fmt.Fprintf(&b, "%6d | %s\n", i+1, line)
	}
	return b.String()
}

// Paginate returns the requested page. Lines per page is clamped to
// [MinLinesPerPage, MaxLinesPerPage] with zero meaning the default, and
// page is clamped to the pages that exist.
func Paginate(doc *corpus.Document, page int, linesPerPage int) Page {
	lines := strings.Split(doc.Content, "\n")

	linesPerPage = ClampLinesPerPage(linesPerPage)
	totalPages := max(1, (len(lines)+linesPerPage-1)/linesPerPage)
	page = min(max(page, 1), totalPages)

	start := (page - 1) * linesPerPage
	end := min(start+linesPerPage, len(lines))

	return Page{
		Number:       page,
		TotalPages:   totalPages,
		LinesPerPage: linesPerPage,
		TotalLines:   len(lines),
		FirstLine:    start + 1,
		LastLine:     end,
		Content:      strings.Join(lines[start:end], "\n"),
	}
}

func ClampLinesPerPage(linesPerPage int) int {
	if linesPerPage == 0 {
		return DefaultLinesPerPage
	}
	return min(max(linesPerPage, MinLinesPerPage), MaxLinesPerPage)
}
