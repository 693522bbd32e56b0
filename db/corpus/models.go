package corpus

import (
	"strings"
	"unicode/utf8"
)

// Kind is the source format a document was ingested from. It is resolved
// once at ingestion and never changes for a stored document.
type Kind string

const (
	KindPlainText Kind = "txt"
	KindPDF       Kind = "pdf"
	KindHTML      Kind = "html"
)

type Metrics struct {
	Chars int `json:"chars"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

type Document struct {
	ID      string  `json:"id"`
	Kind    Kind    `json:"kind"`
	Size    int64   `json:"size"` // size of the raw upload in bytes
	Content string  `json:"-"`
	Metrics Metrics `json:"metrics"`
}

// NewDocument builds a document and derives its metrics from content.
func NewDocument(id string, kind Kind, size int64, content string) *Document {
	return &Document{
		ID:      id,
		Kind:    kind,
		Size:    size,
		Content: content,
		Metrics: computeMetrics(content),
	}
}

func computeMetrics(content string) Metrics {
	return Metrics{
		Chars: utf8.RuneCountInString(content),
		Words: len(strings.Fields(content)),
		Lines: strings.Count(content, "\n") + 1,
	}
}
