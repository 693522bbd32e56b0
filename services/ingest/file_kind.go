package ingest

import (
	"path/filepath"
	"strings"

	"github.com/meghashyamc/docsearch/db/corpus"
)

const maxIDLength = 255

const defaultID = "unnamed"

// resolveKind picks the document kind from the file extension. The boolean
// is false for extensions this ingester does not accept.
func (s *Service) resolveKind(filename string) (corpus.Kind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch {
	case ext == ".pdf":
		return corpus.KindPDF, true
	case ext == ".html" || ext == ".htm":
		return corpus.KindHTML, true
	case s.textExtensions[ext]:
		return corpus.KindPlainText, true
	}

	return "", false
}

// SanitizeFilename reduces an uploaded file name to a safe document ID: the
// last path element, with every rune other than letters, digits, '_', '-'
// and '.' replaced by '_', capped at 255 runes.
func SanitizeFilename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}

	var builder strings.Builder
	count := 0
	for _, r := range filename {
		if count == maxIDLength {
			break
		}
		if isAllowedIDRune(r) {
			builder.WriteRune(r)
		} else {
			builder.WriteRune('_')
		}
		count++
	}

	if builder.Len() == 0 {
		return defaultID
	}
	return builder.String()
}

func isAllowedIDRune(r rune) bool {
	return r == '-' || r == '.' || isWordRune(r)
}
