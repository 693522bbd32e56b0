package ingest

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"
	"golang.org/x/text/encoding/charmap"
)

// TextExtractor turns the raw bytes of one file kind into plain text.
type TextExtractor interface {
	ExtractText(content []byte) (string, error)
}

type plainTextExtractor struct{}

func (plainTextExtractor) ExtractText(content []byte) (string, error) {
	return decodeText(content)
}

// decodeText reads content as UTF-8, falling back to ISO-8859-1 when the
// bytes are not valid UTF-8. The fallback is lossy but never rejects input.
func decodeText(content []byte) (string, error) {
	if utf8.Valid(content) {
		return string(content), nil
	}

	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecodeFailure, err)
	}

	return string(decoded), nil
}

type pdfExtractor struct {
	tempDir string
}

// ExtractText writes content to a temporary file for the PDF reader and
// joins the text of every non-empty page with a blank line. The temporary
// file is removed on every return path.
func (e *pdfExtractor) ExtractText(content []byte) (text string, err error) {
	tmp, err := os.CreateTemp(e.tempDir, "docsearch-*.pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temporary file: %w", err)
	}

	// The PDF reader panics on some malformed input.
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: pdf reader panicked: %v", ErrUnsupportedFormat, r)
		}
	}()

	file, reader, err := pdf.Open(tmpPath)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	defer file.Close()

	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("%w: page %d: %w", ErrUnsupportedFormat, i, err)
		}
		if pageText != "" {
			builder.WriteString(pageText)
			builder.WriteString("\n\n")
		}
	}

	return builder.String(), nil
}

type htmlExtractor struct{}

func (htmlExtractor) ExtractText(content []byte) (string, error) {
	decoded, err := decodeText(content)
	if err != nil {
		return "", err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedFormat, err)
	}
	doc.Find("script, style, noscript, template").Remove()

	return doc.Text(), nil
}
