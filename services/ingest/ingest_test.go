package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meghashyamc/docsearch/db/corpus"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/stretchr/testify/require"
)

const testMaxFileSize = 50 * 1024 * 1024

func newTestLogger() logger.Logger {
	opts := &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}
	handler := slog.NewJSONHandler(os.Stderr, opts)
	return slog.New(handler)
}

func newTestService(t *testing.T, modify func(*Options)) (*Service, string) {
	tempDir := t.TempDir()
	opts := Options{
		MaxFileSize:    testMaxFileSize,
		TextExtensions: []string{".txt", "md"},
		PDFEnabled:     true,
		HTMLEnabled:    true,
		TempDir:        tempDir,
	}
	if modify != nil {
		modify(&opts)
	}
	return New(newTestLogger(), opts), tempDir
}

var ingestTestCases = []struct {
	name            string
	filename        string
	content         []byte
	options         func(*Options)
	expectedReason  Reason
	expectedID      string
	expectedKind    corpus.Kind
	expectedContent string
}{
	{
		name:            "PlainText",
		filename:        "notes.txt",
		content:         []byte("hello world\nsecond line"),
		expectedID:      "notes.txt",
		expectedKind:    corpus.KindPlainText,
		expectedContent: "hello world\nsecond line",
	},
	{
		name:            "MarkdownExtensionWithoutDot",
		filename:        "README.MD",
		content:         []byte("# Title"),
		expectedID:      "README.MD",
		expectedKind:    corpus.KindPlainText,
		expectedContent: "# Title",
	},
	{
		name:            "Latin1Fallback",
		filename:        "legacy.txt",
		content:         []byte{'c', 'a', 'f', 0xe9},
		expectedID:      "legacy.txt",
		expectedKind:    corpus.KindPlainText,
		expectedContent: "café",
	},
	{
		name:            "NullByteAfterWindowIsAccepted",
		filename:        "late-null.txt",
		content:         append([]byte(strings.Repeat("a", nullByteWindow)), 0),
		expectedID:      "late-null.txt",
		expectedKind:    corpus.KindPlainText,
		expectedContent: strings.Repeat("a", nullByteWindow) + "\x00",
	},
	{
		name:           "NullByteInWindow",
		filename:       "binary.txt",
		content:        append([]byte(strings.Repeat("a", nullByteWindow-1)), 0),
		expectedReason: ReasonNullByte,
	},
	{
		name:           "Oversized",
		filename:       "big.txt",
		content:        []byte("0123456789a"),
		options:        func(o *Options) { o.MaxFileSize = 10 },
		expectedReason: ReasonOversized,
	},
	{
		name:           "UnsupportedExtension",
		filename:       "program.exe",
		content:        []byte("MZ"),
		expectedReason: ReasonUnsupportedFormat,
	},
	{
		name:           "PDFDisabled",
		filename:       "paper.pdf",
		content:        []byte("%PDF-1.4"),
		options:        func(o *Options) { o.PDFEnabled = false },
		expectedReason: ReasonUnsupportedFormat,
	},
	{
		name:           "CorruptPDF",
		filename:       "broken.pdf",
		content:        []byte("%PDF-1.4\nthis is not really a pdf"),
		expectedReason: ReasonUnsupportedFormat,
	},
	{
		name:           "WhitespaceOnly",
		filename:       "blank.txt",
		content:        []byte(" \n\t\n "),
		expectedReason: ReasonUnreadable,
	},
	{
		name:           "EmptyFile",
		filename:       "empty.md",
		content:        []byte{},
		expectedReason: ReasonUnreadable,
	},
	{
		name:           "HTMLWithoutText",
		filename:       "page.html",
		content:        []byte("<html><head><script>var a = 1;</script></head><body>  </body></html>"),
		expectedReason: ReasonUnreadable,
	},
	{
		name:           "HTMLDisabled",
		filename:       "page.htm",
		content:        []byte("<p>hello</p>"),
		options:        func(o *Options) { o.HTMLEnabled = false },
		expectedReason: ReasonUnsupportedFormat,
	},
	{
		name:            "PathComponentsStripped",
		filename:        "../../secret/report.txt",
		content:         []byte("content"),
		expectedID:      "report.txt",
		expectedKind:    corpus.KindPlainText,
		expectedContent: "content",
	},
}

func TestIngest(t *testing.T) {
	for _, testCase := range ingestTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			service, _ := newTestService(t, testCase.options)

			doc, err := service.Ingest(testCase.filename, testCase.content)

			if testCase.expectedReason != "" {
				assert.Nil(doc, "a rejected file should not yield a document")
				var rejection *RejectionError
				assert.True(errors.As(err, &rejection), "expected a rejection error, got %v", err)
				assert.Equal(testCase.expectedReason, rejection.Reason)
				assert.True(errors.Is(err, reasonErrors[testCase.expectedReason]))
				return
			}

			assert.NoError(err)
			assert.Equal(testCase.expectedID, doc.ID)
			assert.Equal(testCase.expectedKind, doc.Kind)
			assert.Equal(testCase.expectedContent, doc.Content)
			assert.Equal(int64(len(testCase.content)), doc.Size)
		})
	}
}

func TestIngestRejectsFilesOverFiftyMegabytes(t *testing.T) {
	assert := require.New(t)
	service, _ := newTestService(t, nil)

	doc, err := service.Ingest("huge.txt", make([]byte, testMaxFileSize+1))
	assert.Nil(doc)
	assert.True(errors.Is(err, ErrOversized))
}

func TestIngestHTML(t *testing.T) {
	assert := require.New(t)
	service, _ := newTestService(t, nil)
	page := `<html><head><title>Guide</title><style>p { color: red; }</style></head>
<body><p>Hello <b>world</b></p><script>var hidden = true;</script></body></html>`

	doc, err := service.Ingest("guide.html", []byte(page))
	assert.NoError(err)
	assert.Equal(corpus.KindHTML, doc.Kind)
	assert.Contains(doc.Content, "Guide")
	assert.Contains(doc.Content, "Hello world")
	assert.NotContains(doc.Content, "hidden")
	assert.NotContains(doc.Content, "color")
}

// buildTestPDF writes an uncompressed PDF with one text line per page and a
// valid cross-reference table.
func buildTestPDF(pages ...string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled in once page object numbers are known
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}
	var kids []string
	for _, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		contentRef := len(objects)
		objects = append(objects, fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", contentRef))
		kids = append(kids, fmt.Sprintf("%d 0 R", len(objects)))
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, object := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, object)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offset)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}

func TestIngestPDF(t *testing.T) {
	assert := require.New(t)
	service, tempDir := newTestService(t, nil)
	content := buildTestPDF("Hello page one", "Second page")

	doc, err := service.Ingest("paper.pdf", content)
	assert.NoError(err)
	assert.Equal("paper.pdf", doc.ID)
	assert.Equal(corpus.KindPDF, doc.Kind)
	assert.Equal("Hello page one\n\nSecond page\n\n", doc.Content, "pages should be joined with blank lines")
	assert.Equal(int64(len(content)), doc.Size)

	entries, err := os.ReadDir(tempDir)
	assert.NoError(err)
	assert.Empty(entries, "temporary PDF file should be removed after a successful extraction")
}

func TestCorruptPDFRemovesTempFile(t *testing.T) {
	assert := require.New(t)
	service, tempDir := newTestService(t, nil)

	_, err := service.Ingest("broken.pdf", []byte("%PDF-1.7\n1 0 obj\n<<>>\nendobj\n"))
	assert.True(errors.Is(err, ErrUnsupportedFormat))

	entries, err := os.ReadDir(tempDir)
	assert.NoError(err)
	assert.Empty(entries, "temporary PDF file should be removed after a failed extraction")
}

func TestRejectionMessageIsGeneric(t *testing.T) {
	assert := require.New(t)
	service, _ := newTestService(t, nil)

	_, err := service.Ingest("broken.pdf", []byte("not a pdf"))
	assert.Equal("broken.pdf: unsupported or corrupt file format", err.Error())
}

func TestIngestFile(t *testing.T) {
	assert := require.New(t)
	service, _ := newTestService(t, func(o *Options) { o.MaxFileSize = 64 })
	dir := t.TempDir()

	smallPath := filepath.Join(dir, "small.txt")
	assert.NoError(os.WriteFile(smallPath, []byte("small file"), 0644))
	doc, err := service.IngestFile(smallPath)
	assert.NoError(err)
	assert.Equal("small.txt", doc.ID)

	bigPath := filepath.Join(dir, "big.txt")
	assert.NoError(os.WriteFile(bigPath, []byte(strings.Repeat("x", 65)), 0644))
	_, err = service.IngestFile(bigPath)
	assert.True(errors.Is(err, ErrOversized))

	_, err = service.IngestFile(filepath.Join(dir, "missing.txt"))
	assert.Error(err)
	var rejection *RejectionError
	assert.False(errors.As(err, &rejection), "a missing file is an I/O error, not a rejection")
}

func TestIngestReader(t *testing.T) {
	assert := require.New(t)
	service, _ := newTestService(t, func(o *Options) { o.MaxFileSize = 8 })

	doc, err := service.IngestReader("exact.txt", strings.NewReader("12345678"))
	assert.NoError(err)
	assert.Equal(8, doc.Metrics.Chars)

	_, err = service.IngestReader("over.txt", strings.NewReader(strings.Repeat("9", 4096)))
	assert.ErrorIs(err, ErrOversized)
}

var sanitizeTestCases = []struct {
	name     string
	input    string
	expected string
}{
	{name: "Plain", input: "notes.txt", expected: "notes.txt"},
	{name: "UnixPath", input: "../../etc/passwd", expected: "passwd"},
	{name: "WindowsPath", input: `C:\Users\me\my file.txt`, expected: "my_file.txt"},
	{name: "DisallowedCharacters", input: "report (final)!.md", expected: "report__final__.md"},
	{name: "UnicodeLettersKept", input: "résumé.txt", expected: "résumé.txt"},
	{name: "Empty", input: "", expected: defaultID},
	{name: "TrailingSlash", input: "dir/", expected: defaultID},
	{name: "Capped", input: strings.Repeat("a", 300), expected: strings.Repeat("a", maxIDLength)},
}

func TestSanitizeFilename(t *testing.T) {
	for _, testCase := range sanitizeTestCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert := require.New(t)
			assert.Equal(testCase.expected, SanitizeFilename(testCase.input))
		})
	}
}
