package ingest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/meghashyamc/docsearch/config"
	"github.com/meghashyamc/docsearch/db/corpus"
	"github.com/meghashyamc/docsearch/logger"
)

// nullByteWindow is how many leading bytes are checked for NUL bytes.
const nullByteWindow = 1024

type Options struct {
	MaxFileSize    int64
	TextExtensions []string
	PDFEnabled     bool
	HTMLEnabled    bool
	TempDir        string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		MaxFileSize:    cfg.GetMaxFileSize(),
		TextExtensions: cfg.GetTextExtensions(),
		PDFEnabled:     cfg.IsPDFEnabled(),
		HTMLEnabled:    cfg.IsHTMLEnabled(),
		TempDir:        cfg.GetTempDir(),
	}
}

type Service struct {
	logger         logger.Logger
	maxFileSize    int64
	textExtensions map[string]bool
	extractors     map[corpus.Kind]TextExtractor
}

// New builds an ingester. Optional formats are registered here once; a
// kind without an extractor is rejected as unsupported.
func New(logger logger.Logger, opts Options) *Service {
	textExtensions := make(map[string]bool, len(opts.TextExtensions))
	for _, ext := range opts.TextExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		textExtensions[ext] = true
	}

	extractors := map[corpus.Kind]TextExtractor{
		corpus.KindPlainText: plainTextExtractor{},
	}
	if opts.PDFEnabled {
		extractors[corpus.KindPDF] = &pdfExtractor{tempDir: opts.TempDir}
	}
	if opts.HTMLEnabled {
		extractors[corpus.KindHTML] = htmlExtractor{}
	}

	return &Service{
		logger:         logger,
		maxFileSize:    opts.MaxFileSize,
		textExtensions: textExtensions,
		extractors:     extractors,
	}
}

// Ingest validates and extracts one uploaded file. It returns either a
// complete document or a *RejectionError.
func (s *Service) Ingest(filename string, content []byte) (*corpus.Document, error) {
	id := SanitizeFilename(filename)

	if int64(len(content)) > s.maxFileSize {
		s.logger.Warn("rejected oversized file", "filename", id, "size", len(content), "max_size", s.maxFileSize)
		return nil, reject(id, ReasonOversized)
	}

	if bytes.IndexByte(content[:min(len(content), nullByteWindow)], 0) >= 0 {
		s.logger.Warn("rejected file with null bytes", "filename", id)
		return nil, reject(id, ReasonNullByte)
	}

	kind, ok := s.resolveKind(id)
	if !ok {
		s.logger.Warn("rejected file with unsupported extension", "filename", id)
		return nil, reject(id, ReasonUnsupportedFormat)
	}
	extractor, ok := s.extractors[kind]
	if !ok {
		s.logger.Warn("support for file kind is disabled", "filename", id, "kind", kind)
		return nil, reject(id, ReasonUnsupportedFormat)
	}

	text, err := extractor.ExtractText(content)
	if err != nil {
		s.logger.Warn("could not extract text", "filename", id, "kind", kind, "err", err.Error())
		return nil, reject(id, reasonFor(err))
	}

	if strings.TrimSpace(text) == "" {
		s.logger.Warn("rejected empty or unreadable file", "filename", id)
		return nil, reject(id, ReasonUnreadable)
	}

	doc := corpus.NewDocument(id, kind, int64(len(content)), text)
	s.logger.Info("ingested document", "id", doc.ID, "kind", doc.Kind, "chars", doc.Metrics.Chars)

	return doc, nil
}

// IngestFile reads a local file and ingests it. The size limit is checked
// before the file is read.
func (s *Service) IngestFile(path string) (*corpus.Document, error) {
	name := filepath.Base(path)

	file, err := os.Open(path)
	if err != nil {
		s.logger.Error("could not open file", "path", path, "err", err.Error())
		return nil, fmt.Errorf("could not open %s: %w", name, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat %s: %w", name, err)
	}
	if stat.Size() > s.maxFileSize {
		s.logger.Warn("rejected oversized file", "path", path, "size", stat.Size(), "max_size", s.maxFileSize)
		return nil, reject(SanitizeFilename(name), ReasonOversized)
	}

	return s.IngestReader(name, file)
}

// IngestReader ingests content read from r. At most one byte past the size
// limit is read, which is enough to reject an oversized upload.
func (s *Service) IngestReader(filename string, r io.Reader) (*corpus.Document, error) {
	content, err := io.ReadAll(io.LimitReader(r, s.maxFileSize+1))
	if err != nil {
		s.logger.Warn("could not read upload", "filename", filename, "err", err.Error())
		return nil, fmt.Errorf("could not read %s: %w", SanitizeFilename(filename), err)
	}

	return s.Ingest(filename, content)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
