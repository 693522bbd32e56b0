package export

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/meghashyamc/docsearch/services/search"
)

const (
	reportTitle        = "Document Search Results"
	maxFilenameRunes   = 50
	reportFilePrefix   = "search_"
	reportFileSuffix   = ".txt"
	maxReportLineBytes = 1 << 20
)

var (
	headerRule = strings.Repeat("=", 60)
	fileRule   = strings.Repeat("-", 40)
)

var ErrMalformedReport = errors.New("malformed report")

// Values are written one per line, so line breaks inside them are escaped.
var (
	escaper   = strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\r`, "\r")
)

// Report is the content recovered from a formatted report. Match contexts
// carry no highlight markers.
type Report struct {
	Query  string
	Result search.Result
}

// FormatReport renders result as a plain-text report. The output depends
// only on its arguments.
func FormatReport(query string, result *search.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", reportTitle)
	fmt.Fprintf(&b, "Query: '%s'\n", escaper.Replace(query))
	fmt.Fprintf(&b, "Total matches: %d\n", result.TotalMatches)
	fmt.Fprintf(&b, "Files searched: %d\n", len(result.Files))
	fmt.Fprintf(&b, "%s\n", headerRule)

	for _, file := range result.Files {
		fmt.Fprintf(&b, "\nFile: %s\n", file.DocumentID)
		fmt.Fprintf(&b, "Matches: %d\n", file.MatchCount)
		fmt.Fprintf(&b, "%s\n", fileRule)

		for _, match := range file.Matches {
			fmt.Fprintf(&b, "\nLine %d, Position %d:\n", match.Line, match.Offset)
			fmt.Fprintf(&b, "Exact: %s\n", escaper.Replace(match.Exact))
			fmt.Fprintf(&b, "Context: ...%s...\n", escaper.Replace(match.PlainContext()))
			fmt.Fprintf(&b, "Length: %d bytes\n", match.Length)
		}
	}

	return b.String()
}

// ParseReport reads a report produced by FormatReport.
func ParseReport(r io.Reader) (*Report, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReportLineBytes)

	p := &reportParser{scanner: scanner}
	report := &Report{Result: search.Result{Files: []search.FileResult{}}}

	if err := p.expect(reportTitle); err != nil {
		return nil, err
	}
	query, err := p.field("Query: ")
	if err != nil {
		return nil, err
	}
	if len(query) < 2 || query[0] != '\'' || query[len(query)-1] != '\'' {
		return nil, p.malformed("query is not quoted")
	}
	report.Query = unescaper.Replace(query[1 : len(query)-1])

	if report.Result.TotalMatches, err = p.intField("Total matches: "); err != nil {
		return nil, err
	}
	fileCount, err := p.intField("Files searched: ")
	if err != nil {
		return nil, err
	}
	if err := p.expect(headerRule); err != nil {
		return nil, err
	}

	for i := 0; i < fileCount; i++ {
		file, err := p.file()
		if err != nil {
			return nil, err
		}
		report.Result.Files = append(report.Result.Files, file)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}

	return report, nil
}

type reportParser struct {
	scanner *bufio.Scanner
	line    int
}

func (p *reportParser) next() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read report: %w", err)
		}
		return "", p.malformed("unexpected end of report")
	}
	p.line++
	return p.scanner.Text(), nil
}

func (p *reportParser) malformed(reason string) error {
	return fmt.Errorf("%w: line %d: %s", ErrMalformedReport, p.line, reason)
}

func (p *reportParser) expect(want string) error {
	line, err := p.next()
	if err != nil {
		return err
	}
	if line != want {
		return p.malformed(fmt.Sprintf("expected %q", want))
	}
	return nil
}

func (p *reportParser) field(prefix string) (string, error) {
	line, err := p.next()
	if err != nil {
		return "", err
	}
	value, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return "", p.malformed(fmt.Sprintf("expected %q", prefix))
	}
	return value, nil
}

func (p *reportParser) intField(prefix string) (int, error) {
	value, err := p.field(prefix)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, p.malformed(fmt.Sprintf("%s is not a number", strings.TrimSuffix(prefix, ": ")))
	}
	return n, nil
}

func (p *reportParser) file() (search.FileResult, error) {
	var file search.FileResult

	if err := p.expect(""); err != nil {
		return file, err
	}
	id, err := p.field("File: ")
	if err != nil {
		return file, err
	}
	file.DocumentID = id
	if file.MatchCount, err = p.intField("Matches: "); err != nil {
		return file, err
	}
	if err := p.expect(fileRule); err != nil {
		return file, err
	}

	file.Matches = make([]search.Match, 0, file.MatchCount)
	for i := 0; i < file.MatchCount; i++ {
		match, err := p.match()
		if err != nil {
			return file, err
		}
		file.Matches = append(file.Matches, match)
	}

	return file, nil
}

func (p *reportParser) match() (search.Match, error) {
	var match search.Match

	if err := p.expect(""); err != nil {
		return match, err
	}
	line, err := p.next()
	if err != nil {
		return match, err
	}
	if _, err := fmt.Sscanf(line, "Line %d, Position %d:", &match.Line, &match.Offset); err != nil {
		return match, p.malformed("expected match location")
	}

	exact, err := p.field("Exact: ")
	if err != nil {
		return match, err
	}
	match.Exact = unescaper.Replace(exact)

	context, err := p.field("Context: ")
	if err != nil {
		return match, err
	}
	if len(context) < 6 || !strings.HasPrefix(context, "...") || !strings.HasSuffix(context, "...") {
		return match, p.malformed("context is not delimited")
	}
	match.Context = unescaper.Replace(context[3 : len(context)-3])

	length, err := p.field("Length: ")
	if err != nil {
		return match, err
	}
	if _, err := fmt.Sscanf(length, "%d bytes", &match.Length); err != nil {
		return match, p.malformed("expected match length")
	}
	match.End = match.Offset + match.Length

	return match, nil
}

// ReportFilename names the downloadable report for query.
func ReportFilename(query string) string {
	runes := []rune(query)
	if len(runes) > maxFilenameRunes {
		runes = runes[:maxFilenameRunes]
	}

	name := strings.Map(func(r rune) rune {
		if r == ' ' {
			return '_'
		}
		if r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return '_'
	}, string(runes))

	return reportFilePrefix + name + reportFileSuffix
}
