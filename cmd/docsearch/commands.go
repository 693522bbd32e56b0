package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/meghashyamc/docsearch/api"
	"github.com/meghashyamc/docsearch/config"
	"github.com/meghashyamc/docsearch/db/kvdb"
	"github.com/meghashyamc/docsearch/logger"
	"github.com/meghashyamc/docsearch/services/analytics"
	"github.com/meghashyamc/docsearch/services/export"
	"github.com/meghashyamc/docsearch/services/ingest"
	"github.com/meghashyamc/docsearch/services/search"
	"github.com/meghashyamc/docsearch/session"
	"github.com/urfave/cli/v2"
)

var errNoDocuments = errors.New("no documents could be loaded")

// openSession loads every --file into a fresh session. Rejected files are
// reported and skipped. The history store lives in the OS temp directory so
// a CLI run never touches a running server's files.
func openSession(c *cli.Context) (*session.Session, *config.Config, error) {
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(c.String("log-level"))
	kvDB, err := kvdb.New(log, filepath.Join(os.TempDir(), fmt.Sprintf("docsearch-%s.db", uuid.New())))
	if err != nil {
		return nil, nil, err
	}

	sess := session.New(log, ingest.New(log, ingest.OptionsFromConfig(cfg)), search.New(log), kvDB, cfg.GetHistoryLimit())

	for _, path := range c.StringSlice("file") {
		if _, err := sess.AddFile(path); err != nil {
			fmt.Fprintf(c.App.ErrWriter, "skipping %s: %s\n", path, describeLoadError(err))
		}
	}
	if sess.Len() == 0 {
		sess.Close()
		return nil, nil, errNoDocuments
	}

	return sess, cfg, nil
}

func describeLoadError(err error) string {
	var rejection *ingest.RejectionError
	if errors.As(err, &rejection) {
		return string(rejection.Reason)
	}
	return "could not read file"
}

func searchCommand(c *cli.Context) error {
	sess, cfg, err := openSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	query := search.Query{
		Text:          c.String("query"),
		CaseSensitive: c.Bool("case-sensitive"),
		WholeWord:     c.Bool("whole-word"),
		ContextRadius: cfg.GetDefaultContextChars(),
	}
	if c.IsSet("context") {
		query.ContextRadius = c.Int("context")
	}

	result, err := sess.Search(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if c.Bool("no-color") {
		color.NoColor = true
	}
	printResult(c.App.Writer, result)

	if path := c.String("export"); path != "" {
		if err := os.WriteFile(path, []byte(export.FormatReport(query.Text, result)), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "report written to %s\n", path)
	}

	return nil
}

func analyzeCommand(c *cli.Context) error {
	sess, _, err := openSession(c)
	if err != nil {
		return err
	}
	defer sess.Close()

	log := logger.New(c.String("log-level"))
	printSummary(c.App.Writer, analytics.New(log).Summarize(sess.Documents()))

	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("env"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return api.Run(context.Background(), cfg)
}

func printResult(w io.Writer, result *search.Result) {
	fileHeader := color.New(color.FgCyan, color.Bold).SprintFunc()
	location := color.New(color.FgGreen).SprintFunc()
	highlight := color.New(color.FgYellow, color.Bold).SprintFunc()

	if result.TotalMatches == 0 {
		fmt.Fprintln(w, "no matches")
		return
	}

	for _, file := range result.Files {
		fmt.Fprintf(w, "%s (%d matches)\n", fileHeader(file.DocumentID), file.MatchCount)
		for _, match := range file.Matches {
			fmt.Fprintf(w, "  %s  %s\n", location(fmt.Sprintf("%d:%d", match.Line, match.Offset)), renderMatch(match, highlight))
		}
	}
	fmt.Fprintf(w, "%d matches in %d files\n", result.TotalMatches, len(result.Files))
}

// renderMatch returns the context window on one line with the match passed
// through highlight in place of its markers.
func renderMatch(match search.Match, highlight func(a ...interface{}) string) string {
	plain := match.PlainContext()
	before := plain[:match.ContextOffset]
	after := plain[match.ContextOffset+match.Length:]

	flatten := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")
	return flatten.Replace(before) + highlight(flatten.Replace(match.Exact)) + flatten.Replace(after)
}

func printSummary(w io.Writer, summary *analytics.Summary) {
	heading := color.New(color.Bold).SprintFunc()

	fmt.Fprintln(w, heading("Totals"))
	fmt.Fprintf(w, "  files: %d  chars: %d  words: %d  lines: %d\n",
		summary.Totals.Files, summary.Totals.Chars, summary.Totals.Words, summary.Totals.Lines)

	fmt.Fprintln(w, heading("Top words"))
	for _, word := range summary.TopWords {
		fmt.Fprintf(w, "  %-20s %6d (%.1f%%)\n", word.Word, word.Count, word.Percentage)
	}

	fmt.Fprintln(w, heading("Largest documents"))
	for _, doc := range summary.Largest {
		fmt.Fprintf(w, "  %-30s %8d chars %8d words %5.0f%%\n", doc.ID, doc.Chars, doc.Words, doc.Ratio*100)
	}
}
