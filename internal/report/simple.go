package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/urlextract/internal/model"
)

// SimpleWriter outputs a short human-readable summary of a crawl.
// It is meant for the terminal and never lists every URL unless verbose.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether empty tiers are listed.
	showEmpty bool

	// verbose lists the URLs of every tier.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty tiers.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables listing the URLs of each tier.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary.
func (w *SimpleWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeStats(&sb, report)
	w.writeTiers(&sb, report)
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the crawl target and status.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.CrawlReport) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "RESULTS FOR %s\n", displayDomain(report))
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Seed:      %s\n", report.Seed)
	if report.BaseURL != "" {
		fmt.Fprintf(sb, "Base URL:  %s\n", report.BaseURL)
	}
	fmt.Fprintf(sb, "Depth:     %d\n", report.Depth)
	fmt.Fprintf(sb, "Started:   %s\n", report.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if d := report.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:  %s\n", d.Round(time.Millisecond))
	}

	switch {
	case report.Cancelled:
		sb.WriteString("Status:    INTERRUPTED (partial results)\n")
	case report.Failed():
		fmt.Fprintf(sb, "Status:    ERROR - %s\n", report.ErrorMessage)
	default:
		sb.WriteString("Status:    Complete\n")
	}
	sb.WriteString("\n")
}

// writeStats writes the traversal counters.
func (w *SimpleWriter) writeStats(sb *strings.Builder, report *model.CrawlReport) {
	fmt.Fprintf(sb, "  URLs found:           %d\n", report.FoundCount())
	if report.AdministrativeSite {
		fmt.Fprintf(sb, "  Administrative URLs:  %d\n", report.AdministrativeCount())
	}
	fmt.Fprintf(sb, "  URLs visited:         %d\n", report.Stats.Visited)
	fmt.Fprintf(sb, "  Skipped (status):     %d\n", report.Stats.SkippedStatus)
	fmt.Fprintf(sb, "  Skipped (extension):  %d\n", report.Stats.SkippedExtension)
	fmt.Fprintf(sb, "  Fetch failures:       %d\n", report.Stats.FetchFailures)
	sb.WriteString("\n")
}

// writeTiers writes the tier counts, and the URLs when verbose.
func (w *SimpleWriter) writeTiers(sb *strings.Builder, report *model.CrawlReport) {
	if report.Classification == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ADMINISTRATIVE TIERS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, tier := range model.Tiers {
		urls := report.Classification.ByTier(tier)
		if len(urls) == 0 && !w.showEmpty {
			continue
		}
		fmt.Fprintf(sb, "[%s] %d\n", sectionTitles[tier], len(urls))
		if w.verbose {
			for _, u := range urls {
				fmt.Fprintf(sb, "  * %s\n", u)
			}
		}
	}
	sb.WriteString("\n")
}

// displayDomain returns the domain, falling back to the seed before resolution.
func displayDomain(report *model.CrawlReport) string {
	if report.Domain != "" {
		return report.Domain
	}
	return report.Seed
}
