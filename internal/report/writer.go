package report

import (
	"fmt"
	"io"

	"github.com/nao1215/urlextract/internal/config"
	"github.com/nao1215/urlextract/internal/model"
)

// Writer defines the interface for report output.
// Implementations write crawl results in various formats.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.CrawlReport) (int, error)
}

// New returns the writer for format writing to output.
// version is embedded by the formats that carry metadata.
func New(format string, output io.Writer, version string) (Writer, error) {
	switch format {
	case config.FormatText:
		return NewTextWriter(output), nil
	case config.FormatMarkdown:
		return NewMarkdownWriter(output), nil
	case config.FormatJSON:
		return NewFullJSONWriter(output, version, WithPrettyPrint()), nil
	case config.FormatCSV:
		return NewCSVWriter(output), nil
	case config.FormatXLSX:
		return NewXLSXWriter(output), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Extension returns the file extension conventionally used for format.
func Extension(format string) string {
	switch format {
	case config.FormatMarkdown:
		return ".md"
	case config.FormatJSON:
		return ".json"
	case config.FormatCSV:
		return ".csv"
	case config.FormatXLSX:
		return ".xlsx"
	default:
		return ".txt"
	}
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the report to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(report *model.CrawlReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
