package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/urlextract/internal/model"
)

// sectionTitles are the text headers of the administrative tiers.
var sectionTitles = map[model.Tier]string{
	model.TierRegion:   "DEPARTAMENTOS",
	model.TierProvince: "PROVINCIAS",
	model.TierDistrict: "DISTRITOS",
	model.TierOther:    "OTRAS URLs ADMINISTRATIVAS",
}

// TextWriter writes the plain-text result file layout.
//
// Administrative sites get a header with both totals followed by one section
// per non-empty tier. Every section but the last tier is followed by a blank
// line. Other sites get a single section listing every found URL.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report in the result file layout.
func (w *TextWriter) Write(report *model.CrawlReport) (int, error) {
	var sb strings.Builder

	if report.AdministrativeSite {
		writeAdministrative(&sb, report)
	} else {
		fmt.Fprintf(&sb, "=== TODAS LAS URLs ENCONTRADAS EN %s ===\n\n", report.Domain)
		for _, u := range model.SortURLs(report.Found) {
			sb.WriteString(u.String())
			sb.WriteString("\n")
		}
	}

	return io.WriteString(w.output, sb.String())
}

func writeAdministrative(sb *strings.Builder, report *model.CrawlReport) {
	fmt.Fprintf(sb, "=== RESULTADOS PARA %s ===\n", report.Domain)
	fmt.Fprintf(sb, "Total de URLs encontradas: %d\n", report.FoundCount())
	fmt.Fprintf(sb, "URLs administrativas: %d\n\n", report.AdministrativeCount())

	for _, tier := range model.Tiers {
		urls := report.Classification.ByTier(tier)
		if len(urls) == 0 {
			continue
		}
		fmt.Fprintf(sb, "=== %s ===\n", sectionTitles[tier])
		for _, u := range model.SortURLs(urls) {
			sb.WriteString(u.String())
			sb.WriteString("\n")
		}
		if tier != model.TierOther {
			sb.WriteString("\n")
		}
	}
}

// ResultFileName returns the result file name for domain:
// urls_administrativas_<domain>.txt for administrative sites and
// urls_<domain>.txt otherwise.
func ResultFileName(domain string, administrative bool) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(domain)
	if administrative {
		return "urls_administrativas_" + name + ".txt"
	}
	return "urls_" + name + ".txt"
}

// WriteResultFile writes report in the text layout to dir and returns the
// path of the written file. dir is created if needed.
func WriteResultFile(dir string, report *model.CrawlReport) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}

	path := filepath.Join(dir, ResultFileName(report.Domain, report.AdministrativeSite))
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("failed to create result file: %w", err)
	}

	if _, err := NewTextWriter(f).Write(report); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write result file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close result file: %w", err)
	}
	return path, nil
}
