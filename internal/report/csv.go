package report

import (
	"bytes"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/nao1215/urlextract/internal/classify"
	"github.com/nao1215/urlextract/internal/model"
)

// URLRow is one CSV line. Tier and Region are empty for URLs that are not
// administrative.
type URLRow struct {
	URL    string `csv:"url"`
	Domain string `csv:"domain"`
	Tier   string `csv:"tier"`
	Region string `csv:"region"`
}

// CSVWriter outputs one row per found URL, sorted by URL.
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as CSV with a header line.
func (w *CSVWriter) Write(report *model.CrawlReport) (int, error) {
	rows := URLRows(report)

	var buf bytes.Buffer
	if err := gocsv.Marshal(&rows, &buf); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// URLRows flattens report into rows. Tiers are only filled for
// administrative sites.
func URLRows(report *model.CrawlReport) []URLRow {
	tiers := make(map[model.CanonicalURL]model.Tier)
	for _, tier := range model.Tiers {
		for _, u := range report.Classification.ByTier(tier) {
			tiers[u] = tier
		}
	}

	rows := make([]URLRow, 0, report.FoundCount())
	for _, u := range model.SortURLs(report.Found) {
		row := URLRow{URL: u.String(), Domain: report.Domain}
		if tier, ok := tiers[u]; ok {
			row.Tier = string(tier)
			row.Region, _ = classify.RegionOf(u)
		}
		rows = append(rows, row)
	}
	return rows
}
