package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/urlextract/internal/classify"
	"github.com/nao1215/urlextract/internal/model"
)

// Sheet names of the workbook.
const (
	SheetSummary = "Summary"
	SheetURLs    = "URLs"
)

// XLSXWriter outputs a workbook with a summary sheet, a sheet with every
// found URL and, for administrative sites, one sheet per non-empty tier.
type XLSXWriter struct {
	baseWriter
}

// NewXLSXWriter creates an XLSXWriter that outputs to the given writer.
func NewXLSXWriter(output io.Writer) *XLSXWriter {
	return &XLSXWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the report as an XLSX workbook.
func (w *XLSXWriter) Write(report *model.CrawlReport) (int, error) {
	f, err := Workbook(report)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	n, err := f.WriteTo(w.output)
	return int(n), err
}

// Workbook builds the workbook for report. The caller must Close it.
func Workbook(report *model.CrawlReport) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSummarySheet(f, report); err != nil {
		_ = f.Close()
		return nil, err
	}

	rows := URLRows(report)
	table := make([][]any, len(rows))
	for i, r := range rows {
		table[i] = []any{r.URL, r.Tier, r.Region}
	}
	if err := writeSheet(f, SheetURLs, []any{"URL", "Tier", "Region"}, table); err != nil {
		_ = f.Close()
		return nil, err
	}

	if report.AdministrativeSite {
		for _, tier := range model.Tiers {
			urls := report.Classification.ByTier(tier)
			if len(urls) == 0 {
				continue
			}
			table := make([][]any, len(urls))
			for i, u := range urls {
				region, _ := classify.RegionOf(u)
				table[i] = []any{u.String(), classify.DisplayName(region)}
			}
			if err := writeSheet(f, tierLabels[tier], []any{"URL", "Region"}, table); err != nil {
				_ = f.Close()
				return nil, err
			}
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func writeSummarySheet(f *excelize.File, report *model.CrawlReport) error {
	c := report.Classification
	rows := [][]any{
		{"Seed", report.Seed},
		{"Base URL", report.BaseURL.String()},
		{"Domain", report.Domain},
		{"Depth", report.Depth},
		{"Started", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
		{"Status", statusText(report)},
		{"URLs found", report.FoundCount()},
		{"Administrative URLs", report.AdministrativeCount()},
		{tierLabels[model.TierRegion], len(c.ByTier(model.TierRegion))},
		{tierLabels[model.TierProvince], len(c.ByTier(model.TierProvince))},
		{tierLabels[model.TierDistrict], len(c.ByTier(model.TierDistrict))},
		{tierLabels[model.TierOther], len(c.ByTier(model.TierOther))},
		{"URLs visited", report.Stats.Visited},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return f.SetColWidth(SheetSummary, "A", "B", 28)
}

// writeSheet creates sheet and fills it with a header row and rows.
func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", sheet, err)
		}
	}
	return f.SetColWidth(sheet, "A", "A", 80)
}
