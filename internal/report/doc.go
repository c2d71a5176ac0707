// Package report renders crawl reports.
//
// Writers for the supported output formats:
//   - TextWriter: the result file layout, one URL per line under section
//     headers (DEPARTAMENTOS, PROVINCIAS, DISTRITOS, ...)
//   - SimpleWriter: a short human-readable summary for terminal display
//   - MarkdownWriter: a Markdown document grouped by region
//   - JSONWriter: structured JSON for tool integration
//   - CSVWriter: one row per URL with its tier and region
//   - XLSXWriter: a workbook with a summary sheet and one sheet per tier
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably and composed with MultiWriter. New picks a writer by format
// name. WriteResultFile writes the text layout to a file named after the
// crawled domain.
package report
