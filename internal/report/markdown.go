package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/urlextract/internal/classify"
	"github.com/nao1215/urlextract/internal/model"
)

// tierLabels are the Markdown labels of the administrative tiers.
var tierLabels = map[model.Tier]string{
	model.TierRegion:   "Departamentos",
	model.TierProvince: "Provincias",
	model.TierDistrict: "Distritos",
	model.TierOther:    "Otras",
}

// MarkdownWriter outputs reports in Markdown format.
// Administrative sites are grouped by region, other sites list every URL.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.CrawlReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeStats(md, report)
	if report.AdministrativeSite {
		w.writeTiers(md, report)
		w.writeRegions(md, report)
	} else {
		w.writeAllURLs(md, report)
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the crawl target table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.CrawlReport) {
	md.H1("URL report for " + displayDomain(report))
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Seed", "`" + report.Seed + "`"},
			{"Base URL", "`" + report.BaseURL.String() + "`"},
			{"Depth", strconv.Itoa(report.Depth)},
			{"Crawl Date", report.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", statusText(report)},
		},
	})
	md.PlainText("")

	switch {
	case report.Cancelled:
		md.Warning("The crawl was interrupted. Results are partial.")
		md.PlainText("")
	case report.Failed():
		md.Caution(report.ErrorMessage)
		md.PlainText("")
	}
}

// statusText returns the status text based on report state.
func statusText(report *model.CrawlReport) string {
	if report.Cancelled {
		return "⚠️ Interrupted (partial results)"
	}
	if report.Failed() {
		return "❌ Error - " + report.ErrorMessage
	}
	return "✅ Complete"
}

// writeStats writes the traversal counters.
func (w *MarkdownWriter) writeStats(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Crawl Summary")
	md.PlainText("")

	rows := [][]string{
		{"URLs found", strconv.Itoa(report.FoundCount())},
	}
	if report.AdministrativeSite {
		rows = append(rows, []string{"Administrative URLs", strconv.Itoa(report.AdministrativeCount())})
	}
	rows = append(rows,
		[]string{"URLs visited", strconv.Itoa(report.Stats.Visited)},
		[]string{"Skipped (status)", strconv.Itoa(report.Stats.SkippedStatus)},
		[]string{"Skipped (extension)", strconv.Itoa(report.Stats.SkippedExtension)},
		[]string{"Fetch failures", strconv.Itoa(report.Stats.FetchFailures)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeTiers writes the tier counts and a pie chart of their distribution.
func (w *MarkdownWriter) writeTiers(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("Administrative Tiers")
	md.PlainText("")

	rows := make([][]string, 0, len(model.Tiers))
	for _, tier := range model.Tiers {
		rows = append(rows, []string{tierLabels[tier], strconv.Itoa(len(report.Classification.ByTier(tier)))})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tier", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if report.Classification.Total() == 0 {
		md.Note("No administrative pages were found.")
		md.PlainText("")
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Administrative pages by tier"),
		piechart.WithShowData(true),
	)
	for _, tier := range model.Tiers {
		if n := len(report.Classification.ByTier(tier)); n > 0 {
			chart.LabelAndIntValue(tierLabels[tier], uint64(n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeRegions writes one section per region, in gazetteer order.
func (w *MarkdownWriter) writeRegions(md *markdown.Markdown, report *model.CrawlReport) {
	groups := classify.GroupByRegion(report.Administrative)
	if len(groups) == 0 {
		return
	}

	md.H2("Pages by Region")
	md.PlainText("")

	for _, region := range classify.Regions() {
		urls := groups[region]
		if len(urls) == 0 {
			continue
		}
		md.H3(classify.DisplayName(region) + " (" + strconv.Itoa(len(urls)) + ")")
		md.PlainText("")

		rows := make([][]string, len(urls))
		for i, u := range urls {
			tier, _ := classify.TierOf(u)
			rows[i] = []string{u.String(), tierLabels[tier]}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Tier"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeAllURLs lists every found URL.
func (w *MarkdownWriter) writeAllURLs(md *markdown.Markdown, report *model.CrawlReport) {
	md.H2("All URLs")
	md.PlainText("")

	if report.FoundCount() == 0 {
		md.PlainText("No URLs found.")
		md.PlainText("")
		return
	}

	items := make([]string, len(report.Found))
	for i, u := range model.SortURLs(report.Found) {
		items[i] = u.String()
	}
	md.BulletList(items...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [urlextract](https://github.com/nao1215/urlextract)*")
}
