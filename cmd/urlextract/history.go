package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/urlextract/internal/config"
	"github.com/nao1215/urlextract/internal/database"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
)

// dateLayout is used for timestamps in history tables.
const dateLayout = "2006-01-02 15:04:05"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show stored crawl results",
		Long: `History lists crawls stored in the history database by the crawl and
serve commands.

Examples:
  # List the most recent crawls
  urlextract history

  # List crawls of one domain
  urlextract history enperu.org

  # List every URL ever found on a domain with its latest tier
  urlextract history --urls enperu.org

  # List all crawled domains
  urlextract history --domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of crawls to list (0 for all)")
	cmd.Flags().BoolP("urls", "u", false,
		"List the URLs found on the domain instead of the crawls")
	cmd.Flags().BoolP("domains", "D", false,
		"List all crawled domains")
	cmd.Flags().String("data-dir", config.XDGDataDir(),
		"Directory of the history database")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDomains, err := cmd.Flags().GetBool("domains")
	if err != nil {
		return err
	}
	listURLs, err := cmd.Flags().GetBool("urls")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}

	var domain string
	if len(args) > 0 {
		domain = config.SiteKey(args[0])
	}
	if listURLs && domain == "" {
		return errors.New("--urls requires a domain")
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(dataDir, database.Options{EnableWAL: true})
	if errors.Is(err, database.ErrDatabaseNotFound) {
		fmt.Fprintln(out, "No crawl history found.")
		fmt.Fprintln(out, "\nUse 'urlextract crawl <site>' to crawl a site.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	switch {
	case listDomains:
		return printDomains(ctx, out, db)
	case listURLs:
		return printDomainURLs(ctx, out, db, domain)
	default:
		return printReports(ctx, out, db, domain, limit)
	}
}

// printDomains lists every domain with stored crawls.
func printDomains(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	domains, err := db.ListDomains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}
	if len(domains) == 0 {
		fmt.Fprintln(out, "No crawled domains found in the database.")
		return nil
	}

	fmt.Fprintf(out, "Crawled domains (%d):\n\n", len(domains))
	for _, d := range domains {
		fmt.Fprintf(out, "  • %s\n", d)
	}
	fmt.Fprintln(out, "\nUse 'urlextract history <domain>' to see the crawls of a domain.")
	return nil
}

// printReports lists crawl metadata, newest first.
func printReports(ctx context.Context, out io.Writer, db *database.HistoryDB, domain string, limit int) error {
	reports, err := db.ListReports(ctx, domain, limit)
	if err != nil {
		return fmt.Errorf("failed to list crawls: %w", err)
	}
	if len(reports) == 0 {
		if domain != "" {
			fmt.Fprintf(out, "No crawls found for %s\n", domain)
		} else {
			fmt.Fprintln(out, "No crawls found.")
		}
		return nil
	}

	tbl := table.New("ID", "Date", "Domain", "Depth", "Found", "Admin", "Status").WithWriter(out)
	for _, r := range reports {
		admin := "-"
		if r.AdministrativeSite {
			admin = fmt.Sprint(r.AdministrativeCount)
		}
		tbl.AddRow(r.ID, r.StartedAt.Local().Format(dateLayout), r.Domain, r.Depth, r.FoundCount, admin, reportStatus(r))
	}
	tbl.Print()
	return nil
}

// reportStatus describes how a stored crawl ended.
func reportStatus(r database.ReportMetadata) string {
	switch {
	case r.Cancelled:
		return "interrupted"
	case r.Error != "":
		return "error"
	default:
		return "complete"
	}
}

// printDomainURLs lists every URL stored for domain.
func printDomainURLs(ctx context.Context, out io.Writer, db *database.HistoryDB, domain string) error {
	urls, err := db.DomainURLs(ctx, domain)
	if err != nil {
		return fmt.Errorf("failed to list URLs: %w", err)
	}
	if len(urls) == 0 {
		fmt.Fprintf(out, "No URLs found for %s\n", domain)
		return nil
	}

	tbl := table.New("URL", "Tier").WithWriter(out)
	for _, u := range urls {
		tier := string(u.Tier)
		if tier == "" {
			tier = "-"
		}
		tbl.AddRow(u.URL, tier)
	}
	tbl.Print()
	fmt.Fprintf(out, "\n%d URLs\n", len(urls))
	return nil
}
