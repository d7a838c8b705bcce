package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/screener/internal/client"
	"github.com/abelbrown/screener/internal/query"
	"github.com/abelbrown/screener/internal/stock"
)

func runQuery() {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	baseURL := fs.String("base-url", "", "Stock service address (overrides config)")
	local := fs.Bool("local", false, "Evaluate against the local database instead of the service")
	db := fs.String("db", defaultDBPath(), "SQLite database for -local")
	html := fs.Bool("html", false, "Print the service's rendered document instead of a table")
	limit := fs.Int("n", 50, "Maximum rows to print (0 = all)")
	fs.Parse(os.Args[1:])

	q := strings.Join(fs.Args(), " ")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if *local {
		parsed, err := query.Parse(q)
		if err != nil {
			log.Fatalf("%v", err)
		}
		st := openDB(*db)
		defer st.Close()
		records, err := st.Select(ctx, parsed)
		if err != nil {
			log.Fatalf("query failed: %v", err)
		}
		printRecords(records, *limit)
		return
	}

	c := newClient(*baseURL)
	if *html {
		doc, err := c.Document(ctx, q)
		if err != nil {
			fail(err)
		}
		fmt.Print(doc)
		return
	}

	var records []stock.Record
	var err error
	t0 := time.Now()
	if q == "" {
		records, err = c.ListAll(ctx)
	} else {
		records, err = c.ListFiltered(ctx, q)
	}
	if err != nil {
		fail(err)
	}
	printRecords(records, *limit)
	fmt.Printf("\n%d stocks from %s in %s\n", len(records), c.BaseURL(), time.Since(t0).Round(time.Millisecond))
}

func printRecords(records []stock.Record, limit int) {
	if len(records) == 0 {
		fmt.Println("No stocks match.")
		return
	}

	header := []string{truncate(stock.NameKey, 24)}
	for _, f := range stock.Fields {
		header = append(header, f.Short())
	}
	fmt.Println(formatRow(header))
	fmt.Println(strings.Repeat("-", 24+len(stock.Fields)*14))

	for i, r := range records {
		if limit > 0 && i >= limit {
			fmt.Printf("... %d more\n", len(records)-limit)
			break
		}
		row := r.Row()
		row[0] = truncate(row[0], 24)
		fmt.Println(formatRow(row))
	}
}

func formatRow(cells []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-24s", cells[0])
	for _, c := range cells[1:] {
		fmt.Fprintf(&b, "%14s", c)
	}
	return b.String()
}

// fail prints the same text the TUI would show and exits.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %s\n", client.Message(err))
	if client.Retryable(err) {
		fmt.Fprintln(os.Stderr, "  Is screenerd running? Set SCREENER_BASE_URL or -base-url.")
	}
	os.Exit(1)
}
