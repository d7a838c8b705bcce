package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/abelbrown/screener/internal/stock"
)

type fieldStats struct {
	known         int
	min, max, med float64
}

func computeStats(records []stock.Record, f stock.Field) fieldStats {
	var vals []float64
	for _, r := range records {
		if v, ok := r.Value(f); ok {
			vals = append(vals, v)
		}
	}
	s := fieldStats{known: len(vals)}
	if len(vals) == 0 {
		return s
	}
	sort.Float64s(vals)
	s.min, s.max = vals[0], vals[len(vals)-1]
	mid := len(vals) / 2
	if len(vals)%2 == 0 {
		s.med = (vals[mid-1] + vals[mid]) / 2
	} else {
		s.med = vals[mid]
	}
	return s
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	db := fs.String("db", defaultDBPath(), "SQLite database to inspect")
	fs.Parse(os.Args[1:])

	st := openDB(*db)
	defer st.Close()

	records, err := st.List(context.Background())
	if err != nil {
		log.Fatalf("failed to list stocks: %v", err)
	}

	fmt.Printf("Database:  %s\n", *db)
	fmt.Printf("Stocks:    %d\n\n", len(records))
	if len(records) == 0 {
		return
	}

	fmt.Printf("%-24s %8s %16s %16s %16s\n", "Field", "Known", "Min", "Median", "Max")
	for _, f := range stock.Fields {
		s := computeStats(records, f)
		if s.known == 0 {
			fmt.Printf("%-24s %8d %16s %16s %16s\n", f.Name(), 0, stock.Missing, stock.Missing, stock.Missing)
			continue
		}
		fmt.Printf("%-24s %7.1f%% %16s %16s %16s\n", f.Name(),
			float64(s.known)/float64(len(records))*100,
			stock.Format(f.Kind(), &s.min),
			stock.Format(f.Kind(), &s.med),
			stock.Format(f.Kind(), &s.max))
	}
}
