package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"
)

func runImport() {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	db := fs.String("db", defaultDBPath(), "SQLite database to load into")
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: screenctl import [-db path] <file.csv>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	st := openDB(*db)
	defer st.Close()

	before, err := st.Count(ctx)
	if err != nil {
		log.Fatalf("failed to count stocks: %v", err)
	}

	t0 := time.Now()
	n, err := st.ImportFile(ctx, path)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Database: %s\n", *db)
	fmt.Printf("Replaced %d stocks with %d from %s in %s\n", before, n, path, time.Since(t0).Round(time.Millisecond))
}
