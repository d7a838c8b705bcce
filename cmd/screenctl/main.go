// Command screenctl is the maintenance CLI for the screener.
//
// Usage:
//
//	screenctl                     Show help
//	screenctl import <file.csv>   Load a CSV snapshot into the local database
//	screenctl stats               Field coverage and ranges of the local database
//	screenctl query [<query>]     Run a filter against the service or the local database
//	screenctl events              JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `screenctl - screener maintenance CLI

Usage:
  screenctl <command> [flags]

Commands:
  import      Load a CSV snapshot into the local database
  stats       Field coverage and value ranges of the local database
  query       Run a filter query (remote service, or -local)
  events      JSONL event log viewer

Environment:
  SCREENER_BASE_URL   Stock service address (default: http://localhost:8080)

Run 'screenctl <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "import":
		runImport()
	case "stats":
		runStats()
	case "query":
		runQuery()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "screenctl: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
