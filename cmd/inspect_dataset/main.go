package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"

	"github.com/charleschow/pregame/internal/core/artifacts"
)

func main() {
	dbPath := flag.String("db", "data/artifacts.db", "artifact database path")
	flag.Parse()

	store, err := artifacts.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer store.Close()

	sum, err := store.Summarize()
	if err != nil {
		fmt.Fprintf(os.Stderr, "summarize: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Artifact Store (%s) ===\n", *dbPath)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "runs\t%s\n", humanize.Comma(sum.Runs))
	fmt.Fprintf(w, "snapshots\t%s\n", humanize.Comma(sum.Snapshots))
	fmt.Fprintf(w, "reports\t%s\n", humanize.Comma(sum.Reports))

	splits := make([]string, 0, len(sum.SplitCounts))
	for s := range sum.SplitCounts {
		splits = append(splits, s)
	}
	sort.Strings(splits)
	for _, s := range splits {
		fmt.Fprintf(w, "samples (%s)\t%s\n", s, humanize.Comma(sum.SplitCounts[s]))
	}
	w.Flush()
}
