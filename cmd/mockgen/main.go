package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github-projects-mcp/cmd/mockgen/engine"
)

func main() {
	scenario := flag.String("scenario", "mild", "Scenario to generate: mild, burst, drift")
	outDir := flag.String("out", "./.cache/fixtures", "Output directory for fixture pages")
	owner := flag.String("owner", "acme", "Repository owner")
	name := flag.String("name", "widgets", "Repository name")
	count := flag.Int("count", 200, "Number of pull requests to generate")
	pageSize := flag.Int("page-size", 50, "Pull requests per page")
	days := flag.Int("days", 30, "Days of history to spread the pull requests over")
	seed := flag.Int64("seed", 1, "Random seed")
	flag.Parse()

	cfg := engine.GeneratorConfig{
		Owner:    *owner,
		Name:     *name,
		Scenario: *scenario,
		Count:    *count,
		Days:     *days,
		Seed:     *seed,
		Now:      time.Now(),
	}

	fmt.Printf("Generating scenario '%s' (Count: %d, Days: %d) for %s/%s to %s...\n", cfg.Scenario, cfg.Count, cfg.Days, cfg.Owner, cfg.Name, *outDir)

	nodes := engine.Generate(cfg)

	pages, err := engine.Save(*outDir, cfg.Owner, cfg.Name, nodes, *pageSize)
	if err != nil {
		fmt.Printf("Failed to save mock data: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Done. Wrote %d pages.\n", pages)
}
