package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"

	"bilancio/internal/cli"
	"bilancio/internal/report"
	"bilancio/internal/services"
)

func main() {
	var (
		year  = flag.Int("year", 0, "year to export (default: most recent year with data)")
		owner = flag.String("owner", "", "ledger owner (default: from config)")
		out   = flag.String("out", ".", "output directory")
	)
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	store, cleanup := cli.InitLedger(logger, cfg)
	defer func() { _ = cleanup() }()

	if *owner == "" {
		*owner = cfg.DefaultOwner
	}

	reports := services.NewReportService(store, store)
	period := report.Period{Mode: report.ModeYearly, Year: *year}
	if period.Year == 0 {
		// Year 0 never matches discovered years, so the service snaps
		// to the newest available one.
		period.Year = time.Now().Year()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snap, err := reports.Refresh(ctx, *owner, period)
	if err != nil {
		color.Red("Export failed: %v", err)
		os.Exit(1)
	}

	filename, content := services.ExportCSV(snap)
	path := filepath.Join(*out, filename)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		color.Red("Write failed: %v", err)
		os.Exit(1)
	}

	bold := color.New(color.Bold)
	bold.Printf("Exported %s\n", path)
	fmt.Printf("  owner:      %s\n", snap.Owner)
	fmt.Printf("  year:       %d\n", snap.Period.Year)
	fmt.Printf("  categories: %d\n", len(snap.Grid))
	fmt.Printf("  records:    %d\n", snap.Aggregation.TransactionCount())

	surplus := snap.Aggregation.Surplus()
	label := report.SurplusLabel(surplus)
	if surplus.IsNegative() {
		color.Red("  %s:    %s", label, surplus.Abs().String())
	} else {
		color.Green("  %s:    %s", label, surplus.String())
	}
}
