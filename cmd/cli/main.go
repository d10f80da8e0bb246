// Command cli runs the quarterly aggregation over a workbook and prints the
// resulting tables, for offline inspection without the HTTP server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"mrrdash/app"
	"mrrdash/domain/revenue"
	"mrrdash/internal/analysis"
	"mrrdash/internal/config"
)

func main() {
	_ = godotenv.Load()

	var (
		file      = flag.String("file", "", "path to the revenue workbook (.xlsx or .csv)")
		dimension = flag.String("dimension", string(revenue.DimensionGeography), `grouping dimension: "Geography" or "Industry"`)
		customers = flag.Bool("customers", false, "also print the Q1 customer concentration report")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}
	if *file == "" {
		*file = cfg.Data.ExcelFile
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: cli -file revenue.xlsx [-dimension Industry] [-customers]")
		os.Exit(2)
	}

	dim, ok := revenue.ParseDimension(*dimension)
	if !ok {
		log.Fatalf("Unknown dimension %q", *dimension)
	}

	aggCfg := revenue.DefaultConfig()
	aggCfg.Year = cfg.Data.TargetYear
	service := app.NewAnalysisService(aggCfg, cfg.Data.SheetName, nil)

	res, err := service.AggregateFile(*file, dim)
	if err != nil {
		log.Fatal("Aggregation failed: ", err)
	}

	printTable(fmt.Sprintf("Quarterly MRR by %s", dim), res.Quarters, res.Groups, res.MRR)
	printTable(fmt.Sprintf("Quarterly share (%%) by %s", dim), res.Quarters, res.Groups, res.Percentages)

	series := analysis.MonthlyTotals(res)
	fmt.Println("\nMonthly totals:")
	for _, p := range series.Points {
		growth := "n/a"
		if p.HasGrowth {
			growth = fmt.Sprintf("%+.2f%%", p.GrowthPct)
		}
		fmt.Printf("  %-10s %14.2f  MoM %s\n", p.Month, p.Total, growth)
	}
	fmt.Printf("Trend slope: %.2f per month\n", series.TrendSlope)

	if *customers {
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatal("Failed to read workbook: ", err)
		}
		report, err := service.CustomerConcentration(*file, data, nil)
		if err != nil {
			log.Fatal("Customer analysis failed: ", err)
		}
		fmt.Printf("\nQ1 customer concentration (column %q, HHI %.0f, %s):\n",
			report.CustomerColumn, report.HHI, report.Band)
		for _, summary := range report.TopN {
			fmt.Printf("  Top %-3d %14.2f  (%.2f%% of total)\n", summary.N, summary.Revenue, summary.SharePct)
		}
	}
}

func printTable(title string, quarters, groups []string, table map[string]map[string]float64) {
	fmt.Printf("\n%s:\n%-24s", title, "")
	for _, q := range quarters {
		fmt.Printf("%14s", q)
	}
	fmt.Println()
	for _, g := range groups {
		fmt.Printf("%-24s", g)
		for _, q := range quarters {
			fmt.Printf("%14.2f", table[g][q])
		}
		fmt.Println()
	}
}
