// Package main runs the portfolio optimizers once against the stored price
// history and prints a textual comparison report.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/aristath/swarmfolio/internal/config"
	"github.com/aristath/swarmfolio/internal/database"
	"github.com/aristath/swarmfolio/internal/modules/optimization"
	"github.com/aristath/swarmfolio/internal/modules/results"
	"github.com/aristath/swarmfolio/internal/modules/universe"
	"github.com/aristath/swarmfolio/pkg/logger"
)

const topWeightsShown = 5

func main() {
	var (
		dbPath      = flag.String("db", "", "path to the price history database (default: <data dir>/history.db)")
		assets      = flag.Int("assets", 0, "number of highest-mean-return assets to optimize over")
		popSize     = flag.Int("pop", 0, "population size per engine")
		generations = flag.Int("generations", 0, "generations per run")
		runs        = flag.Int("runs", 0, "independent runs per engine")
		seed        = flag.Uint64("seed", 0, "random seed (0 = time-derived)")
		engines     = flag.String("engines", "", "comma-separated engine names (default: all)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})

	path := *dbPath
	if path == "" {
		path = cfg.HistoryDBPath()
	}
	db, err := database.New(database.Config{Path: path, Name: "history"})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open history database")
	}
	defer db.Close()

	history := universe.NewHistoryDB(db.Conn(), log)
	if err := history.Init(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize history schema")
	}

	service := optimization.NewOptimizerService(history, nil, optimization.RunParams{
		Engines:        optimization.EngineNames,
		AssetCount:     cfg.AssetCount,
		PopulationSize: cfg.PopulationSize,
		Generations:    cfg.Generations,
		Runs:           cfg.RunsPerEngine,
		LookbackDays:   cfg.LookbackDays,
	}, log)

	params := optimization.RunParams{
		AssetCount:     *assets,
		PopulationSize: *popSize,
		Generations:    *generations,
		Runs:           *runs,
	}
	if *seed != 0 {
		params.Seed = seed
	}
	if *engines != "" {
		for _, name := range strings.Split(*engines, ",") {
			params.Engines = append(params.Engines, strings.TrimSpace(name))
		}
	}

	records, err := service.Optimize(params)
	if err != nil {
		log.Fatal().Err(err).Msg("Optimization failed")
	}

	printReport(records)
}

// printReport writes a per-engine comparison of best Sharpe ratios and the
// heaviest portfolio weights.
func printReport(records []results.Record) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "ENGINE\tBEST SHARPE\tGENERATIONS\tRUNS")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%.4f\t%d\t%d\n", rec.Engine, rec.SharpeRatio, rec.Generations, rec.Runs)
	}
	w.Flush()

	for _, rec := range records {
		fmt.Printf("\n%s top weights:\n", rec.Engine)
		type weighted struct {
			symbol string
			weight float64
		}
		ranked := make([]weighted, 0, len(rec.Weights))
		for i, weight := range rec.Weights {
			symbol := fmt.Sprintf("asset_%d", i)
			if i < len(rec.Symbols) {
				symbol = rec.Symbols[i]
			}
			ranked = append(ranked, weighted{symbol: symbol, weight: weight})
		}
		sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].weight > ranked[j].weight })

		shown := topWeightsShown
		if shown > len(ranked) {
			shown = len(ranked)
		}
		for _, rw := range ranked[:shown] {
			fmt.Printf("  %-12s %6.2f%%\n", rw.symbol, rw.weight*100)
		}
	}
}
