// recategorize reprocesses disclosures stuck in the Unknown category. The
// rule pass re-runs the pattern classifier, which picks up entries added to
// the rule tables since ingestion. The optional LLM pass sends whatever is
// still Unknown to the configured model in rate-limited batches. The
// optional item pass rewrites items that merely duplicate the entity name.
//
// Usage: go run ./cmd/recategorize [flags]
//
// Flags:
//
//	-config        Path to the configuration file (default: config.yaml)
//	-use-llm       Run the LLM pass after the rule pass (default: false)
//	-batch-size    Entries per LLM request (default: from config)
//	-max-entries   Cap on entries sent to the LLM, 0 for no cap (default: 0)
//	-refine-items  Rewrite items that duplicate the entity name (default: false)
//	-dry-run       Count changes without writing them (default: false)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/civicledger/disclosure-engine/pkg/classify"
	"github.com/civicledger/disclosure-engine/pkg/config"
	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/llm"
	"github.com/civicledger/disclosure-engine/pkg/logging"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
	"github.com/civicledger/disclosure-engine/pkg/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	useLLM := flag.Bool("use-llm", false, "Run the LLM pass after the rule pass")
	batchSize := flag.Int("batch-size", 0, "Entries per LLM request (0 uses the configured batch size)")
	maxEntries := flag.Int("max-entries", 0, "Cap on entries sent to the LLM (0 for no cap)")
	refineItems := flag.Bool("refine-items", false, "Rewrite items that duplicate the entity name")
	dryRun := flag.Bool("dry-run", false, "Count changes without writing them")
	flag.Parse()

	cfg, err := config.Load(*configPath, "dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	classifier, err := classify.NewRuleClassifier()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build classifier: %v\n", err)
		os.Exit(1)
	}

	var llmClassifier *classify.LLMClassifier
	if *useLLM {
		client, err := llm.NewClient(&llm.Config{
			Provider: cfg.LLM.Provider,
			Endpoint: cfg.LLM.Endpoint,
			Model:    cfg.LLM.Model,
			APIKey:   cfg.LLM.APIKey,
		}, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create LLM client: %v\n", err)
			os.Exit(1)
		}
		llmClassifier = classify.NewLLMClassifier(client, cfg.LLM.RequestsPerMin, logger)
	}

	disclosureRepo := repositories.NewDisclosureRepository(db.Pool)
	recat := services.NewRecategorizationService(disclosureRepo, classifier, llmClassifier, logger)

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println()
	}

	ruleStats, err := recat.RunRules(ctx, *dryRun)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Rule pass failed: %v\n", err)
		os.Exit(1)
	}
	printStats("Rule pass", ruleStats)

	if *useLLM {
		size := *batchSize
		if size <= 0 {
			size = cfg.LLM.BatchSize
		}
		llmStats, err := recat.RunLLM(ctx, size, *maxEntries, *dryRun)
		if err != nil {
			printStats("LLM pass (partial)", llmStats)
			fmt.Fprintf(os.Stderr, "LLM pass failed: %v\n", err)
			os.Exit(1)
		}
		printStats("LLM pass", llmStats)
	}

	if *refineItems {
		refineStats, err := recat.RefineItems(ctx, 0, *dryRun)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Item pass failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Item pass: %d total, %d refined, %d unchanged\n",
			refineStats.Total, refineStats.Refined, refineStats.Unchanged)
	}
}

func printStats(pass string, stats services.RecatStats) {
	fmt.Printf("%s: %d total, %d recategorized, %d ignored, %d unchanged\n",
		pass, stats.Total, stats.Recategorized, stats.Ignored, stats.Unchanged)
	for category, count := range stats.ByCategory {
		fmt.Printf("  %s: %d\n", category, count)
	}
}
