// merge-entities collapses duplicate entities left behind by earlier
// ingestion runs. Entities of the same holder whose canonical names
// normalize to the same string are merged into one survivor; the survivor
// inherits every disclosure of the group.
//
// Usage: go run ./cmd/merge-entities [flags]
//
// Flags:
//
//	-config   Path to the configuration file (default: config.yaml)
//	-dry-run  Show duplicate groups without merging (default: true)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/civicledger/disclosure-engine/pkg/config"
	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/logging"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
	"github.com/civicledger/disclosure-engine/pkg/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	dryRun := flag.Bool("dry-run", true, "Show duplicate groups without merging")
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

	entityRepo := repositories.NewEntityRepository(db.Pool)
	disclosureRepo := repositories.NewDisclosureRepository(db.Pool)

	normalizer, err := normalize.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load alias table: %v\n", err)
		os.Exit(1)
	}

	dedup := services.NewDedupService(
		database.NewTxManager(db.Pool), entityRepo, disclosureRepo, normalizer, logger)

	if *dryRun {
		fmt.Println("DRY RUN - no changes will be made")
		fmt.Println("Run with -dry-run=false to merge")
		fmt.Println()

		groups, err := dedup.FindDuplicateGroups(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to scan for duplicates: %v\n", err)
			os.Exit(1)
		}
		for _, group := range groups {
			fmt.Printf("%s / %q: %d entities\n", group.HolderID, group.NormalizedName, len(group.Members))
			for _, m := range group.Members {
				fmt.Printf("  %s (%s) %q\n", m.ID, m.EntityType, m.CanonicalName)
			}
		}
		fmt.Printf("\n%d duplicate groups found\n", len(groups))
		return
	}

	stats, err := dedup.MergeAll(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Merge failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Merged %d of %d duplicate groups, removed %d entities\n",
		stats.Merged, stats.Groups, stats.EntitiesRemoved)
}
