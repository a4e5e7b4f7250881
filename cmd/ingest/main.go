// ingest loads extracted disclosure documents from JSON files into the
// database. Each input file holds either a single extracted document or an
// array of them.
//
// Usage: go run ./cmd/ingest [flags] <file.json> [<file.json> ...]
//
// Flags:
//
//	-config  Path to the configuration file (default: config.yaml)
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/civicledger/disclosure-engine/pkg/classify"
	"github.com/civicledger/disclosure-engine/pkg/config"
	"github.com/civicledger/disclosure-engine/pkg/database"
	"github.com/civicledger/disclosure-engine/pkg/logging"
	"github.com/civicledger/disclosure-engine/pkg/models"
	"github.com/civicledger/disclosure-engine/pkg/normalize"
	"github.com/civicledger/disclosure-engine/pkg/repositories"
	"github.com/civicledger/disclosure-engine/pkg/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [-config config.yaml] <file.json> [<file.json> ...]\n", os.Args[0])
		os.Exit(1)
	}

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

	var docs []*models.ExtractedDocument
	for _, path := range args {
		loaded, err := loadDocuments(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load %s: %v\n", path, err)
			os.Exit(1)
		}
		docs = append(docs, loaded...)
	}

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

	entityRepo := repositories.NewEntityRepository(db.Pool)
	disclosureRepo := repositories.NewDisclosureRepository(db.Pool)
	relationshipRepo := repositories.NewRelationshipRepository(db.Pool)

	normalizer, err := normalize.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load alias table: %v\n", err)
		os.Exit(1)
	}

	registry := services.NewEntityRegistry(entityRepo, disclosureRepo, normalizer, logger)
	ingestion := services.NewIngestionService(
		database.NewTxManager(db.Pool), registry, disclosureRepo, relationshipRepo, classifier,
		time.Duration(cfg.Ingestion.DocumentTimeoutSeconds)*time.Second, logger)

	result := ingestion.IngestBatch(ctx, docs)

	fmt.Printf("Documents: %d total, %d succeeded, %d failed\n",
		result.Total, result.Succeeded, result.Failed)
	for _, holder := range result.FailedHolders {
		fmt.Printf("  failed: %s\n", holder)
	}
	if result.Failed > 0 {
		os.Exit(1)
	}
}

// loadDocuments reads one JSON file holding either a single extracted
// document or an array of them.
func loadDocuments(path string) ([]*models.ExtractedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var docs []*models.ExtractedDocument
	if err := json.Unmarshal(data, &docs); err == nil {
		return docs, nil
	}

	var doc models.ExtractedDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("not a document or document array: %w", err)
	}
	return []*models.ExtractedDocument{&doc}, nil
}
