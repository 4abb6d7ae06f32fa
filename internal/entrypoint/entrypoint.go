// Package entrypoint wires the retrieval, reconciliation and export
// stages into the one-shot pipeline the export command runs.
package entrypoint

import (
	"context"
	"fmt"
	"log"

	"github.com/jdebolt/fable-export/internal/auth"
	"github.com/jdebolt/fable-export/internal/catalog"
	"github.com/jdebolt/fable-export/internal/config"
	"github.com/jdebolt/fable-export/internal/credstore"
	"github.com/jdebolt/fable-export/internal/entities"
	"github.com/jdebolt/fable-export/internal/export"
	"github.com/jdebolt/fable-export/internal/fable"
	"github.com/jdebolt/fable-export/internal/rawstore"
)

// Run executes a full export: resolve credentials, fetch the user's
// reviews and lists, reconcile everything into the canonical catalog and
// write the four output files. Raw API pages are persisted along the way.
func Run(ctx context.Context, cfg *config.Config) error {
	creds, err := resolveCredentials(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Exporting library for user %s\n", creds.UserID)

	raw := rawstore.NewStore(cfg.Export.RawDataDir)
	client := fable.NewClient(creds.UserID, creds.Token, raw)
	client.SetTimeout(cfg.Fable.Timeout)

	fmt.Println("\nFetching reviews and ratings...")
	reviews, err := client.FetchReviews(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch reviews: %w", err)
	}
	fmt.Printf("Fetched %d reviews\n", len(reviews))

	fmt.Println("\nFetching book lists...")
	lists, err := client.FetchLists(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch book lists: %w", err)
	}
	fmt.Printf("Found %d lists\n", len(lists))

	var rawItems []map[string]any
	for _, lst := range lists {
		listID := listIdentifier(lst)
		if listID == "" {
			continue
		}
		name, _ := lst["name"].(string)
		if name == "" {
			name = "Unknown"
		}

		fmt.Printf("  Downloading %q...\n", name)
		items, err := client.FetchListBooks(ctx, listID, name)
		if err != nil {
			return fmt.Errorf("failed to fetch list %q: %w", name, err)
		}
		rawItems = append(rawItems, items...)
	}

	fmt.Printf("\nReconciling %d raw items...\n", len(rawItems))
	books := catalog.Build(rawItems, reviews)
	fmt.Printf("Catalog contains %d books\n", len(books))

	if err := writeExports(cfg.Export.OutputDir, books); err != nil {
		return err
	}

	fmt.Printf("\nRaw responses saved in %s for auditing.\n", raw.RunDir())
	return nil
}

// Convert reruns the reconciliation and export core against the raw pages
// persisted by a previous run, without any network access.
func Convert(runDir, outputDir string) error {
	reviews, err := rawstore.LoadReviews(runDir)
	if err != nil {
		return fmt.Errorf("failed to load reviews from %s: %w", runDir, err)
	}

	rawItems, err := rawstore.LoadListItems(runDir)
	if err != nil {
		return fmt.Errorf("failed to load list items from %s: %w", runDir, err)
	}

	fmt.Printf("Loaded %d reviews and %d raw items from %s\n", len(reviews), len(rawItems), runDir)

	books := catalog.Build(rawItems, reviews)
	fmt.Printf("Catalog contains %d books\n", len(books))

	return writeExports(outputDir, books)
}

func writeExports(outputDir string, books []entities.Book) error {
	exporter := export.NewExporter(outputDir)

	fmt.Println("\nExporting files...")

	jsonPath, err := exporter.ToJSON(books)
	if err != nil {
		return err
	}
	grPath, err := exporter.ToGoodreadsCSV(books)
	if err != nil {
		return err
	}
	masterPath, err := exporter.ToMasterCSV(books)
	if err != nil {
		return err
	}
	recsPath, err := exporter.ToRecommendationsJSONL(books)
	if err != nil {
		return err
	}

	fmt.Println("\nDone!")
	fmt.Printf("  Library archive:       %s\n", jsonPath)
	fmt.Printf("  Goodreads import:      %s\n", grPath)
	fmt.Printf("  Master list:           %s\n", masterPath)
	fmt.Printf("  Recommendations JSONL: %s\n", recsPath)
	return nil
}

func resolveCredentials(cfg *config.Config) (auth.Credentials, error) {
	explicit := auth.Credentials{
		UserID: cfg.Fable.UserID,
		Token:  cfg.Fable.AuthToken,
	}

	store, err := credstore.New(credstore.Config{
		DatabasePath: cfg.Credentials.DatabasePath,
		KeyFilePath:  cfg.Credentials.KeyFilePath,
	})
	if err != nil {
		// The store is only a convenience cache; explicit credentials
		// still work without it.
		log.Printf("WARNING: credential store unavailable: %v", err)
		return auth.Resolve(explicit, nil)
	}
	defer store.Close()

	return auth.Resolve(explicit, store)
}

// listIdentifier reads a list's id, which newer API revisions serve as a
// string and older ones as a number.
func listIdentifier(lst map[string]any) string {
	switch v := lst["id"].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return ""
}
