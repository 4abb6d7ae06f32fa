package catalog

import "github.com/jdebolt/fable-export/internal/entities"

// Build reconciles every raw list item in source order and deduplicates on
// book id: the first successfully reconciled Book for an id wins, later
// sightings are dropped entirely. Cross-list duplicates must not let a
// sparser later sighting overwrite a richer first one, so there is no
// field-level merge. Output order is first-sighting order.
func Build(rawItems []map[string]any, reviewsByBookID map[string]map[string]any) []entities.Book {
	books := []entities.Book{}
	seen := map[string]struct{}{}

	for _, item := range rawItems {
		book := Reconcile(item, reviewsByBookID)
		if book == nil {
			continue
		}
		if _, dup := seen[book.ID]; dup {
			continue
		}
		seen[book.ID] = struct{}{}
		books = append(books, *book)
	}

	return books
}
