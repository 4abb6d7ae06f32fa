// Package catalog turns raw Fable API fragments into canonical book
// records: one reconciliation pass per list item, then order-preserving
// deduplication across lists.
package catalog

import (
	"strings"

	"github.com/jdebolt/fable-export/internal/entities"
)

// Reconcile builds one canonical Book from a raw list item plus the
// side-table of raw reviews keyed by book id. It returns nil when the item
// is malformed (not an object, no usable book fragment, no id); such
// entries are skipped, never fatal.
//
// Reconcile is pure: it performs no I/O and never mutates its inputs, so
// reconciling the same item twice yields identical Books.
func Reconcile(item map[string]any, reviewsByBookID map[string]map[string]any) *entities.Book {
	if item == nil {
		return nil
	}

	// Newer API revisions wrap the book under "book"; older ones inline
	// the fields on the item itself.
	rawBook := asObject(item["book"])
	if rawBook == nil {
		if _, wrapped := item["book"]; wrapped {
			return nil
		}
		rawBook = item
	}

	bookID := idField(rawBook, "id")
	if bookID == "" {
		return nil
	}

	review := reviewsByBookID[bookID]
	if review == nil {
		review = map[string]any{}
	}

	status := resolveStatus(item, rawBook)
	startedAt := stringField(rawBook, "started_reading_at")
	finishedAt := resolveFinishedAt(rawBook, review, status)

	isbn := stringField(rawBook, "isbn")
	isbn10, isbn13 := classifyISBN(isbn)

	return &entities.Book{
		ID:       bookID,
		Title:    stringOrMissing(rawBook, "title", "Unknown"),
		Subtitle: stringField(rawBook, "subtitle"),
		Authors:  parseAuthors(rawBook["authors"]),

		ISBN:        isbn,
		ISBN10:      isbn10,
		ISBN13:      isbn13,
		DisplayISBN: stringField(rawBook, "display_isbn"),

		Publisher:     resolvePublisher(rawBook),
		PageCount:     intField(rawBook, "page_count"),
		ChapterCount:  intField(rawBook, "chapter_count"),
		PublishedDate: stringField(rawBook, "published_date"),
		Description:   stringField(rawBook, "description"),

		CoverImage:      stringField(rawBook, "cover_image"),
		CoverImageSmall: stringField(rawBook, "cover_image_small"),
		BackgroundColor: stringField(rawBook, "background_color"),

		FableURL:          stringField(rawBook, "url"),
		Source:            stringField(rawBook, "source"),
		PriceUSD:          stringify(rawBook["price_usd"]),
		NonFiction:        boolField(rawBook, "non_fiction"),
		FamilyID:          idField(rawBook, "family_id"),
		IsFree:            boolField(rawBook, "is_free"),
		CanPurchase:       boolField(rawBook, "can_purchase"),
		CanDownload:       boolField(rawBook, "can_download"),
		StoreAvailability: stringField(rawBook, "store_availability"),
		IsOutOfCatalog:    boolField(rawBook, "is_out_of_catalog"),

		Genres:          parseGenres(rawBook["genres"]),
		Subjects:        parseSubjects(rawBook["subjects"]),
		Moods:           parseStorygraphTag(rawBook, "moods"),
		ContentWarnings: parseStorygraphTag(rawBook, "content_warnings"),
		Tropes:          stringList(rawBook["tropes"]),
		Series:          parseSeries(rawBook["bookseries_set"]),

		Status:             status,
		MyRating:           floatField(review, "rating"),
		MyReview:           stringField(review, "review"),
		StartedAt:          startedAt,
		StartedAtDateType:  stringField(rawBook, "started_reading_date_type"),
		FinishedAt:         finishedAt,
		FinishedAtDateType: stringField(rawBook, "finished_reading_date_type"),
		DateAdded:          resolveDateAdded(rawBook, review),
		ListName:           stringField(item, "_list_name"),
		Favorite:           boolField(item, "favorite"),
		SortValue:          floatField(item, "sort_value"),

		ReadingProgress: parseReadingProgress(rawBook["reading_progress"]),
		CommunityRatings: entities.CommunityRatings{
			Average:    floatField(review, "rating"),
			Characters: floatField(review, "characters_rating"),
			Plot:       floatField(review, "plot_rating"),
			Writing:    floatField(review, "writing_style_rating"),
			Setting:    floatField(review, "setting_rating"),
		},
	}
}

// resolveStatus applies the status precedence chain: the nested progress
// object is most authoritative, then the list item, then the book fragment,
// then the literal default.
func resolveStatus(item, rawBook map[string]any) string {
	progress := asObject(rawBook["reading_progress"])
	if s := stringField(progress, "status"); s != "" {
		return s
	}
	if s := stringField(item, "status"); s != "" {
		return s
	}
	return stringOrDefault(rawBook, "status", "unread")
}

// resolveFinishedAt prefers the book's own finish date; for books in a
// finished state it falls back to the review's creation or update time.
func resolveFinishedAt(rawBook, review map[string]any, status string) string {
	if v := stringField(rawBook, "finished_reading_at"); v != "" {
		return v
	}
	switch strings.ToLower(status) {
	case "finished", "read":
		if v := stringField(review, "created_at"); v != "" {
			return v
		}
		return stringField(review, "updated_at")
	}
	return ""
}

func resolveDateAdded(rawBook, review map[string]any) string {
	if v := stringField(review, "created_at"); v != "" {
		return v
	}
	return stringField(rawBook, "created_at")
}

func resolvePublisher(rawBook map[string]any) string {
	if v := stringField(rawBook, "imprint"); v != "" {
		return v
	}
	return stringField(rawBook, "publisher")
}

// classifyISBN buckets a raw ISBN by exact length. Any other length leaves
// both classifications empty; the raw value is preserved elsewhere.
func classifyISBN(isbn string) (isbn10, isbn13 string) {
	switch len(isbn) {
	case 10:
		return isbn, ""
	case 13:
		return "", isbn
	}
	return "", ""
}

// parseAuthors accepts the two shapes the API has emitted: a list of
// author objects, or a list of bare name strings. Entries with no
// derivable name are dropped.
func parseAuthors(v any) []entities.Author {
	authors := []entities.Author{}
	for _, el := range asList(v) {
		switch a := el.(type) {
		case map[string]any:
			name := stringField(a, "name")
			if name == "" {
				continue
			}
			authors = append(authors, entities.Author{
				Name:      name,
				Slug:      stringField(a, "slug"),
				Biography: stringField(a, "biography"),
			})
		case string:
			if a != "" {
				authors = append(authors, entities.Author{Name: a})
			}
		}
	}
	return authors
}

func parseGenres(v any) []string {
	genres := []string{}
	for _, el := range asList(v) {
		if name := stringField(asObject(el), "name"); name != "" {
			genres = append(genres, name)
		}
	}
	return genres
}

// parseSubjects flattens the list-of-lists subject paths into
// "Fiction > Literary" style strings. Non-list entries are skipped.
func parseSubjects(v any) []string {
	subjects := []string{}
	for _, el := range asList(v) {
		if path, ok := el.([]any); ok {
			parts := make([]string, 0, len(path))
			for _, p := range path {
				if s, ok := p.(string); ok {
					parts = append(parts, s)
				}
			}
			if len(parts) > 0 {
				subjects = append(subjects, strings.Join(parts, " > "))
			}
		}
	}
	return subjects
}

// parseStorygraphTag reads one tag list from the nested storygraph_tags
// object. Anything that is not a list (object, string, null) coerces to an
// empty list, never an error.
func parseStorygraphTag(rawBook map[string]any, key string) []string {
	tags := asObject(rawBook["storygraph_tags"])
	if tags == nil {
		return []string{}
	}
	return stringList(tags[key])
}

// parseSeries keeps only the first well-formed series membership; books
// listed in several series retain one.
func parseSeries(v any) *entities.SeriesInfo {
	memberships := asList(v)
	if len(memberships) == 0 {
		return nil
	}
	first := asObject(memberships[0])
	if first == nil {
		return nil
	}
	return &entities.SeriesInfo{
		Name:     stringField(asObject(first["book_series"]), "name"),
		Position: stringify(first["position"]),
	}
}

// parseReadingProgress materializes the progress struct only when the
// source furnished a non-empty progress object.
func parseReadingProgress(v any) *entities.ReadingProgress {
	progress := asObject(v)
	if len(progress) == 0 {
		return nil
	}
	return &entities.ReadingProgress{
		CurrentPercentage: floatField(progress, "current_percentage"),
		CurrentPage:       intField(progress, "current_page"),
		PageCount:         intField(progress, "page_count"),
		Status:            stringField(progress, "status"),
	}
}
