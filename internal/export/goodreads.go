package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jdebolt/fable-export/internal/entities"
)

var goodreadsColumns = []string{
	"Title", "Author", "ISBN", "My Rating", "Average Rating",
	"Publisher", "Binding", "Year Published", "Original Publication Year",
	"Date Read", "Date Added", "Shelves", "Bookshelves", "My Review",
}

// ToGoodreadsCSV writes the generic reading-tracker import file: a fixed
// 14-column CSV under a timestamped name so repeated exports never
// clobber each other.
func (e *Exporter) ToGoodreadsCSV(books []entities.Book) (string, error) {
	if err := e.ensureOutputDir(); err != nil {
		return "", err
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(e.OutputDir, fmt.Sprintf("goodreads_import_%s.csv", timestamp))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create goodreads CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(goodreadsColumns); err != nil {
		return "", fmt.Errorf("failed to write goodreads CSV header: %w", err)
	}

	for i := range books {
		b := &books[i]
		shelf := shelfFor(b.Status)

		dateRead := ""
		if shelf == "read" {
			dateRead = truncate(b.FinishedAt, 10)
		}

		year := truncate(b.PublishedDate, 4)

		row := []string{
			b.Title,
			strings.Join(b.AuthorNames(), ", "),
			validISBN(b.CombinedISBN()),
			formatFloat(b.MyRating),
			formatFloat(b.CommunityRatings.Average),
			b.Publisher,
			"Paperback",
			year,
			year,
			dateRead,
			truncate(b.DateAdded, 10),
			shelf,
			bookshelves(b.Genres),
			b.MyReview,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write goodreads CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush goodreads CSV: %w", err)
	}
	return path, nil
}

// shelfFor maps the canonical reading status onto the three Goodreads
// shelves. Anything unrecognized lands on to-read.
func shelfFor(status string) string {
	switch strings.ToLower(status) {
	case "finished", "read":
		return "read"
	case "reading", "current":
		return "currently-reading"
	}
	return "to-read"
}

// validISBN blanks out ISBNs Goodreads would reject: after stripping
// separators, every character must be a digit except an optional trailing
// X check character. The raw value is returned untouched when valid.
func validISBN(isbn string) string {
	if isbn == "" {
		return ""
	}
	clean := strings.NewReplacer("-", "", " ", "").Replace(isbn)
	if clean == "" {
		return ""
	}
	for i, c := range clean {
		if c >= '0' && c <= '9' {
			continue
		}
		if (c == 'x' || c == 'X') && i == len(clean)-1 {
			continue
		}
		return ""
	}
	return isbn
}

// bookshelves renders genres as space-separated goodreads shelf slugs.
func bookshelves(genres []string) string {
	shelves := make([]string, 0, len(genres))
	for _, g := range genres {
		shelves = append(shelves, strings.ReplaceAll(strings.ToLower(g), " ", "-"))
	}
	return strings.Join(shelves, " ")
}
