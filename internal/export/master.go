package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jdebolt/fable-export/internal/entities"
)

var masterColumns = []string{
	"Title", "Subtitle", "Authors", "ISBN10", "ISBN13", "Publisher",
	"Published Date", "Page Count", "Series", "Series Position",
	"List", "Favorite", "Status", "My Rating",
	"Avg Rating", "Characters", "Plot", "Writing", "Setting",
	"Genres", "Moods", "Tropes", "Content Warnings", "Subjects",
	"Started", "Finished Date", "Date Added", "My Review", "Description",
}

// ToMasterCSV writes the wide flattened master list: every book on one
// row, list-valued fields joined with "; ". An empty catalog is a no-op:
// the path is returned but nothing is written, not even a header.
func (e *Exporter) ToMasterCSV(books []entities.Book) (string, error) {
	if err := e.ensureOutputDir(); err != nil {
		return "", err
	}

	path := filepath.Join(e.OutputDir, "fable_master_list.csv")
	if len(books) == 0 {
		return path, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create master CSV: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(masterColumns); err != nil {
		return "", fmt.Errorf("failed to write master CSV header: %w", err)
	}

	for i := range books {
		b := &books[i]

		seriesName, seriesPos := "", ""
		if b.Series != nil {
			seriesName = b.Series.Name
			seriesPos = b.Series.Position
		}

		row := []string{
			b.Title,
			b.Subtitle,
			strings.Join(b.AuthorNames(), ", "),
			b.ISBN10,
			b.ISBN13,
			b.Publisher,
			b.PublishedDate,
			formatInt(b.PageCount),
			seriesName,
			seriesPos,
			b.ListName,
			formatBool(b.Favorite),
			b.Status,
			formatFloat(b.MyRating),
			formatFloat(b.CommunityRatings.Average),
			formatFloat(b.CommunityRatings.Characters),
			formatFloat(b.CommunityRatings.Plot),
			formatFloat(b.CommunityRatings.Writing),
			formatFloat(b.CommunityRatings.Setting),
			strings.Join(b.Genres, "; "),
			strings.Join(b.Moods, "; "),
			strings.Join(b.Tropes, "; "),
			strings.Join(b.ContentWarnings, "; "),
			strings.Join(b.Subjects, "; "),
			truncate(b.StartedAt, 10),
			truncate(b.FinishedAt, 10),
			truncate(b.DateAdded, 10),
			b.MyReview,
			b.Description,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write master CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush master CSV: %w", err)
	}
	return path, nil
}
