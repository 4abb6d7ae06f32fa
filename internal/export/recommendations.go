package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jdebolt/fable-export/internal/entities"
)

// ToRecommendationsJSONL writes one compact JSON object per book, reduced
// to the attributes recommendation tooling cares about. Fields whose value
// is nil, an empty string or an empty list are omitted from the object
// entirely to keep the stream small.
func (e *Exporter) ToRecommendationsJSONL(books []entities.Book) (string, error) {
	if err := e.ensureOutputDir(); err != nil {
		return "", err
	}

	path := filepath.Join(e.OutputDir, "recommendations.jsonl")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create recommendations JSONL: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for i := range books {
		record := recommendationRecord(&books[i])
		line, err := json.Marshal(record)
		if err != nil {
			return "", fmt.Errorf("failed to marshal recommendation record: %w", err)
		}
		if _, err := w.Write(line); err != nil {
			return "", fmt.Errorf("failed to write recommendation record: %w", err)
		}
		if err := w.WriteByte('\n'); err != nil {
			return "", fmt.Errorf("failed to write recommendation record: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush recommendations JSONL: %w", err)
	}
	return path, nil
}

func recommendationRecord(b *entities.Book) map[string]any {
	record := map[string]any{}

	putString(record, "title", b.Title)
	putList(record, "authors", b.AuthorNames())
	putString(record, "status", b.Status)
	if b.MyRating != nil {
		record["rating"] = *b.MyRating
	}
	if b.Favorite != nil {
		record["favorite"] = *b.Favorite
	}
	putString(record, "finished", truncate(b.FinishedAt, 10))
	if b.NonFiction != nil {
		record["non_fiction"] = *b.NonFiction
	}
	putList(record, "genres", b.Genres)
	putList(record, "moods", b.Moods)
	putList(record, "tropes", b.Tropes)
	putList(record, "content_warnings", b.ContentWarnings)
	if b.Series != nil && b.Series.Name != "" {
		series := map[string]any{"name": b.Series.Name}
		if b.Series.Position != "" {
			series["position"] = b.Series.Position
		}
		record["series"] = series
	}
	putString(record, "review", b.MyReview)
	putString(record, "description", b.Description)

	return record
}

func putString(record map[string]any, key, value string) {
	if value != "" {
		record[key] = value
	}
}

func putList(record map[string]any, key string, values []string) {
	if len(values) > 0 {
		record[key] = values
	}
}
