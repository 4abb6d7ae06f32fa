package rawstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Loading previously saved runs backs the offline convert command: the
// reconciliation core reruns against audited payloads without touching the
// network.

type page struct {
	Results []any `json:"results"`
}

// LoadReviews reads every reviews_<offset>.json page in a run directory
// and keys the review records by the reviewed book's id.
func LoadReviews(runDir string) (map[string]map[string]any, error) {
	files, err := filepath.Glob(filepath.Join(runDir, "reviews_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list review pages: %w", err)
	}

	reviews := map[string]map[string]any{}
	for _, path := range files {
		results, err := readPage(path)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if id := reviewedBookID(r); id != "" {
				reviews[id] = r
			}
		}
	}
	return reviews, nil
}

// LoadListItems reads every list_<name>_<offset>.json page in a run
// directory, in list order then page order, re-annotating each item with
// the list name recovered from the filename.
func LoadListItems(runDir string) ([]map[string]any, error) {
	files, err := filepath.Glob(filepath.Join(runDir, "list_*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list raw pages: %w", err)
	}

	sort.Slice(files, func(i, j int) bool {
		ni, oi := splitPageName(files[i])
		nj, oj := splitPageName(files[j])
		if ni != nj {
			return ni < nj
		}
		return oi < oj
	})

	var items []map[string]any
	for _, path := range files {
		listName, _ := splitPageName(path)
		results, err := readPage(path)
		if err != nil {
			return nil, err
		}
		for _, r := range results {
			if _, ok := r["_list_name"]; !ok {
				r["_list_name"] = listName
			}
			items = append(items, r)
		}
	}
	return items, nil
}

func readPage(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw page %s: %w", path, err)
	}

	var p page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode raw page %s: %w", path, err)
	}

	results := make([]map[string]any, 0, len(p.Results))
	for _, r := range p.Results {
		if obj, ok := r.(map[string]any); ok {
			results = append(results, obj)
		}
	}
	return results, nil
}

// reviewedBookID extracts the id of the book a review belongs to, keeping
// replay keyed identically to the live fetch. Ids are normally strings but
// some legacy records carry numbers.
func reviewedBookID(review map[string]any) string {
	book, _ := review["book"].(map[string]any)
	if book == nil {
		return ""
	}
	switch v := book["id"].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	}
	return ""
}

// splitPageName parses "list_<name>_<offset>.json" into the sanitized list
// name and the numeric page offset.
func splitPageName(path string) (string, int) {
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	base = strings.TrimPrefix(base, "list_")

	idx := strings.LastIndex(base, "_")
	if idx < 0 {
		return base, 0
	}
	offset, err := strconv.Atoi(base[idx+1:])
	if err != nil {
		return base, 0
	}
	return base[:idx], offset
}
