// Package entities defines the canonical book record produced by the
// reconciliation engine and consumed by every export format.
package entities

// Author is one credited author of a book. Identity is the name; authors
// are never merged across books.
type Author struct {
	Name      string `json:"name"`
	Slug      string `json:"slug,omitempty"`
	Biography string `json:"biography,omitempty"`
}

// SeriesInfo describes a book's membership in a series. Position stays a
// string because upstream values may be non-numeric ("0.5", "novella").
type SeriesInfo struct {
	Name     string `json:"name"`
	Position string `json:"position"`
}

// CommunityRatings holds the per-axis ratings attached to a review.
// Each axis is independently optional; nil means "not rated", not zero.
type CommunityRatings struct {
	Average    *float64 `json:"average"`
	Characters *float64 `json:"characters"`
	Plot       *float64 `json:"plot"`
	Writing    *float64 `json:"writing"`
	Setting    *float64 `json:"setting"`
}

// ReadingProgress is the nested progress object some list items carry.
// A Book only holds one when the source furnished a non-empty object.
type ReadingProgress struct {
	CurrentPercentage *float64 `json:"current_percentage"`
	CurrentPage       *int     `json:"current_page"`
	PageCount         *int     `json:"page_count"`
	Status            string   `json:"status,omitempty"`
}

// Book is the canonical, fully-typed record for one library entry.
// ID and Title are required; everything else defaults to empty rather
// than failing. A Book is built once by the reconciler and never mutated.
type Book struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Authors  []Author `json:"authors"`

	// ISBN10 and ISBN13 classify the raw ISBN by length and are never
	// both set; the raw value is preserved in ISBN regardless.
	ISBN        string `json:"isbn"`
	ISBN10      string `json:"isbn10"`
	ISBN13      string `json:"isbn13"`
	DisplayISBN string `json:"display_isbn"`

	Publisher     string `json:"publisher"`
	PageCount     *int   `json:"page_count"`
	ChapterCount  *int   `json:"chapter_count"`
	PublishedDate string `json:"published_date"`
	Description   string `json:"description"`

	CoverImage      string `json:"cover_image"`
	CoverImageSmall string `json:"cover_image_small"`
	BackgroundColor string `json:"background_color"`

	FableURL          string `json:"fable_url"`
	Source            string `json:"source"`
	PriceUSD          string `json:"price_usd"`
	NonFiction        *bool  `json:"non_fiction"`
	FamilyID          string `json:"family_id"`
	IsFree            *bool  `json:"is_free"`
	CanPurchase       *bool  `json:"can_purchase"`
	CanDownload       *bool  `json:"can_download"`
	StoreAvailability string `json:"store_availability"`
	IsOutOfCatalog    *bool  `json:"is_out_of_catalog"`

	Genres          []string    `json:"genres"`
	Subjects        []string    `json:"subjects"`
	Moods           []string    `json:"moods"`
	ContentWarnings []string    `json:"content_warnings"`
	Tropes          []string    `json:"tropes"`
	Series          *SeriesInfo `json:"series"`

	// User-specific data.
	Status             string   `json:"status"`
	MyRating           *float64 `json:"my_rating"`
	MyReview           string   `json:"my_review"`
	StartedAt          string   `json:"started_at"`
	StartedAtDateType  string   `json:"started_at_date_type"`
	FinishedAt         string   `json:"finished_at"`
	FinishedAtDateType string   `json:"finished_at_date_type"`
	DateAdded          string   `json:"date_added"`
	ListName           string   `json:"list_name"`
	Favorite           *bool    `json:"favorite"`
	SortValue          *float64 `json:"sort_value"`

	ReadingProgress  *ReadingProgress `json:"reading_progress"`
	CommunityRatings CommunityRatings `json:"community_ratings"`
}

// CombinedISBN prefers the 13-digit form, falls back to the 10-digit one.
func (b *Book) CombinedISBN() string {
	if b.ISBN13 != "" {
		return b.ISBN13
	}
	return b.ISBN10
}

// AuthorNames returns just the author names, in credited order.
func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return names
}
