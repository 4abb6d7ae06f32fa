package catalog

import (
	"encoding/json"
	"reflect"
	"testing"
)

// decode builds the untyped fragment shapes the API client produces.
func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return obj
}

func noReviews() map[string]map[string]any {
	return map[string]map[string]any{}
}

func TestReconcile_NestedBookFragment(t *testing.T) {
	item := decode(t, `{
		"_list_name": "Want to Read",
		"favorite": true,
		"book": {
			"id": "b1",
			"title": "The Dispossessed",
			"subtitle": "An Ambiguous Utopia",
			"isbn": "9780061054884",
			"imprint": "Harper Voyager",
			"publisher": "HarperCollins",
			"page_count": 387,
			"published_date": "1974-05-01",
			"authors": [{"name": "Ursula K. Le Guin", "slug": "ursula-k-le-guin"}],
			"genres": [{"id": "g1", "name": "Science Fiction"}]
		}
	}`)

	book := Reconcile(item, noReviews())
	if book == nil {
		t.Fatal("expected a book, got nil")
	}

	if book.ID != "b1" {
		t.Errorf("expected id 'b1', got '%s'", book.ID)
	}
	if book.Title != "The Dispossessed" {
		t.Errorf("unexpected title: %s", book.Title)
	}
	if book.Publisher != "Harper Voyager" {
		t.Errorf("expected imprint to win over publisher, got '%s'", book.Publisher)
	}
	if book.PageCount == nil || *book.PageCount != 387 {
		t.Errorf("unexpected page count: %v", book.PageCount)
	}
	if len(book.Authors) != 1 || book.Authors[0].Name != "Ursula K. Le Guin" {
		t.Errorf("unexpected authors: %v", book.Authors)
	}
	if book.Authors[0].Slug != "ursula-k-le-guin" {
		t.Errorf("unexpected author slug: %s", book.Authors[0].Slug)
	}
	if !reflect.DeepEqual(book.Genres, []string{"Science Fiction"}) {
		t.Errorf("unexpected genres: %v", book.Genres)
	}
	if book.ListName != "Want to Read" {
		t.Errorf("unexpected list name: %s", book.ListName)
	}
	if book.Favorite == nil || !*book.Favorite {
		t.Errorf("expected favorite=true, got %v", book.Favorite)
	}
	if book.Status != "unread" {
		t.Errorf("expected default status 'unread', got '%s'", book.Status)
	}
}

func TestReconcile_BareBookFragment(t *testing.T) {
	// Older list payloads inline the book fields on the item itself.
	item := decode(t, `{"id": "b2", "title": "Piranesi", "status": "finished"}`)

	book := Reconcile(item, noReviews())
	if book == nil {
		t.Fatal("expected a book, got nil")
	}
	if book.ID != "b2" || book.Title != "Piranesi" {
		t.Errorf("unexpected book: %s / %s", book.ID, book.Title)
	}
	if book.Status != "finished" {
		t.Errorf("unexpected status: %s", book.Status)
	}
}

func TestReconcile_MalformedItems(t *testing.T) {
	tests := []struct {
		name string
		item map[string]any
	}{
		{"nil item", nil},
		{"book is a string", decode(t, `{"book": "not-an-object"}`)},
		{"book is a list", decode(t, `{"book": [1, 2]}`)},
		{"book is null", decode(t, `{"book": null}`)},
		{"missing id", decode(t, `{"book": {"title": "No ID"}}`)},
		{"empty id", decode(t, `{"book": {"id": "", "title": "Empty ID"}}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if book := Reconcile(tt.item, noReviews()); book != nil {
				t.Errorf("expected nil, got book %q", book.ID)
			}
		})
	}
}

func TestReconcile_StatusPrecedence(t *testing.T) {
	item := decode(t, `{
		"status": "read",
		"book": {
			"id": "b3",
			"title": "T",
			"status": "unread",
			"reading_progress": {"status": "reading", "current_page": 120}
		}
	}`)

	book := Reconcile(item, noReviews())
	if book == nil {
		t.Fatal("expected a book, got nil")
	}
	if book.Status != "reading" {
		t.Errorf("expected nested progress status to win, got '%s'", book.Status)
	}
	if book.ReadingProgress == nil {
		t.Fatal("expected reading progress to be present")
	}
	if book.ReadingProgress.CurrentPage == nil || *book.ReadingProgress.CurrentPage != 120 {
		t.Errorf("unexpected current page: %v", book.ReadingProgress.CurrentPage)
	}
}

func TestReconcile_StatusFallsBackToItemThenBook(t *testing.T) {
	item := decode(t, `{"status": "read", "book": {"id": "b4", "title": "T", "status": "unread"}}`)
	book := Reconcile(item, noReviews())
	if book.Status != "read" {
		t.Errorf("expected item status to win over book status, got '%s'", book.Status)
	}

	item = decode(t, `{"book": {"id": "b5", "title": "T", "status": "want_to_read"}}`)
	book = Reconcile(item, noReviews())
	if book.Status != "want_to_read" {
		t.Errorf("expected book status, got '%s'", book.Status)
	}
}

func TestReconcile_ISBNClassification(t *testing.T) {
	tests := []struct {
		isbn   string
		isbn10 string
		isbn13 string
	}{
		{"0061054887", "0061054887", ""},
		{"9780061054884", "", "9780061054884"},
		{"12345", "", ""},
		{"", "", ""},
		{"978-0-06-105488-4", "", ""}, // hyphenated, wrong length
	}

	for _, tt := range tests {
		t.Run(tt.isbn, func(t *testing.T) {
			item := map[string]any{"book": map[string]any{"id": "x", "isbn": tt.isbn}}
			book := Reconcile(item, noReviews())
			if book.ISBN10 != tt.isbn10 {
				t.Errorf("isbn10 = %q, expected %q", book.ISBN10, tt.isbn10)
			}
			if book.ISBN13 != tt.isbn13 {
				t.Errorf("isbn13 = %q, expected %q", book.ISBN13, tt.isbn13)
			}
			if book.ISBN != tt.isbn {
				t.Errorf("raw isbn = %q, expected it preserved as %q", book.ISBN, tt.isbn)
			}
			if book.ISBN10 != "" && book.ISBN13 != "" {
				t.Error("isbn10 and isbn13 must never both be set")
			}
		})
	}
}

func TestReconcile_TagCoercion(t *testing.T) {
	item := decode(t, `{
		"book": {
			"id": "b6",
			"title": "T",
			"storygraph_tags": {"moods": "happy", "content_warnings": {"x": 1}},
			"tropes": "found family"
		}
	}`)

	book := Reconcile(item, noReviews())
	if len(book.Moods) != 0 {
		t.Errorf("string moods should coerce to empty list, got %v", book.Moods)
	}
	if len(book.ContentWarnings) != 0 {
		t.Errorf("object content_warnings should coerce to empty list, got %v", book.ContentWarnings)
	}
	if len(book.Tropes) != 0 {
		t.Errorf("string tropes should coerce to empty list, got %v", book.Tropes)
	}
}

func TestReconcile_TagLists(t *testing.T) {
	item := decode(t, `{
		"book": {
			"id": "b7",
			"title": "T",
			"storygraph_tags": {"moods": ["hopeful", "reflective"], "content_warnings": ["war"]},
			"tropes": ["slow burn"]
		}
	}`)

	book := Reconcile(item, noReviews())
	if !reflect.DeepEqual(book.Moods, []string{"hopeful", "reflective"}) {
		t.Errorf("unexpected moods: %v", book.Moods)
	}
	if !reflect.DeepEqual(book.ContentWarnings, []string{"war"}) {
		t.Errorf("unexpected content warnings: %v", book.ContentWarnings)
	}
	if !reflect.DeepEqual(book.Tropes, []string{"slow burn"}) {
		t.Errorf("unexpected tropes: %v", book.Tropes)
	}
}

func TestReconcile_AuthorShapes(t *testing.T) {
	item := decode(t, `{
		"book": {
			"id": "b8",
			"title": "T",
			"authors": [
				{"name": "Jane Doe", "slug": "jane-doe", "biography": "bio"},
				"Bare Name",
				{"slug": "nameless"},
				42,
				null
			]
		}
	}`)

	book := Reconcile(item, noReviews())
	if len(book.Authors) != 2 {
		t.Fatalf("expected 2 authors, got %d: %v", len(book.Authors), book.Authors)
	}
	if book.Authors[0].Name != "Jane Doe" || book.Authors[0].Biography != "bio" {
		t.Errorf("unexpected first author: %+v", book.Authors[0])
	}
	if book.Authors[1].Name != "Bare Name" || book.Authors[1].Slug != "" {
		t.Errorf("unexpected second author: %+v", book.Authors[1])
	}
}

func TestReconcile_SeriesFirstMembershipWins(t *testing.T) {
	item := decode(t, `{
		"book": {
			"id": "b9",
			"title": "T",
			"bookseries_set": [
				{"position": 0.5, "book_series": {"name": "Earthsea"}},
				{"position": "2", "book_series": {"name": "Other Series"}}
			]
		}
	}`)

	book := Reconcile(item, noReviews())
	if book.Series == nil {
		t.Fatal("expected series to be set")
	}
	if book.Series.Name != "Earthsea" {
		t.Errorf("expected first series membership, got '%s'", book.Series.Name)
	}
	if book.Series.Position != "0.5" {
		t.Errorf("expected position '0.5', got '%s'", book.Series.Position)
	}
}

func TestReconcile_SeriesMalformed(t *testing.T) {
	item := decode(t, `{"book": {"id": "b10", "title": "T", "bookseries_set": ["oops"]}}`)
	book := Reconcile(item, noReviews())
	if book.Series != nil {
		t.Errorf("malformed first membership should leave series absent, got %+v", book.Series)
	}

	item = decode(t, `{"book": {"id": "b11", "title": "T", "bookseries_set": {}}}`)
	book = Reconcile(item, noReviews())
	if book.Series != nil {
		t.Errorf("non-list bookseries_set should leave series absent, got %+v", book.Series)
	}
}

func TestReconcile_SubjectFlattening(t *testing.T) {
	item := decode(t, `{
		"book": {
			"id": "b12",
			"title": "T",
			"subjects": [["Fiction", "Literary"], ["Fiction"], "not-a-path", [["nested"]]]
		}
	}`)

	book := Reconcile(item, noReviews())
	want := []string{"Fiction > Literary", "Fiction"}
	if !reflect.DeepEqual(book.Subjects, want) {
		t.Errorf("unexpected subjects: %v", book.Subjects)
	}
}

func TestReconcile_ReviewJoin(t *testing.T) {
	item := decode(t, `{"book": {"id": "b13", "title": "T", "finished_reading_at": "2024-03-01T10:00:00Z"}}`)
	reviews := map[string]map[string]any{
		"b13": decode(t, `{
			"book": {"id": "b13"},
			"rating": 4.5,
			"characters_rating": 5,
			"plot_rating": 4,
			"writing_style_rating": 3.5,
			"setting_rating": 4,
			"review": "Loved it.",
			"created_at": "2024-03-02T08:00:00Z",
			"updated_at": "2024-03-03T08:00:00Z"
		}`),
	}

	book := Reconcile(item, reviews)
	if book.MyRating == nil || *book.MyRating != 4.5 {
		t.Errorf("unexpected my rating: %v", book.MyRating)
	}
	if book.MyReview != "Loved it." {
		t.Errorf("unexpected review: %s", book.MyReview)
	}
	r := book.CommunityRatings
	if r.Average == nil || *r.Average != 4.5 {
		t.Errorf("unexpected average: %v", r.Average)
	}
	if r.Characters == nil || *r.Characters != 5 {
		t.Errorf("unexpected characters rating: %v", r.Characters)
	}
	if r.Writing == nil || *r.Writing != 3.5 {
		t.Errorf("unexpected writing rating: %v", r.Writing)
	}
	if book.DateAdded != "2024-03-02T08:00:00Z" {
		t.Errorf("expected review created_at as date added, got '%s'", book.DateAdded)
	}
	// The book's own finish date wins over review timestamps.
	if book.FinishedAt != "2024-03-01T10:00:00Z" {
		t.Errorf("unexpected finished date: %s", book.FinishedAt)
	}
}

func TestReconcile_FinishedDateFallback(t *testing.T) {
	reviews := map[string]map[string]any{
		"b14": decode(t, `{"book": {"id": "b14"}, "created_at": "2024-01-05T00:00:00Z", "updated_at": "2024-01-06T00:00:00Z"}`),
		"b15": decode(t, `{"book": {"id": "b15"}, "updated_at": "2024-01-07T00:00:00Z"}`),
	}

	item := decode(t, `{"book": {"id": "b14", "title": "T", "status": "Finished"}}`)
	book := Reconcile(item, reviews)
	if book.FinishedAt != "2024-01-05T00:00:00Z" {
		t.Errorf("expected review created_at fallback, got '%s'", book.FinishedAt)
	}

	item = decode(t, `{"book": {"id": "b15", "title": "T", "status": "read"}}`)
	book = Reconcile(item, reviews)
	if book.FinishedAt != "2024-01-07T00:00:00Z" {
		t.Errorf("expected review updated_at fallback, got '%s'", book.FinishedAt)
	}

	// Not finished: review dates must not leak into finished_at.
	item = decode(t, `{"book": {"id": "b14", "title": "T", "status": "reading"}}`)
	book = Reconcile(item, reviews)
	if book.FinishedAt != "" {
		t.Errorf("expected empty finished date for in-progress book, got '%s'", book.FinishedAt)
	}
}

func TestReconcile_EmptyProgressObjectStaysAbsent(t *testing.T) {
	item := decode(t, `{"book": {"id": "b16", "title": "T", "reading_progress": {}}}`)
	book := Reconcile(item, noReviews())
	if book.ReadingProgress != nil {
		t.Errorf("empty progress object should stay absent, got %+v", book.ReadingProgress)
	}

	item = decode(t, `{"book": {"id": "b17", "title": "T", "reading_progress": "50%"}}`)
	book = Reconcile(item, noReviews())
	if book.ReadingProgress != nil {
		t.Errorf("malformed progress should stay absent, got %+v", book.ReadingProgress)
	}
}

func TestReconcile_NumericID(t *testing.T) {
	item := decode(t, `{"book": {"id": 12345, "title": "T"}}`)
	book := Reconcile(item, noReviews())
	if book == nil {
		t.Fatal("expected a book, got nil")
	}
	if book.ID != "12345" {
		t.Errorf("expected numeric id to normalize to '12345', got '%s'", book.ID)
	}
}

func TestReconcile_MissingTitleDefaults(t *testing.T) {
	item := decode(t, `{"book": {"id": "b18"}}`)
	book := Reconcile(item, noReviews())
	if book.Title != "Unknown" {
		t.Errorf("expected default title 'Unknown', got '%s'", book.Title)
	}
}

func TestReconcile_EmptyTitleStaysEmpty(t *testing.T) {
	// Only a missing title key gets the placeholder; a record that really
	// carries an empty title keeps it.
	item := decode(t, `{"book": {"id": "b19", "title": ""}}`)
	book := Reconcile(item, noReviews())
	if book.Title != "" {
		t.Errorf("expected empty title preserved, got '%s'", book.Title)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	item := decode(t, `{
		"_list_name": "Finished",
		"favorite": false,
		"book": {
			"id": "b19",
			"title": "T",
			"isbn": "9780061054884",
			"authors": [{"name": "A"}],
			"genres": [{"name": "Fantasy"}],
			"reading_progress": {"status": "finished", "current_percentage": 100}
		}
	}`)
	reviews := map[string]map[string]any{
		"b19": decode(t, `{"book": {"id": "b19"}, "rating": 5, "created_at": "2024-02-02T00:00:00Z"}`),
	}

	first := Reconcile(item, reviews)
	second := Reconcile(item, reviews)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("reconciling the same item twice gave different books:\n%+v\n%+v", first, second)
	}
}
