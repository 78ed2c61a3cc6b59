package query_test

import (
	"context"
	"fmt"
	"testing"

	"folio/internal/database/dbtest"
	"folio/internal/models"
	"folio/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var bookSpec = query.Spec{
	FilterFields: map[string]query.FilterField{
		"title":            {Column: "title"},
		"author":           {Column: "author"},
		"publication_year": {Column: "publication_year", Parse: query.Int},
	},
	SearchFields: []string{"title", "author"},
	OrderingFields: map[string]string{
		"title":            "title",
		"publication_year": "publication_year",
	},
	DefaultOrdering: "title",
}

func seedBooks(t *testing.T, db *gorm.DB, books ...models.Book) query.Conn {
	t.Helper()
	for i := range books {
		require.NoError(t, db.Create(&books[i]).Error)
	}
	return func(ctx context.Context) *gorm.DB { return db.WithContext(ctx) }
}

func titles(books []models.Book) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		out = append(out, b.Title)
	}
	return out
}

func list(t *testing.T, conn query.Conn, params query.Params) []models.Book {
	t.Helper()
	seq, err := query.Compose[models.Book](conn, bookSpec, params)
	require.NoError(t, err)
	books, err := seq.List(context.Background())
	require.NoError(t, err)
	return books
}

func classics(t *testing.T) query.Conn {
	return seedBooks(t, dbtest.New(t),
		models.Book{Title: "The Hobbit", Author: "J.R.R. Tolkien", PublicationYear: 1937},
		models.Book{Title: "Harry Potter", Author: "J.K. Rowling", PublicationYear: 1997},
		models.Book{Title: "Dune", Author: "Frank Herbert", PublicationYear: 1965},
	)
}

func TestCompose_Search(t *testing.T) {
	conn := classics(t)

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"single term matches title", "Hobbit", []string{"The Hobbit"}},
		{"case insensitive", "hOBBIT", []string{"The Hobbit"}},
		{"matches author field", "rowling", []string{"Harry Potter"}},
		{"terms are ANDed", "harry rowling", []string{"Harry Potter"}},
		{"terms with no common row", "hobbit rowling", []string{}},
		{"comma separated terms", "tolkien,hobbit", []string{"The Hobbit"}},
		{"empty search returns everything", "", []string{"Dune", "Harry Potter", "The Hobbit"}},
		{"whitespace search returns everything", "   ", []string{"Dune", "Harry Potter", "The Hobbit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(list(t, conn, query.Params{Search: tt.search})))
		})
	}
}

func TestCompose_SearchEscapesWildcards(t *testing.T) {
	conn := seedBooks(t, dbtest.New(t),
		models.Book{Title: "100% Cotton", Author: "A"},
		models.Book{Title: "1000 Years", Author: "B"},
		models.Book{Title: "snake_case", Author: "C"},
		models.Book{Title: "snakeXcase", Author: "D"},
	)

	assert.Equal(t, []string{"100% Cotton"}, titles(list(t, conn, query.Params{Search: "100%"})))
	assert.Equal(t, []string{"snake_case"}, titles(list(t, conn, query.Params{Search: "e_c"})))
}

func TestCompose_Ordering(t *testing.T) {
	conn := classics(t)

	tests := []struct {
		name     string
		ordering string
		want     []string
	}{
		{"default is title", "", []string{"Dune", "Harry Potter", "The Hobbit"}},
		{"descending year", "-publication_year", []string{"Harry Potter", "Dune", "The Hobbit"}},
		{"ascending year", "publication_year", []string{"The Hobbit", "Dune", "Harry Potter"}},
		{"unknown field falls back to default", "isbn", []string{"Dune", "Harry Potter", "The Hobbit"}},
		{"unknown fields are dropped", "isbn,-publication_year", []string{"Harry Potter", "Dune", "The Hobbit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, titles(list(t, conn, query.Params{Ordering: tt.ordering})))
		})
	}
}

func TestCompose_TieBreakByPrimaryKey(t *testing.T) {
	conn := seedBooks(t, dbtest.New(t),
		models.Book{Title: "Same", Author: "first", PublicationYear: 2000},
		models.Book{Title: "Same", Author: "second", PublicationYear: 2000},
		models.Book{Title: "Same", Author: "third", PublicationYear: 2000},
	)

	seq, err := query.Compose[models.Book](conn, bookSpec, query.Params{Ordering: "-publication_year"})
	require.NoError(t, err)
	assert.Equal(t, []query.OrderTerm{{Column: "publication_year", Desc: true}, {Column: "id"}}, seq.Ordering())

	books, err := seq.List(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "first", books[0].Author)
	assert.Equal(t, "third", books[2].Author)
}

func TestCompose_Filters(t *testing.T) {
	conn := classics(t)

	assert.Equal(t, []string{"Dune"}, titles(list(t, conn, query.Params{Filters: map[string]string{"publication_year": "1965"}})))
	assert.Equal(t, []string{"The Hobbit"}, titles(list(t, conn, query.Params{Filters: map[string]string{"author": "J.R.R. Tolkien"}})))
	// exact match only
	assert.Empty(t, list(t, conn, query.Params{Filters: map[string]string{"title": "Hobbit"}}))
	// unknown filters are ignored
	assert.Len(t, list(t, conn, query.Params{Filters: map[string]string{"isbn": "123"}}), 3)

	// filter and search combine with AND
	got := list(t, conn, query.Params{
		Filters: map[string]string{"publication_year": "1997"},
		Search:  "hobbit",
	})
	assert.Empty(t, got)
}

func TestCompose_InvalidFilterValue(t *testing.T) {
	conn := classics(t)
	_, err := query.Compose[models.Book](conn, bookSpec, query.Params{Filters: map[string]string{"publication_year": "nineteen"}})
	require.Error(t, err)
	appErr := models.AsAppError(err)
	assert.Equal(t, models.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Fields, "publication_year")
}

func TestCompose_ScopeFilter(t *testing.T) {
	spec := bookSpec
	spec.FilterFields = map[string]query.FilterField{
		"decade": {Scope: func(db *gorm.DB, value string) (*gorm.DB, error) {
			var start int
			if _, err := fmt.Sscanf(value, "%ds", &start); err != nil {
				return nil, err
			}
			return db.Where("publication_year BETWEEN ? AND ?", start, start+9), nil
		}},
	}
	conn := classics(t)

	seq, err := query.Compose[models.Book](conn, spec, query.Params{Filters: map[string]string{"decade": "1960s"}})
	require.NoError(t, err)
	books, err := seq.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles(books))
}

func TestSequence_PaginationAndCount(t *testing.T) {
	conn := classics(t)
	ctx := context.Background()

	seq, err := query.Compose[models.Book](conn, bookSpec, query.Params{Limit: 2, Offset: 1})
	require.NoError(t, err)

	count, err := seq.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	books, err := seq.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Harry Potter", "The Hobbit"}, titles(books))

	// restartable: a second pass runs the query again
	again, err := seq.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, titles(books), titles(again))
}

func TestSequence_All(t *testing.T) {
	db := dbtest.New(t)
	books := make([]models.Book, 0, 230)
	for i := 0; i < 230; i++ {
		books = append(books, models.Book{Title: fmt.Sprintf("Book %03d", i), Author: "A"})
	}
	conn := seedBooks(t, db, books...)
	ctx := context.Background()

	seq, err := query.Compose[models.Book](conn, bookSpec, query.Params{})
	require.NoError(t, err)

	var seen []string
	for b, err := range seq.All(ctx) {
		require.NoError(t, err)
		seen = append(seen, b.Title)
	}
	require.Len(t, seen, 230)
	assert.Equal(t, "Book 000", seen[0])
	assert.Equal(t, "Book 229", seen[229])

	limited, err := query.Compose[models.Book](conn, bookSpec, query.Params{Limit: 150, Offset: 10})
	require.NoError(t, err)
	n := 0
	for b, err := range limited.All(ctx) {
		require.NoError(t, err)
		if n == 0 {
			assert.Equal(t, "Book 010", b.Title)
		}
		n++
	}
	assert.Equal(t, 150, n)

	// early exit
	n = 0
	for range seq.All(ctx) {
		n++
		if n == 5 {
			break
		}
	}
	assert.Equal(t, 5, n)
}
