// Package query composes filtered, searched, ordered and paginated views over
// a collection from request parameters.
package query

import (
	"strconv"
	"strings"

	"folio/internal/models"
)

// Reserved parameter names. Every other parameter is a filter candidate.
const (
	ParamSearch   = "search"
	ParamOrdering = "ordering"
	ParamLimit    = "limit"
	ParamOffset   = "offset"
)

// Params is a normalized listing request.
type Params struct {
	Filters  map[string]string
	Search   string
	Ordering string
	// Limit <= 0 means unbounded.
	Limit  int
	Offset int
}

// ParamsFromQuery builds Params from a flat query-string map.
func ParamsFromQuery(q map[string]string) (Params, error) {
	p := Params{Filters: make(map[string]string)}
	for key, value := range q {
		switch key {
		case ParamSearch:
			p.Search = value
		case ParamOrdering:
			p.Ordering = value
		case ParamLimit:
			n, err := parseNonNegative(key, value)
			if err != nil {
				return Params{}, err
			}
			p.Limit = n
		case ParamOffset:
			n, err := parseNonNegative(key, value)
			if err != nil {
				return Params{}, err
			}
			p.Offset = n
		default:
			p.Filters[key] = value
		}
	}
	return p, nil
}

func parseNonNegative(key, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, models.NewFieldValidationError(map[string]string{key: "A valid non-negative integer is required."})
	}
	return n, nil
}

// WithFilter returns a copy of p with one more filter set.
func (p Params) WithFilter(key, value string) Params {
	filters := make(map[string]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		filters[k] = v
	}
	filters[key] = value
	p.Filters = filters
	return p
}

// SearchTerms splits the search string on whitespace and commas.
func SearchTerms(search string) []string {
	return strings.FieldsFunc(search, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// OrderTerm is one resolved ordering column.
type OrderTerm struct {
	Column string
	Desc   bool
}

// ParseOrdering resolves a comma-separated "field,-field" list against the
// allowed fields (parameter name to column). Unknown or repeated fields are
// dropped; when nothing valid remains, fallback is parsed the same way.
func ParseOrdering(raw string, allowed map[string]string, fallback string) []OrderTerm {
	terms := resolveOrdering(raw, allowed)
	if len(terms) == 0 && fallback != "" {
		terms = resolveOrdering(fallback, allowed)
	}
	return terms
}

func resolveOrdering(raw string, allowed map[string]string) []OrderTerm {
	var terms []OrderTerm
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		column, ok := allowed[name]
		if !ok || seen[column] {
			continue
		}
		seen[column] = true
		terms = append(terms, OrderTerm{Column: column, Desc: desc})
	}
	return terms
}
