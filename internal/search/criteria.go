// Package search computes the visible part of the listing for a set of filter criteria and a free-text query.
package search

import (
	"strconv"
	"strings"
)

// Any is accepted in Type and Bedrooms as an explicit "no constraint" value
const Any = "any"

// Criteria is a conjunctive set of predicates over the listing.
// Numeric fields keep the text the user typed; text that is not an integer is treated as unset.
type Criteria struct {
	Location  string   `json:"location"`
	Type      string   `json:"type"`
	MinPrice  string   `json:"minPrice"`
	MaxPrice  string   `json:"maxPrice"`
	Bedrooms  string   `json:"bedrooms"`
	Amenities []string `json:"amenities"`
}

// IsEmpty reports whether c constrains nothing
func (c Criteria) IsEmpty() bool {
	_, minSet := parseBound(c.MinPrice)
	_, maxSet := parseBound(c.MaxPrice)
	_, bedroomsSet := parseBound(c.Bedrooms)
	return c.Location == "" &&
		!typeSet(c.Type) &&
		!minSet && !maxSet && !bedroomsSet &&
		len(c.Amenities) == 0
}

// predicate is the compiled form of Criteria
type predicate struct {
	query     string
	location  string
	typ       string
	minPrice  int
	hasMin    bool
	maxPrice  int
	hasMax    bool
	bedrooms  int
	hasBeds   bool
	amenities []string
}

func compile(c Criteria, query string) predicate {
	p := predicate{
		query:     strings.ToLower(query),
		location:  strings.ToLower(c.Location),
		amenities: c.Amenities,
	}
	if typeSet(c.Type) {
		p.typ = strings.TrimSpace(c.Type)
	}
	p.minPrice, p.hasMin = parseBound(c.MinPrice)
	p.maxPrice, p.hasMax = parseBound(c.MaxPrice)
	if !strings.EqualFold(strings.TrimSpace(c.Bedrooms), Any) {
		p.bedrooms, p.hasBeds = parseBound(c.Bedrooms)
	}
	return p
}

func typeSet(t string) bool {
	t = strings.TrimSpace(t)
	return t != "" && !strings.EqualFold(t, Any)
}

// parseBound returns the integer in s and whether it constrains anything
func parseBound(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
