package search

import (
	"rental-marketplace/internal/storage"
	"strings"
)

// Filter returns the properties of listing matching both c and query, in listing order.
// An empty query and empty criteria return the whole listing.
func Filter(listing []storage.Property, c Criteria, query string) []storage.Property {
	p := compile(c, query)

	out := make([]storage.Property, 0, len(listing))
	for _, prop := range listing {
		if p.match(prop) {
			out = append(out, prop)
		}
	}
	return out
}

// Match reports whether a single property passes c and query
func Match(prop storage.Property, c Criteria, query string) bool {
	return compile(c, query).match(prop)
}

func (p predicate) match(prop storage.Property) bool {
	location := strings.ToLower(prop.Location)

	if p.query != "" &&
		!strings.Contains(strings.ToLower(prop.Title), p.query) &&
		!strings.Contains(location, p.query) {
		return false
	}

	if p.location != "" && !strings.Contains(location, p.location) {
		return false
	}

	if p.typ != "" && string(prop.Type) != p.typ {
		return false
	}

	if p.hasMin && prop.Price < p.minPrice {
		return false
	}
	if p.hasMax && prop.Price > p.maxPrice {
		return false
	}

	if p.hasBeds && prop.Bedrooms != p.bedrooms {
		return false
	}

	for _, a := range p.amenities {
		if !prop.HasAmenity(a) {
			return false
		}
	}

	return true
}
