package search

import (
	"strings"

	"github.com/crestline/leasebot/core"
)

// MatchesFilters reports whether a listing satisfies every present filter
// predicate. An absent filter always passes, so an empty Filters value
// matches every record.
func MatchesFilters(p *core.Property, f core.Filters) bool {
	if p == nil {
		return false
	}

	if f.Beds != nil && p.Unit.Beds != *f.Beds {
		return false
	}
	if f.Baths != nil && p.Unit.Baths != *f.Baths {
		return false
	}
	if f.Rent != nil {
		if f.Rent.Min != nil && p.Terms.Rent < *f.Rent.Min {
			return false
		}
		if f.Rent.Max != nil && p.Terms.Rent > *f.Rent.Max {
			return false
		}
	}
	if f.City != nil && !containsFold(p.Address.City, *f.City) && !containsFold(p.Address.Raw, *f.City) {
		return false
	}
	if f.PetsAllowed != nil && p.Pets.Allowed != *f.PetsAllowed {
		return false
	}
	if f.Sqft != nil {
		if f.Sqft.Min != nil && p.Unit.SquareFeet < *f.Sqft.Min {
			return false
		}
		if f.Sqft.Max != nil && p.Unit.SquareFeet > *f.Sqft.Max {
			return false
		}
	}

	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
