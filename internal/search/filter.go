package search

import (
	"fmt"
	"strings"
)

// FilterParams narrows a listing search. Pointer fields mean "no bound".
type FilterParams struct {
	Query        string
	City         string
	PropertyKind string
	MinRent      *int64
	MaxRent      *int64
	MinBedrooms  *int
	Available    *bool
	SortBy       string
	Limit        int64
	Offset       int64
}

// BuildRequest translates filter params into a search request with
// Meilisearch filter expressions.
func BuildRequest(params FilterParams) Request {
	var filters []string

	if params.City != "" {
		filters = append(filters, fmt.Sprintf("city = '%s'", escapeFilterValue(params.City)))
	}
	if params.PropertyKind != "" {
		filters = append(filters, fmt.Sprintf("propertyKind = '%s'", escapeFilterValue(params.PropertyKind)))
	}
	if params.MinRent != nil {
		filters = append(filters, fmt.Sprintf("rentMonthly >= %d", *params.MinRent))
	}
	if params.MaxRent != nil {
		filters = append(filters, fmt.Sprintf("rentMonthly <= %d", *params.MaxRent))
	}
	if params.MinBedrooms != nil {
		filters = append(filters, fmt.Sprintf("bedrooms >= %d", *params.MinBedrooms))
	}
	if params.Available != nil {
		filters = append(filters, fmt.Sprintf("available = %t", *params.Available))
	}

	var sort []string
	switch params.SortBy {
	case "rent_asc":
		sort = []string{"rentMonthly:asc"}
	case "rent_desc":
		sort = []string{"rentMonthly:desc"}
	case "newest":
		sort = []string{"createdAt:desc"}
	}

	return Request{
		Query:  params.Query,
		Filter: filters,
		Sort:   sort,
		Limit:  params.Limit,
		Offset: params.Offset,
	}
}

func escapeFilterValue(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}
