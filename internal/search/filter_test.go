package search

import (
	"testing"
)

func TestBuildRequestFilters(t *testing.T) {
	minRent := int64(500)
	maxRent := int64(2000)
	available := true

	req := BuildRequest(FilterParams{
		Query:     "loft",
		City:      "Berlin",
		MinRent:   &minRent,
		MaxRent:   &maxRent,
		Available: &available,
		SortBy:    "rent_asc",
		Limit:     10,
	})

	if req.Query != "loft" {
		t.Errorf("query = %q", req.Query)
	}
	want := []string{
		"city = 'Berlin'",
		"rentMonthly >= 500",
		"rentMonthly <= 2000",
		"available = true",
	}
	if len(req.Filter) != len(want) {
		t.Fatalf("filters = %v, want %v", req.Filter, want)
	}
	for i := range want {
		if req.Filter[i] != want[i] {
			t.Errorf("filter[%d] = %q, want %q", i, req.Filter[i], want[i])
		}
	}
	if len(req.Sort) != 1 || req.Sort[0] != "rentMonthly:asc" {
		t.Errorf("sort = %v", req.Sort)
	}
}

func TestBuildRequestEscapesQuotes(t *testing.T) {
	req := BuildRequest(FilterParams{City: "L'Aquila"})
	if len(req.Filter) != 1 || req.Filter[0] != `city = 'L\'Aquila'` {
		t.Errorf("filter = %v", req.Filter)
	}
}

func TestBuildRequestEmpty(t *testing.T) {
	req := BuildRequest(FilterParams{})
	if len(req.Filter) != 0 {
		t.Errorf("expected no filters, got %v", req.Filter)
	}
	if len(req.Sort) != 0 {
		t.Errorf("expected no sort, got %v", req.Sort)
	}
}
