package common

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		name        string
		url         string
		wantPage    int
		wantPerPage int
	}{
		{"defaults", "/items", 1, 20},
		{"explicit", "/items?page=3&limit=50", 3, 50},
		{"capped at max", "/items?limit=500", 1, 100},
		{"negative ignored", "/items?page=-2&limit=-5", 1, 20},
		{"garbage ignored", "/items?page=abc&limit=xyz", 1, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tc.url, nil)
			page, perPage := ParsePage(r, 20, 100)
			if page != tc.wantPage || perPage != tc.wantPerPage {
				t.Fatalf("got page=%d perPage=%d, want %d/%d", page, perPage, tc.wantPage, tc.wantPerPage)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := Offset(1, 20); got != 0 {
		t.Fatalf("offset = %d, want 0", got)
	}
	if got := Offset(3, 20); got != 40 {
		t.Fatalf("offset = %d, want 40", got)
	}
	if got := Offset(0, 20); got != 0 {
		t.Fatalf("offset for page 0 = %d, want 0", got)
	}
}
