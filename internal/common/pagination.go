package common

import (
	"net/http"
	"strconv"
)

// PageMeta describes a page of a list response.
type PageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"perPage"`
	Total   int `json:"total"`
}

// ParsePage extracts page/limit query parameters, bounding the per-page
// size between 1 and maxPerPage.
func ParsePage(r *http.Request, defaultPerPage, maxPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}
	if perPage <= 0 {
		perPage = 1
	}
	return
}

// Offset converts one-based page numbers into a row offset.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
