// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	common "flowify/internal/domain/common"
)

const (
	defaultPerPage = 50
	maxPerPage     = 200
)

func parseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// parseDate accepts RFC3339 or "2006-01-02" (midnight in loc).
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// parseCreatedRange reads ?from=&to=. A date-only "to" covers the whole day.
func parseCreatedRange(r *http.Request, loc *time.Location) common.TimeRange {
	var tr common.TimeRange
	q := r.URL.Query()
	if t, ok := parseDate(q.Get("from"), loc); ok {
		tr.From = &t
	}
	if raw := strings.TrimSpace(q.Get("to")); raw != "" {
		if t, ok := parseDate(raw, loc); ok {
			if len(raw) == len("2006-01-02") {
				t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
			}
			tr.To = &t
		}
	}
	return tr
}

func parsePage(r *http.Request) common.Page {
	q := r.URL.Query()
	return common.Page{
		Number:  parseIntDefault(q.Get("page"), 1),
		PerPage: parseIntDefault(q.Get("perPage"), defaultPerPage),
	}
}

// pageResponse is the list envelope shared by all list endpoints.
type pageResponse[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
}

func paginate[S any, T any](items []S, page common.Page, conv func(S) T) pageResponse[T] {
	res := common.Paginate(items, page, defaultPerPage, maxPerPage)
	out := make([]T, 0, len(res.Items))
	for _, it := range res.Items {
		out = append(out, conv(it))
	}
	return pageResponse[T]{
		Items:      out,
		TotalCount: res.TotalCount,
		TotalPages: res.TotalPages,
		Page:       res.Page,
		PerPage:    res.PerPage,
	}
}

// pathParts splits the path below prefix: "/api/schedulings/abc/convert" → ["abc","convert"].
func pathParts(path, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
