package common

import (
	"time"
)

// TimeRange は期間フィルタのための共通構造体（両端を含む）。
type TimeRange struct {
	From *time.Time
	To   *time.Time
}

// Contains reports whether t falls inside the range. Nil bounds are open.
func (r TimeRange) Contains(t time.Time) bool {
	if r.From != nil && t.Before(*r.From) {
		return false
	}
	if r.To != nil && t.After(*r.To) {
		return false
	}
	return true
}

// MonthRange は t を含む暦月の [月初, 月末] を返す（t のロケーション基準）。
func MonthRange(t time.Time) TimeRange {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return TimeRange{From: &start, To: &end}
}

// SortOrder はソート順
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Page はオフセットページング指定
type Page struct {
	Number  int // 1-based
	PerPage int // 0 以下は実装側デフォルト
}

// PageResult はページング結果（ジェネリクスでアイテム型を受け取る）
type PageResult[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
	Page       int
	PerPage    int
}

// Paginate slices items according to page. defaultPerPage / maxPerPage
// bound the page size.
func Paginate[T any](items []T, page Page, defaultPerPage, maxPerPage int) PageResult[T] {
	number := page.Number
	if number <= 0 {
		number = 1
	}
	perPage := page.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if maxPerPage > 0 && perPage > maxPerPage {
		perPage = maxPerPage
	}

	total := len(items)
	offset := (number - 1) * perPage
	if offset > total {
		offset = total
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	out := make([]T, end-offset)
	copy(out, items[offset:end])

	totalPages := 0
	if perPage > 0 {
		totalPages = (total + perPage - 1) / perPage
	}
	return PageResult[T]{
		Items:      out,
		TotalCount: total,
		TotalPages: totalPages,
		Page:       number,
		PerPage:    perPage,
	}
}
