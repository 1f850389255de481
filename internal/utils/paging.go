package utils

import "strings"

// Pages returns the number of pages needed to show total items size at a
// time, or 0 when there is nothing to show.
func Pages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// PageSlice returns the 1-based page of items. Out-of-range pages are empty.
func PageSlice[T any](items []T, page, size int) []T {
	if page < 1 || size <= 0 {
		return nil
	}
	start := (page - 1) * size
	if start >= len(items) {
		return nil
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ClampPage keeps page within [1, pages]. With no pages it returns 1.
func ClampPage(page, pages int) int {
	if pages < 1 || page < 1 {
		return 1
	}
	if page > pages {
		return pages
	}
	return page
}

// Bar renders a horizontal bar of width cells scaled by value/limit.
func Bar(value, limit float64, width int) string {
	if width <= 0 || limit <= 0 || value <= 0 {
		return ""
	}
	n := int(value / limit * float64(width))
	if n > width {
		n = width
	}
	if n == 0 {
		return "▏"
	}
	return strings.Repeat("█", n)
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
