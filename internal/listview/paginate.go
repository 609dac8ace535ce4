// Package listview holds the state of one admin table: the full collection
// fetched from the upstream, the load status and the 1-indexed page being
// shown. The collection is always replaced wholesale after a fetch.
package listview

// PageCount returns ceil(n/size). A size below 1 counts as 1.
func PageCount(n, size int) int {
	if size < 1 {
		size = 1
	}
	if n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// Paginate returns items[(page-1)*size : page*size], clamped to the slice.
// Pages outside the collection yield an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if size < 1 {
		size = 1
	}
	if page < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
