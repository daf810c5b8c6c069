package view

// DefaultPageSize is the number of rows on one admin list page.
const DefaultPageSize = 8

// Pager describes one page of an in-memory list.
type Pager struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	// Start and End bound the page within the full slice: items[Start:End].
	Start   int
	End     int
	HasPrev bool
	HasNext bool
	Pages   []int
}

// Paginate clamps page to [1, max(1, TotalPages)] and computes the slice bounds.
func Paginate(total, page, size int) Pager {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	totalPages := (total + size - 1) / size
	last := totalPages
	if last < 1 {
		last = 1
	}
	if page < 1 {
		page = 1
	}
	if page > last {
		page = last
	}

	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}

	pages := make([]int, 0, totalPages)
	for i := 1; i <= totalPages; i++ {
		pages = append(pages, i)
	}

	return Pager{
		Page:       page,
		PageSize:   size,
		Total:      total,
		TotalPages: totalPages,
		Start:      start,
		End:        end,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		Pages:      pages,
	}
}

// PageOf returns the rows of the current page.
func PageOf[T any](items []T, p Pager) []T {
	if p.Start >= len(items) {
		return []T{}
	}
	end := p.End
	if end > len(items) {
		end = len(items)
	}
	return items[p.Start:end]
}
