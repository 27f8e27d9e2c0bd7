// Package pagination holds the one pagination value type shared by every
// listing endpoint.
package pagination

// Page is a single page of results plus the derived navigation fields.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
	PrevNum int   `json:"prev_num"`
	NextNum int   `json:"next_num"`
}

// New derives the navigation fields from page/perPage/total.
func New[T any](items []T, page, perPage int, total int64) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	pages := int((total + int64(perPage) - 1) / int64(perPage))
	return Page[T]{
		Items:   items,
		Page:    page,
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
		PrevNum: page - 1,
		NextNum: page + 1,
	}
}

// Paginate slices an already-materialized result set. The grouped complaint
// lists pick one representative row per group in memory, so they paginate the
// same way.
func Paginate[T any](all []T, page, perPage int) Page[T] {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	total := int64(len(all))
	start := (page - 1) * perPage
	if start > len(all) {
		start = len(all)
	}
	end := start + perPage
	if end > len(all) {
		end = len(all)
	}
	return New(all[start:end], page, perPage, total)
}
