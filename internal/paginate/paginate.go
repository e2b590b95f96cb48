// Package paginate holds explicit page state for a sequence of items.
package paginate

import (
	"net/url"
	"strconv"
)

// DefaultSize is the project grid page size.
const DefaultSize = 9

// Pager is an immutable view of items at a given 1-based page.
type Pager[T any] struct {
	Items []T
	Page  int
	Size  int
}

// New returns a pager positioned on page 1. Non-positive sizes fall back to DefaultSize.
func New[T any](items []T, size int) Pager[T] {
	if size <= 0 {
		size = DefaultSize
	}
	return Pager[T]{Items: items, Page: 1, Size: size}
}

// TotalPages is ceil(len(items)/size), and at least 1.
func (p Pager[T]) TotalPages() int {
	size := p.size()
	if len(p.Items) == 0 {
		return 1
	}
	return (len(p.Items) + size - 1) / size
}

// At returns the pager moved to page, clamped into [1, TotalPages].
func (p Pager[T]) At(page int) Pager[T] {
	p.Page = p.clamp(page)
	return p
}

// Slice returns items[(page-1)*size : page*size], clamped to the bounds of items.
func (p Pager[T]) Slice(page int) []T {
	if page < 1 {
		return nil
	}
	size := p.size()
	start := (page - 1) * size
	if start >= len(p.Items) {
		return nil
	}
	end := start + size
	if end > len(p.Items) {
		end = len(p.Items)
	}
	return p.Items[start:end]
}

// Current is Slice for the pager's own page.
func (p Pager[T]) Current() []T {
	return p.Slice(p.clamp(p.Page))
}

// HasMore reports whether a page follows the current one.
func (p Pager[T]) HasMore() bool {
	return p.clamp(p.Page) < p.TotalPages()
}

// Advance returns the pager on the next page; on the last page it is returned unchanged.
func (p Pager[T]) Advance() Pager[T] {
	if !p.HasMore() {
		return p
	}
	return p.At(p.Page + 1)
}

// NextHref is the relative link to the following page, e.g. "?page=3". Empty on the last page.
func (p Pager[T]) NextHref() string {
	if !p.HasMore() {
		return ""
	}
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.clamp(p.Page)+1))
	return "?" + q.Encode()
}

// PageParam parses a "page" query value, defaulting to 1 on absence or garbage.
func PageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func (p Pager[T]) size() int {
	if p.Size <= 0 {
		return DefaultSize
	}
	return p.Size
}

func (p Pager[T]) clamp(page int) int {
	if page < 1 {
		return 1
	}
	if total := p.TotalPages(); page > total {
		return total
	}
	return page
}
