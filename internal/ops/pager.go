package ops

import (
	"github.com/hpungsan/delgists/internal/errors"
	"github.com/hpungsan/delgists/internal/gist"
)

// DefaultPageSize is the number of gists per page when none is configured.
const DefaultPageSize = 20

// PagedView is the listing split into display pages plus the index of the
// page being viewed. The cursor stays in [0, PageCount()) when there are pages.
type PagedView struct {
	pages  [][]gist.Gist
	cursor int
}

// Partition splits listing into consecutive pages of at most pageSize gists.
// The last page may be shorter; an empty listing yields no pages.
func Partition(listing []gist.Gist, pageSize int) (*PagedView, error) {
	if pageSize < 1 {
		return nil, errors.NewInvalidRequest("page size must be at least 1")
	}

	pages := make([][]gist.Gist, 0, (len(listing)+pageSize-1)/pageSize)
	for start := 0; start < len(listing); start += pageSize {
		end := min(start+pageSize, len(listing))
		page := make([]gist.Gist, end-start)
		copy(page, listing[start:end])
		pages = append(pages, page)
	}

	return &PagedView{pages: pages}, nil
}

// PageCount returns the number of pages.
func (v *PagedView) PageCount() int {
	return len(v.pages)
}

// Cursor returns the zero-based index of the current page.
func (v *PagedView) Cursor() int {
	return v.cursor
}

// Total returns the number of gists across all pages.
func (v *PagedView) Total() int {
	n := 0
	for _, p := range v.pages {
		n += len(p)
	}
	return n
}

// Page returns page i, or nil when i is out of range.
func (v *PagedView) Page(i int) []gist.Gist {
	if i < 0 || i >= len(v.pages) {
		return nil
	}
	return v.pages[i]
}

// CurrentPage returns the page under the cursor, or nil when there are no pages.
func (v *PagedView) CurrentPage() []gist.Gist {
	return v.Page(v.cursor)
}

// HasPrevious reports whether Previous would succeed.
func (v *PagedView) HasPrevious() bool {
	return len(v.pages) > 0 && v.cursor > 0
}

// HasNext reports whether Next would succeed.
func (v *PagedView) HasNext() bool {
	return v.cursor < len(v.pages)-1
}

// Next moves to the following page. It fails on the last page.
func (v *PagedView) Next() error {
	if !v.HasNext() {
		return errors.NewOutOfRange(v.cursor+1, len(v.pages))
	}
	v.cursor++
	return nil
}

// Previous moves to the preceding page. It fails on the first page.
func (v *PagedView) Previous() error {
	if !v.HasPrevious() {
		return errors.NewOutOfRange(v.cursor-1, len(v.pages))
	}
	v.cursor--
	return nil
}

// ReplaceCurrent installs page as the current page. Page boundaries are not
// rebalanced, so a page may hold fewer than the nominal page size.
func (v *PagedView) ReplaceCurrent(page []gist.Gist) error {
	if len(v.pages) == 0 {
		return errors.NewOutOfRange(v.cursor, 0)
	}
	v.pages[v.cursor] = page
	return nil
}
