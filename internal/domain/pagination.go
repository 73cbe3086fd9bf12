package domain

// Pagination constants
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects a window of a listing. A Size of zero or less means the
// repository returns every matching record.
type Page struct {
	Number int `json:"page"`
	Size   int `json:"page_size"`
}

// Normalize applies the default page and size and clamps the size to MaxPageSize.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = DefaultPage
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Unpaged reports whether the page asks for every record.
func (p Page) Unpaged() bool {
	return p.Size <= 0
}

// Offset is the number of records to skip.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// Slice returns the window of items selected by the page.
func Slice[T any](items []T, p Page) []T {
	if p.Unpaged() {
		return items
	}
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
