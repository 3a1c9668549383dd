package models

const (
	// HeaderSharerUserID identifies the acting user on every call.
	HeaderSharerUserID = "X-Sharer-User-Id"

	DefaultPageFrom = 0
	DefaultPageSize = 10

	// DateTimeLayout is the wire format of booking and request timestamps.
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Page is an offset window over an ordered result set.
type Page struct {
	From int
	Size int
}

func DefaultPage() Page {
	return Page{From: DefaultPageFrom, Size: DefaultPageSize}
}

// Window clamps the page to a slice of length n and returns its bounds.
func (p Page) Window(n int) (int, int) {
	lo := p.From
	if lo > n {
		lo = n
	}
	hi := lo + p.Size
	if hi > n {
		hi = n
	}
	return lo, hi
}
