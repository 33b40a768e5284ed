package hlpfile

import "testing"

// TestPageByOffsetMonotonicity checks the "closest preceding page"
// contract: for any queried offset, PageByOffset returns the page with
// the largest Offset that does not exceed it, and that result only ever
// moves forward (or stays put) as the query offset increases.
func TestPageByOffsetMonotonicity(t *testing.T) {
	f := &File{Pages: []*Page{
		{Offset: 0},
		{Offset: 100},
		{Offset: 250},
		{Offset: 900},
	}}

	cases := []struct {
		query    uint32
		wantOff  uint32
	}{
		{0, 0},
		{50, 0},
		{100, 100},
		{249, 100},
		{250, 250},
		{899, 250},
		{900, 900},
		{5000, 900},
	}

	var lastOff uint32
	var haveLast bool
	for _, c := range cases {
		page, _ := f.PageByOffset(c.query)
		if page == nil {
			t.Fatalf("PageByOffset(%d) = nil, want offset %d", c.query, c.wantOff)
		}
		if page.Offset != c.wantOff {
			t.Errorf("PageByOffset(%d).Offset = %d, want %d", c.query, page.Offset, c.wantOff)
		}
		if haveLast && page.Offset < lastOff {
			t.Errorf("PageByOffset result regressed: offset %d gave page %d after a previous query gave %d", c.query, page.Offset, lastOff)
		}
		lastOff = page.Offset
		haveLast = true
	}
}

// TestPageByOffsetSentinelReturnsNil checks the 0xFFFFFFFF "no page"
// sentinel short-circuits before scanning the page list.
func TestPageByOffsetSentinelReturnsNil(t *testing.T) {
	f := &File{Pages: []*Page{{Offset: 0}}}
	page, rel := f.PageByOffset(0xFFFFFFFF)
	if page != nil || rel != 0 {
		t.Fatalf("PageByOffset(sentinel) = (%v, %d), want (nil, 0)", page, rel)
	}
}

// TestPageByOffsetBelowFirstPageReturnsNil checks that a query before
// every known page offset finds nothing, rather than picking the lowest
// page by default.
func TestPageByOffsetBelowFirstPageReturnsNil(t *testing.T) {
	f := &File{Pages: []*Page{{Offset: 10}, {Offset: 20}}}
	page, _ := f.PageByOffset(5)
	if page != nil {
		t.Fatalf("PageByOffset(5) = %+v, want nil (below first page's offset 10)", page)
	}
}
