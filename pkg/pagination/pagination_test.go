package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsForURL(t *testing.T, url string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return FromContext(c)
}

func TestFromContext_Defaults(t *testing.T) {
	p := paramsForURL(t, "/")

	if p.Page != 1 {
		t.Errorf("expected default page 1, got %d", p.Page)
	}
	if p.PerPage != DefaultPerPage {
		t.Errorf("expected default per_page %d, got %d", DefaultPerPage, p.PerPage)
	}
}

func TestFromContext_Explicit(t *testing.T) {
	p := paramsForURL(t, "/?page=3&per_page=10")

	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.PerPage != 10 {
		t.Errorf("expected per_page 10, got %d", p.PerPage)
	}
	if p.Offset() != 20 {
		t.Errorf("expected offset 20, got %d", p.Offset())
	}
}

func TestFromContext_ClampsPerPage(t *testing.T) {
	p := paramsForURL(t, "/?per_page=5000")
	if p.PerPage != MaxPerPage {
		t.Errorf("expected per_page clamped to %d, got %d", MaxPerPage, p.PerPage)
	}
}

func TestFromContext_IgnoresGarbage(t *testing.T) {
	p := paramsForURL(t, "/?page=banana&per_page=-3")
	if p.Page != 1 || p.PerPage != DefaultPerPage {
		t.Errorf("expected defaults for garbage input, got %+v", p)
	}
}

func TestTotalPages(t *testing.T) {
	p := Params{Page: 1, PerPage: 20}

	cases := []struct {
		total, want int
	}{
		{0, 0},
		{1, 1},
		{20, 1},
		{21, 2},
		{45, 3},
	}
	for _, tc := range cases {
		if got := p.TotalPages(tc.total); got != tc.want {
			t.Errorf("TotalPages(%d) = %d, want %d", tc.total, got, tc.want)
		}
	}
}

func TestPageWindows_45Records(t *testing.T) {
	// 45 matching records, 20 per page: page 1 holds 20, page 3 holds 5,
	// page 4 is an empty but valid page.
	total := 45

	page1 := Params{Page: 1, PerPage: 20}
	if page1.Offset() != 0 || page1.Limit() != 20 {
		t.Errorf("page 1 window wrong: offset=%d limit=%d", page1.Offset(), page1.Limit())
	}

	page3 := Params{Page: 3, PerPage: 20}
	if page3.Offset() != 40 {
		t.Errorf("page 3 offset = %d, want 40", page3.Offset())
	}
	remaining := total - page3.Offset()
	if remaining != 5 {
		t.Errorf("page 3 should hold 5 records, got %d", remaining)
	}

	page4 := Params{Page: 4, PerPage: 20}
	if page4.Offset() != 60 {
		t.Errorf("page 4 offset = %d, want 60", page4.Offset())
	}
	resp := NewResponse([]string{}, total, page4)
	if resp.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", resp.TotalPages)
	}
	if resp.HasMore {
		t.Error("page past the end must not report has_more")
	}
}

func TestNewResponse(t *testing.T) {
	p := Params{Page: 2, PerPage: 20}
	resp := NewResponse([]int{1, 2, 3}, 45, p)

	if resp.Total != 45 {
		t.Errorf("expected total 45, got %d", resp.Total)
	}
	if resp.Page != 2 || resp.PerPage != 20 {
		t.Errorf("unexpected page info: %+v", resp)
	}
	if !resp.HasMore {
		t.Error("expected has_more on page 2 of 3")
	}
}
