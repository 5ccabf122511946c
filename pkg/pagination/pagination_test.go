package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestFromContext_Defaults(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c)

	if p.Limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, p.Limit)
	}
}

func TestFromContext_CustomValue(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?endpoint=patients&limit=50", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c)

	if p.Limit != 50 {
		t.Errorf("expected limit 50, got %d", p.Limit)
	}
}

func TestFromContext_MaxLimit(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=5000", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	p := FromContext(c)

	if p.Limit != MaxLimit {
		t.Errorf("expected max limit %d, got %d", MaxLimit, p.Limit)
	}
}

func TestFromContext_Garbage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=abc", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if got := FromContext(c).Limit; got != DefaultLimit {
		t.Errorf("expected default limit for garbage input, got %d", got)
	}
}

func TestParams_Query(t *testing.T) {
	if got := (Params{}).Query(); got != "100" {
		t.Errorf("expected 100, got %s", got)
	}
	if got := (Params{Limit: 7}).Query(); got != "7" {
		t.Errorf("expected 7, got %s", got)
	}
}

func TestApply(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	if got := Apply(items, Params{Limit: 3}); len(got) != 3 {
		t.Errorf("expected 3 items, got %d", len(got))
	}
	if got := Apply(items, Params{Limit: 10}); len(got) != 5 {
		t.Errorf("expected all 5 items, got %d", len(got))
	}
	if got := Apply(items, Params{}); len(got) != 5 {
		t.Errorf("expected default limit to keep all items, got %d", len(got))
	}
}
