package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_ObservesRenderedStatus(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/boom/:id", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "nope")
	})

	before := testutil.CollectAndCount(HTTPRequestDuration)

	req := httptest.NewRequest(http.MethodGet, "/boom/1", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
	if after := testutil.CollectAndCount(HTTPRequestDuration); after != before+1 {
		t.Fatalf("expected a new series, had %d now %d", before, after)
	}
}
