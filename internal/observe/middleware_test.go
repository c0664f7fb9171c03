package observe

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestMiddleware_RecordsAndLogs(t *testing.T) {
	m, reader := newTestMetrics(t)
	log, hook := test.NewNullLogger()

	handler := Middleware(m, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/models", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	met := findMetric(collect(t, reader), "linse.http.request.duration")
	if met == nil {
		t.Fatal("duration histogram not recorded")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("data = %T, want Histogram[float64]", met.Data)
	}
	if len(hist.DataPoints) != 1 || hist.DataPoints[0].Count != 1 {
		t.Errorf("data points = %+v, want one observation", hist.DataPoints)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("no log entry")
	}
	if entry.Level != logrus.InfoLevel {
		t.Errorf("level = %v, want info", entry.Level)
	}
	if got := entry.Data["status"]; got != http.StatusTeapot {
		t.Errorf("status field = %v, want %d", got, http.StatusTeapot)
	}
}

func TestInitProvider_ServesMetrics(t *testing.T) {
	p, err := InitProvider()
	if err != nil {
		t.Fatalf("InitProvider: %v", err)
	}
	t.Cleanup(func() { _ = p.Shutdown(t.Context()) })

	m, err := NewMetrics(p.MeterProvider)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	m.RecordWords(t.Context(), "annotate", 7)

	rec := httptest.NewRecorder()
	p.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "linse_words") {
		t.Errorf("/metrics output lacks linse_words:\n%s", body)
	}
}
