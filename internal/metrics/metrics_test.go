package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.LinesRead.Add(3)
	m.RecordsParsed.Add(2)
	m.ParseFailures.Inc()
	m.StoredRecords.Set(2)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"lines", testutil.ToFloat64(m.LinesRead), 3},
		{"parsed", testutil.ToFloat64(m.RecordsParsed), 2},
		{"failures", testutil.ToFloat64(m.ParseFailures), 1},
		{"stored", testutil.ToFloat64(m.StoredRecords), 2},
		{"rows", testutil.ToFloat64(m.RowsInserted), 0},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestSeparateRegistries(t *testing.T) {
	a, b := New(), New()
	a.LinesRead.Inc()
	if got := testutil.ToFloat64(b.LinesRead); got != 0 {
		t.Errorf("second instance LinesRead = %v, want 0", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.RowsInserted.Add(7)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "proxylog_rows_inserted_total 7") {
		t.Errorf("metrics output missing rows counter:\n%s", body)
	}
}
