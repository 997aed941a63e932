package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCounter(t *testing.T) {
	r := New()
	c := r.Counter("test_total", "A test counter")
	if c.Value() != 0 {
		t.Fatalf("expected 0, got %d", c.Value())
	}
	c.Inc()
	c.Inc()
	c.Add(5)
	if c.Value() != 7 {
		t.Fatalf("expected 7, got %d", c.Value())
	}
	// Same name and labels return the same series
	if r.Counter("test_total", "") != c {
		t.Fatal("expected same counter instance")
	}
	if r.Counter("test_total", "", "state", "x") == c {
		t.Fatal("labelled series must be distinct")
	}
}

func TestGauge(t *testing.T) {
	r := New()
	g := r.Gauge("test_gauge", "A test gauge")
	g.Set(42)
	g.Inc()
	g.Inc()
	g.Dec()
	if g.Value() != 43 {
		t.Fatalf("expected 43, got %d", g.Value())
	}
}

func TestHistogram(t *testing.T) {
	r := New()
	h := r.Histogram("test_duration_seconds", "A test histogram", []float64{0.1, 0.5, 1.0})
	for _, v := range []float64{0.05, 0.3, 0.8, 2.0} {
		h.Observe(v)
	}
	if h.Count() != 4 {
		t.Fatalf("expected count 4, got %d", h.Count())
	}
	want := []uint64{1, 1, 1}
	for i, w := range want {
		if h.counts[i] != w {
			t.Fatalf("bucket %g: expected %d, got %d", h.bounds[i], w, h.counts[i])
		}
	}
	// exactly on a bound lands in that bucket
	h.Observe(0.5)
	if h.counts[1] != 2 {
		t.Fatalf("bucket 0.5: expected 2, got %d", h.counts[1])
	}
}

func TestHistogramSince(t *testing.T) {
	h := New().Histogram("latency", "", nil)
	h.Since(time.Now().Add(-10 * time.Millisecond))
	if h.Count() != 1 || h.sum <= 0 {
		t.Fatalf("count=%d sum=%f", h.Count(), h.sum)
	}
}

func TestLabels(t *testing.T) {
	if got := Labels("state", "ok", "stage", "embed"); got != `state="ok",stage="embed"` {
		t.Fatalf("got %s", got)
	}
	if Labels("odd") != "" {
		t.Fatal("odd label list should be ignored")
	}
}

func TestKindMismatchPanics(t *testing.T) {
	r := New()
	r.Counter("dup", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	r.Gauge("dup", "")
}

func TestRender(t *testing.T) {
	r := New()
	r.Counter("reqs_total", "Requests", "code", "200").Add(3)
	r.Gauge("inflight", "").Set(2)
	h := r.Histogram("lat_seconds", "Latency", []float64{0.1, 1}, "op", "upsert")
	h.Observe(0.05)
	h.Observe(5)

	out := r.Render()
	for _, want := range []string{
		"# HELP reqs_total Requests",
		"# TYPE reqs_total counter",
		`reqs_total{code="200"} 3`,
		"# TYPE inflight gauge",
		"inflight 2",
		`lat_seconds_bucket{op="upsert",le="0.1"} 1`,
		`lat_seconds_bucket{op="upsert",le="1"} 1`,
		`lat_seconds_bucket{op="upsert",le="+Inf"} 2`,
		`lat_seconds_count{op="upsert"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Index(out, "reqs_total") > strings.Index(out, "inflight") {
		t.Error("families should render in registration order")
	}
}

func TestHandler(t *testing.T) {
	r := New()
	r.Counter("hits_total", "").Inc()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("content type %q", rec.Header().Get("Content-Type"))
	}
	if !strings.Contains(rec.Body.String(), "hits_total 1") {
		t.Fatalf("body %q", rec.Body.String())
	}
}

func TestNewIndexer(t *testing.T) {
	r := New()
	m := NewIndexer(r)
	m.Persisted.Inc()
	m.Rejected.Add(2)
	if NewIndexer(r).Persisted != m.Persisted {
		t.Fatal("re-registering should return existing series")
	}
	out := r.Render()
	if !strings.Contains(out, `indexer_records_total{state="persisted"} 1`) ||
		!strings.Contains(out, `indexer_records_total{state="rejected"} 2`) {
		t.Fatalf("render:\n%s", out)
	}
}
