package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestCounters(t *testing.T) {
	m := New()
	m.Lookup("resolved")
	m.Lookup("resolved")
	m.Lookup("not_found")
	m.CacheHit()
	m.Conversion("ok")
	m.Transmission(true)
	m.Transmission(false)
	m.Stage("build", time.Now())

	body := scrape(t, m)
	assert.Contains(t, body, `img2pacs_patient_lookups_total{outcome="resolved"} 2`)
	assert.Contains(t, body, `img2pacs_patient_lookups_total{outcome="not_found"} 1`)
	assert.Contains(t, body, `img2pacs_patient_lookup_cache_hits_total 1`)
	assert.Contains(t, body, `img2pacs_transmissions_total{result="failed"} 1`)
	assert.Contains(t, body, `img2pacs_stage_duration_seconds_count{stage="build"} 1`)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Lookup("resolved")
		m.CacheHit()
		m.Conversion("ok")
		m.Transmission(true)
		m.Stage("build", time.Now())
		assert.NoError(t, m.WriteTextfile("ignored"))
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Conversion("ok")
	assert.Contains(t, scrape(t, m), `img2pacs_conversions_total{result="ok"} 1`)
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Transmission(true)
	path := filepath.Join(t.TempDir(), "img2pacs.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `img2pacs_transmissions_total{result="sent"} 1`)
}
