package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jpfielding/img2pacs/pkg/archive"
	"github.com/jpfielding/img2pacs/pkg/convert"
	"github.com/jpfielding/img2pacs/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFinder map[string]archive.LookupOutcome

func (f stubFinder) FindPatient(ctx context.Context, id string) *archive.Task[archive.LookupOutcome] {
	return archive.Completed(f[id], nil)
}

type stubConverter struct {
	got    convert.Request
	report convert.Report
}

func (c *stubConverter) Convert(ctx context.Context, req convert.Request) convert.Report {
	c.got = req
	return c.report
}

type panicConverter struct{}

func (panicConverter) Convert(context.Context, convert.Request) convert.Report {
	panic("boom")
}

func newTestServer(t *testing.T, s *Server) *httptest.Server {
	ts := httptest.NewServer(s.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, &Server{})
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
}

func TestLookupPatient(t *testing.T) {
	finder := stubFinder{
		"123456": {Status: archive.Resolved, Name: "DOE JOHN"},
		"999":    {Status: archive.NotFound},
		"500":    {Status: archive.QueryFailed, Detail: "association rejected"},
	}
	ts := newTestServer(t, &Server{Finder: finder})

	tests := []struct {
		id     string
		status int
		want   PatientResponse
	}{
		{"123456", http.StatusOK, PatientResponse{PatientID: "123456", Status: "resolved", PatientName: "DOE JOHN"}},
		{"999", http.StatusNotFound, PatientResponse{PatientID: "999", Status: "not_found", PatientName: "Not Found"}},
		{"500", http.StatusBadGateway, PatientResponse{PatientID: "500", Status: "query_failed", PatientName: "Error Fetching", Detail: "association rejected"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			resp, err := http.Get(ts.URL + "/api/v1/patients/" + tt.id)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)

			var got PatientResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func postConversion(t *testing.T, url string, body string) (*http.Response, ConversionResponse) {
	resp, err := http.Post(url+"/api/v1/conversions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var got ConversionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	return resp, got
}

func TestCreateConversion(t *testing.T) {
	conv := &stubConverter{report: convert.Report{
		State:      convert.Reporting,
		Stage:      convert.Transmitting,
		OK:         true,
		Message:    archive.SentMessage,
		ObjectPath: "/data/scan.dcm",
	}}
	ts := newTestServer(t, &Server{Converter: conv})

	body := `{"image_path":"/data/scan.jpg","patient_name":"DOE JOHN","patient_id":"123456",
		"study_description":"Panoramic","accession_number":"ACC1","study_id":"78910"}`
	resp, got := postConversion(t, ts.URL, body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, got.OK)
	assert.Equal(t, "DICOM sent successfully to PACS.", got.Message)
	assert.Equal(t, "Transmitting", got.Stage)
	assert.Equal(t, "/data/scan.dcm", got.ObjectPath)
	assert.Equal(t, convert.Request{
		ImagePath:       "/data/scan.jpg",
		PatientIdentity: convert.PatientIdentity{PatientID: "123456", PatientName: "DOE JOHN"},
		StudyContext:    convert.StudyContext{StudyDescription: "Panoramic", AccessionNumber: "ACC1", StudyID: "78910"},
	}, conv.got)
}

func TestCreateConversion_Status(t *testing.T) {
	tests := []struct {
		name   string
		report convert.Report
		status int
	}{
		{"busy", convert.Report{State: convert.Idle, Message: convert.BusyMessage, Err: convert.ErrBusy}, http.StatusConflict},
		{"validation", convert.Report{State: convert.Reporting, Message: convert.MissingFieldsMessage, Err: fmt.Errorf("%w: missing", convert.ErrValidation)}, http.StatusBadRequest},
		{"build", convert.Report{State: convert.Reporting, Err: fmt.Errorf("%w: decode", convert.ErrBuild)}, http.StatusUnprocessableEntity},
		{"persist", convert.Report{State: convert.Reporting, Err: fmt.Errorf("%w: disk", convert.ErrPersist)}, http.StatusInternalServerError},
		{"transmission", convert.Report{State: convert.Reporting, Message: "Failed to send to PACS: refused", Err: fmt.Errorf("%w: refused", convert.ErrTransmission)}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, &Server{Converter: &stubConverter{report: tt.report}})
			resp, got := postConversion(t, ts.URL, `{}`)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.False(t, got.OK)
			assert.Equal(t, tt.report.Message, got.Message)
			assert.Equal(t, tt.report.Err.Error(), got.Error)
		})
	}
}

func TestCreateConversion_BadBody(t *testing.T) {
	ts := newTestServer(t, &Server{Converter: &stubConverter{}})
	resp, err := http.Post(ts.URL+"/api/v1/conversions", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRecovery(t *testing.T) {
	ts := newTestServer(t, &Server{Converter: panicConverter{}})
	resp, err := http.Post(ts.URL+"/api/v1/conversions", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestMetricsRoute(t *testing.T) {
	m := metrics.New()
	m.Conversion("ok")
	ts := newTestServer(t, &Server{Metrics: m})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "img2pacs_conversions_total")

	ts = newTestServer(t, &Server{})
	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t, &Server{AllowedOrigins: []string{"http://form.local"}})
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/v1/conversions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://form.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://form.local", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCreateConversion_RequiresJSON(t *testing.T) {
	conv := &stubConverter{report: convert.Report{OK: true}}
	ts := newTestServer(t, &Server{Converter: conv})

	body := `{"image_path":"/home/user/x.jpg","patient_name":"EVIL","patient_id":"1",
		"study_description":"d","accession_number":"a","study_id":"s"}`
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/conversions", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Origin", "https://evil.example")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	assert.Equal(t, convert.Request{}, conv.got)
}

func TestCrossOriginDeniedByDefault(t *testing.T) {
	finder := stubFinder{"1": {Status: archive.Resolved, Name: "DOE JOHN"}}
	for name, origins := range map[string][]string{
		"none configured":  nil,
		"other configured": {"http://form.local"},
	} {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t, &Server{Finder: finder, AllowedOrigins: origins})
			req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/patients/1", nil)
			require.NoError(t, err)
			req.Header.Set("Origin", "https://evil.example")

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
		})
	}
}
